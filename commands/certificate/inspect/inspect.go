package inspect

import (
	"encoding/json"
	"fmt"

	"github.com/adityajoshi12/testpki/commands/common"
	"github.com/adityajoshi12/testpki/utilities"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewInspectCommand creates the "certificate inspect" command
func NewInspectCommand() *cobra.Command {
	c := InspectCommand{}

	cmd := &cobra.Command{
		Use:   "inspect [cert-path]",
		Short: "Inspect a certificate",
		Long:  "Print the fields and extensions of a PEM, DER or JSON certificate",
		Args:  c.ParseArgs(),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return c.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.SetOutput(cmd)
			return c.Run()
		},
	}

	c.AddArg(&c.CertPath)

	flags := cmd.Flags()
	flags.StringVarP(&c.CertPath, "cert-path", "c", "", "Path to your certificate")
	flags.BoolVar(&c.JSON, "json", false, "Print a JSON summary instead of text")
	_ = cmd.MarkFlagFilename("cert-path", "pem", "crt", "der", "jsonCert")

	return cmd
}

type InspectCommand struct {
	common.Command
	CertPath string
	JSON     bool
}

// Validate checks the required parameters for run
func (c *InspectCommand) Validate() error {
	if len(c.CertPath) == 0 {
		return errors.New("Certificate path (--cert-path) is required")
	}
	return nil
}

// Run executes the command
func (c *InspectCommand) Run() error {
	cert, _, err := utilities.ParseCertificate(c.CertPath)
	if err != nil {
		return err
	}

	if c.JSON {
		jsByte, err := json.MarshalIndent(utilities.NewJSONCertificate("", cert), "", "  ")
		if err != nil {
			return errors.Wrap(err, "Unable to marshal certificate")
		}
		fmt.Fprintln(c.Out(), string(jsByte))
		return nil
	}

	text, err := utilities.CertificateText(cert)
	if err != nil {
		return err
	}
	fmt.Fprint(c.Out(), text)
	return nil
}
