package check

import (
	"bytes"
	"crypto/x509"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adityajoshi12/testpki/commands/common"
	"github.com/adityajoshi12/testpki/pki"
	"github.com/adityajoshi12/testpki/utilities"
	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewExpireCommand() *cobra.Command {
	c := ExpireCommand{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Checking expiration date",
		Long:  "Checking expiration date of certificate, and optionally its signature against the issuing certificate",
		Args:  c.ParseArgs(),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if err := c.Validate(); err != nil {
				return err
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.SetOutput(cmd)
			return c.Run()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&c.CertPath, "cert-path", "c", "", "Path to your certificate")
	flags.StringVarP(&c.FolderPath, "folder-cert", "f", "", "Path to folder have certificates")
	flags.StringVarP(&c.IssuerPath, "issuer", "i", "", "Certificate whose key must verify the checked certificates")

	return cmd
}

type ExpireCommand struct {
	common.Command
	CertPath   string
	FolderPath string
	IssuerPath string

	// now is replaced in tests
	now func() time.Time
}

// Validate checks the required parameters for run
func (c *ExpireCommand) Validate() error {
	if len(c.CertPath) == 0 && len(c.FolderPath) == 0 {
		return errors.New("File certificate or Folder have certificate is required")
	}
	if len(c.CertPath) > 0 && len(c.FolderPath) > 0 {
		return errors.New("Only one of File certificate and Folder have certificate can be given")
	}

	return nil
}

// Run executes the command
func (c *ExpireCommand) Run() error {
	var issuer *x509.Certificate
	if len(c.IssuerPath) > 0 {
		var err error
		if issuer, _, err = utilities.ParseCertificate(c.IssuerPath); err != nil {
			return errors.WithMessage(err, "Unable to load issuer certificate")
		}
	}

	if len(c.CertPath) > 0 {
		return c.checkCert(c.CertPath, issuer)
	}

	var result *multierror.Error
	err := filepath.WalkDir(c.FolderPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WithMessage(err, "Failed to scan certificate dir")
		}
		if d.IsDir() || isKeyFile(path) {
			return nil
		}
		if err := c.checkCert(path, issuer); err != nil {
			fmt.Fprintf(c.Out(), "Unable to check \"%s\" certificate\n", path)
			result = multierror.Append(result, err)
		}
		return nil
	})
	if err != nil {
		return errors.WithMessage(err, "Failed to scan certificate dir")
	}
	return result.ErrorOrNil()
}

func (c *ExpireCommand) checkCert(certPath string, issuer *x509.Certificate) error {
	cert, _, err := utilities.ParseCertificate(certPath)
	if err != nil {
		return err
	}

	now := time.Now()
	if c.now != nil {
		now = c.now()
	}

	out := c.Out()
	fileName := filepath.Base(certPath)
	fmt.Fprintln(out, "Certificate", color.YellowString("%s - path (%s)", fileName, certPath), "will expire at", color.YellowString("%s", cert.NotAfter.String()))
	switch {
	case cert.NotAfter.Before(now):
		fmt.Fprintln(out, "Certificate", color.RedString("%s - path (%s) was expired!!!", fileName, certPath))
	case cert.NotBefore.After(now):
		fmt.Fprintln(out, "Certificate", color.RedString("%s - path (%s) is not valid yet", fileName, certPath))
	default:
		fmt.Fprintln(out, "Certificate", color.GreenString("%s - path (%s) is good today.", fileName, certPath))
	}

	if issuer == nil {
		return nil
	}
	if err := pki.VerifySignature(cert, issuer.PublicKey); err != nil {
		fmt.Fprintln(out, "Certificate", color.RedString("%s - signature does not verify with %s", fileName, issuer.Subject.String()))
		return errors.WithMessagef(err, "%s is not signed by %s", certPath, issuer.Subject.String())
	}
	fmt.Fprintln(out, "Certificate", color.GreenString("%s - signature verified by %s", fileName, issuer.Subject.String()))
	return nil
}

// isKeyFile reports PEM files that hold a private key and no certificate
func isKeyFile(path string) bool {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return false
	}
	return bytes.Contains(data, []byte("PRIVATE KEY-----")) && !bytes.Contains(data, []byte("BEGIN CERTIFICATE"))
}
