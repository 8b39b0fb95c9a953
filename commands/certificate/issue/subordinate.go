package issue

import (
	"os"

	"github.com/adityajoshi12/testpki/pki"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	roleIntermediate = "intermediate"
	roleEndEntity    = "end-entity"
)

// NewIntermediateCommand creates the "certificate intermediate" command
func NewIntermediateCommand() *cobra.Command {
	return newSubordinateCommand(roleIntermediate,
		"Issue an intermediate CA certificate",
		"Generate an RSA key and a version 3 CA certificate with path length 0 for it, signed by an existing CA")
}

// NewEndEntityCommand creates the "certificate end-entity" command
func NewEndEntityCommand() *cobra.Command {
	return newSubordinateCommand(roleEndEntity,
		"Issue an end-entity certificate",
		"Generate an RSA key and a version 3 end-entity certificate for it, signed by an existing CA")
}

func newSubordinateCommand(role, short, long string) *cobra.Command {
	c := SubordinateCommand{Role: role}

	cmd := &cobra.Command{
		Use:   role,
		Short: short,
		Long:  long,
		Args:  c.ParseArgs(),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return c.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.SetOutput(cmd)
			return c.Run()
		},
	}
	c.bind(cmd)

	flags := cmd.Flags()
	flags.StringVar(&c.CACertPath, "ca-cert", "", "Certificate of the issuing CA")
	flags.StringVar(&c.CAKeyPath, "ca-key", "", "Private key of the issuing CA")
	_ = cmd.MarkFlagFilename("ca-cert", "pem", "crt", "der", "jsonCert")
	_ = cmd.MarkFlagFilename("ca-key", "pem", "key")

	return cmd
}

// SubordinateCommand issues an intermediate or end-entity certificate
type SubordinateCommand struct {
	issuer
	Role       string
	CACertPath string
	CAKeyPath  string
}

// Validate checks the required parameters for run
func (c *SubordinateCommand) Validate() error {
	if c.Role != roleIntermediate && c.Role != roleEndEntity {
		return errors.Errorf("Unknown certificate role %q", c.Role)
	}
	if len(c.CACertPath) == 0 || len(c.CAKeyPath) == 0 {
		return errors.New("CA certificate (--ca-cert) and CA private key (--ca-key) are required")
	}
	for _, path := range []string{c.CACertPath, c.CAKeyPath} {
		if _, err := os.Stat(path); err != nil {
			return errors.WithMessagef(err, "Unable to access %s", path)
		}
	}
	return c.validateOutputs()
}

// Run executes the command
func (c *SubordinateCommand) Run() error {
	caCert, caKey, err := loadIssuer(c.CACertPath, c.CAKeyPath)
	if err != nil {
		return err
	}
	factory, key, err := c.setup()
	if err != nil {
		return err
	}

	var cert *pki.Certificate
	if c.Role == roleIntermediate {
		cert, err = factory.GenerateIntermediateCert(&key.PublicKey, caKey, caCert)
	} else {
		cert, err = factory.GenerateEndEntityCert(&key.PublicKey, caKey, caCert)
	}
	if err != nil {
		return err
	}
	return c.write(c.Role, key, cert)
}
