package issue

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the "certificate root" command
func NewRootCommand() *cobra.Command {
	c := RootCommand{}

	cmd := &cobra.Command{
		Use:   "root",
		Short: "Issue a root certificate",
		Long:  "Generate an RSA key and a self-signed version 1 root certificate for it",
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

	return cmd
}

type RootCommand struct {
	issuer
}

// Validate checks the required parameters for run
func (c *RootCommand) Validate() error {
	return c.validateOutputs()
}

// Run executes the command
func (c *RootCommand) Run() error {
	factory, key, err := c.setup()
	if err != nil {
		return err
	}
	cert, err := factory.GenerateRootCert(key)
	if err != nil {
		return err
	}
	return c.write("root", key, cert)
}
