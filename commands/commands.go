package commands

import (
	"github.com/adityajoshi12/testpki/commands/certificate"
	"github.com/adityajoshi12/testpki/commands/completion"
	"github.com/adityajoshi12/testpki/commands/version"
	"github.com/spf13/cobra"
)

// All returns the top-level commands of testpki
func All() []*cobra.Command {
	return []*cobra.Command{
		certificate.NewCertificateCommand(),
		version.NewVersionCommand(),
		completion.NewCompletionCommand(),
	}
}
