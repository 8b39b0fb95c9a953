package certificate

import (
	"github.com/adityajoshi12/testpki/commands/certificate/check"
	"github.com/adityajoshi12/testpki/commands/certificate/convert"
	"github.com/adityajoshi12/testpki/commands/certificate/inspect"
	"github.com/adityajoshi12/testpki/commands/certificate/issue"
	"github.com/spf13/cobra"
)

func NewCertificateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificate",
		Short: "Issue and examine test certificate chains",
	}

	cmd.AddCommand(issue.NewRootCommand())
	cmd.AddCommand(issue.NewIntermediateCommand())
	cmd.AddCommand(issue.NewEndEntityCommand())
	cmd.AddCommand(issue.NewChainCommand())
	cmd.AddCommand(inspect.NewInspectCommand())
	cmd.AddCommand(check.NewExpireCommand())
	cmd.AddCommand(convert.NewConvertCertificateCommand())

	return cmd
}
