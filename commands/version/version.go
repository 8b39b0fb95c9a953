package version

import (
	"fmt"
	"runtime"

	"github.com/adityajoshi12/testpki/glossary"
	"github.com/adityajoshi12/testpki/glossary/metadata"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates a new "testpki version" command
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print testpki command version",
		Long:  "Print current version of the testpki certificate chain tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return errors.New("trailing args detected")
			}
			cmd.SilenceUsage = true
			fmt.Fprint(cmd.OutOrStdout(), GetMetaInfo())
			return nil
		},
	}

	return cmd
}

// GetMetaInfo returns version information for the testpki binary.
func GetMetaInfo() string {
	return fmt.Sprintf("%s:\n Version: %s\n Commit SHA: %s\n Go Version: %s\n"+
		" OS/Arch: %s\n",
		glossary.ProgramName, metadata.Version, metadata.CommitSHA, runtime.Version(),
		fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH))
}
