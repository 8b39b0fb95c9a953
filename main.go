package main

import (
	"os"

	"github.com/adityajoshi12/testpki/commands"
	"github.com/adityajoshi12/testpki/glossary"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          glossary.ProgramName,
		Short:        "Issue and inspect three-level X.509 test certificate chains",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(commands.All()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
