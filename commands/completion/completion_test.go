package completion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestNewCompletionCommand(t *testing.T) {
	cmd := NewCompletionCommand()

	if cmd.Use != "completion [bash|zsh|fish|powershell]" {
		t.Errorf("Expected Use to be 'completion [bash|zsh|fish|powershell]', got %s", cmd.Use)
	}

	validArgs := []string{"bash", "zsh", "fish", "powershell"}
	if len(cmd.ValidArgs) != len(validArgs) {
		t.Errorf("Expected %d valid args, got %d", len(validArgs), len(cmd.ValidArgs))
	}

	// Verify valid args match
	for i, arg := range validArgs {
		if cmd.ValidArgs[i] != arg {
			t.Errorf("Expected valid arg %s at position %d, got %s", arg, i, cmd.ValidArgs[i])
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	cmd := NewCompletionCommand()

	// Create a mock root command
	rootCmd := &cobra.Command{Use: "testpki"}
	rootCmd.AddCommand(cmd)

	// Test that the command can be found
	foundCmd, _, err := rootCmd.Find([]string{"completion"})
	if err != nil {
		t.Errorf("Expected to find completion command, got error: %v", err)
	}

	if foundCmd.Use != "completion [bash|zsh|fish|powershell]" {
		t.Errorf("Found command has wrong Use: %s", foundCmd.Use)
	}
}

func TestCompletionCommandOutput(t *testing.T) {
	tests := []struct {
		shell   string
		want    string
		wantErr bool
	}{
		{shell: "bash", want: "testpki"},
		{shell: "zsh", want: "#compdef testpki"},
		{shell: "fish", want: "complete -c testpki"},
		{shell: "powershell", want: "testpki"},
		{shell: "tcsh", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			rootCmd := &cobra.Command{Use: "testpki"}
			rootCmd.AddCommand(NewCompletionCommand())

			output := &bytes.Buffer{}
			rootCmd.SetOut(output)
			rootCmd.SetErr(&bytes.Buffer{})
			rootCmd.SetArgs([]string{"completion", tt.shell})

			err := rootCmd.Execute()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for shell %q", tt.shell)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), tt.want) {
				t.Errorf("expected %s completion to contain %q", tt.shell, tt.want)
			}
		})
	}
}
