package integration_test

import (
	"bytes"
	"crypto/x509"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adityajoshi12/testpki/commands"
	"github.com/adityajoshi12/testpki/glossary"
	"github.com/adityajoshi12/testpki/utilities"
	"github.com/spf13/cobra"
)

// keySize keeps RSA generation fast; it is the smallest size the CLI accepts.
const keySize = "1024"

// TestResult captures the result of a command execution
type TestResult struct {
	Args     []string
	ExitCode int
	StdOut   string
	StdErr   string
	Duration time.Duration
}

// ChainFiles holds the paths written by "certificate chain"
type ChainFiles struct {
	Dir              string
	RootCert         string
	RootKey          string
	IntermediateCert string
	IntermediateKey  string
	EndEntityCert    string
	EndEntityKey     string
	Bundle           string
}

func chainFiles(dir string) ChainFiles {
	return ChainFiles{
		Dir:              dir,
		RootCert:         filepath.Join(dir, glossary.RootCertFile),
		RootKey:          filepath.Join(dir, glossary.RootKeyFile),
		IntermediateCert: filepath.Join(dir, glossary.IntermediateCertFile),
		IntermediateKey:  filepath.Join(dir, glossary.IntermediateKeyFile),
		EndEntityCert:    filepath.Join(dir, glossary.EndEntityCertFile),
		EndEntityKey:     filepath.Join(dir, glossary.EndEntityKeyFile),
		Bundle:           filepath.Join(dir, glossary.EndEntityBundleFile),
	}
}

// executeCommand executes a testpki CLI command programmatically and captures output
func executeCommand(args []string) (*TestResult, error) {
	startTime := time.Now()

	rootCmd := &cobra.Command{
		Use:   glossary.ProgramName,
		Short: "Issue and inspect three-level X.509 test certificate chains",
	}
	rootCmd.AddCommand(commands.All()...)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	result := &TestResult{
		Args:     args,
		StdOut:   stdout.String(),
		StdErr:   stderr.String(),
		Duration: time.Since(startTime),
	}
	if err != nil {
		result.ExitCode = 1
	}

	return result, err
}

// issueChain runs "certificate chain" into a fresh directory
func issueChain(t *testing.T, extraArgs ...string) ChainFiles {
	t.Helper()
	files := chainFiles(t.TempDir())
	args := append([]string{"certificate", "chain", "-d", files.Dir, "--key-size", keySize}, extraArgs...)
	result, err := executeCommand(args)
	if err != nil {
		t.Fatalf("Failed to issue chain: %v\nStdErr: %s", err, result.StdErr)
	}
	return files
}

// assertCommandSuccess validates that a command executed successfully
func assertCommandSuccess(t *testing.T, result *TestResult) {
	t.Helper()
	if result.ExitCode != 0 {
		t.Errorf("Command failed with exit code %d\nStdOut: %s\nStdErr: %s",
			result.ExitCode, result.StdOut, result.StdErr)
	}
}

// assertCommandFailure validates that a command failed as expected
func assertCommandFailure(t *testing.T, result *TestResult) {
	t.Helper()
	if result.ExitCode == 0 {
		t.Errorf("Expected command to fail, but it succeeded\nStdOut: %s", result.StdOut)
	}
}

// assertFileExists validates that a file exists at the specified path
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file does not exist: %s", path)
	}
}

// assertFileNotExists validates that a file does not exist at the specified path
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist, but it does: %s", path)
	}
}

// assertOutputContains validates that command output contains expected text
func assertOutputContains(t *testing.T, result *TestResult, expected string) {
	t.Helper()
	if !strings.Contains(result.StdOut, expected) {
		t.Errorf("Expected output to contain '%s', but got:\n%s", expected, result.StdOut)
	}
}

// assertOutputNotContains validates that command output does not contain specified text
func assertOutputNotContains(t *testing.T, result *TestResult, unexpected string) {
	t.Helper()
	if strings.Contains(result.StdOut, unexpected) {
		t.Errorf("Expected output to not contain '%s', but got:\n%s", unexpected, result.StdOut)
	}
}

// parseCertificateFile reads and parses a certificate file for validation
func parseCertificateFile(t *testing.T, certPath string) *x509.Certificate {
	t.Helper()
	cert, _, err := utilities.ParseCertificate(certPath)
	if err != nil {
		t.Fatalf("Failed to parse certificate %s: %v", certPath, err)
	}
	return cert
}
