package common

import (
	"io"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/adityajoshi12/testpki/pki"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Command is embedded by every command. It binds positional args to fields and
// carries the writers a command prints to.
type Command struct {
	args   []*string
	out    io.Writer
	errOut io.Writer
}

// SetOutput takes the writers of cmd
func (c *Command) SetOutput(cmd *cobra.Command) {
	c.SetWriters(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// SetWriters sets where results and diagnostics are written
func (c *Command) SetWriters(out, errOut io.Writer) {
	c.out = out
	c.errOut = errOut
}

// Out is where results are printed, stdout unless SetOutput was called
func (c *Command) Out() io.Writer {
	if c.out == nil {
		return os.Stdout
	}
	return c.out
}

// ErrOut is where diagnostics are logged, stderr unless SetOutput was called
func (c *Command) ErrOut() io.Writer {
	if c.errOut == nil {
		return os.Stderr
	}
	return c.errOut
}

// AddArg registers the next positional argument
func (c *Command) AddArg(arg *string) {
	c.args = append(c.args, arg)
}

// ParseArgs fills the registered args in order. Missing args are left empty.
func (c *Command) ParseArgs() cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) > len(c.args) {
			return errors.New("trailing args detected")
		}
		for i, arg := range args {
			*c.args[i] = arg
		}
		return nil
	}
}

// IssueFlags are the flags shared by the commands that issue certificates.
// Empty values leave the configuration file, env file or defaults in charge.
type IssueFlags struct {
	ConfigPath         string
	EnvFile            string
	ValidFor           string
	SignatureAlgorithm string
	KeySize            int
	JSON               bool
	Verbose            bool
}

// Bind registers the flags on cmd
func (f *IssueFlags) Bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.ConfigPath, "config", "", "YAML configuration file")
	flags.StringVar(&f.EnvFile, "env-file", "", "File of TESTPKI_* variables to load")
	flags.StringVar(&f.ValidFor, "valid-for", "", "Certificate lifetime, e.g. 168h (default one week)")
	flags.StringVar(&f.SignatureAlgorithm, "signature-algorithm", "", "One of "+algorithmList()+" (default "+string(pki.DefaultSignatureAlgorithm)+")")
	flags.IntVar(&f.KeySize, "key-size", 0, "RSA key size in bits (default 2048)")
	flags.BoolVar(&f.JSON, "json", false, "Write certificates as JSON instead of PEM")
	flags.BoolVarP(&f.Verbose, "verbose", "v", false, "Log issuance details to stderr")

	_ = cmd.MarkFlagFilename("config", "yaml", "yml")
	_ = cmd.MarkFlagFilename("env-file", "env")
}

func algorithmList() string {
	names := make([]string, 0, len(pki.SignatureAlgorithms()))
	for _, alg := range pki.SignatureAlgorithms() {
		names = append(names, alg.String())
	}
	return strings.Join(names, ", ")
}

// Configuration resolves defaults, the configuration file, the env file and
// the process environment, then the flags, in increasing precedence.
func (f *IssueFlags) Configuration() (pki.Configuration, error) {
	cfg, err := LoadConfiguration(f.ConfigPath, f.EnvFile)
	if err != nil {
		return cfg, err
	}

	if f.ValidFor != "" {
		d, err := time.ParseDuration(f.ValidFor)
		if err != nil {
			return cfg, errors.Wrapf(err, "invalid --valid-for %q", f.ValidFor)
		}
		cfg.ValidFor = d
	}
	if f.SignatureAlgorithm != "" {
		alg, err := pki.ParseSignatureAlgorithm(f.SignatureAlgorithm)
		if err != nil {
			return cfg, errors.WithMessage(err, "invalid --signature-algorithm")
		}
		cfg.SignatureAlgorithm = alg
	}
	if f.KeySize != 0 {
		cfg.KeySize = f.KeySize
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.WithMessage(err, "invalid configuration")
	}
	return cfg, nil
}

// Factory builds a certificate factory from cfg that logs to log
func Factory(cfg pki.Configuration, log zerolog.Logger) *pki.Factory {
	return pki.NewFactory(append(cfg.Options(), pki.WithLogger(log))...)
}

// LoadConfiguration reads the optional YAML file and applies TESTPKI_* variables.
// Variables already set in the process take precedence over the env file.
func LoadConfiguration(configPath, envFile string) (pki.Configuration, error) {
	cfg := pki.DefaultConfiguration()
	if configPath != "" {
		var err error
		if cfg, err = pki.LoadConfiguration(configPath); err != nil {
			return cfg, err
		}
	}

	fileEnv := map[string]string{}
	if envFile != "" {
		var err error
		if fileEnv, err = godotenv.Read(envFile); err != nil {
			return cfg, errors.Wrapf(err, "failed to read env file %s", envFile)
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, errors.WithMessage(err, "invalid environment")
	}
	return cfg, nil
}

// NewLogger returns a console logger on w, at debug level when verbose and
// warn level otherwise.
func NewLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// FormatSerial renders a serial number the way the commands print it
func FormatSerial(serial *big.Int) string {
	s := serial.Text(16)
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return s
}
