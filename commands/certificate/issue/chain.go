package issue

import (
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adityajoshi12/testpki/commands/common"
	"github.com/adityajoshi12/testpki/glossary"
	"github.com/adityajoshi12/testpki/pki"
	"github.com/adityajoshi12/testpki/utilities"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"software.sslmate.com/src/go-pkcs12"
)

// NewChainCommand creates the "certificate chain" command
func NewChainCommand() *cobra.Command {
	c := ChainCommand{}

	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Issue a root, intermediate and end-entity chain",
		Long: "Generate three RSA keys and a complete chain: a self-signed root, an intermediate " +
			"signed by the root and an end-entity certificate signed by the intermediate",
		Args: c.ParseArgs(),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return c.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.SetOutput(cmd)
			return c.Run()
		},
	}
	c.Bind(cmd)

	flags := cmd.Flags()
	flags.StringVarP(&c.OutDir, "out-dir", "d", "", "Folder the keys and certificates are written to")
	flags.BoolVar(&c.P12, "p12", false, "Also write the end-entity key and chain as a PKCS#12 bundle")
	flags.StringVar(&c.Password, "password", "", "Password of the PKCS#12 bundle")
	_ = cmd.MarkFlagDirname("out-dir")

	return cmd
}

type ChainCommand struct {
	common.Command
	common.IssueFlags
	OutDir   string
	P12      bool
	Password string
}

// chainLink is one issued certificate of the chain with its key
type chainLink struct {
	role     string
	key      *rsa.PrivateKey
	cert     *pki.Certificate
	parsed   *x509.Certificate
	certFile string
	keyFile  string
}

// Validate checks the required parameters for run
func (c *ChainCommand) Validate() error {
	if len(c.OutDir) == 0 {
		return errors.New("Output folder (--out-dir) is required")
	}
	if c.P12 && len(c.Password) == 0 {
		return errors.New("password (--password) is required for PKCS#12 output")
	}
	return nil
}

// Run executes the command
func (c *ChainCommand) Run() error {
	cfg, err := c.Configuration()
	if err != nil {
		return err
	}
	factory := common.Factory(cfg, common.NewLogger(c.ErrOut(), c.Verbose))

	links, err := issueChain(factory, cfg.KeySize)
	if err != nil {
		return err
	}
	if err := verifyChain(links); err != nil {
		return err
	}

	for _, link := range links {
		certPath := filepath.Join(c.OutDir, link.certFile)
		if c.JSON {
			certPath = strings.TrimSuffix(certPath, filepath.Ext(certPath)) + glossary.JSONCertExtension
		}
		keyPath := filepath.Join(c.OutDir, link.keyFile)
		if err := writeKey(keyPath, link.key); err != nil {
			return err
		}
		if err := writeCertificate(certPath, link.role, link.cert, link.parsed, c.JSON); err != nil {
			return err
		}
		printIssued(c.Out(), link.role, link.parsed)
		fmt.Fprintf(c.Out(), "  Certificate: %s\n", certPath)
		fmt.Fprintf(c.Out(), "  Private Key: %s\n", keyPath)
	}

	if c.P12 {
		if err := c.writeBundle(links); err != nil {
			return err
		}
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(c.Out(), "%s Chain verified: %s → %s → %s\n", green("✓"),
		links[2].parsed.Subject.CommonName, links[1].parsed.Subject.CommonName, links[0].parsed.Subject.CommonName)
	return nil
}

// issueChain issues root, intermediate and end entity in that order
func issueChain(factory *pki.Factory, keySize int) ([]chainLink, error) {
	links := []chainLink{
		{role: "root", certFile: glossary.RootCertFile, keyFile: glossary.RootKeyFile},
		{role: roleIntermediate, certFile: glossary.IntermediateCertFile, keyFile: glossary.IntermediateKeyFile},
		{role: roleEndEntity, certFile: glossary.EndEntityCertFile, keyFile: glossary.EndEntityKeyFile},
	}
	for i := range links {
		key, err := utilities.GenerateRSAKey(keySize)
		if err != nil {
			return nil, err
		}
		links[i].key = key

		switch i {
		case 0:
			links[i].cert, err = factory.GenerateRootCert(key)
		case 1:
			links[i].cert, err = factory.GenerateIntermediateCert(&key.PublicKey, links[0].key, links[0].parsed)
		default:
			links[i].cert, err = factory.GenerateEndEntityCert(&key.PublicKey, links[1].key, links[1].parsed)
		}
		if err != nil {
			return nil, err
		}
		if links[i].parsed, err = links[i].cert.X509(); err != nil {
			return nil, err
		}
	}
	return links, nil
}

// verifyChain checks every signature against the key of the certificate above it
func verifyChain(links []chainLink) error {
	for i, link := range links {
		issuer := links[0]
		if i > 0 {
			issuer = links[i-1]
		}
		if err := pki.VerifySignature(link.parsed, issuer.parsed.PublicKey); err != nil {
			return errors.WithMessagef(err, "%s certificate does not verify", link.role)
		}
	}
	return nil
}

func (c *ChainCommand) writeBundle(links []chainLink) error {
	end := links[2]
	pfxData, err := pkcs12.Modern.Encode(end.key, end.parsed, []*x509.Certificate{links[1].parsed, links[0].parsed}, c.Password)
	if err != nil {
		return errors.Wrap(err, "failed to encode PKCS#12")
	}
	path := filepath.Join(c.OutDir, glossary.EndEntityBundleFile)
	if err := utilities.WriteFileToLocal(path, pfxData, utilities.PrivateFileMode); err != nil {
		return errors.WithMessage(err, "Unable to write PKCS#12 bundle")
	}
	fmt.Fprintf(c.Out(), "  PKCS#12 Bundle: %s\n", path)
	return nil
}
