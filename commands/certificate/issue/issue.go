package issue

import (
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"io"

	"github.com/adityajoshi12/testpki/commands/common"
	"github.com/adityajoshi12/testpki/pki"
	"github.com/adityajoshi12/testpki/utilities"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// issuer holds what every single-certificate command shares: the factory
// settings and where the new key and certificate go.
type issuer struct {
	common.Command
	common.IssueFlags
	KeyOut  string
	CertOut string
}

func (i *issuer) bind(cmd *cobra.Command) {
	i.Bind(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&i.KeyOut, "key-out", "k", "", "Path the new private key is written to")
	flags.StringVarP(&i.CertOut, "cert-out", "o", "", "Path the new certificate is written to")
	_ = cmd.MarkFlagFilename("key-out", "pem", "key")
	_ = cmd.MarkFlagFilename("cert-out", "pem", "crt")
}

func (i *issuer) validateOutputs() error {
	if len(i.KeyOut) == 0 {
		return errors.New("Private key output path (--key-out) is required")
	}
	if len(i.CertOut) == 0 {
		return errors.New("Certificate output path (--cert-out) is required")
	}
	if i.KeyOut == i.CertOut {
		return errors.New("--key-out and --cert-out must differ")
	}
	return nil
}

// setup resolves the configuration and generates the subject key
func (i *issuer) setup() (*pki.Factory, *rsa.PrivateKey, error) {
	cfg, err := i.Configuration()
	if err != nil {
		return nil, nil, err
	}
	factory := common.Factory(cfg, common.NewLogger(i.ErrOut(), i.Verbose))
	key, err := utilities.GenerateRSAKey(cfg.KeySize)
	if err != nil {
		return nil, nil, err
	}
	return factory, key, nil
}

func (i *issuer) write(role string, key *rsa.PrivateKey, cert *pki.Certificate) error {
	parsed, err := cert.X509()
	if err != nil {
		return err
	}
	if err := writeKey(i.KeyOut, key); err != nil {
		return err
	}
	if err := writeCertificate(i.CertOut, role, cert, parsed, i.JSON); err != nil {
		return err
	}
	printIssued(i.Out(), role, parsed)
	fmt.Fprintf(i.Out(), "  Certificate: %s\n", i.CertOut)
	fmt.Fprintf(i.Out(), "  Private Key: %s\n", i.KeyOut)
	return nil
}

func writeKey(path string, key *rsa.PrivateKey) error {
	keyPEM, err := utilities.MarshalPrivateKeyPEM(key)
	if err != nil {
		return err
	}
	return errors.WithMessage(utilities.WriteFileToLocal(path, keyPEM, utilities.PrivateFileMode), "Unable to write private key")
}

func writeCertificate(path, role string, cert *pki.Certificate, parsed *x509.Certificate, asJSON bool) error {
	if asJSON {
		return errors.WithMessage(utilities.WriteJsonFileToLocal(path, utilities.NewJSONCertificate(role, parsed)), "Unable to write certificate")
	}
	return errors.WithMessage(utilities.WriteFileToLocal(path, cert.PEM(), utilities.PublicFileMode), "Unable to write certificate")
}

func printIssued(w io.Writer, role string, cert *x509.Certificate) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "%s Issued %s certificate (version %d)\n", green("✓"), role, cert.Version)
	fmt.Fprintf(w, "  Subject: %s\n", yellow(cert.Subject.String()))
	fmt.Fprintf(w, "  Issuer: %s\n", cert.Issuer.String())
	fmt.Fprintf(w, "  Serial: %s\n", common.FormatSerial(cert.SerialNumber))
	fmt.Fprintf(w, "  Signature Algorithm: %s\n", cert.SignatureAlgorithm)
	fmt.Fprintf(w, "  Valid: %s → %s\n", cert.NotBefore.UTC(), cert.NotAfter.UTC())
}

// loadIssuer reads the CA certificate and the key it is signed with
func loadIssuer(certPath, keyPath string) (*x509.Certificate, crypto.Signer, error) {
	caCert, _, err := utilities.ParseCertificate(certPath)
	if err != nil {
		return nil, nil, err
	}
	key, err := utilities.ParsePrivateKey(keyPath)
	if err != nil {
		return nil, nil, err
	}
	signer, err := utilities.SignerFromPrivateKey(key)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "Unable to use CA private key")
	}
	return caCert, signer, nil
}
