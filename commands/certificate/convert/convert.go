package convert

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/adityajoshi12/testpki/commands/common"
	"github.com/adityajoshi12/testpki/utilities"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"software.sslmate.com/src/go-pkcs12"
)

func NewConvertCertificateCommand() *cobra.Command {

	c := ConvertCommand{}

	command := &cobra.Command{
		Short: "Convert certificate formats",
		Long:  "Convert certificates between different formats (PEM, DER, PKCS#12)",
		Use:   "convert",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.SetOutput(cmd)
			return c.Run()
		},
		Args: c.ParseArgs(),

		PreRunE: func(_ *cobra.Command, _ []string) error {
			if err := c.Validate(); err != nil {
				return err
			}

			return nil
		},
	}

	flags := command.Flags()
	flags.StringVar(&c.from, "from", "", "Source certificate file path")
	flags.StringVar(&c.to, "to", "", "Destination file path")
	flags.StringVar(&c.fromFormat, "from-format", "", "Source format: pem, der, p12 (auto-detect if not specified)")
	flags.StringVar(&c.toFormat, "to-format", "", "Destination format: pem, der, p12")
	flags.StringVar(&c.key, "key", "", "Private key file (required for PEM to PKCS#12)")
	flags.StringVar(&c.chain, "chain", "", "PEM bundle of CA certificates to include in a PKCS#12 file")
	flags.StringVar(&c.password, "password", "", "Password for PKCS#12 files")
	flags.StringVar(&c.certOut, "cert-out", "", "Output certificate file (when extracting from PKCS#12)")
	flags.StringVar(&c.keyOut, "key-out", "", "Output key file (when extracting from PKCS#12)")

	_ = command.MarkFlagFilename("from", "pem", "crt", "cer", "der", "p12", "pfx")
	_ = command.MarkFlagFilename("key", "pem", "key")
	_ = command.MarkFlagFilename("chain", "pem", "crt")
	_ = command.MarkFlagFilename("to")
	_ = command.MarkFlagFilename("cert-out")
	_ = command.MarkFlagFilename("key-out")

	return command

}

type ConvertCommand struct {
	common.Command
	from       string
	to         string
	fromFormat string
	toFormat   string
	key        string
	chain      string
	password   string
	certOut    string
	keyOut     string
}

func (c *ConvertCommand) Run() error {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(c.Out(), "%s Detected source format: %s\n", green("✓"), c.fromFormat)
	fmt.Fprintf(c.Out(), "%s Converting %s → %s\n", yellow("→"), c.fromFormat, c.toFormat)

	var err error
	switch c.fromFormat {
	case "pem":
		err = c.convertFromPEM()
	case "der":
		err = c.convertFromDER()
	case "p12":
		err = c.convertFromP12()
	default:
		return errors.Errorf("unsupported source format: %s", c.fromFormat)
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(c.Out(), "%s Certificate converted successfully\n", green("✓"))
	return nil
}

func (c *ConvertCommand) convertFromPEM() error {
	switch c.toFormat {
	case "der":
		return c.pemToDER()
	case "p12":
		return c.toP12()
	}
	return errors.Errorf("unsupported conversion: pem → %s", c.toFormat)
}

func (c *ConvertCommand) convertFromDER() error {
	switch c.toFormat {
	case "pem":
		return c.derToPEM()
	case "p12":
		return c.toP12()
	}
	return errors.Errorf("unsupported conversion: der → %s", c.toFormat)
}

func (c *ConvertCommand) convertFromP12() error {
	switch c.toFormat {
	case "pem":
		return c.p12ToPEM()
	case "der":
		return c.p12ToDER()
	}
	return errors.Errorf("unsupported conversion: p12 → %s", c.toFormat)
}

func (c *ConvertCommand) writeFile(path string, data []byte, perm os.FileMode, what string) error {
	if err := utilities.WriteFileToLocal(path, data, perm); err != nil {
		return errors.WithMessagef(err, "failed to write %s file", what)
	}
	fmt.Fprintf(c.Out(), "  Output: %s (%d bytes)\n", path, len(data))
	return nil
}

// PEM to DER conversion
func (c *ConvertCommand) pemToDER() error {
	pemData, err := os.ReadFile(c.from)
	if err != nil {
		return errors.Wrap(err, "failed to read PEM file")
	}

	block, _ := pem.Decode(pemData)
	if block == nil {
		return errors.New("failed to decode PEM block")
	}

	return c.writeFile(c.to, block.Bytes, utilities.PublicFileMode, "DER")
}

// DER to PEM conversion
func (c *ConvertCommand) derToPEM() error {
	derData, err := os.ReadFile(c.from)
	if err != nil {
		return errors.Wrap(err, "failed to read DER file")
	}

	blockType, perm := "CERTIFICATE", utilities.PublicFileMode
	if _, err := x509.ParseCertificate(derData); err != nil {
		perm = utilities.PrivateFileMode
		if _, err := x509.ParsePKCS8PrivateKey(derData); err == nil {
			blockType = "PRIVATE KEY"
		} else if _, err := x509.ParsePKCS1PrivateKey(derData); err == nil {
			blockType = "RSA PRIVATE KEY"
		} else {
			return errors.New("failed to parse DER data as certificate or private key")
		}
	}

	pemData := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: derData})
	if err := c.writeFile(c.to, pemData, perm, "PEM"); err != nil {
		return err
	}
	fmt.Fprintf(c.Out(), "  Type: %s\n", blockType)
	return nil
}

// PEM or DER to PKCS#12 conversion
func (c *ConvertCommand) toP12() error {
	cert, _, err := utilities.ParseCertificate(c.from)
	if err != nil {
		return errors.WithMessage(err, "failed to parse certificate")
	}

	key, err := utilities.ParsePrivateKey(c.key)
	if err != nil {
		return errors.WithMessage(err, "failed to parse private key")
	}

	var caCerts []*x509.Certificate
	if c.chain != "" {
		if caCerts, err = utilities.ParseCertificates(c.chain); err != nil {
			return errors.WithMessage(err, "failed to parse certificate chain")
		}
	}

	pfxData, err := pkcs12.Modern.Encode(key, cert, caCerts, c.password)
	if err != nil {
		return errors.Wrap(err, "failed to encode PKCS#12")
	}

	if err := c.writeFile(c.to, pfxData, utilities.PrivateFileMode, "PKCS#12"); err != nil {
		return err
	}
	fmt.Fprintf(c.Out(), "  Certificate: %s\n", cert.Subject.CommonName)
	if len(caCerts) > 0 {
		fmt.Fprintf(c.Out(), "  Chain: %d CA certificate(s)\n", len(caCerts))
	}
	return nil
}

// PKCS#12 to PEM conversion, CA certificates follow the leaf
func (c *ConvertCommand) p12ToPEM() error {
	pfxData, err := os.ReadFile(c.from)
	if err != nil {
		return errors.Wrap(err, "failed to read PKCS#12 file")
	}

	key, cert, caCerts, err := pkcs12.DecodeChain(pfxData, c.password)
	if err != nil {
		return errors.Wrap(err, "failed to decode PKCS#12 (check password)")
	}

	var certPEM bytes.Buffer
	for _, crt := range append([]*x509.Certificate{cert}, caCerts...) {
		if err := pem.Encode(&certPEM, &pem.Block{Type: "CERTIFICATE", Bytes: crt.Raw}); err != nil {
			return errors.Wrap(err, "failed to encode certificate")
		}
	}

	keyPEM, err := utilities.MarshalPrivateKeyPEM(key)
	if err != nil {
		return err
	}

	if c.certOut != "" && c.keyOut != "" {
		if err := c.writeFile(c.certOut, certPEM.Bytes(), utilities.PublicFileMode, "certificate"); err != nil {
			return err
		}
		if err := c.writeFile(c.keyOut, keyPEM, utilities.PrivateFileMode, "key"); err != nil {
			return err
		}
	} else {
		combined := append(certPEM.Bytes(), keyPEM...)
		if err := c.writeFile(c.to, combined, utilities.PrivateFileMode, "combined PEM"); err != nil {
			return err
		}
		fmt.Fprintf(c.Out(), "  Contains: Certificate + Private Key\n")
	}

	fmt.Fprintf(c.Out(), "  Subject: %s\n", cert.Subject.CommonName)
	if len(caCerts) > 0 {
		fmt.Fprintf(c.Out(), "  Chain: %d CA certificate(s)\n", len(caCerts))
	}
	return nil
}

// PKCS#12 to DER conversion (extracts certificate only)
func (c *ConvertCommand) p12ToDER() error {
	pfxData, err := os.ReadFile(c.from)
	if err != nil {
		return errors.Wrap(err, "failed to read PKCS#12 file")
	}

	_, cert, _, err := pkcs12.DecodeChain(pfxData, c.password)
	if err != nil {
		return errors.Wrap(err, "failed to decode PKCS#12 (check password)")
	}

	output := c.to
	if output == "" {
		output = c.certOut
	}

	if err := c.writeFile(output, cert.Raw, utilities.PublicFileMode, "DER"); err != nil {
		return err
	}
	fmt.Fprintf(c.Out(), "  Certificate: %s\n", cert.Subject.CommonName)
	fmt.Fprintf(c.Out(), "  Note: Private key not extracted (DER format for certificate only)\n")
	return nil
}

func (c *ConvertCommand) Validate() error {
	if c.from == "" {
		return errors.New("source file (--from) is required")
	}

	if _, err := os.Stat(c.from); os.IsNotExist(err) {
		return errors.New("source file does not exist: " + c.from)
	}

	if c.fromFormat == "" {
		detected, err := detectFormat(c.from)
		if err != nil {
			return errors.New("could not auto-detect source format, please specify --from-format")
		}
		c.fromFormat = detected
	}

	c.fromFormat = normalizeFormat(c.fromFormat)
	if c.toFormat != "" {
		c.toFormat = normalizeFormat(c.toFormat)
	}

	validFormats := map[string]bool{"pem": true, "der": true, "p12": true}
	if !validFormats[c.fromFormat] {
		return errors.New("invalid source format. Supported: pem, der, p12")
	}
	if c.toFormat != "" && !validFormats[c.toFormat] {
		return errors.New("invalid destination format. Supported: pem, der, p12")
	}

	if c.chain != "" && c.toFormat != "p12" {
		return errors.New("certificate chain (--chain) is only used for PKCS#12 output")
	}

	switch c.fromFormat {
	case "pem", "der":
		return c.validateToFormat(c.fromFormat)
	case "p12":
		return c.validateFromP12()
	}

	return nil
}

var formatNames = map[string]string{"pem": "PEM", "der": "DER", "p12": "PKCS#12"}

// validateToFormat covers conversions from a PEM or DER source
func (c *ConvertCommand) validateToFormat(from string) error {
	if c.toFormat == "" {
		return errors.New("destination format (--to-format) is required")
	}

	name := formatNames[from]
	switch c.toFormat {
	case from:
		return errors.Errorf("source and destination formats are the same (%s)", from)

	case "p12":
		if c.key == "" {
			return errors.Errorf("private key file (--key) is required for %s to PKCS#12 conversion", name)
		}
		if _, err := os.Stat(c.key); os.IsNotExist(err) {
			return errors.New("private key file does not exist: " + c.key)
		}
		if c.to == "" {
			return errors.Errorf("destination file (--to) is required for %s to PKCS#12 conversion", name)
		}
		if c.password == "" {
			return errors.New("password (--password) is required for PKCS#12 conversion")
		}

	default:
		if c.to == "" {
			return errors.Errorf("destination file (--to) is required for %s to %s conversion", name, formatNames[c.toFormat])
		}
	}

	return nil
}

func (c *ConvertCommand) validateFromP12() error {
	if c.password == "" {
		return errors.New("password (--password) is required to read PKCS#12 file")
	}

	if c.toFormat == "" {
		return errors.New("destination format (--to-format) is required")
	}

	switch c.toFormat {
	case "pem":
		if c.certOut == "" && c.keyOut == "" && c.to == "" {
			return errors.New("specify either --to (for combined output) or --cert-out and --key-out (for separate files)")
		}
		if (c.certOut != "" || c.keyOut != "") && (c.certOut == "" || c.keyOut == "") {
			return errors.New("both --cert-out and --key-out must be specified for separate file extraction")
		}

	case "der":
		if c.to == "" && c.certOut == "" {
			return errors.New("destination file (--to or --cert-out) is required for PKCS#12 to DER conversion")
		}

	case "p12":
		return errors.New("source and destination formats are the same (p12)")
	}

	return nil
}

// detectFormat tries to detect the file format based on content
func detectFormat(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}

	if bytes.Contains(data, []byte("-----BEGIN")) {
		return "pem", nil
	}

	if _, err := x509.ParseCertificate(data); err == nil {
		return "der", nil
	}

	// a PFX is a DER SEQUENCE that x509 rejects but pkcs12 recognises
	if len(data) >= 2 && data[0] == 0x30 {
		if _, err := pkcs12.ToPEM(data, ""); err == nil || err == pkcs12.ErrIncorrectPassword {
			return "p12", nil
		}
	}

	return "", errors.New("unknown format")
}

// normalizeFormat converts format aliases to standard names
func normalizeFormat(format string) string {
	switch format {
	case "pkcs12", "pfx":
		return "p12"
	default:
		return format
	}
}
