package utilities

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"strings"
	"time"

	"github.com/adityajoshi12/testpki/pki"
	"github.com/pkg/errors"
)

var extensionNames = map[string]string{
	pki.OIDSubjectKeyIdentifier.String():   "X509v3 Subject Key Identifier",
	pki.OIDKeyUsage.String():               "X509v3 Key Usage",
	pki.OIDBasicConstraints.String():       "X509v3 Basic Constraints",
	pki.OIDAuthorityKeyIdentifier.String(): "X509v3 Authority Key Identifier",
	"2.5.29.17":                            "X509v3 Subject Alternative Name",
	"2.5.29.31":                            "X509v3 CRL Distribution Points",
	"2.5.29.32":                            "X509v3 Certificate Policies",
	"2.5.29.37":                            "X509v3 Extended Key Usage",
	"1.3.6.1.5.5.7.1.1":                    "Authority Information Access",
}

// indexed by KeyUsage bit position
var keyUsageNames = []string{
	"Digital Signature",
	"Non Repudiation",
	"Key Encipherment",
	"Data Encipherment",
	"Key Agreement",
	"Certificate Sign",
	"CRL Sign",
	"Encipher Only",
	"Decipher Only",
}

// CertificateText renders cert the way "openssl x509 -text" does, decoding the
// extensions testpki issues.
func CertificateText(cert *x509.Certificate) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Certificate:\n")
	fmt.Fprintf(&buf, "    Data:\n")
	fmt.Fprintf(&buf, "        Version: %d (%#x)\n", cert.Version, cert.Version-1)
	fmt.Fprintf(&buf, "        Serial Number: %s\n", hexColons(cert.SerialNumber.Bytes()))
	fmt.Fprintf(&buf, "    Signature Algorithm: %s\n", cert.SignatureAlgorithm)
	fmt.Fprintf(&buf, "        Issuer: %s\n", cert.Issuer)
	fmt.Fprintf(&buf, "        Validity\n")
	fmt.Fprintf(&buf, "            Not Before: %s\n", cert.NotBefore.UTC().Format(time.RFC1123))
	fmt.Fprintf(&buf, "            Not After : %s\n", cert.NotAfter.UTC().Format(time.RFC1123))
	fmt.Fprintf(&buf, "        Subject: %s\n", cert.Subject)
	fmt.Fprintf(&buf, "        Subject Public Key Info:\n")
	fmt.Fprintf(&buf, "            Public Key Algorithm: %s\n", cert.PublicKeyAlgorithm)
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		fmt.Fprintf(&buf, "                Public-Key: (%d bit)\n", pub.N.BitLen())
		fmt.Fprintf(&buf, "                Exponent: %d (%#x)\n", pub.E, pub.E)
	case *ecdsa.PublicKey:
		fmt.Fprintf(&buf, "                Public-Key: (%d bit)\n", pub.Curve.Params().BitSize)
		fmt.Fprintf(&buf, "                NIST CURVE: %s\n", pub.Curve.Params().Name)
	}

	if len(cert.Extensions) > 0 {
		fmt.Fprintf(&buf, "        X509v3 extensions:\n")
		for _, ext := range cert.Extensions {
			if err := writeExtension(&buf, ext); err != nil {
				return "", err
			}
		}
	}

	fmt.Fprintf(&buf, "    Signature Algorithm: %s\n", cert.SignatureAlgorithm)
	for _, line := range wrapHex(cert.Signature, 18) {
		fmt.Fprintf(&buf, "         %s\n", line)
	}
	return buf.String(), nil
}

func writeExtension(buf *bytes.Buffer, ext pkix.Extension) error {
	name, ok := extensionNames[ext.Id.String()]
	if !ok {
		name = ext.Id.String()
	}
	critical := ""
	if ext.Critical {
		critical = " critical"
	}
	fmt.Fprintf(buf, "            %s:%s\n", name, critical)

	value, err := extensionValue(ext)
	if err != nil {
		return errors.WithMessagef(err, "Unable to decode %s", name)
	}
	fmt.Fprintf(buf, "                %s\n", value)
	return nil
}

func extensionValue(ext pkix.Extension) (string, error) {
	switch {
	case ext.Id.Equal(pki.OIDSubjectKeyIdentifier):
		var id []byte
		if err := unmarshalExtension(ext.Value, &id); err != nil {
			return "", err
		}
		return hexColons(id), nil

	case ext.Id.Equal(pki.OIDAuthorityKeyIdentifier):
		var aki struct {
			ID []byte `asn1:"optional,tag:0"`
		}
		if err := unmarshalExtension(ext.Value, &aki); err != nil {
			return "", err
		}
		return "keyid:" + hexColons(aki.ID), nil

	case ext.Id.Equal(pki.OIDBasicConstraints):
		bc := struct {
			IsCA       bool `asn1:"optional"`
			MaxPathLen int  `asn1:"optional,default:-1"`
		}{MaxPathLen: -1}
		if err := unmarshalExtension(ext.Value, &bc); err != nil {
			return "", err
		}
		if !bc.IsCA {
			return "CA:FALSE", nil
		}
		if bc.MaxPathLen >= 0 {
			return fmt.Sprintf("CA:TRUE, pathlen:%d", bc.MaxPathLen), nil
		}
		return "CA:TRUE", nil

	case ext.Id.Equal(pki.OIDKeyUsage):
		var bits asn1.BitString
		if err := unmarshalExtension(ext.Value, &bits); err != nil {
			return "", err
		}
		var usages []string
		for i, name := range keyUsageNames {
			if bits.At(i) != 0 {
				usages = append(usages, name)
			}
		}
		return strings.Join(usages, ", "), nil
	}
	return hexColons(ext.Value), nil
}

func unmarshalExtension(der []byte, v interface{}) error {
	rest, err := asn1.Unmarshal(der, v)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return errors.New("trailing data after extension value")
	}
	return nil
}

func hexColons(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, ":")
}

func wrapHex(b []byte, perLine int) []string {
	var lines []string
	for len(b) > 0 {
		n := perLine
		if n > len(b) {
			n = len(b)
		}
		lines = append(lines, strings.ToLower(hexColons(b[:n])))
		b = b[n:]
	}
	return lines
}
