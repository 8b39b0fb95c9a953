package utilities

import (
	"bytes"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// JSONCertificate is the JSON form certificates are written in with --json
type JSONCertificate struct {
	Role         string    `json:"role,omitempty"`
	Subject      string    `json:"subject"`
	Issuer       string    `json:"issuer"`
	SerialNumber string    `json:"serialNumber"`
	NotBefore    time.Time `json:"notBefore"`
	NotAfter     time.Time `json:"notAfter"`
	// Certificate holds the PEM encoding
	Certificate string `json:"certificate"`
}

// NewJSONCertificate wraps cert for JSON output
func NewJSONCertificate(role string, cert *x509.Certificate) JSONCertificate {
	return JSONCertificate{
		Role:         role,
		Subject:      cert.Subject.String(),
		Issuer:       cert.Issuer.String(),
		SerialNumber: cert.SerialNumber.Text(16),
		NotBefore:    cert.NotBefore,
		NotAfter:     cert.NotAfter,
		Certificate:  string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})),
	}
}

// ParseCertificate reads a certificate stored as PEM, DER or JSON. The bool
// reports whether the file was JSON.
func ParseCertificate(path string) (*x509.Certificate, bool, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, false, errors.WithMessage(err, "Unable to read certificate file")
	}
	cert, isJson, err := ParseCertificateBytes(data)
	if err != nil {
		return nil, isJson, errors.WithMessagef(err, "Unable to parse certificate %s", path)
	}
	return cert, isJson, nil
}

// ParseCertificateBytes is ParseCertificate on file contents
func ParseCertificateBytes(data []byte) (*x509.Certificate, bool, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var jCert JSONCertificate
		if err := json.Unmarshal(trimmed, &jCert); err != nil {
			return nil, true, errors.Wrap(err, "invalid JSON certificate")
		}
		cert, err := parsePEMCertificate([]byte(jCert.Certificate))
		return cert, true, err
	}
	if bytes.Contains(data, []byte("-----BEGIN")) {
		cert, err := parsePEMCertificate(data)
		return cert, false, err
	}
	cert, err := x509.ParseCertificate(data)
	if err != nil {
		return nil, false, errors.Wrap(err, "invalid DER certificate")
	}
	return cert, false, nil
}

// ParseCertificates reads every CERTIFICATE block of a PEM bundle in order
func ParseCertificates(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.WithMessage(err, "Unable to read certificate bundle")
	}
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid certificate in %s", path)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, errors.Errorf("No certificate found in %s", path)
	}
	return certs, nil
}

func parsePEMCertificate(data []byte) (*x509.Certificate, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, errors.New("No certificate found in PEM data")
		}
		if block.Type == "CERTIFICATE" {
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, errors.Wrap(err, "invalid PEM certificate")
			}
			return cert, nil
		}
	}
}
