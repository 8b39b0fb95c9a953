package pki

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
)

// Certificate is a signed certificate: the body, the algorithm it was signed
// with, the signature value and the DER encoding of the whole.
type Certificate struct {
	TBS                *TBSCertificate
	SignatureAlgorithm SignatureAlgorithm
	Signature          []byte
	// Raw is the complete DER encoding.
	Raw []byte
	// RawTBSCertificate is the exact byte sequence the signature covers.
	RawTBSCertificate []byte
}

type certificate struct {
	TBSCertificate     asn1.RawValue
	SignatureAlgorithm pkix.AlgorithmIdentifier
	SignatureValue     asn1.BitString
}

// DER returns a copy of the DER encoding.
func (c *Certificate) DER() []byte {
	return append([]byte(nil), c.Raw...)
}

// PEM returns the certificate as a CERTIFICATE PEM block.
func (c *Certificate) PEM() []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.Raw})
}

// X509 parses the encoding with crypto/x509.
func (c *Certificate) X509() (*x509.Certificate, error) {
	cert, err := x509.ParseCertificate(c.Raw)
	if err != nil {
		return nil, encodingError("certificate", err)
	}
	return cert, nil
}
