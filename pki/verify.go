package pki

import (
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	"github.com/pkg/errors"
)

// VerifySignature checks the RSA PKCS#1 v1.5 signature of cert against pub.
// Unlike x509.Certificate.CheckSignatureFrom it accepts SHA-1 and performs no
// chain checks.
func VerifySignature(cert *x509.Certificate, pub crypto.PublicKey) error {
	if cert == nil {
		return errors.New("missing certificate")
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return &UnsupportedAlgorithmError{
			Algorithm: cert.SignatureAlgorithm.String(),
			Reason:    fmt.Sprintf("verification key is %T, RSA required", pub),
		}
	}
	details, err := algorithmFromX509(cert.SignatureAlgorithm)
	if err != nil {
		return err
	}
	h := details.hash.New()
	h.Write(cert.RawTBSCertificate)
	if err := rsa.VerifyPKCS1v15(rsaPub, details.hash, h.Sum(nil), cert.Signature); err != nil {
		return errors.Wrapf(err, "signature of %q", cert.Subject.String())
	}
	return nil
}

// publicKeysEqual compares two public keys of any type crypto/x509 understands.
func publicKeysEqual(a, b crypto.PublicKey) bool {
	ea, ok := a.(interface{ Equal(crypto.PublicKey) bool })
	return ok && ea.Equal(b)
}
