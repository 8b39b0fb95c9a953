package pki

import (
	"github.com/pkg/errors"
)

var (
	// ErrDuplicateExtension is returned when an extension identifier is added twice.
	ErrDuplicateExtension = errors.New("duplicate extension")
	// ErrNotCertificateAuthority is returned when the issuing certificate may not sign certificates.
	ErrNotCertificateAuthority = errors.New("issuer is not a certificate authority")
	// ErrKeyMismatch is returned when the CA private key does not belong to the CA certificate.
	ErrKeyMismatch = errors.New("private key does not match certificate public key")
)

// EncodingError reports malformed key bytes, names or structures that cannot be DER encoded.
type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string { return "pki: encoding " + e.Op + ": " + e.Err.Error() }
func (e *EncodingError) Unwrap() error { return e.Err }
func (e *EncodingError) Cause() error  { return e.Err }

// UnsupportedAlgorithmError reports a signature/digest pairing that cannot be used.
type UnsupportedAlgorithmError struct {
	Algorithm string
	Reason    string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return "pki: unsupported algorithm " + e.Algorithm + ": " + e.Reason
}

// SigningError reports a failure of the signature primitive.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string { return "pki: signing: " + e.Err.Error() }
func (e *SigningError) Unwrap() error { return e.Err }
func (e *SigningError) Cause() error  { return e.Err }

// CertificateGenerationError is returned by the factory operations and wraps the
// error of the step that failed. No certificate is produced when it is returned.
type CertificateGenerationError struct {
	Op  string
	Err error
}

func (e *CertificateGenerationError) Error() string {
	return "pki: " + e.Op + ": " + e.Err.Error()
}
func (e *CertificateGenerationError) Unwrap() error { return e.Err }
func (e *CertificateGenerationError) Cause() error  { return e.Err }

func encodingError(op string, err error) error {
	return &EncodingError{Op: op, Err: err}
}
