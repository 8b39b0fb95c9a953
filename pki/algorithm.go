package pki

import (
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"strings"

	// registered for crypto.Hash.Available
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
)

// SignatureAlgorithm names an RSA PKCS#1 v1.5 signature with a digest.
type SignatureAlgorithm string

const (
	SHA1WithRSA   SignatureAlgorithm = "RSA-SHA1"
	SHA256WithRSA SignatureAlgorithm = "RSA-SHA256"
	SHA384WithRSA SignatureAlgorithm = "RSA-SHA384"
	SHA512WithRSA SignatureAlgorithm = "RSA-SHA512"

	DefaultSignatureAlgorithm = SHA256WithRSA
)

var (
	oidSHA1WithRSA   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 5}
	oidSHA256WithRSA = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}
	oidSHA384WithRSA = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 12}
	oidSHA512WithRSA = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 13}
)

type algorithmDetails struct {
	name SignatureAlgorithm
	oid  asn1.ObjectIdentifier
	hash crypto.Hash
	x509 x509.SignatureAlgorithm
}

var signatureAlgorithms = []algorithmDetails{
	{SHA1WithRSA, oidSHA1WithRSA, crypto.SHA1, x509.SHA1WithRSA},
	{SHA256WithRSA, oidSHA256WithRSA, crypto.SHA256, x509.SHA256WithRSA},
	{SHA384WithRSA, oidSHA384WithRSA, crypto.SHA384, x509.SHA384WithRSA},
	{SHA512WithRSA, oidSHA512WithRSA, crypto.SHA512, x509.SHA512WithRSA},
}

// SignatureAlgorithms lists the supported algorithms.
func SignatureAlgorithms() []SignatureAlgorithm {
	out := make([]SignatureAlgorithm, 0, len(signatureAlgorithms))
	for _, d := range signatureAlgorithms {
		out = append(out, d.name)
	}
	return out
}

// ParseSignatureAlgorithm accepts the canonical names ("RSA-SHA256") case-insensitively,
// as well as the crypto/x509 spelling ("SHA256-RSA").
func ParseSignatureAlgorithm(s string) (SignatureAlgorithm, error) {
	for _, d := range signatureAlgorithms {
		if strings.EqualFold(s, string(d.name)) || strings.EqualFold(s, d.x509.String()) {
			return d.name, nil
		}
	}
	return "", &UnsupportedAlgorithmError{Algorithm: s, Reason: "unknown signature algorithm"}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *SignatureAlgorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseSignatureAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a SignatureAlgorithm) String() string { return string(a) }

// Hash returns the digest used by the algorithm.
func (a SignatureAlgorithm) Hash() (crypto.Hash, error) {
	d, err := a.details()
	if err != nil {
		return 0, err
	}
	return d.hash, nil
}

// Identifier returns the AlgorithmIdentifier bound into certificates. RSA
// identifiers carry explicit NULL parameters (RFC 3279 §2.2.1).
func (a SignatureAlgorithm) Identifier() (pkix.AlgorithmIdentifier, error) {
	d, err := a.details()
	if err != nil {
		return pkix.AlgorithmIdentifier{}, err
	}
	return pkix.AlgorithmIdentifier{Algorithm: d.oid, Parameters: asn1.NullRawValue}, nil
}

func (a SignatureAlgorithm) details() (algorithmDetails, error) {
	for _, d := range signatureAlgorithms {
		if d.name == a {
			if !d.hash.Available() {
				return algorithmDetails{}, &UnsupportedAlgorithmError{Algorithm: string(a), Reason: "digest not available"}
			}
			return d, nil
		}
	}
	return algorithmDetails{}, &UnsupportedAlgorithmError{Algorithm: string(a), Reason: "unknown signature algorithm"}
}

func algorithmFromX509(alg x509.SignatureAlgorithm) (algorithmDetails, error) {
	for _, d := range signatureAlgorithms {
		if d.x509 == alg {
			return d, nil
		}
	}
	return algorithmDetails{}, &UnsupportedAlgorithmError{Algorithm: alg.String(), Reason: "not an RSA PKCS#1 v1.5 algorithm"}
}
