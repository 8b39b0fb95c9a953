package pki

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"time"

	"github.com/pkg/errors"
)

// Certificate versions as they appear to users. The encoded field is version-1.
const (
	V1 = 1
	V3 = 3
)

// TBSCertificate is the to-be-signed body of a certificate. It is produced by
// BuildV1/BuildV3 and must not be modified afterwards.
type TBSCertificate struct {
	Version      int
	SerialNumber *big.Int
	Issuer       DistinguishedName
	Subject      DistinguishedName
	Validity     ValidityPeriod
	// PublicKeyInfo is the DER SubjectPublicKeyInfo of the subject key.
	PublicKeyInfo []byte
	// Extensions is empty for V1.
	Extensions Extensions
}

type tbsCertificate struct {
	Version            int `asn1:"optional,explicit,default:0,tag:0"`
	SerialNumber       *big.Int
	SignatureAlgorithm pkix.AlgorithmIdentifier
	Issuer             asn1.RawValue
	Validity           validity
	Subject            asn1.RawValue
	PublicKey          asn1.RawValue
	Extensions         []pkix.Extension `asn1:"omitempty,optional,explicit,tag:3"`
}

type validity struct {
	NotBefore, NotAfter time.Time
}

// BuildV1 assembles a version 1 body. V1 certificates carry no extensions.
func BuildV1(issuer, subject DistinguishedName, serial *big.Int, v ValidityPeriod, spki []byte) (*TBSCertificate, error) {
	return build(V1, issuer, subject, serial, v, spki, Extensions{})
}

// BuildV3 assembles a version 3 body with the given extensions.
func BuildV3(issuer, subject DistinguishedName, serial *big.Int, v ValidityPeriod, spki []byte, exts Extensions) (*TBSCertificate, error) {
	return build(V3, issuer, subject, serial, v, spki, exts)
}

func build(version int, issuer, subject DistinguishedName, serial *big.Int, v ValidityPeriod, spki []byte, exts Extensions) (*TBSCertificate, error) {
	if serial == nil || serial.Sign() < 0 {
		return nil, encodingError("serial number", errors.New("serial number must be non-negative"))
	}
	v = v.normalize()
	if err := v.validate(); err != nil {
		return nil, encodingError("validity", err)
	}
	if _, err := KeyIdentifier(spki); err != nil {
		return nil, err
	}
	return &TBSCertificate{
		Version:       version,
		SerialNumber:  new(big.Int).Set(serial),
		Issuer:        issuer,
		Subject:       subject,
		Validity:      v,
		PublicKeyInfo: append([]byte(nil), spki...),
		Extensions:    exts,
	}, nil
}

// marshal encodes the body with alg bound into its signature field.
func (t *TBSCertificate) marshal(alg pkix.AlgorithmIdentifier) ([]byte, error) {
	issuer, err := t.Issuer.MarshalDER()
	if err != nil {
		return nil, err
	}
	subject, err := t.Subject.MarshalDER()
	if err != nil {
		return nil, err
	}
	body := tbsCertificate{
		Version:            t.Version - 1,
		SerialNumber:       t.SerialNumber,
		SignatureAlgorithm: alg,
		Issuer:             asn1.RawValue{FullBytes: issuer},
		Validity:           validity{NotBefore: t.Validity.NotBefore, NotAfter: t.Validity.NotAfter},
		Subject:            asn1.RawValue{FullBytes: subject},
		PublicKey:          asn1.RawValue{FullBytes: t.PublicKeyInfo},
	}
	if t.Version == V3 {
		body.Extensions = t.Extensions.pkix()
	} else if t.Extensions.Len() > 0 {
		return nil, encodingError("tbs certificate", errors.Errorf("version %d certificates cannot carry extensions", t.Version))
	}
	der, err := asn1.Marshal(body)
	if err != nil {
		return nil, encodingError("tbs certificate", err)
	}
	return der, nil
}
