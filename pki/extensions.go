package pki

import (
	"crypto/sha1" // #nosec G505 -- RFC 5280 key identifier method 1
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"

	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	OIDSubjectKeyIdentifier   = asn1.ObjectIdentifier{2, 5, 29, 14}
	OIDKeyUsage               = asn1.ObjectIdentifier{2, 5, 29, 15}
	OIDBasicConstraints       = asn1.ObjectIdentifier{2, 5, 29, 19}
	OIDAuthorityKeyIdentifier = asn1.ObjectIdentifier{2, 5, 29, 35}
)

const (
	// CAKeyUsage is the key usage of intermediate certificates.
	CAKeyUsage = x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	// EndEntityKeyUsage is the key usage of end-entity certificates.
	EndEntityKeyUsage = x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment
)

// Extension is a single v3 certificate extension.
type Extension struct {
	ID       asn1.ObjectIdentifier
	Critical bool
	Value    []byte
}

// Extensions is an ordered set of extensions keyed by identifier.
type Extensions struct {
	list []Extension
}

// NewExtensions adds exts in order.
func NewExtensions(exts ...Extension) (Extensions, error) {
	var set Extensions
	for _, ext := range exts {
		if err := set.Add(ext); err != nil {
			return Extensions{}, err
		}
	}
	return set, nil
}

// Add appends ext, rejecting a second extension with the same identifier.
func (s *Extensions) Add(ext Extension) error {
	if _, ok := s.Get(ext.ID); ok {
		return errors.Wrapf(ErrDuplicateExtension, "extension %s", ext.ID)
	}
	s.list = append(s.list, Extension{
		ID:       append(asn1.ObjectIdentifier(nil), ext.ID...),
		Critical: ext.Critical,
		Value:    append([]byte(nil), ext.Value...),
	})
	return nil
}

// Get looks an extension up by identifier.
func (s Extensions) Get(id asn1.ObjectIdentifier) (Extension, bool) {
	for _, ext := range s.list {
		if ext.ID.Equal(id) {
			return ext, true
		}
	}
	return Extension{}, false
}

// Len returns the number of extensions.
func (s Extensions) Len() int { return len(s.list) }

// List returns the extensions in insertion order.
func (s Extensions) List() []Extension {
	return append([]Extension(nil), s.list...)
}

func (s Extensions) pkix() []pkix.Extension {
	out := make([]pkix.Extension, 0, len(s.list))
	for _, ext := range s.list {
		out = append(out, pkix.Extension{Id: ext.ID, Critical: ext.Critical, Value: ext.Value})
	}
	return out
}

// KeyIdentifier computes the SHA-1 hash of the subjectPublicKey bits of a DER
// SubjectPublicKeyInfo.
func KeyIdentifier(spki []byte) ([]byte, error) {
	input := cryptobyte.String(spki)
	var info, algorithm cryptobyte.String
	var publicKey asn1.BitString
	if !input.ReadASN1(&info, cryptobyte_asn1.SEQUENCE) || !input.Empty() {
		return nil, encodingError("key identifier", errors.New("malformed subject public key info"))
	}
	if !info.ReadASN1(&algorithm, cryptobyte_asn1.SEQUENCE) {
		return nil, encodingError("key identifier", errors.New("malformed public key algorithm identifier"))
	}
	if !info.ReadASN1BitString(&publicKey) || !info.Empty() {
		return nil, encodingError("key identifier", errors.New("malformed subject public key"))
	}
	sum := sha1.Sum(publicKey.Bytes) // #nosec G401
	return sum[:], nil
}

type authorityKeyID struct {
	ID []byte `asn1:"optional,tag:0"`
}

// AuthorityKeyIdentifier builds the non-critical AKI extension identifying the
// issuer's key from the issuer's SubjectPublicKeyInfo.
func AuthorityKeyIdentifier(issuerSPKI []byte) (Extension, error) {
	id, err := KeyIdentifier(issuerSPKI)
	if err != nil {
		return Extension{}, err
	}
	return authorityKeyIdentifierFromID(id)
}

func authorityKeyIdentifierFromID(id []byte) (Extension, error) {
	value, err := asn1.Marshal(authorityKeyID{ID: id})
	if err != nil {
		return Extension{}, encodingError("authority key identifier", err)
	}
	return Extension{ID: OIDAuthorityKeyIdentifier, Value: value}, nil
}

// SubjectKeyIdentifier builds the non-critical SKI extension from the subject's
// own SubjectPublicKeyInfo.
func SubjectKeyIdentifier(spki []byte) (Extension, error) {
	id, err := KeyIdentifier(spki)
	if err != nil {
		return Extension{}, err
	}
	value, err := asn1.Marshal(id)
	if err != nil {
		return Extension{}, encodingError("subject key identifier", err)
	}
	return Extension{ID: OIDSubjectKeyIdentifier, Value: value}, nil
}

type basicConstraints struct {
	IsCA       bool `asn1:"optional"`
	MaxPathLen int  `asn1:"optional,default:-1"`
}

// BasicConstraints builds the critical basic constraints extension. A negative
// maxPathLen leaves the path length unconstrained; it is ignored for end entities.
func BasicConstraints(isCA bool, maxPathLen int) (Extension, error) {
	if !isCA || maxPathLen < 0 {
		maxPathLen = -1
	}
	value, err := asn1.Marshal(basicConstraints{IsCA: isCA, MaxPathLen: maxPathLen})
	if err != nil {
		return Extension{}, encodingError("basic constraints", err)
	}
	return Extension{ID: OIDBasicConstraints, Critical: true, Value: value}, nil
}

// KeyUsage builds the critical key usage extension.
func KeyUsage(usage x509.KeyUsage) (Extension, error) {
	var a [2]byte
	a[0] = reverseBits(byte(usage))
	a[1] = reverseBits(byte(usage >> 8))
	l := 1
	if a[1] != 0 {
		l = 2
	}
	bits := a[:l]
	value, err := asn1.Marshal(asn1.BitString{Bytes: bits, BitLength: bitLength(bits)})
	if err != nil {
		return Extension{}, encodingError("key usage", err)
	}
	return Extension{ID: OIDKeyUsage, Critical: true, Value: value}, nil
}

// reverseBits maps x509.KeyUsage bit i onto ASN.1 named bit i.
func reverseBits(b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		r = r<<1 | b&1
		b >>= 1
	}
	return r
}

// bitLength trims trailing zero bits as DER requires for named bit lists.
func bitLength(b []byte) int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if b[i]&(1<<bit) != 0 {
				return i*8 + 8 - bit
			}
		}
	}
	return 0
}
