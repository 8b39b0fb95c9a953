package pki

import (
	"crypto/x509/pkix"
	"encoding/asn1"

	"github.com/pkg/errors"
)

// OIDCommonName is the CN attribute type.
var OIDCommonName = asn1.ObjectIdentifier{2, 5, 4, 3}

// Attribute is a single attribute-type/value pair of a distinguished name.
type Attribute struct {
	Type  asn1.ObjectIdentifier
	Value string
}

// DistinguishedName is an ordered sequence of attributes. The zero value is the
// empty name. Values are immutable: accessors return copies.
type DistinguishedName struct {
	attrs []Attribute
	// raw holds the encoding the name was parsed from, if any.
	raw []byte
}

// NewDistinguishedName builds a name with one attribute per relative distinguished name.
func NewDistinguishedName(attrs ...Attribute) DistinguishedName {
	cp := make([]Attribute, len(attrs))
	for i, a := range attrs {
		cp[i] = Attribute{Type: append(asn1.ObjectIdentifier(nil), a.Type...), Value: a.Value}
	}
	return DistinguishedName{attrs: cp}
}

// CommonName builds a name with a single CN attribute.
func CommonName(label string) DistinguishedName {
	return NewDistinguishedName(Attribute{Type: OIDCommonName, Value: label})
}

// ParseDistinguishedName decodes a DER RDNSequence. The original bytes are kept so
// MarshalDER reproduces them exactly.
func ParseDistinguishedName(der []byte) (DistinguishedName, error) {
	var seq pkix.RDNSequence
	rest, err := asn1.Unmarshal(der, &seq)
	if err != nil {
		return DistinguishedName{}, encodingError("distinguished name", err)
	}
	if len(rest) != 0 {
		return DistinguishedName{}, encodingError("distinguished name", errors.New("trailing data"))
	}
	var attrs []Attribute
	for _, rdn := range seq {
		for _, atv := range rdn {
			value, ok := atv.Value.(string)
			if !ok {
				return DistinguishedName{}, encodingError("distinguished name",
					errors.Errorf("attribute %s has non-string value", atv.Type))
			}
			attrs = append(attrs, Attribute{Type: atv.Type, Value: value})
		}
	}
	return DistinguishedName{attrs: attrs, raw: append([]byte(nil), der...)}, nil
}

// Attributes returns a copy of the attributes in order.
func (n DistinguishedName) Attributes() []Attribute {
	return NewDistinguishedName(n.attrs...).attrs
}

// CommonName returns the first CN value or "".
func (n DistinguishedName) CommonName() string {
	for _, a := range n.attrs {
		if a.Type.Equal(OIDCommonName) {
			return a.Value
		}
	}
	return ""
}

// Equal reports structural equality.
func (n DistinguishedName) Equal(o DistinguishedName) bool {
	if len(n.attrs) != len(o.attrs) {
		return false
	}
	for i := range n.attrs {
		if !n.attrs[i].Type.Equal(o.attrs[i].Type) || n.attrs[i].Value != o.attrs[i].Value {
			return false
		}
	}
	return true
}

// RDNSequence converts the name to its pkix form.
func (n DistinguishedName) RDNSequence() pkix.RDNSequence {
	seq := make(pkix.RDNSequence, 0, len(n.attrs))
	for _, a := range n.attrs {
		seq = append(seq, pkix.RelativeDistinguishedNameSET{
			pkix.AttributeTypeAndValue{Type: a.Type, Value: a.Value},
		})
	}
	return seq
}

// MarshalDER returns the canonical encoding of the name.
func (n DistinguishedName) MarshalDER() ([]byte, error) {
	if n.raw != nil {
		return append([]byte(nil), n.raw...), nil
	}
	der, err := asn1.Marshal(n.RDNSequence())
	if err != nil {
		return nil, encodingError("distinguished name", err)
	}
	return der, nil
}

func (n DistinguishedName) String() string {
	return n.RDNSequence().String()
}
