package pki

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/asn1"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Sign binds alg into tbs, signs the DER encoding of tbs with signer and returns
// the finished certificate. The signer must hold an RSA key; the signature is
// checked against the signer's public key before it is returned. random may be nil.
func Sign(tbs *TBSCertificate, signer crypto.Signer, alg SignatureAlgorithm, random io.Reader) (*Certificate, error) {
	if tbs == nil {
		return nil, encodingError("tbs certificate", errors.New("missing certificate body"))
	}
	if signer == nil {
		return nil, &SigningError{Err: errors.New("missing signing key")}
	}
	details, err := alg.details()
	if err != nil {
		return nil, err
	}
	pub, ok := signer.Public().(*rsa.PublicKey)
	if !ok {
		return nil, &UnsupportedAlgorithmError{
			Algorithm: string(alg),
			Reason:    fmt.Sprintf("signing key is %T, RSA required", signer.Public()),
		}
	}
	identifier, err := alg.Identifier()
	if err != nil {
		return nil, err
	}

	rawTBS, err := tbs.marshal(identifier)
	if err != nil {
		return nil, err
	}
	h := details.hash.New()
	h.Write(rawTBS)
	digest := h.Sum(nil)

	signature, err := signer.Sign(randOrDefault(random), digest, details.hash)
	if err != nil {
		return nil, &SigningError{Err: err}
	}
	if err := rsa.VerifyPKCS1v15(pub, details.hash, digest, signature); err != nil {
		return nil, &SigningError{Err: errors.WithMessage(err, "signature does not verify with the signer's public key")}
	}

	raw, err := asn1.Marshal(certificate{
		TBSCertificate:     asn1.RawValue{FullBytes: rawTBS},
		SignatureAlgorithm: identifier,
		SignatureValue:     asn1.BitString{Bytes: signature, BitLength: 8 * len(signature)},
	})
	if err != nil {
		return nil, encodingError("certificate", err)
	}
	return &Certificate{
		TBS:                tbs,
		SignatureAlgorithm: alg,
		Signature:          signature,
		Raw:                raw,
		RawTBSCertificate:  rawTBS,
	}, nil
}

func randOrDefault(r io.Reader) io.Reader {
	if r == nil {
		return rand.Reader
	}
	return r
}
