package utilities

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// GenerateRSAKey creates a fresh RSA key pair of the given size
func GenerateRSAKey(bits int) (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, errors.Wrapf(err, "GenerateRSAKey - Unable to generate %d-bit key", bits)
	}
	return key, nil
}

// MarshalPrivateKeyPEM encodes key as a PKCS#8 "PRIVATE KEY" block
func MarshalPrivateKeyPEM(key crypto.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, errors.WithMessage(err, "MarshalPrivateKeyPEM - Unable to marshal private key")
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// ParsePrivateKey reads a PEM private key in PKCS#8, PKCS#1 or SEC 1 form
func ParsePrivateKey(path string) (crypto.PrivateKey, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.WithMessage(err, "Unable to read private key file")
	}
	return ParsePrivateKeyPEM(data)
}

// ParsePrivateKeyPEM decodes the first private key block of data
func ParsePrivateKeyPEM(data []byte) (crypto.PrivateKey, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, errors.New("No private key found in PEM data")
		}
		var (
			key crypto.PrivateKey
			err error
		)
		switch block.Type {
		case "PRIVATE KEY":
			key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
		case "RSA PRIVATE KEY":
			key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
		case "EC PRIVATE KEY":
			key, err = x509.ParseECPrivateKey(block.Bytes)
		default:
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to parse %s", block.Type)
		}
		return key, nil
	}
}

// SignerFromPrivateKey returns key as a crypto.Signer
func SignerFromPrivateKey(key crypto.PrivateKey) (crypto.Signer, error) {
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, errors.Errorf("Private key of type %T cannot sign", key)
	}
	return signer, nil
}
