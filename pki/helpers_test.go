package pki_test

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"io"
	"sync"
	"testing"

	"github.com/adityajoshi12/testpki/pki"
	"github.com/stretchr/testify/require"
)

const testKeySize = 2048

var (
	keysOnce sync.Once
	keys     []*rsa.PrivateKey
	keysErr  error
)

// testKeys returns n cached RSA keys; generating them dominates test time.
func testKeys(t *testing.T, n int) []*rsa.PrivateKey {
	t.Helper()
	keysOnce.Do(func() {
		for i := 0; i < 4; i++ {
			k, err := rsa.GenerateKey(rand.Reader, testKeySize)
			if err != nil {
				keysErr = err
				return
			}
			keys = append(keys, k)
		}
	})
	require.NoError(t, keysErr)
	require.LessOrEqual(t, n, len(keys))
	return keys[:n]
}

type chain struct {
	rootKey, intKey, endKey *rsa.PrivateKey
	root, intermediate, end *x509.Certificate
}

func issueChain(t *testing.T, f *pki.Factory) chain {
	t.Helper()
	k := testKeys(t, 3)
	c := chain{rootKey: k[0], intKey: k[1], endKey: k[2]}

	root, err := f.GenerateRootCert(c.rootKey)
	require.NoError(t, err)
	c.root, err = root.X509()
	require.NoError(t, err)

	intermediate, err := f.GenerateIntermediateCert(&c.intKey.PublicKey, c.rootKey, c.root)
	require.NoError(t, err)
	c.intermediate, err = intermediate.X509()
	require.NoError(t, err)

	end, err := f.GenerateEndEntityCert(&c.endKey.PublicKey, c.intKey, c.intermediate)
	require.NoError(t, err)
	c.end, err = end.X509()
	require.NoError(t, err)
	return c
}

func findExtension(t *testing.T, cert *x509.Certificate, id []int) (critical bool, value []byte) {
	t.Helper()
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(id) {
			return ext.Critical, ext.Value
		}
	}
	require.Failf(t, "extension not found", "%v", id)
	return false, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

// brokenSigner wraps a key and either fails or corrupts signatures.
type brokenSigner struct {
	crypto.Signer
	fail    bool
	corrupt bool
}

func (s brokenSigner) Sign(r io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if s.fail {
		return nil, io.ErrClosedPipe
	}
	sig, err := s.Signer.Sign(r, digest, opts)
	if err != nil {
		return nil, err
	}
	if s.corrupt {
		sig[len(sig)-1] ^= 0xff
	}
	return sig, nil
}
