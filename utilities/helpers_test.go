package utilities_test

import (
	"crypto/rsa"
	"crypto/x509"
	"os"
	"testing"

	"github.com/adityajoshi12/testpki/pki"
	"github.com/adityajoshi12/testpki/utilities"
)

type testChain struct {
	rootKey, intermediateKey *rsa.PrivateKey
	root, intermediate       *x509.Certificate
}

func issueTestChain(t *testing.T) testChain {
	t.Helper()
	rootKey, err := utilities.GenerateRSAKey(2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	intermediateKey, err := utilities.GenerateRSAKey(2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	rootCert, err := pki.GenerateRootCert(rootKey)
	if err != nil {
		t.Fatalf("failed to issue root: %v", err)
	}
	root, err := rootCert.X509()
	if err != nil {
		t.Fatalf("failed to parse root: %v", err)
	}
	intermediateCert, err := pki.GenerateIntermediateCert(&intermediateKey.PublicKey, rootKey, root)
	if err != nil {
		t.Fatalf("failed to issue intermediate: %v", err)
	}
	intermediate, err := intermediateCert.X509()
	if err != nil {
		t.Fatalf("failed to parse intermediate: %v", err)
	}
	return testChain{rootKey: rootKey, intermediateKey: intermediateKey, root: root, intermediate: intermediate}
}

func createTempFile(t *testing.T, content string) string {
	t.Helper()
	tempFile, err := os.CreateTemp(t.TempDir(), "temp-*.pem")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	if _, err := tempFile.WriteString(content); err != nil {
		t.Fatalf("failed to write to temp file: %v", err)
	}

	tempFile.Close()
	return tempFile.Name()
}
