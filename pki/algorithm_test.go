package pki_test

import (
	"bytes"
	"crypto"
	"encoding/asn1"
	"testing"

	"github.com/adityajoshi12/testpki/pki"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseSignatureAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want pki.SignatureAlgorithm
	}{
		{"RSA-SHA256", pki.SHA256WithRSA},
		{"rsa-sha1", pki.SHA1WithRSA},
		{"SHA384-RSA", pki.SHA384WithRSA},
		{"sha512-rsa", pki.SHA512WithRSA},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := pki.ParseSignatureAlgorithm(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "RSA-MD5", "ECDSA-SHA256", "SHA256"} {
		_, err := pki.ParseSignatureAlgorithm(bad)
		var target *pki.UnsupportedAlgorithmError
		require.ErrorAs(t, err, &target, bad)
	}
}

func TestSignatureAlgorithmDetails(t *testing.T) {
	require.Equal(t, pki.SHA256WithRSA, pki.DefaultSignatureAlgorithm)
	require.Len(t, pki.SignatureAlgorithms(), 4)

	hashes := map[pki.SignatureAlgorithm]crypto.Hash{
		pki.SHA1WithRSA:   crypto.SHA1,
		pki.SHA256WithRSA: crypto.SHA256,
		pki.SHA384WithRSA: crypto.SHA384,
		pki.SHA512WithRSA: crypto.SHA512,
	}
	for _, alg := range pki.SignatureAlgorithms() {
		h, err := alg.Hash()
		require.NoError(t, err)
		require.Equal(t, hashes[alg], h)

		id, err := alg.Identifier()
		require.NoError(t, err)
		require.Equal(t, asn1.TagNull, id.Parameters.Tag)
		der, err := asn1.Marshal(id)
		require.NoError(t, err)
		require.True(t, bytes.HasSuffix(der, []byte{0x05, 0x00}), "parameters must encode as NULL: %x", der)
	}

	_, err := pki.SignatureAlgorithm("RSA-MD5").Identifier()
	require.Error(t, err)
}

func TestSignatureAlgorithmYAML(t *testing.T) {
	var doc struct {
		Alg pki.SignatureAlgorithm `yaml:"alg"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("alg: sha384-rsa\n"), &doc))
	require.Equal(t, pki.SHA384WithRSA, doc.Alg)

	require.Error(t, yaml.Unmarshal([]byte("alg: RSA-MD5\n"), &doc))
}
