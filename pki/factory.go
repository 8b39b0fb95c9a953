package pki

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultRootName         = "Test CA Certificate"
	DefaultIntermediateName = "Test Intermediate Certificate"
	DefaultEndEntityName    = "Test End Certificate"
)

// Names holds the common names given to each certificate role.
type Names struct {
	Root         string `yaml:"root"`
	Intermediate string `yaml:"intermediate"`
	EndEntity    string `yaml:"endEntity"`
}

// DefaultNames returns the fixed test names.
func DefaultNames() Names {
	return Names{
		Root:         DefaultRootName,
		Intermediate: DefaultIntermediateName,
		EndEntity:    DefaultEndEntityName,
	}
}

// Factory issues root, intermediate and end-entity certificates. It holds only
// configuration, so one Factory may be used from several goroutines provided the
// random source is safe for concurrent use. Create it with NewFactory.
type Factory struct {
	validFor  time.Duration
	algorithm SignatureAlgorithm
	random    io.Reader
	now       func() time.Time
	names     Names
	log       zerolog.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithValidity sets the lifetime of issued certificates.
func WithValidity(d time.Duration) Option {
	return func(f *Factory) { f.validFor = d }
}

// WithSignatureAlgorithm sets the algorithm every certificate is signed with.
func WithSignatureAlgorithm(alg SignatureAlgorithm) Option {
	return func(f *Factory) { f.algorithm = alg }
}

// WithRand sets the source of serial numbers and signing randomness.
func WithRand(r io.Reader) Option {
	return func(f *Factory) { f.random = r }
}

// WithClock sets the time source for the start of the validity window.
func WithClock(now func() time.Time) Option {
	return func(f *Factory) { f.now = now }
}

// WithNames overrides the common names. Empty fields keep their defaults.
func WithNames(n Names) Option {
	return func(f *Factory) {
		if n.Root != "" {
			f.names.Root = n.Root
		}
		if n.Intermediate != "" {
			f.names.Intermediate = n.Intermediate
		}
		if n.EndEntity != "" {
			f.names.EndEntity = n.EndEntity
		}
	}
}

// WithLogger sets the logger issuance is reported to at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Factory) { f.log = l }
}

// NewFactory returns a Factory issuing one-week RSA-SHA256 certificates unless
// configured otherwise.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		validFor:  DefaultValidity,
		algorithm: DefaultSignatureAlgorithm,
		random:    rand.Reader,
		now:       time.Now,
		names:     DefaultNames(),
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// ValidFor returns the configured certificate lifetime.
func (f *Factory) ValidFor() time.Duration { return f.validFor }

// SignatureAlgorithm returns the configured signature algorithm.
func (f *Factory) SignatureAlgorithm() SignatureAlgorithm { return f.algorithm }

type profile struct {
	role       string
	subject    string
	isCA       bool
	maxPathLen int
	keyUsage   x509.KeyUsage
}

func (f *Factory) intermediateProfile() profile {
	return profile{role: "intermediate", subject: f.names.Intermediate, isCA: true, maxPathLen: 0, keyUsage: CAKeyUsage}
}

func (f *Factory) endEntityProfile() profile {
	return profile{role: "end-entity", subject: f.names.EndEntity, isCA: false, maxPathLen: -1, keyUsage: EndEntityKeyUsage}
}

// GenerateRootCert issues a self-signed version 1 certificate for key.
func (f *Factory) GenerateRootCert(key crypto.Signer) (*Certificate, error) {
	cert, err := f.generateRoot(key)
	if err != nil {
		return nil, &CertificateGenerationError{Op: "generate root certificate", Err: err}
	}
	return cert, nil
}

// GenerateIntermediateCert issues a version 3 CA certificate with path length 0
// for intermediatePub, signed by caKey on behalf of caCert.
func (f *Factory) GenerateIntermediateCert(intermediatePub crypto.PublicKey, caKey crypto.Signer, caCert *x509.Certificate) (*Certificate, error) {
	cert, err := f.issue(f.intermediateProfile(), intermediatePub, caKey, caCert)
	if err != nil {
		return nil, &CertificateGenerationError{Op: "generate intermediate certificate", Err: err}
	}
	return cert, nil
}

// GenerateEndEntityCert issues a version 3 end-entity certificate for entityPub,
// signed by caKey on behalf of caCert.
func (f *Factory) GenerateEndEntityCert(entityPub crypto.PublicKey, caKey crypto.Signer, caCert *x509.Certificate) (*Certificate, error) {
	cert, err := f.issue(f.endEntityProfile(), entityPub, caKey, caCert)
	if err != nil {
		return nil, &CertificateGenerationError{Op: "generate end-entity certificate", Err: err}
	}
	return cert, nil
}

func (f *Factory) generateRoot(key crypto.Signer) (*Certificate, error) {
	if key == nil {
		return nil, &SigningError{Err: errors.New("missing root private key")}
	}
	spki, err := marshalPublicKey(key.Public())
	if err != nil {
		return nil, err
	}
	serial, err := NewSerialNumber(f.random)
	if err != nil {
		return nil, err
	}
	name := CommonName(f.names.Root)
	tbs, err := BuildV1(name, name, serial, NewValidityPeriod(f.now(), f.validFor), spki)
	if err != nil {
		return nil, err
	}
	cert, err := Sign(tbs, key, f.algorithm, f.random)
	if err != nil {
		return nil, err
	}
	f.logIssued("root", cert)
	return cert, nil
}

func (f *Factory) issue(p profile, pub crypto.PublicKey, caKey crypto.Signer, caCert *x509.Certificate) (*Certificate, error) {
	if err := checkIssuer(caCert, caKey, p.isCA); err != nil {
		return nil, err
	}
	issuer, err := ParseDistinguishedName(caCert.RawSubject)
	if err != nil {
		return nil, err
	}
	spki, err := marshalPublicKey(pub)
	if err != nil {
		return nil, err
	}

	aki, err := authorityKeyIdentifierFor(caCert)
	if err != nil {
		return nil, err
	}
	ski, err := SubjectKeyIdentifier(spki)
	if err != nil {
		return nil, err
	}
	bc, err := BasicConstraints(p.isCA, p.maxPathLen)
	if err != nil {
		return nil, err
	}
	ku, err := KeyUsage(p.keyUsage)
	if err != nil {
		return nil, err
	}
	exts, err := NewExtensions(aki, ski, bc, ku)
	if err != nil {
		return nil, err
	}

	serial, err := NewSerialNumber(f.random)
	if err != nil {
		return nil, err
	}
	tbs, err := BuildV3(issuer, CommonName(p.subject), serial, NewValidityPeriod(f.now(), f.validFor), spki, exts)
	if err != nil {
		return nil, err
	}
	cert, err := Sign(tbs, caKey, f.algorithm, f.random)
	if err != nil {
		return nil, err
	}
	f.logIssued(p.role, cert)
	return cert, nil
}

func (f *Factory) logIssued(role string, cert *Certificate) {
	f.log.Debug().
		Str("role", role).
		Int("version", cert.TBS.Version).
		Str("serial", cert.TBS.SerialNumber.Text(16)).
		Stringer("subject", cert.TBS.Subject).
		Stringer("issuer", cert.TBS.Issuer).
		Stringer("algorithm", cert.SignatureAlgorithm).
		Time("not_before", cert.TBS.Validity.NotBefore).
		Time("not_after", cert.TBS.Validity.NotAfter).
		Msg("issued certificate")
}

// checkIssuer rejects CA certificates that may not sign the requested profile and
// keys that do not belong to the CA certificate.
func checkIssuer(caCert *x509.Certificate, caKey crypto.Signer, issuingCA bool) error {
	if caCert == nil {
		return errors.Wrap(ErrNotCertificateAuthority, "missing CA certificate")
	}
	if caKey == nil {
		return &SigningError{Err: errors.New("missing CA private key")}
	}
	subject := caCert.Subject.String()
	if caCert.BasicConstraintsValid && !caCert.IsCA {
		return errors.Wrapf(ErrNotCertificateAuthority, "%q has cA=false", subject)
	}
	if caCert.KeyUsage != 0 && caCert.KeyUsage&x509.KeyUsageCertSign == 0 {
		return errors.Wrapf(ErrNotCertificateAuthority, "%q lacks keyCertSign", subject)
	}
	if issuingCA && caCert.BasicConstraintsValid && caCert.MaxPathLen == 0 && caCert.MaxPathLenZero {
		return errors.Wrapf(ErrNotCertificateAuthority, "%q has path length 0 and cannot issue CA certificates", subject)
	}
	if !publicKeysEqual(caKey.Public(), caCert.PublicKey) {
		return errors.Wrapf(ErrKeyMismatch, "CA %q", subject)
	}
	return nil
}

// authorityKeyIdentifierFor reuses the issuer's SKI so the two match even when the
// issuer computed it differently, and derives it from the issuer key otherwise.
func authorityKeyIdentifierFor(caCert *x509.Certificate) (Extension, error) {
	if len(caCert.SubjectKeyId) > 0 {
		return authorityKeyIdentifierFromID(caCert.SubjectKeyId)
	}
	return AuthorityKeyIdentifier(caCert.RawSubjectPublicKeyInfo)
}

func marshalPublicKey(pub crypto.PublicKey) ([]byte, error) {
	if pub == nil {
		return nil, encodingError("public key", errors.New("missing public key"))
	}
	spki, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, encodingError("public key", err)
	}
	return spki, nil
}

var defaultFactory = NewFactory()

// GenerateRootCert issues a root certificate with the default configuration.
func GenerateRootCert(key crypto.Signer) (*Certificate, error) {
	return defaultFactory.GenerateRootCert(key)
}

// GenerateIntermediateCert issues an intermediate certificate with the default configuration.
func GenerateIntermediateCert(intermediatePub crypto.PublicKey, caKey crypto.Signer, caCert *x509.Certificate) (*Certificate, error) {
	return defaultFactory.GenerateIntermediateCert(intermediatePub, caKey, caCert)
}

// GenerateEndEntityCert issues an end-entity certificate with the default configuration.
func GenerateEndEntityCert(entityPub crypto.PublicKey, caKey crypto.Signer, caCert *x509.Certificate) (*Certificate, error) {
	return defaultFactory.GenerateEndEntityCert(entityPub, caKey, caCert)
}
