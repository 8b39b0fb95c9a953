package pki

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultKeySize = 2048
	MinKeySize     = 1024

	EnvValidFor           = "TESTPKI_VALID_FOR"
	EnvSignatureAlgorithm = "TESTPKI_SIGNATURE_ALGORITHM"
	EnvKeySize            = "TESTPKI_KEY_SIZE"
)

// Configuration is the file/env form of the factory settings plus the size of the
// RSA keys generated alongside the certificates.
type Configuration struct {
	ValidFor           time.Duration      `yaml:"validFor"`
	SignatureAlgorithm SignatureAlgorithm `yaml:"signatureAlgorithm"`
	KeySize            int                `yaml:"keySize"`
	Names              Names              `yaml:"names"`
}

// DefaultConfiguration returns one-week RSA-SHA256 certificates over 2048-bit keys.
func DefaultConfiguration() Configuration {
	return Configuration{
		ValidFor:           DefaultValidity,
		SignatureAlgorithm: DefaultSignatureAlgorithm,
		KeySize:            DefaultKeySize,
		Names:              DefaultNames(),
	}
}

// LoadConfiguration reads a YAML file over the defaults.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, errors.WithMessage(err, "failed to read configuration")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse configuration %s", path)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables found through lookup.
func (c *Configuration) ApplyEnv(lookup func(string) (string, bool)) error {
	var result *multierror.Error
	if v, ok := lookup(EnvValidFor); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "%s", EnvValidFor))
		} else {
			c.ValidFor = d
		}
	}
	if v, ok := lookup(EnvSignatureAlgorithm); ok && v != "" {
		alg, err := ParseSignatureAlgorithm(v)
		if err != nil {
			result = multierror.Append(result, errors.WithMessage(err, EnvSignatureAlgorithm))
		} else {
			c.SignatureAlgorithm = alg
		}
	}
	if v, ok := lookup(EnvKeySize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "%s", EnvKeySize))
		} else {
			c.KeySize = n
		}
	}
	return result.ErrorOrNil()
}

// Validate reports every invalid field at once.
func (c Configuration) Validate() error {
	var result *multierror.Error
	if c.ValidFor <= 0 {
		result = multierror.Append(result, fmt.Errorf("validFor must be positive, got %s", c.ValidFor))
	} else if c.ValidFor%time.Second != 0 {
		result = multierror.Append(result, fmt.Errorf("validFor must be a whole number of seconds, got %s", c.ValidFor))
	}
	if _, err := c.SignatureAlgorithm.Hash(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.KeySize < MinKeySize {
		result = multierror.Append(result, fmt.Errorf("keySize must be at least %d bits, got %d", MinKeySize, c.KeySize))
	}
	return result.ErrorOrNil()
}

// Options converts the configuration into factory options.
func (c Configuration) Options() []Option {
	return []Option{
		WithValidity(c.ValidFor),
		WithSignatureAlgorithm(c.SignatureAlgorithm),
		WithNames(c.Names),
	}
}
