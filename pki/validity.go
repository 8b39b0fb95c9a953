package pki

import (
	"crypto/rand"
	"io"
	"math/big"
	"time"

	"github.com/pkg/errors"
)

// DefaultValidity is the lifetime of every generated certificate unless configured otherwise.
const DefaultValidity = 7 * 24 * time.Hour // one week

// ValidityPeriod is the [NotBefore, NotAfter) window of a certificate.
type ValidityPeriod struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// NewValidityPeriod returns [now, now+d). Times are UTC with second precision, the
// resolution of the encoded form, so d should be a whole number of seconds.
func NewValidityPeriod(now time.Time, d time.Duration) ValidityPeriod {
	notBefore := now.UTC().Truncate(time.Second)
	return ValidityPeriod{
		NotBefore: notBefore,
		NotAfter:  notBefore.Add(d),
	}
}

// Duration returns NotAfter - NotBefore.
func (v ValidityPeriod) Duration() time.Duration {
	return v.NotAfter.Sub(v.NotBefore)
}

// Contains reports whether t falls inside the window, bounds included.
func (v ValidityPeriod) Contains(t time.Time) bool {
	return !t.Before(v.NotBefore) && !t.After(v.NotAfter)
}

// normalize drops what the encoded form cannot carry.
func (v ValidityPeriod) normalize() ValidityPeriod {
	return ValidityPeriod{
		NotBefore: v.NotBefore.UTC().Truncate(time.Second),
		NotAfter:  v.NotAfter.UTC().Truncate(time.Second),
	}
}

func (v ValidityPeriod) validate() error {
	if v.NotBefore.IsZero() || v.NotAfter.IsZero() {
		return errors.New("validity bounds are not set")
	}
	if !v.NotBefore.Before(v.NotAfter) {
		return errors.Errorf("notBefore %s is not before notAfter %s",
			v.NotBefore.Format(time.RFC3339), v.NotAfter.Format(time.RFC3339))
	}
	return nil
}

const serialNumberBits = 64

var serialNumberLimit = new(big.Int).Lsh(big.NewInt(1), serialNumberBits)

// NewSerialNumber draws a strictly positive 64-bit serial number from r, or from
// crypto/rand when r is nil. Uniqueness within an issuer is not tracked.
func NewSerialNumber(r io.Reader) (*big.Int, error) {
	if r == nil {
		r = rand.Reader
	}
	for {
		serial, err := rand.Int(r, serialNumberLimit)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to generate serial number")
		}
		if serial.Sign() > 0 {
			return serial, nil
		}
	}
}
