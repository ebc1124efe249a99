package market

import (
	"fmt"
	"time"
)

// OTPPurpose separates the register and reset verification flows. Each flow
// keeps a single outstanding code per email; reissuing replaces it.
type OTPPurpose string

const (
	OTPRegister OTPPurpose = "register"
	OTPReset    OTPPurpose = "reset"
)

const otpTTL = 300 * time.Second

type otpKey struct {
	purpose OTPPurpose
	email   string
}

type issuedOTP struct {
	code      string
	expiresAt time.Time
}

// IssuedOTP is what RequestOTP hands back to the caller. There is no mail
// transport; the presentation layer surfaces the code as a notification.
type IssuedOTP struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RequestOTP issues a fresh 6-digit code for the flow, invalidating any
// previously issued code for the same (purpose, email).
func (s *Store) RequestOTP(purpose OTPPurpose, email string) (IssuedOTP, error) {
	if purpose != OTPRegister && purpose != OTPReset {
		return IssuedOTP{}, ErrInvalidInput
	}
	if email == "" {
		return IssuedOTP{}, ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if purpose == OTPReset {
		if s.findByEmail(email) == nil {
			return IssuedOTP{}, ErrEmailNotFound
		}
	}

	code := fmt.Sprintf("%06d", 100000+s.rnd.Intn(900000))
	issued := &issuedOTP{code: code, expiresAt: s.now().Add(otpTTL)}
	s.otps[otpKey{purpose: purpose, email: email}] = issued
	return IssuedOTP{Code: code, ExpiresAt: issued.expiresAt}, nil
}

// verifyOTP checks the submitted code against the most recently issued one
// and consumes it on success. Callers hold s.mu.
func (s *Store) verifyOTP(purpose OTPPurpose, email, code string) error {
	key := otpKey{purpose: purpose, email: email}
	issued, ok := s.otps[key]
	if !ok || issued.code != code {
		return ErrInvalidOTP
	}
	if s.now().After(issued.expiresAt) {
		return ErrOTPExpired
	}
	delete(s.otps, key)
	return nil
}
