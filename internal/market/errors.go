package market

import "errors"

// All store failures are caller-recoverable validation errors. The HTTP layer
// maps each sentinel to a status code; nothing here is fatal to the process.
var (
	ErrNotFound            = errors.New("market: not found")
	ErrInvalidInput        = errors.New("market: invalid input")
	ErrMissingField        = errors.New("market: required field missing")
	ErrDuplicateUsername   = errors.New("market: username already taken")
	ErrDuplicateEmail      = errors.New("market: email already registered")
	ErrWeakPassword        = errors.New("market: password must be at least 6 characters")
	ErrPasswordMismatch    = errors.New("market: password confirmation does not match")
	ErrInvalidOTP          = errors.New("market: verification code does not match")
	ErrOTPExpired          = errors.New("market: verification code expired")
	ErrInvalidCredentials  = errors.New("market: invalid credentials")
	ErrEmailNotFound       = errors.New("market: no account with that email")
	ErrInsufficientBalance = errors.New("market: insufficient balance")
	ErrAccessDenied        = errors.New("market: access denied")
	ErrAlreadyModerated    = errors.New("market: asset already moderated")
	ErrTicketNotOpen       = errors.New("market: ticket is not open")
	ErrUnknownChannel      = errors.New("market: unknown chat channel")
)
