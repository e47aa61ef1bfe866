package domain

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login failures cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("email or password is incorrect")

	// ErrInvalidToken covers a refresh token that is absent, expired, revoked,
	// or already rotated. A replayed token fails with this error even if it
	// was valid moments ago.
	ErrInvalidToken = errors.New("invalid token")

	// ErrIncorrectPassword is returned by password change when the current
	// password does not verify.
	ErrIncorrectPassword = errors.New("password is incorrect")

	// ErrTooManyAttempts is returned by login when the failed-attempt
	// throttle for the email/IP pair is exhausted.
	ErrTooManyAttempts = errors.New("too many login attempts")

	// ErrUnauthenticated covers a missing, malformed, or expired access token
	// and a deactivated or vanished principal.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the caller is authenticated but its current role is
	// not in the required set.
	ErrForbidden = errors.New("forbidden")

	// ErrStoreUnavailable is a transient infrastructure fault. Callers may
	// retry with backoff; every other error in this package is terminal.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrPrincipalNotFound = errors.New("principal not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrIncidentNotFound  = errors.New("incident not found")
)
