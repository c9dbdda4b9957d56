package auth

import "errors"

// Credential errors. Authenticators wrap one of these when the caller's
// credentials are rejected; any other error means the check itself failed.
var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")
)

// ErrForbidden means the caller is authenticated but lacks the role.
var ErrForbidden = errors.New("auth: access denied")

// IsCredentialError reports whether err rejects the caller's credentials,
// as opposed to an internal failure.
func IsCredentialError(err error) bool {
	for _, target := range []error{ErrMissingCredentials, ErrInvalidCredentials, ErrTokenExpired, ErrTokenMalformed} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
