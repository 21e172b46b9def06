package auth

import (
	"errors"
	"net/http"

	apperrors "github.com/spec-kit/eshop-service/pkg/util/errorutil"
)

// Authentication failures.
var (
	ErrNoToken        = errors.New("no bearer token provided")
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("token signature is invalid")
	ErrExpired        = errors.New("token has expired")
)

// ErrInsufficientPrivilege is the authorization failure for admin-only routes.
var ErrInsufficientPrivilege = errors.New("administrator privilege required")

// Credential failures. Messages are shown to clients as-is.
var (
	ErrUserNotFound    = errors.New("the user not found")
	ErrMissingPassword = errors.New("the password field is required")
	ErrWrongPassword   = errors.New("password is wrong")
)

type errorMapping struct {
	code   string
	status int
}

var errorMappings = map[error]errorMapping{
	ErrNoToken:               {"NO_TOKEN", http.StatusUnauthorized},
	ErrMalformedToken:        {"MALFORMED_TOKEN", http.StatusUnauthorized},
	ErrBadSignature:          {"BAD_SIGNATURE", http.StatusUnauthorized},
	ErrExpired:               {"TOKEN_EXPIRED", http.StatusUnauthorized},
	ErrInsufficientPrivilege: {"INSUFFICIENT_PRIVILEGE", http.StatusForbidden},
	ErrUserNotFound:          {"USER_NOT_FOUND", http.StatusBadRequest},
	ErrMissingPassword:       {"MISSING_PASSWORD", http.StatusBadRequest},
	ErrWrongPassword:         {"WRONG_PASSWORD", http.StatusBadRequest},
}

// AsDomainError maps an auth sentinel (possibly wrapped) to the response
// error rendered by the HTTP layer. Other errors are returned unchanged.
func AsDomainError(err error) error {
	if err == nil {
		return nil
	}
	for sentinel, m := range errorMappings {
		if errors.Is(err, sentinel) {
			return apperrors.NewDomainError(m.code, sentinel.Error(), m.status, nil)
		}
	}
	return err
}

// AsDomainErrorCode returns the response code for an auth error, or
// "UNKNOWN" for errors outside the taxonomy.
func AsDomainErrorCode(err error) string {
	for sentinel, m := range errorMappings {
		if errors.Is(err, sentinel) {
			return m.code
		}
	}
	return "UNKNOWN"
}
