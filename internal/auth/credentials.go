package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eshop-service/internal/domain"
)

// CredentialStore looks up stored credential records by email.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Issuer signs tokens for verified subjects.
type Issuer interface {
	Issue(subjectID string, isAdmin bool) (string, error)
}

// LoginResult is returned on successful login.
type LoginResult struct {
	UserID string
	Email  string
	Token  string
}

// CredentialVerifier hashes new passwords and checks submitted ones.
type CredentialVerifier struct {
	store      CredentialStore
	issuer     Issuer
	bcryptCost int
}

// NewCredentialVerifier constructs the verifier.
func NewCredentialVerifier(store CredentialStore, issuer Issuer, bcryptCost int) *CredentialVerifier {
	return &CredentialVerifier{store: store, issuer: issuer, bcryptCost: bcryptCost}
}

// Register returns the salted one-way hash of plain.
func (v *CredentialVerifier) Register(plain string) (string, error) {
	if plain == "" {
		return "", ErrMissingPassword
	}
	return HashPassword(plain, v.bcryptCost)
}

// Login checks the credentials and issues a token carrying the stored
// subject id and admin flag.
func (v *CredentialVerifier) Login(ctx context.Context, email, plain string) (*LoginResult, error) {
	user, err := v.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if plain == "" {
		return nil, ErrMissingPassword
	}
	if err := ComparePassword(user.PasswordHash, plain); err != nil {
		return nil, ErrWrongPassword
	}

	token, err := v.issuer.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &LoginResult{UserID: user.ID, Email: user.Email, Token: token}, nil
}
