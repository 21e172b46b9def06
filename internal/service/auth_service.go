package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eshop-service/internal/auth"
	"github.com/spec-kit/eshop-service/internal/domain"
	"github.com/spec-kit/eshop-service/internal/events"
	"github.com/spec-kit/eshop-service/internal/repository"
	apperrors "github.com/spec-kit/eshop-service/pkg/util/errorutil"
)

// RegisterInput carries the profile of a new account.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	IsAdmin   bool
	Street    string
	Apartment string
	Zip       string
	City      string
	Country   string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users       repository.UserRepository
	credentials *auth.CredentialVerifier
	dispatcher  events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, credentials *auth.CredentialVerifier, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{users: users, credentials: credentials, dispatcher: dispatcher}
}

// Register creates an account. Callers decide whether input.IsAdmin may be
// honoured; public registration always clears it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := s.credentials.Register(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Phone:        input.Phone,
		IsAdmin:      input.IsAdmin,
		Street:       input.Street,
		Apartment:    input.Apartment,
		Zip:          input.Zip,
		City:         input.City,
		Country:      input.Country,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:    events.EventUserRegistered,
			ActorID: user.ID,
			Payload: events.UserRegisteredPayload{UserID: user.ID, Email: user.Email},
		})
	}
	return user, nil
}

// Login authenticates a user and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	return s.credentials.Login(ctx, normalizeEmail(email), password)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
