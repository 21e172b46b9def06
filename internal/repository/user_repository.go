package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/eshop-service/internal/domain"
)

// UserRepository defines persistence access for users and their credentials.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	docs collection[domain.User]
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DB) UserRepository {
	return &userRepository{docs: newCollection[domain.User](db, "users")}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	return r.docs.insert(ctx, user.ID, user)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.docs.replace(ctx, user.ID, user)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.docs.delete(ctx, id)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.docs.get(ctx, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT doc FROM users WHERE lower(doc->>'email') = lower($1)`
	return r.docs.findOne(ctx, query, email)
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.docs.all(ctx)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	return r.docs.count(ctx)
}
