package http

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eshop-service/internal/domain"
	"github.com/spec-kit/eshop-service/internal/repository"
)

// memStore is a goroutine-safe map keyed by document id, reporting missing
// documents the same way the Postgres collections do.
type memStore[T any] struct {
	mu    sync.Mutex
	order []string
	docs  map[string]T
}

func newMemStore[T any]() *memStore[T] {
	return &memStore[T]{docs: make(map[string]T)}
}

func (s *memStore[T]) put(id string, doc T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		s.order = append(s.order, id)
	}
	s.docs[id] = doc
}

func (s *memStore[T]) replace(id string, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return pgx.ErrNoRows
	}
	s.docs[id] = doc
	return nil
}

func (s *memStore[T]) get(id string) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &doc, nil
}

func (s *memStore[T]) remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.docs, id)
	s.order = slices.DeleteFunc(s.order, func(k string) bool { return k == id })
	return nil
}

func (s *memStore[T]) filter(keep func(T) bool) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.docs))
	for _, id := range s.order {
		if doc := s.docs[id]; keep == nil || keep(doc) {
			out = append(out, doc)
		}
	}
	return out
}

type memUserRepo struct{ *memStore[domain.User] }

func (r memUserRepo) Create(_ context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.put(u.ID, *u)
	return nil
}

func (r memUserRepo) Update(_ context.Context, u *domain.User) error { return r.replace(u.ID, *u) }
func (r memUserRepo) Delete(_ context.Context, id string) error      { return r.remove(id) }
func (r memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.get(id)
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	found := r.filter(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
	if len(found) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &found[0], nil
}

func (r memUserRepo) List(context.Context) ([]domain.User, error) { return r.filter(nil), nil }
func (r memUserRepo) Count(context.Context) (int64, error) {
	return int64(len(r.filter(nil))), nil
}

type memCategoryRepo struct{ *memStore[domain.Category] }

func (r memCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	r.put(c.ID, *c)
	return nil
}

func (r memCategoryRepo) Update(_ context.Context, c *domain.Category) error {
	return r.replace(c.ID, *c)
}
func (r memCategoryRepo) Delete(_ context.Context, id string) error { return r.remove(id) }
func (r memCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	return r.get(id)
}
func (r memCategoryRepo) List(context.Context) ([]domain.Category, error) {
	return r.filter(nil), nil
}

type memProductRepo struct{ *memStore[domain.Product] }

func (r memProductRepo) Create(_ context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.put(p.ID, *p)
	return nil
}

func (r memProductRepo) Update(_ context.Context, p *domain.Product) error {
	return r.replace(p.ID, *p)
}
func (r memProductRepo) Delete(_ context.Context, id string) error { return r.remove(id) }
func (r memProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	return r.get(id)
}

func (r memProductRepo) List(_ context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	return r.filter(func(p domain.Product) bool {
		return len(f.CategoryIDs) == 0 || slices.Contains(f.CategoryIDs, p.CategoryID)
	}), nil
}

func (r memProductRepo) ListFeatured(_ context.Context, limit int) ([]domain.Product, error) {
	featured := r.filter(func(p domain.Product) bool { return p.IsFeatured })
	if limit > 0 && len(featured) > limit {
		featured = featured[:limit]
	}
	return featured, nil
}

func (r memProductRepo) Count(context.Context) (int64, error) {
	return int64(len(r.filter(nil))), nil
}

type memOrderRepo struct{ *memStore[domain.Order] }

func (r memOrderRepo) Create(_ context.Context, o *domain.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	r.put(o.ID, *o)
	return nil
}

func (r memOrderRepo) Update(_ context.Context, o *domain.Order) error { return r.replace(o.ID, *o) }
func (r memOrderRepo) Delete(_ context.Context, id string) error       { return r.remove(id) }
func (r memOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	return r.get(id)
}
func (r memOrderRepo) List(context.Context) ([]domain.Order, error) { return r.filter(nil), nil }

func (r memOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	return r.filter(func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (r memOrderRepo) Count(context.Context) (int64, error) {
	return int64(len(r.filter(nil))), nil
}

func (r memOrderRepo) TotalSales(context.Context) (float64, error) {
	var total float64
	for _, o := range r.filter(nil) {
		total += o.TotalPrice
	}
	return total, nil
}
