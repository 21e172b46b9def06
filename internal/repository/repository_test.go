package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/eshop-service/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func docRow(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestUserRepository_CreateAssignsID(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	user := &domain.User{Name: "Jane", Email: "jane@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	stored := domain.User{ID: "u1", Email: "jane@example.com", PasswordHash: "hash", IsAdmin: true}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT doc FROM users WHERE lower(doc->>'email') = lower($1)")).
		WithArgs("Jane@Example.com").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).AddRow(docRow(t, stored)))

	user, err := repo.GetByEmail(context.Background(), "Jane@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.True(t, user.IsAdmin)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("SELECT doc FROM users").
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollection_ReplaceAndDeleteMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	mock.ExpectExec("UPDATE categories SET doc").
		WithArgs(pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec("DELETE FROM categories").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Update(context.Background(), &domain.Category{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	err = repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListByCategories(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	rows := pgxmock.NewRows([]string{"doc"}).
		AddRow(docRow(t, domain.Product{ID: "p1", Name: "Lamp", CategoryID: "c1"})).
		AddRow(docRow(t, domain.Product{ID: "p2", Name: "Desk", CategoryID: "c2"}))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE doc->>'category' = ANY($1)")).
		WithArgs([]string{"c1", "c2"}).
		WillReturnRows(rows)

	products, err := repo.List(context.Background(), ProductFilter{CategoryIDs: []string{"c1", "c2"}})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Lamp", products[0].Name)
	assert.Equal(t, "c2", products[1].CategoryID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListAllWithoutFilter(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT doc FROM products ORDER BY created_at").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}))

	products, err := repo.List(context.Background(), ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NotNil(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_CountAndTotalSales(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow(float64(120.5)))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	total, err := repo.TotalSales(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 120.5, total, 0.0001)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ListByUser(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE doc->>'user' = $1")).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).
			AddRow(docRow(t, domain.Order{ID: "o1", UserID: "u1", Status: domain.OrderStatusPending})))

	orders, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusPending, orders[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
