package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool used by repositories.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// collection stores documents of type T as JSONB rows in table (id, doc).
// Missing documents are reported as pgx.ErrNoRows.
type collection[T any] struct {
	db    DB
	table string
}

func newCollection[T any](db DB, table string) collection[T] {
	return collection[T]{db: db, table: table}
}

func (c collection[T]) insert(ctx context.Context, id string, doc *T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", c.table, err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2)`, c.table)
	_, err = c.db.Exec(ctx, query, id, raw)
	return err
}

func (c collection[T]) replace(ctx context.Context, id string, doc *T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", c.table, err)
	}
	query := fmt.Sprintf(`UPDATE %s SET doc=$1, updated_at=NOW() WHERE id=$2`, c.table)
	cmd, err := c.db.Exec(ctx, query, raw, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, c.table)
	cmd, err := c.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE id=$1`, c.table)
	return c.findOne(ctx, query, id)
}

func (c collection[T]) findOne(ctx context.Context, query string, args ...any) (*T, error) {
	var raw []byte
	if err := c.db.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		return nil, err
	}
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", c.table, err)
	}
	return &doc, nil
}

// find runs a query selecting a single doc column and decodes every row.
func (c collection[T]) find(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var doc T
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", c.table, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (c collection[T]) all(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s ORDER BY created_at`, c.table)
	return c.find(ctx, query)
}

func (c collection[T]) count(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, c.table)
	var n int64
	if err := c.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
