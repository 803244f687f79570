package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"zeladoria/internal/triage"
)

type Category struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalizedName"`
	RequestCount   int64  `json:"requestCount"`
}

func (s *Store) FindOrCreateCategory(ctx context.Context, name string) (Category, error) {
	return findOrCreateCategory(ctx, s.db, name)
}

func findOrCreateCategory(ctx context.Context, q querier, name string) (Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Category{}, errors.New("category name is empty")
	}
	normalized := triage.NormalizeCategoryName(trimmed)

	var c Category
	err := q.QueryRowContext(ctx, `
		SELECT id, name, normalized_name FROM categories WHERE normalized_name = $1
	`, normalized).Scan(&c.ID, &c.Name, &c.NormalizedName)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return c, err
	}
	// The no-op update makes RETURNING yield the row a concurrent insert won.
	err = q.QueryRowContext(ctx, `
		INSERT INTO categories (name, normalized_name)
		VALUES ($1, $2)
		ON CONFLICT (normalized_name) DO UPDATE SET name = categories.name
		RETURNING id, name, normalized_name
	`, trimmed, normalized).Scan(&c.ID, &c.Name, &c.NormalizedName)
	return c, err
}

func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.normalized_name, COUNT(r.id)
		FROM categories c
		LEFT JOIN requests r ON r.category_id = c.id
		GROUP BY c.id, c.name, c.normalized_name
		ORDER BY c.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.NormalizedName, &c.RequestCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RenameCategory rewrites the display name of a row, keeping its
// normalized key and the inline name on its requests in step.
func (s *Store) RenameCategory(ctx context.Context, id int64, name string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE categories SET name = $2, normalized_name = $3 WHERE id = $1
		`, id, name, triage.NormalizeCategoryName(name))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		_, err = tx.ExecContext(ctx, `UPDATE requests SET category = $2 WHERE category_id = $1`, id, name)
		return err
	})
}

// MergeCategory repoints every request of from onto into and removes from.
// It returns the number of requests moved.
func (s *Store) MergeCategory(ctx context.Context, fromID, intoID int64) (int64, error) {
	if fromID == intoID {
		return 0, fmt.Errorf("cannot merge category %d into itself", fromID)
	}
	var moved int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var intoName string
		if err := tx.QueryRowContext(ctx, `SELECT name FROM categories WHERE id = $1`, intoID).Scan(&intoName); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE requests SET category_id = $2, category = $3 WHERE category_id = $1
		`, fromID, intoID, intoName)
		if err != nil {
			return err
		}
		moved, _ = res.RowsAffected()
		del, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, fromID)
		if err != nil {
			return err
		}
		if n, _ := del.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
	return moved, err
}
