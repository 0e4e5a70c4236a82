package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/no-krul-tepes/esstu-bot/internal/domain"
)

// GetGroup returns a group by id or ErrNotFound.
func (r *SQLiteRepo) GetGroup(ctx context.Context, id int64) (*domain.Group, error) {
	var g domain.Group
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM groups WHERE id = ?`, id).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &g, nil
}

// EnsureGroup returns the group with the given name, creating it if absent.
func (r *SQLiteRepo) EnsureGroup(ctx context.Context, name string) (*domain.Group, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO groups (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("ensure group: %w", err)
	}

	var g domain.Group
	err = r.db.QueryRowContext(ctx,
		`SELECT id, name FROM groups WHERE name = ?`, name).Scan(&g.ID, &g.Name)
	if err != nil {
		return nil, fmt.Errorf("ensure group: %w", err)
	}
	return &g, nil
}
