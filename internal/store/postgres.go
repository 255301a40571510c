package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the drafts table.
const Schema = `CREATE TABLE IF NOT EXISTS drafts (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	data          JSONB NOT NULL,
	layout        TEXT NOT NULL DEFAULT '',
	theme         TEXT NOT NULL DEFAULT '',
	custom_layout TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// EnsureSchema creates the drafts table when missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create drafts table: %w", err)
	}
	return nil
}

// Create implements Store.
func (db *DB) Create(ctx context.Context, d *Draft) error {
	if err := prepare(d); err != nil {
		return err
	}
	data, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal draft data: %w", err)
	}

	id := uuid.New()
	err = db.pool.QueryRow(ctx,
		`INSERT INTO drafts (id, name, data, layout, theme, custom_layout)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		id, d.Name, data, d.Layout, d.Theme, d.CustomLayout,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	d.ID = id
	return nil
}

const selectDraft = `SELECT id, name, data, layout, theme, custom_layout, created_at, updated_at FROM drafts`

// Get implements Store.
func (db *DB) Get(ctx context.Context, id uuid.UUID) (*Draft, error) {
	d, err := scanDraft(db.pool.QueryRow(ctx, selectDraft+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return d, nil
}

// List implements Store.
func (db *DB) List(ctx context.Context) ([]Draft, error) {
	rows, err := db.pool.Query(ctx, selectDraft+` ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	drafts := []Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drafts: %w", err)
	}
	return drafts, nil
}

// Update implements Store.
func (db *DB) Update(ctx context.Context, d *Draft) error {
	if err := prepare(d); err != nil {
		return err
	}
	data, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal draft data: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`UPDATE drafts
		 SET name = $2, data = $3, layout = $4, theme = $5, custom_layout = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		d.ID, d.Name, data, d.Layout, d.Theme, d.CustomLayout,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update draft: %w", err)
	}
	return nil
}

// Delete implements Store.
func (db *DB) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM drafts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDraft(row pgx.Row) (*Draft, error) {
	var d Draft
	var data []byte
	if err := row.Scan(&d.ID, &d.Name, &data, &d.Layout, &d.Theme, &d.CustomLayout, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &d.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft data: %w", err)
	}
	return &d, nil
}
