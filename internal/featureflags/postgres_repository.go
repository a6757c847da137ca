package featureflags

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores flags in the feature_flags table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgreSQL feature flags repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const upsertFlag = `
	INSERT INTO feature_flags (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE SET
		value = EXCLUDED.value,
		updated_at = EXCLUDED.updated_at
`

// GetFlag retrieves a single feature flag by key.
func (r *PostgresRepository) GetFlag(ctx context.Context, key string) (*Flag, error) {
	row := r.pool.QueryRow(ctx, `SELECT key, value, updated_at FROM feature_flags WHERE key = $1`, key)

	flag, err := scanFlag(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFlagNotFound
	}
	return flag, err
}

// GetAllFlags retrieves all stored flags.
func (r *PostgresRepository) GetAllFlags(ctx context.Context) (map[string]*Flag, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value, updated_at FROM feature_flags`)
	if err != nil {
		return nil, fmt.Errorf("querying feature flags: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*Flag)
	for rows.Next() {
		flag, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		out[flag.Key] = flag
	}
	return out, rows.Err()
}

// SetFlags upserts all flags in one transaction.
func (r *PostgresRepository) SetFlags(ctx context.Context, flags []*Flag) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, f := range flags {
			value, err := json.Marshal(f.Value)
			if err != nil {
				return fmt.Errorf("encoding flag %s: %w", f.Key, err)
			}
			batch.Queue(upsertFlag, f.Key, value)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// DeleteFlag removes a flag.
func (r *PostgresRepository) DeleteFlag(ctx context.Context, key string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM feature_flags WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFlagNotFound
	}
	return nil
}

func scanFlag(row pgx.Row) (*Flag, error) {
	var (
		flag  Flag
		value []byte
	)
	if err := row.Scan(&flag.Key, &value, &flag.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(value, &flag.Value); err != nil {
		return nil, fmt.Errorf("decoding flag %s: %w", flag.Key, err)
	}
	return &flag, nil
}
