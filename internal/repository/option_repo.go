package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/garment-catalog-api/internal/database"
	"github.com/garment-catalog-api/internal/models"
)

// optionRepo is the concrete implementation of OptionRepository
type optionRepo struct {
	db *database.DB
}

// NewOptionRepo creates a new option repository
func NewOptionRepo(db *database.DB) OptionRepository {
	return &optionRepo{db: db}
}

// GetAll returns every option set keyed by option key
func (r *optionRepo) GetAll(ctx context.Context) (map[string]models.OptionValue, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT option_key, option_values FROM app_options`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]models.OptionValue)
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}

		var value models.OptionValue
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, err
		}
		result[key] = value
	}
	return result, rows.Err()
}

// GetByKey returns the value stored under one option key, or nil if the
// key has not been materialized yet.
func (r *optionRepo) GetByKey(ctx context.Context, key string) (*models.OptionValue, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT option_values FROM app_options WHERE option_key = $1`, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var value models.OptionValue
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return &value, nil
}

// Upsert persists the entire value for a key in one statement, so a reader
// never sees a half-applied mutation. Concurrent mutations of the same key
// are last-writer-wins.
func (r *optionRepo) Upsert(ctx context.Context, key string, value models.OptionValue) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO app_options (option_key, option_values)
		VALUES ($1, $2)
		ON CONFLICT (option_key)
		DO UPDATE SET option_values = EXCLUDED.option_values, updated_at = NOW()
	`, key, raw)
	return err
}

// Count returns the number of option sets
func (r *optionRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM app_options`).Scan(&count)
	return count, err
}
