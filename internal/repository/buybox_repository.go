package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/underwriter/internal/database"
	"github.com/stwalsh4118/underwriter/internal/models"
)

type buyBoxRepository struct {
	db *database.Database
}

// NewBuyBoxRepository creates a new PostgreSQL-backed BuyBoxRepository.
func NewBuyBoxRepository(db *database.Database) BuyBoxRepository {
	return &buyBoxRepository{db: db}
}

func (r *buyBoxRepository) Get(ctx context.Context) (*models.BuyBox, error) {
	var criteria []byte
	err := r.db.Pool.QueryRow(ctx, `SELECT criteria FROM buy_box WHERE id = 1`).Scan(&criteria)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query buy box: %w", err)
	}

	var box models.BuyBox
	if err := json.Unmarshal(criteria, &box); err != nil {
		return nil, fmt.Errorf("failed to unmarshal buy box: %w", err)
	}
	return &box, nil
}

func (r *buyBoxRepository) Save(ctx context.Context, box models.BuyBox) error {
	criteria, err := json.Marshal(box)
	if err != nil {
		return fmt.Errorf("failed to marshal buy box: %w", err)
	}

	query := `
		INSERT INTO buy_box (id, criteria, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id)
		DO UPDATE SET
			criteria = EXCLUDED.criteria,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Pool.Exec(ctx, query, criteria, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save buy box: %w", err)
	}
	return nil
}
