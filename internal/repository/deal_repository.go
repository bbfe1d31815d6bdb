package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/underwriter/internal/database"
	"github.com/stwalsh4118/underwriter/internal/models"
)

// dealRepository is the PostgreSQL implementation of DealRepository.
// The analysis result is kept as a JSONB document.
type dealRepository struct {
	db *database.Database
}

// NewDealRepository creates a new PostgreSQL-backed DealRepository.
func NewDealRepository(db *database.Database) DealRepository {
	return &dealRepository{
		db: db,
	}
}

const dealColumns = `id, address, city, state, result, failure, created_at`

func (r *dealRepository) Save(ctx context.Context, deal *models.Deal) error {
	var result []byte
	if deal.Result != nil {
		var err error
		result, err = json.Marshal(deal.Result)
		if err != nil {
			return fmt.Errorf("failed to marshal analysis result for deal %s: %w", deal.ID, err)
		}
	}

	query := `
		INSERT INTO deals (` + dealColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			result = EXCLUDED.result,
			failure = EXCLUDED.failure
	`

	_, err := r.db.Pool.Exec(ctx, query,
		deal.ID,
		deal.Property.Address,
		deal.Property.City,
		deal.Property.State,
		result,
		deal.Failure,
		deal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save deal %s: %w", deal.ID, err)
	}
	return nil
}

func (r *dealRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`

	deal, err := scanDeal(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query deal %s: %w", id, err)
	}
	return deal, nil
}

func (r *dealRepository) List(ctx context.Context) ([]models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals ORDER BY created_at DESC, id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	deals := make([]models.Deal, 0)
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, *deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deals: %w", err)
	}

	return deals, nil
}

func scanDeal(row pgx.Row) (*models.Deal, error) {
	var deal models.Deal
	var result []byte

	err := row.Scan(
		&deal.ID,
		&deal.Property.Address,
		&deal.Property.City,
		&deal.Property.State,
		&result,
		&deal.Failure,
		&deal.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(result) > 0 {
		deal.Result = &models.AnalysisResult{}
		if err := json.Unmarshal(result, deal.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis result for deal %s: %w", deal.ID, err)
		}
	}
	return &deal, nil
}
