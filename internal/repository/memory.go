package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/stwalsh4118/underwriter/internal/models"
)

// MemoryDealRepository keeps deals in process memory. Stored deals are copied
// on the way in and out so callers never share a result with the store.
type MemoryDealRepository struct {
	deals map[uuid.UUID]models.Deal
	mu    sync.RWMutex
}

// NewMemoryDealRepository creates an empty in-memory DealRepository.
func NewMemoryDealRepository() *MemoryDealRepository {
	return &MemoryDealRepository{
		deals: make(map[uuid.UUID]models.Deal),
	}
}

func (r *MemoryDealRepository) Save(_ context.Context, deal *models.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deals[deal.ID] = copyDeal(*deal)
	return nil
}

func (r *MemoryDealRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deal, ok := r.deals[id]
	if !ok {
		return nil, nil
	}
	found := copyDeal(deal)
	return &found, nil
}

func (r *MemoryDealRepository) List(_ context.Context) ([]models.Deal, error) {
	r.mu.RLock()
	deals := make([]models.Deal, 0, len(r.deals))
	for _, d := range r.deals {
		deals = append(deals, copyDeal(d))
	}
	r.mu.RUnlock()

	sort.Slice(deals, func(i, j int) bool {
		if deals[i].CreatedAt.Equal(deals[j].CreatedAt) {
			return deals[i].ID.String() < deals[j].ID.String()
		}
		return deals[i].CreatedAt.After(deals[j].CreatedAt)
	})
	return deals, nil
}

func copyDeal(d models.Deal) models.Deal {
	if d.Result != nil {
		result := *d.Result
		result.RiskFactors = append([]models.RiskFactor(nil), d.Result.RiskFactors...)
		d.Result = &result
	}
	return d
}

// MemoryBuyBoxRepository keeps the buy box in process memory.
type MemoryBuyBoxRepository struct {
	box *models.BuyBox
	mu  sync.RWMutex
}

// NewMemoryBuyBoxRepository creates an in-memory BuyBoxRepository with nothing saved.
func NewMemoryBuyBoxRepository() *MemoryBuyBoxRepository {
	return &MemoryBuyBoxRepository{}
}

func (r *MemoryBuyBoxRepository) Get(_ context.Context) (*models.BuyBox, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.box == nil {
		return nil, nil
	}
	box := *r.box
	return &box, nil
}

func (r *MemoryBuyBoxRepository) Save(_ context.Context, box models.BuyBox) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.box = &box
	return nil
}
