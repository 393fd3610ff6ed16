// internal/catalog/store.go
package catalog

import (
	"context"
	"sort"
	"sync"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/models"
)

// Store persists fund records. Every write replaces a whole record, so a
// reader never observes a partially applied update.
type Store interface {
	// List returns every fund, active or not, ordered by id.
	List(ctx context.Context) ([]models.Fund, error)
	Get(ctx context.Context, id string) (models.Fund, error)
	// Insert fails with FUND_ALREADY_EXISTS when the id is taken.
	Insert(ctx context.Context, fund models.Fund) error
	// Put creates or replaces the record.
	Put(ctx context.Context, fund models.Fund) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	funds map[string]models.Fund
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{funds: make(map[string]models.Fund)}
}

func (s *MemoryStore) List(_ context.Context) ([]models.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Fund, 0, len(s.funds))
	for _, f := range s.funds {
		out = append(out, f.Clone())
	}
	sortByID(out)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.funds[id]
	if !ok {
		return models.Fund{}, apperrors.NewFundNotFoundError(id)
	}
	return f.Clone(), nil
}

func (s *MemoryStore) Insert(_ context.Context, fund models.Fund) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.funds[fund.ID]; ok {
		return apperrors.NewFundAlreadyExistsError(fund.ID)
	}
	s.funds[fund.ID] = fund.Clone()
	return nil
}

func (s *MemoryStore) Put(_ context.Context, fund models.Fund) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.funds[fund.ID] = fund.Clone()
	return nil
}

func sortByID(funds []models.Fund) {
	sort.Slice(funds, func(i, j int) bool { return funds[i].ID < funds[j].ID })
}
