package pricecache

import (
	"context"
	"errors"
	"sync"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/repository"
)

// Store is the backing storage of a Cache.
// Put must never replace a record with one that has an older RefreshedAt.
type Store interface {
	Get(ctx context.Context, symbol string) (model.PriceRecord, bool, error)
	Put(ctx context.Context, rec model.PriceRecord) error
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.PriceRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]model.PriceRecord),
	}
}

// Get returns the record for symbol.
func (s *MemoryStore) Get(_ context.Context, symbol string) (model.PriceRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[symbol]
	return rec, ok, nil
}

// Put stores rec unless a newer record is already held.
func (s *MemoryStore) Put(_ context.Context, rec model.PriceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[rec.Symbol]; ok && existing.RefreshedAt.After(rec.RefreshedAt) {
		return nil
	}
	s.records[rec.Symbol] = rec
	return nil
}

// SQLStore keeps records in the price_cache table so they survive restarts.
type SQLStore struct {
	repo *repository.PriceCacheRepository
}

// NewSQLStore creates a SQLStore on top of repo.
func NewSQLStore(repo *repository.PriceCacheRepository) *SQLStore {
	return &SQLStore{repo: repo}
}

// Get returns the record for symbol.
func (s *SQLStore) Get(ctx context.Context, symbol string) (model.PriceRecord, bool, error) {
	rec, err := s.repo.GetPrice(ctx, symbol)
	if errors.Is(err, apperrors.ErrPriceNotFound) {
		return model.PriceRecord{}, false, nil
	}
	if err != nil {
		return model.PriceRecord{}, false, err
	}
	return rec, true, nil
}

// Put upserts rec. The repository ignores writes older than the stored row.
func (s *SQLStore) Put(ctx context.Context, rec model.PriceRecord) error {
	_, err := s.repo.UpsertPrice(ctx, rec)
	return err
}
