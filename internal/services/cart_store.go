package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"storefront-checkout/internal/models"
	"storefront-checkout/internal/repositories"

	"go.uber.org/zap"
)

// CartStore owns one shopper's cart. The in-memory lines are authoritative;
// the storage copy is best effort. The stored copy is read once, on first
// access, and rewritten after every mutation.
type CartStore struct {
	storage repositories.CartStorage
	key     string
	logger  *zap.Logger

	loadOnce sync.Once
	mu       sync.Mutex
	lines    []models.CartLine
	revision int64
}

func NewCartStore(storage repositories.CartStorage, key string, logger *zap.Logger) *CartStore {
	return &CartStore{
		storage: storage,
		key:     key,
		logger:  logger,
	}
}

// Key returns the storage key the cart is persisted under.
func (s *CartStore) Key() string {
	return s.key
}

// AddItem merges into an existing line with the same ID by adding the
// quantities, or appends a new line.
func (s *CartStore) AddItem(ctx context.Context, line models.CartLine) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	s.mutate(ctx, func() {
		for i := range s.lines {
			if s.lines[i].ID == line.ID {
				s.lines[i].Quantity += line.Quantity
				return
			}
		}
		s.lines = append(s.lines, line)
	})
}

// RemoveItem drops the line with the given ID; absent IDs are ignored.
func (s *CartStore) RemoveItem(ctx context.Context, id models.ProductID) {
	s.mutate(ctx, func() {
		s.removeLocked(id)
	})
}

// UpdateQuantity replaces the quantity in place. Zero or negative removes
// the line.
func (s *CartStore) UpdateQuantity(ctx context.Context, id models.ProductID, quantity int) {
	s.mutate(ctx, func() {
		if quantity <= 0 {
			s.removeLocked(id)
			return
		}
		for i := range s.lines {
			if s.lines[i].ID == id {
				s.lines[i].Quantity = quantity
				return
			}
		}
	})
}

func (s *CartStore) Clear(ctx context.Context) {
	s.mutate(ctx, func() {
		s.lines = nil
	})
}

// Lines returns a copy of the current lines in insertion order.
func (s *CartStore) Lines(ctx context.Context) []models.CartLine {
	s.ensureLoaded(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLinesLocked()
}

func (s *CartStore) Cart(ctx context.Context) models.Cart {
	return models.Cart{Lines: s.Lines(ctx)}
}

func (s *CartStore) Snapshot(ctx context.Context) models.CartSnapshot {
	s.ensureLoaded(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *CartStore) TotalItems(ctx context.Context) int {
	return s.Cart(ctx).TotalItems()
}

func (s *CartStore) TotalPrice(ctx context.Context) int64 {
	return s.Cart(ctx).TotalPrice()
}

func (s *CartStore) mutate(ctx context.Context, apply func()) {
	s.ensureLoaded(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	apply()
	s.revision++
	s.persistLocked(ctx)
}

func (s *CartStore) removeLocked(id models.ProductID) {
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

func (s *CartStore) copyLinesLocked() []models.CartLine {
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *CartStore) snapshotLocked() models.CartSnapshot {
	return models.CartSnapshot{
		Version:  models.CartSchemaVersion,
		Revision: s.revision,
		Lines:    s.copyLinesLocked(),
	}
}

func (s *CartStore) ensureLoaded(ctx context.Context) {
	s.loadOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.loadLocked(ctx)
	})
}

func (s *CartStore) loadLocked(ctx context.Context) {
	if s.storage == nil {
		return
	}

	data, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, repositories.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn("Failed to load cart, starting empty",
			zap.String("kind", string(KindPersistenceWarning)),
			zap.String("key", s.key),
			zap.Error(err),
		)
		return
	}

	snapshot, err := models.DecodeCartSnapshot(data)
	if err != nil {
		s.logger.Warn("Stored cart is corrupt, starting empty",
			zap.String("kind", string(KindPersistenceWarning)),
			zap.String("key", s.key),
			zap.Error(err),
		)
		return
	}

	s.lines = snapshot.Lines
	s.revision = snapshot.Revision
	if snapshot.Version < models.CartSchemaVersion {
		s.logger.Info("Migrating stored cart",
			zap.String("key", s.key),
			zap.Int("from_version", snapshot.Version),
			zap.Int("to_version", models.CartSchemaVersion),
		)
		s.persistLocked(ctx)
	}
}

func (s *CartStore) persistLocked(ctx context.Context) {
	if s.storage == nil {
		return
	}

	snapshot := s.snapshotLocked()
	snapshot.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(snapshot)
	if err == nil {
		err = s.storage.Save(ctx, s.key, data)
	}
	if err != nil {
		s.logger.Warn("Failed to persist cart",
			zap.String("kind", string(KindPersistenceWarning)),
			zap.String("key", s.key),
			zap.Int64("revision", snapshot.Revision),
			zap.Error(err),
		)
	}
}
