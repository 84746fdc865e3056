package provision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/pkg/logger"
)

const DefaultHoldKeyPrefix = "provision_hold_"

// HoldBackend is a durable string key-value store. Get reports found=false for
// a missing key rather than an error.
type HoldBackend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// holdSnapshot is the stored form of a held cart.
type holdSnapshot struct {
	CustomerID string           `json:"customer_id"`
	Lines      []model.CartLine `json:"lines"`
	SavedAt    time.Time        `json:"saved_at"`
}

// HoldStore persists one suspended cart per customer, last write wins.
type HoldStore struct {
	backend HoldBackend
	prefix  string
	now     func() time.Time
}

func NewHoldStore(backend HoldBackend, prefix string) *HoldStore {
	if prefix == "" {
		prefix = DefaultHoldKeyPrefix
	}
	return &HoldStore{backend: backend, prefix: prefix, now: time.Now}
}

func (h *HoldStore) key(customerID string) string {
	return h.prefix + customerID
}

// Save overwrites any earlier snapshot for customerID.
func (h *HoldStore) Save(ctx context.Context, customerID string, lines []model.CartLine) error {
	if lines == nil {
		lines = []model.CartLine{}
	}
	data, err := json.Marshal(holdSnapshot{
		CustomerID: customerID,
		Lines:      lines,
		SavedAt:    h.now(),
	})
	if err != nil {
		return fmt.Errorf("encode hold snapshot: %w", err)
	}
	if err := h.backend.Set(ctx, h.key(customerID), string(data)); err != nil {
		logger.Error("Failed to save hold snapshot", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return fmt.Errorf("save hold snapshot: %w", err)
	}

	logger.Debug("Hold snapshot saved", map[string]interface{}{
		"customer_id": customerID,
		"lines":       len(lines),
	})
	return nil
}

// Load returns the held lines for customerID. A malformed snapshot is
// reported as not found and logged; only backend failures return an error.
func (h *HoldStore) Load(ctx context.Context, customerID string) ([]model.CartLine, bool, error) {
	snap, found, err := h.read(ctx, h.key(customerID))
	if err != nil || !found {
		return nil, false, err
	}
	return snap.Lines, true, nil
}

func (h *HoldStore) read(ctx context.Context, key string) (*holdSnapshot, bool, error) {
	raw, found, err := h.backend.Get(ctx, key)
	if err != nil {
		logger.Error("Failed to read hold snapshot", err, map[string]interface{}{
			"key": key,
		})
		return nil, false, fmt.Errorf("load hold snapshot: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	var snap holdSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil || snap.Lines == nil {
		logger.Warn("Ignoring malformed hold snapshot", map[string]interface{}{
			"key":   key,
			"error": fmt.Sprint(err),
		})
		return nil, false, nil
	}
	return &snap, true, nil
}

// Clear removes the snapshot. Clearing a missing snapshot is not an error.
func (h *HoldStore) Clear(ctx context.Context, customerID string) error {
	if err := h.backend.Delete(ctx, h.key(customerID)); err != nil {
		logger.Error("Failed to clear hold snapshot", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return fmt.Errorf("clear hold snapshot: %w", err)
	}
	return nil
}

// Has reports whether a readable snapshot exists for customerID.
func (h *HoldStore) Has(ctx context.Context, customerID string) (bool, error) {
	_, found, err := h.Load(ctx, customerID)
	return found, err
}

// Sweep deletes snapshots saved before cutoff as well as unreadable ones and
// returns how many were removed.
func (h *HoldStore) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	keys, err := h.backend.Keys(ctx, h.prefix)
	if err != nil {
		return 0, fmt.Errorf("list hold snapshots: %w", err)
	}

	// A key that cannot be read or deleted is left for the next sweep.
	removed, skipped := 0, 0
	for _, key := range keys {
		snap, found, err := h.read(ctx, key)
		if err != nil {
			skipped++
			logger.Warn("Hold snapshot unreadable during sweep", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			continue
		}
		if found && !snap.SavedAt.Before(cutoff) {
			continue
		}
		if err := h.backend.Delete(ctx, key); err != nil {
			skipped++
			logger.Warn("Failed to delete hold snapshot during sweep", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			continue
		}
		removed++
	}
	if skipped > 0 {
		logger.Warn("Hold sweep skipped snapshots", map[string]interface{}{
			"skipped": skipped,
			"removed": removed,
		})
	}
	return removed, nil
}

// MemoryHoldBackend keeps holds in process memory. It does not survive a
// restart and is meant for tests and single-node development.
type MemoryHoldBackend struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryHoldBackend() *MemoryHoldBackend {
	return &MemoryHoldBackend{data: make(map[string]string)}
}

func (m *MemoryHoldBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryHoldBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryHoldBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryHoldBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
