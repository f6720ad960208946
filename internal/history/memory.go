package history

import (
	"context"
	"sync"

	"rolefit/internal/analysis"
)

// MemorySink keeps records in process memory.
type MemorySink struct {
	mu         sync.RWMutex
	records    map[string][]*analysis.Record
	maxEntries int
}

// NewMemorySink creates an empty MemorySink keeping at most maxEntries
// records per owner.
func NewMemorySink(maxEntries int) *MemorySink {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemorySink{records: make(map[string][]*analysis.Record), maxEntries: maxEntries}
}

func (m *MemorySink) Name() string { return "memory" }

func (m *MemorySink) Save(ctx context.Context, owner string, rec *analysis.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	owner, err := validateOwner(owner)
	if err != nil {
		return err
	}
	if err := validateRecord(rec); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := append([]*analysis.Record{rec.WithOwner(owner)}, m.records[owner]...)
	if len(list) > m.maxEntries {
		list = list[:m.maxEntries]
	}
	m.records[owner] = list
	return nil
}

func (m *MemorySink) List(ctx context.Context, owner string, limit int) ([]analysis.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	owner, err := validateOwner(owner)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.records[owner]
	n := min(clampLimit(limit, m.maxEntries), len(stored))
	out := make([]analysis.Record, 0, n)
	for _, rec := range stored[:n] {
		out = append(out, *rec.WithOwner(owner))
	}
	return out, nil
}

func (m *MemorySink) Ping(context.Context) error { return nil }

func (m *MemorySink) Close() error { return nil }
