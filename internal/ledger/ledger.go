// Package ledger tracks the most recent successful submissions and the
// free-tier markers kept next to them in the local cache.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/store"
)

// Capacity is the number of records kept, and the free-tier allowance.
const Capacity = 3

// Record is one successful submission.
type Record struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	Style     string    `json:"style"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}

// Ledger reads and writes the usage list through a store.Store.
// Every call re-reads the store so writes from another process show up
// on the next call. Writers in other processes are not coordinated.
type Ledger struct {
	mu    sync.Mutex // serializes read-modify-write within this process
	store store.Store
	now   func() time.Time
}

// New creates a ledger over s.
func New(s store.Store) *Ledger {
	return &Ledger{store: s, now: time.Now}
}

// Append inserts rec at the front and keeps only the newest Capacity records.
// A missing ID or timestamp is filled in. The stored record is returned.
func (l *Ledger) Append(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = l.now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.Records(ctx)
	if err != nil {
		return Record{}, err
	}

	records = append([]Record{rec}, records...)
	if len(records) > Capacity {
		records = records[:Capacity]
	}

	data, err := json.Marshal(records)
	if err != nil {
		return Record{}, fmt.Errorf("encode usage: %w", err)
	}
	if err := l.store.Set(ctx, store.KeyRecentUsage, string(data)); err != nil {
		return Record{}, fmt.Errorf("save usage: %w", err)
	}
	return rec, nil
}

// Records returns the stored records, newest first.
func (l *Ledger) Records(ctx context.Context) ([]Record, error) {
	raw, ok, err := l.store.Get(ctx, store.KeyRecentUsage)
	if err != nil {
		return nil, fmt.Errorf("load usage: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		// An unreadable list counts as empty; the next Append overwrites it.
		slog.Warn("discarding unreadable usage list", "error", err)
		return nil, nil
	}
	if len(records) > Capacity {
		records = records[:Capacity]
	}
	return records, nil
}

// Count returns the number of stored records.
func (l *Ledger) Count(ctx context.Context) (int, error) {
	records, err := l.Records(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// IsExhausted reports whether the free allowance is used up:
// Capacity records stored and no upgraded marker.
func (l *Ledger) IsExhausted(ctx context.Context) (bool, error) {
	count, err := l.Count(ctx)
	if err != nil {
		return false, err
	}
	if count < Capacity {
		return false, nil
	}

	upgraded, err := l.IsUpgraded(ctx)
	if err != nil {
		return false, err
	}
	return !upgraded, nil
}

// Clear removes the usage list and both markers.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Delete(ctx, store.KeyRecentUsage, store.KeyUpgraded, store.KeyTermsAccepted); err != nil {
		return fmt.Errorf("clear usage: %w", err)
	}
	return nil
}

// MarkUpgraded records that the user has paid.
func (l *Ledger) MarkUpgraded(ctx context.Context) error {
	return l.setFlag(ctx, store.KeyUpgraded)
}

// IsUpgraded reports whether the upgraded marker is set.
func (l *Ledger) IsUpgraded(ctx context.Context) (bool, error) {
	return l.flag(ctx, store.KeyUpgraded)
}

// AcceptTerms records acceptance of the terms of service.
func (l *Ledger) AcceptTerms(ctx context.Context) error {
	return l.setFlag(ctx, store.KeyTermsAccepted)
}

// TermsAccepted reports whether the terms marker is set.
func (l *Ledger) TermsAccepted(ctx context.Context) (bool, error) {
	return l.flag(ctx, store.KeyTermsAccepted)
}

func (l *Ledger) setFlag(ctx context.Context, key string) error {
	if err := l.store.Set(ctx, key, "true"); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (l *Ledger) flag(ctx context.Context, key string) (bool, error) {
	v, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	return ok && v == "true", nil
}
