// Package cache stores encoded analyses keyed by the content they were
// computed from, in process or in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
)

// Cache is a byte cache with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Key derives a cache key from everything that shows up in an analysis.
// Names appear in the payoff order, and debts cleared in the same month are
// listed in input order, so both are part of the key.
func Key(debts []model.Debt, extra money.Amount, ref time.Time, maxMonths int, decimals int32) string {
	lines := make([]string, 0, len(debts))
	for _, d := range debts {
		lines = append(lines, strings.Join([]string{
			d.ID,
			d.Name,
			d.Outstanding.String(),
			d.AnnualRate.String(),
			d.MinimumPayment.String(),
		}, "|"))
	}

	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	// Only the calendar day matters for the debt-free date.
	fmt.Fprintf(h, "extra=%s ref=%s max=%d dec=%d", extra.String(), ref.Format("2006-01-02"), maxMonths, decimals)
	return "debtburn:analysis:" + hex.EncodeToString(h.Sum(nil))
}

type entry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process Cache.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

// Get returns the value for key if present and not expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value. A ttl <= 0 never expires.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close drops every entry.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
	return nil
}
