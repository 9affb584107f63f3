// Package store caches synthesized declarations by identity so a generation
// run synthesizes each declaration at most once.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/definition"
	"github.com/griffnb/tsschema/internal/schema"
)

// Entry is one cached declaration: its reference, its schema and the
// expansions it depends on.
type Entry struct {
	Ref    string
	Schema spec.Schema
	Deps   []definition.Pending
}

// Store is the definition cache used by the worklist.
type Store interface {
	// Get returns the entry stored under key.
	Get(ctx context.Context, key string) (Entry, bool, error)

	// Put stores an entry under key.
	Put(ctx context.Context, key string, entry Entry) error
}

// storedEntry is the JSON form of an Entry.
type storedEntry struct {
	Ref    string               `json:"ref"`
	Schema json.RawMessage      `json:"schema"`
	Deps   []definition.Pending `json:"deps,omitempty"`
}

// Marshal encodes an entry as JSON.
func Marshal(entry Entry) ([]byte, error) {
	data, err := json.Marshal(entry.Schema)
	if err != nil {
		return nil, fmt.Errorf("encode schema of %s: %w", entry.Ref, err)
	}
	return json.Marshal(storedEntry{Ref: entry.Ref, Schema: data, Deps: entry.Deps})
}

// Unmarshal decodes an entry written by Marshal.
func Unmarshal(data []byte) (Entry, error) {
	var stored storedEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		return Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	s, err := schema.Decode(stored.Schema)
	if err != nil {
		return Entry{}, fmt.Errorf("decode entry %s: %w", stored.Ref, err)
	}
	return Entry{Ref: stored.Ref, Schema: s, Deps: stored.Deps}, nil
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	return entry, ok, nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, key string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
