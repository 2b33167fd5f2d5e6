package docstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	opts   storeOptions
	colls  map[string]*memCollection
	closed bool
}

type memCollection struct {
	docs  map[string]*Document // by id
	byKey map[string]string    // key -> id
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	return &Memory{opts: buildOptions(opts), colls: make(map[string]*memCollection)}
}

func (m *Memory) collection(name string) *memCollection {
	c, ok := m.colls[name]
	if !ok {
		c = &memCollection{docs: make(map[string]*Document), byKey: make(map[string]string)}
		m.colls[name] = c
	}
	return c
}

// Insert implements Store.
func (m *Memory) Insert(ctx context.Context, collection, key string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrClosed
	}
	c := m.collection(collection)
	if _, dup := c.byKey[key]; dup {
		return "", fmt.Errorf("%w: %s/%s", ErrDuplicateKey, collection, key)
	}
	id := uuid.NewString()
	c.docs[id] = &Document{ID: id, Key: key, Fields: cloneFields(fields)}
	c.byKey[key] = id
	return id, nil
}

// Find implements Store.
func (m *Memory) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.opts.checkFilters(filters); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	c, ok := m.colls[collection]
	if !ok || emptyIn(filters) {
		return nil, nil
	}
	var out []Document
	for _, d := range c.docs {
		if matchesAll(d.Fields, filters) {
			out = append(out, Document{ID: d.ID, Key: d.Key, Fields: cloneFields(d.Fields)})
		}
	}
	sortByKey(out)
	return out, nil
}

// Update implements Store.
func (m *Memory) Update(ctx context.Context, collection string, filter Filter, patch Patch) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := m.opts.checkFilters([]Filter{filter}); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	c, ok := m.colls[collection]
	if !ok {
		return 0, nil
	}
	now := m.opts.now()
	matched := 0
	for _, d := range c.docs {
		if !matches(d.Fields, filter) {
			continue
		}
		applyPatch(d.Fields, patch, now)
		matched++
	}
	return matched, nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, collection string, filter Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := m.opts.checkFilters([]Filter{filter}); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	c, ok := m.colls[collection]
	if !ok {
		return 0, nil
	}
	removed := 0
	for id, d := range c.docs {
		if !matches(d.Fields, filter) {
			continue
		}
		delete(c.docs, id)
		delete(c.byKey, d.Key)
		removed++
	}
	return removed, nil
}

// Close implements Store.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func matchesAll(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !matches(fields, f) {
			return false
		}
	}
	return true
}

func matches(fields map[string]any, f Filter) bool {
	v, ok := fields[f.Field].(string)
	if !ok {
		return false
	}
	for _, want := range f.Values {
		if v == want {
			return true
		}
	}
	return false
}

func cloneFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case []string:
			out[k] = append([]string(nil), t...)
		case []any:
			out[k] = append([]any(nil), t...)
		default:
			out[k] = v
		}
	}
	return out
}
