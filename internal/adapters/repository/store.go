// Package repository maps domain records onto the document store.
package repository

import (
	"context"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/adapters/docstore"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/types"
)

// Collection names.
const (
	CollPerformances = "performances"
	CollBands        = "bands"
	CollSetlists     = "setlists"
	CollVenues       = "venues"
	CollUsers        = "users"
	CollUserEmails   = "user_emails"
	CollPosts        = "posts"
	CollComments     = "comments"
)

// table is a typed view of one collection whose business key lives in
// keyField.
type table[T any] struct {
	store    docstore.Store
	name     string
	keyField string
	keyOf    func(T) string
}

func (t table[T]) insert(ctx context.Context, v T) error {
	key := t.keyOf(v)
	fields, err := encode(v)
	if err != nil {
		return types.Op("repository.insert_"+t.name, types.ErrBackend, err)
	}
	if _, err := t.store.Insert(ctx, t.name, key, fields); err != nil {
		return storeErr("repository.insert_"+t.name, t.name, err)
	}
	return nil
}

func (t table[T]) find(ctx context.Context, filters ...docstore.Filter) ([]T, error) {
	docs, err := t.store.Find(ctx, t.name, filters...)
	if err != nil {
		return nil, storeErr("repository.find_"+t.name, t.name, err)
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := decode[T](d.Fields)
		if err != nil {
			return nil, types.Op("repository.find_"+t.name, types.ErrBackend, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// get returns the record with key or ErrNotFound.
func (t table[T]) get(ctx context.Context, key string) (T, error) {
	var zero T
	found, err := t.find(ctx, docstore.Eq(t.keyField, key))
	if err != nil {
		return zero, err
	}
	if len(found) == 0 {
		return zero, types.Op("repository.get_"+t.name, types.ErrNotFound, nil)
	}
	return found[0], nil
}

// byKeys loads the records whose key is in keys. It issues one In query;
// callers chunk keys to the store's ceiling.
func (t table[T]) byKeys(ctx context.Context, keys []string) ([]T, error) {
	return t.find(ctx, docstore.In(t.keyField, keys...))
}
