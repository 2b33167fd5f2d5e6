// Package docstore defines a small document-store port and its backends.
//
// A document belongs to a collection, carries a storage id assigned by the
// store and a business key assigned by the caller. The key is unique per
// collection. Filters only address top-level string fields.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// DefaultMaxInValues is the default ceiling on the number of values an In
// filter may carry.
const DefaultMaxInValues = 10

// Sentinel errors shared by every backend.
var (
	ErrDuplicateKey  = errors.New("docstore: duplicate key")
	ErrTooManyValues = errors.New("docstore: too many values in filter")
	ErrClosed        = errors.New("docstore: store closed")
	ErrInvalidFilter = errors.New("docstore: invalid filter")
)

// Operator is a filter comparison.
type Operator int

// Filter operators.
const (
	OpEq Operator = iota
	OpIn
)

// Filter restricts a query to documents whose Field matches Values.
type Filter struct {
	Field  string
	Op     Operator
	Values []string
}

// Eq matches documents whose field equals value.
func Eq(field, value string) Filter {
	return Filter{Field: field, Op: OpEq, Values: []string{value}}
}

// In matches documents whose field is one of values.
func In(field string, values ...string) Filter {
	return Filter{Field: field, Op: OpIn, Values: values}
}

// Document is a stored record.
type Document struct {
	ID     string
	Key    string
	Fields map[string]any
}

// Patch lists the fields an update sets.
type Patch map[string]any

type serverTimestamp struct{}

// ServerTimestamp, used as a patch value, is replaced by the store's
// current time when the update is applied.
var ServerTimestamp = serverTimestamp{}

// Store is the document-store port.
type Store interface {
	// Insert adds a document. It fails with ErrDuplicateKey when key is
	// already used in collection.
	Insert(ctx context.Context, collection, key string, fields map[string]any) (string, error)
	// Find returns the documents matching every filter, ordered by key.
	Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	// Update applies patch to every document matching filter and reports
	// how many matched.
	Update(ctx context.Context, collection string, filter Filter, patch Patch) (int, error)
	// Delete removes every document matching filter and reports how many
	// were removed.
	Delete(ctx context.Context, collection string, filter Filter) (int, error)
	Close() error
}

// Option configures a backend.
type Option func(*storeOptions)

type storeOptions struct {
	maxInValues int
	now         func() time.Time
}

func defaultOptions() storeOptions {
	return storeOptions{
		maxInValues: DefaultMaxInValues,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func buildOptions(opts []Option) storeOptions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxInValues sets the In filter ceiling.
func WithMaxInValues(n int) Option {
	return func(o *storeOptions) {
		if n > 0 {
			o.maxInValues = n
		}
	}
}

// WithClock sets the time source used for ServerTimestamp. Ignored by
// backends whose server supplies the time.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func (o storeOptions) checkFilters(filters []Filter) error {
	for _, f := range filters {
		if f.Field == "" {
			return fmt.Errorf("%w: empty field", ErrInvalidFilter)
		}
		switch f.Op {
		case OpEq:
			if len(f.Values) != 1 {
				return fmt.Errorf("%w: eq on %s needs one value", ErrInvalidFilter, f.Field)
			}
		case OpIn:
			if len(f.Values) > o.maxInValues {
				return fmt.Errorf("%w: %d values on %s, limit %d", ErrTooManyValues, len(f.Values), f.Field, o.maxInValues)
			}
		default:
			return fmt.Errorf("%w: unknown operator %d", ErrInvalidFilter, f.Op)
		}
	}
	return nil
}

// emptyIn reports whether a filter set can match nothing.
func emptyIn(filters []Filter) bool {
	for _, f := range filters {
		if f.Op == OpIn && len(f.Values) == 0 {
			return true
		}
	}
	return false
}

// applyPatch writes patch into fields, resolving ServerTimestamp to now.
func applyPatch(fields map[string]any, patch Patch, now time.Time) {
	for k, v := range patch {
		if _, ok := v.(serverTimestamp); ok {
			fields[k] = now
			continue
		}
		fields[k] = v
	}
}

func sortByKey(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })
}
