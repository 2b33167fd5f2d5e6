package repository

import (
	"context"
	"errors"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/adapters/docstore"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/types"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/metrics"
)

// storeErr converts a docstore failure into a domain kind and counts it.
// Cancellation is passed through untouched so callers can tell it apart.
func storeErr(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, docstore.ErrDuplicateKey) {
		return types.Op(op, types.ErrConflict, err)
	}
	metrics.RecordStoreError(op, collection)
	return types.Op(op, types.ErrBackend, err)
}
