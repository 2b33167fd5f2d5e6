package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/aggregate"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/chunk"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/resolve"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/types"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/session"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/metrics"
)

// Entity names used in logs and metrics.
const (
	entityBand    = "band"
	entitySetlist = "setlist"
	entityVenue   = "venue"
	entityUser    = "user"
)

// CreatePerformance stores a performance owned by the session's user. The
// band, setlist and venue references are not checked.
func (s *Service) CreatePerformance(ctx context.Context, sess session.Session, in model.PerformanceInput) (model.Performance, error) {
	const op = "service.create_performance"
	if err := model.Validate(in); err != nil {
		return model.Performance{}, types.Op(op, types.ErrValidation, err)
	}
	status := in.Status
	if status == "" {
		status = model.StatusActive
	}
	now := s.now()
	p := model.Performance{
		PerformanceID: s.newKey(),
		OwnerID:       sess.UserID,
		Name:          in.Name,
		EventType:     in.EventType,
		Date:          in.Date,
		Band:          in.Band,
		SetList:       in.SetList,
		VenueID:       in.VenueID,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Performances.Create(ctx, p); err != nil {
		return model.Performance{}, backendErr(ctx, op, err)
	}
	return p, nil
}

// ListPerformances runs one aggregation pass: it loads the user's
// performances in status, resolves their band, setlist and venue
// references concurrently and joins the results once all three lookup
// tables are complete.
//
// Under the fail-fast policy any failed reference query fails the pass with
// a backend error. A cancelled ctx yields ctx.Err() and no partial listing.
func (s *Service) ListPerformances(ctx context.Context, sess session.Session, status model.Status) ([]model.PerformanceView, error) {
	const op = "service.list_performances"
	start := s.now()

	perfs, err := s.repo.Performances.ListByOwner(ctx, sess.UserID, status)
	if err != nil {
		metrics.RecordAggregationFailure()
		return nil, backendErr(ctx, op, err)
	}

	bandKeys := make([]string, len(perfs))
	setKeys := make([]string, len(perfs))
	venueKeys := make([]string, len(perfs))
	for i, p := range perfs {
		bandKeys[i], setKeys[i], venueKeys[i] = p.Band, p.SetList, p.VenueID
	}

	// Each goroutine owns one field of tables; reads happen after Wait.
	var tables aggregate.Tables
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := resolve.Resolve(gctx, s.resolver, entityBand, bandKeys, s.repo.Bands.ByKeys,
			func(b model.Band) string { return b.BandID })
		tables.Bands = t
		return err
	})
	g.Go(func() error {
		t, err := resolve.Resolve(gctx, s.resolver, entitySetlist, setKeys, s.repo.Setlists.ByKeys,
			func(sl model.Setlist) string { return sl.SetListID })
		tables.Setlists = t
		return err
	})
	g.Go(func() error {
		t, err := resolve.Resolve(gctx, s.resolver, entityVenue, venueKeys, s.repo.Venues.ByKeys,
			func(v model.Venue) string { return v.VenueID })
		tables.Venues = t
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		metrics.RecordAggregationFailure()
		s.log().Error(ctx, "aggregation pass failed", logger.Int("records", len(perfs)), logger.Error(err))
		return nil, types.Op(op, types.ErrBackend, err)
	}

	views := aggregate.Join(perfs, tables)

	misses := map[string]int{
		entityBand:    tables.Bands.Misses(chunk.Distinct(bandKeys)),
		entitySetlist: tables.Setlists.Misses(chunk.Distinct(setKeys)),
		entityVenue:   tables.Venues.Misses(chunk.Distinct(venueKeys)),
	}
	for entity, n := range misses {
		metrics.RecordLookupMisses(entity, n)
	}
	elapsed := s.now().Sub(start)
	metrics.RecordAggregation(float64(elapsed.Microseconds())/1000, len(views))
	s.log().Debug(ctx, "aggregation pass complete",
		logger.Int("records", len(views)),
		logger.Int("bandMisses", misses[entityBand]),
		logger.Int("setlistMisses", misses[entitySetlist]),
		logger.Int("venueMisses", misses[entityVenue]),
		logger.Duration("elapsed", elapsed),
	)
	return views, nil
}

// SoftDeletePerformance marks every record carrying performanceID inactive.
// Zero matches, or a performance owned by someone else, is ErrNotFound. The
// call is not retried.
func (s *Service) SoftDeletePerformance(ctx context.Context, sess session.Session, performanceID string) (model.MutationResult, error) {
	const op = "service.soft_delete_performance"

	p, err := s.repo.Performances.Get(ctx, performanceID)
	if err == nil && p.OwnerID != sess.UserID {
		err = types.Op(op, types.ErrNotFound, nil)
	}
	if err != nil {
		return model.MutationResult{}, s.deleteFailed(ctx, op, performanceID, err)
	}

	n, err := s.repo.Performances.SoftDelete(ctx, performanceID)
	if err == nil && n == 0 {
		err = types.Op(op, types.ErrNotFound, nil)
	}
	if err != nil {
		return model.MutationResult{}, s.deleteFailed(ctx, op, performanceID, err)
	}

	metrics.RecordSoftDelete("success")
	s.log().Info(ctx, "performance soft deleted",
		logger.String("performanceID", performanceID),
		logger.Int("matched", n),
	)
	return model.MutationResult{Matched: n}, nil
}

func (s *Service) deleteFailed(ctx context.Context, op, performanceID string, err error) error {
	if errors.Is(err, types.ErrNotFound) {
		metrics.RecordSoftDelete("not_found")
	} else {
		metrics.RecordSoftDelete("error")
		s.log().Error(ctx, "soft delete failed", logger.String("performanceID", performanceID), logger.Error(err))
	}
	return backendErr(ctx, op, err)
}
