package seed

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/aggregate"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
)

// expectation is what the listing must show for one created performance.
type expectation struct {
	name        string
	bandName    string
	setListName string
	venue       model.Venue
	orphan      bool
}

// Run executes a complete seed run: health check, account, fixtures,
// concurrent performance creation and listing verification.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	if log == nil {
		log = logger.Nop()
	}
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting portal seed run",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("email", cfg.Email),
		logger.Int("generated", cfg.Performances),
		logger.Int("workers", cfg.Workers))

	fixtures, err := LoadFixtures(cfg.FixturesFile)
	if err != nil {
		return stats, err
	}
	fixtures.Generate(cfg.Performances, cfg.OrphanRate, cfg.Seed)

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	if err := signIn(ctx, client, cfg, log); err != nil {
		return stats, err
	}

	refs, err := createCatalog(ctx, client, fixtures, stats)
	if err != nil {
		return stats, err
	}

	expected, err := createPerformances(ctx, client, cfg.Workers, fixtures.Performances, refs, stats)
	if err != nil {
		return stats, err
	}
	log.Info(ctx, "performances created",
		logger.Int("created", stats.Performances),
		logger.Int("failed", stats.Failed),
		logger.Int("orphans", stats.Orphans))

	views, err := client.ListPerformances(ctx, model.StatusActive)
	if err != nil {
		return stats, fmt.Errorf("list performances: %w", err)
	}
	stats.Listed = len(views)
	if err := verifyListing(views, expected); err != nil {
		return stats, fmt.Errorf("listing verification failed: %w", err)
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "seed run completed",
		logger.Int("venues", stats.Venues),
		logger.Int("bands", stats.Bands),
		logger.Int("setlists", stats.Setlists),
		logger.Int("listed", stats.Listed),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

// signIn registers the seed account when needed and opens a session.
func signIn(ctx context.Context, client *Client, cfg *Config, log logger.Logger) error {
	_, err := client.Register(ctx, model.RegisterInput{
		Email:       cfg.Email,
		DisplayName: cfg.DisplayName,
		AccessCode:  cfg.AccessCode,
	})
	switch {
	case err == nil:
		log.Info(ctx, "registered seed account", logger.String("email", cfg.Email))
	case IsStatus(err, http.StatusConflict):
		log.Debug(ctx, "seed account already registered", logger.String("email", cfg.Email))
	default:
		return fmt.Errorf("register: %w", err)
	}
	if err := client.SignIn(ctx, cfg.Email); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	return nil
}

// catalogRefs maps fixture refs to the created records.
type catalogRefs struct {
	bands    map[string]model.Band
	setlists map[string]model.Setlist
	venues   map[string]model.Venue
}

func createCatalog(ctx context.Context, client *Client, f *Fixtures, stats *Stats) (catalogRefs, error) {
	refs := catalogRefs{
		bands:    make(map[string]model.Band, len(f.Bands)),
		setlists: make(map[string]model.Setlist, len(f.Setlists)),
		venues:   make(map[string]model.Venue, len(f.Venues)),
	}
	for _, v := range f.Venues {
		created, err := client.CreateVenue(ctx, v.input())
		if err != nil {
			return refs, fmt.Errorf("create venue %q: %w", v.Ref, err)
		}
		refs.venues[v.Ref] = created
		stats.Venues++
	}
	for _, b := range f.Bands {
		created, err := client.CreateBand(ctx, b.input())
		if err != nil {
			return refs, fmt.Errorf("create band %q: %w", b.Ref, err)
		}
		refs.bands[b.Ref] = created
		stats.Bands++
	}
	for _, s := range f.Setlists {
		created, err := client.CreateSetlist(ctx, s.input())
		if err != nil {
			return refs, fmt.Errorf("create setlist %q: %w", s.Ref, err)
		}
		refs.setlists[s.Ref] = created
		stats.Setlists++
	}
	return refs, nil
}

// resolveFixture turns fixture refs into business keys and records what the
// listing should show. Unknown refs are passed through unchanged.
func resolveFixture(p PerformanceFixture, refs catalogRefs) (model.PerformanceInput, expectation) {
	in := model.PerformanceInput{
		Name:      p.Name,
		EventType: p.EventType,
		Date:      p.Date,
		Band:      p.Band,
		SetList:   p.SetList,
		VenueID:   p.Venue,
	}
	exp := expectation{
		name:        p.Name,
		bandName:    aggregate.UnknownBand,
		setListName: aggregate.UnknownSet,
		venue:       model.Venue{Name: aggregate.UnknownVenue, City: aggregate.UnknownCity, State: aggregate.UnknownState},
	}
	if b, ok := refs.bands[p.Band]; ok {
		in.Band, exp.bandName = b.BandID, b.Name
	} else {
		exp.orphan = true
	}
	if s, ok := refs.setlists[p.SetList]; ok {
		in.SetList, exp.setListName = s.SetListID, s.Name
	} else {
		exp.orphan = true
	}
	if v, ok := refs.venues[p.Venue]; ok {
		in.VenueID, exp.venue = v.VenueID, v
	} else {
		exp.orphan = true
	}
	return in, exp
}

// createPerformances posts performances with at most workers requests in
// flight. Failed posts are counted; only cancellation aborts the run.
func createPerformances(ctx context.Context, client *Client, workers int, perfs []PerformanceFixture, refs catalogRefs, stats *Stats) (map[string]expectation, error) {
	if workers <= 0 {
		workers = 1
	}
	type result struct {
		id  string
		exp expectation
	}
	results := make([]result, len(perfs))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range perfs {
		in, exp := resolveFixture(p, refs)
		g.Go(func() error {
			created, err := client.CreatePerformance(gctx, in)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				return nil
			}
			results[i] = result{id: created.PerformanceID, exp: exp}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	expected := make(map[string]expectation, len(perfs))
	for _, r := range results {
		if r.id == "" {
			continue
		}
		expected[r.id] = r.exp
		stats.Performances++
		if r.exp.orphan {
			stats.Orphans++
		}
	}
	stats.Failed = int(failed.Load())
	return expected, nil
}
