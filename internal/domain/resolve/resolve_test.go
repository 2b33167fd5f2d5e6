package resolve_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/resolve"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type band struct {
	ID   string
	Name string
}

func bandKey(b band) string { return b.ID }

// fakeBands answers chunk queries from a fixed catalogue and records every
// chunk it was asked for.
type fakeBands struct {
	mu      sync.Mutex
	catalog map[string]band
	calls   [][]string
	failOn  string
	active  atomic.Int32
	peak    atomic.Int32
	delay   time.Duration
}

func newFakeBands(ids ...string) *fakeBands {
	f := &fakeBands{catalog: map[string]band{}}
	for _, id := range ids {
		f.catalog[id] = band{ID: id, Name: "Band " + id}
	}
	return f
}

func (f *fakeBands) fetch(ctx context.Context, keys []string) ([]band, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), keys...))
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var out []band
	for _, k := range keys {
		if k == f.failOn {
			return nil, errors.New("backend unavailable")
		}
		if b, ok := f.catalog[k]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("B%02d", i)
	}
	return out
}

func TestResolve(t *testing.T) {
	Convey("Given a resolver with chunk size 10", t, func() {
		r := resolve.New(resolve.WithChunkSize(10), resolve.WithConcurrency(4))
		ctx := context.Background()

		Convey("When resolving 12 distinct band keys", func() {
			f := newFakeBands(ids(12)...)
			table, err := resolve.Resolve(ctx, r, "band", ids(12), f.fetch, bandKey)

			Convey("Then two chunk queries of 10 and 2 are issued", func() {
				So(err, ShouldBeNil)
				So(len(f.calls), ShouldEqual, 2)
				sizes := []int{len(f.calls[0]), len(f.calls[1])}
				sort.Ints(sizes)
				So(sizes, ShouldResemble, []int{2, 10})
			})

			Convey("And every key resolves", func() {
				So(len(table), ShouldEqual, 12)
				b, ok := table.Lookup("B11")
				So(ok, ShouldBeTrue)
				So(b.Name, ShouldEqual, "Band B11")
			})
		})

		Convey("When keys repeat and some are blank", func() {
			f := newFakeBands("A", "B")
			keys := []string{"A", "", "B", "A", "B", ""}
			table, err := resolve.Resolve(ctx, r, "band", keys, f.fetch, bandKey)

			Convey("Then each key is queried once and blanks are skipped", func() {
				So(err, ShouldBeNil)
				So(f.calls, ShouldResemble, [][]string{{"A", "B"}})
				So(len(table), ShouldEqual, 2)
			})
		})

		Convey("When one requested key does not exist", func() {
			f := newFakeBands("A", "B", "C")
			table, err := resolve.Resolve(ctx, r, "band", []string{"A", "B", "C", "D"}, f.fetch, bandKey)

			Convey("Then the table holds A, B and C but not D", func() {
				So(err, ShouldBeNil)
				_, ok := table.Lookup("D")
				So(ok, ShouldBeFalse)
				So(table.Misses([]string{"A", "D", "D"}), ShouldEqual, 2)
			})
		})

		Convey("When there are no keys at all", func() {
			f := newFakeBands()
			table, err := resolve.Resolve(ctx, r, "band", []string{"", ""}, f.fetch, bandKey)

			Convey("Then no query is issued", func() {
				So(err, ShouldBeNil)
				So(table, ShouldBeEmpty)
				So(f.calls, ShouldBeEmpty)
			})
		})
	})
}

func TestResolveConcurrency(t *testing.T) {
	Convey("Given 50 keys, chunk size 5 and a concurrency limit of 2", t, func() {
		r := resolve.New(resolve.WithChunkSize(5), resolve.WithConcurrency(2))
		f := newFakeBands(ids(50)...)
		f.delay = 5 * time.Millisecond

		table, err := resolve.Resolve(context.Background(), r, "band", ids(50), f.fetch, bandKey)

		Convey("Then at most two chunk queries were in flight", func() {
			So(err, ShouldBeNil)
			So(len(f.calls), ShouldEqual, 10)
			So(f.peak.Load(), ShouldBeLessThanOrEqualTo, 2)
			So(len(table), ShouldEqual, 50)
		})
	})
}

func TestResolveBarrier(t *testing.T) {
	Convey("Given one chunk query that is held open", t, func() {
		r := resolve.New(resolve.WithChunkSize(10), resolve.WithConcurrency(2))
		release := make(chan struct{})
		var started atomic.Int32

		fetch := func(ctx context.Context, keys []string) ([]band, error) {
			started.Add(1)
			if len(keys) == 2 {
				<-release
			}
			out := make([]band, 0, len(keys))
			for _, k := range keys {
				out = append(out, band{ID: k})
			}
			return out, nil
		}

		done := make(chan resolve.LookupTable[band], 1)
		go func() {
			table, _ := resolve.Resolve(context.Background(), r, "band", ids(12), fetch, bandKey)
			done <- table
		}()

		Convey("Then no table is produced until it completes", func() {
			deadline := time.Now().Add(time.Second)
			for started.Load() < 2 && time.Now().Before(deadline) {
				time.Sleep(time.Millisecond)
			}
			resolvedEarly := false
			select {
			case <-done:
				resolvedEarly = true
			case <-time.After(20 * time.Millisecond):
			}
			close(release)
			So(resolvedEarly, ShouldBeFalse)

			table := <-done
			So(len(table), ShouldEqual, 12)
		})
	})
}

func TestResolveFailures(t *testing.T) {
	Convey("Given a chunk query that fails", t, func() {
		ctx := context.Background()
		f := newFakeBands(ids(12)...)
		f.failOn = "B11"

		Convey("When the policy is fail fast", func() {
			r := resolve.New(resolve.WithChunkSize(10), resolve.WithPolicy(resolve.FailFast))
			table, err := resolve.Resolve(ctx, r, "band", ids(12), f.fetch, bandKey)

			Convey("Then the pass fails and no table is returned", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "resolve band chunk 1")
				So(table, ShouldBeNil)
			})
		})

		Convey("When the policy is best effort", func() {
			r := resolve.New(resolve.WithChunkSize(10), resolve.WithPolicy(resolve.BestEffort))
			table, err := resolve.Resolve(ctx, r, "band", ids(12), f.fetch, bandKey)

			Convey("Then the healthy chunk resolves and the failed keys are missing", func() {
				So(err, ShouldBeNil)
				So(len(table), ShouldEqual, 10)
				So(table.Misses([]string{"B10", "B11"}), ShouldEqual, 2)
			})
		})
	})
}

func TestResolveFailFastSkipsQueuedChunks(t *testing.T) {
	Convey("Given five single-key chunks run one at a time", t, func() {
		f := newFakeBands(ids(5)...)
		f.failOn = "B00"
		r := resolve.New(resolve.WithChunkSize(1), resolve.WithConcurrency(1), resolve.WithPolicy(resolve.FailFast))

		Convey("When the first chunk fails", func() {
			table, err := resolve.Resolve(context.Background(), r, "band", ids(5), f.fetch, bandKey)

			Convey("Then the queued chunks are never queried", func() {
				So(err, ShouldNotBeNil)
				So(table, ShouldBeNil)
				So(f.calls, ShouldHaveLength, 1)
				So(f.calls[0], ShouldResemble, []string{"B00"})
			})
		})
	})
}

func TestResolveCancellation(t *testing.T) {
	Convey("Given a pass whose caller goes away", t, func() {
		for _, policy := range []resolve.Policy{resolve.FailFast, resolve.BestEffort} {
			r := resolve.New(resolve.WithChunkSize(2), resolve.WithPolicy(policy))
			f := newFakeBands(ids(8)...)
			f.delay = time.Second

			ctx, cancel := context.WithCancel(context.Background())
			time.AfterFunc(10*time.Millisecond, cancel)

			start := time.Now()
			table, err := resolve.Resolve(ctx, r, "band", ids(8), f.fetch, bandKey)

			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(table, ShouldBeNil)
			So(time.Since(start), ShouldBeLessThan, 500*time.Millisecond)
		}
	})
}

func TestParsePolicy(t *testing.T) {
	Convey("Given policy names", t, func() {
		p, err := resolve.ParsePolicy("")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, resolve.FailFast)

		p, err = resolve.ParsePolicy("Best_Effort")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, resolve.BestEffort)

		_, err = resolve.ParsePolicy("retry")
		So(err, ShouldNotBeNil)
	})
}

func TestResolverDefaults(t *testing.T) {
	Convey("Given a resolver with invalid options", t, func() {
		r := resolve.New(resolve.WithChunkSize(0), resolve.WithConcurrency(-1), resolve.WithPolicy("bogus"), resolve.WithLogger(nil))

		Convey("Then the defaults are kept", func() {
			So(r.ChunkSize(), ShouldEqual, resolve.DefaultChunkSize)
			So(r.Policy(), ShouldEqual, resolve.FailFast)
		})
	})
}
