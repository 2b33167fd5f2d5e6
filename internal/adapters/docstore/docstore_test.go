package docstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/adapters/docstore"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type backend struct {
	name string
	open func(t *testing.T) docstore.Store
}

func backends() []backend {
	return []backend{
		{"memory", func(t *testing.T) docstore.Store {
			return docstore.NewMemory(docstore.WithClock(clock), docstore.WithMaxInValues(3))
		}},
		{"sqlite", func(t *testing.T) docstore.Store {
			path := filepath.Join(t.TempDir(), "docs.db")
			s, err := docstore.OpenSQLite(context.Background(), path, docstore.WithClock(clock), docstore.WithMaxInValues(3))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return s
		}},
	}
}

func TestStoreContract(t *testing.T) {
	for _, b := range backends() {
		b := b
		Convey("Given a "+b.name+" store with three performances", t, func() {
			ctx := context.Background()
			s := b.open(t)
			defer func() { _ = s.Close() }()

			for _, p := range []struct{ key, owner, status string }{
				{"P1", "u1", "active"},
				{"P2", "u1", "inactive"},
				{"P3", "u2", "active"},
			} {
				id, err := s.Insert(ctx, "performances", p.key, map[string]any{
					"performanceID": p.key,
					"ownerID":       p.owner,
					"status":        p.status,
					"tags":          []string{"a", "b"},
				})
				So(err, ShouldBeNil)
				So(id, ShouldNotBeEmpty)
			}

			Convey("When inserting a duplicate key", func() {
				_, err := s.Insert(ctx, "performances", "P1", map[string]any{"performanceID": "P1"})

				Convey("Then it is rejected", func() {
					So(errors.Is(err, docstore.ErrDuplicateKey), ShouldBeTrue)
				})
			})

			Convey("When the same key is used in another collection", func() {
				_, err := s.Insert(ctx, "bands", "P1", map[string]any{"bandID": "P1"})

				Convey("Then it is accepted", func() {
					So(err, ShouldBeNil)
				})
			})

			Convey("When finding with ANDed filters", func() {
				docs, err := s.Find(ctx, "performances",
					docstore.Eq("ownerID", "u1"), docstore.Eq("status", "active"))

				Convey("Then only the matching document comes back", func() {
					So(err, ShouldBeNil)
					So(docs, ShouldHaveLength, 1)
					So(docs[0].Key, ShouldEqual, "P1")
					So(docs[0].Fields["performanceID"], ShouldEqual, "P1")
				})
			})

			Convey("When finding with an In filter", func() {
				docs, err := s.Find(ctx, "performances", docstore.In("performanceID", "P3", "P1", "nope"))

				Convey("Then matches come back ordered by key", func() {
					So(err, ShouldBeNil)
					So(docs, ShouldHaveLength, 2)
					So(docs[0].Key, ShouldEqual, "P1")
					So(docs[1].Key, ShouldEqual, "P3")
				})
			})

			Convey("When an In filter exceeds the ceiling", func() {
				_, err := s.Find(ctx, "performances", docstore.In("performanceID", "a", "b", "c", "d"))

				Convey("Then the query is refused", func() {
					So(errors.Is(err, docstore.ErrTooManyValues), ShouldBeTrue)
				})
			})

			Convey("When an In filter is empty", func() {
				docs, err := s.Find(ctx, "performances", docstore.In("performanceID"))

				Convey("Then nothing matches", func() {
					So(err, ShouldBeNil)
					So(docs, ShouldBeEmpty)
				})
			})

			Convey("When querying an unknown collection", func() {
				docs, err := s.Find(ctx, "nothing")

				Convey("Then the result is empty", func() {
					So(err, ShouldBeNil)
					So(docs, ShouldBeEmpty)
				})
			})

			Convey("When patching by key with a server timestamp", func() {
				n, err := s.Update(ctx, "performances", docstore.Eq("performanceID", "P1"), docstore.Patch{
					"status":    "inactive",
					"updatedAt": docstore.ServerTimestamp,
				})

				Convey("Then the match is counted and the fields are set", func() {
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 1)

					docs, err := s.Find(ctx, "performances", docstore.Eq("performanceID", "P1"))
					So(err, ShouldBeNil)
					So(docs, ShouldHaveLength, 1)
					So(docs[0].Fields["status"], ShouldEqual, "inactive")
					So(docs[0].Fields["updatedAt"], ShouldNotBeNil)
					So(docs[0].Fields["ownerID"], ShouldEqual, "u1")
				})
			})

			Convey("When patching a key nobody has", func() {
				n, err := s.Update(ctx, "performances", docstore.Eq("performanceID", "P9"), docstore.Patch{"status": "inactive"})

				Convey("Then zero matches are reported without error", func() {
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 0)
				})
			})

			Convey("When deleting by owner", func() {
				n, err := s.Delete(ctx, "performances", docstore.Eq("ownerID", "u1"))

				Convey("Then the matches are gone and their keys are free again", func() {
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 2)

					docs, err := s.Find(ctx, "performances")
					So(err, ShouldBeNil)
					So(docs, ShouldHaveLength, 1)
					So(docs[0].Key, ShouldEqual, "P3")

					_, err = s.Insert(ctx, "performances", "P1", map[string]any{"performanceID": "P1"})
					So(err, ShouldBeNil)
				})
			})

			Convey("When deleting a key nobody has", func() {
				n, err := s.Delete(ctx, "performances", docstore.Eq("performanceID", "P9"))

				Convey("Then nothing is removed", func() {
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 0)
				})
			})

			Convey("When the store is closed", func() {
				So(s.Close(), ShouldBeNil)
				_, err := s.Find(ctx, "performances")

				Convey("Then later calls fail", func() {
					So(errors.Is(err, docstore.ErrClosed), ShouldBeTrue)
				})
			})
		})
	}
}

func TestMemoryIsolation(t *testing.T) {
	Convey("Given a memory store", t, func() {
		ctx := context.Background()
		s := docstore.NewMemory()
		fields := map[string]any{"bandID": "B1", "members": []string{"x"}}
		_, err := s.Insert(ctx, "bands", "B1", fields)
		So(err, ShouldBeNil)

		Convey("When the caller mutates its maps afterwards", func() {
			fields["bandID"] = "changed"
			fields["members"].([]string)[0] = "y"
			docs, err := s.Find(ctx, "bands")
			So(err, ShouldBeNil)
			docs[0].Fields["bandID"] = "again"

			Convey("Then stored documents are unaffected", func() {
				again, err := s.Find(ctx, "bands")
				So(err, ShouldBeNil)
				So(again[0].Fields["bandID"], ShouldEqual, "B1")
				So(again[0].Fields["members"], ShouldResemble, []string{"x"})
			})
		})

		Convey("When the server timestamp is applied", func() {
			_, err := s.Update(ctx, "bands", docstore.Eq("bandID", "B1"), docstore.Patch{"updatedAt": docstore.ServerTimestamp})
			So(err, ShouldBeNil)
			docs, _ := s.Find(ctx, "bands")

			Convey("Then it is a time value", func() {
				_, ok := docs[0].Fields["updatedAt"].(time.Time)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When a filter is malformed", func() {
			_, err := s.Find(ctx, "bands", docstore.Filter{Field: "", Op: docstore.OpEq, Values: []string{"x"}})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, docstore.ErrInvalidFilter), ShouldBeTrue)
			})
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given the driver factory", t, func() {
		ctx := context.Background()

		Convey("Memory is the default", func() {
			s, err := docstore.Open(ctx, "", "", "")
			So(err, ShouldBeNil)
			_, ok := s.(*docstore.Memory)
			So(ok, ShouldBeTrue)
		})

		Convey("Unknown drivers are rejected", func() {
			_, err := docstore.Open(ctx, "cassandra", "", "")
			So(err, ShouldNotBeNil)
		})
	})
}
