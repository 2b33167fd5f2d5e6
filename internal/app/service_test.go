package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	service "github.com/Allen-Young-Org/gybscript-sub001/internal/app"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/types"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/session"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
	goleak.VerifyTestMain(m)
}

// newStarted returns a started service with a signed-in user.
func newStarted(t *testing.T, opts ...service.Option) (*service.Service, session.Session) {
	t.Helper()
	ctx := context.Background()
	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Register(ctx, model.RegisterInput{Email: "ann@example.com", DisplayName: "Ann", AccessCode: "EARLY"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	sess, err := svc.SignIn(ctx, model.SignInInput{Email: "ann@example.com"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return svc, sess
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["chunkSize"], ShouldEqual, 10)
			So(stats["resolvePolicy"], ShouldEqual, "fail_fast")
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithSessionTTL(time.Hour))
		ctx := context.Background()

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it should be marked as started", func() {
				So(svc.GetStats()["started"], ShouldEqual, true)
				So(svc.GetStats()["sessionTTL"], ShouldEqual, "1h0m0s")
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
				svc.Stop()
			})
		})
	})
}

func TestService_Registration(t *testing.T) {
	Convey("Given a service gated by access codes", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithAccessCodes([]string{"EARLY", "VIP"}))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When registering with a valid code", func() {
			u, err := svc.Register(ctx, model.RegisterInput{Email: "Bo@Example.com", DisplayName: "Bo", AccessCode: "VIP"})

			Convey("Then the account is created with a normalised email", func() {
				So(err, ShouldBeNil)
				So(u.UserID, ShouldNotBeEmpty)
				So(u.Email, ShouldEqual, "bo@example.com")
				So(u.AccessCode, ShouldBeEmpty)
			})

			Convey("And registering the same email again is a conflict", func() {
				_, err := svc.Register(ctx, model.RegisterInput{Email: "bo@example.com", DisplayName: "Bo2", AccessCode: "EARLY"})
				So(errors.Is(err, types.ErrConflict), ShouldBeTrue)
			})
		})

		Convey("When the access code is wrong", func() {
			_, err := svc.Register(ctx, model.RegisterInput{Email: "cy@example.com", DisplayName: "Cy", AccessCode: "nope"})

			Convey("Then access is denied", func() {
				So(errors.Is(err, types.ErrAccessDenied), ShouldBeTrue)
			})
		})

		Convey("When the input is malformed", func() {
			_, err := svc.Register(ctx, model.RegisterInput{Email: "not-an-email"})

			Convey("Then every bad field is reported", func() {
				var verr *types.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Fields, ShouldContainKey, "email")
				So(verr.Fields, ShouldContainKey, "displayName")
			})
		})
	})
}

func TestService_Sessions(t *testing.T) {
	Convey("Given a signed-in user", t, func() {
		ctx := context.Background()
		svc, sess := newStarted(t)
		defer svc.Stop()

		Convey("Then the token authenticates", func() {
			got, err := svc.Authenticate(ctx, sess.Token)
			So(err, ShouldBeNil)
			So(got.UserID, ShouldEqual, sess.UserID)
			So(got.DisplayName, ShouldEqual, "Ann")
		})

		Convey("When signing out", func() {
			So(svc.SignOut(ctx, sess.Token), ShouldBeNil)

			Convey("Then the token no longer authenticates", func() {
				_, err := svc.Authenticate(ctx, sess.Token)
				So(errors.Is(err, types.ErrUnauthorized), ShouldBeTrue)
			})

			Convey("And signing out again is harmless", func() {
				So(svc.SignOut(ctx, sess.Token), ShouldBeNil)
			})
		})

		Convey("When an unknown email signs in", func() {
			_, err := svc.SignIn(ctx, model.SignInInput{Email: "ghost@example.com"})

			Convey("Then it is unauthorized", func() {
				So(errors.Is(err, types.ErrUnauthorized), ShouldBeTrue)
			})
		})

		Convey("When no token is presented", func() {
			_, err := svc.Authenticate(ctx, "")
			So(errors.Is(err, types.ErrUnauthorized), ShouldBeTrue)
		})
	})

	Convey("Given a session that outlives its TTL", t, func() {
		ctx := context.Background()
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		svc, sess := newStarted(t, service.WithClock(func() time.Time { return now }), service.WithSessionTTL(time.Minute))
		defer svc.Stop()
		now = now.Add(2 * time.Minute)

		Convey("Then it no longer authenticates", func() {
			_, err := svc.Authenticate(ctx, sess.Token)
			So(errors.Is(err, types.ErrUnauthorized), ShouldBeTrue)
		})
	})
}

func TestService_Catalog(t *testing.T) {
	Convey("Given two users", t, func() {
		ctx := context.Background()
		svc, ann := newStarted(t)
		defer svc.Stop()
		_, err := svc.Register(ctx, model.RegisterInput{Email: "bo@example.com", DisplayName: "Bo"})
		So(err, ShouldBeNil)
		bo, err := svc.SignIn(ctx, model.SignInInput{Email: "bo@example.com"})
		So(err, ShouldBeNil)

		band, err := svc.CreateBand(ctx, ann, model.BandInput{Name: "The Keys", Genre: "rock", Members: []string{"ann"}})
		So(err, ShouldBeNil)

		Convey("Then the owner sees the band", func() {
			got, err := svc.GetBand(ctx, ann, band.BandID)
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "The Keys")

			list, err := svc.ListBands(ctx, ann)
			So(err, ShouldBeNil)
			So(list, ShouldHaveLength, 1)
		})

		Convey("Then another user does not", func() {
			_, err := svc.GetBand(ctx, bo, band.BandID)
			So(errors.Is(err, types.ErrNotFound), ShouldBeTrue)

			list, err := svc.ListBands(ctx, bo)
			So(err, ShouldBeNil)
			So(list, ShouldBeEmpty)
		})

		Convey("When creating a setlist and a venue", func() {
			sl, err := svc.CreateSetlist(ctx, ann, model.SetlistInput{Name: "Main", Songs: []string{"One", "Two"}})
			So(err, ShouldBeNil)
			v, err := svc.CreateVenue(ctx, model.VenueInput{Name: "Hall", City: "Austin", State: "TX"})
			So(err, ShouldBeNil)

			Convey("Then both can be fetched", func() {
				gotSL, err := svc.GetSetlist(ctx, ann, sl.SetListID)
				So(err, ShouldBeNil)
				So(gotSL.Songs, ShouldResemble, []string{"One", "Two"})

				gotV, err := svc.GetVenue(ctx, v.VenueID)
				So(err, ShouldBeNil)
				So(gotV.City, ShouldEqual, "Austin")

				venues, err := svc.ListVenues(ctx)
				So(err, ShouldBeNil)
				So(venues, ShouldHaveLength, 1)

				sls, err := svc.ListSetlists(ctx, bo)
				So(err, ShouldBeNil)
				So(sls, ShouldBeEmpty)
			})
		})

		Convey("When a band has no name", func() {
			_, err := svc.CreateBand(ctx, ann, model.BandInput{})

			Convey("Then it is a validation failure", func() {
				So(errors.Is(err, types.ErrValidation), ShouldBeTrue)
			})
		})
	})
}
