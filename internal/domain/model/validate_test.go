package model_test

import (
	"errors"
	"testing"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	Convey("Given a complete performance", t, func() {
		p := model.Performance{
			PerformanceID: "P1",
			OwnerID:       "u1",
			Name:          "Friday",
			Date:          "2024-06-01",
			Status:        model.StatusActive,
		}

		Convey("Then it validates", func() {
			So(model.Validate(p), ShouldBeNil)
		})

		Convey("When required fields are missing and the status is unknown", func() {
			p.OwnerID = ""
			p.Status = "archived"
			err := model.Validate(p)

			Convey("Then violations are reported by wire name", func() {
				So(errors.Is(err, types.ErrValidation), ShouldBeTrue)
				var verr *types.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Fields, ShouldContainKey, "ownerID")
				So(verr.Fields, ShouldContainKey, "status")
				So(verr.Fields["ownerID"], ShouldEqual, "is required")
			})
		})
	})

	Convey("Given a user with a malformed email", t, func() {
		u := model.User{UserID: "U1", Email: "not-an-email", DisplayName: "Ann"}

		Convey("Then the email field is flagged", func() {
			var verr *types.ValidationError
			So(errors.As(model.Validate(u), &verr), ShouldBeTrue)
			So(verr.Fields["email"], ShouldEqual, "must be an email address")
		})
	})
}
