package docstore

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoTranslation(t *testing.T) {
	Convey("Given filters", t, func() {
		f := mongoFilter([]Filter{Eq("ownerID", "u1"), In("status", "active", "previous")})

		Convey("Then Eq becomes a literal and In becomes $in", func() {
			So(f["ownerID"], ShouldEqual, "u1")
			So(f["status"], ShouldResemble, bson.M{"$in": []string{"active", "previous"}})
		})
	})

	Convey("Given a patch with a server timestamp", t, func() {
		set, current := splitPatch(Patch{"status": "inactive", "updatedAt": ServerTimestamp})

		Convey("Then the timestamp goes to $currentDate", func() {
			So(set, ShouldResemble, bson.M{"status": "inactive"})
			So(current, ShouldResemble, bson.M{"updatedAt": true})
		})
	})

	Convey("Given a raw mongo document", t, func() {
		at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		d := fromBSON(bson.M{
			"_id":       "id-1",
			keyField:    "P1",
			"updatedAt": primitive.NewDateTimeFromTime(at),
			"songs":     primitive.A{"one", "two"},
		})

		Convey("Then driver types are normalised", func() {
			So(d.ID, ShouldEqual, "id-1")
			So(d.Key, ShouldEqual, "P1")
			So(d.Fields["updatedAt"].(time.Time).Equal(at), ShouldBeTrue)
			So(d.Fields["songs"], ShouldResemble, []any{"one", "two"})
			_, hasKey := d.Fields[keyField]
			So(hasKey, ShouldBeFalse)
		})
	})
}
