package xref_test

import (
	"testing"

	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/internal/domain/xref"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(seq int, call string, band model.Band, worked string) model.ContactRecord {
	return model.ContactRecord{Seq: seq, Call: call, Band: band, Worked: worked}
}

func TestIndex(t *testing.T) {
	Convey("Given two participant logs", t, func() {
		logs := []model.ParticipantLog{
			{Call: "LY2EN", Contacts: []model.ContactRecord{
				rec(1, "LY2EN", "80m", "ES5TV"),
				rec(2, "LY2EN", "40m", "ES5TV"),
				rec(3, "LY2EN", "80m", "OH1AA"),
			}},
			{Call: "ES5TV", Contacts: []model.ContactRecord{
				rec(1, "ES5TV", "80m", "LY2EN"),
			}},
			{Call: "LY2EN", Contacts: []model.ContactRecord{
				rec(1, "LY2EN", "80m", "SM5AAA"),
			}},
		}
		idx := xref.Build(logs)

		Convey("Then records are grouped by call and band in log order", func() {
			got := idx.Lookup("LY2EN", "80m")
			So(len(got), ShouldEqual, 2)
			So(got[0].Seq, ShouldEqual, 1)
			So(got[1].Seq, ShouldEqual, 3)
			So(len(idx.Lookup("LY2EN", "40m")), ShouldEqual, 1)
		})

		Convey("Then the first log for a repeated call wins", func() {
			So(idx.Len(), ShouldEqual, 2)
			l, ok := idx.Log("LY2EN")
			So(ok, ShouldBeTrue)
			So(len(l.Contacts), ShouldEqual, 3)
		})

		Convey("Then unknown keys yield nothing", func() {
			So(idx.Lookup("ES5TV", "40m"), ShouldBeEmpty)
			So(idx.Lookup("OH1AA", "80m"), ShouldBeEmpty)
			So(idx.HasLog("OH1AA"), ShouldBeFalse)
			So(idx.HasLog("ES5TV"), ShouldBeTrue)
		})

		Convey("Then calls are listed sorted", func() {
			So(idx.Participants(), ShouldResemble, []string{"ES5TV", "LY2EN"})
		})
	})
}
