package model_test

import (
	"testing"

	model "github.com/okian/xcheck/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseMode(t *testing.T) {
	convey.Convey("Given Cabrillo mode tokens", t, func() {
		convey.Convey("Then phone aliases collapse to PH", func() {
			for _, s := range []string{"PH", "ssb", " USB ", "lsb", "FM", "AM"} {
				m, ok := model.ParseMode(s)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(m, convey.ShouldEqual, model.ModePH)
			}
		})

		convey.Convey("Then CW is recognized", func() {
			m, ok := model.ParseMode("cw")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(m, convey.ShouldEqual, model.ModeCW)
		})

		convey.Convey("Then other tokens are refused", func() {
			for _, s := range []string{"", "RTTY", "DIGI"} {
				_, ok := model.ParseMode(s)
				convey.So(ok, convey.ShouldBeFalse)
			}
		})
	})
}

func TestOutcome(t *testing.T) {
	convey.Convey("Given outcomes of each status", t, func() {
		full := model.Confirmed(3)
		partial := model.Partialf(model.ReasonSerialMismatch, 4, "serial %03d", 7)
		invalid := model.Invalidf(model.ReasonNoLog, "Log not received from %s", "OH1AA")

		convey.Convey("Then points follow the status", func() {
			convey.So(full.Points(), convey.ShouldEqual, 2)
			convey.So(partial.Points(), convey.ShouldEqual, 1)
			convey.So(invalid.Points(), convey.ShouldEqual, 0)
		})

		convey.Convey("Then details are formatted", func() {
			convey.So(partial.Detail, convey.ShouldEqual, "serial 007")
			convey.So(partial.Counterpart, convey.ShouldEqual, 4)
			convey.So(invalid.Detail, convey.ShouldEqual, "Log not received from OH1AA")
		})

		convey.Convey("Then only a missing log awaits shadow resolution", func() {
			convey.So(invalid.AwaitingShadow(), convey.ShouldBeTrue)
			convey.So(model.Invalidf(model.ReasonNotInLog, "").AwaitingShadow(), convey.ShouldBeFalse)
			convey.So(partial.AwaitingShadow(), convey.ShouldBeFalse)
		})

		convey.Convey("Then WithMult returns a copy", func() {
			noMult := full.WithMult(false)
			convey.So(noMult.Mult, convey.ShouldBeFalse)
			convey.So(full.Mult, convey.ShouldBeTrue)
		})

		convey.Convey("Then statuses render as report tokens", func() {
			convey.So(model.Full.String(), convey.ShouldEqual, "FULL")
			convey.So(model.Partial.String(), convey.ShouldEqual, "PARTIAL")
			convey.So(model.Invalid.String(), convey.ShouldEqual, "INVALID")
		})
	})
}

func TestChecklogFlag(t *testing.T) {
	convey.Convey("Given participant logs", t, func() {
		convey.So((&model.ParticipantLog{Checklog: true}).ChecklogFlag(), convey.ShouldEqual, "Y")
		convey.So((&model.ParticipantLog{}).ChecklogFlag(), convey.ShouldEqual, "N")
	})
}
