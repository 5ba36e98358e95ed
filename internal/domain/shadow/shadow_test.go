package shadow_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/internal/domain/shadow"
	. "github.com/smartystreets/goconvey/convey"
)

type fullPromoter struct{}

func (fullPromoter) ShadowOutcome(rec *model.ContactRecord) model.Outcome {
	return model.Outcome{Status: model.Full, Reason: model.ReasonShadowStation, Mult: true}
}

func corroborate(t *shadow.Tally, n int) {
	for i := 0; i < n; i++ {
		t.Add(context.Background(), fmt.Sprintf("ES%dAA", i), "OH1AA", "80m")
	}
}

func TestResolveThreshold(t *testing.T) {
	Convey("Given a shadow candidate", t, func() {
		tally := shadow.NewTally()

		Convey("When 9 distinct participants logged it", func() {
			corroborate(tally, 9)

			Convey("Then it is not promoted at threshold 10", func() {
				So(tally.Count("OH1AA", "80m"), ShouldEqual, 9)
				So(tally.Resolve(10).Contains("OH1AA", "80m"), ShouldBeFalse)
			})
		})

		Convey("When 10 distinct participants logged it", func() {
			corroborate(tally, 10)

			Convey("Then it is promoted at threshold 10", func() {
				set := tally.Resolve(10)
				So(set.Contains("OH1AA", "80m"), ShouldBeTrue)
				So(set.Contains("OH1AA", "40m"), ShouldBeFalse)
				So(set.Candidates(), ShouldResemble, []shadow.Candidate{{Call: "OH1AA", Band: "80m"}})
			})
		})

		Convey("When the same participant logs it repeatedly", func() {
			for i := 0; i < 12; i++ {
				tally.Add(context.Background(), "LY2EN", "OH1AA", "80m")
			}

			Convey("Then it counts once", func() {
				So(tally.Count("OH1AA", "80m"), ShouldEqual, 1)
				So(tally.Len(), ShouldEqual, 1)
			})
		})

		Convey("When bands differ", func() {
			corroborate(tally, 6)
			for i := 0; i < 6; i++ {
				tally.Add(context.Background(), fmt.Sprintf("ES%dAA", i), "OH1AA", "40m")
			}

			Convey("Then each band is tallied on its own", func() {
				So(tally.Resolve(10), ShouldBeEmpty)
				So(tally.Resolve(6), ShouldHaveLength, 2)
			})
		})
	})
}

func TestTallyConcurrent(t *testing.T) {
	Convey("Given participants reporting from many goroutines", t, func() {
		tally := shadow.NewTally()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 3; j++ {
					tally.Add(context.Background(), fmt.Sprintf("P%d", i), "OH1AA", "80m")
				}
			}(i)
		}
		wg.Wait()
		So(tally.Count("OH1AA", "80m"), ShouldEqual, 20)
	})
}

func TestRescore(t *testing.T) {
	Convey("Given a log with pending and decided contacts", t, func() {
		log := &model.ParticipantLog{Call: "LY2EN", Contacts: []model.ContactRecord{
			{Seq: 1, Worked: "OH1AA", Band: "80m"},
			{Seq: 2, Worked: "OH1AA", Band: "40m"},
			{Seq: 3, Worked: "ES5TV", Band: "80m"},
			{Seq: 4, Worked: "OH1AA", Band: "80m"},
		}}
		outcomes := []model.Outcome{
			model.Invalidf(model.ReasonNoLog, "Log not received from OH1AA"),
			model.Invalidf(model.ReasonNoLog, "Log not received from OH1AA"),
			model.Confirmed(1),
			model.Invalidf(model.ReasonOutsidePeriod, "late"),
		}
		set := shadow.Set{{Call: "OH1AA", Band: "80m"}: 10}

		n := shadow.Rescore(log, outcomes, set, fullPromoter{})

		Convey("Then only pending contacts with promoted stations change", func() {
			So(n, ShouldEqual, 1)
			So(outcomes[0].Status, ShouldEqual, model.Full)
			So(outcomes[0].Reason, ShouldEqual, model.ReasonShadowStation)
			So(outcomes[1].Reason, ShouldEqual, model.ReasonNoLog)
			So(outcomes[2].Reason, ShouldEqual, model.ReasonOK)
			So(outcomes[3].Reason, ShouldEqual, model.ReasonOutsidePeriod)
		})
	})
}
