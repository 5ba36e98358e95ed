package scoring_test

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/xcheck/internal/domain/contest"
	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var bands = []model.Band{"80m", "40m"}

func contact(band model.Band, county string) model.ContactRecord {
	return model.ContactRecord{Band: band, Rcvd: model.Exchange{County: county}}
}

func TestAggregate(t *testing.T) {
	Convey("Given validated contacts on two bands", t, func() {
		contacts := []model.ContactRecord{
			contact("80m", "HA"),
			contact("80m", "HA"),
			contact("80m", "VI"),
			contact("40m", "HA"),
			contact("40m", "UU"),
		}
		outcomes := []model.Outcome{
			model.Confirmed(1),
			model.Confirmed(2),
			model.Partialf(model.ReasonSerialMismatch, 3, "serial").WithMult(true),
			model.Partialf(model.ReasonCountyMismatch, 1, "county"),
			model.Invalidf(model.ReasonNoLog, "Log not received from OH1AA"),
		}

		Convey("When using the per-band formula", func() {
			sum := scoring.New(bands, contest.FormulaPerBand).Aggregate(contacts, outcomes)

			Convey("Then per-band tallies follow the outcomes", func() {
				So(sum.Band("80m"), ShouldResemble, scoring.BandTally{Band: "80m", QSO: 3, Points: 5, Mult: 2})
				So(sum.Band("40m"), ShouldResemble, scoring.BandTally{Band: "40m", QSO: 1, Points: 1, Mult: 0})
				So(sum.Points, ShouldEqual, 6)
				So(sum.Mult, ShouldEqual, 2)
				So(sum.Score, ShouldEqual, 10)
			})
		})

		Convey("When using the combined formula", func() {
			sum := scoring.New(bands, contest.FormulaCombined).Aggregate(contacts, outcomes)
			So(sum.Score, ShouldEqual, 12)
		})

		Convey("When computing the claimed summary", func() {
			sum := scoring.New(bands, "").Claimed(contacts)

			Convey("Then every contact counts at full value", func() {
				So(sum.Band("80m"), ShouldResemble, scoring.BandTally{Band: "80m", QSO: 3, Points: 6, Mult: 2})
				So(sum.Band("40m"), ShouldResemble, scoring.BandTally{Band: "40m", QSO: 2, Points: 4, Mult: 2})
				So(sum.Score, ShouldEqual, 6*2+4*2)
			})
		})

		Convey("When a band is not in the plan", func() {
			sum := scoring.New([]model.Band{"80m"}, "").Aggregate(contacts, outcomes)
			So(len(sum.Bands), ShouldEqual, 1)
			So(sum.Band("40m"), ShouldResemble, scoring.BandTally{Band: "40m"})
		})
	})
}

func TestMultiplierInvariance(t *testing.T) {
	Convey("Given confirmed contacts with repeated counties", t, func() {
		contacts := []model.ContactRecord{
			contact("80m", "HA"), contact("80m", "VI"), contact("80m", "HA"),
			contact("40m", "UU"), contact("80m", "HM"), contact("40m", "UU"),
		}
		outcomes := make([]model.Outcome, len(contacts))
		for i := range outcomes {
			outcomes[i] = model.Confirmed(i + 1)
		}
		agg := scoring.New(bands, "")
		base := agg.Aggregate(contacts, outcomes)

		Convey("Then reordering does not change multipliers", func() {
			rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic shuffle
			for round := 0; round < 20; round++ {
				perm := rng.Perm(len(contacts))
				shuffled := make([]model.ContactRecord, len(contacts))
				for i, p := range perm {
					shuffled[i] = contacts[p]
				}
				got := agg.Aggregate(shuffled, outcomes)
				So(cmp.Diff(base, got), ShouldBeEmpty)
			}
		})

		Convey("Then duplicating a county on the same band only adds points", func() {
			dup := append(append([]model.ContactRecord(nil), contacts...), contact("80m", "VI"))
			got := agg.Aggregate(dup, append(outcomes, model.Confirmed(99)))
			So(got.Band("80m").Mult, ShouldEqual, base.Band("80m").Mult)
			So(got.Band("80m").Points, ShouldEqual, base.Band("80m").Points+2)
		})

		Convey("Then the base summary is as expected", func() {
			So(base.Band("80m").Mult, ShouldEqual, 3)
			So(base.Band("40m").Mult, ShouldEqual, 1)
		})
	})
}

func TestTwoParticipantExample(t *testing.T) {
	Convey("Given one confirmed 80m contact", t, func() {
		sum := scoring.New(bands, "").Aggregate(
			[]model.ContactRecord{contact("80m", "HA")},
			[]model.Outcome{model.Confirmed(1)},
		)

		Convey("Then the score is 2 points times 1 multiplier", func() {
			So(sum.Band("80m"), ShouldResemble, scoring.BandTally{Band: "80m", QSO: 1, Points: 2, Mult: 1})
			So(sum.Score, ShouldEqual, 2)
		})
	})
}
