package engine_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/okian/xcheck/internal/domain/cabrillo"
	"github.com/okian/xcheck/internal/domain/contest"
	"github.com/okian/xcheck/internal/domain/county"
	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/internal/engine"
	"github.com/okian/xcheck/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var (
	cwStart = time.Date(2022, 1, 16, 6, 30, 0, 0, time.UTC)
	phStart = time.Date(2022, 1, 16, 9, 0, 0, 0, time.UTC)
)

const ly2en = `START-OF-LOG: 3.0
CALLSIGN: LY2EN
CATEGORY-POWER: LOW
QSO:  3525 CW 2022-01-16 0640 LY2EN         599 001 VI ES5TV         599 001 HA
END-OF-LOG:
`

const es5tv = `START-OF-LOG: 3.0
CALLSIGN: ES5TV
CLAIMED-SCORE: 4
QSO:  3525 CW 2022-01-16 0645 ES5TV         599 001 HA LY2EN         599 001 VI
END-OF-LOG:
`

func parse(texts ...string) []model.ParticipantLog {
	rules := contest.NRAUBaltic(cwStart, phStart)
	p := cabrillo.New(&rules, cabrillo.WithMode(model.ModeCW))
	out := make([]model.ParticipantLog, 0, len(texts))
	for i, text := range texts {
		l, err := p.Parse(context.Background(), strings.NewReader(text), fmt.Sprintf("log%d.txt", i))
		So(err, ShouldBeNil)
		out = append(out, l)
	}
	return out
}

func newEngine(opts ...engine.Option) *engine.Engine {
	e, err := engine.New(contest.NRAUBaltic(cwStart, phStart), append([]engine.Option{engine.WithWorkers(4)}, opts...)...)
	So(err, ShouldBeNil)
	return e
}

// shadowLogs builds n participants that each worked call once on 80m.
func shadowLogs(n int, call, rcvdCounty string) []model.ParticipantLog {
	logs := make([]model.ParticipantLog, n)
	for i := range logs {
		me := fmt.Sprintf("LY%dA", i)
		logs[i] = model.ParticipantLog{
			Call: me, Mode: model.ModeCW, Power: model.PowerHigh,
			Contacts: []model.ContactRecord{{
				Seq: 1, Line: 1, FreqKHz: 3530, Band: "80m", Mode: model.ModeCW,
				Time: cwStart.Add(time.Duration(10+i) * time.Minute), Call: me, Worked: call,
				Sent: model.Exchange{Report: "599", Serial: 1, County: "VI"},
				Rcvd: model.Exchange{Report: "599", Serial: i + 1, County: rcvdCounty},
			}},
		}
	}
	return logs
}

func TestEndToEnd(t *testing.T) {
	Convey("Given two participants that worked each other on 80m CW 5 minutes apart", t, func() {
		logs := parse(ly2en, es5tv)
		e := newEngine()

		run, err := e.Run(context.Background(), model.ModeCW, logs)
		So(err, ShouldBeNil)
		So(run.ID, ShouldNotBeEmpty)
		So(run.Mode, ShouldEqual, model.ModeCW)
		So(len(run.Results), ShouldEqual, 2)

		Convey("Then each side scores 2 points, 1 QSO, 1 multiplier and score 2", func() {
			for _, call := range []string{"ES5TV", "LY2EN"} {
				r, ok := run.Result(call)
				So(ok, ShouldBeTrue)
				So(r.Outcomes[0].Status, ShouldEqual, model.Full)
				band := r.Final.Band("80m")
				So(band.QSO, ShouldEqual, 1)
				So(band.Points, ShouldEqual, 2)
				So(band.Mult, ShouldEqual, 1)
				So(r.Final.Score, ShouldEqual, 2)
			}
		})

		Convey("Then the claimed score comes from the header when present", func() {
			r, _ := run.Result("ES5TV")
			So(r.ClaimedScore, ShouldEqual, 4)
			r, _ = run.Result("LY2EN")
			So(r.ClaimedScore, ShouldEqual, 2)
		})

		Convey("Then no pass job failed", func() {
			So(run.FailedJobs, ShouldEqual, 0)
			for _, r := range run.Results {
				So(r.Err, ShouldBeNil)
			}
		})

		Convey("Then results are ordered by call and ranked by score", func() {
			So(run.Results[0].Call(), ShouldEqual, "ES5TV")
			ranked := run.Ranked()
			So(len(ranked), ShouldEqual, 2)
			So(ranked[0].Call(), ShouldEqual, "ES5TV")
		})
	})
}

func TestExplicitZeroClaimedScore(t *testing.T) {
	Convey("Given a log that claims a score of zero", t, func() {
		zero := strings.Replace(es5tv, "CLAIMED-SCORE: 4", "CLAIMED-SCORE: 0", 1)
		run, err := newEngine().Run(context.Background(), model.ModeCW, parse(ly2en, zero))
		So(err, ShouldBeNil)

		Convey("Then the header value is kept instead of the recomputed claim", func() {
			r, ok := run.Result("ES5TV")
			So(ok, ShouldBeTrue)
			So(r.Claimed.Score, ShouldEqual, 2)
			So(r.ClaimedScore, ShouldEqual, 0)
		})
	})
}

func TestChecklogAndDuplicates(t *testing.T) {
	Convey("Given a checklog and a repeated call", t, func() {
		logs := parse(ly2en, es5tv, ly2en)
		logs[1].Checklog = true
		e := newEngine()

		run, err := e.Run(context.Background(), model.ModeCW, logs)
		So(err, ShouldBeNil)

		Convey("Then the repeated log is ignored", func() {
			So(len(run.Results), ShouldEqual, 2)
			So(run.Duplicates, ShouldResemble, []string{"LY2EN"})
		})

		Convey("Then the checklog confirms contacts but is not ranked", func() {
			r, _ := run.Result("LY2EN")
			So(r.Final.Score, ShouldEqual, 2)
			ranked := run.Ranked()
			So(len(ranked), ShouldEqual, 1)
			So(ranked[0].Call(), ShouldEqual, "LY2EN")
		})
	})
}

func TestShadowThroughEngine(t *testing.T) {
	Convey("Given participants working a station that sent no log", t, func() {
		e := newEngine()
		ctx := context.Background()

		Convey("When 9 distinct participants logged it", func() {
			run, err := e.Run(ctx, model.ModeCW, shadowLogs(9, "OH0X", "AL"))
			So(err, ShouldBeNil)

			Convey("Then the contacts stay INVALID no_log", func() {
				So(len(run.Shadows), ShouldEqual, 0)
				for _, r := range run.Results {
					So(r.Outcomes[0].Status, ShouldEqual, model.Invalid)
					So(r.Outcomes[0].Reason, ShouldEqual, model.ReasonNoLog)
					So(r.Final.Score, ShouldEqual, 0)
				}
			})
		})

		Convey("When 10 distinct participants logged it", func() {
			run, err := e.Run(ctx, model.ModeCW, shadowLogs(10, "OH0X", "AL"))
			So(err, ShouldBeNil)

			Convey("Then it is promoted and every contact is FULL", func() {
				So(run.Shadows.Contains("OH0X", "80m"), ShouldBeTrue)
				for _, r := range run.Results {
					So(r.Outcomes[0].Status, ShouldEqual, model.Full)
					So(r.Outcomes[0].Reason, ShouldEqual, model.ReasonShadowStation)
					So(r.Promoted, ShouldEqual, 1)
					So(r.Final.Score, ShouldEqual, 2)
				}
			})
		})

		Convey("When the shadow station sent a county the table does not know", func() {
			e := newEngine(engine.WithCounties(county.New(map[string]string{"VI": "Vilnius"})))
			run, err := e.Run(ctx, model.ModeCW, shadowLogs(10, "OH0X", "ZZ"))
			So(err, ShouldBeNil)

			Convey("Then the promoted contacts are INVALID unknown_county", func() {
				for _, r := range run.Results {
					So(r.Outcomes[0].Reason, ShouldEqual, model.ReasonUnknownCounty)
				}
			})
		})
	})
}

func TestEngineErrors(t *testing.T) {
	Convey("Given invalid rules", t, func() {
		rules := contest.NRAUBaltic(cwStart, phStart)
		rules.ShadowThreshold = 0
		_, err := engine.New(rules)
		So(errors.Is(err, contest.ErrInvalidRules), ShouldBeTrue)
	})

	Convey("Given a mode without a period", t, func() {
		rules := contest.NRAUBaltic(cwStart, phStart)
		delete(rules.Periods, model.ModePH)
		delete(rules.SubBands, model.ModePH)
		e, err := engine.New(rules)
		So(err, ShouldBeNil)
		_, err = e.Run(context.Background(), model.ModePH, nil)
		So(errors.Is(err, engine.ErrUnknownMode), ShouldBeTrue)
	})

	Convey("Given a cancelled context", t, func() {
		e := newEngine()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := e.Run(ctx, model.ModeCW, shadowLogs(3, "OH0X", "AL"))
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})

	Convey("Given no logs", t, func() {
		run, err := newEngine().Run(context.Background(), model.ModeCW, nil)
		So(err, ShouldBeNil)
		So(run.Results, ShouldBeEmpty)
	})
}
