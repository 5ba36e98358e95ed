package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"edition": "2022"}),
			)

			Convey("Then collectors are registered under the namespace", func() {
				m.logsParsed.WithLabelValues("CW").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_logs_parsed_total"], ShouldBeTrue)
			})
		})

		Convey("When registering the same names twice", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then promauto panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording parse activity", func() {
			before := testutil.ToFloat64(globalManager.parseFailures.WithLabelValues("band"))
			RecordParseFailure("band")
			RecordParseFailure("band")
			RecordLogParsed("CW")
			RecordDuplicateLog()

			Convey("Then counters advance", func() {
				So(testutil.ToFloat64(globalManager.parseFailures.WithLabelValues("band")), ShouldEqual, before+2)
			})
		})

		Convey("When recording cross-check activity", func() {
			before := testutil.ToFloat64(globalManager.shadowPromotions.WithLabelValues("PH"))
			RecordContactValidated("FULL", "ok")
			RecordShadowPromotions("PH", 3)
			RecordValidationLatency(2.5)
			RecordRunDuration("PH", 0.2)
			UpdateParticipants("PH", 12)

			Convey("Then values are visible", func() {
				So(testutil.ToFloat64(globalManager.shadowPromotions.WithLabelValues("PH")), ShouldEqual, before+3)
				So(testutil.ToFloat64(globalManager.participants.WithLabelValues("PH")), ShouldEqual, 12)
			})
		})

		Convey("When recording infrastructure activity", func() {
			So(func() {
				UpdateQueueSize(3)
				UpdateQueueCapacity(10)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				RecordWorkerProcessingLatency(1)
				RecordWorkerError()
				UpdateStandingsRecords("CW", 7)
				RecordRepositoryUpdateLatency(0)
				RecordRepositoryQueryLatency(0)
				RecordDBWriteLatency(12)
				RecordDBRowsWritten("contacts", 40)
				RecordHTTPRequest("/standings", "GET", "200")
				RecordHTTPRequestDuration("/standings", "GET", "200", 1.5)
				RecordErrorByComponent("queue", "closed")
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 10)
			So(testutil.ToFloat64(globalManager.standingsRecords.WithLabelValues("CW")), ShouldEqual, 7)
		})

		Convey("Then the custom registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
