package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When applying them to a manager", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pre"),
				WithHTTPBuckets([]float64{0.1, 0.5, 1.0}),
				WithAggregationBuckets([]float64{5, 50}),
				WithEnabled(true),
				WithConstLabels(map[string]string{"env": "test"}),
				WithRegistry(registry),
			)

			Convey("Then the manager carries the configuration", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.metricPrefix, ShouldEqual, "pre")
				So(manager.httpBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.aggregationBuckets, ShouldResemble, []float64{5, 50})
				So(manager.constLabels["env"], ShouldEqual, "test")
			})

			Convey("And metric names use namespace, subsystem and prefix", func() {
				manager.softDeletes.WithLabelValues("success").Inc()
				manager.aggregationDuration.Observe(7)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_namespace_test_subsystem_pre_soft_deletes_total"], ShouldBeTrue)
				So(names["test_namespace_test_subsystem_pre_aggregation_duration_milliseconds"], ShouldBeTrue)
			})
		})

		Convey("When passing empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHTTPBuckets(nil),
				WithAggregationBuckets(nil),
				WithRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "portal")
				So(manager.subsystem, ShouldEqual, "api")
				So(manager.httpBuckets, ShouldResemble, defaultHTTPBuckets)
				So(manager.aggregationBuckets, ShouldResemble, defaultAggregationBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording soft deletes", func() {
			before := testutil.ToFloat64(globalManager.softDeletes.WithLabelValues("not_found"))
			RecordSoftDelete("not_found")
			RecordSoftDelete("not_found")

			Convey("Then the outcome counter increases", func() {
				after := testutil.ToFloat64(globalManager.softDeletes.WithLabelValues("not_found"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording resolver activity", func() {
			beforeQ := testutil.ToFloat64(globalManager.referenceChunkQuery.WithLabelValues("band"))
			beforeM := testutil.ToFloat64(globalManager.referenceMisses.WithLabelValues("venue"))
			RecordChunkQuery("band")
			RecordLookupMisses("venue", 3)
			RecordLookupMisses("venue", 0)

			Convey("Then counters are labelled by entity", func() {
				So(testutil.ToFloat64(globalManager.referenceChunkQuery.WithLabelValues("band"))-beforeQ, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.referenceMisses.WithLabelValues("venue"))-beforeM, ShouldEqual, 3)
			})
		})

		Convey("When sessions open and close", func() {
			before := testutil.ToFloat64(globalManager.activeSessions)
			SessionOpened()
			SessionOpened()
			SessionClosed()

			Convey("Then the gauge tracks the difference", func() {
				So(testutil.ToFloat64(globalManager.activeSessions)-before, ShouldEqual, 1)
			})
		})

		Convey("When recording HTTP and system metrics", func() {
			So(func() {
				RecordHTTPRequest("performances", "GET", "200")
				RecordHTTPRequestDuration("performances", "GET", "200", 12.5)
				RecordErrorByEndpoint("performances", "DELETE", "not_found")
				RecordAggregation(3.2, 12)
				RecordAggregationFailure()
				RecordChunkFailure("setlist")
				RecordRegistration("accepted")
				RecordStoreError("find", "bands")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})

		Convey("When metrics are disabled", func() {
			prev := globalManager.enabled
			globalManager.enabled = false
			defer func() { globalManager.enabled = prev }()

			before := testutil.ToFloat64(globalManager.registrations.WithLabelValues("rejected"))
			RecordRegistration("rejected")

			Convey("Then recording is a no-op", func() {
				So(testutil.ToFloat64(globalManager.registrations.WithLabelValues("rejected")), ShouldEqual, before)
			})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordHTTPRequest("healthz", "GET", "200")
		families, err := GetRegistry().Gather()

		Convey("Then it exposes portal metrics only", func() {
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "portal_"), ShouldBeTrue)
			}
		})
	})
}
