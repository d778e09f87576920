package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			scoreBucketsOpt := WithScoreBuckets([]float64{25, 50, 75, 100})
			metricsEnabledOpt := WithMetricsEnabled(true)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(scoreBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewMetricsManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewMetricsManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithScoreBuckets([]float64{25, 50, 75, 100}),
				WithMetricsEnabled(true),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When gathering from a fresh manager's registry", func() {
			registry := prometheus.NewRegistry()
			NewMetricsManager(WithPrometheusRegistry(registry))

			families, err := registry.Gather()

			Convey("Then the collectors should be registered", func() {
				So(err, ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, fam := range families {
					names[fam.GetName()] = true
				}
				So(names["steadihand_frames_ingested_total"], ShouldBeTrue)
				So(names["steadihand_queue_size"], ShouldBeTrue)
				So(names["steadihand_stability_score"], ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording frame metrics", func() {
			Convey("Then it should record ingested frames", func() {
				So(func() {
					RecordFrameIngested()
					RecordFrameIngested()
					RecordFrameIngested()
				}, ShouldNotPanic)
			})

			Convey("And it should record duplicate frames", func() {
				So(func() {
					RecordFrameDuplicate()
					RecordFrameDuplicate()
				}, ShouldNotPanic)
			})

			Convey("And it should record recorded frames", func() {
				So(func() {
					RecordFrameRecorded()
					RecordFrameRecorded()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording queue metrics", func() {
			Convey("Then it should record enqueue and dequeue", func() {
				So(func() {
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError("queue_full")
				}, ShouldNotPanic)
			})

			Convey("And it should update queue gauges", func() {
				So(func() {
					UpdateQueueSize(1000)
					UpdateQueueSize(500)
					UpdateQueueCapacity(100000)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording worker metrics", func() {
			So(func() {
				UpdateWorkerCount(8)
				RecordWorkerProcessingLatency(12.5)
				RecordWorkerError("record_failed")
			}, ShouldNotPanic)
		})

		Convey("When recording session metrics", func() {
			So(func() {
				RecordSessionCreated()
				RecordSessionCompleted()
				UpdateTotalSessions(42)
				RecordCalibrationFailure()
				RecordPipelineLatency(3.2)
				RecordStabilityScore(87.5)
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("/healthz", "GET", "200")
				RecordHTTPRequest("/frames", "POST", "202")
				RecordHTTPRequestDuration("/frames", "POST", "202", 4.2)
			}, ShouldNotPanic)
		})

		Convey("When recording error metrics", func() {
			So(func() {
				RecordErrorByEndpoint("/frames", "POST", "client_error")
				RecordErrorByType("server_error", "error")
				RecordErrorLatency("http", "client_error", 1.5)
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1024 * 1024)
				UpdateSystemGoroutineCount(32)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsDisabled(t *testing.T) {
	Convey("Given a disabled metrics manager", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewMetricsManager(
			WithMetricsEnabled(false),
			WithPrometheusRegistry(registry),
		)

		Convey("Then it should still build its collectors", func() {
			So(manager, ShouldNotBeNil)
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeNil)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the default manager", t, func() {
		Convey("When fetching the registry", func() {
			registry := GetRegistry()

			Convey("Then it should be non-nil and gatherable", func() {
				So(registry, ShouldNotBeNil)
				_, err := registry.Gather()
				So(err, ShouldBeNil)
			})
		})
	})
}
