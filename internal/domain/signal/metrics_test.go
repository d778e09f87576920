package signal_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/steadihand/steadihand/internal/domain/model"
	signal "github.com/steadihand/steadihand/internal/domain/signal"
)

func series(points ...[2]float64) []model.DisplacementPoint {
	out := make([]model.DisplacementPoint, len(points))
	for i, p := range points {
		out[i] = model.DisplacementPoint{T: p[0], D: p[1]}
	}
	return out
}

func TestExtractor_Tremor(t *testing.T) {
	Convey("Given a metric extractor", t, func() {
		extractor := signal.NewExtractor()

		Convey("When computing tremor for a short oscillation", func() {
			ds := model.DisplacementSet{
				model.Thumb: series([2]float64{0, 0.0}, [2]float64{1, 0.05}, [2]float64{2, 0.0}),
			}
			tremor := extractor.Tremor(ds)

			Convey("Then it should return the RMS of the displacement values", func() {
				// sqrt((0 + 0.0025 + 0) / 3)
				So(tremor[model.Thumb], ShouldAlmostEqual, 0.028868, 1e-5)
			})
		})

		Convey("When computing tremor for an empty series", func() {
			ds := model.DisplacementSet{
				model.Index: {},
			}
			tremor := extractor.Tremor(ds)

			Convey("Then the finger should be present with a zero value", func() {
				value, ok := tremor[model.Index]
				So(ok, ShouldBeTrue)
				So(value, ShouldEqual, 0.0)
			})
		})

		Convey("When computing tremor for a perfectly still hand", func() {
			ds := model.DisplacementSet{
				model.Thumb: series([2]float64{0, 0.0}, [2]float64{1, 0.0}, [2]float64{2, 0.0}),
			}
			tremor := extractor.Tremor(ds)

			Convey("Then the tremor should be zero", func() {
				So(tremor[model.Thumb], ShouldEqual, 0.0)
			})
		})
	})
}

func TestExtractor_Drift(t *testing.T) {
	Convey("Given a metric extractor", t, func() {
		extractor := signal.NewExtractor()

		Convey("When the hand returns to its starting displacement", func() {
			ds := model.DisplacementSet{
				model.Thumb: series([2]float64{0, 0.0}, [2]float64{1, 0.05}, [2]float64{2, 0.0}),
			}
			drift := extractor.Drift(ds)

			Convey("Then the drift should be zero", func() {
				So(drift[model.Thumb], ShouldEqual, 0.0)
			})
		})

		Convey("When the hand wanders outward over the recording", func() {
			ds := model.DisplacementSet{
				model.Index: series([2]float64{0, 0.01}, [2]float64{5, 0.02}, [2]float64{10, 0.04}),
			}
			drift := extractor.Drift(ds)

			Convey("Then the drift should be the signed last-minus-first change", func() {
				So(drift[model.Index], ShouldAlmostEqual, 0.03, 1e-12)
			})
		})

		Convey("When the hand settles back toward baseline", func() {
			ds := model.DisplacementSet{
				model.Index: series([2]float64{0, 0.04}, [2]float64{10, 0.01}),
			}
			drift := extractor.Drift(ds)

			Convey("Then the drift should be negative", func() {
				So(drift[model.Index], ShouldAlmostEqual, -0.03, 1e-12)
			})
		})

		Convey("When the series has fewer than two samples", func() {
			ds := model.DisplacementSet{
				model.Thumb:  series([2]float64{0, 0.02}),
				model.Middle: {},
			}
			drift := extractor.Drift(ds)

			Convey("Then both fingers should report zero drift", func() {
				So(drift[model.Thumb], ShouldEqual, 0.0)
				So(drift[model.Middle], ShouldEqual, 0.0)
			})
		})
	})
}

func TestExtractor_Fatigue(t *testing.T) {
	Convey("Given a metric extractor with default windows", t, func() {
		extractor := signal.NewExtractor()

		Convey("When a short recording fades out completely", func() {
			ds := model.DisplacementSet{
				model.Thumb: series([2]float64{0, 0.0}, [2]float64{1, 0.05}, [2]float64{2, 0.0}),
			}
			fatigue := extractor.Fatigue(ds)

			Convey("Then the fatigue ratio should be zero, not neutral", func() {
				// Midpoint split: early=[0, 0.05], late=[0]. Early RMS is
				// well above the near-zero cutoff, so the true ratio 0/rms
				// is reported.
				So(fatigue[model.Thumb], ShouldEqual, 0.0)
			})
		})

		Convey("When the series has fewer than two samples", func() {
			ds := model.DisplacementSet{
				model.Thumb: series([2]float64{0, 0.05}),
				model.Index: {},
			}
			fatigue := extractor.Fatigue(ds)

			Convey("Then the ratio should be the neutral value", func() {
				So(fatigue[model.Thumb], ShouldEqual, 1.0)
				So(fatigue[model.Index], ShouldEqual, 1.0)
			})
		})

		Convey("When the early window is effectively silent", func() {
			ds := model.DisplacementSet{
				model.Thumb: series([2]float64{0, 0.0}, [2]float64{1, 0.0}, [2]float64{9, 0.05}, [2]float64{10, 0.05}),
			}
			fatigue := extractor.Fatigue(ds)

			Convey("Then the ratio should fall back to neutral instead of blowing up", func() {
				So(fatigue[model.Thumb], ShouldEqual, 1.0)
			})
		})

		Convey("When tremor doubles from the early to the late window", func() {
			ds := model.DisplacementSet{
				model.Thumb: series(
					[2]float64{0, 0.01}, [2]float64{2, 0.01}, [2]float64{4, 0.01},
					[2]float64{6, 0.02}, [2]float64{8, 0.02}, [2]float64{10, 0.02},
				),
			}
			fatigue := extractor.Fatigue(ds)

			Convey("Then the ratio should be 2.0", func() {
				So(fatigue[model.Thumb], ShouldAlmostEqual, 2.0, 1e-9)
			})
		})

		Convey("When the ratio exceeds the scoring maximum", func() {
			ds := model.DisplacementSet{
				model.Thumb: series(
					[2]float64{0, 0.01}, [2]float64{5, 0.01},
					[2]float64{6, 0.05}, [2]float64{10, 0.05},
				),
			}
			fatigue := extractor.Fatigue(ds)

			Convey("Then the raw unclamped ratio should be reported", func() {
				So(fatigue[model.Thumb], ShouldAlmostEqual, 5.0, 1e-9)
			})
		})
	})
}

func TestExtractor_FatigueWindowing(t *testing.T) {
	Convey("Given a metric extractor with 10s windows at a 20s threshold", t, func() {
		extractor := signal.NewExtractor(
			signal.WithWindowLength(10),
			signal.WithSpanThreshold(20),
		)

		Convey("When 21 samples are spread evenly over exactly 20 seconds", func() {
			points := make([]model.DisplacementPoint, 21)
			for i := range points {
				d := 0.01
				if i > 10 {
					d = 0.03
				}
				points[i] = model.DisplacementPoint{T: float64(i), D: d}
			}
			fatigue := extractor.Fatigue(model.DisplacementSet{model.Thumb: points})

			Convey("Then the boundary sample at t=10 should count once, as early", func() {
				// Early window takes t in [0, 10] (11 samples at 0.01);
				// late takes t in [10, 20] minus the boundary already
				// claimed (10 samples at 0.03). With flat amplitudes in
				// each window the ratio is exactly 0.03/0.01.
				So(fatigue[model.Thumb], ShouldAlmostEqual, 3.0, 1e-9)
			})
		})

		Convey("When a 25 second recording has movement only in the dead zone", func() {
			ds := model.DisplacementSet{
				model.Thumb: series(
					[2]float64{0, 0.01}, [2]float64{5, 0.01},
					[2]float64{12, 0.5}, [2]float64{13, 0.5},
					[2]float64{20, 0.02}, [2]float64{25, 0.02},
				),
			}
			fatigue := extractor.Fatigue(ds)

			Convey("Then mid-recording samples should not affect the ratio", func() {
				So(fatigue[model.Thumb], ShouldAlmostEqual, 2.0, 1e-9)
			})
		})

		Convey("When the span is just under the threshold", func() {
			ds := model.DisplacementSet{
				model.Thumb: series(
					[2]float64{0, 0.01}, [2]float64{9, 0.01},
					[2]float64{10, 0.04}, [2]float64{19, 0.04},
				),
			}
			fatigue := extractor.Fatigue(ds)

			Convey("Then the midpoint split should be used with no dead zone", func() {
				So(fatigue[model.Thumb], ShouldAlmostEqual, 4.0, 1e-9)
			})
		})
	})
}
