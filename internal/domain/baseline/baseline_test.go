package baseline_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/steadihand/steadihand/internal/domain/baseline"
	"github.com/steadihand/steadihand/internal/domain/model"
)

func TestEstimate(t *testing.T) {
	Convey("Given calibration observations for several fingers", t, func() {
		observations := map[model.Finger][]model.Point{
			model.Thumb: {
				{X: 0.48, Y: 0.50},
				{X: 0.52, Y: 0.50},
				{X: 0.50, Y: 0.47},
				{X: 0.50, Y: 0.53},
			},
			model.Index: {
				{X: 0.60, Y: 0.40},
			},
		}

		Convey("When estimating the baseline", func() {
			set := baseline.Estimate(observations)

			Convey("Then each finger should map to the centroid of its points", func() {
				So(set[model.Thumb].X, ShouldAlmostEqual, 0.50, 1e-12)
				So(set[model.Thumb].Y, ShouldAlmostEqual, 0.50, 1e-12)
			})

			Convey("And a single observation should be its own centroid", func() {
				So(set[model.Index].X, ShouldAlmostEqual, 0.60, 1e-12)
				So(set[model.Index].Y, ShouldAlmostEqual, 0.40, 1e-12)
			})
		})
	})

	Convey("Given a finger with no observations", t, func() {
		observations := map[model.Finger][]model.Point{
			model.Thumb:  {{X: 0.5, Y: 0.5}},
			model.Middle: {},
		}

		Convey("When estimating the baseline", func() {
			set := baseline.Estimate(observations)

			Convey("Then the unobserved finger should be absent", func() {
				_, ok := set[model.Middle]
				So(ok, ShouldBeFalse)
				So(set, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given no observations at all", t, func() {
		Convey("When estimating the baseline", func() {
			set := baseline.Estimate(map[model.Finger][]model.Point{})

			Convey("Then the result should be empty rather than an error", func() {
				So(set, ShouldBeEmpty)
			})
		})
	})
}
