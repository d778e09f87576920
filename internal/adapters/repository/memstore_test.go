package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	repository "github.com/steadihand/steadihand/internal/adapters/repository"
	"github.com/steadihand/steadihand/internal/domain/model"
)

func testBatch(sessionID string, phase model.Phase, t float64) model.FrameBatch {
	return model.FrameBatch{
		FrameID:   fmt.Sprintf("frame-%s-%f", sessionID, t),
		SessionID: sessionID,
		Phase:     phase,
		T:         t,
		Points: map[model.Finger]model.Point{
			model.Thumb: {X: 0.5, Y: 0.5},
			model.Index: {X: 0.6, Y: 0.5},
		},
	}
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new MemStore", t, func() {
		store := repository.NewMemStore(ctx)

		Convey("When creating a session", func() {
			err := store.Create(ctx, "session-1")

			Convey("Then the session should exist and be empty", func() {
				So(err, ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 1)

				snap, err := store.Snapshot(ctx, "session-1")
				So(err, ShouldBeNil)
				So(snap.ID, ShouldEqual, "session-1")
				So(snap.Calibration, ShouldBeEmpty)
				So(snap.Trajectories, ShouldBeEmpty)
				So(snap.Completed(), ShouldBeFalse)
			})

			Convey("And creating it again should fail", func() {
				err := store.Create(ctx, "session-1")
				So(errors.Is(err, repository.ErrSessionExists), ShouldBeTrue)
			})
		})

		Convey("When appending calibration frames", func() {
			So(store.Create(ctx, "session-1"), ShouldBeNil)
			So(store.Append(ctx, testBatch("session-1", model.PhaseCalibration, 0.0)), ShouldBeNil)
			So(store.Append(ctx, testBatch("session-1", model.PhaseCalibration, 0.1)), ShouldBeNil)

			Convey("Then the observations should accumulate per finger", func() {
				snap, err := store.Snapshot(ctx, "session-1")
				So(err, ShouldBeNil)
				So(snap.Calibration[model.Thumb], ShouldHaveLength, 2)
				So(snap.Calibration[model.Index], ShouldHaveLength, 2)
				So(snap.Trajectories, ShouldBeEmpty)
			})
		})

		Convey("When appending test frames", func() {
			So(store.Create(ctx, "session-1"), ShouldBeNil)
			So(store.Append(ctx, testBatch("session-1", model.PhaseTest, 1.5)), ShouldBeNil)

			Convey("Then samples should carry the frame timestamp", func() {
				snap, err := store.Snapshot(ctx, "session-1")
				So(err, ShouldBeNil)
				So(snap.Trajectories[model.Thumb], ShouldHaveLength, 1)
				So(snap.Trajectories[model.Thumb][0].T, ShouldEqual, 1.5)
				So(snap.Trajectories[model.Thumb][0].X, ShouldEqual, 0.5)
			})
		})

		Convey("When appending to an unknown session", func() {
			err := store.Append(ctx, testBatch("missing", model.PhaseTest, 0.0))

			Convey("Then it should report not found", func() {
				So(errors.Is(err, repository.ErrSessionNotFound), ShouldBeTrue)
			})
		})

		Convey("When appending with an invalid phase", func() {
			So(store.Create(ctx, "session-1"), ShouldBeNil)
			err := store.Append(ctx, testBatch("session-1", model.Phase("warmup"), 0.0))

			Convey("Then it should reject the frame", func() {
				So(errors.Is(err, repository.ErrInvalidPhase), ShouldBeTrue)
			})
		})

		Convey("When setting a baseline", func() {
			So(store.Create(ctx, "session-1"), ShouldBeNil)
			base := model.BaselineSet{model.Thumb: {X: 0.5, Y: 0.5}}
			So(store.SetBaseline(ctx, "session-1", base), ShouldBeNil)

			Convey("Then the snapshot should carry a copy of it", func() {
				snap, err := store.Snapshot(ctx, "session-1")
				So(err, ShouldBeNil)
				So(snap.Baseline[model.Thumb].X, ShouldEqual, 0.5)

				// Mutating the snapshot must not leak back into the store
				snap.Baseline[model.Thumb] = model.Point{X: 0.9, Y: 0.9}
				again, err := store.Snapshot(ctx, "session-1")
				So(err, ShouldBeNil)
				So(again.Baseline[model.Thumb].X, ShouldEqual, 0.5)
			})
		})

		Convey("When saving a result", func() {
			So(store.Create(ctx, "session-1"), ShouldBeNil)
			So(store.SaveResult(ctx, "session-1", model.Result{
				Assessment: model.Assessment{Score: 85.0},
			}), ShouldBeNil)

			Convey("Then the session should be completed", func() {
				res, err := store.Result(ctx, "session-1")
				So(err, ShouldBeNil)
				So(res.Assessment.Score, ShouldEqual, 85.0)
			})

			Convey("And further frames should be rejected", func() {
				err := store.Append(ctx, testBatch("session-1", model.PhaseTest, 2.0))
				So(errors.Is(err, repository.ErrSessionCompleted), ShouldBeTrue)
			})

			Convey("And further baselines should be rejected", func() {
				err := store.SetBaseline(ctx, "session-1", model.BaselineSet{})
				So(errors.Is(err, repository.ErrSessionCompleted), ShouldBeTrue)
			})

			Convey("And a second result should be rejected", func() {
				err := store.SaveResult(ctx, "session-1", model.Result{})
				So(errors.Is(err, repository.ErrSessionCompleted), ShouldBeTrue)
			})
		})

		Convey("When reading a result before completion", func() {
			So(store.Create(ctx, "session-1"), ShouldBeNil)
			_, err := store.Result(ctx, "session-1")

			Convey("Then it should report not completed", func() {
				So(errors.Is(err, repository.ErrSessionNotCompleted), ShouldBeTrue)
			})
		})

		Convey("When the snapshot is mutated after the fact", func() {
			So(store.Create(ctx, "session-1"), ShouldBeNil)
			So(store.Append(ctx, testBatch("session-1", model.PhaseTest, 0.0)), ShouldBeNil)

			snap, err := store.Snapshot(ctx, "session-1")
			So(err, ShouldBeNil)
			snap.Trajectories[model.Thumb][0].X = 0.99

			Convey("Then the stored trajectories should be unaffected", func() {
				again, err := store.Snapshot(ctx, "session-1")
				So(err, ShouldBeNil)
				So(again.Trajectories[model.Thumb][0].X, ShouldEqual, 0.5)
			})
		})
	})

	Convey("Given a MemStore with a custom shard count", t, func() {
		store := repository.NewMemStore(ctx, repository.WithShardCount(2))

		Convey("When many sessions are created concurrently", func() {
			const sessions = 50
			var wg sync.WaitGroup
			for i := 0; i < sessions; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					_ = store.Create(ctx, fmt.Sprintf("session-%d", n))
				}(i)
			}
			wg.Wait()

			Convey("Then all sessions should be tracked", func() {
				So(store.Count(ctx), ShouldEqual, sessions)
			})
		})

		Convey("When frames for different sessions arrive concurrently", func() {
			So(store.Create(ctx, "session-a"), ShouldBeNil)
			So(store.Create(ctx, "session-b"), ShouldBeNil)

			const frames = 100
			var wg sync.WaitGroup
			for i := 0; i < frames; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					id := "session-a"
					if n%2 == 0 {
						id = "session-b"
					}
					_ = store.Append(ctx, testBatch(id, model.PhaseTest, float64(n)))
				}(i)
			}
			wg.Wait()

			Convey("Then each session should hold its own frames", func() {
				a, err := store.Snapshot(ctx, "session-a")
				So(err, ShouldBeNil)
				b, err := store.Snapshot(ctx, "session-b")
				So(err, ShouldBeNil)
				So(len(a.Trajectories[model.Thumb]), ShouldEqual, frames/2)
				So(len(b.Trajectories[model.Thumb]), ShouldEqual, frames/2)
			})
		})
	})
}
