package queue_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	queue "github.com/steadihand/steadihand/internal/adapters/mq/queue"
	"github.com/steadihand/steadihand/internal/domain/model"
)

func batch(id string) queue.Batch {
	return queue.Batch{
		FrameID:   id,
		SessionID: "session-1",
		Phase:     model.PhaseTest,
		T:         0.0,
		Points:    map[model.Finger]model.Point{model.Thumb: {X: 0.5, Y: 0.5}},
	}
}

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryQueue", t, func() {
		q := queue.NewInMemoryQueue()

		Convey("When enqueuing a batch", func() {
			ok := q.Enqueue(ctx, batch("frame-1"))

			Convey("Then it should be accepted and counted", func() {
				So(ok, ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When dequeuing", func() {
			So(q.Enqueue(ctx, batch("frame-1")), ShouldBeTrue)
			So(q.Enqueue(ctx, batch("frame-2")), ShouldBeTrue)

			out := q.Dequeue(ctx)

			Convey("Then batches should arrive in FIFO order", func() {
				first := <-out
				second := <-out
				So(first.FrameID, ShouldEqual, "frame-1")
				So(second.FrameID, ShouldEqual, "frame-2")
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, batch("frame-1")), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue should be refused", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, batch("frame-2")), ShouldBeFalse)
			})

			Convey("And buffered batches should still drain", func() {
				out := q.Dequeue(ctx)
				b, ok := <-out
				So(ok, ShouldBeTrue)
				So(b.FrameID, ShouldEqual, "frame-1")

				_, ok = <-out
				So(ok, ShouldBeFalse)
			})

			Convey("And closing again should be a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})

	Convey("Given a queue with a small capacity", t, func() {
		q := queue.NewInMemoryQueue(
			queue.WithCapacity(2),
			queue.WithBufferSize(2),
		)

		Convey("When the capacity is exhausted", func() {
			So(q.Enqueue(ctx, batch("frame-1")), ShouldBeTrue)
			So(q.Enqueue(ctx, batch("frame-2")), ShouldBeTrue)

			Convey("Then further enqueues should report backpressure", func() {
				So(q.Enqueue(ctx, batch("frame-3")), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("And draining should make room again", func() {
				out := q.Dequeue(ctx)
				<-out
				// Give the dequeue goroutine a beat to settle
				time.Sleep(10 * time.Millisecond)
				So(q.Enqueue(ctx, batch("frame-3")), ShouldBeTrue)
			})
		})
	})

	Convey("Given concurrent producers", t, func() {
		q := queue.NewInMemoryQueue()

		Convey("When many goroutines enqueue at once", func() {
			const producers = 20
			const perProducer = 50

			var wg sync.WaitGroup
			for p := 0; p < producers; p++ {
				wg.Add(1)
				go func(p int) {
					defer wg.Done()
					for i := 0; i < perProducer; i++ {
						q.Enqueue(ctx, batch(fmt.Sprintf("frame-%d-%d", p, i)))
					}
				}(p)
			}
			wg.Wait()

			Convey("Then every batch should be queued", func() {
				So(q.Len(ctx), ShouldEqual, producers*perProducer)
			})
		})
	})
}
