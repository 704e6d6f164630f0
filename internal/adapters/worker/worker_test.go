package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	worker "github.com/attriwatch/attriwatch/internal/adapters/worker"
	"github.com/smartystreets/goconvey/convey"
)

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		pool := worker.NewPool(3, worker.WithName("test-pool"))
		ctx := context.Background()

		convey.Convey("When it runs twenty items", func() {
			var (
				mu       sync.Mutex
				seen     = make(map[int]bool)
				inFlight atomic.Int32
				peak     atomic.Int32
			)
			err := pool.Run(ctx, 20, func(_ context.Context, i int) {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inFlight.Add(-1)
				mu.Lock()
				seen[i] = true
				mu.Unlock()
			})

			convey.Convey("Then every item runs once within the limit", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(seen, convey.ShouldHaveLength, 20)
				convey.So(peak.Load(), convey.ShouldBeLessThanOrEqualTo, 3)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			var calls atomic.Int32
			err := pool.Run(cctx, 10, func(context.Context, int) { calls.Add(1) })

			convey.Convey("Then nothing is dispatched and the error surfaces", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
				convey.So(calls.Load(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When there is nothing to do", func() {
			convey.So(pool.Run(ctx, 0, func(context.Context, int) {}), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a non-positive size", t, func() {
		convey.So(worker.NewPool(0).Size(), convey.ShouldBeGreaterThan, 0)
	})
}
