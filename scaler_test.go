package qsim

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestScaler(t *testing.T) {
	Convey("Given a pool with scaling enabled", t, func() {
		cfg := testConfig()
		cfg.MinWorkers = 1
		cfg.MaxWorkers = 6
		q := NewQ(context.Background(), cfg)

		Reset(func() {
			q.Close()
		})

		Convey("A deep queue adds workers up to the limit", func() {
			q.metrics.mu.Lock()
			q.metrics.JobQueueSize = 40
			q.metrics.mu.Unlock()

			q.scaler.evaluate()

			q.metrics.mu.RLock()
			count := q.metrics.WorkerCount
			q.metrics.mu.RUnlock()
			So(count, ShouldEqual, 6)
		})

		Convey("An empty queue trims workers back to the minimum", func() {
			q.scaler.scaleUp(3)

			q.metrics.mu.Lock()
			q.metrics.JobQueueSize = 0
			q.metrics.LastScale = time.Time{}
			q.metrics.mu.Unlock()

			q.scaler.evaluate()

			q.metrics.mu.RLock()
			count := q.metrics.WorkerCount
			q.metrics.mu.RUnlock()
			So(count, ShouldEqual, 1)
		})

		Convey("The cooldown suppresses back-to-back decisions", func() {
			q.metrics.mu.Lock()
			q.metrics.LastScale = time.Now()
			q.metrics.JobQueueSize = 40
			q.metrics.mu.Unlock()

			q.scaler.evaluate()

			q.metrics.mu.RLock()
			count := q.metrics.WorkerCount
			q.metrics.mu.RUnlock()
			So(count, ShouldEqual, 1)
		})
	})
}
