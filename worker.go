package qsim

import (
	"context"
	"fmt"
	"time"

	"github.com/theapemachine/errnie"
)

/*
Worker runs jobs one at a time. It advertises itself by handing its job
channel to the pool and, once advertised, always waits for that job, so a
dispatched job is never dropped. A stop signal is honored only while idle, and
a job still queued on the worker when the pool stops is answered with
ErrPoolClosed.
*/
type Worker struct {
	pool *Q
	jobs chan Job
	stop chan struct{}
}

func newWorker(pool *Q) *Worker {
	return &Worker{
		pool: pool,
		jobs: make(chan Job, 1),
		stop: make(chan struct{}),
	}
}

func (w *Worker) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.release()
			return
		case <-w.stop:
			return
		case w.pool.workers <- w.jobs:
		}

		select {
		case <-ctx.Done():
			w.release()
			return
		case job := <-w.jobs:
			result, err := w.processJob(ctx, job)
			w.pool.space.Store(job.ID, result, err, job.TTL)
		}
	}
}

/*
release answers any job still sitting in the worker's channel with
ErrPoolClosed, so a caller awaiting it is not left waiting on a pool that has
stopped.
*/
func (w *Worker) release() {
	for {
		select {
		case job := <-w.jobs:
			w.pool.space.Store(job.ID, nil, ErrPoolClosed, job.TTL)
		default:
			return
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job Job) (result any, err error) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = w.pool.jobTimeout()
	}

	jctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
		w.pool.metrics.recordJobExecution(job.StartTime, err == nil)
	}()

	result, err = job.Fn(jctx)
	if err != nil {
		errnie.Info("Worker.processJob - job %s failed after %v: %v", job.ID, time.Since(job.StartTime), err)
	}

	return result, err
}
