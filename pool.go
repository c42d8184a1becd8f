// Package qsim runs quantum circuit simulations on a bounded worker pool.
// The engines themselves live in the state, unitary and tableau packages;
// circuit turns requests into engine calls and this package decides when and
// where those calls run.
package qsim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
)

var (
	ErrOverloaded        = errors.New("simulation pool overloaded")
	ErrSchedulingTimeout = errors.New("job scheduling timeout")
	ErrPoolClosed        = errors.New("simulation pool closed")
	ErrRateLimited       = fmt.Errorf("%w: rate limit exceeded", ErrOverloaded)
)

/*
Q is the simulation pool. Jobs go onto a bounded queue; a manager hands each
one to the next idle worker; results land in a Space keyed by job id. Each job
runs exactly once and owns whatever state it builds, so nothing is shared
between simulations.
*/
type Q struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workers    chan chan Job
	jobs       chan Job
	space      *Space
	scaler     *Scaler
	regulators []Regulator
	metrics    *Metrics
	workerMu   sync.Mutex
	workerList []*Worker
	config     *Config
	closeOnce  sync.Once
}

// NewQ starts a pool sized by config. A nil config uses NewConfig.
func NewQ(ctx context.Context, config *Config) *Q {
	if config == nil {
		config = NewConfig()
	}

	ctx, cancel := context.WithCancel(ctx)
	q := &Q{
		ctx:        ctx,
		cancel:     cancel,
		workerList: make([]*Worker, 0, config.MaxWorkers),
		jobs:       make(chan Job, config.MaxQueue),
		workers:    make(chan chan Job, config.MaxWorkers),
		space:      NewSpace(time.Minute),
		metrics:    NewMetrics(),
		regulators: []Regulator{NewBackPressureRegulator(config.MaxQueue, config.JobTimeout/4)},
		config:     config,
	}

	if config.RateBurst > 0 {
		q.regulators = append(q.regulators, NewRateLimiter(config.RateBurst, config.RateInterval))
	}

	for i := 0; i < config.MinWorkers; i++ {
		q.startWorker()
	}

	q.scaler = NewScaler(q, config.MinWorkers, config.MaxWorkers, &ScalerConfig{
		TargetLoad:         2.0,
		ScaleUpThreshold:   4.0,
		ScaleDownThreshold: 1.0,
		Cooldown:           500 * time.Millisecond,
	})

	q.wg.Add(2)
	go func() {
		defer q.wg.Done()
		q.manage()
	}()
	go func() {
		defer q.wg.Done()
		q.collectMetrics()
	}()

	return q
}

func (q *Q) manage() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			select {
			case <-q.ctx.Done():
				q.space.Store(job.ID, nil, ErrPoolClosed, job.TTL)
				return
			case workerChan := <-q.workers:
				workerChan <- job
			case <-time.After(q.schedulingTimeout()):
				errnie.Info("Q.manage - no available workers for job %s", job.ID)
				q.metrics.recordSchedulingFailure("no_worker")
				q.space.Store(job.ID, nil, fmt.Errorf("%w: no available workers", ErrSchedulingTimeout), job.TTL)
			}
		}
	}
}

func (q *Q) collectMetrics() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.metrics.setQueue(len(q.jobs))
			snap := q.metrics.snapshot()
			for _, r := range q.regulators {
				r.Observe(snap)
				r.Renormalize()
			}
			q.publishPressure()
			q.scaler.evaluate()
		}
	}
}

func (q *Q) publishPressure() {
	for _, r := range q.regulators {
		if bp, ok := r.(*BackPressureRegulator); ok {
			q.metrics.setPressure(bp.Pressure())
		}
	}
}

/*
admit asks each regulator in turn. The back-pressure check comes first so a
refused job never spends a rate-limit token.
*/
func (q *Q) admit() error {
	q.metrics.setQueue(len(q.jobs))
	snap := q.metrics.snapshot()

	for _, r := range q.regulators {
		r.Observe(snap)
		if !r.Limit() {
			continue
		}

		if _, ok := r.(*RateLimiter); ok {
			q.metrics.recordSchedulingFailure("rate_limited")
			return ErrRateLimited
		}

		q.metrics.recordSchedulingFailure("overloaded")
		return fmt.Errorf("%w: %d jobs queued", ErrOverloaded, len(q.jobs))
	}

	q.publishPressure()
	return nil
}

/*
Schedule queues fn and returns the job id together with a channel that yields
its Result once. Jobs are refused with ErrOverloaded while a regulator is
limiting (ErrRateLimited when it is the rate limiter), and with
ErrSchedulingTimeout when the queue stays full past the scheduling timeout or
ctx ends first.
*/
func (q *Q) Schedule(ctx context.Context, fn func(context.Context) (any, error), opts ...JobOption) (string, chan Result) {
	job := Job{
		ID:        uuid.NewString(),
		Fn:        fn,
		TTL:       q.config.JobTTL,
		Timeout:   q.config.JobTimeout,
		StartTime: time.Now(),
	}

	for _, opt := range opts {
		opt(&job)
	}

	if q.ctx.Err() != nil {
		return job.ID, failed(ErrPoolClosed)
	}

	if err := q.admit(); err != nil {
		return job.ID, failed(err)
	}

	sctx, cancel := context.WithTimeout(ctx, q.schedulingTimeout())
	defer cancel()

	select {
	case q.jobs <- job:
		return job.ID, q.space.Await(job.ID)
	case <-q.ctx.Done():
		return job.ID, failed(ErrPoolClosed)
	case <-sctx.Done():
		q.metrics.recordSchedulingFailure("timeout")
		return job.ID, failed(fmt.Errorf("%w: %w", ErrSchedulingTimeout, sctx.Err()))
	}
}

/*
Run schedules fn and blocks until its result arrives or ctx ends. The result
is removed from the space once delivered.
*/
func (q *Q) Run(ctx context.Context, fn func(context.Context) (any, error), opts ...JobOption) (any, error) {
	id, ch := q.Schedule(ctx, fn, opts...)
	defer q.space.Forget(id)

	select {
	case r := <-ch:
		return r.Value, r.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Await returns the result channel for a job scheduled earlier.
func (q *Q) Await(id string) chan Result {
	return q.space.Await(id)
}

func (q *Q) Metrics() *Metrics {
	return q.metrics
}

func (q *Q) Config() *Config {
	return q.config
}

func failed(err error) chan Result {
	ch := make(chan Result, 1)
	ch <- Result{Error: err, CreatedAt: time.Now()}
	close(ch)
	return ch
}

func (q *Q) startWorker() {
	w := newWorker(q)

	q.workerMu.Lock()
	q.workerList = append(q.workerList, w)
	q.workerMu.Unlock()

	count := q.metrics.addWorkers(1)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		w.start(q.ctx)
	}()

	errnie.Info("Q.startWorker - started worker, total workers: %d", count)
}

func (q *Q) schedulingTimeout() time.Duration {
	if q.config.SchedulingTimeout > 0 {
		return q.config.SchedulingTimeout
	}
	return 5 * time.Second
}

func (q *Q) jobTimeout() time.Duration {
	if q.config.JobTimeout > 0 {
		return q.config.JobTimeout
	}
	return 30 * time.Second
}

// Close stops the manager and every worker, then waits for them to exit.
func (q *Q) Close() {
	if q == nil {
		return
	}

	q.closeOnce.Do(func() {
		errnie.Info("Q.Close - closing simulation pool")

		q.cancel()
		q.wg.Wait()

	drain:
		for {
			select {
			case job := <-q.jobs:
				q.space.Store(job.ID, nil, ErrPoolClosed, job.TTL)
			default:
				break drain
			}
		}

		q.workerMu.Lock()
		for _, w := range q.workerList {
			w.release()
		}
		q.workerList = nil
		q.workerMu.Unlock()

		q.space.Close()

		errnie.Info("Q.Close - simulation pool closed")
	})
}
