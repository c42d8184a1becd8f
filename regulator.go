package qsim

/*
Regulator watches the pool's metrics and decides whether new work should be
held back. Like a valve on a pipe, it sits between callers and the job queue:
the pool consults it before admitting a simulation and lets it relax again
once the load drops.

Implementations in this package:
  - BackPressureRegulator: refuses work while the queue is full or jobs run slow
  - RateLimiter: paces admissions with a token bucket
*/
type Regulator interface {
	// Observe feeds the regulator the latest pool metrics. The pool calls it
	// before every admission decision and on each metrics tick.
	//
	// Parameters:
	//   - metrics: a snapshot of queue depth, worker count and latency
	Observe(metrics *Metrics)

	// Limit reports whether intake should be refused right now. A regulator
	// that meters admissions may consume capacity when it answers false.
	//
	// Returns:
	//   - bool: true if the job should be refused, false if it may be queued
	Limit() bool

	// Renormalize eases the restriction when conditions allow. The pool
	// calls it on every metrics tick.
	Renormalize()
}
