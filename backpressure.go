package qsim

import (
	"sync"
	"time"
)

/*
BackPressureRegulator refuses new simulations when the queue is filling up or
jobs are running slower than targetProcessTime. Like a relief valve, it reads
two gauges and closes once either one says the pool cannot keep up.

Pressure is the larger of:
  - the queue fill ratio on its own
  - a blend of queue fill (0.6) and latency ratio (0.4)

clamped to 0..1. Intake stops at 0.8, so a queue that is 80% full is refused
regardless of how quickly jobs finish, and slow jobs push the cutoff earlier.
*/
type BackPressureRegulator struct {
	mu sync.RWMutex

	maxQueueSize      int           // Queue length at which queue pressure reaches 1
	targetProcessTime time.Duration // Latency at which timing pressure reaches 1
	currentPressure   float64       // Last computed pressure, 0.0-1.0
	metrics           *Metrics      // Most recently observed metrics
}

/*
NewBackPressureRegulator creates a back pressure regulator.

Parameters:
  - maxQueueSize: queue length treated as fully saturated
  - targetProcessTime: average job latency treated as fully saturated

Returns:
  - *BackPressureRegulator: a regulator with zero pressure

Example:

	regulator := NewBackPressureRegulator(cfg.MaxQueue, cfg.JobTimeout/4)
*/
func NewBackPressureRegulator(maxQueueSize int, targetProcessTime time.Duration) *BackPressureRegulator {
	return &BackPressureRegulator{
		maxQueueSize:      maxQueueSize,
		targetProcessTime: targetProcessTime,
	}
}

/*
Observe records the latest pool metrics and recomputes pressure from them.

Parameters:
  - metrics: pool metrics carrying JobQueueSize and AverageJobLatency
*/
func (bp *BackPressureRegulator) Observe(metrics *Metrics) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	bp.metrics = metrics
	bp.updatePressure()
}

/*
Limit reports whether intake should stop.

Returns:
  - bool: true once pressure is at or above 0.8
*/
func (bp *BackPressureRegulator) Limit() bool {
	bp.mu.RLock()
	defer bp.mu.RUnlock()

	return bp.currentPressure >= 0.8
}

// Renormalize lowers pressure by 0.1 while the queue is under half full and
// latency is under target.
func (bp *BackPressureRegulator) Renormalize() {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.metrics != nil &&
		bp.metrics.JobQueueSize < bp.maxQueueSize/2 &&
		bp.metrics.AverageJobLatency < bp.targetProcessTime {
		bp.currentPressure = max(0.0, bp.currentPressure-0.1)
	}
}

// updatePressure expects bp.mu to be held.
func (bp *BackPressureRegulator) updatePressure() {
	if bp.metrics == nil {
		return
	}

	queuePressure := 1.0
	if bp.maxQueueSize > 0 {
		queuePressure = float64(bp.metrics.JobQueueSize) / float64(bp.maxQueueSize)
	}

	timingPressure := 0.0
	if bp.metrics.AverageJobLatency > 0 && bp.targetProcessTime > 0 {
		timingPressure = float64(bp.metrics.AverageJobLatency) / float64(bp.targetProcessTime)
	}

	blended := queuePressure*0.6 + timingPressure*0.4
	bp.currentPressure = min(1.0, max(0.0, queuePressure, blended))
}

// Pressure returns the last computed pressure.
func (bp *BackPressureRegulator) Pressure() float64 {
	bp.mu.RLock()
	defer bp.mu.RUnlock()
	return bp.currentPressure
}
