package qsim

import (
	"math"
	"time"

	"github.com/theapemachine/errnie"
)

type ScalerConfig struct {
	TargetLoad         float64
	ScaleUpThreshold   float64
	ScaleDownThreshold float64
	Cooldown           time.Duration
}

// Scaler grows and shrinks the worker set between its bounds, aiming for
// TargetLoad queued jobs per worker.
type Scaler struct {
	pool               *Q
	minWorkers         int
	maxWorkers         int
	targetLoad         float64
	scaleUpThreshold   float64
	scaleDownThreshold float64
	cooldown           time.Duration
}

func NewScaler(q *Q, minWorkers, maxWorkers int, config *ScalerConfig) *Scaler {
	return &Scaler{
		pool:               q,
		minWorkers:         minWorkers,
		maxWorkers:         maxWorkers,
		targetLoad:         config.TargetLoad,
		scaleUpThreshold:   config.ScaleUpThreshold,
		scaleDownThreshold: config.ScaleDownThreshold,
		cooldown:           config.Cooldown,
	}
}

func (s *Scaler) evaluate() {
	m := s.pool.metrics

	m.mu.RLock()
	lastScale, workers, queued := m.LastScale, m.WorkerCount, m.JobQueueSize
	m.mu.RUnlock()

	if time.Since(lastScale) < s.cooldown || workers == 0 {
		return
	}

	load := float64(queued) / float64(workers)
	needed := int(math.Ceil(float64(queued) / s.targetLoad))

	switch {
	case load > s.scaleUpThreshold && workers < s.maxWorkers:
		s.scaleUp(min(needed-workers, s.maxWorkers-workers))
	case load < s.scaleDownThreshold && workers > s.minWorkers:
		s.scaleDown(workers - max(needed, s.minWorkers))
	default:
		return
	}

	m.mu.Lock()
	m.LastScale = time.Now()
	m.mu.Unlock()
}

func (s *Scaler) scaleUp(count int) {
	for i := 0; i < count; i++ {
		s.pool.startWorker()
	}
	if count > 0 {
		errnie.Info("Scaler.scaleUp - added %d workers", count)
	}
}

func (s *Scaler) scaleDown(count int) {
	s.pool.workerMu.Lock()
	defer s.pool.workerMu.Unlock()

	removed := 0
	for ; removed < count && len(s.pool.workerList) > s.minWorkers; removed++ {
		w := s.pool.workerList[len(s.pool.workerList)-1]
		s.pool.workerList = s.pool.workerList[:len(s.pool.workerList)-1]
		close(w.stop)
		s.pool.metrics.addWorkers(-1)
	}

	if removed > 0 {
		errnie.Info("Scaler.scaleDown - removed %d workers", removed)
	}
}
