package qsim

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalCollectors *Collectors
	collectorsOnce   sync.Once
)

// Collectors are the Prometheus series the pool reports to.
type Collectors struct {
	JobsTotal          *prometheus.CounterVec
	JobDuration        prometheus.Histogram
	SchedulingFailures *prometheus.CounterVec
	QueueDepth         prometheus.Gauge
	Workers            prometheus.Gauge
	Pressure           prometheus.Gauge
}

/*
NewCollectors registers the pool's Prometheus metrics once per process, so
several pools (tests, CLI runs) can share them without duplicate registration
panics.

Metrics:
  - qsim_jobs_total{outcome} - jobs finished, "success" or "error"
  - qsim_job_duration_seconds - job run time from scheduling to result
  - qsim_scheduling_failures_total{reason} - "overloaded", "rate_limited", "timeout" or "no_worker"
  - qsim_queue_depth - jobs waiting for a worker
  - qsim_workers - running workers
  - qsim_pressure - back-pressure level between 0 and 1
*/
func NewCollectors() *Collectors {
	collectorsOnce.Do(func() {
		globalCollectors = &Collectors{
			JobsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "qsim_jobs_total",
					Help: "Total number of simulation jobs finished",
				},
				[]string{"outcome"},
			),

			JobDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "qsim_job_duration_seconds",
					Help:    "Duration of simulation jobs in seconds",
					Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
				},
			),

			SchedulingFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "qsim_scheduling_failures_total",
					Help: "Total number of jobs that never reached a worker",
				},
				[]string{"reason"},
			),

			QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "qsim_queue_depth",
				Help: "Number of jobs waiting for a worker",
			}),

			Workers: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "qsim_workers",
				Help: "Number of running workers",
			}),

			Pressure: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "qsim_pressure",
				Help: "Back-pressure level between 0 and 1",
			}),
		}
	})

	return globalCollectors
}

/*
Metrics is the pool's own view of its load. The regulator and scaler read it;
Export renders it for the status endpoint. Every update is mirrored to the
Prometheus collectors.
*/
type Metrics struct {
	mu                 sync.RWMutex
	WorkerCount        int
	JobQueueSize       int
	LastScale          time.Time
	JobCount           int64
	FailedJobs         int64
	SchedulingFailures int64
	TotalJobTime       time.Duration
	AverageJobLatency  time.Duration
	P95JobLatency      time.Duration
	P99JobLatency      time.Duration
	JobSuccessRate     float64
	Pressure           float64

	latencies  []time.Duration
	windowSize int
	prom       *Collectors
}

func NewMetrics() *Metrics {
	return &Metrics{
		latencies:  make([]time.Duration, 0, 1000),
		windowSize: 1000,
		prom:       NewCollectors(),
	}
}

func (m *Metrics) recordJobExecution(startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalJobTime += duration
	m.JobCount++
	if !success {
		m.FailedJobs++
	}
	m.JobSuccessRate = float64(m.JobCount-m.FailedJobs) / float64(m.JobCount)
	m.updateLatencyPercentiles(duration)

	if m.prom != nil {
		outcome := "success"
		if !success {
			outcome = "error"
		}
		m.prom.JobsTotal.WithLabelValues(outcome).Inc()
		m.prom.JobDuration.Observe(duration.Seconds())
	}
}

func (m *Metrics) recordSchedulingFailure(reason string) {
	m.mu.Lock()
	m.SchedulingFailures++
	m.mu.Unlock()

	if m.prom != nil {
		m.prom.SchedulingFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) setQueue(depth int) {
	m.mu.Lock()
	m.JobQueueSize = depth
	m.mu.Unlock()

	if m.prom != nil {
		m.prom.QueueDepth.Set(float64(depth))
	}
}

func (m *Metrics) addWorkers(delta int) int {
	m.mu.Lock()
	m.WorkerCount += delta
	count := m.WorkerCount
	m.mu.Unlock()

	if m.prom != nil {
		m.prom.Workers.Set(float64(count))
	}
	return count
}

func (m *Metrics) setPressure(p float64) {
	m.mu.Lock()
	m.Pressure = p
	m.mu.Unlock()

	if m.prom != nil {
		m.prom.Pressure.Set(p)
	}
}

// updateLatencyPercentiles expects m.mu to be held.
func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageJobLatency = (m.AverageJobLatency*time.Duration(m.JobCount-1) + duration) / time.Duration(m.JobCount)

	m.latencies = append(m.latencies, duration)
	if len(m.latencies) > m.windowSize {
		m.latencies = m.latencies[1:]
	}

	sorted := append([]time.Duration(nil), m.latencies...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	p95 := min(int(float64(len(sorted))*0.95), len(sorted)-1)
	p99 := min(int(float64(len(sorted))*0.99), len(sorted)-1)

	m.P95JobLatency = sorted[p95]
	m.P99JobLatency = sorted[p99]
}

// snapshot copies the fields regulators read, without the lock.
func (m *Metrics) snapshot() *Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &Metrics{
		WorkerCount:       m.WorkerCount,
		JobQueueSize:      m.JobQueueSize,
		JobCount:          m.JobCount,
		AverageJobLatency: m.AverageJobLatency,
		JobSuccessRate:    m.JobSuccessRate,
	}
}

func (m *Metrics) Export() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]any{
		"worker_count":        m.WorkerCount,
		"queue_size":          m.JobQueueSize,
		"job_count":           m.JobCount,
		"failed_jobs":         m.FailedJobs,
		"scheduling_failures": m.SchedulingFailures,
		"success_rate":        m.JobSuccessRate,
		"avg_latency_ms":      m.AverageJobLatency.Milliseconds(),
		"p95_latency_ms":      m.P95JobLatency.Milliseconds(),
		"p99_latency_ms":      m.P99JobLatency.Milliseconds(),
		"pressure":            m.Pressure,
	}
}
