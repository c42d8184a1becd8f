package qsim

import (
	"context"
	"time"
)

// Job is one simulation run waiting for a worker. Fn receives a context
// bounded by the pool's job timeout.
type Job struct {
	ID        string
	Fn        func(ctx context.Context) (any, error)
	TTL       time.Duration
	Timeout   time.Duration
	StartTime time.Time
}

type JobOption func(*Job)

// WithTTL sets how long the job's result stays retrievable after it lands.
func WithTTL(ttl time.Duration) JobOption {
	return func(j *Job) {
		j.TTL = ttl
	}
}

// WithID replaces the generated job id.
func WithID(id string) JobOption {
	return func(j *Job) {
		j.ID = id
	}
}

func WithTimeout(d time.Duration) JobOption {
	return func(j *Job) {
		j.Timeout = d
	}
}
