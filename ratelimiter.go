package qsim

import (
	"sync"
	"time"
)

/*
RateLimiter is a token bucket Regulator. Every admitted simulation takes a
token and one token comes back each refillRate, up to maxTokens. The bucket
starts full, so a client can burst maxTokens requests before being paced.

The pool only installs it when rate_burst is above zero, and a refusal
surfaces to callers as ErrRateLimited.
*/
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int           // Tokens currently available
	maxTokens  int           // Bucket capacity, the largest burst admitted
	refillRate time.Duration // Time it takes one token to come back
	lastRefill time.Time     // Start of the current, not yet credited, period
	metrics    *Metrics      // Most recently observed metrics
}

/*
NewRateLimiter creates a full token bucket.

Parameters:
  - maxTokens: burst capacity
  - refillRate: time between token replenishments; zero or less refills
    the bucket on every check

Returns:
  - *RateLimiter: a limiter holding maxTokens tokens

Example:

	limiter := NewRateLimiter(20, 100*time.Millisecond) // 10 runs/s, bursts of 20
*/
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

/*
Observe records the latest pool metrics. The bucket does not change its rate
with load; the metrics are kept so the limiter exposes the same view as the
other regulators.

Parameters:
  - metrics: current pool metrics
*/
func (rl *RateLimiter) Observe(metrics *Metrics) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.metrics = metrics
}

/*
Limit credits any whole refill periods that have passed, then takes a token
if one is available.

Returns:
  - bool: true when the bucket is empty and the job must be refused
*/
func (rl *RateLimiter) Limit() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return false
	}
	return true
}

// Renormalize credits elapsed refill periods without taking a token.
func (rl *RateLimiter) Renormalize() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
}

func (rl *RateLimiter) Tokens() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.tokens
}

// refill expects rl.mu to be held. Only whole periods are credited, so
// partial time carries over to the next call.
func (rl *RateLimiter) refill() {
	if rl.refillRate <= 0 {
		rl.tokens = rl.maxTokens
		return
	}

	periods := time.Since(rl.lastRefill) / rl.refillRate
	if periods <= 0 {
		return
	}

	rl.tokens = min(rl.maxTokens, rl.tokens+int(periods))
	rl.lastRefill = rl.lastRefill.Add(periods * rl.refillRate)
}
