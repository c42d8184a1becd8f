package qsim

import (
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

// Result is what a job leaves behind.
type Result struct {
	Value     any
	Error     error
	CreatedAt time.Time
	TTL       time.Duration
}

/*
Space holds job results until their TTL runs out and hands them to whoever
awaits them. Await may be called before or after Store; both orders deliver
exactly one Result on a buffered channel that is then closed.
*/
type Space struct {
	mu      sync.Mutex
	values  map[string]Result
	waiting map[string][]chan Result
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func NewSpace(interval time.Duration) *Space {
	s := &Space{
		values:  make(map[string]Result),
		waiting: make(map[string][]chan Result),
		done:    make(chan struct{}),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.cleanup(interval)
	}()

	return s
}

func (s *Space) Store(id string, value any, err error, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Result{
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
	s.values[id] = r

	for _, ch := range s.waiting[id] {
		ch <- r
		close(ch)
	}
	delete(s.waiting, id)
}

func (s *Space) Await(id string) chan Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Result, 1)

	if r, ok := s.values[id]; ok {
		ch <- r
		close(ch)
		return ch
	}

	s.waiting[id] = append(s.waiting[id], ch)
	return ch
}

// Forget drops a stored result and any waiters for id.
func (s *Space) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, id)
	delete(s.waiting, id)
}

func (s *Space) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

func (s *Space) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.expire(time.Now()); n > 0 {
				errnie.Info("Space.cleanup - expired %d results", n)
			}
		}
	}
}

func (s *Space) expire(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, r := range s.values {
		if r.TTL > 0 && now.Sub(r.CreatedAt) > r.TTL {
			delete(s.values, id)
			n++
		}
	}
	return n
}

func (s *Space) Close() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}
