// Package scheduler runs callbacks at or after a point in time. It backs the
// reminder skill; jobs live in memory only and do not survive a restart.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tarunerror/openNova/pkg/logx"
)

// Job is a scheduled callback.
type Job struct {
	ID    string
	Label string
	At    time.Time
}

// Scheduler fires callbacks on time.Timer. All methods are safe for
// concurrent use.
type Scheduler struct {
	logger *logx.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	jobs   map[string]Job
	closed bool
}

// New creates an empty scheduler.
func New(logger *logx.Logger) *Scheduler {
	if logger == nil {
		logger = logx.NewLogger("scheduler")
	}
	return &Scheduler{
		logger: logger,
		timers: make(map[string]*time.Timer),
		jobs:   make(map[string]Job),
	}
}

// RunAfter schedules fn to run once after delay and returns the job. The
// callback runs on a timer goroutine; it must not block for long.
func (s *Scheduler) RunAfter(delay time.Duration, label string, fn func()) (Job, error) {
	if delay < 0 {
		return Job{}, fmt.Errorf("delay must not be negative")
	}
	if fn == nil {
		return Job{}, fmt.Errorf("callback must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Job{}, fmt.Errorf("scheduler is stopped")
	}

	job := Job{
		ID:    uuid.New().String(),
		Label: label,
		At:    time.Now().Add(delay),
	}

	s.timers[job.ID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, job.ID)
		delete(s.jobs, job.ID)
		s.mu.Unlock()
		fn()
	})
	s.jobs[job.ID] = job

	s.logger.Debug("scheduled %q in %s (job %s)", label, delay, job.ID)
	return job, nil
}

// RunAt schedules fn to run once at t. A time in the past fires immediately.
func (s *Scheduler) RunAt(t time.Time, label string, fn func()) (Job, error) {
	delay := time.Until(t)
	if delay < 0 {
		delay = 0
	}
	return s.RunAfter(delay, label, fn)
}

// RunEvery schedules fn to run repeatedly at the given interval until the
// job is cancelled or the scheduler stops.
func (s *Scheduler) RunEvery(interval time.Duration, label string, fn func()) (Job, error) {
	if interval <= 0 {
		return Job{}, fmt.Errorf("interval must be positive")
	}
	if fn == nil {
		return Job{}, fmt.Errorf("callback must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Job{}, fmt.Errorf("scheduler is stopped")
	}

	job := Job{
		ID:    uuid.New().String(),
		Label: label,
		At:    time.Now().Add(interval),
	}

	var arm func()
	arm = func() {
		s.timers[job.ID] = time.AfterFunc(interval, func() {
			fn()
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, pending := s.timers[job.ID]; pending && !s.closed {
				arm()
			}
		})
	}
	arm()
	s.jobs[job.ID] = job

	s.logger.Debug("scheduled %q every %s (job %s)", label, interval, job.ID)
	return job, nil
}

// Cancel stops a pending job. It reports whether the job was still pending.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[id]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.timers, id)
	delete(s.jobs, id)
	return true
}

// Pending returns the jobs that have not fired yet, in no particular order.
func (s *Scheduler) Pending() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	return jobs
}

// Stop cancels all pending jobs and rejects new ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
		delete(s.jobs, id)
	}
	s.closed = true
}
