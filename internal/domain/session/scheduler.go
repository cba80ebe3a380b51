package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/tracing"
)

// ErrSchedulerStopped is returned by Request after Stop
var ErrSchedulerStopped = errors.New("save scheduler stopped")

// Default debounce timings
const (
	DefaultSaveWindow = 400 * time.Millisecond
	DefaultSaveDelay  = 500 * time.Millisecond
)

// SaveState is the scheduler's state
type SaveState int

const (
	StateIdle SaveState = iota
	StatePendingWrite
)

// String returns the string representation of the state
func (s SaveState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePendingWrite:
		return "pending_write"
	default:
		return "unknown"
	}
}

// Writer persists a value under a key. store.Store satisfies it.
type Writer interface {
	Set(ctx context.Context, key string, data []byte) error
}

// SchedulerConfig configures a Scheduler
type SchedulerConfig struct {
	Key    string
	Window time.Duration // minimum spacing between writes
	Delay  time.Duration // timer armed when a request arrives inside the window
}

// SaveStats describes the scheduler for status endpoints
type SaveStats struct {
	State     string     `json:"state"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Revision  uint64     `json:"revision"`
	LastSaved *time.Time `json:"last_saved,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Dirty     bool       `json:"dirty"`
}

type saveRequest struct {
	rev   uint64
	data  []byte
	trace tracing.TraceID // request that scheduled the save
}

// Scheduler debounces and coalesces snapshot writes.
//
// Every Request cancels the armed timer. If at least Window has passed since
// the previous request the write happens immediately in the caller's
// goroutine and its error is returned. Otherwise the request is kept as the
// pending one and a timer of Delay re-runs the same check when it expires;
// a write from the timer logs its error instead of returning it.
//
// Requests carry a revision. The pending request is always the newest one
// seen, and a write whose revision is not newer than the last persisted one
// is skipped, so overlapping writes cannot leave stale data behind.
type Scheduler struct {
	writer  Writer
	key     string
	window  time.Duration
	delay   time.Duration
	now     func() time.Time
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu          sync.Mutex
	lastAttempt time.Time
	timer       *time.Timer
	gen         uint64
	deadline    time.Time
	pending     *saveRequest
	stopped     bool
	lastErr     error
	inflight    int
	drained     *sync.Cond

	writeMu   sync.Mutex
	written   uint64
	lastSaved time.Time
}

// NewScheduler creates an idle scheduler. Delay is raised to Window when
// shorter, otherwise a timer re-entry could keep re-arming itself forever.
func NewScheduler(w Writer, cfg SchedulerConfig, logger *logging.Logger, metrics *monitoring.Metrics) *Scheduler {
	if cfg.Window <= 0 {
		cfg.Window = DefaultSaveWindow
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultSaveDelay
	}
	if cfg.Delay < cfg.Window {
		cfg.Delay = cfg.Window
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Scheduler{
		writer:  w,
		key:     cfg.Key,
		window:  cfg.Window,
		delay:   cfg.Delay,
		now:     time.Now,
		logger:  logger.Named("scheduler"),
		metrics: metrics,
	}
	s.drained = sync.NewCond(&s.mu)
	return s
}

// Request asks for data (at revision rev) to be persisted
func (s *Scheduler) Request(ctx context.Context, rev uint64, data []byte) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSchedulerStopped
	}

	if s.pending == nil || rev > s.pending.rev {
		s.pending = &saveRequest{rev: rev, data: data, trace: tracing.GetTraceID(ctx)}
	}
	s.disarm()

	req, due := s.check()
	s.mu.Unlock()

	if !due {
		if s.metrics != nil {
			s.metrics.IncSavesCoalesced()
		}
		return nil
	}
	return s.write(ctx, req, monitoring.SaveImmediate)
}

// check either takes the pending request for writing now or arms the timer.
// Caller holds s.mu.
func (s *Scheduler) check() (*saveRequest, bool) {
	now := s.now()
	elapsed := now.Sub(s.lastAttempt)
	s.lastAttempt = now

	if elapsed >= s.window {
		req := s.pending
		s.pending = nil
		if req != nil {
			s.inflight++
		}
		return req, true
	}
	s.arm(now)
	return nil, false
}

// fire is the timer callback; gen identifies the timer that armed it
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.stopped {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.deadline = time.Time{}

	req, due := s.check()
	s.mu.Unlock()

	if !due || req == nil {
		return
	}
	if err := s.write(context.Background(), req, monitoring.SaveDeferred); err != nil {
		s.logger.Warn("Deferred snapshot save failed",
			zap.Uint64("revision", req.rev),
			zap.String("trace_id", string(req.trace)),
			zap.Error(err),
		)
	}
}

// Flush writes the pending request now, if any, and waits for writes
// already in progress
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	s.disarm()
	req := s.pending
	s.pending = nil
	if req != nil {
		s.lastAttempt = s.now()
		s.inflight++
	}
	s.mu.Unlock()

	err := s.write(ctx, req, monitoring.SaveFlush)

	s.mu.Lock()
	for s.inflight > 0 {
		s.drained.Wait()
	}
	s.mu.Unlock()

	return err
}

// Stop disarms the timer and rejects further requests. A pending request
// is kept so a later Flush can still write it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarm()
	s.stopped = true
}

// discard disarms the timer, drops the pending request and waits for writes
// already in progress. It returns the dropped request, if any, so the
// caller can hand it back when it decides to keep that state after all.
func (s *Scheduler) discard() *saveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarm()
	req := s.pending
	s.pending = nil
	for s.inflight > 0 {
		s.drained.Wait()
	}
	// A write that failed meanwhile re-stashed its request
	if s.pending != nil {
		if req == nil || s.pending.rev > req.rev {
			req = s.pending
		}
		s.pending = nil
	}
	return req
}

// State returns the current state and, when a write is pending, its deadline
func (s *Scheduler) State() (SaveState, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		return StatePendingWrite, s.deadline
	}
	return StateIdle, time.Time{}
}

// Stats returns a status snapshot
func (s *Scheduler) Stats() SaveStats {
	s.mu.Lock()
	stats := SaveStats{State: StateIdle.String(), Dirty: s.pending != nil}
	if s.timer != nil {
		stats.State = StatePendingWrite.String()
		deadline := s.deadline
		stats.Deadline = &deadline
	}
	if s.lastErr != nil {
		stats.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()

	s.writeMu.Lock()
	stats.Revision = s.written
	if !s.lastSaved.IsZero() {
		saved := s.lastSaved
		stats.LastSaved = &saved
	}
	s.writeMu.Unlock()

	return stats
}

// write persists req. Every request taken for writing was counted in
// s.inflight and is released here.
func (s *Scheduler) write(ctx context.Context, req *saveRequest, path string) error {
	if req == nil {
		return nil
	}

	err := s.persist(ctx, req, path)

	s.mu.Lock()
	s.lastErr = err
	if err != nil && s.pending == nil {
		// Not retried on its own; the next request supersedes it or Flush writes it
		s.pending = req
	}
	s.inflight--
	if s.inflight == 0 {
		s.drained.Broadcast()
	}
	s.mu.Unlock()

	return err
}

func (s *Scheduler) persist(ctx context.Context, req *saveRequest, path string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if req.rev <= s.written {
		return nil
	}

	timer := monitoring.NewTimer(s.metrics, path)
	err := s.writer.Set(ctx, s.key, req.data)
	timer.Stop(len(req.data), err)
	if err != nil {
		return err
	}

	s.written = req.rev
	s.lastSaved = s.now()
	s.logger.Debug("Snapshot saved",
		zap.String("path", path),
		zap.Uint64("revision", req.rev),
		zap.Int("bytes", len(req.data)),
	)
	return nil
}

// arm starts the deferred-save timer. Caller holds s.mu.
func (s *Scheduler) arm(now time.Time) {
	s.gen++
	gen := s.gen
	s.deadline = now.Add(s.delay)
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

// disarm cancels the armed timer, if any. Caller holds s.mu.
func (s *Scheduler) disarm() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.deadline = time.Time{}
}
