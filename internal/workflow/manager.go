// Package workflow drives the minutes pipeline: a meeting worker that reacts
// to meeting-ended events and a summary worker that reacts to completed
// authorizations. Each worker drains its own FIFO queue serially; one slow
// item head-of-line-blocks later items on the same queue, which is accepted
// in exchange for having no cross-workflow shared state.
package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"scribe/internal/config"
	"scribe/internal/journal"
	"scribe/internal/logging"
	"scribe/internal/poll"
	"scribe/internal/queue"
)

// Manager owns both intake queues and both worker loops.
type Manager struct {
	cfg     *config.Config
	client  Platform
	journal *journal.Store
	logger  *slog.Logger

	meetings       *queue.Queue[MeetingEvent]
	authorizations *queue.Queue[Authorization]

	// sleep paces poll retries and block inserts; tests replace it.
	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// ManagerOption customizes manager behavior.
type ManagerOption func(*Manager)

// WithSleep replaces the pacing function used for poll backoff and block
// insert spacing.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) ManagerOption {
	return func(m *Manager) {
		if fn != nil {
			m.sleep = fn
		}
	}
}

// NewManager wires the workers to the platform client. The journal store may
// be nil when journaling is disabled.
func NewManager(cfg *config.Config, client Platform, store *journal.Store, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:            cfg,
		client:         client,
		journal:        store,
		logger:         logging.NewComponentLogger(logger, "workflow"),
		meetings:       queue.New[MeetingEvent](),
		authorizations: queue.New[Authorization](),
		sleep:          sleepWithContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnqueueMeeting accepts a meeting-ended event from the webhook handler.
func (m *Manager) EnqueueMeeting(event MeetingEvent) {
	m.meetings.Enqueue(event)
}

// EnqueueAuthorization accepts a completed OAuth exchange from the callback
// handler.
func (m *Manager) EnqueueAuthorization(auth Authorization) {
	m.authorizations.Enqueue(auth)
}

// Start launches both worker loops. It is idempotent.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(2)
	go m.runMeetingWorker(runCtx)
	go m.runSummaryWorker(runCtx)
}

// Stop closes the queues, cancels the workers, and waits for both loops to
// exit. In-flight poll sleeps are interrupted by the cancellation.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	cancel := m.cancel
	m.mu.Unlock()

	m.meetings.Close()
	m.authorizations.Close()
	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *Manager) runMeetingWorker(ctx context.Context) {
	defer m.wg.Done()
	for {
		event, ok := m.meetings.Dequeue(ctx)
		if !ok {
			return
		}
		m.runItem(ctx, "meeting worker", func() {
			m.processMeetingEvent(ctx, event)
		})
	}
}

func (m *Manager) runSummaryWorker(ctx context.Context) {
	defer m.wg.Done()
	for {
		auth, ok := m.authorizations.Dequeue(ctx)
		if !ok {
			return
		}
		m.runItem(ctx, "summary worker", func() {
			m.processAuthorization(ctx, auth)
		})
	}
}

// runItem isolates one queue item: a panic is logged and the loop moves on
// to its next item.
func (m *Manager) runItem(ctx context.Context, worker string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.ErrorContext(ctx, "worker item panicked",
				logging.String("worker", worker),
				logging.Any("panic", r))
		}
	}()
	fn()
}

func (m *Manager) pollOptions() []poll.Option {
	opts := []poll.Option{poll.WithSleep(m.sleep)}
	if m.cfg.Workflow.PollBaseDelay > 0 {
		opts = append(opts, poll.WithBaseDelay(time.Duration(m.cfg.Workflow.PollBaseDelay)*time.Second))
	}
	return opts
}

func (m *Manager) pollAttempts() int {
	if m.cfg.Workflow.PollMaxAttempts > 0 {
		return m.cfg.Workflow.PollMaxAttempts
	}
	return poll.DefaultMaxAttempts
}

func (m *Manager) insertSpacing() time.Duration {
	if m.cfg.Workflow.BlockInsertSpacing > 0 {
		return time.Duration(m.cfg.Workflow.BlockInsertSpacing) * time.Second
	}
	return time.Second
}

// record appends a journal transition; journal failures are logged and never
// interrupt a workflow.
func (m *Manager) record(ctx context.Context, workflowID, meetingID, stage, status, detail string) {
	if err := m.journal.RecordTransition(ctx, workflowID, meetingID, stage, status, detail); err != nil {
		m.logger.WarnContext(ctx, "journal record failed",
			logging.String(logging.FieldWorkflowID, workflowID),
			logging.String(logging.FieldStage, stage),
			logging.Error(err))
	}
}

func newWorkflowID() string {
	return uuid.NewString()
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
