package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/no-krul-tepes/esstu-bot/internal/store"
)

// Intervals configures the supervisor's three recurring timers.
type Intervals struct {
	Dispatch time.Duration // due-entry polling
	Planning time.Duration // daily planning pass; deliberately more frequent
	// than daily so newly registered chats get picked up the same day
	Cleanup time.Duration // retention purge
}

// DefaultIntervals matches the production defaults.
func DefaultIntervals() Intervals {
	return Intervals{
		Dispatch: time.Minute,
		Planning: 30 * time.Minute,
		Cleanup:  24 * time.Hour,
	}
}

// Supervisor owns the engine's timers. Each job runs in singleton mode, so a
// slow pass is never overlapped by the next tick of the same timer. The
// dispatch and planning jobs fire once immediately on Start.
type Supervisor struct {
	planner       *Planner
	dispatcher    *Dispatcher
	notifications store.NotificationRepo
	log           *zap.Logger
	loc           *time.Location
	intervals     Intervals
	retentionDays int

	mu    sync.Mutex
	sched gocron.Scheduler
}

// NewSupervisor creates a stopped Supervisor.
func NewSupervisor(planner *Planner, dispatcher *Dispatcher, notifications store.NotificationRepo, log *zap.Logger, loc *time.Location, intervals Intervals, retentionDays int) *Supervisor {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Supervisor{
		planner:       planner,
		dispatcher:    dispatcher,
		notifications: notifications,
		log:           log,
		loc:           loc,
		intervals:     intervals,
		retentionDays: retentionDays,
	}
}

// Start schedules the three timers. Calling Start on a running supervisor
// warns and no-ops.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched != nil {
		s.log.Warn("notification scheduler already running")
		return nil
	}

	sched, err := gocron.NewScheduler(gocron.WithLocation(s.loc))
	if err != nil {
		return err
	}

	jobs := []struct {
		name        string
		interval    time.Duration
		task        func()
		immediately bool
	}{
		{"dispatch", s.intervals.Dispatch, s.runProcessing, true},
		{"planning", s.intervals.Planning, s.runScheduling, true},
		{"cleanup", s.intervals.Cleanup, s.runCleanup, false},
	}
	for _, j := range jobs {
		opts := []gocron.JobOption{
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		}
		if j.immediately {
			opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
		}
		if _, err := sched.NewJob(gocron.DurationJob(j.interval), gocron.NewTask(j.task), opts...); err != nil {
			_ = sched.Shutdown()
			return err
		}
	}

	sched.Start()
	s.sched = sched

	s.log.Info("notification scheduler started",
		zap.Duration("dispatchInterval", s.intervals.Dispatch),
		zap.Duration("planningInterval", s.intervals.Planning),
		zap.Duration("cleanupInterval", s.intervals.Cleanup),
	)
	return nil
}

// Stop cancels all timers and waits for in-flight passes to finish. After
// Stop the supervisor can be started again.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched == nil {
		s.log.Warn("notification scheduler not running")
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	s.log.Info("notification scheduler stopped")
	return err
}

// Running reports whether the timers are active.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

// Timer callbacks. Each pass absorbs its own error so a failed pass never
// kills the timer loop.

func (s *Supervisor) runProcessing() {
	if err := s.TriggerProcessing(context.Background()); err != nil {
		s.log.Error("dispatch pass failed", zap.Error(err))
	}
}

func (s *Supervisor) runScheduling() {
	if err := s.TriggerScheduling(context.Background()); err != nil {
		s.log.Error("planning pass failed", zap.Error(err))
	}
}

func (s *Supervisor) runCleanup() {
	if err := s.TriggerCleanup(context.Background()); err != nil {
		s.log.Error("cleanup pass failed", zap.Error(err))
	}
}

// TriggerProcessing runs one dispatch pass synchronously. Exposed for
// deterministic tests.
func (s *Supervisor) TriggerProcessing(ctx context.Context) error {
	return s.dispatcher.SendDuePending(ctx, time.Now().In(s.loc))
}

// TriggerScheduling runs one planning pass synchronously.
func (s *Supervisor) TriggerScheduling(ctx context.Context) error {
	return s.planner.PlanToday(ctx, time.Now().In(s.loc))
}

// TriggerCleanup runs one retention purge synchronously.
func (s *Supervisor) TriggerCleanup(ctx context.Context) error {
	removed, err := s.notifications.PurgeSentOlderThan(ctx, time.Now().UTC(), s.retentionDays)
	if err != nil {
		return err
	}
	s.log.Info("old notifications purged",
		zap.Int64("removed", removed),
		zap.Int("retentionDays", s.retentionDays),
	)
	return nil
}
