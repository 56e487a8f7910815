package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/fardannozami/habit-bot/internal/logger"
)

// DefaultResetSchedule runs the daily reset at midnight in the configured zone.
const DefaultResetSchedule = "@midnight"

// Job is one unit of scheduled work.
type Job interface {
	Execute(ctx context.Context) (int, error)
}

// Scheduler runs jobs on cron schedules. A job never overlaps with its own
// previous run; a tick that arrives while the job is still running is skipped.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// New creates a scheduler evaluating schedules in loc. A nil loc means UTC.
func New(loc *time.Location, l *log.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if l == nil {
		l = logger.Get()
	}

	cl := logger.Cron(l)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx:     ctx,
		cancel:  cancel,
		timeout: 5 * time.Minute,
	}
}

// Add registers job under name. spec accepts the standard five-field format
// and descriptors such as @midnight or @every 1h.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		spec = DefaultResetSchedule
	}

	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}

	logger.Info("Scheduled job", "job", name, "schedule", spec)
	return nil
}

// RunNow executes job synchronously, outside the cron chain.
func (s *Scheduler) RunNow(name string, job Job) {
	s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	n, err := job.Execute(ctx)
	if err != nil {
		logger.Error("Scheduled job failed", "job", name, "error", err)
		return
	}
	logger.Debug("Scheduled job finished", "job", name, "affected", n, "took", time.Since(start))
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs' contexts and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
