package supervisor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fardannozami/habit-bot/internal/logger"
)

// Config configures a Supervisor.
type Config struct {
	// Grace is how long a child gets to exit after an interrupt.
	Grace time.Duration
	// RestartDelay is the wait before restarting a child that exited or
	// failed to start on its own.
	RestartDelay time.Duration
	Logger       *log.Logger
}

// Supervisor keeps exactly one child running and replaces it on every
// change notification. The old child is always gone before the new one
// starts.
type Supervisor struct {
	runner Runner
	config Config
	logger *log.Logger
}

func New(runner Runner, config Config) *Supervisor {
	if config.Grace <= 0 {
		config.Grace = 5 * time.Second
	}
	if config.RestartDelay <= 0 {
		config.RestartDelay = 5 * time.Second
	}
	l := config.Logger
	if l == nil {
		l = logger.Get()
	}
	return &Supervisor{runner: runner, config: config, logger: l}
}

// Run starts the child and restarts it for each value received on changes.
// It stops the child and returns when ctx is done or changes is closed.
func (s *Supervisor) Run(ctx context.Context, changes <-chan string) error {
	var retry <-chan time.Time
	proc := s.start()
	if proc == nil {
		retry = time.After(s.config.RestartDelay)
	}

	for {
		var exited <-chan struct{}
		if proc != nil {
			exited = proc.Done()
		}

		select {
		case <-ctx.Done():
			s.stop(proc)
			s.logger.Info("Supervisor shutdown complete")
			return nil

		case path, ok := <-changes:
			if !ok {
				s.stop(proc)
				return nil
			}
			s.logger.Info("Detected change, restarting", "path", path)
			s.stop(proc)
			retry = nil
			if proc = s.start(); proc == nil {
				retry = time.After(s.config.RestartDelay)
			}

		case <-exited:
			if err := proc.Err(); err != nil {
				s.logger.Error("Child exited", "error", err)
			} else {
				s.logger.Warn("Child exited")
			}
			// Reap anything the child left behind in its process group.
			s.stop(proc)
			proc = nil
			retry = time.After(s.config.RestartDelay)

		case <-retry:
			retry = nil
			if proc = s.start(); proc == nil {
				retry = time.After(s.config.RestartDelay)
			}
		}
	}
}

func (s *Supervisor) start() Process {
	proc, err := s.runner.Start()
	if err != nil {
		s.logger.Error("Failed to start child", "error", err, "retry_in", s.config.RestartDelay)
		return nil
	}
	s.logger.Info("Child started")
	return proc
}

func (s *Supervisor) stop(proc Process) {
	if proc == nil {
		return
	}
	if err := proc.Stop(s.config.Grace); err != nil {
		s.logger.Error("Failed to stop child", "error", err)
	}
}
