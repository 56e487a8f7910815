package supervisor

import (
	"errors"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Process is a running child.
type Process interface {
	// Stop asks the process to exit and kills it if it is still running
	// after grace. It returns once the process is gone.
	Stop(grace time.Duration) error
	// Done is closed when the process exits.
	Done() <-chan struct{}
	// Err is the exit error, valid after Done is closed.
	Err() error
}

// Runner starts a fresh child each time it is called.
type Runner interface {
	Start() (Process, error)
}

// ExecRunner runs an external command with the supervisor's stdio.
type ExecRunner struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

func (r ExecRunner) Start() (Process, error) {
	if r.Name == "" {
		return nil, errors.New("no command to run")
	}

	cmd := exec.Command(r.Name, r.Args...)
	cmd.Dir = r.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	// The child leads its own process group so that stopping it also stops
	// whatever it spawned, e.g. the binary built by "go run".
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error

	stopOnce sync.Once
}

func (p *execProcess) Done() <-chan struct{} { return p.done }

func (p *execProcess) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

func (p *execProcess) Stop(grace time.Duration) error {
	var err error
	p.stopOnce.Do(func() {
		select {
		case <-p.done:
			// The leader is gone but its group may not be.
			killGroup(p.cmd.Process)
			return
		default:
		}

		if sigErr := interruptGroup(p.cmd.Process); sigErr != nil {
			grace = 0
		}

		select {
		case <-p.done:
		case <-time.After(grace):
		}

		if killErr := killGroup(p.cmd.Process); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
			err = killErr
		}
		<-p.done
	})
	return err
}
