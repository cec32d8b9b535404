package service

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"
)

// RunIDEnv carries the supervisor's run id into the child process.
const RunIDEnv = "ZWROT_RUN_ID"

var (
	ErrAlreadyRunning    = errors.New("form filler already running")
	ErrExecutableMissing = errors.New("form filler executable not found")
)

// Supervisor owns the single form-filling child process.
type Supervisor struct {
	path string
	args []string
	dir  string
	env  []string
	log  *slog.Logger

	mu    sync.Mutex
	cmd   *exec.Cmd
	done  chan struct{}
	runID string
}

// NewSupervisor prepares a child launched as path args in dir. env entries
// (KEY=value) are added on top of the parent's environment, so settings such
// as the database URI reach the child without showing on its command line.
func NewSupervisor(path string, args []string, dir string, env []string, log *slog.Logger) *Supervisor {
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{path: path, args: args, dir: dir, env: env, log: log}
}

// Launch starts the child unless one is alive and returns its run id.
func (s *Supervisor) Launch() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.aliveLocked() {
		return s.runID, ErrAlreadyRunning
	}
	if _, err := os.Stat(s.path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrExecutableMissing, s.path)
	}

	runID := uuid.NewString()
	cmd := exec.Command(s.path, s.args...)
	cmd.Dir = s.dir
	cmd.Env = append(os.Environ(), s.env...)
	cmd.Env = append(cmd.Env, RunIDEnv+"="+runID)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start form filler: %w", err)
	}

	done := make(chan struct{})
	s.cmd, s.done, s.runID = cmd, done, runID
	s.log.Info("form filler started", "pid", cmd.Process.Pid, "run_id", runID)

	go func() {
		err := cmd.Wait()
		if err != nil {
			s.log.Warn("form filler exited", "run_id", runID, "error", err)
		} else {
			s.log.Info("form filler finished", "run_id", runID)
		}
		close(done)
	}()
	return runID, nil
}

func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aliveLocked()
}

// RunID is the id of the most recent launch, empty before the first.
func (s *Supervisor) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Done is closed when the current child exits. It is closed already when
// nothing was launched.
func (s *Supervisor) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		c := make(chan struct{})
		close(c)
		return c
	}
	return s.done
}

func (s *Supervisor) aliveLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
