package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"zwrot/internal/model"
)

const ghTimeout = 15 * time.Second

var (
	ErrCLINotFound = errors.New("gh CLI not found")
	ErrTimeout     = errors.New("timeout")
)

// WorkflowRunner triggers the remote refresh workflow and reports its last run.
// LastRun returns nil when the workflow has never run.
type WorkflowRunner interface {
	Trigger(ctx context.Context) error
	LastRun(ctx context.Context) (*model.WorkflowRun, error)
}

type commandFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// GHRunner drives the workflow through the gh CLI.
type GHRunner struct {
	repo     string
	workflow string
	timeout  time.Duration
	run      commandFunc
}

func NewGHRunner(repo, workflow string) *GHRunner {
	return &GHRunner{repo: repo, workflow: workflow, timeout: ghTimeout, run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func (g *GHRunner) Trigger(ctx context.Context) error {
	_, err := g.gh(ctx, "workflow", "run", g.workflow, "--repo", g.repo)
	return err
}

func (g *GHRunner) LastRun(ctx context.Context) (*model.WorkflowRun, error) {
	out, err := g.gh(ctx, "run", "list", "--workflow="+g.workflow, "--limit=1",
		"--json", "status,conclusion", "--repo", g.repo)
	if err != nil {
		return nil, err
	}

	var runs []model.WorkflowRun
	if err := json.Unmarshal(out, &runs); err != nil {
		return nil, fmt.Errorf("decode gh output: %w", err)
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

func (g *GHRunner) gh(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	stdout, stderr, err := g.run(ctx, "gh", args...)
	switch {
	case err == nil:
		return stdout, nil
	case errors.Is(err, exec.ErrNotFound):
		return nil, ErrCLINotFound
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, ErrTimeout
	}
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return nil, errors.New(msg)
	}
	return nil, fmt.Errorf("gh %s: %w", args[0], err)
}
