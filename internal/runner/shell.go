package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/sourceplane/flowgate/internal/model"
)

// ShellExecutor runs job steps as shell commands in a working directory.
// A step writes outputs by appending KEY=VALUE lines to the file named
// by FLOWGATE_OUTPUT; they become the job's outputs when it succeeds.
type ShellExecutor struct {
	WorkDir string
	Stdout  io.Writer
	Stderr  io.Writer
}

func NewShellExecutor(workDir string, stdout, stderr io.Writer) *ShellExecutor {
	return &ShellExecutor{
		WorkDir: workDir,
		Stdout:  stdout,
		Stderr:  stderr,
	}
}

func (e *ShellExecutor) Execute(ctx context.Context, node *model.JobNode) (*Outcome, error) {
	outFile, err := os.CreateTemp("", "flowgate-output-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	fmt.Fprintf(e.Stdout, "→ Job %s\n", node.ID)
	for _, step := range node.Job.Steps {
		fmt.Fprintf(e.Stdout, "  - Step %s\n", step.DisplayName())
		if err := e.runStep(ctx, node, step, outPath); err != nil {
			return nil, fmt.Errorf("job %s step %s failed: %w", node.ID, step.DisplayName(), err)
		}
	}

	outputs, err := readOutputs(outPath)
	if err != nil {
		return nil, fmt.Errorf("job %s produced malformed outputs: %w", node.ID, err)
	}
	return &Outcome{Status: model.StatusSucceeded, Outputs: outputs}, nil
}

// runStep runs one step, retrying failures up to step.Retries times with
// exponential backoff. Context cancellation stops the retry loop.
func (e *ShellExecutor) runStep(ctx context.Context, node *model.JobNode, step model.Step, outPath string) error {
	b := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	var err error
	for attempt := 0; attempt <= step.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.Duration()):
			}
			fmt.Fprintf(e.Stdout, "    retrying (%d/%d)\n", attempt, step.Retries)
		}
		if err = e.runOnce(ctx, node, step, outPath); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (e *ShellExecutor) runOnce(ctx context.Context, node *model.JobNode, step model.Step, outPath string) error {
	if step.TimeoutDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, step.TimeoutDuration)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", step.Run)
	cmd.Dir = e.WorkDir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	cmd.Env = append(os.Environ(),
		"FLOWGATE_JOB="+node.ID,
		"FLOWGATE_OUTPUT="+outPath,
	)
	for k, v := range step.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	return cmd.Run()
}

// readOutputs parses KEY=VALUE lines from the step output file. Blank
// lines are ignored, anything else malformed is an error.
func readOutputs(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	outputs := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid output line %q", line)
		}
		outputs[key] = value
	}
	if len(outputs) == 0 {
		return nil, nil
	}
	return outputs, nil
}

// ResolveWorkDir maps a configured working directory to an absolute
// path, relative paths resolving against the current directory.
func ResolveWorkDir(dir string) string {
	if dir == "" || dir == "./" {
		dir = "."
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
