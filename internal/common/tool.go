package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/parsererror"
)

// DefaultToolTimeout bounds a single external conversion.
const DefaultToolTimeout = 60 * time.Second

// ToolRunner runs an external conversion tool and returns its stdout.
type ToolRunner struct {
	Timeout time.Duration
	Logger  logging.Logger
}

// Run executes binary with args. A non-zero exit, a timeout or an empty
// stdout is reported as *parsererror.ExternalToolError.
func (r ToolRunner) Run(ctx context.Context, binary string, args ...string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...) // #nosec G204 -- binary comes from configuration
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	if r.Logger != nil {
		r.Logger.Debug("External tool finished",
			logging.Field{Key: logging.FieldTool, Value: binary},
			logging.Field{Key: logging.FieldDuration, Value: time.Since(start).String()})
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", timeout, ctx.Err())
		}
		return nil, &parsererror.ExternalToolError{Tool: binary, Args: args, Stderr: stderr.String(), Err: err}
	}
	if stdout.Len() == 0 {
		return nil, &parsererror.ExternalToolError{Tool: binary, Args: args, Stderr: stderr.String(), Err: errors.New("no output")}
	}
	return stdout.Bytes(), nil
}
