package gitexec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/fwsetup/fsapi"
	"github.com/warptools/fwsetup/pkg/logging"
	"github.com/warptools/fwsetup/pkg/tracing"
)

const LOG_TAG = "git"

// Command is a single invocation of the git binary.
type Command struct {
	Dir  string
	Args []string
}

func (c Command) String() string {
	return "git " + strings.Join(c.Args, " ")
}

// Result holds the captured output of a completed invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes git commands.
//
// Run returns an error only when the process could not be run at all.
// A process that ran and exited non-zero is reported through Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs a git binary as a subprocess.
type ExecRunner struct {
	// Path of the git binary. Looked up on PATH if it has no separators.
	Path string
}

// NewExecRunner returns a runner for the given binary, defaulting to "git".
func NewExecRunner(path string) *ExecRunner {
	if path == "" {
		path = "git"
	}
	return &ExecRunner{Path: path}
}

// Run executes the command, capturing stdout and stderr.
// Stderr is additionally streamed to the debug log as it arrives, since git writes progress there.
//
// Errors:
//
//   - fwsetup-error-git-exec -- when the binary could not be started or the context ended
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (result Result, err error) {
	log := logging.Ctx(ctx)
	ctx, span := tracing.Start(ctx, cmd.String(), trace.WithAttributes(
		tracing.AttrFullExecNameGit,
		attribute.StringSlice(tracing.AttrKeyFwsetupExecArgs, cmd.Args),
	))
	defer func() { tracing.EndWithStatus(span, err) }()

	log.Debug(LOG_TAG, "%s (in %s)", cmd, cmd.Dir)

	c := exec.CommandContext(ctx, r.Path, cmd.Args...)
	c.Dir = cmd.Dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = io.MultiWriter(&stderr, log.DebugWriter(LOG_TAG))

	runErr := c.Run()
	result = Result{
		ExitCode: c.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) || ctx.Err() != nil {
			return result, fsapi.ErrorGitExec(cmd.Args, runErr)
		}
	}
	span.SetAttributes(attribute.Int(tracing.AttrKeyFwsetupExecExitCode, result.ExitCode))
	if result.ExitCode != 0 {
		log.Debug(LOG_TAG, "exited with code %d", result.ExitCode)
	}
	return result, nil
}
