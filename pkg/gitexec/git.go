package gitexec

import (
	"context"
	"strconv"
	"strings"

	"github.com/warptools/fwsetup/fsapi"
)

// Git issues the specific git invocations the setup process needs.
// Every method treats a non-zero exit as an error.
type Git struct {
	Runner Runner
}

func New(r Runner) Git {
	return Git{Runner: r}
}

func (g Git) run(ctx context.Context, dir string, args ...string) (Result, error) {
	res, err := g.Runner.Run(ctx, Command{Dir: dir, Args: args})
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, fsapi.ErrorGitCommand(args, strconv.Itoa(res.ExitCode), res.Stderr)
	}
	return res, nil
}

// Version returns the trimmed output of `git --version`.
//
// Errors:
//
//   - fwsetup-error-git-exec -- when git could not be run
//   - fwsetup-error-git-command -- when git exits non-zero
func (g Git) Version(ctx context.Context) (string, error) {
	res, err := g.run(ctx, "", "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// ResetHard runs `git reset --hard` in dir.
//
// Errors:
//
//   - fwsetup-error-git-exec -- when git could not be run
//   - fwsetup-error-git-command -- when git exits non-zero
func (g Git) ResetHard(ctx context.Context, dir string) error {
	_, err := g.run(ctx, dir, "reset", "--hard")
	return err
}

// Clean removes untracked and ignored files and directories in dir,
// including nested repositories, except for the excluded patterns.
//
// Errors:
//
//   - fwsetup-error-git-exec -- when git could not be run
//   - fwsetup-error-git-command -- when git exits non-zero
func (g Git) Clean(ctx context.Context, dir string, excludes ...string) error {
	args := []string{"clean", "-xffd"}
	for _, e := range excludes {
		args = append(args, "-e", e)
	}
	_, err := g.run(ctx, dir, args...)
	return err
}

// SubmoduleSync updates the remote URLs of the given submodules from .gitmodules.
//
// Errors:
//
//   - fwsetup-error-git-exec -- when git could not be run
//   - fwsetup-error-git-command -- when git exits non-zero
func (g Git) SubmoduleSync(ctx context.Context, dir string, paths []string) error {
	args := append([]string{"submodule", "sync", "--"}, paths...)
	_, err := g.run(ctx, dir, args...)
	return err
}

// Diff returns the trimmed output of `git diff <path>` run in dir.
// Empty output means the path is clean and points at the recorded commit.
//
// Errors:
//
//   - fwsetup-error-git-exec -- when git could not be run
//   - fwsetup-error-git-command -- when git exits non-zero
func (g Git) Diff(ctx context.Context, dir string, path string) (string, error) {
	res, err := g.run(ctx, dir, "diff", path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// UpdateOptions configures SubmoduleUpdate.
type UpdateOptions struct {
	Path      string
	Recursive bool
	// Reference is an object cache to borrow from. Ignored when empty.
	Reference string
}

// Args returns the git arguments for the update.
func (o UpdateOptions) Args() []string {
	args := []string{"submodule", "update", "--init"}
	if o.Recursive {
		args = append(args, "--recursive")
	}
	args = append(args, "--progress")
	if o.Reference != "" {
		args = append(args, "--reference", o.Reference)
	}
	return append(args, o.Path)
}

// SubmoduleUpdate initializes and checks out a single submodule.
//
// Errors:
//
//   - fwsetup-error-git-exec -- when git could not be run
//   - fwsetup-error-git-command -- when git exits non-zero
func (g Git) SubmoduleUpdate(ctx context.Context, dir string, opts UpdateOptions) error {
	_, err := g.run(ctx, dir, opts.Args()...)
	return err
}
