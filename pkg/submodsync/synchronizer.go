// Package submodsync brings the required submodules of a workspace into a buildable state.
//
// A run checks the git version, optionally force-cleans the workspace,
// syncs submodule URLs, and then initializes or updates each submodule in turn.
// Failures of the first three stages end the run.
// A failure to fetch one submodule is recorded and the remaining submodules are still processed.
package submodsync

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/serum-errors/go-serum"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/fwsetup/fsapi"
	"github.com/warptools/fwsetup/pkg/gitexec"
	"github.com/warptools/fwsetup/pkg/logging"
	"github.com/warptools/fwsetup/pkg/tracing"
	"github.com/warptools/fwsetup/pkg/versions"
)

// GitVersionName is the name git's version is reported under.
const GitVersionName = "Git"

// Config describes a single run.
type Config struct {
	WorkspaceRoot string
	// Submodules are processed in order.
	Submodules []fsapi.RequiredSubmodule
	// Force cleans the workspace first and fetches every submodule regardless of local changes.
	Force bool
	// Omnicache is an object cache passed to git as a reference. Ignored when empty or missing on disk.
	Omnicache string
	// ProtectedFiles are workspace-relative paths the force-clean of the root must keep,
	// typically the log files being written by this run.
	ProtectedFiles []string
}

// Synchronizer runs the setup stages against a git binary.
type Synchronizer struct {
	Git      gitexec.Git
	Reporter versions.Reporter
}

// New returns a Synchronizer issuing git commands through r and reporting the git version to reporter.
// A nil reporter discards reports.
func New(r gitexec.Runner, reporter versions.Reporter) *Synchronizer {
	if reporter == nil {
		reporter = versions.NewAggregator()
	}
	return &Synchronizer{Git: gitexec.New(r), Reporter: reporter}
}

// Synchronize performs the run described by cfg.
// All problems are reported through the Result; see Result.Err.
func (s *Synchronizer) Synchronize(ctx context.Context, cfg Config) Result {
	ctx, span := tracing.Start(ctx, "synchronize", trace.WithAttributes(
		attribute.String(tracing.AttrKeyFwsetupWorkspace, cfg.WorkspaceRoot),
		attribute.Bool(tracing.AttrKeyFwsetupForce, cfg.Force),
	))
	result := s.synchronize(ctx, cfg)
	tracing.EndWithStatus(span, result.Err())
	return result
}

func (s *Synchronizer) synchronize(ctx context.Context, cfg Config) Result {
	log := logging.Ctx(ctx)

	if err := s.checkGitVersion(ctx); err != nil {
		log.Error("", "%s", err)
		return Result{Outcome: OutcomeFatal, Reason: err}
	}

	if cfg.Force {
		if err := s.forceClean(ctx, cfg); err != nil {
			log.Error("", "FAILED!")
			log.Error("", "Error while trying to clean the environment!")
			log.Error("", "%s", err)
			return Result{Outcome: OutcomeFatal, Reason: err}
		}
	}

	result := Result{Outcome: OutcomeOk, Submodules: []SubmoduleResult{}}
	if len(cfg.Submodules) == 0 {
		return result
	}

	if err := s.sync(ctx, cfg); err != nil {
		log.Error("", "FAILED!")
		log.Error("", "Error while trying to synchronize the environment!")
		log.Error("", "%s", err)
		return Result{Outcome: OutcomeFatal, Reason: err}
	}

	reference := cfg.Omnicache
	if reference != "" {
		if _, err := os.Stat(reference); err != nil {
			reference = ""
		}
	}

	for _, sub := range cfg.Submodules {
		sr := s.processSubmodule(ctx, cfg, sub, reference)
		if sr.Status == StatusFailed {
			log.Error("", "FAILED!")
			log.Error("", "Failed to fetch required repository!")
			log.Error("", "%s", sr.Err)
			result.Outcome = OutcomePartial
		}
		result.Submodules = append(result.Submodules, sr)
	}
	return result
}

// checkGitVersion reports the installed git version and verifies it is new enough.
//
// Errors:
//
//   - fwsetup-error-git-exec -- when git could not be run
//   - fwsetup-error-git-command -- when `git --version` exits non-zero
//   - fwsetup-error-git-version -- when the version cannot be parsed
//   - fwsetup-error-git-too-old -- when git is older than gitexec.MinimumVersion
func (s *Synchronizer) checkGitVersion(ctx context.Context) (err error) {
	ctx, span := tracing.Start(ctx, "check git version")
	defer func() { tracing.EndWithStatus(span, err) }()

	output, err := s.Git.Version(ctx)
	if err != nil {
		return err
	}
	s.Reporter.ReportVersion(GitVersionName, output, versions.CategoryTool)
	current, err := gitexec.ParseVersion(output)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Debug("", "git version %s (minimum %s)", current, gitexec.MinimumVersion)
	return gitexec.CheckMinimum(current)
}

// forceClean resets and cleans the workspace root and then every submodule.
//
// Errors:
//
//   - fwsetup-error-clean-failed -- when any reset or clean fails
func (s *Synchronizer) forceClean(ctx context.Context, cfg Config) (err error) {
	ctx, span := tracing.Start(ctx, "force clean")
	defer func() { tracing.EndWithStatus(span, err) }()
	log := logging.Ctx(ctx)

	log.Progress("## Cleaning the root repo...")
	if err := s.Git.ResetHard(ctx, cfg.WorkspaceRoot); err != nil {
		return fsapi.ErrorCleanFailed(cfg.WorkspaceRoot, err)
	}
	if err := s.Git.Clean(ctx, cfg.WorkspaceRoot, cfg.ProtectedFiles...); err != nil {
		return fsapi.ErrorCleanFailed(cfg.WorkspaceRoot, err)
	}
	log.Progress("Done.")

	for _, sub := range cfg.Submodules {
		log.Progress("## Cleaning Git repository: %s...", sub.Path)
		dir := resolve(cfg.WorkspaceRoot, sub.Path)
		if err := s.Git.ResetHard(ctx, dir); err != nil {
			return fsapi.ErrorCleanFailed(dir, err)
		}
		if err := s.Git.Clean(ctx, dir); err != nil {
			return fsapi.ErrorCleanFailed(dir, err)
		}
		log.Progress("Done.")
	}
	return nil
}

// sync aligns the submodule URLs with .gitmodules.
//
// Errors:
//
//   - fwsetup-error-sync-failed -- when `git submodule sync` fails
func (s *Synchronizer) sync(ctx context.Context, cfg Config) (err error) {
	ctx, span := tracing.Start(ctx, "sync")
	defer func() { tracing.EndWithStatus(span, err) }()

	paths := make([]string, 0, len(cfg.Submodules))
	for _, sub := range cfg.Submodules {
		paths = append(paths, sub.Path)
	}
	logging.Ctx(ctx).Progress("## Syncing Git repositories: %s...", strings.Join(paths, " "))
	if err := s.Git.SubmoduleSync(ctx, cfg.WorkspaceRoot, paths); err != nil {
		return fsapi.ErrorSyncFailed(paths, err)
	}
	logging.Ctx(ctx).Progress("Done.")
	return nil
}

// processSubmodule skips a dirty submodule or fetches it. It never stops the run.
func (s *Synchronizer) processSubmodule(ctx context.Context, cfg Config, sub fsapi.RequiredSubmodule, reference string) (sr SubmoduleResult) {
	ctx, span := tracing.Start(ctx, "submodule", trace.WithAttributes(
		attribute.String(tracing.AttrKeyFwsetupSubmodulePath, sub.Path),
	))
	defer func() { tracing.EndWithStatus(span, sr.Err) }()
	log := logging.Ctx(ctx)

	log.Progress("## Checking Git repository: %s...", sub.Path)
	sr = SubmoduleResult{Path: sub.Path}

	dirty := false
	if _, err := os.Stat(resolve(cfg.WorkspaceRoot, sub.Path)); err == nil && !cfg.Force {
		diff, err := s.Git.Diff(ctx, cfg.WorkspaceRoot, sub.Path)
		if err != nil {
			sr.Status, sr.Err = StatusFailed, fsapi.ErrorFetchFailed(sub.Path, err)
			return sr
		}
		if diff != "" {
			log.Info("", "-- NOTE: Repo currently exists and appears to have local changes!")
			log.Info("", "-- Skipping fetch!")
			dirty = true
		}
	}

	if dirty && !cfg.Force {
		sr.Status = StatusSkipped
		log.Progress("Done.")
		return sr
	}

	log.Info("", "## Fetching repo.")
	err := s.Git.SubmoduleUpdate(ctx, cfg.WorkspaceRoot, gitexec.UpdateOptions{
		Path:      sub.Path,
		Recursive: sub.IsRecursive(),
		Reference: reference,
	})
	if err != nil {
		if serum.Code(err) == fsapi.ECodeGitCommand {
			log.Error("", "Failed to fetch %s", sub.Path)
		}
		sr.Status, sr.Err = StatusFailed, fsapi.ErrorFetchFailed(sub.Path, err)
		return sr
	}
	sr.Status = StatusFetched
	log.Progress("Done.")
	return sr
}

func resolve(root, path string) string {
	return filepath.Clean(filepath.Join(root, filepath.FromSlash(path)))
}
