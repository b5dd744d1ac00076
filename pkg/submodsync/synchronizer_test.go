package submodsync

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/fwsetup/fsapi"
	"github.com/warptools/fwsetup/pkg/gitexec"
	"github.com/warptools/fwsetup/pkg/logging"
	"github.com/warptools/fwsetup/pkg/versions"
)

// scriptedRunner answers git commands from a table keyed by the joined argument list.
// Unlisted commands succeed with no output.
type scriptedRunner struct {
	version string
	script  map[string]gitexec.Result
	calls   []gitexec.Command
}

func newScriptedRunner(version string) *scriptedRunner {
	return &scriptedRunner{version: version, script: map[string]gitexec.Result{}}
}

func (r *scriptedRunner) Run(ctx context.Context, cmd gitexec.Command) (gitexec.Result, error) {
	r.calls = append(r.calls, cmd)
	key := strings.Join(cmd.Args, " ")
	if key == "--version" {
		return gitexec.Result{Stdout: "git version " + r.version + "\n"}, nil
	}
	return r.script[key], nil
}

func (r *scriptedRunner) commands() []string {
	var result []string
	for _, c := range r.calls {
		result = append(result, strings.Join(c.Args, " "))
	}
	return result
}

func (r *scriptedRunner) count(prefix string) int {
	n := 0
	for _, c := range r.commands() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type recordingReporter struct {
	reports []versions.Entry
}

func (r *recordingReporter) ReportVersion(name, version string, category versions.Category) {
	r.reports = append(r.reports, versions.Entry{Name: name, Version: version, Category: category})
}

func testContext(t *testing.T) (context.Context, *bytes.Buffer) {
	var errOut bytes.Buffer
	logger := logging.NewLogger(&bytes.Buffer{}, &errOut, false, false, true)
	return logger.WithContext(context.Background()), &errOut
}

// workspace creates a workspace root in which the given submodule directories exist.
func workspace(t *testing.T, existing ...string) string {
	root := t.TempDir()
	for _, p := range existing {
		qt.Assert(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(p)), 0755), qt.IsNil)
	}
	return root
}

func subs(paths ...string) []fsapi.RequiredSubmodule {
	result := make([]fsapi.RequiredSubmodule, 0, len(paths))
	for _, p := range paths {
		result = append(result, fsapi.RequiredSubmodule{Path: p})
	}
	return result
}

func TestEmptyListSkipsSyncAndFetch(t *testing.T) {
	ctx, _ := testContext(t)
	r := newScriptedRunner("2.39.2")
	result := New(r, nil).Synchronize(ctx, Config{WorkspaceRoot: workspace(t), Submodules: subs()})

	qt.Check(t, result.Outcome, qt.Equals, OutcomeOk)
	qt.Check(t, result.Code(), qt.Equals, 0)
	qt.Check(t, result.Err(), qt.IsNil)
	qt.Check(t, r.commands(), qt.DeepEquals, []string{"--version"})
}

func TestGitTooOldAbortsBeforeAnythingElse(t *testing.T) {
	ctx, errOut := testContext(t)
	r := newScriptedRunner("2.10.0")
	reporter := &recordingReporter{}
	result := New(r, reporter).Synchronize(ctx, Config{
		WorkspaceRoot: workspace(t, "A"),
		Submodules:    subs("A", "B"),
		Force:         true,
	})

	qt.Check(t, result.Outcome, qt.Equals, OutcomeFatal)
	qt.Check(t, result.Code(), qt.Equals, -1)
	qt.Check(t, serum.Code(result.Reason), qt.Equals, fsapi.ECodeGitTooOld)
	qt.Check(t, r.commands(), qt.DeepEquals, []string{"--version"})
	qt.Check(t, reporter.reports, qt.DeepEquals, []versions.Entry{
		{Name: "Git", Version: "git version 2.10.0", Category: versions.CategoryTool},
	})
	qt.Check(t, errOut.String(), qt.Contains, "Please upgrade Git! Current version is 2.10.0. Minimum is 2.11.0.")
}

func TestGitVersionReportedOnce(t *testing.T) {
	ctx, _ := testContext(t)
	reporter := &recordingReporter{}
	New(newScriptedRunner("2.39.2"), reporter).Synchronize(ctx, Config{
		WorkspaceRoot: workspace(t),
		Submodules:    subs("A"),
	})
	qt.Check(t, reporter.reports, qt.DeepEquals, []versions.Entry{
		{Name: "Git", Version: "git version 2.39.2", Category: versions.CategoryTool},
	})
}

func TestDirtySubmoduleIsSkipped(t *testing.T) {
	ctx, errOut := testContext(t)
	r := newScriptedRunner("2.39.2")
	r.script["diff A"] = gitexec.Result{Stdout: "diff --git a/A b/A\n-Subproject commit 1111\n+Subproject commit 2222\n"}
	root := workspace(t, "A", "C")

	result := New(r, nil).Synchronize(ctx, Config{WorkspaceRoot: root, Submodules: subs("A", "B", "C")})

	qt.Check(t, result.Outcome, qt.Equals, OutcomeOk)
	qt.Check(t, result.Code(), qt.Equals, 0)
	qt.Check(t, r.commands(), qt.DeepEquals, []string{
		"--version",
		"submodule sync -- A B C",
		"diff A",
		"submodule update --init --recursive --progress B",
		"diff C",
		"submodule update --init --recursive --progress C",
	})
	qt.Check(t, result.Submodules, qt.DeepEquals, []SubmoduleResult{
		{Path: "A", Status: StatusSkipped},
		{Path: "B", Status: StatusFetched},
		{Path: "C", Status: StatusFetched},
	})
	qt.Check(t, errOut.String(), qt.Contains, "-- NOTE: Repo currently exists and appears to have local changes!")
	qt.Check(t, errOut.String(), qt.Contains, "-- Skipping fetch!")
	// The version query runs wherever the process is; everything after it runs in the root.
	qt.Assert(t, r.calls[0].Args, qt.DeepEquals, []string{"--version"})
	for _, c := range r.calls[1:] {
		qt.Check(t, c.Dir, qt.Equals, root)
	}
}

func TestForceCleansThenFetchesEverything(t *testing.T) {
	ctx, _ := testContext(t)
	r := newScriptedRunner("2.39.2")
	r.script["diff A"] = gitexec.Result{Stdout: "dirty"}
	root := workspace(t, "A", "Nested/B")

	result := New(r, nil).Synchronize(ctx, Config{
		WorkspaceRoot:  root,
		Submodules:     subs("A", "Nested/B", "Missing"),
		Force:          true,
		ProtectedFiles: []string{"Build/SETUPLOG.txt", "Build/SETUPLOG.md"},
	})

	qt.Check(t, result.Outcome, qt.Equals, OutcomeOk)
	qt.Check(t, r.count("diff"), qt.Equals, 0)
	qt.Check(t, r.commands(), qt.DeepEquals, []string{
		"--version",
		"reset --hard",
		"clean -xffd -e Build/SETUPLOG.txt -e Build/SETUPLOG.md",
		"reset --hard",
		"clean -xffd",
		"reset --hard",
		"clean -xffd",
		"reset --hard",
		"clean -xffd",
		"submodule sync -- A Nested/B Missing",
		"submodule update --init --recursive --progress A",
		"submodule update --init --recursive --progress Nested/B",
		"submodule update --init --recursive --progress Missing",
	})
	qt.Check(t, r.calls[1].Dir, qt.Equals, root)
	qt.Check(t, r.calls[3].Dir, qt.Equals, filepath.Join(root, "A"))
	qt.Check(t, r.calls[5].Dir, qt.Equals, filepath.Join(root, "Nested", "B"))
	for _, sr := range result.Submodules {
		qt.Check(t, sr.Status, qt.Equals, StatusFetched)
	}
}

func TestFetchFailureIsIsolated(t *testing.T) {
	ctx, errOut := testContext(t)
	r := newScriptedRunner("2.39.2")
	r.script["submodule update --init --recursive --progress A"] = gitexec.Result{ExitCode: 1, Stderr: "fatal: repository not found"}

	result := New(r, nil).Synchronize(ctx, Config{WorkspaceRoot: workspace(t), Submodules: subs("A", "B")})

	qt.Check(t, result.Outcome, qt.Equals, OutcomePartial)
	qt.Check(t, result.Code(), qt.Equals, -1)
	qt.Check(t, r.count("submodule update"), qt.Equals, 2)
	qt.Assert(t, result.Submodules, qt.HasLen, 2)
	qt.Check(t, result.Submodules[0].Status, qt.Equals, StatusFailed)
	qt.Check(t, serum.Code(result.Submodules[0].Err), qt.Equals, fsapi.ECodeFetchFailed)
	qt.Check(t, result.Submodules[1], qt.DeepEquals, SubmoduleResult{Path: "B", Status: StatusFetched})
	qt.Check(t, result.Failures(), qt.HasLen, 1)
	qt.Check(t, serum.Code(result.Err()), qt.Equals, fsapi.ECodeSetupFailed)

	qt.Check(t, errOut.String(), qt.Contains, "Failed to fetch A")
	qt.Check(t, errOut.String(), qt.Contains, "Failed to fetch required repository!")

	records := result.SubmoduleRecords()
	qt.Assert(t, records, qt.HasLen, 2)
	qt.Assert(t, records[0].Reason, qt.Not(qt.IsNil))
	qt.Check(t, *records[0].Reason, qt.Contains, "fatal: repository not found")
	qt.Check(t, records[1].Reason, qt.IsNil)
}

func TestDiffFailureIsIsolated(t *testing.T) {
	ctx, _ := testContext(t)
	r := newScriptedRunner("2.39.2")
	r.script["diff A"] = gitexec.Result{ExitCode: 128}

	result := New(r, nil).Synchronize(ctx, Config{WorkspaceRoot: workspace(t, "A"), Submodules: subs("A", "B")})

	qt.Check(t, result.Outcome, qt.Equals, OutcomePartial)
	qt.Check(t, r.commands(), qt.DeepEquals, []string{
		"--version",
		"submodule sync -- A B",
		"diff A",
		"submodule update --init --recursive --progress B",
	})
}

func TestCleanFailureIsFatal(t *testing.T) {
	ctx, errOut := testContext(t)
	r := newScriptedRunner("2.39.2")
	r.script["reset --hard"] = gitexec.Result{ExitCode: 128, Stderr: "fatal: not a git repository"}

	result := New(r, nil).Synchronize(ctx, Config{WorkspaceRoot: workspace(t), Submodules: subs("A"), Force: true})

	qt.Check(t, result.Outcome, qt.Equals, OutcomeFatal)
	qt.Check(t, result.Code(), qt.Equals, -1)
	qt.Check(t, serum.Code(result.Reason), qt.Equals, fsapi.ECodeCleanFailed)
	qt.Check(t, result.Submodules, qt.HasLen, 0)
	qt.Check(t, r.commands(), qt.DeepEquals, []string{"--version", "reset --hard"})
	qt.Check(t, errOut.String(), qt.Contains, "Error while trying to clean the environment!")
}

func TestSyncFailureIsFatal(t *testing.T) {
	ctx, errOut := testContext(t)
	r := newScriptedRunner("2.39.2")
	r.script["submodule sync -- A B"] = gitexec.Result{ExitCode: 1}

	result := New(r, nil).Synchronize(ctx, Config{WorkspaceRoot: workspace(t), Submodules: subs("A", "B")})

	qt.Check(t, result.Outcome, qt.Equals, OutcomeFatal)
	qt.Check(t, serum.Code(result.Reason), qt.Equals, fsapi.ECodeSyncFailed)
	qt.Check(t, r.count("submodule update"), qt.Equals, 0)
	qt.Check(t, errOut.String(), qt.Contains, "Error while trying to synchronize the environment!")
}

func TestOmnicacheReference(t *testing.T) {
	cache := t.TempDir()
	for _, tt := range []struct {
		name      string
		omnicache string
		expect    string
	}{
		{"unset", "", "submodule update --init --recursive --progress A"},
		{"missing", filepath.Join(cache, "nope"), "submodule update --init --recursive --progress A"},
		{"present", cache, "submodule update --init --recursive --progress --reference " + cache + " A"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := testContext(t)
			r := newScriptedRunner("2.39.2")
			result := New(r, nil).Synchronize(ctx, Config{
				WorkspaceRoot: workspace(t),
				Submodules:    subs("A"),
				Omnicache:     tt.omnicache,
			})
			qt.Check(t, result.Outcome, qt.Equals, OutcomeOk)
			qt.Check(t, r.commands()[len(r.calls)-1], qt.Equals, tt.expect)
		})
	}
}

func TestNonRecursiveSubmodule(t *testing.T) {
	ctx, _ := testContext(t)
	r := newScriptedRunner("2.39.2")
	New(r, nil).Synchronize(ctx, Config{
		WorkspaceRoot: workspace(t),
		Submodules:    []fsapi.RequiredSubmodule{fsapi.NewRequiredSubmodule("A", false)},
	})
	qt.Check(t, r.commands()[len(r.calls)-1], qt.Equals, "submodule update --init --progress A")
}

func TestMissingPathFetchesWithoutDiff(t *testing.T) {
	ctx, _ := testContext(t)
	r := newScriptedRunner("2.39.2")
	result := New(r, nil).Synchronize(ctx, Config{WorkspaceRoot: workspace(t, "B"), Submodules: subs("A", "B")})

	qt.Check(t, result.Outcome, qt.Equals, OutcomeOk)
	qt.Check(t, r.commands(), qt.DeepEquals, []string{
		"--version",
		"submodule sync -- A B",
		"submodule update --init --recursive --progress A",
		"diff B",
		"submodule update --init --recursive --progress B",
	})
}
