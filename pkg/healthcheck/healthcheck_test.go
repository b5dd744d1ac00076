package healthcheck

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	qt "github.com/frankban/quicktest"

	"github.com/warptools/fwsetup/pkg/gitexec"
)

func init() {
	color.NoColor = true
}

type fixedRunner struct {
	stdout string
	code   int
}

func (r fixedRunner) Run(ctx context.Context, cmd gitexec.Command) (gitexec.Result, error) {
	return gitexec.Result{Stdout: r.stdout, ExitCode: r.code}, nil
}

func TestGitVersionCheck(t *testing.T) {
	ctx := context.Background()
	for _, tt := range []struct {
		runner fixedRunner
		expect HealthCheckStatus
	}{
		{fixedRunner{stdout: "git version 2.39.2\n"}, StatusOkay},
		{fixedRunner{stdout: "git version 2.10.0\n"}, StatusFail},
		{fixedRunner{stdout: "not git\n"}, StatusFail},
		{fixedRunner{code: 127}, StatusFail},
	} {
		check := &GitVersionCheck{Git: gitexec.New(tt.runner)}
		qt.Check(t, Status(check.Run(ctx)), qt.Equals, tt.expect, qt.Commentf("output %q", tt.runner.stdout))
	}
}

func TestPathCheck(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	qt.Assert(t, os.WriteFile(file, nil, 0644), qt.IsNil)

	qt.Check(t, Status((&PathCheck{Label: "Workspace", Path: dir}).Run(ctx)), qt.Equals, StatusOkay)
	qt.Check(t, Status((&PathCheck{Label: "Workspace", Path: file}).Run(ctx)), qt.Equals, StatusFail)
	qt.Check(t, Status((&PathCheck{Label: "Workspace", Path: filepath.Join(dir, "nope")}).Run(ctx)), qt.Equals, StatusFail)
	qt.Check(t, Status((&PathCheck{Label: "Workspace"}).Run(ctx)), qt.Equals, StatusFail)
	qt.Check(t, Status((&PathCheck{Label: "Omnicache", Optional: true}).Run(ctx)), qt.Equals, StatusAmbiguous)
}

func TestBinCheckMissing(t *testing.T) {
	check := &BinCheck{Name: "fwsetup-definitely-not-a-binary"}
	qt.Check(t, Status(check.Run(context.Background())), qt.Equals, StatusFail)
}

func TestHealthCheckPrint(t *testing.T) {
	hc := &HealthCheck{
		Runners: []Runner{
			&PathCheck{Label: "Workspace", Path: t.TempDir()},
			&PathCheck{Label: "Omnicache", Optional: true},
			&GitVersionCheck{Git: gitexec.New(fixedRunner{stdout: "git version 2.10.0"})},
		},
	}
	var buf bytes.Buffer
	qt.Check(t, hc.Fprint(&buf), qt.Not(qt.IsNil))

	qt.Assert(t, hc.Run(context.Background()), qt.IsNil)
	qt.Assert(t, hc.Results, qt.HasLen, 3)
	qt.Check(t, hc.Failed(), qt.IsTrue)
	qt.Assert(t, hc.Fprint(&buf), qt.IsNil)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	qt.Assert(t, lines, qt.HasLen, 3)
	qt.Check(t, lines[0], qt.Contains, StatusCharacter_Okay)
	qt.Check(t, lines[1], qt.Contains, StatusCharacter_Ambiguous)
	qt.Check(t, lines[1], qt.Contains, "not set")
	qt.Check(t, lines[2], qt.Contains, StatusCharacter_Failure)
}
