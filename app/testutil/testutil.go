package testutil

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"
	"github.com/warpfork/go-testmark"
	"github.com/warpfork/go-testmark/testexec"

	fsapp "github.com/warptools/fwsetup/app"
	"github.com/warptools/fwsetup/pkg/config"
	"github.com/warptools/fwsetup/pkg/testutil"
)

type tagset map[string]struct{}

func newTagSet(tags ...string) tagset {
	result := tagset(make(map[string]struct{}))
	for _, s := range tags {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		result[s] = struct{}{}
	}
	return result
}

func (t tagset) has(tag string) bool {
	if t == nil {
		return false
	}
	_, ok := t[tag]
	return ok
}

// TestFileContainingTestmarkexec runs every top-level testmark dir in the file as a testexec sequence.
// Lines starting with "fwsetup" run the CLI in-process; lines starting with "git" run the real git binary
// and are only allowed in tests tagged "git".
func TestFileContainingTestmarkexec(t *testing.T, fileName string) {
	t.Logf("loading test file: %q", fileName)
	doc, err := testmark.ReadFile(fileName)
	if err != nil {
		t.Fatalf("testmark file parse failed?!: %s", err)
	}

	doc.BuildDirIndex()
	patches := testmark.PatchAccumulator{}
	defer func() {
		if *testmark.Regen {
			patches.WriteFileWithPatches(doc, fileName)
		}
	}()
	for _, dir := range doc.DirEnt.ChildrenList {
		testName := dir.Name
		testDir := dir
		tags := getTags(testDir)
		if tags != nil {
			if len(testDir.Children) != 1 {
				t.Run(testName, func(t *testing.T) {
					t.Fatal("tagged tests must place children after the /tags=.../ dir")
				})
				continue
			}
			testDir = testDir.ChildrenList[0]
			testName = testName + "/" + testDir.Name
		}
		t.Run(testName, func(t *testing.T) {
			isolate(t)
			if tags.has("git") {
				testutil.RequireGit(t)
				testutil.IsolateGit(t)
				xdg.Reload()
			}
			test := testexec.Tester{
				ExecFn:   buildExecFn(t, tags.has("git")),
				Patches:  &patches,
				AssertFn: assertFn,
			}
			test.Test(t, testDir)
		})
	}
}

// getTags will return the tagset for the first child it finds with the prefix `tags=`
// The tags following the prefix are expected to be comma separated strings.
func getTags(dir *testmark.DirEnt) tagset {
	for _, child := range dir.ChildrenList {
		if strings.HasPrefix(child.Name, "tags=") {
			return newTagSet(strings.Split(child.Name[len("tags="):], ",")...)
		}
	}
	return nil
}

// isolate keeps the user's own configuration and environment out of the CLI under test.
func isolate(t *testing.T) {
	// Registered first so it runs after the environment is restored.
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvOmnicachePath, "")
	t.Setenv(config.EnvFwsetupDebug, "")
	t.Setenv(config.EnvFwsetupGit, "")
	xdg.Reload()
}

// Replace non-deterministic values of the JSON setup record to allow for deterministic comparison
func cleanOutput(str string) string {
	// replace guid
	matcher := regexp.MustCompile(`"guid": ?"[a-zA-Z0-9]{8}-[a-zA-Z0-9]{4}-[a-zA-Z0-9]{4}-[a-zA-Z0-9]{4}-[a-zA-Z0-9]{12}"`)
	str = matcher.ReplaceAllString(str, `"guid": "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"`)

	// replace time
	matcher = regexp.MustCompile(`"time": ?[0-9]+`)
	str = matcher.ReplaceAllString(str, `"time": 22222222222`)

	// return value with whitespace trimmed
	return strings.TrimSpace(str)
}

// Warning!  Impure function!  Cannot safely be used in parallel!
// This mutates the CLI app object to wire the IO streams.
// Also, it uses `os.Chdir` on this process (because we're "emulating a shell" rather than making subprocesses, whee).
func buildExecFn(t *testing.T, allowGit bool) func([]string, io.Reader, io.Writer, io.Writer) (int, error) {
	return func(args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
		bufout, buferr := &bytes.Buffer{}, &bytes.Buffer{}
		var testout io.Writer = bufout
		if stdout != nil {
			testout = io.MultiWriter(stdout, bufout)
		}
		var testerr io.Writer = buferr
		if stderr != nil {
			testerr = io.MultiWriter(stderr, buferr)
		}

		switch args[0] {
		case "cd":
			if err := os.Chdir(args[1]); err != nil {
				return 1, err
			}
			return 0, nil
		case "git":
			if !allowGit {
				t.Fatalf("test runs git but is not tagged with tags=git")
			}
			cmd := exec.Command(args[0], args[1:]...)
			cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, testout, testerr
			if err := cmd.Run(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					return exitErr.ExitCode(), nil
				}
				return 0, err
			}
			return 0, nil
		case "fwsetup":
		default:
			t.Fatalf("unknown command %q in sequence", args[0])
		}

		// The working directory and environment changed since the process started.
		qt.Assert(t, config.ReloadGlobalState(), qt.IsNil)
		wd, err := os.Getwd()
		if err != nil {
			panic("failed to find working directory")
		}
		t.Log("╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱╲╱")
		t.Logf("Working Directory: %q", wd)

		fsapp.App.Reader = stdin
		fsapp.App.Writer = testout
		fsapp.App.ErrWriter = testerr
		err = fsapp.App.Run(args)

		exitCode := 0
		if err != nil {
			exitCode = 1
		}

		t.Logf("Args: %v", args)
		for err != nil {
			t.Logf("Code: %s", serum.Code(err))
			t.Logf("Message: %s", serum.Message(err))
			t.Logf("Details: %v", serum.Details(err))
			err = errors.Unwrap(err)
			if err != nil {
				t.Logf("caused by:")
			}
		}
		t.Logf("==============")
		t.Logf("⌄⌄⌄ stdout ⌄⌄⌄\n%s", bufout.String())
		t.Logf("⌃⌃⌃ stdout ⌃⌃⌃")
		t.Logf("==============")
		t.Logf("⌄⌄⌄ stderr ⌄⌄⌄\n%s", buferr.String())
		t.Logf("⌃⌃⌃ stderr ⌃⌃⌃")
		t.Logf("==============")
		return exitCode, nil
	}
}

func assertFn(t *testing.T, actual, expect string) {
	actual = cleanOutput(actual)
	expect = cleanOutput(expect)
	qt.Assert(t, actual, qt.Equals, expect)
}
