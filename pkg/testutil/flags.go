package testutil

import (
	"flag"
	"os/exec"
	"testing"
)

var FlagGitIntegration = flag.Bool("testutil.git", false, "Run tests that execute the real git binary")

// RequireGit skips the test unless -testutil.git is set and git is on PATH.
func RequireGit(t testing.TB) string {
	t.Helper()
	if !*FlagGitIntegration {
		t.Skip("git integration tests disabled; enable with -testutil.git")
	}
	path, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git not found on PATH")
	}
	return path
}

// IsolateGit sets up the environment so git run by the test ignores user and system configuration,
// can commit, and may clone submodules from local paths.
func IsolateGit(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	for k, v := range map[string]string{
		"HOME":                home,
		"XDG_CONFIG_HOME":     home,
		"GIT_CONFIG_NOSYSTEM": "1",
		"GIT_AUTHOR_NAME":     "fwsetup test",
		"GIT_AUTHOR_EMAIL":    "fwsetup@example.invalid",
		"GIT_COMMITTER_NAME":  "fwsetup test",
		"GIT_COMMITTER_EMAIL": "fwsetup@example.invalid",
		"GIT_CONFIG_COUNT":    "2",
		"GIT_CONFIG_KEY_0":    "protocol.file.allow",
		"GIT_CONFIG_VALUE_0":  "always",
		"GIT_CONFIG_KEY_1":    "init.defaultBranch",
		"GIT_CONFIG_VALUE_1":  "main",
	} {
		t.Setenv(k, v)
	}
}
