package fsapi

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/serum-errors/go-serum"
)

const (
	ECodeUnknown         = "fwsetup-error-unknown"
	ECodeInternal        = "fwsetup-error-internal"
	ECodeInitialization  = "fwsetup-error-initialization"
	ECodeArgument        = "fwsetup-error-invalid-argument"
	ECodeIo              = "fwsetup-error-io"
	ECodeSerialization   = "fwsetup-error-serialization"
	ECodeSearchingFs     = "fwsetup-error-searching-filesystem"
	ECodeSettingsInvalid = "fwsetup-error-settings-invalid"
	ECodeWorkspace       = "fwsetup-error-workspace"
	ECodeGitExec         = "fwsetup-error-git-exec"
	ECodeGitCommand      = "fwsetup-error-git-command"
	ECodeGitVersion      = "fwsetup-error-git-version"
	ECodeGitTooOld       = "fwsetup-error-git-too-old"
	ECodeCleanFailed     = "fwsetup-error-clean-failed"
	ECodeSyncFailed      = "fwsetup-error-sync-failed"
	ECodeFetchFailed     = "fwsetup-error-fetch-failed"
	ECodeSetupFailed     = "fwsetup-error-setup-failed"
)

// TerminalError emits an error on stdout as json, and halts immediately.
// Only meant for init-time failures, before any other output protocol exists.
func TerminalError(err serum.ErrorInterface, exitCode int) {
	json.NewEncoder(os.Stdout).Encode(struct {
		Error serum.ErrorInterface `json:"error"`
	}{err})
	os.Exit(exitCode)
}

// ErrorUnknown is returned when an unknown error occurs
//
// Errors:
//
//   - fwsetup-error-unknown --
func ErrorUnknown(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeUnknown, "%s: %w", msgTmpl, cause)
}

// ErrorInternal is for miscellaneous errors that should be handled internally.
// Can be used when an end user is not expected to have viable intervention strategies.
//
// Errors:
//
//   - fwsetup-error-internal --
func ErrorInternal(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeInternal, "%s: %w", msgTmpl, cause)
}

// ErrorInitialization is returned when the program cannot set itself up,
// such as when configured exporters or files cannot be created.
//
// Errors:
//
//   - fwsetup-error-initialization --
func ErrorInitialization(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeInitialization, "%s: %w", msgTmpl, cause)
}

// ErrorArgument is returned when a CLI argument or option is unusable.
//
// Errors:
//
//   - fwsetup-error-invalid-argument --
func ErrorArgument(name string, reason string) error {
	return serum.Error(ECodeArgument,
		serum.WithMessageTemplate("invalid argument {{name|q}}: {{reason}}"),
		serum.WithDetail("name", name),
		serum.WithDetail("reason", reason),
	)
}

// ErrorIo wraps generic I/O errors from the Go stdlib
//
// Errors:
//
//   - fwsetup-error-io --
func ErrorIo(context string, path string, cause error) error {
	result := serum.Errorf(ECodeIo, "io error: %s: %w", context, cause)
	addDetails(result, [][2]string{{"context", context}, {"path", path}})
	return result
}

// ErrorSerialization is returned when a serialization or deserialization error occurs
//
// Errors:
//
//   - fwsetup-error-serialization --
func ErrorSerialization(context string, cause error) error {
	result := serum.Errorf(ECodeSerialization, "serialization error: %s: %w", context, cause)
	addDetails(result, [][2]string{
		{"context", context},
	})
	return result
}

// ErrorSearchingFilesystem is returned when an error occurs during search
//
// Errors:
//
//   - fwsetup-error-searching-filesystem --
func ErrorSearchingFilesystem(searchingFor string, cause error) error {
	result := serum.Errorf(ECodeSearchingFs,
		"error while searching filesystem for %s: %w", searchingFor, cause)
	addDetails(result, [][2]string{
		{"searchingFor", searchingFor},
	})
	return result
}

// ErrorSettingsInvalid is returned when a settings file or provider yields unusable data.
//
// Errors:
//
//   - fwsetup-error-settings-invalid --
func ErrorSettingsInvalid(source string, reason string) error {
	return serum.Error(ECodeSettingsInvalid,
		serum.WithMessageTemplate("invalid settings from {{source|q}}: {{reason}}"),
		serum.WithDetail("source", source),
		serum.WithDetail("reason", reason),
	)
}

// ErrorWorkspace is returned when the workspace root cannot be determined or used.
//
// Errors:
//
//   - fwsetup-error-workspace --
func ErrorWorkspace(wsPath string, reason string) error {
	return serum.Error(ECodeWorkspace,
		serum.WithMessageTemplate("workspace {{workspacePath|q}} unusable: {{reason}}"),
		serum.WithDetail("workspacePath", wsPath),
		serum.WithDetail("reason", reason),
	)
}

// ErrorGitExec is returned when the git binary could not be started at all.
//
// Errors:
//
//   - fwsetup-error-git-exec --
func ErrorGitExec(args []string, cause error) error {
	result := serum.Errorf(ECodeGitExec, "could not run git %s: %w", strings.Join(args, " "), cause)
	addDetails(result, [][2]string{
		{"args", strings.Join(args, " ")},
	})
	return result
}

// ErrorGitCommand is returned when a git invocation exits non-zero.
//
// Errors:
//
//   - fwsetup-error-git-command --
func ErrorGitCommand(args []string, exitCode string, stderr string) error {
	return serum.Error(ECodeGitCommand,
		serum.WithMessageTemplate("git {{args}} exited with code {{exitCode}}: {{stderr}}"),
		serum.WithDetail("args", strings.Join(args, " ")),
		serum.WithDetail("exitCode", exitCode),
		serum.WithDetail("stderr", strings.TrimSpace(stderr)),
	)
}

// ErrorGitVersion is returned when the output of `git --version` cannot be understood.
//
// Errors:
//
//   - fwsetup-error-git-version --
func ErrorGitVersion(output string, reason string) error {
	return serum.Error(ECodeGitVersion,
		serum.WithMessageTemplate("cannot parse git version from {{output|q}}: {{reason}}"),
		serum.WithDetail("output", output),
		serum.WithDetail("reason", reason),
	)
}

// ErrorGitTooOld is returned when the installed git is older than the supported minimum.
//
// Errors:
//
//   - fwsetup-error-git-too-old --
func ErrorGitTooOld(current string, minimum string) error {
	return serum.Error(ECodeGitTooOld,
		serum.WithMessageTemplate("Please upgrade Git! Current version is {{current}}. Minimum is {{minimum}}."),
		serum.WithDetail("current", current),
		serum.WithDetail("minimum", minimum),
	)
}

// ErrorCleanFailed is returned when the force-clean stage fails.
//
// Errors:
//
//   - fwsetup-error-clean-failed --
func ErrorCleanFailed(path string, cause error) error {
	result := serum.Errorf(ECodeCleanFailed, "error while trying to clean %q: %w", path, cause)
	addDetails(result, [][2]string{
		{"path", path},
	})
	return result
}

// ErrorSyncFailed is returned when `git submodule sync` fails.
//
// Errors:
//
//   - fwsetup-error-sync-failed --
func ErrorSyncFailed(paths []string, cause error) error {
	result := serum.Errorf(ECodeSyncFailed, "error while trying to synchronize submodules: %w", cause)
	addDetails(result, [][2]string{
		{"paths", strings.Join(paths, " ")},
	})
	return result
}

// ErrorFetchFailed is returned when a single submodule could not be checked out.
//
// Errors:
//
//   - fwsetup-error-fetch-failed --
func ErrorFetchFailed(path string, cause error) error {
	result := serum.Errorf(ECodeFetchFailed, "unable to checkout submodule %q: %w", path, cause)
	addDetails(result, [][2]string{
		{"path", path},
	})
	return result
}

// ErrorSetupFailed is returned by the setup command when the run did not fully succeed.
//
// Errors:
//
//   - fwsetup-error-setup-failed --
func ErrorSetupFailed(outcome string, failures int, cause error) error {
	if cause != nil {
		return serum.Errorf(ECodeSetupFailed, "setup %s: %w", outcome, cause)
	}
	return serum.Errorf(ECodeSetupFailed, "setup %s: %d submodule(s) failed", outcome, failures)
}

// addDetails works around serum.Errorf not accepting details directly.
func addDetails(err error, details [][2]string) {
	s := err.(*serum.ErrorValue)
	s.Data.Details = append(s.Data.Details, details...)
}
