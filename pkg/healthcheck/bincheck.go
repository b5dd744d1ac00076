package healthcheck

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/serum-errors/go-serum"
)

// BinCheck verifies that an executable can be found and run.
// Name is looked up on PATH unless it contains a path separator.
type BinCheck struct {
	Name string
}

func (c *BinCheck) String() string {
	return fmt.Sprintf("Binary Path Check: %q", c.Name)
}

func isExecutable(m fs.FileMode) bool {
	return m&0111 != 0
}

func isSymlink(m fs.FileMode) bool {
	return m&fs.ModeSymlink == fs.ModeSymlink
}

// Run checks that an executable can be found for the given executable name
// Errors:
//
//   - fwsetup-error-healthcheck-run-okay -- when the binary is found
//   - fwsetup-error-healthcheck-run-fail -- when the binary cannot be found or executed
func (c *BinCheck) Run(ctx context.Context) error {
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageTemplate("Could not find binary {{name|q}}"),
			serum.WithDetail("name", c.Name),
		)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageTemplate("Could not find binary at path {{path|q}}"),
			serum.WithDetail("path", path),
		)
	}
	mode := fi.Mode()
	if !mode.IsRegular() {
		return serum.Error(CodeRunFailure,
			serum.WithMessageTemplate("file {{path|q}} is not a regular file"),
			serum.WithDetail("path", path),
		)
	}
	if !isExecutable(mode) {
		return serum.Error(CodeRunFailure,
			serum.WithMessageTemplate("file {{path|q}} is not executable"),
			serum.WithDetail("path", path),
		)
	}

	if err := executionAccess(path); err != nil {
		return err
	}

	if lfi, err := os.Lstat(path); err == nil && isSymlink(lfi.Mode()) {
		target, err := filepath.EvalSymlinks(path)
		if err != nil {
			target = "?"
		}
		return serum.Errorf(CodeRunOkay, "symlink: %q -> %q", path, target)
	}

	return serum.Errorf(CodeRunOkay, "path: %s", path)
}
