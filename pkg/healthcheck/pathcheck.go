package healthcheck

import (
	"context"
	"fmt"
	"os"

	"github.com/serum-errors/go-serum"
)

// PathCheck verifies that a directory exists.
// An empty Path is reported as ambiguous when Optional is set and as a failure otherwise.
type PathCheck struct {
	Label    string
	Path     string
	Optional bool
}

func (c *PathCheck) String() string {
	return fmt.Sprintf("%s directory", c.Label)
}

// Run executes the checker
// Errors:
//
//   - fwsetup-error-healthcheck-run-okay -- when the directory exists
//   - fwsetup-error-healthcheck-run-fail -- when the path is missing or not a directory
//   - fwsetup-error-healthcheck-run-ambiguous -- when an optional path is unset
func (c *PathCheck) Run(ctx context.Context) error {
	if c.Path == "" {
		if c.Optional {
			return serum.Error(CodeRunAmbiguous, serum.WithMessageLiteral("not set"))
		}
		return serum.Error(CodeRunFailure, serum.WithMessageLiteral("not set"))
	}
	fi, err := os.Stat(c.Path)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageTemplate("cannot access {{path|q}}"),
			serum.WithDetail("path", c.Path),
		)
	}
	if !fi.IsDir() {
		return serum.Error(CodeRunFailure,
			serum.WithMessageTemplate("{{path|q}} is not a directory"),
			serum.WithDetail("path", c.Path),
		)
	}
	return serum.Errorf(CodeRunOkay, "%s", c.Path)
}
