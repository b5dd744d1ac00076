package healthcheck

import (
	"context"

	"github.com/serum-errors/go-serum"

	"github.com/warptools/fwsetup/pkg/gitexec"
)

// GitVersionCheck verifies that git runs and is at least gitexec.MinimumVersion.
type GitVersionCheck struct {
	Git gitexec.Git
}

func (c *GitVersionCheck) String() string {
	return "Git version"
}

// Run executes the checker
// Errors:
//
//   - fwsetup-error-healthcheck-run-okay -- when git is new enough
//   - fwsetup-error-healthcheck-run-fail -- when git cannot be run, its version cannot be parsed, or it is too old
func (c *GitVersionCheck) Run(ctx context.Context) error {
	output, err := c.Git.Version(ctx)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageLiteral("could not run git --version"),
		)
	}
	version, err := gitexec.ParseVersion(output)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageTemplate("unrecognized version output {{output|q}}"),
			serum.WithDetail("output", output),
		)
	}
	if err := gitexec.CheckMinimum(version); err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageTemplate("git {{version}} is older than {{minimum}}"),
			serum.WithDetail("version", version),
			serum.WithDetail("minimum", gitexec.MinimumVersion),
		)
	}
	return serum.Errorf(CodeRunOkay, "%s", output)
}
