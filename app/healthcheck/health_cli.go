package healthcheckcli

import (
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/fwsetup/app/base"
	"github.com/warptools/fwsetup/app/base/util"
	"github.com/warptools/fwsetup/fsapi"
	"github.com/warptools/fwsetup/pkg/config"
	"github.com/warptools/fwsetup/pkg/gitexec"
	"github.com/warptools/fwsetup/pkg/healthcheck"
	"github.com/warptools/fwsetup/pkg/logging"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands, healthCmdDef)
}

var healthCmdDef = &cli.Command{
	Name:  "health",
	Usage: "Check the host for problems that would stop a setup run",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "omnicache",
			Aliases: []string{"OMNICACHE", "Omnicache"},
			Usage:   "Object cache to check (default: $" + config.EnvOmnicachePath + ")",
		},
	},
	Action: util.DefaultMiddleware(cmdHealth),
}

func cmdHealth(c *cli.Context) error {
	ctx := c.Context
	log := logging.Ctx(ctx)
	state := config.NewState()

	gitPath := config.GitPath(state)
	workspace, err := config.ResolveWorkspaceRoot(state, "")
	if err != nil {
		if serum.Code(err) != fsapi.ECodeWorkspace {
			return err
		}
		log.Debug("", "no workspace: %s", serum.Message(err))
	}
	omnicache := c.String("omnicache")
	if !c.IsSet("omnicache") {
		omnicache = config.OmnicacheFromEnv(state)
	}

	hc := &healthcheck.HealthCheck{
		Runners: []healthcheck.Runner{
			&healthcheck.KernelInfo{},
			&healthcheck.BinCheck{Name: gitPath},
			&healthcheck.GitVersionCheck{Git: gitexec.New(gitexec.NewExecRunner(gitPath))},
			&healthcheck.PathCheck{Label: "workspace", Path: workspace},
			&healthcheck.PathCheck{Label: "omnicache", Path: omnicache, Optional: true},
		},
	}
	if err := hc.Run(ctx); err != nil {
		log.Info("", "health check critical error: %s", err)
		return err
	}

	log.Debug("", "runners=%d, results=%d", len(hc.Runners), len(hc.Results))

	if err := hc.Fprint(c.App.Writer); err != nil {
		return err
	}
	if hc.Failed() {
		return serum.Error(healthcheck.CodeRunFailure,
			serum.WithMessageLiteral("health check found problems"),
			serum.WithDetail("hint", "run `fwsetup --verbose health` for more detail"),
		)
	}
	return nil
}
