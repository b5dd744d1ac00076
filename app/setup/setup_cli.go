package setupcli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/google/uuid"
	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/json"
	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/fwsetup/app/base"
	"github.com/warptools/fwsetup/app/base/util"
	"github.com/warptools/fwsetup/fsapi"
	"github.com/warptools/fwsetup/pkg/config"
	"github.com/warptools/fwsetup/pkg/gitexec"
	"github.com/warptools/fwsetup/pkg/logging"
	"github.com/warptools/fwsetup/pkg/settings"
	"github.com/warptools/fwsetup/pkg/submodsync"
	"github.com/warptools/fwsetup/pkg/versions"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands, setupCmdDef)
}

var setupCmdDef = &cli.Command{
	Name:  "setup",
	Usage: "Fetch and update the submodules the platform requires",
	Description: heredoc.Doc(`
		Brings the required submodules of the workspace into a buildable state.

		The workspace root is the nearest directory at or above the working directory
		containing .git, unless --workspace is given.
		Required submodules are read from fwsetup.json, fwsetup.yaml or fwsetup.yml
		in the workspace root, or from the file named by --settings.
		With --all-submodules and no settings file, every submodule in .gitmodules is required.

		A submodule with local changes is left alone unless --force is given.
		--force resets and cleans the workspace and every required submodule first,
		discarding all local changes.

		The run is logged to Build/SETUPLOG.txt and Build/SETUPLOG.md in the workspace.
	`),
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"FORCE", "Force"},
			Usage:   "Clean the workspace and fetch every submodule, discarding local changes",
		},
		&cli.StringFlag{
			Name:    "omnicache",
			Aliases: []string{"OMNICACHE", "Omnicache"},
			Usage:   fmt.Sprintf("Object cache used as a reference when fetching (default: $%s)", config.EnvOmnicachePath),
		},
		&cli.StringFlag{
			Name:    "workspace",
			Aliases: []string{"w"},
			Usage:   "Workspace root (default: nearest enclosing git working tree)",
		},
		&cli.StringFlag{
			Name:      "settings",
			Aliases:   []string{"c"},
			Usage:     "Settings file listing the required submodules",
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:  "all-submodules",
			Usage: "Require every submodule in .gitmodules when no settings file is found",
		},
		&cli.StringFlag{
			Name:      "version-report",
			Usage:     "Write the observed tool versions to this file as JSON",
			TakesFile: true,
		},
	},
	Action: util.DefaultMiddleware(cmdSetup),
}

// newRunner builds the git runner used by the command.
var newRunner = func(state config.State) gitexec.Runner {
	return gitexec.NewExecRunner(config.GitPath(state))
}

func cmdSetup(c *cli.Context) error {
	if c.Args().Present() {
		return fsapi.ErrorArgument(c.Args().First(), "setup takes no positional arguments")
	}
	ctx := c.Context
	log := logging.Ctx(ctx)
	state := config.NewState()

	defaults, err := config.LoadUserDefaults()
	if err != nil {
		return err
	}

	root, err := workspaceRoot(c, state)
	if err != nil {
		return err
	}
	log.Debug("", "workspace root: %s", root)

	provider, err := settingsProvider(c, root, defaults)
	if err != nil {
		return err
	}
	subs, err := provider.GetRequiredSubmodules()
	if err != nil {
		return err
	}

	force := defaults.Force
	if c.IsSet("force") {
		force = c.Bool("force")
	}

	if err := log.OpenFileSinks(root, "Setup"); err != nil {
		return err
	}

	omnicache := c.String("omnicache")
	if !c.IsSet("omnicache") {
		omnicache = config.OmnicacheFromEnv(state)
	}
	if omnicache == "" {
		omnicache = defaults.Omnicache
	}
	effective, valid := config.ResolveOmnicache(omnicache)
	if !valid {
		log.Warn("", "Omnicache path set to invalid path: %s", omnicache)
	}

	txtLog, mdLog := logging.LogFileNames()
	aggregator := versions.NewAggregator()
	aggregator.ReportVersion(appbase.App.Name, appbase.VERSION, versions.CategoryTool)
	syncer := submodsync.New(newRunner(state), aggregator)
	result := syncer.Synchronize(ctx, submodsync.Config{
		WorkspaceRoot:  root,
		Submodules:     subs,
		Force:          force,
		Omnicache:      effective,
		ProtectedFiles: []string{txtLog, mdLog},
	})
	for _, conflict := range aggregator.Conflicts() {
		log.Debug("", "version of %s reported again as %q, keeping %q", conflict.Name, conflict.Rejected, conflict.Kept)
	}

	if c.IsSet("version-report") {
		if err := writeVersionReport(c.String("version-report"), aggregator.Record()); err != nil {
			return err
		}
	}

	switch {
	case c.Bool("json"):
		record := newSetupRecord(root, force, effective, result, aggregator)
		c.App.Metadata["result"] = bindnode.Wrap(&fsapi.ApiOutput{SetupRecord: &record}, fsapi.TypeSystem.TypeByName("ApiOutput")).Representation()
	case !c.Bool("quiet"):
		if err := renderSummary(c.App.Writer, result); err != nil {
			return err
		}
	}
	return result.Err()
}

// workspaceRoot returns the absolute workspace root.
// --workspace wins, then the workspaceRoot named in the --settings file,
// then the nearest enclosing git working tree.
//
// Errors:
//
//   - fwsetup-error-workspace -- when the chosen workspace is not a directory or none can be found
//   - fwsetup-error-searching-filesystem -- when the upward search fails
//   - fwsetup-error-io -- when the --settings file cannot be read
//   - fwsetup-error-serialization -- when the --settings file cannot be parsed
//   - fwsetup-error-settings-invalid -- when the --settings file lists an unusable submodule
func workspaceRoot(c *cli.Context, state config.State) (string, error) {
	if c.IsSet("workspace") {
		return config.ResolveWorkspaceRoot(state, c.String("workspace"))
	}
	if c.IsSet("settings") {
		root, ok, err := settings.File{Path: c.String("settings")}.WorkspaceRoot()
		if err != nil {
			return "", err
		}
		if ok {
			logging.Ctx(c.Context).Debug("", "workspace root from settings file: %s", root)
			return config.ResolveWorkspaceRoot(state, root)
		}
	}
	return config.ResolveWorkspaceRoot(state, "")
}

// settingsProvider picks where the required submodules come from.
// In order: --settings, a settings file in the workspace root, .gitmodules with --all-submodules,
// the user default settings file, and finally nothing.
//
// Errors:
//
//   - fwsetup-error-searching-filesystem -- when looking for a settings file fails
func settingsProvider(c *cli.Context, root string, defaults config.UserDefaults) (settings.Provider, error) {
	log := logging.Ctx(c.Context)
	if c.IsSet("settings") {
		return settings.File{Path: c.String("settings")}, nil
	}
	found, err := settings.FindFile(os.DirFS(root), ".")
	if err != nil {
		return nil, err
	}
	switch {
	case found != "":
		log.Debug("", "settings file: %s", found)
		return settings.File{Path: filepath.Join(root, filepath.FromSlash(found))}, nil
	case c.Bool("all-submodules"):
		log.Debug("", "settings: every submodule in .gitmodules")
		return settings.Gitmodules{WorkspaceRoot: root}, nil
	case defaults.Settings != "":
		log.Debug("", "settings file: %s", defaults.Settings)
		return settings.File{Path: defaults.Settings}, nil
	}
	log.Debug("", "no settings file found, no submodules are required")
	return settings.Default{}, nil
}

func newSetupRecord(root string, force bool, omnicache string, result submodsync.Result, aggregator *versions.Aggregator) fsapi.SetupRecord {
	record := fsapi.SetupRecord{
		Guid:          uuid.New().String(),
		Time:          time.Now().Unix(),
		WorkspaceRoot: root,
		Force:         force,
		Outcome:       result.Outcome.String(),
		Code:          int64(result.Code()),
		Submodules:    result.SubmoduleRecords(),
		Versions:      aggregator.Record(),
	}
	if omnicache != "" {
		record.Omnicache = &omnicache
	}
	if result.Reason != nil {
		reason := result.Reason.Error()
		record.Reason = &reason
	}
	return record
}

// writeVersionReport writes the version entries as a JSON list.
//
// Errors:
//
//   - fwsetup-error-serialization -- when the entries cannot be encoded
//   - fwsetup-error-io -- when the file cannot be written
func writeVersionReport(filename string, entries []fsapi.VersionEntry) error {
	serial, err := ipld.Marshal(json.Encode, &entries, fsapi.TypeSystem.TypeByName("List__VersionEntry"))
	if err != nil {
		return fsapi.ErrorSerialization("version report", err)
	}
	if err := os.WriteFile(filename, append(serial, '\n'), 0644); err != nil {
		return fsapi.ErrorIo("cannot write version report", filename, err)
	}
	return nil
}
