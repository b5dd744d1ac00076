package logcli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	appbase "github.com/warptools/fwsetup/app/base"
	"github.com/warptools/fwsetup/app/base/util"
	"github.com/warptools/fwsetup/fsapi"
	"github.com/warptools/fwsetup/pkg/config"
	"github.com/warptools/fwsetup/pkg/logging"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands, logCmdDef)
}

var logCmdDef = &cli.Command{
	Name:  "log",
	Usage: "Show the log of the last setup run",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "workspace",
			Aliases: []string{"w"},
			Usage:   "Workspace root (default: nearest enclosing git working tree)",
		},
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "Print the markdown source instead of rendering it",
		},
	},
	Action: util.DefaultMiddleware(cmdLog),
}

// defaultWrap is used when the output is not a terminal.
const defaultWrap = 100

func cmdLog(c *cli.Context) error {
	root, err := config.ResolveWorkspaceRoot(config.NewState(), c.String("workspace"))
	if err != nil {
		return err
	}
	_, mdName := logging.LogFileNames()
	filename := filepath.Join(root, filepath.FromSlash(mdName))
	logging.Ctx(c.Context).Debug("", "log file: %s", filename)
	data, err := os.ReadFile(filename)
	if err != nil {
		return fsapi.ErrorIo("cannot read setup log", filename, err)
	}
	if c.Bool("raw") {
		_, err := c.App.Writer.Write(data)
		return err
	}
	out, err := render(c.App.Writer, string(data))
	if err != nil {
		return err
	}
	_, err = io.WriteString(c.App.Writer, out)
	return err
}

// render formats markdown for w. Terminals get colors matching their background and wrapping at their width.
//
// Errors:
//
//   - fwsetup-error-internal -- when the markdown cannot be rendered
func render(w io.Writer, markdown string) (string, error) {
	style := glamour.NoTTYStyleConfig
	width := defaultWrap
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		style = glamour.LightStyleConfig
		if termenv.NewOutput(f).HasDarkBackground() {
			style = glamour.DarkStyleConfig
		}
		if physicalWidth, _, err := term.GetSize(int(f.Fd())); err == nil && physicalWidth > 0 {
			width = physicalWidth
		}
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fsapi.ErrorInternal("cannot create markdown renderer", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fsapi.ErrorInternal("cannot render setup log", err)
	}
	return out, nil
}
