package setupcli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/warptools/fwsetup/pkg/submodsync"
)

const (
	colorOk   = lipgloss.Color("10")
	colorWarn = lipgloss.Color("11")
	colorFail = lipgloss.Color("9")
)

// renderSummary prints one line per processed submodule, followed by a totals line.
//
//	PATH              STATUS
//	Common/MU         fetched
//	Silicon/Arm/TFA   skipped
//	setup partial: 1 fetched, 1 skipped, 1 failed
func renderSummary(w io.Writer, result submodsync.Result) error {
	r := lipgloss.NewRenderer(w)
	counts := map[submodsync.Status]int{}
	var b strings.Builder

	if len(result.Submodules) > 0 {
		width := len("PATH")
		for _, s := range result.Submodules {
			if n := lipgloss.Width(s.Path); n > width {
				width = n
			}
		}
		pathStyle := r.NewStyle().Width(width + 3)
		header := r.NewStyle().Bold(true)
		b.WriteString(header.Render(pathStyle.Render("PATH") + "STATUS"))
		b.WriteString("\n")
		for _, s := range result.Submodules {
			counts[s.Status]++
			b.WriteString(pathStyle.Render(s.Path))
			b.WriteString(r.NewStyle().Foreground(statusColor(s.Status)).Render(string(s.Status)))
			b.WriteString("\n")
		}
	}

	outcome := r.NewStyle().Bold(true).Foreground(outcomeColor(result.Outcome))
	fmt.Fprintf(&b, "%s: %d fetched, %d skipped, %d failed\n",
		outcome.Render("setup "+result.Outcome.String()),
		counts[submodsync.StatusFetched],
		counts[submodsync.StatusSkipped],
		counts[submodsync.StatusFailed],
	)
	_, err := io.WriteString(w, b.String())
	return err
}

func statusColor(s submodsync.Status) lipgloss.Color {
	switch s {
	case submodsync.StatusFetched:
		return colorOk
	case submodsync.StatusSkipped:
		return colorWarn
	default:
		return colorFail
	}
}

func outcomeColor(o submodsync.Outcome) lipgloss.Color {
	switch o {
	case submodsync.OutcomeOk:
		return colorOk
	case submodsync.OutcomePartial:
		return colorWarn
	default:
		return colorFail
	}
}
