package render

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"logtail-dashboard/internal/model"
	"logtail-dashboard/internal/util"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	healthyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	rawStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// ConsoleRenderer writes each snapshot to a terminal, one row per line,
// newest first.
type ConsoleRenderer struct {
	out io.Writer
}

func NewConsoleRenderer() *ConsoleRenderer {
	return &ConsoleRenderer{out: os.Stdout}
}

func (r *ConsoleRenderer) Render(snap model.Snapshot) {
	state := healthyStyle.Render(string(snap.State))
	if snap.State == model.StateDegraded {
		state = degradedStyle.Render(string(snap.State))
	}
	health := healthyStyle.Render("up")
	if !snap.Healthy {
		health = errorStyle.Render("down")
	}

	fmt.Fprintf(r.out, "%s %s backend=%s query=%s\n",
		headerStyle.Render(fmt.Sprintf("tail %d rows", len(snap.Rows))), state, health, snap.ActiveQuery)
	if snap.LastError != "" {
		fmt.Fprintln(r.out, errorStyle.Render("error: "+snap.LastError))
	}

	for _, row := range snap.Rows {
		fmt.Fprintf(r.out, "%s %s %s\n",
			timeStyle.Render(util.FormatMillis(row.Timestamp)),
			sourceStyle.Render(row.Labels.SourceName()),
			styleFor(row.Record).Render(row.Record.Summary()))
	}
}

func styleFor(rec model.LogRecord) lipgloss.Style {
	switch rec.Kind {
	case model.KindStructuredAccess:
		if rec.Structured.Status.IsInt && rec.Structured.Status.Int >= 400 {
			return errorStyle
		}
		return healthyStyle
	case model.KindTextAccess:
		if len(rec.Text.Status) > 0 && (rec.Text.Status[0] == '4' || rec.Text.Status[0] == '5') {
			return errorStyle
		}
		return healthyStyle
	default:
		return rawStyle
	}
}
