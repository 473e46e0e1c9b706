package ui

import (
	"strings"

	"github.com/modcar/ingreso/internal/logtail"
)

// handleLogLines refreshes the log viewport. The view follows the tail
// unless the user scrolled up.
func (m *Model) handleLogLines(msg logLinesMsg) {
	styles := m.theme.Styles()
	if msg.err != nil {
		m.logViewport.SetContent(styles.DangerText.Render("No se pudo leer el log: " + msg.err.Error()))
		return
	}
	if len(msg.entries) == 0 {
		m.logViewport.SetContent(styles.FaintText.Render("Sin registros en " + m.cfg.LogPath))
		m.logLines = 0
		return
	}

	follow := m.logViewport.AtBottom() || m.logLines == 0
	lines := make([]string, len(msg.entries))
	for i, e := range msg.entries {
		lines[i] = m.renderLogEntry(e)
	}
	m.logViewport.SetContent(strings.Join(lines, "\n"))
	m.logLines = len(lines)
	if follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogEntry(e logtail.Entry) string {
	styles := m.theme.Styles()
	text := truncate(e.Format(), m.width)
	switch e.Level {
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		return styles.DangerText.Render(text)
	case "WARN":
		return styles.WarningText.Render(text)
	case "DEBUG":
		return styles.FaintText.Render(text)
	default:
		return styles.Text.Render(text)
	}
}
