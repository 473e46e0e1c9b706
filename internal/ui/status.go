package ui

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusWarn
	statusError
)

// statusLine is the one-line message shown under the active view.
type statusLine struct {
	text  string
	level statusLevel
}

func infoStatus(text string) statusLine    { return statusLine{text: text, level: statusInfo} }
func successStatus(text string) statusLine { return statusLine{text: text, level: statusSuccess} }
func warnStatus(text string) statusLine    { return statusLine{text: text, level: statusWarn} }
func errorStatus(text string) statusLine   { return statusLine{text: text, level: statusError} }

func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	text := m.status.text
	if text == "" {
		text = "h para ayuda"
	}
	text = truncate(text, m.width-2)

	var rendered string
	switch m.status.level {
	case statusSuccess:
		rendered = styles.SuccessText.Render(text)
	case statusWarn:
		rendered = styles.WarningText.Render(text)
	case statusError:
		rendered = styles.DangerText.Render(text)
	default:
		rendered = styles.MutedText.Render(text)
	}
	return styles.Footer.Width(m.width).MaxHeight(1).Render(rendered)
}
