package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title    string
	bindings []key.Binding
}

func (m Model) helpSections() []helpSection {
	k := m.keys
	return []helpSection{
		{"General", []key.Binding{k.ViewComponentes, k.ViewRepuestos, k.ViewResumen, k.ViewLog, k.Tab, k.Submit, k.CycleTheme, k.Help, k.Quit}},
		{"Componentes", []key.Binding{k.Up, k.Down, k.Toggle, k.AddAction, k.EditPrice, k.EditQty, k.Increase, k.Decrease, k.Diagram}},
		{"Repuestos", []key.Binding{k.Suggest, k.Search, k.FocusNext, k.AddPart, k.Remove}},
		{"Edición", []key.Binding{k.Confirm, k.Escape}},
	}
}

// renderHelp renders the key reference overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var cols []string
	for _, sec := range m.helpSections() {
		var b strings.Builder
		b.WriteString(styles.AccentText.Bold(true).Render(sec.title))
		b.WriteString("\n")
		for _, binding := range sec.bindings {
			h := binding.Help()
			b.WriteString(styles.Text.Render(padRight(h.Key, 10)))
			b.WriteString(styles.MutedText.Render(h.Desc))
			b.WriteString("\n")
		}
		cols = append(cols, styles.Panel.Render(strings.TrimRight(b.String(), "\n")))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	footer := styles.FaintText.Render("Tema: " + m.theme.Name + "  ·  cualquier tecla para volver")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, body, footer))
}
