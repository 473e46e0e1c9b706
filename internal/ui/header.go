package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/modcar/ingreso/internal/money"
)

// renderHeader renders the title bar: vehicle, selection counters and the
// running estimate.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	snap := m.store.Snapshot()
	tree := m.rec.Tree()

	parts := []string{styles.AccentText.Bold(true).Render("ingreso")}

	if v := m.vehicleLabel(); v != "" {
		parts = append(parts, styles.Text.Render(v))
	}
	if m.cfg.DiagnosticoID != "" {
		parts = append(parts, styles.MutedText.Render("Diagnóstico #"+m.cfg.DiagnosticoID))
	}

	parts = append(parts,
		styles.MutedText.Render("Componentes:")+" "+styles.Text.Render(fmt.Sprintf("%d", len(snap.SelectedComponentIDs()))),
		styles.Text.Render(tree.ActionCount),
		styles.MutedText.Render("Repuestos:")+" "+styles.Text.Render(fmt.Sprintf("%d", m.parts.list.Len())),
		styles.MutedText.Render("Total estimado:")+" "+styles.SuccessText.Render(money.CLP(snap.Total.Add(m.parts.list.Total()))),
	)
	if m.submitting {
		parts = append(parts, styles.WarningText.Render("Enviando…"))
	}

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(parts, "  "))
}

func (m Model) vehicleLabel() string {
	var bits []string
	for _, s := range []string{m.vehicle.Marca, m.vehicle.Modelo, m.vehicle.Anio} {
		if s = strings.TrimSpace(s); s != "" {
			bits = append(bits, s)
		}
	}
	if motor := strings.TrimSpace(m.vehicle.Motor); motor != "" {
		bits = append(bits, "("+motor+")")
	}
	return strings.Join(bits, " ")
}

// renderCommandBar renders the view tabs followed by the keys of the active
// view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	var tabs []string
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.view {
			tabs = append(tabs, styles.Selected.Padding(0, 1).Render(label))
		} else {
			tabs = append(tabs, styles.MutedText.Padding(0, 1).Render(label))
		}
	}

	var hints []string
	for _, b := range m.viewBindings() {
		h := b.Help()
		hints = append(hints, styles.AccentText.Render(h.Key)+" "+styles.FaintText.Render(h.Desc))
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if len(hints) > 0 {
		bar += "  " + strings.Join(hints, "  ")
	}
	return lipgloss.NewStyle().MaxWidth(m.width).MaxHeight(1).Render(bar)
}

// viewBindings lists the keys shown in the command bar for the active view.
func (m Model) viewBindings() []key.Binding {
	switch m.view {
	case ViewComponentes:
		return []key.Binding{m.keys.Toggle, m.keys.AddAction, m.keys.EditPrice, m.keys.EditQty, m.keys.Diagram}
	case ViewRepuestos:
		return []key.Binding{m.keys.Suggest, m.keys.Search, m.keys.FocusNext, m.keys.AddPart, m.keys.Remove}
	case ViewResumen:
		return []key.Binding{m.keys.Submit}
	default:
		return nil
	}
}
