package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/modcar/ingreso/internal/money"
	"github.com/modcar/ingreso/internal/payload"
	"github.com/modcar/ingreso/internal/reconcile"
)

// submit validates the selection and posts the intake form. The form is
// built before the command runs so later edits do not leak into the request.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.submitting {
		m.status = warnStatus("Ya hay un envío en curso")
		return m, nil
	}
	snap := m.store.Snapshot()
	if len(snap.SelectedComponentIDs()) == 0 {
		m.status = warnStatus("Seleccione al menos un componente antes de guardar")
		return m, nil
	}

	form := payload.Form(snap, m.parts.list, m.base)
	m.submitting = true
	m.status = infoStatus("Guardando ingreso…")
	m.log.Info("submitting intake",
		zap.Int("componentes", len(snap.SelectedComponentIDs())),
		zap.Int("acciones", len(snap.ActiveActions())),
		zap.Int("repuestos", m.parts.list.Len()),
	)
	return m, submitCmd(m.ctx, m.api, form)
}

func (m Model) handleSubmit(msg submitMsg) Model {
	m.submitting = false
	if msg.err != nil {
		m.log.Error("submit failed", zap.Error(msg.err))
		m.status = errorStatus(fmt.Sprintf("No se pudo guardar el ingreso: %v", msg.err))
		return m
	}
	res := msg.result
	m.lastSubmit = &res
	m.log.Info("intake saved", zap.String("id", res.ID), zap.Int("status", res.Status))
	switch {
	case res.ID != "":
		m.status = successStatus("Ingreso guardado #" + res.ID)
	case res.Location != "":
		m.status = successStatus("Ingreso guardado: " + res.Location)
	default:
		m.status = successStatus("Ingreso guardado")
	}
	return m
}

// renderResumen renders the estimate and the hidden fields that will be
// posted.
func (m Model) renderResumen() string {
	styles := m.theme.Styles()
	snap := m.store.Snapshot()

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Mano de obra"))
	b.WriteString("\n")

	active := snap.ActiveActions()
	if len(active) == 0 {
		b.WriteString(styles.FaintText.Render("  Sin acciones seleccionadas"))
		b.WriteString("\n")
	}
	current := ""
	for _, a := range active {
		if a.ComponentID != current {
			current = a.ComponentID
			b.WriteString("  " + styles.Text.Bold(true).Render(m.componentName(a.ComponentID)))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "    %s %s %s\n",
			styles.Text.Render(padRight(a.ActionName, 28)),
			styles.MutedText.Render(padRight(fmt.Sprintf("%d x %s", a.Quantity, money.CLP(a.UnitPrice)), 18)),
			styles.AccentText.Render(money.CLP(a.Subtotal())),
		)
	}

	parts := m.parts.list
	labor := snap.Total
	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render("Totales"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n", styles.MutedText.Render(padRight("Mano de obra ("+reconcile.CountLabel(len(active))+")", 30)), styles.Text.Render(money.CLP(labor)))
	fmt.Fprintf(&b, "  %s %s\n", styles.MutedText.Render(padRight(fmt.Sprintf("Repuestos (%d)", parts.Len()), 30)), styles.Text.Render(money.CLP(parts.Total())))
	fmt.Fprintf(&b, "  %s %s\n", styles.Text.Bold(true).Render(padRight("Total estimado", 30)), styles.SuccessText.Render(money.CLP(labor.Add(parts.Total()))))

	form := payload.Form(snap, parts, nil)
	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render("Campos del formulario"))
	b.WriteString("\n")
	width := m.width - 32
	for _, field := range []string{payload.FieldComponents, payload.FieldActions, payload.FieldParts} {
		value := strings.Join(form[field], ",")
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "  %s %s\n", styles.FaintText.Render(padRight(field, 28)), styles.MutedText.Render(truncate(value, width)))
	}

	if m.lastSubmit != nil {
		b.WriteString("\n")
		label := "Último ingreso guardado"
		if m.lastSubmit.ID != "" {
			label += " #" + m.lastSubmit.ID
		}
		b.WriteString(styles.SuccessText.Render(label))
	}
	return b.String()
}
