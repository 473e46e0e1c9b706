package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/modcar/ingreso/internal/money"
	"github.com/modcar/ingreso/internal/reconcile"
	"github.com/modcar/ingreso/internal/selection"
	"github.com/modcar/ingreso/internal/taller"
)

type editKind int

const (
	editNone editKind = iota
	editPrice
	editQty
	editDiagram
)

type componentesState struct {
	cursor int

	editing     editKind
	componentID string
	actionID    string
	input       textinput.Model
}

func newComponentesState() componentesState {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Prompt = "› "
	return componentesState{input: ti}
}

type entryKind int

const (
	entryComponent entryKind = iota
	entryPlaceholder
	entryAction
)

// listEntry is one line of the components view.
type listEntry struct {
	kind        entryKind
	componentID string
	name        string
	selected    bool
	text        string
	action      reconcile.ActionRow
}

// componentEntries flattens the checklist and the rendered rows into the list
// the cursor walks. Configured components come first, then anything picked
// from the diagram or preselected.
func (m Model) componentEntries() []listEntry {
	snap := m.store.Snapshot()
	tree := m.rec.Tree()
	seen := make(map[string]bool)
	var out []listEntry

	add := func(id, name string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		c, known := snap.Component(id)
		if name == "" {
			name = c.Name
		}
		if name == "" {
			name = "Componente " + id
		}
		out = append(out, listEntry{
			kind:        entryComponent,
			componentID: id,
			name:        name,
			selected:    known && c.Selected,
		})

		row, ok := tree.Row(id)
		if !ok || !row.Visible {
			return
		}
		if row.Placeholder != "" {
			out = append(out, listEntry{kind: entryPlaceholder, componentID: id, text: row.Placeholder})
		}
		for _, a := range row.Actions {
			out = append(out, listEntry{kind: entryAction, componentID: id, action: a})
		}
	}

	for _, c := range m.cfg.Components {
		add(c.ID, c.Nombre)
	}
	for _, c := range snap.Components {
		add(c.ID, c.Name)
	}
	return out
}

func (m Model) componentName(id string) string {
	if name := m.cfg.ComponentName(id); name != id {
		return name
	}
	if c, ok := m.store.Snapshot().Component(id); ok && c.Name != "" {
		return c.Name
	}
	return "componente " + id
}

// handleComponentesKey processes keyboard input for the components view.
func (m Model) handleComponentesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.componentEntries()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.comp.cursor > 0 {
			m.comp.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.comp.cursor < len(entries)-1 {
			m.comp.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Diagram):
		return m.startEdit(editDiagram, "", "", "")
	}

	if m.comp.cursor >= len(entries) {
		return m, nil
	}
	entry := entries[m.comp.cursor]

	switch {
	case key.Matches(msg, m.keys.Toggle):
		switch entry.kind {
		case entryComponent:
			need := m.rec.Toggle(entry.componentID, entry.name, !entry.selected)
			return m, loadCatalogCmds(m.ctx, m.rec, need)
		case entryAction:
			m.store.ToggleAction(entry.componentID, entry.action.ActionID)
		}
		return m, nil

	case key.Matches(msg, m.keys.AddAction):
		if entry.kind != entryAction {
			m.status = warnStatus("Seleccione una acción de la lista")
			return m, nil
		}
		err := m.store.SetActionSelected(entry.componentID, entry.action.ActionID, true)
		if errors.Is(err, selection.ErrDuplicateAction) {
			m.status = warnStatus("La acción ya fue agregada para este componente")
			return m, nil
		}
		m.status = infoStatus(fmt.Sprintf("%s agregada", entry.action.Name))
		return m, nil

	case key.Matches(msg, m.keys.EditPrice):
		if entry.kind == entryAction {
			return m.startEdit(editPrice, entry.componentID, entry.action.ActionID, entry.action.PriceInput)
		}

	case key.Matches(msg, m.keys.EditQty):
		if entry.kind == entryAction {
			return m.startEdit(editQty, entry.componentID, entry.action.ActionID, strconv.Itoa(entry.action.Quantity))
		}

	case key.Matches(msg, m.keys.Increase):
		if entry.kind == entryAction {
			m.store.SetActionQuantity(entry.componentID, entry.action.ActionID, strconv.Itoa(entry.action.Quantity+1))
		}

	case key.Matches(msg, m.keys.Decrease):
		if entry.kind == entryAction {
			if entry.action.Quantity <= 1 {
				m.status = warnStatus("La cantidad mínima es 1")
				return m, nil
			}
			m.store.SetActionQuantity(entry.componentID, entry.action.ActionID, strconv.Itoa(entry.action.Quantity-1))
		}
	}
	return m, nil
}

func (m Model) startEdit(kind editKind, componentID, actionID, value string) (tea.Model, tea.Cmd) {
	m.comp.editing = kind
	m.comp.componentID = componentID
	m.comp.actionID = actionID
	m.comp.input.SetValue(value)
	m.comp.input.CursorEnd()
	switch kind {
	case editDiagram:
		m.comp.input.Placeholder = "código de pieza"
	case editPrice:
		m.comp.input.Placeholder = "precio"
	case editQty:
		m.comp.input.Placeholder = "cantidad"
	}
	cmd := m.comp.input.Focus()
	return m, cmd
}

func (m Model) stopEdit() Model {
	m.comp.editing = editNone
	m.comp.input.Blur()
	m.comp.input.SetValue("")
	return m
}

// handleEditKey feeds keystrokes to the inline editor.
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		return m.stopEdit(), nil

	case key.Matches(msg, m.keys.Confirm):
		raw := m.comp.input.Value()
		kind, cid, aid := m.comp.editing, m.comp.componentID, m.comp.actionID
		m = m.stopEdit()
		return m.applyEdit(kind, cid, aid, raw)
	}

	var cmd tea.Cmd
	m.comp.input, cmd = m.comp.input.Update(msg)
	return m, cmd
}

func (m Model) applyEdit(kind editKind, componentID, actionID, raw string) (tea.Model, tea.Cmd) {
	switch kind {
	case editPrice:
		if _, ok := selection.ParsePrice(raw); !ok {
			price := m.store.SetActionPrice(componentID, actionID, "")
			m.status = warnStatus(fmt.Sprintf("Precio inválido, se mantiene %s", money.CLP(price)))
			return m, nil
		}
		price := m.store.SetActionPrice(componentID, actionID, raw)
		m.status = infoStatus(fmt.Sprintf("Precio actualizado: %s", money.CLP(price)))

	case editQty:
		if _, ok := selection.ParseQuantity(raw); !ok {
			qty := m.store.SetActionQuantity(componentID, actionID, "")
			m.status = warnStatus(fmt.Sprintf("Cantidad inválida, se mantiene %d", qty))
			return m, nil
		}
		qty := m.store.SetActionQuantity(componentID, actionID, raw)
		m.status = infoStatus(fmt.Sprintf("Cantidad actualizada: %d", qty))

	case editDiagram:
		code := strings.TrimSpace(raw)
		if code == "" {
			return m, nil
		}
		m.status = infoStatus(fmt.Sprintf("Buscando pieza %s…", code))
		return m, lookupCmd(m.ctx, m.api, code)
	}
	return m, nil
}

// handleLookup turns a resolved diagram part into a list mutation: picking a
// part adds its component node, picking it again removes it.
func (m Model) handleLookup(msg lookupMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, taller.ErrEndpointDisabled) {
			m.status = warnStatus("La búsqueda por diagrama no está configurada")
		} else {
			m.log.Warn("component lookup failed", zap.String("codigo", msg.code), zap.Error(msg.err))
			m.status = errorStatus(fmt.Sprintf("No se pudo consultar la pieza %s", msg.code))
		}
		return m, nil
	}
	if !msg.resp.Found {
		m.status = warnStatus(fmt.Sprintf("La pieza %s no corresponde a un componente", msg.code))
		return m, nil
	}

	id := msg.resp.Parent.ID.String()
	node := reconcile.Node{ID: reconcile.NodePrefix + id, Name: msg.resp.Parent.Nombre}
	var mut reconcile.Mutation
	if m.store.IsSelected(id) {
		mut.Removed = []reconcile.Node{node}
		m.status = infoStatus(fmt.Sprintf("%s quitado desde el diagrama", node.Name))
	} else {
		mut.Added = []reconcile.Node{node}
		m.status = infoStatus(fmt.Sprintf("%s agregado desde el diagrama", node.Name))
	}
	need := m.rec.Observe([]reconcile.Mutation{mut})
	return m, loadCatalogCmds(m.ctx, m.rec, need)
}

func (m Model) handleCatalogLoaded(msg catalogLoadedMsg) Model {
	if !msg.fetched {
		return m
	}
	if msg.result.Failed {
		m.status = warnStatus(fmt.Sprintf("No se pudieron cargar las acciones de %s", m.componentName(msg.result.ComponentID)))
	}
	return m
}

// renderComponentes renders the checklist with the action rows of every
// visible component.
func (m Model) renderComponentes() string {
	styles := m.theme.Styles()
	entries := m.componentEntries()
	tree := m.rec.Tree()

	height := m.contentHeight() - 2
	if m.comp.editing != editNone {
		height--
	}

	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		line := m.renderEntry(styles, e)
		if i == m.comp.cursor {
			line = styles.Selected.Width(m.width).Render(truncate(plainEntry(e), m.width))
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, styles.MutedText.Render("Sin componentes configurados. Use d para agregar desde el diagrama."))
	}

	start, end := window(len(lines), m.comp.cursor, height)
	var b strings.Builder
	b.WriteString(strings.Join(lines[start:end], "\n"))
	for i := end - start; i < height; i++ {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Mano de obra: ") + styles.AccentText.Render(tree.Total) +
		styles.FaintText.Render("  ·  "+tree.ActionCount))

	if m.comp.editing != editNone {
		b.WriteString("\n")
		b.WriteString(styles.Text.Render(editLabel(m.comp.editing)+": ") + m.comp.input.View())
	}
	return b.String()
}

func (m Model) renderEntry(styles Styles, e listEntry) string {
	switch e.kind {
	case entryComponent:
		if e.selected {
			return styles.SuccessText.Render("[x]") + " " + styles.Text.Render(e.name)
		}
		return styles.MutedText.Render("[ ]") + " " + styles.Text.Render(e.name)
	case entryPlaceholder:
		return "    " + styles.FaintText.Render(e.text)
	case entryAction:
		a := e.action
		mark := styles.MutedText.Render("[ ]")
		if a.Checked {
			mark = styles.SuccessText.Render("[x]")
		}
		return fmt.Sprintf("    %s %s  %s %s  %s %s  %s",
			mark,
			styles.Text.Render(padRight(a.Name, 24)),
			styles.FaintText.Render("base"), styles.MutedText.Render(padRight(a.BasePrice, 10)),
			styles.FaintText.Render("x"), styles.Text.Render(padRight(fmt.Sprintf("%d %s", a.Quantity, a.UnitPrice), 14)),
			styles.AccentText.Render(a.Subtotal),
		)
	}
	return ""
}

// plainEntry renders an entry without colour codes so the selection
// background spans the whole line.
func plainEntry(e listEntry) string {
	switch e.kind {
	case entryComponent:
		mark := "[ ]"
		if e.selected {
			mark = "[x]"
		}
		return mark + " " + e.name
	case entryPlaceholder:
		return "    " + e.text
	case entryAction:
		a := e.action
		mark := "[ ]"
		if a.Checked {
			mark = "[x]"
		}
		return fmt.Sprintf("    %s %s  base %s  x %s  %s",
			mark, padRight(a.Name, 24), padRight(a.BasePrice, 10),
			padRight(fmt.Sprintf("%d %s", a.Quantity, a.UnitPrice), 14), a.Subtotal)
	}
	return ""
}

func editLabel(kind editKind) string {
	switch kind {
	case editPrice:
		return "Precio"
	case editQty:
		return "Cantidad"
	case editDiagram:
		return "Pieza del diagrama"
	default:
		return ""
	}
}
