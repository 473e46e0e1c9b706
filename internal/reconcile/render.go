package reconcile

import (
	"fmt"

	"github.com/modcar/ingreso/internal/money"
	"github.com/modcar/ingreso/internal/payload"
	"github.com/modcar/ingreso/internal/selection"
)

// Placeholder texts shown inside a component row.
const (
	LoadingText = "Cargando acciones disponibles…"
	EmptyText   = "No hay acciones sugeridas para este componente."
)

// OpKind enumerates the view edits Render emits.
type OpKind int

const (
	OpAddComponentRow OpKind = iota
	OpShowComponentRow
	OpHideComponentRow
	OpSetPlaceholder
	OpAddActionRow
	OpUpdateActionRow
	OpSetTotal
	OpSetActionCount
	OpSetHiddenField
)

func (k OpKind) String() string {
	switch k {
	case OpAddComponentRow:
		return "add-component"
	case OpShowComponentRow:
		return "show-component"
	case OpHideComponentRow:
		return "hide-component"
	case OpSetPlaceholder:
		return "set-placeholder"
	case OpAddActionRow:
		return "add-action"
	case OpUpdateActionRow:
		return "update-action"
	case OpSetTotal:
		return "set-total"
	case OpSetActionCount:
		return "set-count"
	case OpSetHiddenField:
		return "set-hidden"
	default:
		return "unknown"
	}
}

// Op is a single view edit. Text carries the new value where one applies.
type Op struct {
	Kind        OpKind
	ComponentID string
	ActionKey   selection.ActionKey
	Text        string
}

func (o Op) String() string {
	return fmt.Sprintf("%s %s %s %q", o.Kind, o.ComponentID, o.ActionKey, o.Text)
}

// ActionRow is the rendered form of one action.
type ActionRow struct {
	Key        selection.ActionKey
	ActionID   string
	Name       string
	Checked    bool
	BasePrice  string
	UnitPrice  string
	PriceInput string
	Quantity   int
	Subtotal   string
}

// ComponentRow is the rendered form of one component. Rows are never removed
// once created; deselection hides them.
type ComponentRow struct {
	ID          string
	Name        string
	Visible     bool
	Placeholder string
	Actions     []ActionRow
}

// Tree is the whole rendered selection: one row per component that was ever
// selected, the formatted total, the action count label and the serialized
// actions field.
type Tree struct {
	Rows        []ComponentRow
	Total       string
	ActionCount string
	ActionsJSON string
}

// Row returns the row for a component.
func (t Tree) Row(componentID string) (ComponentRow, bool) {
	for _, r := range t.Rows {
		if r.ID == componentID {
			return r, true
		}
	}
	return ComponentRow{}, false
}

// Clone returns a deep copy.
func (t Tree) Clone() Tree {
	out := t
	out.Rows = make([]ComponentRow, len(t.Rows))
	for i, r := range t.Rows {
		r.Actions = append([]ActionRow(nil), r.Actions...)
		out.Rows[i] = r
	}
	return out
}

// CountLabel renders "1 acción" or "N acciones".
func CountLabel(n int) string {
	if n == 1 {
		return "1 acción"
	}
	return fmt.Sprintf("%d acciones", n)
}

// Render computes the tree for snap and the edits that turn prev into it.
// It is pure: rendering the same snapshot against its own output yields no
// edits.
func Render(snap selection.Snapshot, prev Tree) (Tree, []Op) {
	var ops []Op
	next := Tree{}

	prevRows := make(map[string]ComponentRow, len(prev.Rows))
	for _, r := range prev.Rows {
		prevRows[r.ID] = r
	}

	seen := make(map[string]bool, len(snap.Components))
	for _, c := range snap.Components {
		seen[c.ID] = true
		old, existed := prevRows[c.ID]
		if !existed && !c.Selected {
			continue
		}

		row := ComponentRow{
			ID:          c.ID,
			Name:        c.Name,
			Visible:     c.Selected,
			Placeholder: placeholder(c),
		}

		switch {
		case !existed:
			ops = append(ops, Op{Kind: OpAddComponentRow, ComponentID: c.ID, Text: c.Name})
		case old.Visible && !row.Visible:
			ops = append(ops, Op{Kind: OpHideComponentRow, ComponentID: c.ID})
		case !old.Visible && row.Visible:
			ops = append(ops, Op{Kind: OpShowComponentRow, ComponentID: c.ID})
		}
		if old.Placeholder != row.Placeholder {
			ops = append(ops, Op{Kind: OpSetPlaceholder, ComponentID: c.ID, Text: row.Placeholder})
		}

		oldActions := make(map[selection.ActionKey]ActionRow, len(old.Actions))
		for _, a := range old.Actions {
			oldActions[a.Key] = a
		}
		for _, a := range c.Actions {
			ar := actionRow(a)
			prevRow, had := oldActions[ar.Key]
			switch {
			case !had:
				ops = append(ops, Op{Kind: OpAddActionRow, ComponentID: c.ID, ActionKey: ar.Key, Text: ar.Name})
			case prevRow != ar:
				ops = append(ops, Op{Kind: OpUpdateActionRow, ComponentID: c.ID, ActionKey: ar.Key, Text: ar.Subtotal})
			}
			row.Actions = append(row.Actions, ar)
		}
		next.Rows = append(next.Rows, row)
	}

	// Rows for components the store no longer knows stay, hidden.
	for _, r := range prev.Rows {
		if seen[r.ID] {
			continue
		}
		if r.Visible {
			ops = append(ops, Op{Kind: OpHideComponentRow, ComponentID: r.ID})
			r.Visible = false
		}
		r.Actions = append([]ActionRow(nil), r.Actions...)
		next.Rows = append(next.Rows, r)
	}

	next.Total = money.CLP(snap.Total)
	if next.Total != prev.Total {
		ops = append(ops, Op{Kind: OpSetTotal, Text: next.Total})
	}
	next.ActionCount = CountLabel(len(snap.ActiveActions()))
	if next.ActionCount != prev.ActionCount {
		ops = append(ops, Op{Kind: OpSetActionCount, Text: next.ActionCount})
	}
	next.ActionsJSON = payload.ActionsJSON(snap)
	if next.ActionsJSON != prev.ActionsJSON {
		ops = append(ops, Op{Kind: OpSetHiddenField, Text: next.ActionsJSON})
	}
	return next, ops
}

func placeholder(c selection.Component) string {
	switch c.Catalog {
	case selection.CatalogLoaded:
		if len(c.Actions) == 0 {
			return EmptyText
		}
		return ""
	default:
		return LoadingText
	}
}

func actionRow(a selection.Action) ActionRow {
	return ActionRow{
		Key:        a.Key(),
		ActionID:   a.ActionID,
		Name:       a.ActionName,
		Checked:    a.Selected,
		BasePrice:  money.CLP(a.BasePrice),
		UnitPrice:  money.CLP(a.UnitPrice),
		PriceInput: a.UnitPrice.String(),
		Quantity:   a.Quantity,
		Subtotal:   money.CLP(a.Subtotal()),
	}
}
