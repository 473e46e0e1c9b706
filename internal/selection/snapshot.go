package selection

import "github.com/shopspring/decimal"

// Snapshot is a deep copy of the store, in selection order.
type Snapshot struct {
	Components []Component
	Total      decimal.Decimal
}

// Component is the snapshot form of a component selection.
type Component struct {
	ID       string
	Name     string
	Selected bool
	Catalog  CatalogState
	Actions  []Action
}

// Action is the snapshot form of an action selection.
type Action struct {
	ComponentID string
	ActionID    string
	ActionName  string
	BasePrice   decimal.Decimal
	UnitPrice   decimal.Decimal
	Quantity    int
	Selected    bool
}

// ActionKey identifies an action within the session.
type ActionKey struct {
	ComponentID string
	ActionID    string
}

func (k ActionKey) String() string {
	if k == (ActionKey{}) {
		return ""
	}
	return k.ComponentID + "/" + k.ActionID
}

// Key returns the action's session-wide key.
func (a Action) Key() ActionKey {
	return ActionKey{ComponentID: a.ComponentID, ActionID: a.ActionID}
}

// Subtotal is unit price times quantity, regardless of selection.
func (a Action) Subtotal() decimal.Decimal {
	return a.UnitPrice.Mul(decimal.NewFromInt(int64(a.Quantity)))
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Total: decimal.Zero}
	if len(s.order) == 0 {
		return snap
	}
	snap.Components = make([]Component, 0, len(s.order))
	for _, id := range s.order {
		c := s.components[id]
		comp := Component{
			ID:       c.id,
			Name:     c.name,
			Selected: c.selected,
			Catalog:  c.catalog,
		}
		if len(c.order) > 0 {
			comp.Actions = make([]Action, 0, len(c.order))
		}
		for _, aid := range c.order {
			a := c.actions[aid]
			act := Action{
				ComponentID: c.id,
				ActionID:    a.id,
				ActionName:  a.name,
				BasePrice:   a.basePrice,
				UnitPrice:   a.unitPrice,
				Quantity:    a.quantity,
				Selected:    a.selected,
			}
			if c.selected && a.selected {
				snap.Total = snap.Total.Add(act.Subtotal())
			}
			comp.Actions = append(comp.Actions, act)
		}
		snap.Components = append(snap.Components, comp)
	}
	return snap
}

// Component returns the component with the given id.
func (s Snapshot) Component(id string) (Component, bool) {
	for _, c := range s.Components {
		if c.ID == id {
			return c, true
		}
	}
	return Component{}, false
}

// SelectedComponentIDs lists selected components in selection order.
func (s Snapshot) SelectedComponentIDs() []string {
	var ids []string
	for _, c := range s.Components {
		if c.Selected {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// ActiveActions returns the actions that count towards the total: selected
// actions of selected components.
func (s Snapshot) ActiveActions() []Action {
	var out []Action
	for _, c := range s.Components {
		if !c.Selected {
			continue
		}
		for _, a := range c.Actions {
			if a.Selected {
				out = append(out, a)
			}
		}
	}
	return out
}
