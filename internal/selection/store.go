package selection

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/modcar/ingreso/internal/money"
)

// ErrDuplicateAction is returned when an action that is already selected for
// a component is selected again. The store is left untouched.
var ErrDuplicateAction = errors.New("action already selected for component")

// CatalogEntry is one immutable action offered for a component.
type CatalogEntry struct {
	ComponentID string
	ActionID    string
	ActionName  string
	BasePrice   decimal.Decimal
}

// CatalogState tracks whether a component's action catalog is available.
type CatalogState int

const (
	CatalogNone CatalogState = iota
	CatalogLoading
	CatalogLoaded
)

// Store is the single source of truth for one intake session: which
// components are selected and, per component, which actions are selected with
// which price and quantity. Entries are never deleted; deselecting only flips
// flags so user-entered prices survive.
//
// The zero value is ready to use.
type Store struct {
	mu         sync.Mutex
	order      []string
	components map[string]*componentState
	collator   *collate.Collator

	subsMu  sync.Mutex
	subs    []subscription
	nextSub int
}

type componentState struct {
	id       string
	name     string
	selected bool
	catalog  CatalogState
	order    []string
	actions  map[string]*actionState
}

type actionState struct {
	id        string
	name      string
	basePrice decimal.Decimal
	unitPrice decimal.Decimal
	quantity  int
	selected  bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{}
	s.init()
	return s
}

func (s *Store) init() {
	if s.components == nil {
		s.components = make(map[string]*componentState)
	}
	if s.collator == nil {
		s.collator = collate.New(language.Spanish, collate.IgnoreCase, collate.IgnoreDiacritics)
	}
}

func (s *Store) component(id string) *componentState {
	c, ok := s.components[id]
	if !ok {
		c = &componentState{id: id, actions: make(map[string]*actionState)}
		s.components[id] = c
		s.order = append(s.order, id)
	}
	return c
}

// SetComponentSelected marks a component selected or not. Selecting an
// already-selected component is a no-op. Deselecting keeps the component's
// action selections; they stop counting towards totals until it is selected
// again. It reports whether the selection changed.
func (s *Store) SetComponentSelected(id, name string, selected bool) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	s.mu.Lock()
	s.init()
	c, known := s.components[id]
	if !known {
		if !selected {
			s.mu.Unlock()
			return false
		}
		c = s.component(id)
	}
	if name = strings.TrimSpace(name); name != "" {
		c.name = name
	}
	if c.name == "" {
		c.name = id
	}
	if c.selected == selected {
		s.mu.Unlock()
		return false
	}
	c.selected = selected
	s.mu.Unlock()

	kind := ComponentDeselected
	if selected {
		kind = ComponentSelected
	}
	s.emit(Event{Kind: kind, ComponentID: id})
	return true
}

// MarkCatalogLoading records that a catalog request is in flight for the
// component. It returns false when the catalog is already loading or loaded,
// in which case the caller must not fetch again.
func (s *Store) MarkCatalogLoading(componentID string) bool {
	s.mu.Lock()
	s.init()
	c := s.component(componentID)
	if c.catalog != CatalogNone {
		s.mu.Unlock()
		return false
	}
	c.catalog = CatalogLoading
	s.mu.Unlock()

	s.emit(Event{Kind: CatalogLoadingStarted, ComponentID: componentID})
	return true
}

// UpsertActionCatalog installs the action catalog for a component unless one
// is already installed. An action selection is created for every entry with
// the base price as unit price and quantity 1, unselected. It reports whether
// the catalog was installed.
func (s *Store) UpsertActionCatalog(componentID string, entries []CatalogEntry) bool {
	s.mu.Lock()
	s.init()
	c := s.component(componentID)
	if c.catalog == CatalogLoaded {
		s.mu.Unlock()
		return false
	}
	sorted := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.ActionID) == "" {
			continue
		}
		if _, dup := c.actions[e.ActionID]; dup {
			continue
		}
		sorted = append(sorted, e)
		c.actions[e.ActionID] = &actionState{
			id:        e.ActionID,
			name:      e.ActionName,
			basePrice: e.BasePrice,
			unitPrice: e.BasePrice,
			quantity:  1,
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return s.collator.CompareString(sorted[i].ActionName, sorted[j].ActionName) < 0
	})
	for _, e := range sorted {
		c.order = append(c.order, e.ActionID)
	}
	c.catalog = CatalogLoaded
	s.mu.Unlock()

	s.emit(Event{Kind: CatalogInstalled, ComponentID: componentID})
	return true
}

// SetActionSelected selects or deselects an action. It is a silent no-op when
// the component's catalog has not loaded yet or does not contain the action.
// Selecting an already-selected action returns ErrDuplicateAction.
func (s *Store) SetActionSelected(componentID, actionID string, selected bool) error {
	s.mu.Lock()
	s.init()
	a := s.actionLocked(componentID, actionID)
	if a == nil {
		s.mu.Unlock()
		return nil
	}
	if a.selected == selected {
		s.mu.Unlock()
		if selected {
			return ErrDuplicateAction
		}
		return nil
	}
	a.selected = selected
	s.mu.Unlock()

	kind := ActionDeselected
	if selected {
		kind = ActionSelected
	}
	s.emit(Event{Kind: kind, ComponentID: componentID, ActionID: actionID})
	return nil
}

// ToggleAction flips an action's selection and returns the new state. Unknown
// actions report false.
func (s *Store) ToggleAction(componentID, actionID string) bool {
	s.mu.Lock()
	s.init()
	a := s.actionLocked(componentID, actionID)
	if a == nil {
		s.mu.Unlock()
		return false
	}
	a.selected = !a.selected
	selected := a.selected
	s.mu.Unlock()

	kind := ActionDeselected
	if selected {
		kind = ActionSelected
	}
	s.emit(Event{Kind: kind, ComponentID: componentID, ActionID: actionID})
	return selected
}

// SetActionPrice applies free-form price input. Empty, unparsable or negative
// input keeps the previous valid price. It returns the price in effect.
func (s *Store) SetActionPrice(componentID, actionID, raw string) decimal.Decimal {
	s.mu.Lock()
	s.init()
	a := s.actionLocked(componentID, actionID)
	if a == nil {
		s.mu.Unlock()
		return decimal.Zero
	}
	price, ok := ParsePrice(raw)
	if !ok || price.Equal(a.unitPrice) {
		current := a.unitPrice
		s.mu.Unlock()
		return current
	}
	a.unitPrice = price
	s.mu.Unlock()

	s.emit(Event{Kind: ActionPriceChanged, ComponentID: componentID, ActionID: actionID})
	return price
}

// SetActionQuantity applies free-form quantity input. Empty, unparsable or
// non-positive input keeps the previous valid quantity. It returns the
// quantity in effect.
func (s *Store) SetActionQuantity(componentID, actionID, raw string) int {
	s.mu.Lock()
	s.init()
	a := s.actionLocked(componentID, actionID)
	if a == nil {
		s.mu.Unlock()
		return 0
	}
	qty, ok := ParseQuantity(raw)
	if !ok || qty == a.quantity {
		current := a.quantity
		s.mu.Unlock()
		return current
	}
	a.quantity = qty
	s.mu.Unlock()

	s.emit(Event{Kind: ActionQuantityChanged, ComponentID: componentID, ActionID: actionID})
	return qty
}

// ComputeTotal returns the labor total: unit price times quantity over every
// selected action whose component is selected.
func (s *Store) ComputeTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, id := range s.order {
		c := s.components[id]
		if !c.selected {
			continue
		}
		for _, aid := range c.order {
			a := c.actions[aid]
			if a.selected {
				total = total.Add(a.unitPrice.Mul(decimal.NewFromInt(int64(a.quantity))))
			}
		}
	}
	return total
}

// CatalogState reports the catalog state of a component.
func (s *Store) CatalogState(componentID string) CatalogState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.components[componentID]; ok {
		return c.catalog
	}
	return CatalogNone
}

// IsSelected reports whether the component is currently selected.
func (s *Store) IsSelected(componentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.components[componentID]
	return ok && c.selected
}

func (s *Store) actionLocked(componentID, actionID string) *actionState {
	c, ok := s.components[componentID]
	if !ok || c.catalog != CatalogLoaded {
		return nil
	}
	return c.actions[actionID]
}

// ParsePrice parses user price input. A leading "$" and surrounding spaces
// are ignored; negative values and anything money.Parse rejects (exponents,
// more than 12 integer digits) are invalid.
func ParsePrice(raw string) (decimal.Decimal, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "$")
	d, err := money.Parse(trimmed)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// ParseQuantity parses user quantity input; only whole numbers >= 1 are valid.
func ParseQuantity(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
