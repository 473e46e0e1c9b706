package selection

// EventKind identifies what changed in the store.
type EventKind int

const (
	ComponentSelected EventKind = iota
	ComponentDeselected
	CatalogLoadingStarted
	CatalogInstalled
	ActionSelected
	ActionDeselected
	ActionPriceChanged
	ActionQuantityChanged
)

func (k EventKind) String() string {
	switch k {
	case ComponentSelected:
		return "component_selected"
	case ComponentDeselected:
		return "component_deselected"
	case CatalogLoadingStarted:
		return "catalog_loading"
	case CatalogInstalled:
		return "catalog_installed"
	case ActionSelected:
		return "action_selected"
	case ActionDeselected:
		return "action_deselected"
	case ActionPriceChanged:
		return "action_price_changed"
	case ActionQuantityChanged:
		return "action_quantity_changed"
	default:
		return "unknown"
	}
}

// Event describes one committed mutation.
type Event struct {
	Kind        EventKind
	ComponentID string
	ActionID    string
}

type subscription struct {
	id int
	fn func(Event)
}

// Subscribe registers fn to be called after every committed mutation, in
// subscription order, outside the store lock. Handlers may read the store
// (Snapshot, ComputeTotal) but run on the mutating goroutine.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.subsMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) emit(ev Event) {
	s.subsMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}
