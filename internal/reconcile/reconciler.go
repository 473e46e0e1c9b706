package reconcile

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/modcar/ingreso/internal/catalog"
	"github.com/modcar/ingreso/internal/selection"
)

// Source says which input path produced a selection change.
type Source int

const (
	SourceCheckbox Source = iota
	SourceDiagram
	SourceBootstrap
)

func (s Source) String() string {
	switch s {
	case SourceCheckbox:
		return "checkbox"
	case SourceDiagram:
		return "diagram"
	case SourceBootstrap:
		return "bootstrap"
	default:
		return "unknown"
	}
}

// NodePrefix marks the list items the diagram inserts for each picked
// component.
const NodePrefix = "comp-li-"

// Node is a component entry as produced by the diagram or the pre-populated
// form. ID is either a bare component id or a NodePrefix id.
type Node struct {
	ID   string
	Name string
}

// ComponentID strips NodePrefix. Nodes with an empty id yield "".
func (n Node) ComponentID() string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(n.ID), NodePrefix))
}

// Mutation is one batch of diagram list changes.
type Mutation struct {
	Added   []Node
	Removed []Node
}

// Loader resolves a component's action catalog.
type Loader interface {
	FetchActions(ctx context.Context, componentID string) catalog.Result
}

// Reconciler keeps a rendered Tree in step with a selection.Store. Every store
// event re-renders and hands the resulting edits to the sink.
type Reconciler struct {
	store  *selection.Store
	loader Loader
	log    *zap.Logger
	sink   func([]Op)

	mu         sync.Mutex
	tree       Tree
	pending    [][]Op
	delivering bool

	unsubscribe func()
}

// New subscribes to store. sink may be nil. Batches reach it one at a time in
// render order; it runs outside internal locks so it may mutate the store.
func New(store *selection.Store, loader Loader, log *zap.Logger, sink func([]Op)) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Reconciler{
		store:  store,
		loader: loader,
		log:    log,
		sink:   sink,
	}
	r.unsubscribe = store.Subscribe(func(selection.Event) { r.Refresh() })
	r.Refresh()
	return r
}

// Close stops listening to the store.
func (r *Reconciler) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}

// Tree returns a copy of the current rendering.
func (r *Reconciler) Tree() Tree {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree.Clone()
}

// Refresh re-renders from a fresh snapshot and returns the edits applied.
func (r *Reconciler) Refresh() []Op {
	r.mu.Lock()
	next, ops := Render(r.store.Snapshot(), r.tree)
	r.tree = next
	if len(ops) > 0 && r.sink != nil {
		r.pending = append(r.pending, ops)
	}
	r.mu.Unlock()

	r.flush()
	return ops
}

// flush hands queued batches to the sink. Only one goroutine delivers at a
// time; batches queued meanwhile, including by the sink itself, are sent by
// that goroutine before it returns.
func (r *Reconciler) flush() {
	r.mu.Lock()
	if r.delivering {
		r.mu.Unlock()
		return
	}
	r.delivering = true
	for len(r.pending) > 0 {
		batch := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		r.sink(batch)
		r.mu.Lock()
	}
	r.delivering = false
	r.mu.Unlock()
}

// Toggle applies a checkbox change. It returns the component ids whose
// catalog must now be loaded.
func (r *Reconciler) Toggle(componentID, name string, selected bool) []string {
	return r.apply(SourceCheckbox, componentID, name, selected)
}

// Observe applies a batch of diagram list mutations in order.
func (r *Reconciler) Observe(muts []Mutation) []string {
	var need []string
	for _, m := range muts {
		for _, n := range m.Added {
			need = append(need, r.apply(SourceDiagram, n.ComponentID(), n.Name, true)...)
		}
		for _, n := range m.Removed {
			need = append(need, r.apply(SourceDiagram, n.ComponentID(), n.Name, false)...)
		}
	}
	return need
}

// Bootstrap selects the components already present when the session starts.
func (r *Reconciler) Bootstrap(nodes []Node) []string {
	var need []string
	for _, n := range nodes {
		need = append(need, r.apply(SourceBootstrap, n.ComponentID(), n.Name, true)...)
	}
	return need
}

func (r *Reconciler) apply(src Source, componentID, name string, selected bool) []string {
	if componentID == "" {
		return nil
	}
	changed := r.store.SetComponentSelected(componentID, name, selected)
	r.log.Debug("component selection",
		zap.Stringer("source", src),
		zap.String("componente_id", componentID),
		zap.Bool("selected", selected),
		zap.Bool("changed", changed),
	)
	if selected && r.NeedsCatalog(componentID) {
		return []string{componentID}
	}
	return nil
}

// NeedsCatalog reports whether a component is selected and its catalog was
// never requested.
func (r *Reconciler) NeedsCatalog(componentID string) bool {
	return r.store.IsSelected(componentID) && r.store.CatalogState(componentID) == selection.CatalogNone
}

// LoadCatalog fetches and installs a component's catalog. Only the first
// call per component reaches the loader; later calls return immediately.
func (r *Reconciler) LoadCatalog(ctx context.Context, componentID string) (catalog.Result, bool) {
	if !r.store.MarkCatalogLoading(componentID) {
		return catalog.Result{ComponentID: componentID}, false
	}
	res := r.loader.FetchActions(ctx, componentID)
	r.store.UpsertActionCatalog(componentID, res.Entries)
	if res.Failed {
		r.log.Warn("catalog unavailable, showing empty list", zap.String("componente_id", componentID))
	}
	return res, true
}

// VisibleActionRows returns the action rows of a visible component.
func (r *Reconciler) VisibleActionRows(componentID string) []ActionRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.tree.Rows {
		if row.ID == componentID && row.Visible {
			return append([]ActionRow(nil), row.Actions...)
		}
	}
	return nil
}
