package reconcile

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modcar/ingreso/internal/catalog"
	"github.com/modcar/ingreso/internal/selection"
)

type fakeLoader struct {
	mu      sync.Mutex
	calls   map[string]int
	entries map[string][]selection.CatalogEntry
	failed  map[string]bool
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		calls:   make(map[string]int),
		entries: make(map[string][]selection.CatalogEntry),
		failed:  make(map[string]bool),
	}
}

func (f *fakeLoader) FetchActions(_ context.Context, id string) catalog.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	return catalog.Result{ComponentID: id, Entries: f.entries[id], Failed: f.failed[id]}
}

func (f *fakeLoader) count(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

type recorder struct {
	mu  sync.Mutex
	ops []Op
}

func (r *recorder) sink(ops []Op) {
	r.mu.Lock()
	r.ops = append(r.ops, ops...)
	r.mu.Unlock()
}

func motorLoader() *fakeLoader {
	f := newFakeLoader()
	f.entries["5"] = []selection.CatalogEntry{
		{ComponentID: "5", ActionID: "9", ActionName: "Limpiar", BasePrice: decimal.NewFromInt(1000)},
		{ComponentID: "5", ActionID: "11", ActionName: "Cambiar", BasePrice: decimal.NewFromInt(5000)},
	}
	return f
}

func TestReconciler_MotorScenario(t *testing.T) {
	store := selection.NewStore()
	loader := motorLoader()
	rec := &recorder{}
	r := New(store, loader, nil, rec.sink)
	t.Cleanup(r.Close)
	ctx := context.Background()

	need := r.Toggle("5", "Motor", true)
	require.Equal(t, []string{"5"}, need)
	row, ok := r.Tree().Row("5")
	require.True(t, ok)
	assert.Equal(t, LoadingText, row.Placeholder)

	_, fetched := r.LoadCatalog(ctx, "5")
	require.True(t, fetched)

	rows := r.VisibleActionRows("5")
	require.Len(t, rows, 2)
	assert.Equal(t, "Cambiar", rows[0].Name)
	assert.Equal(t, "Limpiar", rows[1].Name)

	require.NoError(t, store.SetActionSelected("5", "9", true))
	store.SetActionQuantity("5", "9", "2")

	tree := r.Tree()
	assert.Equal(t, "$2.000", tree.Total)
	assert.Equal(t, "1 acción", tree.ActionCount)
	assert.JSONEq(t, `[{"componente_id":5,"accion_id":9,"precio_mano_obra":"1000","cantidad":2}]`, tree.ActionsJSON)

	r.Toggle("5", "", false)
	assert.Empty(t, r.VisibleActionRows("5"))
	assert.Equal(t, "$0", r.Tree().Total)

	need = r.Toggle("5", "", true)
	assert.Empty(t, need, "catalog already installed")
	assert.Len(t, r.VisibleActionRows("5"), 2)
	assert.Equal(t, "$2.000", r.Tree().Total)
	assert.Equal(t, 1, loader.count("5"))
	assert.NotEmpty(t, rec.ops)
}

func TestReconciler_InputPathsConverge(t *testing.T) {
	build := func(apply func(r *Reconciler) []string) Tree {
		store := selection.NewStore()
		r := New(store, motorLoader(), nil, nil)
		defer r.Close()
		for _, id := range apply(r) {
			r.LoadCatalog(context.Background(), id)
		}
		require.NoError(t, store.SetActionSelected("5", "11", true))
		return r.Tree()
	}

	byCheckbox := build(func(r *Reconciler) []string {
		return r.Toggle("5", "Motor", true)
	})
	byDiagram := build(func(r *Reconciler) []string {
		return r.Observe([]Mutation{{Added: []Node{{ID: "comp-li-5", Name: "Motor"}}}})
	})
	byBootstrap := build(func(r *Reconciler) []string {
		return r.Bootstrap([]Node{{ID: "5", Name: "Motor"}})
	})

	assert.Equal(t, byCheckbox, byDiagram)
	assert.Equal(t, byCheckbox, byBootstrap)
	assert.Equal(t, "$5.000", byCheckbox.Total)
}

func TestReconciler_ObserveRemoval(t *testing.T) {
	store := selection.NewStore()
	r := New(store, motorLoader(), nil, nil)
	t.Cleanup(r.Close)

	r.Observe([]Mutation{{Added: []Node{{ID: "comp-li-5", Name: "Motor"}, {ID: "comp-li-8", Name: "Frenos"}}}})
	r.Observe([]Mutation{{Removed: []Node{{ID: "comp-li-8"}}}})

	assert.True(t, store.IsSelected("5"))
	assert.False(t, store.IsSelected("8"))
	row, ok := r.Tree().Row("8")
	require.True(t, ok)
	assert.False(t, row.Visible)
}

func TestReconciler_IgnoresEmptyNodeIDs(t *testing.T) {
	store := selection.NewStore()
	r := New(store, motorLoader(), nil, nil)
	t.Cleanup(r.Close)

	need := r.Observe([]Mutation{{Added: []Node{{ID: "comp-li-"}, {ID: "  "}}}})
	assert.Empty(t, need)
	assert.Empty(t, r.Tree().Rows)
}

func TestReconciler_FailedCatalogIsNotRetried(t *testing.T) {
	store := selection.NewStore()
	loader := newFakeLoader()
	loader.failed["5"] = true
	r := New(store, loader, nil, nil)
	t.Cleanup(r.Close)

	for _, id := range r.Toggle("5", "Motor", true) {
		r.LoadCatalog(context.Background(), id)
	}
	row, _ := r.Tree().Row("5")
	assert.Equal(t, EmptyText, row.Placeholder)

	r.Toggle("5", "", false)
	assert.Empty(t, r.Toggle("5", "", true))
	_, fetched := r.LoadCatalog(context.Background(), "5")
	assert.False(t, fetched)
	assert.Equal(t, 1, loader.count("5"))
}

func TestReconciler_RandomTogglesFetchAtMostOnce(t *testing.T) {
	store := selection.NewStore()
	loader := motorLoader()
	r := New(store, loader, nil, nil)
	t.Cleanup(r.Close)

	rng := rand.New(rand.NewSource(42))
	ids := []string{"5", "8", "13"}
	ctx := context.Background()
	for i := 0; i < 300; i++ {
		id := ids[rng.Intn(len(ids))]
		selected := rng.Intn(2) == 0
		var need []string
		switch rng.Intn(3) {
		case 0:
			need = r.Toggle(id, "", selected)
		case 1:
			m := Mutation{}
			if selected {
				m.Added = []Node{{ID: NodePrefix + id}}
			} else {
				m.Removed = []Node{{ID: NodePrefix + id}}
			}
			need = r.Observe([]Mutation{m})
		default:
			if selected {
				need = r.Bootstrap([]Node{{ID: id}})
			}
		}
		for _, n := range need {
			r.LoadCatalog(ctx, n)
		}

		for _, row := range r.Tree().Rows {
			assert.Equal(t, store.IsSelected(row.ID), row.Visible, "row %s", row.ID)
		}
	}

	for _, id := range ids {
		assert.LessOrEqual(t, loader.count(id), 1, id)
	}
}

func TestReconciler_ConcurrentLoadsFetchOnce(t *testing.T) {
	store := selection.NewStore()
	loader := motorLoader()
	r := New(store, loader, nil, nil)
	t.Cleanup(r.Close)
	r.Toggle("5", "Motor", true)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.LoadCatalog(context.Background(), "5")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, loader.count("5"))
	assert.Len(t, r.VisibleActionRows("5"), 2)
}

func TestReconciler_SinkReceivesBatchesInRenderOrder(t *testing.T) {
	store := selection.NewStore()
	var (
		mu        sync.Mutex
		inSink    bool
		overlap   bool
		lastTotal string
	)
	sink := func(ops []Op) {
		mu.Lock()
		if inSink {
			overlap = true
		}
		inSink = true
		mu.Unlock()

		for _, op := range ops {
			if op.Kind == OpSetTotal {
				mu.Lock()
				lastTotal = op.Text
				mu.Unlock()
			}
		}

		mu.Lock()
		inSink = false
		mu.Unlock()
	}
	r := New(store, motorLoader(), nil, sink)
	t.Cleanup(r.Close)

	r.Toggle("5", "Motor", true)
	r.LoadCatalog(context.Background(), "5")
	require.NoError(t, store.SetActionSelected("5", "9", true))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				store.SetActionPrice("5", "9", strconv.Itoa(1000+g*100+i))
			}
		}(g)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, overlap, "sink must not run concurrently")
	assert.Equal(t, r.Tree().Total, lastTotal)
}

func TestReconciler_SinkMayMutateStore(t *testing.T) {
	store := selection.NewStore()
	rec := &recorder{}
	var once sync.Once
	sink := func(ops []Op) {
		rec.sink(ops)
		for _, op := range ops {
			if op.Kind == OpAddComponentRow && op.ComponentID == "5" {
				once.Do(func() { store.SetComponentSelected("8", "Frenos", true) })
			}
		}
	}
	r := New(store, newFakeLoader(), nil, sink)
	t.Cleanup(r.Close)

	r.Toggle("5", "Motor", true)

	row, ok := r.Tree().Row("8")
	require.True(t, ok)
	assert.True(t, row.Visible)

	var added []string
	for _, op := range rec.ops {
		if op.Kind == OpAddComponentRow {
			added = append(added, op.ComponentID)
		}
	}
	assert.Equal(t, []string{"5", "8"}, added)
}
