package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modcar/ingreso/internal/catalog"
	"github.com/modcar/ingreso/internal/config"
	"github.com/modcar/ingreso/internal/prefs"
	"github.com/modcar/ingreso/internal/reconcile"
	"github.com/modcar/ingreso/internal/selection"
	"github.com/modcar/ingreso/internal/taller"
)

func TestBootstrapNodes(t *testing.T) {
	cfg := config.Default()
	cfg.Components = []config.Component{
		{ID: "5", Nombre: "Motor", Codigo: "MOT"},
		{ID: "8", Nombre: "Frenos", Codigo: "FRE"},
	}
	cfg.Preselected = []string{"5"}

	nodes := BootstrapNodes(cfg, []string{"fre", " 5 ", "comp-li-17", ""})
	require.Len(t, nodes, 3)
	assert.Equal(t, reconcile.Node{ID: "5", Name: "Motor"}, nodes[0])
	assert.Equal(t, reconcile.Node{ID: "8", Name: "Frenos"}, nodes[1])
	assert.Equal(t, "17", nodes[2].ComponentID())
}

func TestBaseFormSkipsBlankFields(t *testing.T) {
	cfg := config.Default()
	cfg.DiagnosticoID = "42"

	form := BaseForm(cfg, prefs.Vehicle{Marca: " Kia ", Anio: "2018"})
	assert.Equal(t, "Kia", form.Get("marca"))
	assert.Equal(t, "2018", form.Get("anio"))
	assert.Equal(t, "42", form.Get("diagnostico_id"))
	_, hasModelo := form["modelo"]
	assert.False(t, hasModelo)
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.BaseURL = "http://taller.local"
	applyOverrides(&cfg, Options{BaseURL: "  ", DiagnosticoID: "7"})
	assert.Equal(t, "http://taller.local", cfg.BaseURL)
	assert.Equal(t, "7", cfg.DiagnosticoID)
}

func TestValidateYear(t *testing.T) {
	assert.NoError(t, ValidateYear(""))
	assert.NoError(t, ValidateYear("2015"))
	assert.Error(t, ValidateYear("15"))
	assert.Error(t, ValidateYear("abcd"))
	assert.Error(t, ValidateYear("1800"))
	assert.Error(t, ValidateYear("2999"))
}

type slowLoader struct {
	mu       sync.Mutex
	calls    map[string]int
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (l *slowLoader) LoadCatalog(_ context.Context, id string) (catalog.Result, bool) {
	n := l.inFlight.Add(1)
	for {
		p := l.peak.Load()
		if n <= p || l.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	l.inFlight.Add(-1)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[id]++
	return catalog.Result{ComponentID: id}, l.calls[id] == 1
}

func TestPrefetchBoundsConcurrency(t *testing.T) {
	l := &slowLoader{calls: make(map[string]int)}
	ids := []string{"1", "2", "3", "4", "5", "6", "7", "8"}

	loaded := Prefetch(context.Background(), l, ids, 2)
	assert.Equal(t, len(ids), loaded)
	assert.LessOrEqual(t, l.peak.Load(), int32(2))
	assert.Zero(t, Prefetch(context.Background(), l, nil, 2))
}

type stubActions struct {
	mu    sync.Mutex
	calls int
}

func (s *stubActions) FetchActions(context.Context, string) (taller.ActionsResponse, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return taller.ActionsResponse{OK: true, Acciones: []taller.Accion{
		{AccionID: "9", AccionNombre: "Limpiar", PrecioBase: taller.NewAmount(decimal.NewFromInt(1000))},
	}}, nil
}

func TestSessionPrefetchesPreselectedOnce(t *testing.T) {
	cfg := config.Default()
	cfg.Components = []config.Component{{ID: "5", Nombre: "Motor", Codigo: "MOT"}}
	api := &stubActions{}

	sess := newSession(api, cfg, zap.NewNop())
	defer sess.Close()

	need := sess.rec.Bootstrap(BootstrapNodes(cfg, []string{"MOT", "5"}))
	require.Equal(t, []string{"5"}, need)
	assert.Equal(t, 1, Prefetch(context.Background(), sess.rec, need, 4))
	assert.Zero(t, Prefetch(context.Background(), sess.rec, need, 4))

	assert.Equal(t, selection.CatalogLoaded, sess.store.CatalogState("5"))
	row, ok := sess.rec.Tree().Row("5")
	require.True(t, ok)
	require.Len(t, row.Actions, 1)
	assert.Equal(t, "$1.000", row.Actions[0].BasePrice)
	assert.Equal(t, 1, api.calls)
}
