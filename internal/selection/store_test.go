package selection

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func motorCatalog() []CatalogEntry {
	return []CatalogEntry{{ComponentID: "5", ActionID: "9", ActionName: "Limpiar", BasePrice: decimal.NewFromInt(1000)}}
}

func TestStore_MotorScenario(t *testing.T) {
	s := NewStore()

	require.True(t, s.SetComponentSelected("5", "Motor", true))
	require.True(t, s.UpsertActionCatalog("5", motorCatalog()))
	require.NoError(t, s.SetActionSelected("5", "9", true))
	assert.True(t, s.ComputeTotal().Equal(decimal.NewFromInt(1000)), "total = %s", s.ComputeTotal())

	require.True(t, s.SetComponentSelected("5", "Motor", false))
	assert.True(t, s.ComputeTotal().IsZero(), "total after deselect = %s", s.ComputeTotal())

	snap := s.Snapshot()
	comp, ok := snap.Component("5")
	require.True(t, ok)
	require.Len(t, comp.Actions, 1)
	assert.True(t, comp.Actions[0].Selected, "action state must be retained while component is deselected")
	assert.Empty(t, snap.ActiveActions())

	require.True(t, s.SetComponentSelected("5", "Motor", true))
	assert.False(t, s.UpsertActionCatalog("5", motorCatalog()), "catalog must not be replaced once installed")
	assert.True(t, s.ComputeTotal().Equal(decimal.NewFromInt(1000)))

	comp, _ = s.Snapshot().Component("5")
	assert.True(t, comp.Actions[0].Selected)
	assert.True(t, comp.Actions[0].UnitPrice.Equal(decimal.NewFromInt(1000)))
}

func TestStore_SetComponentSelectedIsIdempotent(t *testing.T) {
	s := NewStore()
	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	assert.True(t, s.SetComponentSelected("5", "Motor", true))
	assert.False(t, s.SetComponentSelected("5", "Motor", true))
	assert.False(t, s.SetComponentSelected("7", "Frenos", false), "deselecting an unknown component is a no-op")
	assert.Len(t, events, 1)
	assert.Equal(t, ComponentSelected, events[0].Kind)
}

func TestStore_ActionBeforeCatalogIsSilentNoop(t *testing.T) {
	s := NewStore()
	s.SetComponentSelected("5", "Motor", true)

	assert.NoError(t, s.SetActionSelected("5", "9", true))
	assert.True(t, s.SetActionPrice("5", "9", "500").IsZero())
	assert.Equal(t, 0, s.SetActionQuantity("5", "9", "3"))
	assert.True(t, s.ComputeTotal().IsZero())

	require.True(t, s.MarkCatalogLoading("5"))
	assert.NoError(t, s.SetActionSelected("5", "9", true), "loading catalog still rejects silently")
	assert.Empty(t, s.Snapshot().ActiveActions())
}

func TestStore_DuplicateActionSelectionIsRejected(t *testing.T) {
	s := NewStore()
	s.SetComponentSelected("5", "Motor", true)
	s.UpsertActionCatalog("5", motorCatalog())
	s.SetActionPrice("5", "9", "1500")

	require.NoError(t, s.SetActionSelected("5", "9", true))
	err := s.SetActionSelected("5", "9", true)
	assert.ErrorIs(t, err, ErrDuplicateAction)

	comp, _ := s.Snapshot().Component("5")
	assert.True(t, comp.Actions[0].UnitPrice.Equal(decimal.NewFromInt(1500)), "duplicate attempt must not overwrite state")
}

func TestStore_PriceSurvivesDeselectReselect(t *testing.T) {
	s := NewStore()
	s.SetComponentSelected("5", "Motor", true)
	s.UpsertActionCatalog("5", motorCatalog())

	require.NoError(t, s.SetActionSelected("5", "9", true))
	s.SetActionPrice("5", "9", "2500")
	require.NoError(t, s.SetActionSelected("5", "9", false))
	assert.True(t, s.ComputeTotal().IsZero())

	require.NoError(t, s.SetActionSelected("5", "9", true))
	assert.True(t, s.ComputeTotal().Equal(decimal.NewFromInt(2500)), "total = %s", s.ComputeTotal())
}

func TestStore_PriceInputCoercion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty keeps previous", "", "1000"},
		{"garbage keeps previous", "abc", "1000"},
		{"negative keeps previous", "-5", "1000"},
		{"NaN keeps previous", "NaN", "1000"},
		{"valid replaces", "1250.50", "1250.5"},
		{"currency sign", " $900 ", "900"},
		{"zero is a valid price", "0", "0"},
		{"decimal comma", "1250,5", "1250.5"},
		{"exponent keeps previous", "1e3", "1000"},
		{"huge exponent keeps previous", "1e999999999", "1000"},
		{"too many digits keeps previous", "10000000000000", "1000"},
		{"thousands separators keep previous", "1.000.000", "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.SetComponentSelected("5", "Motor", true)
			s.UpsertActionCatalog("5", motorCatalog())

			got := s.SetActionPrice("5", "9", tt.input)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestStore_QuantityInputCoercion(t *testing.T) {
	s := NewStore()
	s.SetComponentSelected("5", "Motor", true)
	s.UpsertActionCatalog("5", motorCatalog())
	require.NoError(t, s.SetActionSelected("5", "9", true))

	assert.Equal(t, 1, s.SetActionQuantity("5", "9", ""))
	assert.Equal(t, 3, s.SetActionQuantity("5", "9", "3"))
	assert.Equal(t, 3, s.SetActionQuantity("5", "9", "0"))
	assert.Equal(t, 3, s.SetActionQuantity("5", "9", "2.5"))
	assert.Equal(t, 3, s.SetActionQuantity("5", "9", "-1"))
	assert.True(t, s.ComputeTotal().Equal(decimal.NewFromInt(3000)))
}

func TestStore_CatalogIsSortedByName(t *testing.T) {
	s := NewStore()
	s.SetComponentSelected("5", "Motor", true)
	s.UpsertActionCatalog("5", []CatalogEntry{
		{ComponentID: "5", ActionID: "1", ActionName: "limpiar"},
		{ComponentID: "5", ActionID: "2", ActionName: "Cambiar"},
		{ComponentID: "5", ActionID: "3", ActionName: "ajustar"},
		{ComponentID: "5", ActionID: "3", ActionName: "ajustar (duplicado)"},
		{ComponentID: "5", ActionID: "", ActionName: "sin id"},
	})

	comp, _ := s.Snapshot().Component("5")
	var names []string
	for _, a := range comp.Actions {
		names = append(names, a.ActionName)
	}
	assert.Equal(t, []string{"ajustar", "Cambiar", "limpiar"}, names)
}

func TestStore_MarkCatalogLoadingOnlyOnce(t *testing.T) {
	s := NewStore()
	assert.True(t, s.MarkCatalogLoading("5"))
	assert.False(t, s.MarkCatalogLoading("5"))
	assert.Equal(t, CatalogLoading, s.CatalogState("5"))

	s.UpsertActionCatalog("5", nil)
	assert.Equal(t, CatalogLoaded, s.CatalogState("5"))
	assert.False(t, s.MarkCatalogLoading("5"))
}

func TestStore_SubscribeAndUnsubscribe(t *testing.T) {
	s := NewStore()
	var first, second []EventKind
	unsubscribe := s.Subscribe(func(ev Event) { first = append(first, ev.Kind) })
	s.Subscribe(func(ev Event) { second = append(second, ev.Kind) })

	s.SetComponentSelected("5", "Motor", true)
	unsubscribe()
	s.UpsertActionCatalog("5", motorCatalog())

	assert.Equal(t, []EventKind{ComponentSelected}, first)
	assert.Equal(t, []EventKind{ComponentSelected, CatalogInstalled}, second)
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	var s Store
	s.SetComponentSelected("5", "Motor", true)
	s.UpsertActionCatalog("5", motorCatalog())

	snap := s.Snapshot()
	snap.Components[0].Actions[0].Selected = true
	snap.Components[0].Name = "changed"

	again := s.Snapshot()
	assert.False(t, again.Components[0].Actions[0].Selected)
	assert.Equal(t, "Motor", again.Components[0].Name)
}

func TestStore_ConcurrentComponentsAreIndependent(t *testing.T) {
	s := NewStore()
	ids := []string{"1", "2", "3", "4", "5", "6"}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			s.SetComponentSelected(id, "comp "+id, true)
			s.MarkCatalogLoading(id)
			s.UpsertActionCatalog(id, []CatalogEntry{{ComponentID: id, ActionID: "1", ActionName: "Revisar", BasePrice: decimal.NewFromInt(100)}})
			_ = s.SetActionSelected(id, "1", true)
		}(id)
	}
	wg.Wait()

	assert.True(t, s.ComputeTotal().Equal(decimal.NewFromInt(600)))
	assert.Len(t, s.Snapshot().ActiveActions(), len(ids))
}

func TestAction_KeysDoNotCollideOnSeparators(t *testing.T) {
	a := Action{ComponentID: "1-2", ActionID: "3"}
	b := Action{ComponentID: "1", ActionID: "2-3"}
	assert.NotEqual(t, a.Key(), b.Key())

	seen := map[ActionKey]bool{a.Key(): true}
	assert.False(t, seen[b.Key()])
	assert.Equal(t, "1-2/3", a.Key().String())
	assert.Empty(t, ActionKey{}.String())
}
