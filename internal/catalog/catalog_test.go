package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modcar/ingreso/internal/taller"
)

type fakeFetcher struct {
	mu       sync.Mutex
	calls    []string
	respond  func(url string) (taller.ActionsResponse, error)
	inflight atomic.Int32
	delay    time.Duration
}

func (f *fakeFetcher) FetchActions(_ context.Context, rawURL string) (taller.ActionsResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	f.mu.Unlock()
	f.inflight.Add(1)
	defer f.inflight.Add(-1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.respond(rawURL)
}

func (f *fakeFetcher) urls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		template string
		id       string
		want     string
	}{
		{"/car/acciones-lookup/0/", "5", "/car/acciones-lookup/5/"},
		{"/car/acciones-lookup/0", "5", "/car/acciones-lookup/5/"},
		{"http://taller.local/car/acciones-por-componente/0/", "12", "http://taller.local/car/acciones-por-componente/12/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildURL(tt.template, tt.id), tt.template)
	}
}

func TestFetchActions_FallsBackToSlashlessURL(t *testing.T) {
	f := &fakeFetcher{respond: func(u string) (taller.ActionsResponse, error) {
		if u == "/car/acciones-lookup/5/" {
			return taller.ActionsResponse{}, errors.New("api returned status 404")
		}
		return taller.ActionsResponse{OK: true, Acciones: []taller.Accion{{AccionID: "9", AccionNombre: "Limpiar"}}}, nil
	}}
	c := New(f, "/car/acciones-lookup/0/", nil)

	res := c.FetchActions(context.Background(), "5")
	assert.False(t, res.Failed)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "9", res.Entries[0].ActionID)
	assert.Equal(t, []string{"/car/acciones-lookup/5/", "/car/acciones-lookup/5"}, f.urls())
}

func TestFetchActions_FailureResolvesEmpty(t *testing.T) {
	f := &fakeFetcher{respond: func(string) (taller.ActionsResponse, error) {
		return taller.ActionsResponse{}, errors.New("decode response: invalid character")
	}}
	c := New(f, "/car/acciones-lookup/0/", nil)

	res := c.FetchActions(context.Background(), "5")
	assert.True(t, res.Failed)
	assert.Empty(t, res.Entries)
	assert.Len(t, f.urls(), 2)
}

func TestFetchActions_NotOKIsAuthoritativeEmpty(t *testing.T) {
	f := &fakeFetcher{respond: func(string) (taller.ActionsResponse, error) {
		return taller.ActionsResponse{OK: false, Mensaje: "sin acciones"}, nil
	}}
	c := New(f, "/car/acciones-lookup/0/", nil)

	res := c.FetchActions(context.Background(), "5")
	assert.False(t, res.Failed)
	assert.Empty(t, res.Entries)
	assert.Len(t, f.urls(), 1, "an ok=false answer must not trigger the fallback url")
}

func TestFetchActions_CachesPerComponent(t *testing.T) {
	f := &fakeFetcher{respond: func(string) (taller.ActionsResponse, error) {
		return taller.ActionsResponse{OK: true}, nil
	}}
	c := New(f, "/car/acciones-lookup/0/", nil)

	c.FetchActions(context.Background(), "5")
	res := c.FetchActions(context.Background(), "5")
	c.FetchActions(context.Background(), "7")

	assert.True(t, res.Cached)
	assert.Equal(t, int64(2), c.Fetches())
	assert.Len(t, f.urls(), 2)
}

func TestFetchActions_ConcurrentCallersShareOneRequest(t *testing.T) {
	f := &fakeFetcher{
		delay: 20 * time.Millisecond,
		respond: func(string) (taller.ActionsResponse, error) {
			return taller.ActionsResponse{OK: true, Acciones: []taller.Accion{{AccionID: "1", AccionNombre: "Cambiar"}}}, nil
		},
	}
	c := New(f, "/car/acciones-lookup/0/", nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := c.FetchActions(context.Background(), "5")
			assert.Len(t, res.Entries, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), c.Fetches())
	assert.Len(t, f.urls(), 1)
}

func TestFetchActions_AgainstHTTPServer(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/car/acciones-lookup/5":
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `[{"accion_id": 9, "accion_nombre": "Limpiar", "precio_base": "1000"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client, err := taller.NewClient(server.URL, taller.DefaultEndpoints())
	require.NoError(t, err)
	c := New(client, client.Endpoints().ActionsTemplate, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	res := c.FetchActions(ctx, "5")
	require.False(t, res.Failed)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "Limpiar", res.Entries[0].ActionName)
	assert.Equal(t, "1000", res.Entries[0].BasePrice.String())
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchActions_UnconfiguredTemplate(t *testing.T) {
	c := New(nil, "", nil)
	res := c.FetchActions(context.Background(), "5")
	assert.True(t, res.Failed)
	assert.Empty(t, res.Entries)
}
