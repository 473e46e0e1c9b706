package stubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/modcar/ingreso/internal/money"
	"github.com/modcar/ingreso/internal/payload"
	"github.com/modcar/ingreso/internal/taller"
)

// Options tune how the stub behaves.
type Options struct {
	// Delay is added before every catalog answer so loading states can be
	// seen in the UI.
	Delay time.Duration
	// SlashlessActions routes the action catalog only without the trailing
	// slash, like some deployments do.
	SlashlessActions bool
}

// Submission is a recorded POST to the intake endpoint.
type Submission struct {
	ID          string
	Componentes []string
	Acciones    []payload.ActionItem
	Repuestos   []payload.PartItem
	Form        map[string][]string
}

// Server answers the workshop API routes from fixtures.
type Server struct {
	fx   Fixtures
	opts Options
	log  *zap.Logger

	mu          sync.Mutex
	submissions []Submission
}

// New builds a stub server. log may be nil.
func New(fx Fixtures, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{fx: fx, opts: opts, log: log}
}

// Submissions returns the intake posts received so far.
func (s *Server) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Submission(nil), s.submissions...)
}

// Router returns the gin engine serving every route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	car := r.Group("/car")
	{
		if !s.opts.SlashlessActions {
			car.GET("/acciones-lookup/:id/", s.actions)
		}
		car.GET("/acciones-lookup/:id", s.actions)
		car.GET("/componentes-lookup/", s.lookup)
		car.GET("/diagnostico/sugerir-repuestos/", s.previewParts)
		car.GET("/diagnostico/:id/sugerir-repuestos/", s.diagnosticParts)
		car.GET("/repuestos/buscar-insumos/", s.searchInsumos)
		car.POST("/ingreso/", s.submit)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) actions(c *gin.Context) {
	if s.opts.Delay > 0 {
		select {
		case <-time.After(s.opts.Delay):
		case <-c.Request.Context().Done():
			return
		}
	}
	comp, ok := s.fx.componente(c.Param("id"))
	if !ok || len(comp.Acciones) == 0 {
		c.JSON(http.StatusOK, taller.ActionsResponse{OK: false, Mensaje: "Componente sin acciones"})
		return
	}
	res := taller.ActionsResponse{OK: true}
	for _, a := range comp.Acciones {
		res.Acciones = append(res.Acciones, taller.Accion{
			AccionID:     taller.ID(a.ID),
			AccionNombre: a.Nombre,
			PrecioBase:   amount(a.PrecioBase),
		})
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) lookup(c *gin.Context) {
	part := strings.TrimSpace(c.Query("part"))
	for _, comp := range s.fx.Componentes {
		if comp.Codigo != "" && strings.EqualFold(comp.Codigo, part) {
			c.JSON(http.StatusOK, taller.LookupResponse{
				Found:  true,
				Parent: taller.LookupParent{ID: taller.ID(comp.ID), Nombre: comp.Nombre, Codigo: comp.Codigo},
				Hijos:  []taller.LookupChild{},
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"found": false})
}

func (s *Server) previewParts(c *gin.Context) {
	c.JSON(http.StatusOK, taller.PartsResponse{Repuestos: s.partsFor(c.QueryArray("componentes_ids"))})
}

func (s *Server) diagnosticParts(c *gin.Context) {
	ids, ok := s.fx.Diagnosticos[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "diagnóstico no encontrado"})
		return
	}
	c.JSON(http.StatusOK, taller.PartsResponse{Repuestos: s.partsFor(ids)})
}

func (s *Server) partsFor(componentIDs []string) []taller.Repuesto {
	want := make(map[string]bool, len(componentIDs))
	for _, id := range componentIDs {
		want[strings.TrimSpace(id)] = true
	}
	out := []taller.Repuesto{}
	for _, r := range s.fx.Repuestos {
		if !fits(r.Componentes, want) {
			continue
		}
		out = append(out, taller.Repuesto{
			ID:              taller.ID(r.ID),
			Nombre:          r.Nombre,
			OEM:             r.OEM,
			SKU:             r.SKU,
			Posicion:        r.Posicion,
			PrecioVenta:     amount(r.PrecioVenta),
			Disponible:      r.Disponible,
			Compatibilidad:  r.Compatibilidad,
			RepuestoStockID: taller.ID(r.StockID),
		})
	}
	return out
}

func fits(components []string, want map[string]bool) bool {
	for _, id := range components {
		if want[id] {
			return true
		}
	}
	return false
}

func (s *Server) searchInsumos(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	out := []taller.Insumo{}
	if len([]rune(q)) < taller.MinSearchTerm {
		c.JSON(http.StatusOK, taller.InsumosResponse{Insumos: out})
		return
	}
	for _, i := range s.fx.Insumos {
		hay := strings.ToLower(i.Nombre + " " + i.SKU + " " + i.Marca)
		if !strings.Contains(hay, q) {
			continue
		}
		out = append(out, taller.Insumo{
			ID:     taller.ID(i.ID),
			Nombre: i.Nombre,
			SKU:    i.SKU,
			Marca:  i.Marca,
			Precio: amount(i.Precio),
			Stock:  i.Stock,
		})
	}
	c.JSON(http.StatusOK, taller.InsumosResponse{Insumos: out})
}

func (s *Server) submit(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	form := c.Request.PostForm

	sub := Submission{
		ID:          uuid.NewString(),
		Componentes: form[payload.FieldComponents],
		Form:        map[string][]string(form),
	}
	if raw := form.Get(payload.FieldActions); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sub.Acciones); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "acciones_componentes_json inválido"})
			return
		}
	}
	parts, err := payload.ParsePartList(form.Get(payload.FieldParts))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "repuestos_json inválido"})
		return
	}
	sub.Repuestos = parts.Items()

	s.mu.Lock()
	s.submissions = append(s.submissions, sub)
	s.mu.Unlock()

	s.log.Info("ingreso recibido",
		zap.String("id", sub.ID),
		zap.Int("componentes", len(sub.Componentes)),
		zap.Int("acciones", len(sub.Acciones)),
		zap.Int("repuestos", len(sub.Repuestos)),
	)
	c.JSON(http.StatusCreated, gin.H{"id": sub.ID})
}

func amount(raw string) taller.Amount {
	d, err := money.Parse(raw)
	if err != nil {
		return taller.NewAmount(decimal.Zero)
	}
	return taller.NewAmount(d)
}

// ListenAndServe serves the stub on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("stub api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("stub api: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("stub api shutdown: %w", err)
		}
		return nil
	}
}
