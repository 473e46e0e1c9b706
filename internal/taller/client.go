package taller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// ErrEndpointDisabled is returned when the endpoint backing a call is not
// configured. Callers treat it as "feature not available on this install".
var ErrEndpointDisabled = errors.New("endpoint not configured")

// Fetcher is the subset of the workshop API the intake form consumes.
// *Client implements it; tests substitute fakes.
type Fetcher interface {
	FetchActions(ctx context.Context, rawURL string) (ActionsResponse, error)
	LookupComponent(ctx context.Context, code string) (LookupResponse, error)
	SuggestParts(ctx context.Context, query PartsQuery) ([]Repuesto, error)
	SearchInsumos(ctx context.Context, term string) ([]Insumo, error)
	SubmitIngreso(ctx context.Context, form url.Values) (SubmitResult, error)
}

var _ Fetcher = (*Client)(nil)

// Endpoints holds the path (or absolute URL) of each API the form talks to.
type Endpoints struct {
	ActionsTemplate string
	ComponentLookup string
	PartsPreview    string
	PartsWithID     string
	InsumoSearch    string
	Submit          string
}

// DefaultEndpoints returns the routes of a stock installation.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		ActionsTemplate: "/car/acciones-lookup/0/",
		ComponentLookup: "/car/componentes-lookup/",
		PartsPreview:    "/car/diagnostico/sugerir-repuestos/",
		PartsWithID:     "/car/diagnostico/0/sugerir-repuestos/",
		InsumoSearch:    "/car/repuestos/buscar-insumos/",
		Submit:          "/car/ingreso/",
	}
}

// Client talks to the workshop HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	endpoints Endpoints
}

const (
	defaultBaseURL   = "127.0.0.1:8000"
	defaultUserAgent = "ingreso/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, endpoints Endpoints) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		endpoints: endpoints,
	}, nil
}

// Endpoints returns the configured routes.
func (c *Client) Endpoints() Endpoints {
	if c == nil {
		return Endpoints{}
	}
	return c.endpoints
}

// FetchActions retrieves the action catalog at rawURL. The URL is built by the
// caller from the actions template so that fallbacks can be tried in order.
func (c *Client) FetchActions(ctx context.Context, rawURL string) (ActionsResponse, error) {
	if c == nil {
		return ActionsResponse{}, fmt.Errorf("client is nil")
	}
	rel, err := url.Parse(rawURL)
	if err != nil {
		return ActionsResponse{}, fmt.Errorf("parse actions url %q: %w", rawURL, err)
	}
	var payload ActionsResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return ActionsResponse{}, err
	}
	return payload, nil
}

// groupCode matches SVG group ids that never map to a component.
var groupCode = regexp.MustCompile(`^(g\d+|svg\d+)$`)

// LookupComponent resolves a diagram part code to its parent component.
func (c *Client) LookupComponent(ctx context.Context, code string) (LookupResponse, error) {
	if c == nil {
		return LookupResponse{}, fmt.Errorf("client is nil")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return LookupResponse{}, fmt.Errorf("part code required")
	}
	if groupCode.MatchString(strings.ToLower(code)) {
		return LookupResponse{Found: false}, nil
	}
	if c.endpoints.ComponentLookup == "" {
		return LookupResponse{}, ErrEndpointDisabled
	}
	rel, err := url.Parse(c.endpoints.ComponentLookup)
	if err != nil {
		return LookupResponse{}, fmt.Errorf("parse lookup url: %w", err)
	}
	values := url.Values{}
	values.Set("part", code)
	rel.RawQuery = values.Encode()

	var payload LookupResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return LookupResponse{}, err
	}
	return payload, nil
}

// PartsQuery selects between the two suggestion modes: a saved diagnostic, or
// a preview built from the selected components and vehicle attributes.
type PartsQuery struct {
	DiagnosticoID string
	ComponentIDs  []string
	Marca         string
	Modelo        string
	Anio          string
	Motor         string
}

// SuggestParts retrieves replacement part suggestions.
func (c *Client) SuggestParts(ctx context.Context, query PartsQuery) ([]Repuesto, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel, err := c.partsURL(query)
	if err != nil {
		return nil, err
	}
	var payload PartsResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Repuestos, nil
}

func (c *Client) partsURL(query PartsQuery) (*url.URL, error) {
	if id := strings.TrimSpace(query.DiagnosticoID); id != "" {
		if c.endpoints.PartsWithID == "" {
			return nil, ErrEndpointDisabled
		}
		return url.Parse(strings.Replace(c.endpoints.PartsWithID, "0", url.PathEscape(id), 1))
	}
	if c.endpoints.PartsPreview == "" {
		return nil, ErrEndpointDisabled
	}
	rel, err := url.Parse(c.endpoints.PartsPreview)
	if err != nil {
		return nil, fmt.Errorf("parse parts url: %w", err)
	}
	values := url.Values{}
	for _, id := range query.ComponentIDs {
		if id = strings.TrimSpace(id); id != "" {
			values.Add("componentes_ids", id)
		}
	}
	for key, value := range map[string]string{
		"marca":  query.Marca,
		"modelo": query.Modelo,
		"anio":   query.Anio,
		"motor":  query.Motor,
	} {
		if v := strings.TrimSpace(value); v != "" {
			values.Set(key, v)
		}
	}
	rel.RawQuery = values.Encode()
	return rel, nil
}

// MinSearchTerm is the shortest term the insumo search accepts.
const MinSearchTerm = 2

// SearchInsumos runs the free-text supply search. Terms shorter than
// MinSearchTerm return no results without a request.
func (c *Client) SearchInsumos(ctx context.Context, term string) ([]Insumo, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinSearchTerm {
		return nil, nil
	}
	if c.endpoints.InsumoSearch == "" {
		return nil, ErrEndpointDisabled
	}
	rel, err := url.Parse(c.endpoints.InsumoSearch)
	if err != nil {
		return nil, fmt.Errorf("parse insumo url: %w", err)
	}
	values := url.Values{}
	values.Set("q", term)
	rel.RawQuery = values.Encode()

	var payload InsumosResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Error != "" {
		return payload.Insumos, fmt.Errorf("insumo search: %s", payload.Error)
	}
	return payload.Insumos, nil
}

// SubmitIngreso posts the intake form. The body must be fully built before
// the call; nothing here reads shared selection state.
func (c *Client) SubmitIngreso(ctx context.Context, form url.Values) (SubmitResult, error) {
	if c == nil {
		return SubmitResult{}, fmt.Errorf("client is nil")
	}
	if c.endpoints.Submit == "" {
		return SubmitResult{}, ErrEndpointDisabled
	}
	rel, err := url.Parse(c.endpoints.Submit)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("parse submit url: %w", err)
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, text/html")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	result := SubmitResult{Status: resp.StatusCode, Location: resp.Request.URL.String()}
	if resp.StatusCode >= 400 {
		return result, fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var body struct {
			ID ID `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			result.ID = body.ID.String()
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return result, nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body io.Reader, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base_url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
