// Package api provides the read-only HTTP API over the inventory store.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/artpar/hwdb/internal/core/domain"
	"github.com/artpar/hwdb/internal/core/filter"
	"github.com/artpar/hwdb/internal/core/sorting"
	"github.com/artpar/hwdb/internal/core/validation"
	apimw "github.com/artpar/hwdb/internal/shell/api/middleware"
	"github.com/artpar/hwdb/internal/shell/api/openapi"
	"github.com/artpar/hwdb/internal/shell/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"
)

// =============================================================================
// Handler
// =============================================================================

// Config holds the dependencies and options of the API handler.
type Config struct {
	Store   store.Store
	Logger  *slog.Logger
	Version string

	// AllowedOrigins enables CORS for the listed origins ("*" for any).
	// Empty disables CORS headers.
	AllowedOrigins []string
}

// Handler provides HTTP handlers for the API.
type Handler struct {
	store          store.Store
	logger         *slog.Logger
	openapi        *openapi.Generator
	allowedOrigins []string
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		store:          cfg.Store,
		logger:         cfg.Logger,
		openapi:        newGenerator(cfg.Version),
		allowedOrigins: cfg.AllowedOrigins,
	}
}

func newGenerator(version string) *openapi.Generator {
	sortFields := make([]string, 0, len(sorting.Fields))
	for _, f := range sorting.Fields {
		sortFields = append(sortFields, string(f))
	}

	g := openapi.NewGenerator(
		openapi.WithTitle("hwdb API"),
		openapi.WithVersion(version),
		openapi.WithDescription("Read-only listings of terminal deployments and systems"),
		openapi.WithServer("/"),
	)
	g.RegisterResource(openapi.ResourceInfo{
		Name:       "deployments",
		Model:      DeploymentResponse{},
		SortFields: sortFields,
		Filters: []openapi.Filter{
			{Name: "id", Type: "integer", List: true, Description: "Deployment ids"},
			{Name: "customer", Type: "integer", List: true, Description: "Customer ids"},
			{Name: "testing", Type: "boolean", Description: "Testing deployments only, or none; unset flags count as false"},
			{Name: "type", Type: "string", List: true, Description: "Terminal types, by name (\"Exposé TV\") or short name (\"ETV\")"},
			{Name: "connection", Type: "string", List: true, Description: "Internet connections",
				Enum: enumValues(domain.ConnectionDSL, domain.ConnectionLTE)},
			{Name: "system", Type: "integer", List: true, Description: "Deployments hosting these systems, directly or as dataset"},
		},
	})
	g.RegisterResource(openapi.ResourceInfo{
		Name:       "systems",
		Model:      SystemResponse{},
		SortFields: sortFields,
		Filters: []openapi.Filter{
			{Name: "id", Type: "integer", List: true, Description: "System ids"},
			{Name: "customer", Type: "integer", List: true, Description: "Customer ids of the systems' deployments"},
			{Name: "deployment", Type: "integer", List: true, Description: "Deployment ids"},
			{Name: "dataset", Type: "integer", List: true, Description: "Dataset deployment ids"},
			{Name: "configured", Type: "boolean", Description: "Configured (true) or available (false) systems"},
			{Name: "deployed", Type: "boolean", Description: "Deployed or undeployed systems"},
			{Name: "fitted", Type: "boolean", Description: "Fitted systems"},
			{Name: "os", Type: "string", List: true, Description: "Operating systems, by name or short name, ignoring case"},
		},
	})
	return g
}

func enumValues[T ~string](values ...T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apimw.NewRequestLogger(apimw.LogConfig{
		Logger:    h.logger,
		SkipPaths: []string{"/health", "/ready"},
	}).Handler)
	r.Use(middleware.Recoverer)
	if len(h.allowedOrigins) > 0 {
		r.Use(handlers.CORS(
			handlers.AllowedOrigins(h.allowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodOptions}),
			handlers.ExposedHeaders([]string{"X-Request-ID"}),
		))
	}
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	r.Get("/openapi.json", h.openapi.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/deployments", func(r chi.Router) {
			r.Get("/", h.handleListDeployments)
			r.Get("/{id}", h.handleGetDeployment)
		})

		r.Route("/systems", func(r chi.Router) {
			r.Get("/", h.handleListSystems)
			r.Get("/{id}", h.handleGetSystem)
		})

		r.Get("/imports", h.handleListImports)
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", "check", "database", "error", err)
		checks["database"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Deployment Handlers
// =============================================================================

func (h *Handler) handleListDeployments(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parseListParams(w, r)
	if !ok {
		return
	}

	criteria, msg := deploymentCriteria(r.URL.Query())
	if msg != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return
	}

	deployments, err := h.store.ListDeployments(r.Context())
	if err != nil {
		h.logger.Error("failed to list deployments", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list deployments", "internal_error")
		return
	}

	if len(criteria.Systems) > 0 {
		systems, err := h.store.ListSystems(r.Context())
		if err != nil {
			h.logger.Error("failed to list systems", "error", err)
			h.writeError(w, http.StatusInternalServerError, "failed to list deployments", "internal_error")
			return
		}
		criteria = criteria.Link(systems)
	}

	matches := slices.Collect(filter.Where(filter.Deployments(deployments, params.query), criteria.Match))
	meta := sortList(params, matches)
	page := paginate(matches, meta.Offset, meta.Limit)

	resp := ListDeploymentsResponse{
		Deployments: make([]DeploymentResponse, 0, len(page)),
		ListMeta:    meta,
	}
	for _, d := range page {
		resp.Deployments = append(resp.Deployments, deploymentToResponse(d))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetDeployment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	deployment, err := h.store.GetDeployment(r.Context(), id)
	if err != nil {
		if store.IsNotFound(err) {
			h.writeError(w, http.StatusNotFound, "deployment not found", "not_found")
			return
		}
		h.logger.Error("failed to get deployment", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get deployment", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, deploymentToResponse(deployment))
}

// =============================================================================
// System Handlers
// =============================================================================

func (h *Handler) handleListSystems(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parseListParams(w, r)
	if !ok {
		return
	}

	criteria, msg := systemCriteria(r.URL.Query())
	if msg != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return
	}

	systems, err := h.store.ListSystems(r.Context())
	if err != nil {
		h.logger.Error("failed to list systems", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list systems", "internal_error")
		return
	}

	matches := slices.Collect(filter.Where(filter.Systems(systems, params.query), criteria.Match))
	meta := sortList(params, matches)
	page := paginate(matches, meta.Offset, meta.Limit)

	resp := ListSystemsResponse{
		Systems:  make([]SystemResponse, 0, len(page)),
		ListMeta: meta,
	}
	for _, s := range page {
		resp.Systems = append(resp.Systems, systemToResponse(s))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSystem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	system, err := h.store.GetSystem(r.Context(), id)
	if err != nil {
		if store.IsNotFound(err) {
			h.writeError(w, http.StatusNotFound, "system not found", "not_found")
			return
		}
		h.logger.Error("failed to get system", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get system", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, systemToResponse(system))
}

// =============================================================================
// Import Handlers
// =============================================================================

func (h *Handler) handleListImports(w http.ResponseWriter, r *http.Request) {
	opts := pageOptions(r).Normalize()

	imports, err := h.store.ListImports(r.Context(), opts)
	if err != nil {
		h.logger.Error("failed to list imports", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list imports", "internal_error")
		return
	}
	if imports == nil {
		imports = []store.Import{}
	}

	h.writeJSON(w, http.StatusOK, ListImportsResponse{
		Imports: imports,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})
}

// =============================================================================
// Listing
// =============================================================================

// listParams are the query parameters shared by the listing endpoints.
type listParams struct {
	query      string
	sort       string
	descending bool
	page       store.ListOptions
}

func (h *Handler) parseListParams(w http.ResponseWriter, r *http.Request) (listParams, bool) {
	q := r.URL.Query()
	params := listParams{
		query: q.Get("q"),
		sort:  q.Get("sort"),
		page:  pageOptions(r).Normalize(),
	}

	desc, msg := validation.ParseDescending(q.Get("desc"))
	if msg != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return listParams{}, false
	}
	params.descending = desc

	return params, true
}

// deploymentCriteria reads the structured deployment filters of a listing.
func deploymentCriteria(q url.Values) (filter.DeploymentCriteria, string) {
	var (
		c   filter.DeploymentCriteria
		msg string
	)
	if c.IDs, msg = validation.ParseIDList("id", q["id"]); msg != "" {
		return c, msg
	}
	if c.Customers, msg = validation.ParseIDList("customer", q["customer"]); msg != "" {
		return c, msg
	}
	if c.Systems, msg = validation.ParseIDList("system", q["system"]); msg != "" {
		return c, msg
	}
	if c.Testing, msg = validation.ParseFlag("testing", q.Get("testing")); msg != "" {
		return c, msg
	}
	for _, raw := range validation.SplitList(q["type"]) {
		t, ok := domain.ParseDeploymentType(raw)
		if !ok {
			return c, "unknown type: " + raw
		}
		c.Types = append(c.Types, t)
	}
	for _, raw := range validation.SplitList(q["connection"]) {
		conn, ok := domain.ParseConnection(raw)
		if !ok {
			return c, "unknown connection: " + raw
		}
		c.Connections = append(c.Connections, conn)
	}
	return c, ""
}

// systemCriteria reads the structured system filters of a listing.
func systemCriteria(q url.Values) (filter.SystemCriteria, string) {
	var (
		c   filter.SystemCriteria
		msg string
	)
	if c.IDs, msg = validation.ParseIDList("id", q["id"]); msg != "" {
		return c, msg
	}
	if c.Customers, msg = validation.ParseIDList("customer", q["customer"]); msg != "" {
		return c, msg
	}
	if c.Deployments, msg = validation.ParseIDList("deployment", q["deployment"]); msg != "" {
		return c, msg
	}
	if c.Datasets, msg = validation.ParseIDList("dataset", q["dataset"]); msg != "" {
		return c, msg
	}
	if c.Configured, msg = validation.ParseFlag("configured", q.Get("configured")); msg != "" {
		return c, msg
	}
	if c.Deployed, msg = validation.ParseFlag("deployed", q.Get("deployed")); msg != "" {
		return c, msg
	}
	if c.Fitted, msg = validation.ParseFlag("fitted", q.Get("fitted")); msg != "" {
		return c, msg
	}
	for _, raw := range validation.SplitList(q["os"]) {
		os, ok := domain.ParseOperatingSystem(raw)
		if !ok {
			// Snapshots may name systems outside the known list.
			os = raw
		}
		c.OperatingSystems = append(c.OperatingSystems, os)
	}
	return c, ""
}

// sortList sorts records in place and describes the resulting listing.
// An unknown sort field leaves store order and is not echoed back.
func sortList[T sorting.Record](p listParams, records []T) ListMeta {
	meta := ListMeta{
		Total:      len(records),
		Limit:      p.page.Limit,
		Offset:     p.page.Offset,
		Query:      p.query,
		Descending: p.descending,
	}
	if sorting.Sort(records, p.sort, p.descending) {
		field, _ := sorting.ParseField(p.sort)
		meta.Sort = string(field)
	}
	return meta
}

func pageOptions(r *http.Request) store.ListOptions {
	opts := store.DefaultListOptions()

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			opts.Limit = l
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil {
			opts.Offset = o
		}
	}

	return opts
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	return items[offset:min(offset+limit, len(items))]
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, msg := validation.ParseRecordID(chi.URLParam(r, "id"))
	if msg != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func deploymentToResponse(d *domain.Deployment) DeploymentResponse {
	return DeploymentResponse{
		Deployment:      *d,
		Display:         domain.DeploymentToString(d),
		CustomerDisplay: domain.CustomerToString(&d.Customer),
	}
}

func systemToResponse(s *domain.System) SystemResponse {
	return SystemResponse{
		System:  *s,
		Display: domain.SystemToString(s),
	}
}
