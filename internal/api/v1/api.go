// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vmunix/mediahub/internal/download"
	"github.com/vmunix/mediahub/internal/events"
	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/search"
	"github.com/vmunix/mediahub/internal/tasks"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server is the v1 API server.
type Server struct {
	deps       ServerDeps
	version    string
	eventTypes *events.Registry
	log        *slog.Logger
}

// New creates a new v1 API server.
func New(deps ServerDeps, version string, log *slog.Logger) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		deps:       deps,
		version:    version,
		eventTypes: events.DefaultRegistry(),
		log:        log.With("component", "api"),
	}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Plugins
	mux.HandleFunc("GET /api/v1/plugins", s.listPlugins)
	mux.HandleFunc("GET /api/v1/plugins/{type}", s.listPluginsOfType)
	mux.HandleFunc("GET /api/v1/plugins/{type}/{name}/config", s.getPluginConfig)
	mux.HandleFunc("POST /api/v1/plugins/{type}/{name}/config", s.setPluginConfig)
	mux.HandleFunc("POST /api/v1/plugins/{type}/{name}/toggle", s.togglePlugin)
	mux.HandleFunc("POST /api/v1/plugins/{type}/{name}/load", s.loadPlugin)
	mux.HandleFunc("DELETE /api/v1/plugins/{type}/{name}", s.unregisterPlugin)
	mux.HandleFunc("POST /api/v1/plugins/discover", s.discoverPlugins)
	mux.HandleFunc("POST /api/v1/plugins/reload", s.reloadPlugins)

	// Search
	mux.HandleFunc("GET /api/v1/search", s.searchAll)
	mux.HandleFunc("GET /api/v1/search/{name}", s.searchOne)
	mux.HandleFunc("GET /api/v1/video/{name}", s.videoInfo)
	mux.HandleFunc("POST /api/v1/search/tasks", s.createSearchTask)
	mux.HandleFunc("GET /api/v1/search/tasks/{id}", s.getSearchTask)

	// Downloads
	mux.HandleFunc("POST /api/v1/downloads", s.requireDownloads(s.createDownload))
	mux.HandleFunc("GET /api/v1/downloads", s.requireDownloads(s.listDownloads))
	mux.HandleFunc("POST /api/v1/downloads/cancel", s.requireDownloads(s.cancelDownload))
	mux.HandleFunc("GET /api/v1/downloads/tasks", s.requireDownloads(s.listDownloadTasks))

	// Events
	mux.HandleFunc("GET /api/v1/events", s.requireEventLog(s.listEvents))

	// System
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// fail maps a service error to a response. Errors no sentinel claims are
// reported as fallback, which is 502 for calls that reach a provider and
// 500 otherwise.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, fallback int, err error) {
	status, code := classify(err, fallback)
	if status >= http.StatusInternalServerError {
		s.log.Warn("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, code, err.Error())
}

func classify(err error, fallback int) (int, string) {
	switch {
	case errors.Is(err, plugin.ErrUnknownType):
		return http.StatusBadRequest, "INVALID_TYPE"
	case errors.Is(err, plugin.ErrLoadFailed):
		return http.StatusUnprocessableEntity, "LOAD_FAILED"
	case errors.Is(err, plugin.ErrNotFound), errors.Is(err, download.ErrNotFound), errors.Is(err, tasks.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, download.ErrInvalidRequest), errors.Is(err, search.ErrEmptyKeyword):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, download.ErrNoSuitableProvider):
		return http.StatusBadRequest, "NO_SUITABLE_PROVIDER"
	case errors.Is(err, download.ErrProviderDisabled):
		return http.StatusBadRequest, "PROVIDER_DISABLED"
	case errors.Is(err, search.ErrNoSearchers):
		return http.StatusBadRequest, "NO_SEARCHERS"
	case errors.Is(err, download.ErrDownloadRejected):
		return http.StatusBadGateway, "PROVIDER_REJECTED"
	}
	if fallback == http.StatusBadGateway {
		return fallback, "PROVIDER_ERROR"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// pathType extracts and validates the {type} path parameter.
func pathType(r *http.Request) (plugin.Type, error) {
	return plugin.ParseType(r.PathValue("type"))
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return false
	}
	return true
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// queryList splits a comma separated query parameter, dropping blanks.
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range strings.Split(r.URL.Query().Get(name), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
