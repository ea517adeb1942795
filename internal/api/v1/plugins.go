package v1

import (
	"net/http"
	"strconv"

	"github.com/vmunix/mediahub/internal/plugin"
)

func (s *Server) listPlugins(w http.ResponseWriter, r *http.Request) {
	all, err := s.deps.Registry.ListAll(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) listPluginsOfType(w http.ResponseWriter, r *http.Request) {
	t, err := pathType(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	infos, err := s.deps.Registry.List(r.Context(), t)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if infos == nil {
		infos = []plugin.Info{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) getPluginConfig(w http.ResponseWriter, r *http.Request) {
	t, err := pathType(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	name := r.PathValue("name")
	cfg, err := s.deps.Registry.Config(r.Context(), t, name)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if cfg == nil {
		cfg = plugin.Config{}
	}
	writeJSON(w, http.StatusOK, pluginConfigResponse{Type: t, Name: name, Config: cfg})
}

func (s *Server) setPluginConfig(w http.ResponseWriter, r *http.Request) {
	t, err := pathType(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	var cfg plugin.Config
	if !decodeBody(w, r, &cfg) {
		return
	}
	if cfg == nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "config must be a JSON object")
		return
	}

	name := r.PathValue("name")
	if err := s.deps.Registry.SetConfig(r.Context(), t, name, cfg); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	stored, err := s.deps.Registry.Config(r.Context(), t, name)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, pluginConfigResponse{Type: t, Name: name, Config: stored})
}

func (s *Server) togglePlugin(w http.ResponseWriter, r *http.Request) {
	t, err := pathType(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	enabled, err := strconv.ParseBool(r.URL.Query().Get("enabled"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "enabled must be true or false")
		return
	}

	name := r.PathValue("name")
	if err := s.deps.Registry.SetEnabled(r.Context(), t, name, enabled); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Type: t, Name: name, Enabled: enabled})
}

func (s *Server) loadPlugin(w http.ResponseWriter, r *http.Request) {
	t, err := pathType(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	name := r.PathValue("name")
	if err := s.deps.Registry.HotLoad(r.Context(), t, name); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	infos, err := s.deps.Registry.List(r.Context(), t)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	for _, info := range infos {
		if info.Name == name {
			writeJSON(w, http.StatusOK, info)
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "provider vanished after load")
}

func (s *Server) unregisterPlugin(w http.ResponseWriter, r *http.Request) {
	t, err := pathType(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	if !s.deps.Registry.Unregister(r.Context(), t, r.PathValue("name")) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "provider not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) discoverPlugins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Registry.Discover(r.Context()))
}

func (s *Server) reloadPlugins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Registry.ReloadAll(r.Context()))
}
