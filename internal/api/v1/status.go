package v1

import (
	"net/http"

	"github.com/vmunix/mediahub/internal/download"
	"github.com/vmunix/mediahub/internal/plugin"
)

// getStatus reports registry and task counts. With check=true it also lists
// every enabled downloader so unreachable daemons show up.
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	all, err := s.deps.Registry.ListAll(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	resp := statusResponse{
		Status:      "ok",
		Version:     s.version,
		Plugins:     make(map[plugin.Type]counts, len(all)),
		SearchTasks: s.deps.Tasks.Len(),
	}
	for t, infos := range all {
		c := counts{Registered: len(infos)}
		for _, info := range infos {
			if info.Enabled {
				c.Enabled++
			}
		}
		resp.Plugins[t] = c
	}

	if r.URL.Query().Get("check") == "true" && s.deps.Downloads != nil {
		resp.Downloaders = s.checkDownloaders(r, all[plugin.TypeDownload])
		for _, state := range resp.Downloaders {
			if state != "ok" {
				resp.Status = "degraded"
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) checkDownloaders(r *http.Request, infos []plugin.Info) map[string]string {
	out := make(map[string]string)
	listing, err := s.deps.Downloads.Downloads(r.Context(), download.PlatformAll)
	if err != nil {
		for _, info := range infos {
			out[info.Name] = err.Error()
		}
		return out
	}
	for _, info := range infos {
		if !info.Enabled {
			continue
		}
		if msg, failed := listing.Errors[info.Name]; failed {
			out[info.Name] = msg
		} else {
			out[info.Name] = "ok"
		}
	}
	return out
}
