package v1

import (
	"net/http"

	"github.com/vmunix/mediahub/internal/download"
	"github.com/vmunix/mediahub/internal/plugin"
)

func (s *Server) createDownload(w http.ResponseWriter, r *http.Request) {
	var req download.Request
	if !decodeBody(w, r, &req) {
		return
	}
	task, err := s.deps.Downloads.Dispatch(r.Context(), req)
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskToResponse(task))
}

func (s *Server) listDownloads(w http.ResponseWriter, r *http.Request) {
	platform := r.URL.Query().Get("platform")
	if platform == "" {
		platform = download.PlatformAll
	}
	listing, err := s.deps.Downloads.Downloads(r.Context(), platform)
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, err)
		return
	}
	if listing.Records == nil {
		listing.Records = []plugin.DownloadRecord{}
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) cancelDownload(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.deps.Downloads.Cancel(r.Context(), req.Platform, req.DownloadID); err != nil {
		s.fail(w, r, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listDownloadTasks(w http.ResponseWriter, r *http.Request) {
	filter := download.Filter{
		Plugin: r.URL.Query().Get("plugin"),
		Active: r.URL.Query().Get("active") == "true",
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit and offset must be non-negative")
		return
	}
	if st := r.URL.Query().Get("status"); st != "" {
		status := plugin.DownloadStatus(st)
		filter.Status = &status
	}

	items, total, err := s.deps.Downloads.Tasks(r.Context(), filter)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	resp := listDownloadTasksResponse{
		Items:  make([]downloadTaskResponse, len(items)),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for i, t := range items {
		resp.Items[i] = taskToResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

func taskToResponse(t *plugin.DownloadTask) downloadTaskResponse {
	return downloadTaskResponse{
		ID:        t.ID,
		URL:       t.URL,
		Title:     t.Title,
		Status:    t.Status,
		Progress:  t.Progress,
		Plugin:    t.PluginName,
		ClientID:  t.ClientID(),
		SavePath:  t.SavePath,
		Metadata:  t.Metadata,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
