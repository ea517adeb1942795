package v1

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/search"
	"github.com/vmunix/mediahub/internal/tasks"
)

// searchAll fans the keyword out to every enabled searcher, or to the
// comma separated plugins parameter.
func (s *Server) searchAll(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Search.Search(r.Context(), r.URL.Query().Get("keyword"), queryList(r, "plugins")...)
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, err)
		return
	}
	s.writeSearch(w, r, res)
}

// searchOne runs a single provider. Unlike searchAll, a provider failure is
// the request's failure.
func (s *Server) searchOne(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	res, err := s.deps.Search.Search(r.Context(), r.URL.Query().Get("keyword"), name)
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, err)
		return
	}
	if err := res.Errors[name]; err != nil {
		s.fail(w, r, http.StatusBadGateway, fmt.Errorf("%s: %w", name, err))
		return
	}
	s.writeSearch(w, r, res)
}

func (s *Server) writeSearch(w http.ResponseWriter, r *http.Request, res *search.Result) {
	results, active, err := s.deps.Registry.ResolveResults(r.Context(), res.Results)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if results == nil {
		results = []plugin.SearchResult{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Keyword:       res.Keyword,
		Results:       results,
		Total:         len(results),
		ParsersActive: active,
		Errors:        res.ErrorMessages(),
	})
}

func (s *Server) videoInfo(w http.ResponseWriter, r *http.Request) {
	u := strings.TrimSpace(r.URL.Query().Get("url"))
	if u == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "url is required")
		return
	}
	searcher, err := s.deps.Registry.Searcher(r.PathValue("name"))
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	info, err := searcher.VideoInfo(r.Context(), u)
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) createSearchTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	keyword := search.NormalizeKeyword(req.Keyword)
	if req.Plugin == "" || keyword == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "plugin and keyword are required")
		return
	}
	searcher, err := s.deps.Registry.Searcher(req.Plugin)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	// The task outlives the request.
	id := s.deps.Tasks.Submit(context.WithoutCancel(r.Context()), searcher, keyword)
	writeJSON(w, http.StatusAccepted, createTaskResponse{TaskID: id, Status: tasks.StatusPending})
}

func (s *Server) getSearchTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, ok := s.deps.Tasks.Get(id)
	if !ok {
		s.fail(w, r, http.StatusInternalServerError, fmt.Errorf("%w: %s", tasks.ErrNotFound, id))
		return
	}
	resp := searchTaskResponse{SearchTask: task}
	if len(task.Results) > 0 {
		results, active, err := s.deps.Registry.ResolveResults(r.Context(), task.Results)
		if err != nil {
			s.fail(w, r, http.StatusInternalServerError, err)
			return
		}
		resp.Results, resp.ParsersActive = results, active
	}
	if resp.Results == nil {
		resp.Results = []plugin.SearchResult{}
	}
	writeJSON(w, http.StatusOK, resp)
}
