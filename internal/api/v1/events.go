package v1

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/vmunix/mediahub/internal/events"
)

// maxEvents caps how many events a single request returns.
const maxEvents = 1000

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be non-negative")
		return
	}
	if limit > maxEvents {
		limit = maxEvents
	}

	eventType := r.URL.Query().Get("type")
	if eventType != "" && !s.eventTypes.Known(eventType) {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "unknown event type: "+eventType)
		return
	}
	fetch := limit
	if eventType != "" {
		fetch = maxEvents
	}

	var (
		raw []events.RawEvent
		err error
	)
	if since := r.URL.Query().Get("since"); since != "" {
		t, perr := time.Parse(time.RFC3339, since)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "since must be an RFC3339 timestamp")
			return
		}
		raw, err = s.deps.EventLog.Since(r.Context(), t)
	} else {
		raw, err = s.deps.EventLog.Recent(r.Context(), fetch)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}
	if eventType != "" {
		raw = slices.DeleteFunc(raw, func(e events.RawEvent) bool { return e.EventType != eventType })
	}
	if len(raw) > limit {
		raw = raw[:limit]
	}

	resp := listEventsResponse{
		Items: make([]EventResponse, len(raw)),
		Total: len(raw),
	}
	for i, e := range raw {
		resp.Items[i] = EventResponse{
			ID:         e.ID,
			EventType:  e.EventType,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			OccurredAt: e.OccurredAt.Format(time.RFC3339),
		}
		if typed, err := s.eventTypes.Unmarshal(e); err == nil {
			resp.Items[i].Payload = typed
		} else if e.Payload != "" && json.Valid([]byte(e.Payload)) {
			resp.Items[i].Payload = json.RawMessage(e.Payload)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
