package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkordes/packlist/backend/internal/auth"
	"github.com/pkordes/packlist/backend/internal/querycache"
)

const eventBuffer = 32

// StreamEvents handles GET /events: a server-sent event stream of the
// caller's query cache invalidations, so clients know which lists to refetch.
//
//	event: invalidate
//	data: {"entity":"items","id":"<trip id>","user":"<user>"}
func (s *Server) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if s.svc.Events == nil {
		writeError(w, http.StatusNotFound, "not_found", "event stream disabled")
		return
	}
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.log.DebugContext(r.Context(), "events: write deadline not cleared", "error", err)
	}

	events, cancel := s.svc.Events.Subscribe(func(k querycache.Key) bool { return k.User == user }, eventBuffer)
	defer cancel()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "retry: 3000\n\n")
	if err := rc.Flush(); err != nil {
		s.log.WarnContext(r.Context(), "events: streaming unsupported", "error", err)
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.closing:
			return
		case k, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(k)
			if err != nil {
				s.log.ErrorContext(r.Context(), "events: encode key", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: invalidate\ndata: %s\n\n", data); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
