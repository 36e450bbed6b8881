package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dompet/internal/log"
	"dompet/internal/services"
)

const keepAliveInterval = 25 * time.Second

// handleEvents streams the user's dashboard over SSE. The first event is the
// current state; every store mutation afterwards pushes a full replacement.
// Slow clients only ever see the latest snapshot.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	user := userID(r)
	ctx := r.Context()

	snapshots, err := s.store.Watch(ctx, user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Watch failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	initial, err := s.buildOverview(r, user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Initial overview failed", log.FieldError, err)
		return
	}
	if err := writeEvent(w, flusher, initial); err != nil {
		return
	}

	s.logger.InfoContext(ctx, "SSE subscriber connected", log.FieldUserID, user)
	defer s.logger.InfoContext(ctx, "SSE subscriber disconnected", log.FieldUserID, user)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case snap, open := <-snapshots:
			if !open {
				return
			}
			overview := services.BuildOverview(snap, time.Now())
			s.overviewCache.Set(user, overview)
			if err := writeEvent(w, flusher, overview); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, overview services.Overview) error {
	payload, err := json.Marshal(overview)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: overview\ndata: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
