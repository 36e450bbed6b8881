package http

import (
	"net/http"
	"time"

	"dompet/internal/log"
	"dompet/internal/records"
	"dompet/internal/services"
)

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	user := userID(r)

	if cached, ok := s.overviewCache.Get(user); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	overview, err := s.buildOverview(r, user)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Build overview failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to build overview")
		return
	}

	s.overviewCache.Set(user, overview)
	writeJSON(w, http.StatusOK, overview)
}

// buildOverview recomputes the dashboard from the user's full collections.
func (s *Server) buildOverview(r *http.Request, user string) (services.Overview, error) {
	transactions, err := s.store.ListTransactions(r.Context(), user)
	if err != nil {
		return services.Overview{}, err
	}
	reminders, err := s.store.ListReminders(r.Context(), user)
	if err != nil {
		return services.Overview{}, err
	}

	snap := records.Snapshot{
		UserID:       user,
		Transactions: transactions,
		Reminders:    reminders,
	}
	return services.BuildOverview(snap, time.Now()), nil
}
