package http

import (
	"errors"
	"net/http"
	"time"

	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/records"
	"dompet/internal/services"
)

type createReminderRequest struct {
	Title      string `json:"title"`
	Amount     string `json:"amount"`
	DayOfMonth int    `json:"day_of_month"`
}

// alarmView reports what happened to the reminder's alarm so clients can
// tell the user when the schedule did not stick.
type alarmView struct {
	Scheduled    bool      `json:"scheduled"`
	FireAt       time.Time `json:"fire_at"`
	DelaySeconds int64     `json:"delay_seconds"`
	Error        string    `json:"error,omitempty"`
}

type createReminderResponse struct {
	Reminder services.ReminderView `json:"reminder"`
	Alarm    alarmView             `json:"alarm"`
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	items, err := s.reminders.List(r.Context(), userID(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List reminders failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var req createReminderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	reminder := core.Reminder{
		UserID:     userID(r),
		Title:      sanitizeInput(req.Title),
		Amount:     core.Money{Cents: cents},
		DayOfMonth: req.DayOfMonth,
	}

	stored, outcome, err := s.reminders.Create(r.Context(), reminder)
	if err != nil {
		if status, ok := validationStatus(err); ok {
			writeError(w, status, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Create reminder failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to create reminder")
		return
	}

	s.overviewCache.Delete(stored.UserID)

	alarm := alarmView{
		Scheduled:    outcome.Scheduled(),
		FireAt:       outcome.FireAt,
		DelaySeconds: int64(outcome.Delay.Seconds()),
	}
	if outcome.Err != nil {
		alarm.Error = outcome.Err.Error()
	}

	now := time.Now()
	view := services.AnnotateReminders([]core.Reminder{stored}, now)[0]
	writeJSON(w, http.StatusCreated, createReminderResponse{Reminder: view, Alarm: alarm})
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing reminder id")
		return
	}

	if err := s.reminders.Delete(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, records.ErrNotFound) {
			writeError(w, http.StatusNotFound, "reminder not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Delete reminder failed",
			log.FieldReminderID, id,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete reminder")
		return
	}

	s.overviewCache.Delete(userID(r))
	w.WriteHeader(http.StatusNoContent)
}
