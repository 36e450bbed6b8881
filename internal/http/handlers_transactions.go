package http

import (
	"errors"
	"net/http"

	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/records"
)

type createTransactionRequest struct {
	Type     string `json:"type"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Note     string `json:"note"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	items, err := s.transactions.List(r.Context(), userID(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List transactions failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, toTransactionViews(items))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	tx := core.Transaction{
		UserID:   userID(r),
		Type:     core.TransactionType(sanitizeInput(req.Type)),
		Amount:   core.Money{Cents: cents},
		Category: sanitizeInput(req.Category),
		Note:     sanitizeInput(req.Note),
	}

	stored, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		if status, ok := validationStatus(err); ok {
			writeError(w, status, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Create transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	s.overviewCache.Delete(stored.UserID)
	writeJSON(w, http.StatusCreated, toTransactionView(stored))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	if err := s.transactions.Delete(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, records.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Delete transaction failed",
			log.FieldTransactionID, id,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.overviewCache.Delete(userID(r))
	w.WriteHeader(http.StatusNoContent)
}
