package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"coopcontrol/internal/astro"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// handleGetDate returns one day of astronomical data in UTC and local time
func (s *Server) handleGetDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(astro.DateLayout, date); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date")
		return
	}

	rec, err := s.deps.Records.GetByDate(r.Context(), date)
	if errors.Is(err, astro.ErrNotFound) {
		writeNotFound(w)
		return
	}
	if err != nil {
		s.logger.Error("Failed to load astronomical record", zap.String("date", date), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Unknown error occurred")
		return
	}

	view, err := s.deps.Records.Render(*rec)
	if err != nil {
		s.logger.Error("Failed to render astronomical record", zap.String("date", date), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Unknown error occurred")
		return
	}

	writeResult(w, http.StatusOK, view)
}

// handleAddDaily fetches and stores data for the form or query "date"
func (s *Server) handleAddDaily(w http.ResponseWriter, r *http.Request) {
	date := r.FormValue("date")
	if date == "" {
		date = astro.Today
	}
	if date != astro.Today {
		if _, err := time.Parse(astro.DateLayout, date); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date")
			return
		}
	}

	id, err := s.deps.Astro.AddDaily(r.Context(), date)
	if err != nil {
		var transport *astro.TransportError
		var malformed *astro.MalformedResponseError
		if errors.As(err, &transport) || errors.As(err, &malformed) {
			writeError(w, http.StatusBadGateway, fmt.Sprintf("Error initializing results for %s, see logs", date))
			return
		}
		writeError(w, http.StatusInternalServerError, "Unknown error occurred")
		return
	}

	writeResult(w, http.StatusCreated, map[string]interface{}{
		"id":   id,
		"date": date,
	})
}
