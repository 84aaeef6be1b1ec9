package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"coopcontrol/internal/device"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := s.deps.Devices.GetApplication(r.Context(), chi.URLParam(r, "name"))
	s.writeDevice(w, app, err)
}

func (s *Server) handleGetHardware(w http.ResponseWriter, r *http.Request) {
	hw, err := s.deps.Devices.GetHardware(r.Context(), chi.URLParam(r, "name"))
	s.writeDevice(w, hw, err)
}

func (s *Server) writeDevice(w http.ResponseWriter, result interface{}, err error) {
	if errors.Is(err, device.ErrNotFound) {
		writeNotFound(w)
		return
	}
	if err != nil {
		s.logger.Error("Failed to load device", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Unknown error occurred")
		return
	}
	writeResult(w, http.StatusOK, result)
}

// handlePutApplication sets an application's status, creating it when the
// form carries create=true.
func (s *Server) handlePutApplication(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	raw := r.FormValue("status")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Missing status")
		return
	}
	status, err := device.ParseAppStatus(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid value provided: %v", err))
		return
	}

	app, created, err := s.deps.Devices.SetApplicationStatus(r.Context(), name, status, r.FormValue("create") == "true")
	if err != nil {
		s.writeSaveError(w, name, err)
		return
	}
	if created {
		writeResult(w, http.StatusCreated, app)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePutHardware updates hardware fields, creating the hardware when the
// form carries create=true.
func (s *Server) handlePutHardware(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	raw := r.FormValue("status")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Missing status")
		return
	}
	status, err := device.ParseHardwareStatus(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid value provided: %v", err))
		return
	}
	in := device.HardwareInput{Status: &status}

	if v := r.FormValue("app_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid value provided: app_id %q", v))
			return
		}
		appID := uint(id)
		in.AppID = &appID
	}
	for field, dest := range map[string]**int{
		"bcm_pin_write": &in.BCMPinWrite,
		"bcm_pin_read":  &in.BCMPinRead,
	} {
		v := r.FormValue(field)
		if v == "" {
			continue
		}
		pin, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid value provided: %s %q", field, v))
			return
		}
		*dest = &pin
	}

	hw, created, err := s.deps.Devices.SaveHardware(r.Context(), name, in, r.FormValue("create") == "true")
	if err != nil {
		s.writeSaveError(w, name, err)
		return
	}
	if created {
		writeResult(w, http.StatusCreated, hw)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeSaveError(w http.ResponseWriter, name string, err error) {
	var verr *device.ValidationError
	switch {
	case errors.Is(err, device.ErrNotFound):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s not found, use create=true to add it", name))
	case errors.Is(err, device.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s already exists", name))
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid value provided: %v", verr))
	default:
		s.logger.Warn("Error when updating device", zap.String("name", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Unknown error occurred")
	}
}
