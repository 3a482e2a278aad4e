package server

import (
	"net/http"

	"github.com/technodrive/vehictrl/internal/binding"
	"go.uber.org/zap"
)

type registerRequest struct {
	VIN      string `json:"vin"`
	DeviceID string `json:"device_id"`
}

func (s *Server) respond(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil && s.logger != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"message": "VehiCtrl registration server is running",
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	if req.VIN == "" || req.DeviceID == "" {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": "vin and device_id are required"})
		return
	}

	rec, err := s.bindings.Register(r.Context(), req.VIN, req.DeviceID)
	switch err {
	case nil:
		s.respond(w, http.StatusCreated, map[string]string{
			"status":  "registered",
			"message": "Device registered successfully",
			"vin":     rec.VIN,
		})
	case binding.ErrInvalidVIN:
		s.respond(w, http.StatusUnauthorized, map[string]string{
			"message": "Invalid VIN/Chassis number",
		})
	case binding.ErrVINConflict:
		s.respond(w, http.StatusConflict, map[string]string{
			"message": "This VIN is already registered to another device",
		})
	default:
		if s.logger != nil {
			s.logger.Error("registration failed", zap.Error(err))
		}

		s.respond(w, http.StatusInternalServerError, map[string]string{"error": "registration failed"})
	}
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": "device_id is required"})
		return
	}

	rec, err := s.bindings.Verify(r.Context(), deviceID)
	switch err {
	case nil:
		s.respond(w, http.StatusOK, map[string]interface{}{
			"verified": true,
			"vin":      rec.VIN,
		})
	case binding.ErrNotRegistered:
		s.respond(w, http.StatusNotFound, map[string]interface{}{
			"verified": false,
			"reason":   "not_registered",
		})
	case binding.ErrNotAuthorized:
		s.respond(w, http.StatusForbidden, map[string]interface{}{
			"verified": false,
			"message":  "This device is not authorized for this vehicle",
		})
	default:
		if s.logger != nil {
			s.logger.Error("verification failed", zap.Error(err))
		}

		s.respond(w, http.StatusInternalServerError, map[string]string{"error": "verification failed"})
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rec, bound, err := s.bindings.Status(r.Context())
	if err != nil {
		if s.logger != nil {
			s.logger.Error("status lookup failed", zap.Error(err))
		}

		s.respond(w, http.StatusInternalServerError, map[string]string{"error": "status lookup failed"})
		return
	}

	if !bound {
		s.respond(w, http.StatusOK, map[string]interface{}{"registered": false})
		return
	}

	s.respond(w, http.StatusOK, map[string]interface{}{
		"registered":    true,
		"vin":           rec.VIN,
		"device_id":     rec.DeviceID,
		"registered_at": rec.RegisteredAt,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.bindings.Reset(r.Context()); err != nil {
		if s.logger != nil {
			s.logger.Error("reset failed", zap.Error(err))
		}

		s.respond(w, http.StatusInternalServerError, map[string]string{"error": "reset failed"})
		return
	}

	s.respond(w, http.StatusOK, map[string]string{"message": "Registration reset"})
}
