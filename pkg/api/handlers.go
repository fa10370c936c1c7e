package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/jakechorley/gift-registry/pkg/errors"
)

// updateGiftRequest is the PATCH body: {"data": {"<column>": "<value>"}}
type updateGiftRequest struct {
	Data map[string]string `json:"data" validate:"required"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// handleListGifts serves GET /api/sheets
func (s *Server) handleListGifts(w http.ResponseWriter, r *http.Request) {
	gifts, err := s.store.ListGifts(r.Context())
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, gifts, s.logger)
}

// handleUpdateGift serves PATCH /api/sheets?id=<id>
func (s *Server) handleUpdateGift(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, errors.Validation("id is required"), s.logger)
		return
	}

	var req updateGiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Validation("invalid request body"), s.logger)
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, errors.Validation("data is required"), s.logger)
		return
	}

	if err := s.store.UpdateGift(r.Context(), id, req.Data); err != nil {
		s.logger.Warn("Gift update rejected", zap.String("id", id), zap.Error(err))
		writeError(w, err, s.logger)
		return
	}

	s.logger.Info("Gift updated", zap.String("id", id), zap.Int("fields", len(req.Data)))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true}, s.logger)
}
