package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
	"github.com/MKhiriev/go-task-keeper/models"
)

func (h *Handler) getValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	path := r.URL.Query().Get("path")
	if path == "" {
		log.Error().Str("func", "*Handler.getValue").Msg("no path was given")
		http.Error(w, ErrEmptyPath.Error(), http.StatusBadRequest)
		return
	}

	value, err := h.services.NodeService.Get(ctx, path)
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			log.Err(err).Str("func", "*Handler.getValue").Str("path", path).Msg("error reading value")
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(value)
}

func (h *Handler) setValues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.SetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.setValues").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	resp, err := h.services.NodeService.Set(ctx, req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.setValues").Msg("error applying write batch")
		status := statusFromError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}
