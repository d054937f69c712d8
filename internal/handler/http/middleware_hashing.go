package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
	"github.com/MKhiriev/go-task-keeper/models"
)

// storeHashing checks the integrity hash of a write batch. The hash is the
// HMAC of the JSON encoded values, computed with the shared hash key.
func (h *Handler) storeHashing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		var req struct {
			Values []models.PathValue `json:"values"`
			Hash   string             `json:"hash"`
		}

		log.Debug().Str("func", "*Handler.storeHashing").Msg("checking hash begins")

		// read bytes from body
		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "*Handler.storeHashing").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		// restore request body
		r.Body = io.NopCloser(bytes.NewReader(body))

		if err := json.Unmarshal(body, &req); err != nil {
			log.Err(err).Str("func", "*Handler.storeHashing").Msg("failed to decode JSON")
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		// Serialize Values back to JSON for hashing
		payloadBytes, err := json.Marshal(req.Values)
		if err != nil {
			log.Err(err).Str("func", "*Handler.storeHashing").Msg("failed to marshal values")
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		hashedBody := utils.HashHex(payloadBytes)
		if hashedBody != req.Hash {
			log.Error().Str("func", "*Handler.storeHashing").
				Str("hash from request", req.Hash).
				Str("hashed body", hashedBody).
				Msg("hashes are not equal")
			http.Error(w, "Integrity check failed", http.StatusBadRequest)
			return
		}

		log.Debug().Str("func", "*Handler.storeHashing").Msg("hashes are equal")

		next.ServeHTTP(w, r)
	})
}
