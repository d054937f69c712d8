package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Header names shared by the remote store server and its client.
const (
	// WriterTagHeader carries the opaque tag of the session that issued a
	// write. The server records it as the document's last writer.
	WriterTagHeader = "X-Writer-Tag"
	// TraceIDHeader carries the request trace id.
	TraceIDHeader = "X-Trace-ID"
)

// WriteJSON serializes data to JSON and writes it to w with the given status
// code and an "application/json" content type.
//
// If marshaling fails, it responds with 500 Internal Server Error and returns
// a wrapped error.
//
// Example usage:
//
//	WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}
