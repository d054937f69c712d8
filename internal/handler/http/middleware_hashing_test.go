// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
	"github.com/MKhiriev/go-task-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func makeStoreBody(t *testing.T, values []models.PathValue, hash string) []byte {
	t.Helper()
	body, err := json.Marshal(models.SetRequest{Values: values, Writer: "w1", Hash: hash})
	require.NoError(t, err)
	return body
}

func computeHash(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return utils.HashHex(b)
}

func sampleValues() []models.PathValue {
	return []models.PathValue{
		{Path: "documents/d1/items", Value: json.RawMessage(`[{"id":"1","value":"Task"},{"id":"trash"}]`)},
		{Path: "documents/d1/memo", Value: json.RawMessage(`"notes <b>"`)},
	}
}

func newHashingHandler() *Handler {
	return &Handler{logger: logger.Nop()}
}

// --- storeHashing tests ---

func TestStoreHashing_TableTest(t *testing.T) {
	utils.InitHasherPool("test-secret-key")

	validValues := sampleValues()
	validHash := computeHash(t, validValues)
	emptyValues := []models.PathValue{}
	emptyHash := computeHash(t, emptyValues)

	tests := []struct {
		name           string
		body           []byte
		expectedStatus int
	}{
		{
			name:           "valid hash with values",
			body:           makeStoreBody(t, validValues, validHash),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "valid hash with empty values",
			body:           makeStoreBody(t, emptyValues, emptyHash),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid hash - wrong value",
			body:           makeStoreBody(t, validValues, "0000000000000000000000000000000000000000000000000000000000000000"),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid hash - empty string",
			body:           makeStoreBody(t, validValues, ""),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON body",
			body:           []byte(`not-json`),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "hash mismatch - tampered data",
			body:           makeStoreBody(t, validValues, emptyHash),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			middleware := newHashingHandler().storeHashing(next)
			req := httptest.NewRequest(http.MethodPost, "/api/store", bytes.NewReader(tt.body))
			rr := httptest.NewRecorder()
			middleware.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedStatus == http.StatusOK, nextCalled)
		})
	}
}

func TestStoreHashing_WrongKeyRejected(t *testing.T) {
	utils.InitHasherPool("client-key")
	body := makeStoreBody(t, sampleValues(), computeHash(t, sampleValues()))

	utils.InitHasherPool("server-key")
	t.Cleanup(func() { utils.InitHasherPool("test-secret-key") })

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next must not be called")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/store", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	newHashingHandler().storeHashing(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStoreHashing_ConcurrentRequests(t *testing.T) {
	utils.InitHasherPool("test-secret-key")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	middleware := newHashingHandler().storeHashing(next)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			values := []models.PathValue{{Path: "documents/d1/memo", Value: json.RawMessage(fmt.Sprintf(`"memo %d"`, i))}}
			body := makeStoreBody(t, values, computeHash(t, values))

			req := httptest.NewRequest(http.MethodPost, "/api/store", bytes.NewReader(body))
			rr := httptest.NewRecorder()
			middleware.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code, "goroutine %d failed", i)
		}(i)
	}

	wg.Wait()
}

func TestStoreHashing_BodyRestoredForNextHandler(t *testing.T) {
	utils.InitHasherPool("test-secret-key")

	values := sampleValues()
	originalBody := makeStoreBody(t, values, computeHash(t, values))

	var bodyReadByNext []byte
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		bodyReadByNext = b
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/store", bytes.NewReader(originalBody))
	rr := httptest.NewRecorder()
	newHashingHandler().storeHashing(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, originalBody, bodyReadByNext, "next handler should receive full original body")
}
