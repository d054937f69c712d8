package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-task-keeper/internal/service"
	"github.com/MKhiriev/go-task-keeper/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrNoUserID:                http.StatusUnauthorized,
	service.ErrForeignNamespace:        http.StatusForbidden,
	service.ErrServerManagedPath:       http.StatusForbidden,
	service.ErrUnknownNamespace:        http.StatusForbidden,
	service.ErrVersionIsNotSpecified:   http.StatusBadRequest,

	store.ErrNotFound:     http.StatusNotFound,
	store.ErrInvalidClock: http.StatusInternalServerError,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
