package httpadapter

import (
	"net/http"

	"github.com/antonvlasov/documind/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrAuthRejected):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrEmptyText), domain.IsKind(err, domain.ErrExtraction):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrModelsUnavailable), domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// failureReason keeps the response body at the taxonomy level instead of
// leaking wrapped internals to the shell.
func failureReason(err error) string {
	for _, kind := range []error{
		domain.ErrEmptyText,
		domain.ErrExtraction,
		domain.ErrModelsUnavailable,
		domain.ErrDimensionMismatch,
		domain.ErrAlreadyExists,
		domain.ErrAuthRejected,
		domain.ErrInvalidInput,
		domain.ErrTemporary,
	} {
		if domain.IsKind(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}
