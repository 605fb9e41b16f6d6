package httpadapter

import (
	"net/http"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrAllocationNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrStorageUnavailable),
		domain.IsKind(err, domain.ErrEngineNotInitialized),
		domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicErrorMessage hides internal error chains behind a generic message
// for 5xx responses other than the well-known unavailable kinds.
func publicErrorMessage(status int, err error) string {
	switch {
	case status == http.StatusInternalServerError:
		return "internal error"
	case domain.IsKind(err, domain.ErrEngineNotInitialized):
		return "allocation engine is still loading"
	case domain.IsKind(err, domain.ErrStorageUnavailable):
		return "allocation store unavailable"
	default:
		return err.Error()
	}
}
