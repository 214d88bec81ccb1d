package httpadapter

import (
	"net/http"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrMalformedDocument):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDuplicateDetected):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrDestinationNotFound):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrAnalysisFailed):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrUploadPartial):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
