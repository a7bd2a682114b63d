package handler

import (
	"net/http"

	"go-consultation-booking/pkg/apperr"
	"go-consultation-booking/pkg/response"
)

// writeDomainError maps a usecase error onto an HTTP response. Unknown and
// infrastructure errors deliberately collapse into a generic 500 so that
// internals never leak to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		response.NotFound(w, err.Error())
	case apperr.KindValidation:
		response.BadRequest(w, err.Error())
	case apperr.KindForbidden:
		response.Forbidden(w, err.Error())
	case apperr.KindConflict:
		response.Conflict(w, err.Error())
	case apperr.KindUnavailable, apperr.KindInvalidState:
		response.UnprocessableEntity(w, err.Error())
	default:
		response.InternalServerError(w, "")
	}
}
