package fault

import (
	"errors"
	"net/http"
)

// HTTPStatus maps a domain error to the response code handlers return.
// Unknown errors are treated as internal.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		pe *PermissionError
		se *StateConflictError
		ie *InsufficientInventoryError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &pe):
		return http.StatusForbidden
	case errors.As(err, &se):
		return http.StatusConflict
	case errors.As(err, &ie):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
