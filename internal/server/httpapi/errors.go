package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mediaupload/internal/common"
)

// Error codes carried in ErrorResponse.Error.
const (
	codeBadRequest       = "bad_request"
	codeUnsupportedType  = "unsupported_type"
	codeSizeExceeded     = "size_exceeded"
	codeInvalidPart      = "invalid_part_number"
	codeNotFound         = "not_found"
	codeInvalidParts     = "invalid_parts"
	codeStoreUnavailable = "store_unavailable"
	codeUnauthorized     = "unauthorized"
	codeInternal         = "internal_error"
)

// classify maps an error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrUnsupportedType):
		return http.StatusBadRequest, codeUnsupportedType
	case errors.Is(err, common.ErrSizeExceeded):
		return http.StatusBadRequest, codeSizeExceeded
	case errors.Is(err, common.ErrInvalidPartNumber):
		return http.StatusBadRequest, codeInvalidPart
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, common.ErrInvalidParts):
		return http.StatusConflict, codeInvalidParts
	case errors.Is(err, common.ErrInternal):
		return http.StatusInternalServerError, codeInternal
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusInternalServerError, codeStoreUnavailable
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, codeUnauthorized
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// toErrorResponse hides the details of server-side failures.
func toErrorResponse(err error) *ErrorResponse {
	_, code := classify(err)
	msg := err.Error()
	switch code {
	case codeStoreUnavailable:
		msg = common.ErrStoreUnavailable.Error()
	case codeInternal:
		msg = "internal server error"
	}
	return &ErrorResponse{Error: code, Message: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, _ := classify(err)
	writeJSON(w, status, toErrorResponse(err))
}
