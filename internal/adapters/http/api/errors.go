package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/types"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
)

// ErrBadRequest marks requests that could not be parsed.
var ErrBadRequest = errors.New("bad request")

// WrapKind tags err with the handler op and an error kind.
func WrapKind(op string, kind, err error) error {
	return types.Op(op, kind, err)
}

// NewKind builds an error of kind for op with no further cause.
func NewKind(op string, kind error) error {
	return types.Op(op, kind, nil)
}

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps an error kind to its response. Backend details are
// logged and never returned to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error) {
	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code: "validation_failed", Message: "validation failed", Fields: verr.Fields,
		})
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request")
	case errors.Is(err, types.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, types.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", "resource already exists")
	case errors.Is(err, types.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
	case errors.Is(err, types.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access_denied", "access denied")
	default:
		log.Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "something went wrong, try again later")
	}
}

// decodeBody reads a JSON request body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, op string, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}
