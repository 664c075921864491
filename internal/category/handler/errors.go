package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"go.uber.org/zap"
)

type errorBody struct {
	Kind     string   `json:"kind"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Children []string `json:"children,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// statusFor maps an error kind to its HTTP status. Structure is checked
// before cycle because a cycle found in stored data is a server fault.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, category.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, category.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, category.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, category.ErrStructure):
		return http.StatusInternalServerError, "structure"
	case errors.Is(err, category.ErrCycle):
		return http.StatusUnprocessableEntity, "cycle"
	}
	return http.StatusInternalServerError, "internal"
}

func (h *CategoryHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	body := errorBody{Kind: kind, Message: err.Error()}

	var verr *category.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	var conflict *category.ConflictError
	if errors.As(err, &conflict) {
		body.Children = conflict.Children
	}

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("category request failed", fields...)
		if kind == "internal" {
			body.Message = "internal server error"
		}
	} else {
		h.logger.Debug("category request rejected", fields...)
	}

	writeJSON(w, status, errorResponse{Error: body})
}
