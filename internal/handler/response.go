package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
	"github.com/pyhumph/jriit-cms-sub001/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	if apiErr, ok := apierror.As(err); ok {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrUnknownResourceType) {
		status = http.StatusBadRequest
		body.Code = "UNKNOWN_RESOURCE_TYPE"
		body.Message = "Unknown resource type"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrItemNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Item not found"
	} else if errors.Is(err, model.ErrStorageUnavailable) {
		status = http.StatusServiceUnavailable
		body.Code = "STORAGE_UNAVAILABLE"
		body.Message = "Storage is temporarily unavailable, retry later"
		slog.Error("storage unavailable", "error", err.Error())
	} else if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
		body.Code = "REQUEST_TIMEOUT"
		body.Message = "Request timed out"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}
