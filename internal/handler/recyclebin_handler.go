package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
	"github.com/pyhumph/jriit-cms-sub001/internal/util"
	"github.com/pyhumph/jriit-cms-sub001/pkg/apierror"
)

type recycleBin interface {
	List(ctx context.Context) ([]model.RecycleBinEntry, error)
	SoftDelete(ctx context.Context, itemType string, itemID string, actor model.AuditActor) error
	Restore(ctx context.Context, itemType string, itemID string, actor model.AuditActor) error
	PermanentDelete(ctx context.Context, itemType string, itemID string, actor model.AuditActor) error
}

type RecycleBinHandler struct {
	service recycleBin
}

func NewRecycleBinHandler(service recycleBin) *RecycleBinHandler {
	return &RecycleBinHandler{service: service}
}

func (h *RecycleBinHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.RecycleBinListData{Items: items}, nil)
}

func (h *RecycleBinHandler) Restore(w http.ResponseWriter, r *http.Request) {
	itemType, itemID, ok := itemParams(w, r)
	if !ok {
		return
	}

	if err := h.service.Restore(r.Context(), itemType, itemID, actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.SuccessData{Success: true}, nil)
}

func (h *RecycleBinHandler) PermanentDelete(w http.ResponseWriter, r *http.Request) {
	itemType, itemID, ok := itemParams(w, r)
	if !ok {
		return
	}

	if err := h.service.PermanentDelete(r.Context(), itemType, itemID, actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.SuccessData{Success: true}, nil)
}

// SoftDelete backs the per-resource delete endpoint. The record moves to
// the recycle bin instead of being removed.
func (h *RecycleBinHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	itemType, itemID, ok := itemParams(w, r)
	if !ok {
		return
	}

	if err := h.service.SoftDelete(r.Context(), itemType, itemID, actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.SuccessData{Success: true}, nil)
}

func itemParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	itemType := strings.TrimSpace(chi.URLParam(r, "item_type"))
	if itemType == "" {
		writeError(w, apierror.New("BAD_REQUEST", "item type is required", "item_type", http.StatusBadRequest))
		return "", "", false
	}

	itemID, err := util.SanitizeItemID(chi.URLParam(r, "item_id"))
	if err != nil {
		writeError(w, err)
		return "", "", false
	}

	return itemType, itemID, true
}
