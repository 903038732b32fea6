package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

type liveLister interface {
	ListLive(ctx context.Context, itemType string) ([]model.LiveItem, model.ResourceType, error)
}

type PublicHandler struct {
	service liveLister
}

func NewPublicHandler(service liveLister) *PublicHandler {
	return &PublicHandler{service: service}
}

func (h *PublicHandler) List(w http.ResponseWriter, r *http.Request) {
	items, rt, err := h.service.ListLive(r.Context(), chi.URLParam(r, "item_type"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.LiveListData{ItemType: rt, Items: items}, nil)
}
