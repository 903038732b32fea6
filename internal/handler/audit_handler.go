package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

type auditQuerier interface {
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

type AuditHandler struct {
	service auditQuerier
}

func NewAuditHandler(service auditQuerier) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	items, meta, err := h.service.Query(r.Context(), model.AuditQuery{
		Action:   strings.TrimSpace(query.Get("action")),
		ActorID:  strings.TrimSpace(query.Get("actor_id")),
		Status:   strings.TrimSpace(query.Get("status")),
		Resource: strings.TrimSpace(query.Get("resource")),
		From:     strings.TrimSpace(query.Get("from")),
		To:       strings.TrimSpace(query.Get("to")),
		Page:     parseIntOrDefault(query.Get("page"), 1),
		Limit:    parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.AuditListData{Items: items}, &meta)
}
