package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/BorisDmv/snip-api/internal/auth"
	"github.com/BorisDmv/snip-api/internal/service"
)

type ModerationHandler struct {
	moderation *service.Moderation
	log        *logrus.Logger
}

func NewModerationHandler(moderation *service.Moderation, log *logrus.Logger) *ModerationHandler {
	return &ModerationHandler{moderation: moderation, log: log}
}

type AppealRequest struct {
	Reason string `json:"reason"`
}

func (h *ModerationHandler) Hide(w http.ResponseWriter, r *http.Request) {
	c, err := h.moderation.Hide(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusOK, c)
}

func (h *ModerationHandler) Restore(w http.ResponseWriter, r *http.Request) {
	c, err := h.moderation.Restore(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusOK, c)
}

func (h *ModerationHandler) SubmitAppeal(w http.ResponseWriter, r *http.Request) {
	var req AppealRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	appeal, err := h.moderation.SubmitAppeal(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusCreated, appeal)
}

func (h *ModerationHandler) GetAppeal(w http.ResponseWriter, r *http.Request) {
	appeal, err := h.moderation.GetAppeal(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusOK, appeal)
}
