package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/BorisDmv/snip-api/internal/auth"
	"github.com/BorisDmv/snip-api/internal/service"
)

type PollsHandler struct {
	polls *service.Polls
	log   *logrus.Logger
}

func NewPollsHandler(polls *service.Polls, log *logrus.Logger) *PollsHandler {
	return &PollsHandler{polls: polls, log: log}
}

type VoteRequest struct {
	OptionID string `json:"option_id"`
}

func (h *PollsHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	tally, err := h.polls.CastVote(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.OptionID)
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusOK, tally)
}

func (h *PollsHandler) Tally(w http.ResponseWriter, r *http.Request) {
	tally, err := h.polls.GetTally(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusOK, tally)
}
