package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/BorisDmv/snip-api/internal/auth"
	"github.com/BorisDmv/snip-api/internal/models"
	"github.com/BorisDmv/snip-api/internal/service"
)

type ContentsHandler struct {
	contents *service.Contents
	log      *logrus.Logger
}

func NewContentsHandler(contents *service.Contents, log *logrus.Logger) *ContentsHandler {
	return &ContentsHandler{contents: contents, log: log}
}

type pollRequest struct {
	Question  string     `json:"question"`
	Options   []string   `json:"options"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type CreateContentRequest struct {
	Kind     models.Kind     `json:"kind"`
	Title    string          `json:"title"`
	Body     string          `json:"body"`
	MediaURL string          `json:"media_url"`
	Draft    bool            `json:"draft"`
	Schedule models.Schedule `json:"schedule"`
	Poll     *pollRequest    `json:"poll"`
}

type UpdateContentRequest struct {
	Title    *string         `json:"title"`
	Body     *string         `json:"body"`
	MediaURL *string         `json:"media_url"`
	Schedule models.Schedule `json:"schedule"`
}

func (h *ContentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateContentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	in := service.CreateInput{
		Kind:     req.Kind,
		Title:    req.Title,
		Body:     req.Body,
		MediaURL: req.MediaURL,
		Draft:    req.Draft,
		Schedule: req.Schedule,
	}
	if req.Poll != nil {
		in.Poll = &service.PollInput{
			Question:  req.Poll.Question,
			Options:   req.Poll.Options,
			ExpiresAt: req.Poll.ExpiresAt,
		}
	}
	created, err := h.contents.Create(r.Context(), auth.ActorFromContext(r.Context()), in)
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusCreated, created)
}

func (h *ContentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.contents.Get(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusOK, c)
}

func (h *ContentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateContentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	updated, err := h.contents.Update(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "id"), service.Patch{
		Title:    req.Title,
		Body:     req.Body,
		MediaURL: req.MediaURL,
		Schedule: req.Schedule,
	})
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusOK, updated)
}

func (h *ContentsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	c, err := h.contents.Publish(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusOK, c)
}

func (h *ContentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.contents.Delete(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Success: true})
}

// Feed lists published content newest-first, ten per page.
func (h *ContentsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	result, err := h.contents.Feed(r.Context(), r.URL.Query().Get("author"), page)
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusOK, result)
}

func (h *ContentsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	result, err := h.contents.Mine(r.Context(), auth.ActorFromContext(r.Context()), r.URL.Query().Get("status"), page)
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusOK, result)
}
