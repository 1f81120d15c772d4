package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/BorisDmv/snip-api/internal/service"
)

type AccountsHandler struct {
	accounts *service.Accounts
	log      *logrus.Logger
}

func NewAccountsHandler(accounts *service.Accounts, log *logrus.Logger) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, log: log}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (h *AccountsHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	user, err := h.accounts.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusCreated, user)
}

func (h *AccountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	token, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	respondData(w, http.StatusOK, LoginResponse{Token: token})
}
