package handlers

import (
	"net/http"
	"time"

	"github.com/baharkarakas/blog-backend/internal/api/httpx"
	"github.com/baharkarakas/blog-backend/internal/api/validate"
	"github.com/baharkarakas/blog-backend/internal/services"
)

type AuthHandler struct {
	Svc *services.AuthService
}

func NewAuthHandler(svc *services.AuthService) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	if errs := validate.Collect(
		validate.Required("username", req.Username),
		validate.Required("email", req.Email),
		validate.Required("password", req.Password),
	); len(errs) > 0 {
		writeErr(w, r, errs.AppError())
		return
	}

	if _, err := h.Svc.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, messageResp{Message: "User registered successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	if errs := validate.Collect(
		validate.Required("email", req.Email),
		validate.Required("password", req.Password),
	); len(errs) > 0 {
		writeErr(w, r, errs.AppError())
		return
	}

	res, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginResp{
		Message:   "Successfully Logged In",
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.ExpiresAt,
	})
}
