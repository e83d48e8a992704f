package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/blog-backend/internal/api/httpx"
	"github.com/baharkarakas/blog-backend/internal/api/validate"
	"github.com/baharkarakas/blog-backend/internal/middleware"
	"github.com/baharkarakas/blog-backend/internal/models"
	"github.com/baharkarakas/blog-backend/internal/services"
)

type PostHandler struct {
	Svc *services.PostService
}

func NewPostHandler(svc *services.PostService) *PostHandler {
	return &PostHandler{Svc: svc}
}

// createPostReq has no author field; the author is always the caller.
type createPostReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// updatePostReq distinguishes absent (nil) from empty fields.
type updatePostReq struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func callerID(r *http.Request) string {
	id, _ := middleware.UserID(r.Context())
	return id
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	if errs := validate.Collect(
		validate.Required("title", req.Title),
		validate.MaxLen("title", req.Title, models.TitleMax),
	); len(errs) > 0 {
		writeErr(w, r, errs.AppError())
		return
	}

	p, err := h.Svc.Create(r.Context(), callerID(r), req.Title, req.Content)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Svc.List(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Mine(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Svc.ListMine(r.Context(), callerID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *PostHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.GetPublic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updatePostReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}

	patch := models.PostPatch{Title: req.Title, Content: req.Content}
	p, err := h.Svc.Update(r.Context(), chi.URLParam(r, "id"), callerID(r), patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id"), callerID(r)); err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, messageResp{Message: "Post deleted successfully"})
}
