package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"blogsite/internal/middleware"
)

type CommentRequest struct {
	Body string `json:"body" validate:"required"`
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	postID := mux.Vars(r)["id"]

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Неверные данные", http.StatusBadRequest)
		return
	}

	actor := middleware.UserFromContext(r.Context())

	comment, err := h.ContentService.AddComment(r.Context(), actor, postID, req.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, comment, http.StatusCreated)
}

func (h *Handlers) DisableComment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	commentID := mux.Vars(r)["id"]
	actor := middleware.UserFromContext(r.Context())

	if err := h.ContentService.DisableComment(r.Context(), actor, commentID); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"message": "Комментарий отключен"}, http.StatusOK)
}
