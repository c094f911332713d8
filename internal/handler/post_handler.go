package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"blogsite/internal/middleware"
	"blogsite/internal/models"
	"blogsite/internal/service"
)

type PostRequest struct {
	Header string   `json:"header" validate:"required,max=80"`
	Body   string   `json:"body" validate:"required"`
	TagIDs []string `json:"tagIds" validate:"required,len=3"`
}

type PostsResponse struct {
	Posts      []models.Post      `json:"posts"`
	Pagination service.Pagination `json:"pagination"`
}

type PostDetailResponse struct {
	Post       *models.Post       `json:"post"`
	Comments   []models.Comment   `json:"comments"`
	Pagination service.Pagination `json:"pagination"`
}

// GetPosts - лента постов от новых к старым, либо фильтр по заголовку
// и тегу, если переданы параметры header/tag.
func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page := queryInt(r, "page", 1)

	headerSearch := r.URL.Query().Get("header")
	tagID := r.URL.Query().Get("tag")

	if tagID != "" {
		newestFirst := r.URL.Query().Get("order") != "oldest"

		posts, pagination, err := h.ContentService.FilterPosts(r.Context(), headerSearch, tagID, newestFirst, page)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteSuccess(w, PostsResponse{Posts: posts, Pagination: pagination}, http.StatusOK)
		return
	}

	posts, pagination, err := h.ContentService.ListPosts(r.Context(), page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, PostsResponse{Posts: posts, Pagination: pagination}, http.StatusOK)
}

// GetPost - пост вместе со страницей комментариев. page=-1 открывает
// последнюю страницу, где виден только что отправленный комментарий.
func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	postID := mux.Vars(r)["id"]

	post, err := h.ContentService.GetPost(r.Context(), postID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	page := queryInt(r, "page", 1)

	comments, pagination, err := h.ContentService.ListComments(r.Context(), postID, page, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, PostDetailResponse{
		Post:       post,
		Comments:   comments,
		Pagination: pagination,
	}, http.StatusOK)
}

// CreatePost - мягкая проверка прав: без WRITE мутации нет, в ответе
// created=false и форма для повторного ввода.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Неверные данные", http.StatusBadRequest)
		return
	}

	actor := middleware.UserFromContext(r.Context())

	post, err := h.ContentService.CreatePost(r.Context(), actor, req.Header, req.Body, req.TagIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if post == nil {
		WriteSuccess(w, map[string]interface{}{
			"created": false,
			"form":    req,
		}, http.StatusOK)
		return
	}

	WriteSuccess(w, post, http.StatusCreated)
}

func (h *Handlers) EditPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	postID := mux.Vars(r)["id"]

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Неверные данные", http.StatusBadRequest)
		return
	}

	actor := middleware.UserFromContext(r.Context())

	post, err := h.ContentService.EditPost(r.Context(), actor, postID, req.Header, req.Body, req.TagIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	postID := mux.Vars(r)["id"]
	actor := middleware.UserFromContext(r.Context())

	if err := h.ContentService.RemovePost(r.Context(), actor, postID); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"message": "Пост удален"}, http.StatusOK)
}

func (h *Handlers) AttachImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	postID := mux.Vars(r)["id"]
	actor := middleware.UserFromContext(r.Context())

	file, header, err := r.FormFile("image")
	if err != nil {
		WriteError(w, "Файл изображения не передан", http.StatusBadRequest)
		return
	}
	defer file.Close()

	image, err := h.ContentService.AttachImage(r.Context(), actor, postID, header.Filename, file, header.Size)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, image, http.StatusCreated)
}

func (h *Handlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	imageID := mux.Vars(r)["id"]
	actor := middleware.UserFromContext(r.Context())

	if err := h.ContentService.RemoveImage(r.Context(), actor, imageID); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"message": "Изображение удалено"}, http.StatusOK)
}

func (h *Handlers) GetTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tags, err := h.TagRepo.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, tags, http.StatusOK)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
