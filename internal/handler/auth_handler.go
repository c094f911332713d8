package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"blogsite/internal/middleware"
	"blogsite/internal/models"
	"blogsite/internal/repository"
	"blogsite/internal/service"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=6"`
}

type UserResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Confirmed bool   `json:"confirmed"`
	Role      string `json:"role"`
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.]*$`)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	// check method
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Неверные данные", http.StatusBadRequest)
		return
	}

	// username verification
	if !usernamePattern.MatchString(req.Username) {
		WriteError(w, "Имя пользователя: только буквы, цифры, точки и подчёркивания", http.StatusBadRequest)
		return
	}

	// password verification
	if utf8.RuneCountInString(req.Password) < 6 {
		WriteError(w, "Пароль должен быть не менее 6 символов", http.StatusBadRequest)
		return
	}

	user, err := h.AuthService.Register(r.Context(), service.RegisterRequest{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) || errors.Is(err, repository.ErrUsernameTaken) {
			WriteError(w, err.Error(), http.StatusBadRequest)
		} else {
			WriteError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	WriteSuccess(w, userResponse(user), http.StatusCreated)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	// check method
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		Remember bool   `json:"remember"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Неверные данные", http.StatusBadRequest)
		return
	}

	user, sess, err := h.AuthService.Login(r.Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		// единый ответ: не раскрываем, существует ли email
		WriteError(w, "Неверный email или пароль", http.StatusForbidden)
		return
	}

	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
	}
	if req.Remember {
		cookie.Expires = sess.ExpiresAt
	}
	http.SetCookie(w, cookie)

	WriteSuccess(w, userResponse(user), http.StatusOK)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.AuthService.Logout(cookie.Value); err != nil {
			WriteError(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:    SessionCookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
	})

	WriteSuccess(w, map[string]string{"message": "Вы вышли из системы"}, http.StatusOK)
}

func (h *Handlers) Confirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor := middleware.UserFromContext(r.Context())
	if actor == nil {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	tokenString := r.URL.Query().Get("token")

	ok, err := h.AuthService.Confirm(r.Context(), actor, tokenString)
	if err != nil {
		WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !ok {
		// причина не уточняется: битый, чужой и истёкший токены неразличимы
		WriteError(w, "Ссылка подтверждения недействительна или истекла", http.StatusBadRequest)
		return
	}

	WriteSuccess(w, map[string]string{"message": "Аккаунт подтверждён"}, http.StatusOK)
}

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor := middleware.UserFromContext(r.Context())
	if actor == nil {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	WriteSuccess(w, userResponse(actor), http.StatusOK)
}

func userResponse(user *models.User) UserResponse {
	resp := UserResponse{
		UserID:    user.UserID,
		Email:     user.Email,
		Username:  user.Username,
		Confirmed: user.Confirmed,
	}
	if user.Role != nil {
		resp.Role = user.Role.Name
	}
	return resp
}
