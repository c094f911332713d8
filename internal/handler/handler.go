package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"blogsite/internal/config"
	"blogsite/internal/database"
	"blogsite/internal/repository"
	"blogsite/internal/service"
)

const SessionCookieName = "session_token"

type Handlers struct {
	AuthService    service.AuthService
	ContentService service.ContentService
	TagRepo        repository.TagRepository
	RoleRepo       repository.RoleRepository
	DB             *database.DB
	Cfg            *config.Config
	Validate       *validator.Validate
}

func NewHandlers(repo *repository.Repository, services *service.Service, db *database.DB, cfg *config.Config) *Handlers {
	return &Handlers{
		AuthService:    services.Auth,
		ContentService: services.Content,
		TagRepo:        repo.Tag,
		RoleRepo:       repo.Role,
		DB:             db,
		Cfg:            cfg,
		Validate:       validator.New(),
	}
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.HealthCheck(); err != nil {
		WriteError(w, "База данных недоступна", http.StatusServiceUnavailable)
		return
	}

	WriteSuccess(w, map[string]string{"status": "ok"}, http.StatusOK)
}
