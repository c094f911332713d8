package service

import (
	"blogsite/internal/config"
	"blogsite/internal/mailer"
	"blogsite/internal/repository"
	"blogsite/internal/session"
	"blogsite/internal/storage"
	"blogsite/internal/token"
)

type Service struct {
	Auth    AuthService
	Content ContentService
}

func NewService(repo *repository.Repository, cfg *config.Config, sessions session.Store, mail mailer.Mailer, store storage.Storage) *Service {
	tokens := token.NewService(cfg.SecretKey, cfg.TokenExpiry)

	return &Service{
		Auth:    NewAuthService(repo.User, sessions, tokens, mail, cfg),
		Content: NewContentService(repo, store, cfg),
	}
}
