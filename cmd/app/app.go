package app

import (
	"blogsite/internal/config"
	"blogsite/internal/database"
	"blogsite/internal/logger"
	"blogsite/internal/mailer"
	"blogsite/internal/repository"
	"blogsite/internal/service"
	"blogsite/internal/session"
	"blogsite/internal/storage"
)

func App(cfg *config.Config) (*database.DB, *repository.Repository, *service.Service) {
	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.Error.Fatalf("Не удалось подключиться к БД: %v", err)
	}

	// connection Redis
	sessions, err := session.NewRedisStore(cfg)
	if err != nil {
		logger.Error.Fatalf("Не удалось подключиться к Redis: %v", err)
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		logger.Error.Fatalf("Не удалось инициализировать MinIO: %v", err)
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB)

	mail := mailer.NewSMTPMailer(cfg)

	services := service.NewService(repo, cfg, sessions, mail, minioClient)

	return db, repo, services
}
