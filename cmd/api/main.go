package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"blogsite/cmd/app"
	"blogsite/internal/config"
	handlers "blogsite/internal/handler"
	"blogsite/internal/logger"
	"blogsite/internal/middleware"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	if cfg.SecretKey == "" {
		logger.Error.Fatal("SECRET_KEY не установлен в .env файле")
	}

	db, repo, services := app.App(cfg)
	defer db.CloseDB()

	handler := handlers.NewHandlers(repo, services, db, cfg)

	router := mux.NewRouter()

	// setting up routes
	router.HandleFunc("/health", handler.HealthHandler).Methods(http.MethodGet)

	router.HandleFunc("/api/auth/register", handler.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", handler.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", handler.Logout).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/confirm", handler.Confirm).Methods(http.MethodGet)

	router.HandleFunc("/api/me", handler.GetCurrentUser).Methods(http.MethodGet)

	router.HandleFunc("/api/tags", handler.GetTags).Methods(http.MethodGet)

	router.HandleFunc("/api/posts", handler.GetPosts).Methods(http.MethodGet)
	router.HandleFunc("/api/posts", handler.CreatePost).Methods(http.MethodPost)
	router.HandleFunc("/api/posts/{id}", handler.GetPost).Methods(http.MethodGet)
	router.HandleFunc("/api/posts/{id}", handler.EditPost).Methods(http.MethodPut)
	router.HandleFunc("/api/posts/{id}", handler.DeletePost).Methods(http.MethodDelete)

	router.HandleFunc("/api/posts/{id}/comments", handler.AddComment).Methods(http.MethodPost)
	router.HandleFunc("/api/comments/{id}/disable", handler.DisableComment).Methods(http.MethodPost)

	router.HandleFunc("/api/posts/{id}/images", handler.AttachImage).Methods(http.MethodPost)
	router.HandleFunc("/api/images/{id}", handler.DeleteImage).Methods(http.MethodDelete)

	handlerChain := middleware.Chain(
		router,
		middleware.SessionMiddleware(services.Auth, handlers.SessionCookieName),
		middleware.CORSMiddleware,
		middleware.LoggingMiddleware,
	)

	// Starting the server
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	logger.Info.Printf("Сервер запущен на %s", addr)
	logger.Info.Printf("База данных: %s", cfg.DB.DbNAME)

	if err := http.ListenAndServe(addr, handlerChain); err != nil {
		logger.Error.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
