package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/google/uuid"

	"blogsite/internal/config"
	"blogsite/internal/models"
)

var ErrSessionNotFound = errors.New("сессия не найдена")

// Store хранит активные сессии: токен -> id пользователя с TTL.
type Store interface {
	Create(userID string, remember bool) (*models.Session, error)
	Get(token string) (string, error)
	Delete(token string) error
}

type RedisStore struct {
	client      *redis.Client
	ttl         time.Duration
	rememberTTL time.Duration
}

func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping().Err(); err != nil {
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	return &RedisStore{
		client:      client,
		ttl:         cfg.SessionDuration,
		rememberTTL: cfg.RememberMeDuration,
	}, nil
}

// Create заводит сессию со свежим токеном. Флаг remember продлевает
// срок жизни.
func (s *RedisStore) Create(userID string, remember bool) (*models.Session, error) {
	ttl := s.ttl
	if remember {
		ttl = s.rememberTTL
	}

	session := &models.Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}

	if err := s.client.Set(sessionKey(session.Token), userID, ttl).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при создании сессии: %w", err)
	}

	return session, nil
}

func (s *RedisStore) Get(token string) (string, error) {
	userID, err := s.client.Get(sessionKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("ошибка при получении сессии: %w", err)
	}

	return userID, nil
}

// Delete снимает сессию. Повторное удаление - не ошибка.
func (s *RedisStore) Delete(token string) error {
	if err := s.client.Del(sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("ошибка при удалении сессии: %w", err)
	}

	return nil
}

func sessionKey(token string) string {
	return "session:" + token
}
