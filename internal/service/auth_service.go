package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogsite/internal/config"
	"blogsite/internal/mailer"
	"blogsite/internal/models"
	"blogsite/internal/repository"
	"blogsite/internal/session"
	"blogsite/internal/token"
)

// Единый ответ на отсутствующего пользователя и на неверный пароль:
// по ошибке нельзя понять, зарегистрирован ли email.
var ErrInvalidCredentials = errors.New("неверный email или пароль")

const defaultRoleID = 1 // Reader

type RegisterRequest struct {
	Email    string
	Username string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string, remember bool) (*models.User, *models.Session, error)
	Logout(sessionToken string) error
	Confirm(ctx context.Context, user *models.User, tokenString string) (bool, error)
	CurrentUser(ctx context.Context, sessionToken string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	sessions session.Store
	tokens   *token.Service
	mail     mailer.Mailer
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, sessions session.Store, tokens *token.Service, mail mailer.Mailer, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		sessions: sessions,
		tokens:   tokens,
		mail:     mail,
		cfg:      cfg,
	}
}

// Register заводит неподтверждённого пользователя с ролью по умолчанию
// и отсылает письмо с токеном подтверждения. Отправка асинхронная:
// регистрация не ждёт доставки.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	// uniqueness is checked before insert
	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, repository.ErrEmailTaken
	}
	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, repository.ErrUsernameTaken
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		RegisteredAt: time.Now(),
		Confirmed:    false,
		RoleID:       defaultRoleID,
	}

	if err := s.userRepo.Create(ctx, user, req.Password); err != nil {
		return nil, err
	}

	confirmToken, err := s.tokens.Issue(user.UserID, s.cfg.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("ошибка выпуска токена подтверждения: %w", err)
	}

	body := fmt.Sprintf(
		"<p>Здравствуйте, %s!</p><p>Подтвердите ваш аккаунт: <a href=\"%s?token=%s\">подтвердить</a></p>",
		user.Username, s.cfg.ConfirmBaseURL, confirmToken)
	s.mail.SendAsync(user.Email, "Confirm Your Account", body)

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string, remember bool) (*models.User, *models.Session, error) {
	user, err := s.userRepo.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(user.UserID, remember)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка создания сессии: %w", err)
	}

	return user, sess, nil
}

// Logout снимает сессию. Повторный выход с тем же токеном безвреден.
func (s *authService) Logout(sessionToken string) error {
	return s.sessions.Delete(sessionToken)
}

// Confirm отмечает пользователя подтверждённым по валидному токену.
// Уже подтверждённый пользователь - no-op с положительным ответом.
// Любая проблема с токеном даёт false без ошибки.
func (s *authService) Confirm(ctx context.Context, user *models.User, tokenString string) (bool, error) {
	if user.Confirmed {
		return true, nil
	}

	if !s.tokens.Verify(tokenString, user.UserID) {
		return false, nil
	}

	if err := s.userRepo.Confirm(ctx, user.UserID); err != nil {
		return false, err
	}

	user.Confirmed = true
	return true, nil
}

func (s *authService) CurrentUser(ctx context.Context, sessionToken string) (*models.User, error) {
	userID, err := s.sessions.Get(sessionToken)
	if err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}
