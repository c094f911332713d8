package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blogsite/internal/models"
	"blogsite/internal/token"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User, password string) error {
	// create password hash
	hashedPassword, err := token.HashPassword(password)
	if err != nil {
		return err
	}

	user.UserID = uuid.New().String()
	user.PasswordHash = hashedPassword

	query := `
		INSERT INTO users (user_id, email, username, password_hash, registered_at, confirmed, role_id)
		VALUES (:user_id, :email, :username, :password_hash, :registered_at, :confirmed, :role_id)
	`

	_, err = r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if strings.Contains(err.Error(), "users_email_key") {
			return ErrEmailTaken
		}
		if strings.Contains(err.Error(), "users_username_key") {
			return ErrUsernameTaken
		}
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE user_id = $1`

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь с ID %s не найден", userID)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	if err := r.attachRole(ctx, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь с email %s не найден", email)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по email: %w", err)
	}

	if err := r.attachRole(ctx, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE username = $1`

	err := r.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь %s не найден", username)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	if err := r.attachRole(ctx, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// checking that the password hash is the same
	if !token.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("неверный пароль")
	}

	return user, nil
}

// Confirm переводит пользователя в подтверждённые. Повторный вызов
// для уже подтверждённого пользователя безвреден.
func (r *userRepository) Confirm(ctx context.Context, userID string) error {
	query := `UPDATE users SET confirmed = TRUE WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("ошибка при подтверждении пользователя: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пользователь с ID %s не найден", userID)
	}

	return nil
}

func (r *userRepository) attachRole(ctx context.Context, user *models.User) error {
	var role models.Role

	query := `SELECT * FROM roles WHERE role_id = $1`

	err := r.db.GetContext(ctx, &role, query, user.RoleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// user without a role fails every permission check
			return nil
		}
		return fmt.Errorf("ошибка при получении роли: %w", err)
	}

	user.Role = &role
	return nil
}
