package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"blogsite/internal/models"
)

var (
	ErrEmailTaken    = errors.New("email уже зарегистрирован")
	ErrUsernameTaken = errors.New("имя пользователя уже занято")
	ErrTaggingArity  = errors.New("теггинг должен содержать ровно 3 тега")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User, password string) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	Confirm(ctx context.Context, userID string) error
}

type RoleRepository interface {
	GetByID(ctx context.Context, roleID int) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	UpdatePermissions(ctx context.Context, role *models.Role) error
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tagIDs []string) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	List(ctx context.Context, page, pageSize int) ([]models.Post, int, error)
	Filter(ctx context.Context, headerSearch, tagID string, newestFirst bool, page, pageSize int) ([]models.Post, int, error)
	Update(ctx context.Context, post *models.Post, tagIDs []string) error
	Delete(ctx context.Context, postID string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, commentID string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string, page, pageSize int, includeDisabled bool) ([]models.Comment, int, error)
	Disable(ctx context.Context, commentID string) error
	CountByPost(ctx context.Context, postID string) (int, error)
}

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, tagID string) (*models.Tag, error)
	List(ctx context.Context) ([]models.Tag, error)
}

type TaggingRepository interface {
	Create(ctx context.Context, ext sqlx.ExtContext, postID string, tagIDs []string) (*models.Tagging, error)
	Update(ctx context.Context, ext sqlx.ExtContext, postID string, tagIDs []string) error
	GetByPost(ctx context.Context, postID string) (*models.Tagging, error)
	DeleteByPost(ctx context.Context, ext sqlx.ExtContext, postID string) error
}

type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, imageID string) (*models.Image, error)
	GetByPostID(ctx context.Context, postID string) ([]models.Image, error)
	Delete(ctx context.Context, imageID string) error
	DeleteByPostID(ctx context.Context, ext sqlx.ExtContext, postID string) error
}

type Repository struct {
	User    UserRepository
	Role    RoleRepository
	Post    PostRepository
	Comment CommentRepository
	Tag     TagRepository
	Tagging TaggingRepository
	Image   ImageRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:    NewUserRepository(db),
		Role:    NewRoleRepository(db),
		Post:    NewPostRepository(db),
		Comment: NewCommentRepository(db),
		Tag:     NewTagRepository(db),
		Tagging: NewTaggingRepository(db),
		Image:   NewImageRepository(db),
	}
}

// LastPage считает номер последней страницы: ceil(total/pageSize).
// Используется для перехода к свежему комментарию после отправки.
func LastPage(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

func pageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
