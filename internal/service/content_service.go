package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"blogsite/internal/config"
	"blogsite/internal/logger"
	"blogsite/internal/models"
	"blogsite/internal/permission"
	"blogsite/internal/repository"
	"blogsite/internal/storage"
)

var ErrForbidden = errors.New("доступ запрещен")

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ContentService - мутации контента с проверкой прав. Каждая операция
// проверяет права заново, долгоживущего состояния нет.
type ContentService interface {
	CreatePost(ctx context.Context, actor *models.User, header, body string, tagIDs []string) (*models.Post, error)
	EditPost(ctx context.Context, actor *models.User, postID, header, body string, tagIDs []string) (*models.Post, error)
	RemovePost(ctx context.Context, actor *models.User, postID string) error
	AddComment(ctx context.Context, actor *models.User, postID, body string) (*models.Comment, error)
	DisableComment(ctx context.Context, actor *models.User, commentID string) error
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	ListPosts(ctx context.Context, page int) ([]models.Post, Pagination, error)
	FilterPosts(ctx context.Context, headerSearch, tagID string, newestFirst bool, page int) ([]models.Post, Pagination, error)
	ListComments(ctx context.Context, postID string, page int, includeDisabled bool) ([]models.Comment, Pagination, error)
	AttachImage(ctx context.Context, actor *models.User, postID, fileName string, file io.Reader, size int64) (*models.Image, error)
	RemoveImage(ctx context.Context, actor *models.User, imageID string) error
}

type contentService struct {
	repo  *repository.Repository
	store storage.Storage
	cfg   *config.Config
}

func NewContentService(repo *repository.Repository, store storage.Storage, cfg *config.Config) ContentService {
	return &contentService{
		repo:  repo,
		store: store,
		cfg:   cfg,
	}
}

// CreatePost - мягкая проверка прав: без бита WRITE операция просто не
// выполняется, пост и ошибка оба nil. Вызывающий перерисовывает форму.
func (s *contentService) CreatePost(ctx context.Context, actor *models.User, header, body string, tagIDs []string) (*models.Post, error) {
	if !actor.Can(permission.Write) {
		return nil, nil
	}

	post := &models.Post{
		Header:   header,
		AuthorID: actor.UserID,
	}
	post.SetBody(body)

	if err := s.repo.Post.Create(ctx, post, tagIDs); err != nil {
		return nil, err
	}

	return post, nil
}

// EditPost - жёсткая проверка. Историческое правило: нужен бит ADMIN
// независимо от авторства; проверка авторства ниже перекрыта первой и
// сохранена как есть.
func (s *contentService) EditPost(ctx context.Context, actor *models.User, postID, header, body string, tagIDs []string) (*models.Post, error) {
	if !actor.Can(permission.Admin) {
		return nil, ErrForbidden
	}

	post, err := s.repo.Post.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if actor.UserID != post.AuthorID && !actor.Can(permission.Admin) {
		return nil, ErrForbidden
	}

	post.Header = header
	post.SetBody(body)

	if err := s.repo.Post.Update(ctx, post, tagIDs); err != nil {
		return nil, err
	}

	return s.repo.Post.GetByID(ctx, postID)
}

// RemovePost доступен автору и администратору. Теггинг и изображения
// удаляются до поста, затем объекты чистятся из хранилища best-effort.
func (s *contentService) RemovePost(ctx context.Context, actor *models.User, postID string) error {
	post, err := s.repo.Post.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if actor == nil || (actor.UserID != post.AuthorID && !actor.Can(permission.Admin)) {
		return ErrForbidden
	}

	if err := s.repo.Post.Delete(ctx, postID); err != nil {
		return err
	}

	for _, image := range post.Images {
		if objectName := objectNameFromURL(image.ImageURL); objectName != "" {
			if err := s.store.DeleteImage(ctx, objectName); err != nil {
				logger.Warn.Printf("Не удалось удалить объект %s: %v", objectName, err)
			}
		}
	}

	return nil
}

// AddComment доступен любому аутентифицированному пользователю.
func (s *contentService) AddComment(ctx context.Context, actor *models.User, postID, body string) (*models.Comment, error) {
	if actor == nil {
		return nil, ErrForbidden
	}

	post, err := s.repo.Post.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		AuthorID: actor.UserID,
		PostID:   post.PostID,
		Disabled: false,
	}
	comment.SetBody(body)

	if err := s.repo.Comment.Create(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// DisableComment - модерация: комментарий выключается, но не
// удаляется.
func (s *contentService) DisableComment(ctx context.Context, actor *models.User, commentID string) error {
	if !actor.Can(permission.Admin) {
		return ErrForbidden
	}

	if _, err := s.repo.Comment.GetByID(ctx, commentID); err != nil {
		return err
	}

	return s.repo.Comment.Disable(ctx, commentID)
}

func (s *contentService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return s.repo.Post.GetByID(ctx, postID)
}

func (s *contentService) ListPosts(ctx context.Context, page int) ([]models.Post, Pagination, error) {
	pageSize := s.cfg.PostsPerPage

	posts, total, err := s.repo.Post.List(ctx, page, pageSize)
	if err != nil {
		return nil, Pagination{}, err
	}

	return posts, buildPagination(page, pageSize, total), nil
}

func (s *contentService) FilterPosts(ctx context.Context, headerSearch, tagID string, newestFirst bool, page int) ([]models.Post, Pagination, error) {
	pageSize := s.cfg.PostsPerPage

	posts, total, err := s.repo.Post.Filter(ctx, headerSearch, tagID, newestFirst, page, pageSize)
	if err != nil {
		return nil, Pagination{}, err
	}

	return posts, buildPagination(page, pageSize, total), nil
}

// ListComments понимает page = -1 как "последняя страница": туда
// попадает только что отправленный комментарий.
func (s *contentService) ListComments(ctx context.Context, postID string, page int, includeDisabled bool) ([]models.Comment, Pagination, error) {
	pageSize := s.cfg.CommentsPerPage

	if page == -1 {
		count, err := s.repo.Comment.CountByPost(ctx, postID)
		if err != nil {
			return nil, Pagination{}, err
		}
		page = repository.LastPage(count, pageSize)
	}

	comments, total, err := s.repo.Comment.ListByPost(ctx, postID, page, pageSize, includeDisabled)
	if err != nil {
		return nil, Pagination{}, err
	}

	return comments, buildPagination(page, pageSize, total), nil
}

// AttachImage загружает изображение в хранилище и пишет строку в БД.
// Если запись не удалась, загруженный объект убирается.
func (s *contentService) AttachImage(ctx context.Context, actor *models.User, postID, fileName string, file io.Reader, size int64) (*models.Image, error) {
	post, err := s.repo.Post.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if actor == nil || (actor.UserID != post.AuthorID && !actor.Can(permission.Admin)) {
		return nil, ErrForbidden
	}

	objectName, imageURL, err := s.store.UploadImage(ctx, postID, fileName, file, size)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки изображения: %w", err)
	}

	image := &models.Image{
		PostID:   postID,
		ImageURL: imageURL,
	}

	if err := s.repo.Image.Create(ctx, image); err != nil {
		if delErr := s.store.DeleteImage(ctx, objectName); delErr != nil {
			logger.Warn.Printf("Не удалось удалить объект %s: %v", objectName, delErr)
		}
		return nil, fmt.Errorf("ошибка сохранения изображения в БД: %w", err)
	}

	return image, nil
}

func (s *contentService) RemoveImage(ctx context.Context, actor *models.User, imageID string) error {
	image, err := s.repo.Image.GetByID(ctx, imageID)
	if err != nil {
		return err
	}

	post, err := s.repo.Post.GetByID(ctx, image.PostID)
	if err != nil {
		return err
	}

	if actor == nil || (actor.UserID != post.AuthorID && !actor.Can(permission.Admin)) {
		return ErrForbidden
	}

	if objectName := objectNameFromURL(image.ImageURL); objectName != "" {
		if err := s.store.DeleteImage(ctx, objectName); err != nil {
			logger.Warn.Printf("Не удалось удалить объект %s: %v", objectName, err)
		}
	}

	return s.repo.Image.Delete(ctx, imageID)
}

func buildPagination(page, pageSize, total int) Pagination {
	if page < 1 {
		page = 1
	}

	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: repository.LastPage(total, pageSize),
	}
}

// objectNameFromURL достаёт имя объекта из публичного URL вида
// scheme://endpoint/bucket/object/path.
func objectNameFromURL(imageURL string) string {
	parts := strings.SplitN(imageURL, "//", 2)
	if len(parts) == 2 {
		imageURL = parts[1]
	}

	segments := strings.SplitN(imageURL, "/", 3)
	if len(segments) < 3 {
		return ""
	}

	return segments[2]
}
