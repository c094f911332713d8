package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blogsite/internal/models"
	"blogsite/internal/sanitizer"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create пишет пост и его теггинг одной транзакцией: пост без трёх
// тегов не должен быть наблюдаем.
func (r *postRepository) Create(ctx context.Context, post *models.Post, tagIDs []string) error {
	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}

	now := time.Now()
	post.CreatedAt = now
	post.LastEditedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO posts (post_id, header, body, body_html, created_at, last_edited_at, author_id)
		VALUES (:post_id, :header, :body, :body_html, :created_at, :last_edited_at, :author_id)
	`

	_, err = tx.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}

	taggingRepo := taggingRepository{db: r.db}
	tagging, err := taggingRepo.Create(ctx, tx, post.PostID, tagIDs)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	post.Tagging = tagging
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post

	query := `SELECT * FROM posts WHERE post_id = $1`

	err := r.db.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пост с ID %s не найден", postID)
		}
		return nil, fmt.Errorf("ошибка при получении поста: %w", err)
	}

	if err := r.attachRelations(ctx, &post); err != nil {
		return nil, err
	}

	return &post, nil
}

// List отдаёт страницу постов от новых к старым. Страница за пределами
// выборки - пустой список, не ошибка.
func (r *postRepository) List(ctx context.Context, page, pageSize int) ([]models.Post, int, error) {
	var total int

	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts`)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка при подсчёте постов: %w", err)
	}

	query := `
		SELECT * FROM posts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	posts := []models.Post{}
	err = r.db.SelectContext(ctx, &posts, query, pageSize, pageOffset(page, pageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка при получении постов: %w", err)
	}

	for i := range posts {
		if err := r.attachRelations(ctx, &posts[i]); err != nil {
			return nil, 0, err
		}
	}

	return posts, total, nil
}

// Filter ищет по подстроке заголовка и тегу. Поисковая строка
// предварительно очищается от разметки. Совпадение по тегу смотрит
// только первый слот теггинга - историческое поведение, закреплено
// тестом.
func (r *postRepository) Filter(ctx context.Context, headerSearch, tagID string, newestFirst bool, page, pageSize int) ([]models.Post, int, error) {
	search := "%" + sanitizer.StripMarkup(headerSearch) + "%"

	order := "DESC"
	if !newestFirst {
		order = "ASC"
	}

	countQuery := `
		SELECT COUNT(*) FROM posts p
		JOIN taggings t ON t.post_id = p.post_id
		WHERE t.tag1_id = $1 AND p.header LIKE $2
	`

	var total int
	err := r.db.GetContext(ctx, &total, countQuery, tagID, search)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка при подсчёте постов: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT p.* FROM posts p
		JOIN taggings t ON t.post_id = p.post_id
		WHERE t.tag1_id = $1 AND p.header LIKE $2
		ORDER BY p.created_at %s
		LIMIT $3 OFFSET $4
	`, order)

	posts := []models.Post{}
	err = r.db.SelectContext(ctx, &posts, query, tagID, search, pageSize, pageOffset(page, pageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка при фильтрации постов: %w", err)
	}

	for i := range posts {
		if err := r.attachRelations(ctx, &posts[i]); err != nil {
			return nil, 0, err
		}
	}

	return posts, total, nil
}

// Update сохраняет новые заголовок, тело и теггинг одной транзакцией.
// body_html приходит уже пересчитанным через Post.SetBody.
func (r *postRepository) Update(ctx context.Context, post *models.Post, tagIDs []string) error {
	post.LastEditedAt = time.Now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE posts SET
			header = :header,
			body = :body,
			body_html = :body_html,
			last_edited_at = :last_edited_at
		WHERE post_id = :post_id
	`

	result, err := tx.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении поста: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пост с ID %s не найден", post.PostID)
	}

	taggingRepo := taggingRepository{db: r.db}
	if err := taggingRepo.Update(ctx, tx, post.PostID, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return nil
}

// Delete удаляет пост вместе с теггингом и изображениями. Сначала
// зависимые строки, потом сам пост, всё в одной транзакции.
func (r *postRepository) Delete(ctx context.Context, postID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	taggingRepo := taggingRepository{db: r.db}
	if err := taggingRepo.DeleteByPost(ctx, tx, postID); err != nil {
		return err
	}

	imageRepo := imageRepository{db: r.db}
	if err := imageRepo.DeleteByPostID(ctx, tx, postID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении поста: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пост с ID %s не найден", postID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return nil
}

func (r *postRepository) attachRelations(ctx context.Context, post *models.Post) error {
	var tagging models.Tagging

	err := r.db.GetContext(ctx, &tagging, `SELECT * FROM taggings WHERE post_id = $1`, post.PostID)
	if err == nil {
		post.Tagging = &tagging
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ошибка при получении теггинга: %w", err)
	}

	images := []models.Image{}
	err = r.db.SelectContext(ctx, &images, `SELECT * FROM images WHERE post_id = $1 ORDER BY created_at`, post.PostID)
	if err != nil {
		return fmt.Errorf("ошибка при получении изображений: %w", err)
	}

	post.Images = images
	return nil
}
