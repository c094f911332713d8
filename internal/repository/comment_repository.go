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
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CommentID == "" {
		comment.CommentID = uuid.New().String()
	}

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO comments (comment_id, body, body_html, created_at, disabled, author_id, post_id)
		VALUES (:comment_id, :body, :body_html, :created_at, :disabled, :author_id, :post_id)
	`

	_, err := r.db.NamedExecContext(ctx, query, comment)
	if err != nil {
		return fmt.Errorf("ошибка при создании комментария: %w", err)
	}

	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*models.Comment, error) {
	var comment models.Comment

	query := `SELECT * FROM comments WHERE comment_id = $1`

	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("комментарий с ID %s не найден", commentID)
		}
		return nil, fmt.Errorf("ошибка при получении комментария: %w", err)
	}

	return &comment, nil
}

// ListByPost отдаёт страницу комментариев поста от старых к новым.
// Отключённые комментарии по умолчанию скрыты.
func (r *commentRepository) ListByPost(ctx context.Context, postID string, page, pageSize int, includeDisabled bool) ([]models.Comment, int, error) {
	filter := ""
	if !includeDisabled {
		filter = " AND disabled = FALSE"
	}

	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM comments WHERE post_id = $1`+filter, postID)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка при подсчёте комментариев: %w", err)
	}

	query := `
		SELECT * FROM comments
		WHERE post_id = $1` + filter + `
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	comments := []models.Comment{}
	err = r.db.SelectContext(ctx, &comments, query, postID, pageSize, pageOffset(page, pageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка при получении комментариев: %w", err)
	}

	return comments, total, nil
}

// Disable выключает комментарий, не удаляя его: след модерации
// сохраняется.
func (r *commentRepository) Disable(ctx context.Context, commentID string) error {
	query := `UPDATE comments SET disabled = TRUE WHERE comment_id = $1`

	result, err := r.db.ExecContext(ctx, query, commentID)
	if err != nil {
		return fmt.Errorf("ошибка при отключении комментария: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("комментарий с ID %s не найден", commentID)
	}

	return nil
}

// CountByPost считает все комментарии поста, включая отключённые.
// Используется вместе с LastPage для перехода к свежему комментарию.
func (r *commentRepository) CountByPost(ctx context.Context, postID string) (int, error) {
	var count int

	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("ошибка при подсчёте комментариев: %w", err)
	}

	return count, nil
}
