package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blogsite/internal/models"
)

type taggingRepository struct {
	db *sqlx.DB
}

func NewTaggingRepository(db *sqlx.DB) TaggingRepository {
	return &taggingRepository{db: db}
}

// Create заводит связь поста ровно с тремя тегами. Любое другое
// количество - ошибка валидации, запись не создаётся. Выполняется на
// переданном ext, чтобы попадать в транзакцию поста.
func (r *taggingRepository) Create(ctx context.Context, ext sqlx.ExtContext, postID string, tagIDs []string) (*models.Tagging, error) {
	if len(tagIDs) != 3 {
		return nil, ErrTaggingArity
	}

	tagging := &models.Tagging{
		TaggingID: uuid.New().String(),
		PostID:    postID,
		Tag1ID:    tagIDs[0],
		Tag2ID:    tagIDs[1],
		Tag3ID:    tagIDs[2],
	}

	query := `
		INSERT INTO taggings (tagging_id, post_id, tag1_id, tag2_id, tag3_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := ext.ExecContext(ctx, query,
		tagging.TaggingID, tagging.PostID, tagging.Tag1ID, tagging.Tag2ID, tagging.Tag3ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании теггинга: %w", err)
	}

	return tagging, nil
}

// Update заменяет все три слота атомарно, с той же проверкой арности.
func (r *taggingRepository) Update(ctx context.Context, ext sqlx.ExtContext, postID string, tagIDs []string) error {
	if len(tagIDs) != 3 {
		return ErrTaggingArity
	}

	query := `
		UPDATE taggings SET tag1_id = $1, tag2_id = $2, tag3_id = $3
		WHERE post_id = $4
	`

	result, err := ext.ExecContext(ctx, query, tagIDs[0], tagIDs[1], tagIDs[2], postID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении теггинга: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("теггинг поста %s не найден", postID)
	}

	return nil
}

func (r *taggingRepository) GetByPost(ctx context.Context, postID string) (*models.Tagging, error) {
	var tagging models.Tagging

	query := `SELECT * FROM taggings WHERE post_id = $1`

	err := r.db.GetContext(ctx, &tagging, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("теггинг поста %s не найден", postID)
		}
		return nil, fmt.Errorf("ошибка при получении теггинга: %w", err)
	}

	return &tagging, nil
}

// DeleteByPost удаляет теггинг. Вызывается до удаления самого поста,
// чтобы не оставлять осиротевших строк.
func (r *taggingRepository) DeleteByPost(ctx context.Context, ext sqlx.ExtContext, postID string) error {
	query := `DELETE FROM taggings WHERE post_id = $1`

	_, err := ext.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении теггинга: %w", err)
	}

	return nil
}
