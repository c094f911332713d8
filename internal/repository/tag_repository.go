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
)

type tagRepository struct {
	db *sqlx.DB
}

func NewTagRepository(db *sqlx.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if tag.TagID == "" {
		tag.TagID = uuid.New().String()
	}

	query := `INSERT INTO tags (tag_id, name) VALUES ($1, $2)`

	_, err := r.db.ExecContext(ctx, query, tag.TagID, tag.Name)
	if err != nil {
		if strings.Contains(err.Error(), "tags_name_key") {
			return fmt.Errorf("тег %s уже существует", tag.Name)
		}
		return fmt.Errorf("ошибка при создании тега: %w", err)
	}

	return nil
}

func (r *tagRepository) GetByID(ctx context.Context, tagID string) (*models.Tag, error) {
	var tag models.Tag

	query := `SELECT * FROM tags WHERE tag_id = $1`

	err := r.db.GetContext(ctx, &tag, query, tagID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("тег с ID %s не найден", tagID)
		}
		return nil, fmt.Errorf("ошибка при получении тега: %w", err)
	}

	return &tag, nil
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag

	query := `SELECT * FROM tags ORDER BY tag_id`

	err := r.db.SelectContext(ctx, &tags, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении тегов: %w", err)
	}

	return tags, nil
}
