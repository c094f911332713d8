package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaggingRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaggingRepository(db)

	ctx := context.Background()

	t.Run("Ровно три тега - запись создаётся, слоты по порядку", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO taggings`).
			WithArgs(sqlmock.AnyArg(), "post-1", "tag-a", "tag-b", "tag-c").
			WillReturnResult(sqlmock.NewResult(1, 1))

		tagging, err := repo.Create(ctx, db, "post-1", []string{"tag-a", "tag-b", "tag-c"})

		require.NoError(t, err)
		assert.Equal(t, "post-1", tagging.PostID)
		assert.Equal(t, []string{"tag-a", "tag-b", "tag-c"}, tagging.TagIDs())
	})

	t.Run("Два тега - ошибка арности без обращения к БД", func(t *testing.T) {
		tagging, err := repo.Create(ctx, db, "post-1", []string{"tag-a", "tag-b"})

		assert.ErrorIs(t, err, ErrTaggingArity)
		assert.Nil(t, tagging)
	})

	t.Run("Четыре тега - ошибка арности", func(t *testing.T) {
		tagging, err := repo.Create(ctx, db, "post-1", []string{"a", "b", "c", "d"})

		assert.ErrorIs(t, err, ErrTaggingArity)
		assert.Nil(t, tagging)
	})

	t.Run("Повторяющиеся теги допустимы", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO taggings`).
			WithArgs(sqlmock.AnyArg(), "post-1", "tag-a", "tag-a", "tag-a").
			WillReturnResult(sqlmock.NewResult(1, 1))

		tagging, err := repo.Create(ctx, db, "post-1", []string{"tag-a", "tag-a", "tag-a"})

		require.NoError(t, err)
		assert.Equal(t, []string{"tag-a", "tag-a", "tag-a"}, tagging.TagIDs())
	})
}

func TestTaggingRepository_Update(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaggingRepository(db)

	ctx := context.Background()

	t.Run("Успешная замена всех трёх слотов", func(t *testing.T) {
		mock.ExpectExec(`UPDATE taggings SET`).
			WithArgs("tag-x", "tag-y", "tag-z", "post-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, db, "post-1", []string{"tag-x", "tag-y", "tag-z"})

		assert.NoError(t, err)
	})

	t.Run("Неверная арность", func(t *testing.T) {
		err := repo.Update(ctx, db, "post-1", []string{"tag-x"})

		assert.ErrorIs(t, err, ErrTaggingArity)
	})

	t.Run("Теггинг не найден", func(t *testing.T) {
		mock.ExpectExec(`UPDATE taggings SET`).
			WithArgs("tag-x", "tag-y", "tag-z", "post-404").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, db, "post-404", []string{"tag-x", "tag-y", "tag-z"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "не найден")
	})
}

func TestLastPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		pageSize int
		want     int
	}{
		{"Пустая выборка - всегда первая страница", 0, 10, 1},
		{"Неполная страница", 7, 10, 1},
		{"Ровно одна страница", 10, 10, 1},
		{"Одна запись на новой странице", 11, 10, 2},
		{"Несколько полных страниц", 30, 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LastPage(tt.total, tt.pageSize))
		})
	}
}
