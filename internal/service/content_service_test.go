package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blogsite/internal/config"
	"blogsite/internal/models"
	"blogsite/internal/permission"
	"blogsite/internal/repository"
)

func newTestContentService(posts *mockPostRepository, comments *mockCommentRepository, images *mockImageRepository) (ContentService, *fakeStorage) {
	cfg := &config.Config{
		PostsPerPage:    10,
		CommentsPerPage: 10,
	}

	store := newFakeStorage()
	repo := &repository.Repository{
		Post:    posts,
		Comment: comments,
		Image:   images,
	}

	return NewContentService(repo, store, cfg), store
}

func userWithPermissions(userID string, permissions int) *models.User {
	return &models.User{
		UserID: userID,
		Role:   &models.Role{Permissions: permissions},
	}
}

func TestContentService_CreatePost(t *testing.T) {
	ctx := context.Background()
	tagIDs := []string{"tag-a", "tag-b", "tag-c"}

	t.Run("Автор с битом WRITE создаёт пост с отрендеренным телом", func(t *testing.T) {
		posts := new(mockPostRepository)
		svc, _ := newTestContentService(posts, new(mockCommentRepository), new(mockImageRepository))

		actor := userWithPermissions("user-1", permission.Comment|permission.Write)

		posts.On("Create", mock.Anything, mock.AnythingOfType("*models.Post"), tagIDs).
			Return(nil)

		post, err := svc.CreatePost(ctx, actor, "Заголовок", "*важный* текст", tagIDs)

		require.NoError(t, err)
		require.NotNil(t, post)
		assert.Equal(t, "user-1", post.AuthorID)
		assert.Equal(t, "*важный* текст", post.Body)
		assert.Contains(t, post.BodyHTML, "<em>важный</em>")
		posts.AssertExpectations(t)
	})

	t.Run("Без бита WRITE операция молча не выполняется", func(t *testing.T) {
		posts := new(mockPostRepository)
		svc, _ := newTestContentService(posts, new(mockCommentRepository), new(mockImageRepository))

		actor := userWithPermissions("user-1", permission.Comment)

		post, err := svc.CreatePost(ctx, actor, "Заголовок", "текст", tagIDs)

		assert.NoError(t, err)
		assert.Nil(t, post)
		posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Аноним тоже получает тихий отказ", func(t *testing.T) {
		posts := new(mockPostRepository)
		svc, _ := newTestContentService(posts, new(mockCommentRepository), new(mockImageRepository))

		post, err := svc.CreatePost(ctx, nil, "Заголовок", "текст", tagIDs)

		assert.NoError(t, err)
		assert.Nil(t, post)
	})
}

func TestContentService_EditPost(t *testing.T) {
	ctx := context.Background()
	tagIDs := []string{"tag-a", "tag-b", "tag-c"}

	t.Run("Автор без бита ADMIN получает отказ", func(t *testing.T) {
		posts := new(mockPostRepository)
		svc, _ := newTestContentService(posts, new(mockCommentRepository), new(mockImageRepository))

		// пост принадлежит user-1, но прав Author недостаточно
		actor := userWithPermissions("user-1", permission.Comment|permission.Write)

		post, err := svc.EditPost(ctx, actor, "post-1", "Заголовок", "текст", tagIDs)

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, post)
		posts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Администратор редактирует чужой пост", func(t *testing.T) {
		posts := new(mockPostRepository)
		svc, _ := newTestContentService(posts, new(mockCommentRepository), new(mockImageRepository))

		actor := userWithPermissions("admin-1", permission.Comment|permission.Write|permission.Moderate|permission.Admin)

		stored := &models.Post{PostID: "post-1", Header: "Старый", AuthorID: "user-1"}

		posts.On("GetByID", mock.Anything, "post-1").Return(stored, nil)
		posts.On("Update", mock.Anything, mock.AnythingOfType("*models.Post"), tagIDs).
			Return(nil)

		post, err := svc.EditPost(ctx, actor, "post-1", "Новый", "новый текст", tagIDs)

		require.NoError(t, err)
		assert.Equal(t, "Новый", post.Header)
		posts.AssertExpectations(t)
	})

	t.Run("Модератор без ADMIN получает отказ", func(t *testing.T) {
		posts := new(mockPostRepository)
		svc, _ := newTestContentService(posts, new(mockCommentRepository), new(mockImageRepository))

		actor := userWithPermissions("mod-1", permission.Comment|permission.Write|permission.Moderate)

		post, err := svc.EditPost(ctx, actor, "post-1", "Заголовок", "текст", tagIDs)

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, post)
	})
}

func TestContentService_RemovePost(t *testing.T) {
	ctx := context.Background()

	storedPost := func() *models.Post {
		return &models.Post{
			PostID:   "post-1",
			AuthorID: "user-1",
			Images: []models.Image{
				{ImageID: "img-1", PostID: "post-1", ImageURL: "http://minio.local/images/post-1/1_a.png"},
			},
		}
	}

	t.Run("Автор удаляет свой пост, объекты чистятся из хранилища", func(t *testing.T) {
		posts := new(mockPostRepository)
		svc, store := newTestContentService(posts, new(mockCommentRepository), new(mockImageRepository))

		actor := userWithPermissions("user-1", permission.Comment|permission.Write)

		posts.On("GetByID", mock.Anything, "post-1").Return(storedPost(), nil)
		posts.On("Delete", mock.Anything, "post-1").Return(nil)

		err := svc.RemovePost(ctx, actor, "post-1")

		require.NoError(t, err)
		assert.Equal(t, []string{"post-1/1_a.png"}, store.deleted)
		posts.AssertExpectations(t)
	})

	t.Run("Администратор удаляет чужой пост", func(t *testing.T) {
		posts := new(mockPostRepository)
		svc, _ := newTestContentService(posts, new(mockCommentRepository), new(mockImageRepository))

		actor := userWithPermissions("admin-1", permission.Comment|permission.Write|permission.Moderate|permission.Admin)

		posts.On("GetByID", mock.Anything, "post-1").Return(storedPost(), nil)
		posts.On("Delete", mock.Anything, "post-1").Return(nil)

		assert.NoError(t, svc.RemovePost(ctx, actor, "post-1"))
	})

	t.Run("Чужому без ADMIN нельзя", func(t *testing.T) {
		posts := new(mockPostRepository)
		svc, _ := newTestContentService(posts, new(mockCommentRepository), new(mockImageRepository))

		actor := userWithPermissions("user-2", permission.Comment|permission.Write)

		posts.On("GetByID", mock.Anything, "post-1").Return(storedPost(), nil)

		err := svc.RemovePost(ctx, actor, "post-1")

		assert.ErrorIs(t, err, ErrForbidden)
		posts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Аноним получает отказ", func(t *testing.T) {
		posts := new(mockPostRepository)
		svc, _ := newTestContentService(posts, new(mockCommentRepository), new(mockImageRepository))

		posts.On("GetByID", mock.Anything, "post-1").Return(storedPost(), nil)

		assert.ErrorIs(t, svc.RemovePost(ctx, nil, "post-1"), ErrForbidden)
	})
}

func TestContentService_AddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("Аутентифицированный пользователь комментирует", func(t *testing.T) {
		posts := new(mockPostRepository)
		comments := new(mockCommentRepository)
		svc, _ := newTestContentService(posts, comments, new(mockImageRepository))

		actor := userWithPermissions("user-2", permission.Comment)

		posts.On("GetByID", mock.Anything, "post-1").
			Return(&models.Post{PostID: "post-1", AuthorID: "user-1"}, nil)
		comments.On("Create", mock.Anything, mock.AnythingOfType("*models.Comment")).
			Return(nil)

		comment, err := svc.AddComment(ctx, actor, "post-1", "отличный *пост*")

		require.NoError(t, err)
		assert.Equal(t, "user-2", comment.AuthorID)
		assert.Equal(t, "post-1", comment.PostID)
		assert.False(t, comment.Disabled)
		assert.Contains(t, comment.BodyHTML, "<em>пост</em>")
	})

	t.Run("Аноним получает отказ", func(t *testing.T) {
		posts := new(mockPostRepository)
		comments := new(mockCommentRepository)
		svc, _ := newTestContentService(posts, comments, new(mockImageRepository))

		comment, err := svc.AddComment(ctx, nil, "post-1", "текст")

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, comment)
		comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Комментарий к несуществующему посту", func(t *testing.T) {
		posts := new(mockPostRepository)
		comments := new(mockCommentRepository)
		svc, _ := newTestContentService(posts, comments, new(mockImageRepository))

		actor := userWithPermissions("user-2", permission.Comment)

		posts.On("GetByID", mock.Anything, "post-404").
			Return(nil, assert.AnError)

		comment, err := svc.AddComment(ctx, actor, "post-404", "текст")

		assert.Error(t, err)
		assert.Nil(t, comment)
	})
}

func TestContentService_DisableComment(t *testing.T) {
	ctx := context.Background()

	t.Run("Администратор отключает комментарий", func(t *testing.T) {
		comments := new(mockCommentRepository)
		svc, _ := newTestContentService(new(mockPostRepository), comments, new(mockImageRepository))

		actor := userWithPermissions("admin-1", permission.Comment|permission.Write|permission.Moderate|permission.Admin)

		comments.On("GetByID", mock.Anything, "c-1").
			Return(&models.Comment{CommentID: "c-1"}, nil)
		comments.On("Disable", mock.Anything, "c-1").Return(nil)

		assert.NoError(t, svc.DisableComment(ctx, actor, "c-1"))
		comments.AssertExpectations(t)
	})

	t.Run("Модератору без ADMIN нельзя", func(t *testing.T) {
		comments := new(mockCommentRepository)
		svc, _ := newTestContentService(new(mockPostRepository), comments, new(mockImageRepository))

		actor := userWithPermissions("mod-1", permission.Comment|permission.Write|permission.Moderate)

		err := svc.DisableComment(ctx, actor, "c-1")

		assert.ErrorIs(t, err, ErrForbidden)
		comments.AssertNotCalled(t, "Disable", mock.Anything, mock.Anything)
	})
}

func TestContentService_ListPosts(t *testing.T) {
	ctx := context.Background()

	t.Run("Пагинация считается от общего количества", func(t *testing.T) {
		posts := new(mockPostRepository)
		svc, _ := newTestContentService(posts, new(mockCommentRepository), new(mockImageRepository))

		posts.On("List", mock.Anything, 1, 10).
			Return([]models.Post{{PostID: "post-1"}}, 12, nil)

		list, pagination, err := svc.ListPosts(ctx, 1)

		require.NoError(t, err)
		assert.Len(t, list, 1)
		assert.Equal(t, 12, pagination.Total)
		assert.Equal(t, 2, pagination.TotalPages)
	})

	t.Run("Страница за пределами выборки - пустой список", func(t *testing.T) {
		posts := new(mockPostRepository)
		svc, _ := newTestContentService(posts, new(mockCommentRepository), new(mockImageRepository))

		posts.On("List", mock.Anything, 5, 10).
			Return([]models.Post{}, 12, nil)

		list, pagination, err := svc.ListPosts(ctx, 5)

		require.NoError(t, err)
		assert.Empty(t, list)
		assert.Equal(t, 5, pagination.Page)
		assert.Equal(t, 2, pagination.TotalPages)
	})
}

func TestContentService_ListComments(t *testing.T) {
	ctx := context.Background()

	t.Run("page=-1 открывает последнюю страницу", func(t *testing.T) {
		comments := new(mockCommentRepository)
		svc, _ := newTestContentService(new(mockPostRepository), comments, new(mockImageRepository))

		comments.On("CountByPost", mock.Anything, "post-1").Return(25, nil)
		comments.On("ListByPost", mock.Anything, "post-1", 3, 10, false).
			Return([]models.Comment{{CommentID: "c-25"}}, 25, nil)

		list, pagination, err := svc.ListComments(ctx, "post-1", -1, false)

		require.NoError(t, err)
		assert.Len(t, list, 1)
		assert.Equal(t, 3, pagination.Page)
		assert.Equal(t, 3, pagination.TotalPages)
		comments.AssertExpectations(t)
	})

	t.Run("Обычная страница не трогает счётчик", func(t *testing.T) {
		comments := new(mockCommentRepository)
		svc, _ := newTestContentService(new(mockPostRepository), comments, new(mockImageRepository))

		comments.On("ListByPost", mock.Anything, "post-1", 1, 10, false).
			Return([]models.Comment{}, 0, nil)

		_, pagination, err := svc.ListComments(ctx, "post-1", 1, false)

		require.NoError(t, err)
		assert.Equal(t, 1, pagination.TotalPages)
		comments.AssertNotCalled(t, "CountByPost", mock.Anything, mock.Anything)
	})
}

func TestContentService_AttachImage(t *testing.T) {
	ctx := context.Background()

	t.Run("Автор прикрепляет изображение", func(t *testing.T) {
		posts := new(mockPostRepository)
		images := new(mockImageRepository)
		svc, store := newTestContentService(posts, new(mockCommentRepository), images)

		actor := userWithPermissions("user-1", permission.Comment|permission.Write)

		posts.On("GetByID", mock.Anything, "post-1").
			Return(&models.Post{PostID: "post-1", AuthorID: "user-1"}, nil)
		images.On("Create", mock.Anything, mock.AnythingOfType("*models.Image")).
			Return(nil)

		image, err := svc.AttachImage(ctx, actor, "post-1", "a.png", strings.NewReader("data"), 4)

		require.NoError(t, err)
		assert.Equal(t, "post-1", image.PostID)
		assert.NotEmpty(t, image.ImageURL)
		assert.Len(t, store.uploads, 1)
	})

	t.Run("Чужому без ADMIN нельзя", func(t *testing.T) {
		posts := new(mockPostRepository)
		images := new(mockImageRepository)
		svc, store := newTestContentService(posts, new(mockCommentRepository), images)

		actor := userWithPermissions("user-2", permission.Comment|permission.Write)

		posts.On("GetByID", mock.Anything, "post-1").
			Return(&models.Post{PostID: "post-1", AuthorID: "user-1"}, nil)

		image, err := svc.AttachImage(ctx, actor, "post-1", "a.png", strings.NewReader("data"), 4)

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, image)
		assert.Empty(t, store.uploads)
	})

	t.Run("Ошибка записи в БД убирает объект из хранилища", func(t *testing.T) {
		posts := new(mockPostRepository)
		images := new(mockImageRepository)
		svc, store := newTestContentService(posts, new(mockCommentRepository), images)

		actor := userWithPermissions("user-1", permission.Comment|permission.Write)

		posts.On("GetByID", mock.Anything, "post-1").
			Return(&models.Post{PostID: "post-1", AuthorID: "user-1"}, nil)
		images.On("Create", mock.Anything, mock.AnythingOfType("*models.Image")).
			Return(assert.AnError)

		image, err := svc.AttachImage(ctx, actor, "post-1", "a.png", strings.NewReader("data"), 4)

		assert.Error(t, err)
		assert.Nil(t, image)
		require.Len(t, store.deleted, 1)
		assert.Equal(t, store.uploads[0], store.deleted[0])
	})
}
