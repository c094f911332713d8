package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"blogsite/internal/models"
	"blogsite/internal/session"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User, password string) error {
	args := m.Called(ctx, user, password)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) Confirm(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockPostRepository struct {
	mock.Mock
}

func (m *mockPostRepository) Create(ctx context.Context, post *models.Post, tagIDs []string) error {
	args := m.Called(ctx, post, tagIDs)
	return args.Error(0)
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	args := m.Called(ctx, postID)
	if post := args.Get(0); post != nil {
		return post.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPostRepository) List(ctx context.Context, page, pageSize int) ([]models.Post, int, error) {
	args := m.Called(ctx, page, pageSize)
	var posts []models.Post
	if v := args.Get(0); v != nil {
		posts = v.([]models.Post)
	}
	return posts, args.Int(1), args.Error(2)
}

func (m *mockPostRepository) Filter(ctx context.Context, headerSearch, tagID string, newestFirst bool, page, pageSize int) ([]models.Post, int, error) {
	args := m.Called(ctx, headerSearch, tagID, newestFirst, page, pageSize)
	var posts []models.Post
	if v := args.Get(0); v != nil {
		posts = v.([]models.Post)
	}
	return posts, args.Int(1), args.Error(2)
}

func (m *mockPostRepository) Update(ctx context.Context, post *models.Post, tagIDs []string) error {
	args := m.Called(ctx, post, tagIDs)
	return args.Error(0)
}

func (m *mockPostRepository) Delete(ctx context.Context, postID string) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

type mockCommentRepository struct {
	mock.Mock
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID string) (*models.Comment, error) {
	args := m.Called(ctx, commentID)
	if comment := args.Get(0); comment != nil {
		return comment.(*models.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID string, page, pageSize int, includeDisabled bool) ([]models.Comment, int, error) {
	args := m.Called(ctx, postID, page, pageSize, includeDisabled)
	var comments []models.Comment
	if v := args.Get(0); v != nil {
		comments = v.([]models.Comment)
	}
	return comments, args.Int(1), args.Error(2)
}

func (m *mockCommentRepository) Disable(ctx context.Context, commentID string) error {
	args := m.Called(ctx, commentID)
	return args.Error(0)
}

func (m *mockCommentRepository) CountByPost(ctx context.Context, postID string) (int, error) {
	args := m.Called(ctx, postID)
	return args.Int(0), args.Error(1)
}

type mockImageRepository struct {
	mock.Mock
}

func (m *mockImageRepository) Create(ctx context.Context, image *models.Image) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *mockImageRepository) GetByID(ctx context.Context, imageID string) (*models.Image, error) {
	args := m.Called(ctx, imageID)
	if image := args.Get(0); image != nil {
		return image.(*models.Image), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockImageRepository) GetByPostID(ctx context.Context, postID string) ([]models.Image, error) {
	args := m.Called(ctx, postID)
	var images []models.Image
	if v := args.Get(0); v != nil {
		images = v.([]models.Image)
	}
	return images, args.Error(1)
}

func (m *mockImageRepository) Delete(ctx context.Context, imageID string) error {
	args := m.Called(ctx, imageID)
	return args.Error(0)
}

func (m *mockImageRepository) DeleteByPostID(ctx context.Context, ext sqlx.ExtContext, postID string) error {
	args := m.Called(ctx, ext, postID)
	return args.Error(0)
}

// fakeSessionStore - сессии в памяти вместо Redis.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
	counter  int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]string{}}
}

func (s *fakeSessionStore) Create(userID string, remember bool) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	token := fmt.Sprintf("sess-%d", s.counter)
	s.sessions[token] = userID

	return &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (s *fakeSessionStore) Get(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.sessions[token]
	if !ok {
		return "", session.ErrSessionNotFound
	}
	return userID, nil
}

func (s *fakeSessionStore) Delete(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

// fakeMailer пишет письма в срез, SendAsync выполняется синхронно,
// чтобы тесты не ждали горутину.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *fakeMailer) SendAsync(to, subject, body string) {
	m.Send(to, subject, body)
}

func (m *fakeMailer) messages() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]sentMail{}, m.sent...)
}

// fakeStorage подменяет MinIO: запоминает загрузки и удаления.
type fakeStorage struct {
	mu       sync.Mutex
	uploads  []string
	deleted  []string
	uerr     error
	counter  int
	endpoint string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{endpoint: "http://minio.local/images"}
}

func (s *fakeStorage) UploadImage(ctx context.Context, postID, fileName string, file io.Reader, size int64) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uerr != nil {
		return "", "", s.uerr
	}

	s.counter++
	objectName := fmt.Sprintf("%s/%d_%s", postID, s.counter, fileName)
	s.uploads = append(s.uploads, objectName)

	return objectName, s.endpoint + "/" + objectName, nil
}

func (s *fakeStorage) DeleteImage(ctx context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, objectName)
	return nil
}
