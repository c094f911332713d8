package models

import (
	"time"

	"blogsite/internal/permission"
	"blogsite/internal/sanitizer"
)

type Role struct {
	RoleID      int    `json:"roleId" db:"role_id"`
	Name        string `json:"name" db:"name"`
	Permissions int    `json:"permissions" db:"permissions"`
}

type User struct {
	UserID       string    `json:"userId" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`
	Confirmed    bool      `json:"confirmed" db:"confirmed"`
	RoleID       int       `json:"roleId" db:"role_id"`
	Role         *Role     `json:"role" db:"-"`
}

// Can отвечает, есть ли у пользователя возможность perm. Аноним
// (nil-пользователь или пользователь без роли) не проходит ни одну
// проверку, роль при этом не читается.
func (u *User) Can(perm int) bool {
	if u == nil || u.Role == nil {
		return false
	}
	return permission.Has(u.Role.Permissions, perm)
}

func (u *User) IsAdministrator() bool {
	return u.Can(permission.Admin)
}

type Post struct {
	PostID       string    `json:"postId" db:"post_id"`
	Header       string    `json:"header" db:"header"`
	Body         string    `json:"body" db:"body"`
	BodyHTML     string    `json:"bodyHtml" db:"body_html"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	LastEditedAt time.Time `json:"lastEditedAt" db:"last_edited_at"`
	AuthorID     string    `json:"authorId" db:"author_id"`
	Tagging      *Tagging  `json:"tagging" db:"-"`
	Images       []Image   `json:"images" db:"-"`
}

// SetBody - единственный путь записи тела поста: body_html
// пересчитывается синхронно и не бывает устаревшим.
func (p *Post) SetBody(body string) {
	p.Body = body
	p.BodyHTML = sanitizer.SanitizePost(body)
}

type Comment struct {
	CommentID string    `json:"commentId" db:"comment_id"`
	Body      string    `json:"body" db:"body"`
	BodyHTML  string    `json:"bodyHtml" db:"body_html"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Disabled  bool      `json:"disabled" db:"disabled"`
	AuthorID  string    `json:"authorId" db:"author_id"`
	PostID    string    `json:"postId" db:"post_id"`
}

// SetBody - как у поста, но с урезанным allow-list.
func (c *Comment) SetBody(body string) {
	c.Body = body
	c.BodyHTML = sanitizer.SanitizeComment(body)
}

type Tag struct {
	TagID string `json:"tagId" db:"tag_id"`
	Name  string `json:"name" db:"name"`
}

// Tagging - связь поста ровно с тремя тегами. Слоты всегда заполнены,
// дубликаты между слотами на этом уровне не запрещаются.
type Tagging struct {
	TaggingID string `json:"taggingId" db:"tagging_id"`
	PostID    string `json:"postId" db:"post_id"`
	Tag1ID    string `json:"tag1Id" db:"tag1_id"`
	Tag2ID    string `json:"tag2Id" db:"tag2_id"`
	Tag3ID    string `json:"tag3Id" db:"tag3_id"`
}

func (t *Tagging) TagIDs() []string {
	return []string{t.Tag1ID, t.Tag2ID, t.Tag3ID}
}

type Image struct {
	ImageID   string    `json:"imageId" db:"image_id"`
	PostID    string    `json:"postId" db:"post_id"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}
