// Package testutil opens throwaway SQLite databases and creates fixtures for
// package tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bloghub/database"
	"bloghub/database/seed"
	"bloghub/internal/authz"
	"bloghub/internal/microservices/http-api/models"
	"bloghub/internal/middleware/auth"
)

// Password is the plaintext password of every user made by NewUser.
const Password = "password123"

// DiscardLogger drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewDB returns a migrated and seeded database in the test's temp dir.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	url := "sqlite://" + filepath.Join(t.TempDir(), "bloghub.db")
	db, err := database.Connect(url, DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.Migrate(db, DiscardLogger()))
	require.NoError(t, seed.Run(context.Background(), db, nil, DiscardLogger()))
	return db
}

// NewUser inserts a user holding the named role (authz.RoleAdmin, RoleAuthor, RoleUser).
func NewUser(t testing.TB, db *gorm.DB, role, email string) *models.User {
	t.Helper()

	var r models.Role
	require.NoError(t, db.Where("title = ?", role).First(&r).Error)

	hash, err := auth.HashPassword(Password)
	require.NoError(t, err)

	u := &models.User{
		Name:     role + " user",
		Email:    email,
		Password: hash,
		RoleID:   r.ID,
	}
	require.NoError(t, db.Create(u).Error)
	u.Role = &r
	return u
}

// Principal is the caller identity for u.
func Principal(u *models.User) authz.Principal {
	return authz.Principal{UserID: u.ID}
}

// NewPost inserts a post owned by owner. A nil publishedAt makes a draft.
func NewPost(t testing.TB, db *gorm.DB, owner *models.User, slug string, publishedAt *time.Time) *models.Post {
	t.Helper()

	p := &models.Post{
		Title:       "Post " + slug,
		Body:        "Body of " + slug,
		Slug:        slug,
		PublishedAt: publishedAt,
		UserID:      owner.ID,
	}
	require.NoError(t, db.Omit("Author", "Categories", "Comments").Create(p).Error)
	return p
}

// NewCategory inserts a category owned by owner and links it to posts.
func NewCategory(t testing.TB, db *gorm.DB, owner *models.User, slug string, posts ...*models.Post) *models.Category {
	t.Helper()

	c := &models.Category{Title: "Category " + slug, Slug: slug, UserID: owner.ID}
	require.NoError(t, db.Omit("User", "Posts").Create(c).Error)
	for _, p := range posts {
		require.NoError(t, db.Create(&models.CategoryPost{CategoryID: c.ID, PostID: p.ID}).Error)
	}
	return c
}

// NewComment inserts a comment by author on post, confirmed by confirmer when non-nil.
func NewComment(t testing.TB, db *gorm.DB, author *models.User, post *models.Post, confirmer *models.User) *models.Comment {
	t.Helper()

	c := &models.Comment{Body: "A comment", PostID: post.ID, UserID: author.ID}
	if confirmer != nil {
		at := time.Now().UTC()
		c.ConfirmedByID = &confirmer.ID
		c.ConfirmedAt = &at
	}
	require.NoError(t, db.Omit("User", "Post", "ConfirmedBy").Create(c).Error)
	return c
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Fixtures is a database with one user per seeded role.
type Fixtures struct {
	DB     *gorm.DB
	Admin  *models.User
	Author *models.User
	Reader *models.User
}

func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	t.Helper()
	return &Fixtures{
		DB:     db,
		Admin:  NewUser(t, db, authz.RoleAdmin, "admin@example.com"),
		Author: NewUser(t, db, authz.RoleAuthor, "author@example.com"),
		Reader: NewUser(t, db, authz.RoleUser, "reader@example.com"),
	}
}
