package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bloghub/internal/authz"
	"bloghub/internal/microservices/http-api/models"
	"bloghub/internal/testutil"
)

func backdate(t *testing.T, db *gorm.DB, post *models.Post, age time.Duration) {
	t.Helper()
	require.NoError(t, db.Model(post).UpdateColumn("created_at", time.Now().UTC().Add(-age)).Error)
}

func TestPostRepository_LatestOnlyPublished(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	author := testutil.NewUser(t, db, authz.RoleAuthor, "author@example.com")
	older := testutil.NewPost(t, db, author, "older", testutil.Ptr(now.Add(-2*time.Hour)))
	newer := testutil.NewPost(t, db, author, "newer", testutil.Ptr(now.Add(-time.Hour)))
	testutil.NewPost(t, db, author, "draft", nil)
	testutil.NewPost(t, db, author, "scheduled", testutil.Ptr(now.Add(24*time.Hour)))

	posts, err := repo.Latest(ctx, now)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, author.ID, posts[0].Author.ID)
}

func TestPostRepository_BySlugReturnsDrafts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	author := testutil.NewUser(t, db, authz.RoleAuthor, "author@example.com")
	testutil.NewPost(t, db, author, "draft", nil)

	post, err := repo.BySlug(context.Background(), "draft")
	require.NoError(t, err)
	assert.Nil(t, post.PublishedAt)

	_, err = repo.BySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepository_CreateWithCategoriesAndDuplicateSlug(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	admin := testutil.NewUser(t, db, authz.RoleAdmin, "admin@example.com")
	tech := testutil.NewCategory(t, db, admin, "tech")
	life := testutil.NewCategory(t, db, admin, "life")

	post := &models.Post{Title: "Hello", Body: "World", Slug: "hello", UserID: admin.ID}
	require.NoError(t, repo.Create(ctx, post, []int64{tech.ID, life.ID, tech.ID}))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, got.Categories, 2)

	dup := &models.Post{Title: "Again", Body: "x", Slug: "hello", UserID: admin.ID}
	err = repo.Create(ctx, dup, nil)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPostRepository_UpdateReplacesCategories(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	admin := testutil.NewUser(t, db, authz.RoleAdmin, "admin@example.com")
	tech := testutil.NewCategory(t, db, admin, "tech")
	life := testutil.NewCategory(t, db, admin, "life")
	post := testutil.NewPost(t, db, admin, "post", nil)
	require.NoError(t, db.Create(&models.CategoryPost{CategoryID: tech.ID, PostID: post.ID}).Error)

	post.Title = "Renamed"
	require.NoError(t, repo.Update(ctx, post, []string{"title"}, nil, false))
	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, tech.ID, got.Categories[0].ID)

	require.NoError(t, repo.Update(ctx, post, nil, []int64{life.ID}, true))
	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, life.ID, got.Categories[0].ID)

	require.NoError(t, repo.Update(ctx, post, nil, []int64{}, true))
	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Categories)
}

func TestPostRepository_DeleteIsSoft(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := testutil.NewUser(t, db, authz.RoleAuthor, "author@example.com")
	post := testutil.NewPost(t, db, author, "gone", nil)

	require.NoError(t, repo.Delete(ctx, post.ID))
	_, err := repo.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.ErrorIs(t, repo.Delete(ctx, post.ID), ErrNotFound)
}

func TestPostRepository_DeleteStale(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	admin := testutil.NewUser(t, db, authz.RoleAdmin, "admin@example.com")
	reader := testutil.NewUser(t, db, authz.RoleUser, "reader@example.com")

	// old, only an unconfirmed comment: reaped
	stale := testutil.NewPost(t, db, admin, "stale", nil)
	backdate(t, db, stale, 10*24*time.Hour)
	testutil.NewComment(t, db, reader, stale, nil)

	// old but confirmed: kept
	engaged := testutil.NewPost(t, db, admin, "engaged", nil)
	backdate(t, db, engaged, 10*24*time.Hour)
	testutil.NewComment(t, db, reader, engaged, admin)

	// old, confirmed comment was deleted: reaped
	orphaned := testutil.NewPost(t, db, admin, "orphaned", nil)
	backdate(t, db, orphaned, 10*24*time.Hour)
	gone := testutil.NewComment(t, db, reader, orphaned, admin)
	require.NoError(t, db.Delete(gone).Error)

	// recent: kept
	fresh := testutil.NewPost(t, db, admin, "fresh", nil)
	backdate(t, db, fresh, 2*24*time.Hour)

	cutoff := time.Now().UTC().Add(-7 * 24 * time.Hour)
	n, err := repo.DeleteStale(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.GetByID(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByID(ctx, orphaned.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByID(ctx, engaged.ID)
	assert.NoError(t, err)
	_, err = repo.GetByID(ctx, fresh.ID)
	assert.NoError(t, err)

	n, err = repo.DeleteStale(ctx, cutoff)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCategoryRepository_NestedPostsArePublishedOnly(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	admin := testutil.NewUser(t, db, authz.RoleAdmin, "admin@example.com")
	live := testutil.NewPost(t, db, admin, "live", testutil.Ptr(now.Add(-time.Minute)))
	draft := testutil.NewPost(t, db, admin, "draft", nil)
	testutil.NewCategory(t, db, admin, "tech", live, draft)

	c, err := repo.BySlug(ctx, "tech", now)
	require.NoError(t, err)
	require.Len(t, c.Posts, 1)
	assert.Equal(t, live.ID, c.Posts[0].ID)

	all, err := repo.All(ctx, now)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Posts, 1)
}

func TestCategoryRepository_RoundTrip(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	admin := testutil.NewUser(t, db, authz.RoleAdmin, "admin@example.com")
	desc := "Everything about computers"
	c := &models.Category{Title: "Tech", Description: &desc, Slug: "tech", UserID: admin.ID}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tech", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)

	got.Title = "Technology"
	got.Description = nil
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.BySlug(ctx, "tech", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, "Technology", got.Title)
	assert.Nil(t, got.Description)

	n, err := repo.CountExisting(ctx, []int64{c.ID, c.ID + 100})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	err = repo.Create(ctx, &models.Category{Title: "Technology", Slug: "other", UserID: admin.ID})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), ErrNotFound)
}

func TestCommentRepository_Confirm(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	admin := testutil.NewUser(t, db, authz.RoleAdmin, "admin@example.com")
	reader := testutil.NewUser(t, db, authz.RoleUser, "reader@example.com")
	post := testutil.NewPost(t, db, admin, "post", nil)
	comment := testutil.NewComment(t, db, reader, post, nil)

	pending, err := repo.Unconfirmed(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	at := time.Now().UTC()
	require.NoError(t, repo.Confirm(ctx, comment.ID, admin.ID, at))

	got, err := repo.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.True(t, got.IsConfirmed())
	require.NotNil(t, got.ConfirmedBy)
	assert.Equal(t, admin.ID, got.ConfirmedBy.ID)
	require.NotNil(t, got.Post)
	require.NotNil(t, got.Post.Author)
	assert.Equal(t, admin.ID, got.Post.Author.ID)

	assert.ErrorIs(t, repo.Confirm(ctx, comment.ID, admin.ID, at), ErrAlreadyConfirmed)
	assert.ErrorIs(t, repo.Confirm(ctx, comment.ID+100, admin.ID, at), ErrNotFound)

	pending, err = repo.Unconfirmed(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCommentRepository_ByOwnerIncludesDeleted(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	admin := testutil.NewUser(t, db, authz.RoleAdmin, "admin@example.com")
	reader := testutil.NewUser(t, db, authz.RoleUser, "reader@example.com")
	post := testutil.NewPost(t, db, admin, "post", nil)

	kept := testutil.NewComment(t, db, reader, post, nil)
	removed := testutil.NewComment(t, db, reader, post, nil)
	testutil.NewComment(t, db, admin, post, admin)
	require.NoError(t, repo.Delete(ctx, removed.ID))

	own, err := repo.ByOwner(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	ids := []int64{own[0].ID, own[1].ID}
	assert.ElementsMatch(t, []int64{kept.ID, removed.ID}, ids)

	live, err := repo.ByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, live, 2)
}

func TestRoleRepository_GrantsFollowReassignment(t *testing.T) {
	db := testutil.NewDB(t)
	roles := NewRoleRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	reader := testutil.NewUser(t, db, authz.RoleUser, "reader@example.com")

	grants, err := roles.GrantsForUser(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleUser, grants.RoleTitle)
	assert.NotContains(t, grants.Permissions, string(authz.ConfirmComments))

	admin, err := roles.FindByTitle(ctx, authz.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, users.AssignRole(ctx, reader.ID, admin.ID))

	grants, err = roles.GrantsForUser(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleAdmin, grants.RoleTitle)
	assert.Contains(t, grants.Permissions, string(authz.ConfirmComments))

	_, err = roles.GrantsForUser(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	admin := testutil.NewUser(t, db, authz.RoleAdmin, "admin@example.com")
	author := testutil.NewUser(t, db, authz.RoleAuthor, "author@example.com")
	post := testutil.NewPost(t, db, author, "post", nil)
	other := testutil.NewPost(t, db, admin, "other", nil)
	testutil.NewCategory(t, db, admin, "tech", post)
	testutil.NewComment(t, db, admin, post, admin)
	testutil.NewComment(t, db, author, other, nil)

	require.NoError(t, users.Delete(ctx, author.ID))

	_, err := users.FindByID(ctx, author.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var posts, comments, links int64
	require.NoError(t, db.Unscoped().Model(&models.Post{}).Where("user_id = ?", author.ID).Count(&posts).Error)
	require.NoError(t, db.Unscoped().Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, db.Model(&models.CategoryPost{}).Count(&links).Error)
	assert.Zero(t, posts)
	assert.Zero(t, comments)
	assert.Zero(t, links)

	assert.ErrorIs(t, users.Delete(ctx, author.ID), ErrNotFound)
}

func TestNotificationRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	reader := testutil.NewUser(t, db, authz.RoleUser, "reader@example.com")
	other := testutil.NewUser(t, db, authz.RoleUser, "other@example.com")

	first := &models.Notification{UserID: reader.ID, Type: models.NotificationNewComment, Title: "one"}
	second := &models.Notification{UserID: reader.ID, Type: models.NotificationCommentConfirmed, Title: "two"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &models.Notification{UserID: other.ID, Type: models.NotificationNewComment}))

	list, err := repo.ListByUser(ctx, reader.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	require.NoError(t, repo.MarkAsRead(ctx, reader.ID, first.ID))
	assert.ErrorIs(t, repo.MarkAsRead(ctx, other.ID, second.ID), ErrNotFound)

	unread, err := repo.ListByUser(ctx, reader.ID, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, second.ID, unread[0].ID)

	n, err := repo.MarkAllAsRead(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	unread, err = repo.ListByUser(ctx, reader.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
