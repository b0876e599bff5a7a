package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloghub/internal/authz"
	"bloghub/internal/microservices/http-api/dto"
	"bloghub/internal/microservices/http-api/repository"
	"bloghub/internal/testutil"
)

func newPostService(t *testing.T) (PostService, *testutil.Fixtures) {
	t.Helper()
	db := testutil.NewDB(t)
	gate := authz.NewGate(repository.NewRoleRepository(db))
	svc := NewPostService(
		repository.NewPostRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewCommentRepository(db),
		gate,
	)
	return svc, testutil.NewFixtures(t, db)
}

func TestPostService_CreateStampsOwner(t *testing.T) {
	svc, fx := newPostService(t)
	ctx := context.Background()
	tech := testutil.NewCategory(t, fx.DB, fx.Admin, "tech")

	published := time.Now().Add(-time.Minute)
	post, err := svc.Create(ctx, testutil.Principal(fx.Author), dto.CreatePostRequest{
		Title:       "Hello World",
		Body:        "body",
		PublishedAt: &published,
		Categories:  []int64{tech.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, fx.Author.ID, post.UserID)
	assert.Regexp(t, `^hello-world-[0-9a-f]{8}$`, post.Slug)
	assert.Len(t, post.Categories, 1)

	latest, err := svc.Latest(ctx, testutil.Principal(fx.Reader))
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, post.ID, latest[0].ID)
}

func TestPostService_CreateValidation(t *testing.T) {
	svc, fx := newPostService(t)
	ctx := context.Background()
	p := testutil.Principal(fx.Author)

	_, err := svc.Create(ctx, p, dto.CreatePostRequest{Title: "T", Body: "b", Categories: []int64{404}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "categories")

	_, err = svc.Create(ctx, p, dto.CreatePostRequest{Title: "T", Body: "b", Slug: "Not A Slug"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "slug")

	_, err = svc.Create(ctx, p, dto.CreatePostRequest{Title: "T", Body: "b", Slug: "taken"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, p, dto.CreatePostRequest{Title: "T", Body: "b", Slug: "taken"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = svc.Create(ctx, testutil.Principal(fx.Reader), dto.CreatePostRequest{Title: "T", Body: "b"})
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestPostService_UpdateOwnership(t *testing.T) {
	svc, fx := newPostService(t)
	ctx := context.Background()
	other := testutil.NewUser(t, fx.DB, authz.RoleAuthor, "other@example.com")
	post := testutil.NewPost(t, fx.DB, fx.Author, "mine", nil)

	req := dto.UpdatePostRequest{Title: testutil.Ptr("Edited"), Body: testutil.Ptr("new body")}

	_, err := svc.Update(ctx, testutil.Principal(other), post.ID, req)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, err = svc.Update(ctx, testutil.Principal(fx.Reader), post.ID, req)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	updated, err := svc.Update(ctx, testutil.Principal(fx.Author), post.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Title)
	assert.Equal(t, "mine", updated.Slug)

	req.Title = testutil.Ptr("By admin")
	updated, err = svc.Update(ctx, testutil.Principal(fx.Admin), post.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "By admin", updated.Title)

	_, err = svc.Update(ctx, testutil.Principal(fx.Author), post.ID+99, req)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPostService_UpdateIsPartial(t *testing.T) {
	svc, fx := newPostService(t)
	ctx := context.Background()
	published := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	post := testutil.NewPost(t, fx.DB, fx.Author, "live", &published)
	author := testutil.Principal(fx.Author)

	updated, err := svc.Update(ctx, author, post.ID, dto.UpdatePostRequest{Body: testutil.Ptr("typo fixed")})
	require.NoError(t, err)
	assert.Equal(t, "typo fixed", updated.Body)
	assert.Equal(t, post.Title, updated.Title)
	assert.Equal(t, "live", updated.Slug)
	require.NotNil(t, updated.PublishedAt)
	assert.True(t, published.Equal(*updated.PublishedAt))

	_, err = svc.Update(ctx, author, post.ID, dto.UpdatePostRequest{Title: testutil.Ptr("  ")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")

	updated, err = svc.Update(ctx, author, post.ID, dto.UpdatePostRequest{PublishedAt: dto.SetTime(nil)})
	require.NoError(t, err)
	assert.Nil(t, updated.PublishedAt)
	assert.Equal(t, "typo fixed", updated.Body)
}

func TestPostService_DeleteOwnership(t *testing.T) {
	svc, fx := newPostService(t)
	ctx := context.Background()
	other := testutil.NewUser(t, fx.DB, authz.RoleAuthor, "other@example.com")
	first := testutil.NewPost(t, fx.DB, fx.Author, "first", nil)
	second := testutil.NewPost(t, fx.DB, fx.Author, "second", nil)

	assert.ErrorIs(t, svc.Delete(ctx, testutil.Principal(other), first.ID), authz.ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, testutil.Principal(fx.Author), first.ID))
	assert.NoError(t, svc.Delete(ctx, testutil.Principal(fx.Admin), second.ID))
}

func TestPostService_ShowAndRelated(t *testing.T) {
	svc, fx := newPostService(t)
	ctx := context.Background()
	draft := testutil.NewPost(t, fx.DB, fx.Author, "draft", nil)
	testutil.NewComment(t, fx.DB, fx.Reader, draft, nil)
	testutil.NewPost(t, fx.DB, fx.Admin, "admins", nil)

	got, err := svc.Show(ctx, testutil.Principal(fx.Reader), "draft")
	require.NoError(t, err)
	assert.Len(t, got.Comments, 1)

	_, err = svc.Show(ctx, testutil.Principal(fx.Reader), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	mine, err := svc.Related(ctx, testutil.Principal(fx.Author))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, draft.ID, mine[0].ID)

	_, err = svc.Related(ctx, authz.Principal{})
	assert.ErrorIs(t, err, authz.ErrForbidden)
}
