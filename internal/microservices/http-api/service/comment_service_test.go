package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"bloghub/internal/authz"
	"bloghub/internal/events"
	"bloghub/internal/microservices/http-api/dto"
	"bloghub/internal/microservices/http-api/models"
	"bloghub/internal/microservices/http-api/repository"
	"bloghub/internal/notification"
	"bloghub/internal/testutil"
)

type CommentServiceSuite struct {
	suite.Suite

	db       *gorm.DB
	ctx      context.Context
	recorder *events.Recorder
	svc      CommentService

	admin  *models.User
	author *models.User
	reader *models.User
	post   *models.Post
}

func TestCommentServiceSuite(t *testing.T) {
	suite.Run(t, new(CommentServiceSuite))
}

func (s *CommentServiceSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.ctx = context.Background()
	s.recorder = &events.Recorder{}

	gate := authz.NewGate(repository.NewRoleRepository(s.db))
	s.svc = NewCommentService(
		repository.NewCommentRepository(s.db),
		repository.NewPostRepository(s.db),
		gate,
		s.recorder,
	)

	s.admin = testutil.NewUser(s.T(), s.db, authz.RoleAdmin, "admin@example.com")
	s.author = testutil.NewUser(s.T(), s.db, authz.RoleAuthor, "author@example.com")
	s.reader = testutil.NewUser(s.T(), s.db, authz.RoleUser, "reader@example.com")
	s.post = testutil.NewPost(s.T(), s.db, s.author, "hello", nil)
}

func (s *CommentServiceSuite) create(u *models.User, body string) *models.Comment {
	c, err := s.svc.Create(s.ctx, testutil.Principal(u), dto.CreateCommentRequest{Body: body, PostID: s.post.ID})
	s.Require().NoError(err)
	return c
}

func (s *CommentServiceSuite) TestCreate_ReaderCommentIsPending() {
	c := s.create(s.reader, "  first!  ")

	s.Equal("first!", c.Body)
	s.Equal(s.reader.ID, c.UserID)
	s.False(c.IsConfirmed())
	s.Nil(c.ConfirmedByID)
	s.Empty(s.recorder.Events())
}

func (s *CommentServiceSuite) TestCreate_AdminCommentIsAutoConfirmed() {
	c := s.create(s.admin, "welcome")

	s.True(c.IsConfirmed())
	s.Require().NotNil(c.ConfirmedByID)
	s.Equal(s.admin.ID, *c.ConfirmedByID)

	evs := s.recorder.Events()
	s.Require().Len(evs, 1)
	s.True(evs[0].Auto)
	s.Equal(s.author.ID, evs[0].Comment.PostAuthorID)

	jobs := notification.JobsFor(evs[0])
	s.Require().Len(jobs, 1)
	s.Equal(models.NotificationNewComment, jobs[0].Kind)
	s.Equal(s.author.ID, jobs[0].RecipientID)
}

func (s *CommentServiceSuite) TestCreate_Validation() {
	_, err := s.svc.Create(s.ctx, testutil.Principal(s.reader), dto.CreateCommentRequest{Body: "   ", PostID: s.post.ID})
	var verr *ValidationError
	s.ErrorAs(err, &verr)
	s.Contains(verr.Fields, "body")

	_, err = s.svc.Create(s.ctx, testutil.Principal(s.reader), dto.CreateCommentRequest{Body: "hi", PostID: s.post.ID + 99})
	s.NotErrorIs(err, repository.ErrNotFound)
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "post_id")

	_, err = s.svc.Create(s.ctx, authz.Principal{}, dto.CreateCommentRequest{Body: "hi", PostID: s.post.ID})
	s.ErrorIs(err, authz.ErrForbidden)
}

func (s *CommentServiceSuite) TestConfirm_EnqueuesBothNotices() {
	c := s.create(s.reader, "pending")

	confirmed, err := s.svc.Confirm(s.ctx, testutil.Principal(s.admin), c.ID)
	s.Require().NoError(err)
	s.True(confirmed.IsConfirmed())
	s.Require().NotNil(confirmed.ConfirmedBy)
	s.Equal(s.admin.ID, confirmed.ConfirmedBy.ID)

	evs := s.recorder.Events()
	s.Require().Len(evs, 1)
	s.False(evs[0].Auto)

	jobs := notification.JobsFor(evs[0])
	s.Require().Len(jobs, 2)
	kinds := map[models.NotificationType]string{}
	for _, j := range jobs {
		kinds[j.Kind] = j.RecipientID
	}
	s.Equal(s.author.ID, kinds[models.NotificationNewComment])
	s.Equal(s.reader.ID, kinds[models.NotificationCommentConfirmed])
}

func (s *CommentServiceSuite) TestConfirm_TwiceConflicts() {
	c := s.create(s.reader, "pending")

	_, err := s.svc.Confirm(s.ctx, testutil.Principal(s.admin), c.ID)
	s.Require().NoError(err)

	_, err = s.svc.Confirm(s.ctx, testutil.Principal(s.admin), c.ID)
	s.ErrorIs(err, ErrAlreadyConfirmed)
	s.Len(s.recorder.Events(), 1)
}

func (s *CommentServiceSuite) TestConfirm_ConcurrentCallersPublishOnce() {
	c := s.create(s.reader, "pending")
	admin := testutil.Principal(s.admin)

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.Confirm(s.ctx, admin, c.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				confirmed++
			case errors.Is(err, ErrAlreadyConfirmed):
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, confirmed)
	s.Equal(callers-1, conflicts)
	s.Len(s.recorder.Events(), 1)
}

func (s *CommentServiceSuite) TestConfirm_PublishesWhenReloadFails() {
	c := s.create(s.reader, "pending")
	comments := &reloadFailingComments{CommentRepository: repository.NewCommentRepository(s.db)}
	svc := NewCommentService(
		comments,
		repository.NewPostRepository(s.db),
		authz.NewGate(repository.NewRoleRepository(s.db)),
		s.recorder,
	)

	confirmed, err := svc.Confirm(s.ctx, testutil.Principal(s.admin), c.ID)
	s.Require().NoError(err)
	s.True(confirmed.IsConfirmed())
	s.Require().NotNil(confirmed.ConfirmedByID)
	s.Equal(s.admin.ID, *confirmed.ConfirmedByID)

	evs := s.recorder.Events()
	s.Require().Len(evs, 1)
	s.Equal(c.ID, evs[0].Comment.ID)
	s.Equal(s.admin.ID, evs[0].Comment.ConfirmedByID)
	s.Equal(s.author.ID, evs[0].Comment.PostAuthorID)
	s.Len(notification.JobsFor(evs[0]), 2)
}

func (s *CommentServiceSuite) TestConfirm_RequiresAdmin() {
	c := s.create(s.reader, "pending")

	_, err := s.svc.Confirm(s.ctx, testutil.Principal(s.author), c.ID)
	s.ErrorIs(err, authz.ErrForbidden)

	_, err = s.svc.Unconfirmed(s.ctx, testutil.Principal(s.reader))
	s.ErrorIs(err, authz.ErrForbidden)

	pending, err := s.svc.Unconfirmed(s.ctx, testutil.Principal(s.admin))
	s.Require().NoError(err)
	s.Len(pending, 1)
	s.Empty(s.recorder.Events())
}

func (s *CommentServiceSuite) TestUpdate_OwnerWithPermissionOnly() {
	byAuthor := s.create(s.author, "draft thought")
	byReader := s.create(s.reader, "reader thought")

	updated, err := s.svc.Update(s.ctx, testutil.Principal(s.author), byAuthor.ID, dto.UpdateCommentRequest{Body: "final thought"})
	s.Require().NoError(err)
	s.Equal("final thought", updated.Body)

	// readers lack edit-comments even on their own comment
	_, err = s.svc.Update(s.ctx, testutil.Principal(s.reader), byReader.ID, dto.UpdateCommentRequest{Body: "x"})
	s.ErrorIs(err, authz.ErrForbidden)

	// no admin override for edits
	_, err = s.svc.Update(s.ctx, testutil.Principal(s.admin), byReader.ID, dto.UpdateCommentRequest{Body: "x"})
	s.ErrorIs(err, authz.ErrForbidden)
}

func (s *CommentServiceSuite) TestDelete_OwnerOrAdmin() {
	mine := s.create(s.reader, "mine")
	theirs := s.create(s.author, "theirs")

	s.ErrorIs(s.svc.Delete(s.ctx, testutil.Principal(s.reader), theirs.ID), authz.ErrForbidden)
	s.NoError(s.svc.Delete(s.ctx, testutil.Principal(s.reader), mine.ID))
	s.NoError(s.svc.Delete(s.ctx, testutil.Principal(s.admin), theirs.ID))
	s.ErrorIs(s.svc.Delete(s.ctx, testutil.Principal(s.admin), theirs.ID), repository.ErrNotFound)
}

func (s *CommentServiceSuite) TestRelated_IncludesDeleted() {
	kept := s.create(s.reader, "kept")
	removed := s.create(s.reader, "removed")
	s.create(s.author, "someone else")
	s.Require().NoError(s.svc.Delete(s.ctx, testutil.Principal(s.reader), removed.ID))

	own, err := s.svc.Related(s.ctx, testutil.Principal(s.reader))
	s.Require().NoError(err)
	s.Require().Len(own, 2)
	s.ElementsMatch([]int64{kept.ID, removed.ID}, []int64{own[0].ID, own[1].ID})

	all, err := s.svc.List(s.ctx, testutil.Principal(s.reader))
	s.Require().NoError(err)
	s.Len(all, 2)
}

// reloadFailingComments fails every read once a confirm has gone through.
type reloadFailingComments struct {
	repository.CommentRepository
	confirmed bool
}

func (r *reloadFailingComments) Confirm(ctx context.Context, id int64, confirmerID string, at time.Time) error {
	if err := r.CommentRepository.Confirm(ctx, id, confirmerID, at); err != nil {
		return err
	}
	r.confirmed = true
	return nil
}

func (r *reloadFailingComments) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	if r.confirmed {
		return nil, errors.New("connection reset by peer")
	}
	return r.CommentRepository.GetByID(ctx, id)
}
