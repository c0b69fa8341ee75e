package service

import (
	"context"
	"errors"
	"testing"

	"savornshare/internal/media"
	"savornshare/internal/models"
	"savornshare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub keeps posts in memory.
type postRepoStub struct {
	posts  map[uint]*models.Post
	nextID uint
}

func newPostRepoStub() *postRepoStub {
	return &postRepoStub{posts: make(map[uint]*models.Post), nextID: 1}
}

func (r *postRepoStub) GetByID(_ context.Context, id uint) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	cp := *p
	return &cp, nil
}

func (r *postRepoStub) List(context.Context, int, int) ([]models.Post, error) { return nil, nil }
func (r *postRepoStub) ListByCategory(context.Context, string, int, int) ([]models.Post, error) {
	return nil, nil
}
func (r *postRepoStub) ListByCreator(context.Context, uint, int, int) ([]models.Post, error) {
	return nil, nil
}

func (r *postRepoStub) Create(_ context.Context, p *models.Post) error {
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *postRepoStub) Update(_ context.Context, p *models.Post) error {
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *postRepoStub) Delete(_ context.Context, id uint) error {
	delete(r.posts, id)
	return nil
}

// countingUserRepo records AdjustPostCount calls and can fail them.
type countingUserRepo struct {
	adjusts  []int
	countErr error
}

func (r *countingUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	return &models.User{ID: id}, nil
}
func (r *countingUserRepo) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}
func (r *countingUserRepo) Create(context.Context, *models.User) error            { return nil }
func (r *countingUserRepo) Update(context.Context, *models.User) error            { return nil }
func (r *countingUserRepo) List(context.Context, int, int) ([]models.User, error) { return nil, nil }
func (r *countingUserRepo) AdjustPostCount(_ context.Context, _ uint, delta int) error {
	if r.countErr != nil {
		return r.countErr
	}
	r.adjusts = append(r.adjusts, delta)
	return nil
}

func newPostServiceFixture() (*PostService, *postRepoStub, *countingUserRepo, *testutil.MemStore) {
	posts := newPostRepoStub()
	users := &countingUserRepo{}
	store := testutil.NewMemStore()
	return NewPostService(posts, users, media.NewService(store)), posts, users, store
}

func validCreateInput(t *testing.T) CreatePostInput {
	t.Helper()
	return CreatePostInput{
		CreatorID:            1,
		Title:                "Soup",
		Category:             "Healthy",
		Description:          "a long enough description",
		Thumbnail:            testutil.TinyJPEG(t, 16, 16),
		ThumbnailContentType: "image/jpeg",
	}
}

func TestCreatePostSurvivesCounterFailure(t *testing.T) {
	svc, posts, users, _ := newPostServiceFixture()
	users.countErr = errors.New("redis down, pg hiccup, whatever")

	post, err := svc.CreatePost(context.Background(), validCreateInput(t))
	require.NoError(t, err, "a failed counter bump never fails the create")
	assert.Contains(t, posts.posts, post.ID)
}

func TestCreatePostCleansUpThumbnailOnStoreError(t *testing.T) {
	posts := newPostRepoStub()
	users := &countingUserRepo{}
	store := testutil.NewMemStore()
	store.PutErr = errors.New("bucket unavailable")
	svc := NewPostService(posts, users, media.NewService(store))

	_, err := svc.CreatePost(context.Background(), validCreateInput(t))
	require.Error(t, err)
	assert.Empty(t, posts.posts)
}

func TestDeletePostSurvivesCounterFailure(t *testing.T) {
	svc, posts, users, store := newPostServiceFixture()

	post, err := svc.CreatePost(context.Background(), validCreateInput(t))
	require.NoError(t, err)
	require.True(t, store.Has(post.ImageURL))

	users.countErr = errors.New("counter store down")
	require.NoError(t, svc.DeletePost(context.Background(), 1, post.ID))
	assert.Empty(t, posts.posts)
	assert.False(t, store.Has(post.ImageURL))
}

func TestDeletePostAdjustsCounter(t *testing.T) {
	svc, _, users, _ := newPostServiceFixture()

	post, err := svc.CreatePost(context.Background(), validCreateInput(t))
	require.NoError(t, err)
	require.NoError(t, svc.DeletePost(context.Background(), 1, post.ID))

	assert.Equal(t, []int{1, -1}, users.adjusts)
}
