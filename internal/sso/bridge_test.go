package sso

import (
	"context"
	"strings"
	"testing"

	"savornshare/internal/models"
	"savornshare/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memUserRepo is an in-memory repository.UserRepository for bridge tests.
type memUserRepo struct {
	byEmail map[string]*models.User
	nextID  uint
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*models.User), nextID: 1}
}

func (r *memUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", id)
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	if _, exists := r.byEmail[strings.ToLower(u.Email)]; exists {
		return models.NewConflictError("Email already exists.")
	}
	u.ID = r.nextID
	r.nextID++
	r.byEmail[strings.ToLower(u.Email)] = u
	return nil
}

func (r *memUserRepo) Update(context.Context, *models.User) error            { return nil }
func (r *memUserRepo) List(context.Context, int, int) ([]models.User, error) { return nil, nil }
func (r *memUserRepo) AdjustPostCount(context.Context, uint, int) error      { return nil }

func newBridge(t *testing.T) (*Bridge, *memUserRepo, *token.Service) {
	t.Helper()
	tokens, err := token.NewService("bridge-secret")
	require.NoError(t, err)
	repo := newMemUserRepo()
	return NewBridge(repo, tokens), repo, tokens
}

func TestEstablishCreatesUserOnFirstLogin(t *testing.T) {
	bridge, repo, tokens := newBridge(t)

	user, raw, err := bridge.Establish(context.Background(), &Identity{
		Email:   "Chef@Gmail.com",
		Name:    "Chef",
		Picture: "https://lh3.googleusercontent.com/p.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, "chef@gmail.com", user.Email, "email is normalized before lookup and create")
	assert.True(t, user.IsGoogleUser)
	assert.Empty(t, user.Password, "federated accounts carry no credential")
	assert.Equal(t, "https://lh3.googleusercontent.com/p.jpg", user.ProfileImage)
	assert.Len(t, repo.byEmail, 1)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestEstablishReusesExistingUser(t *testing.T) {
	bridge, repo, _ := newBridge(t)
	ctx := context.Background()

	first, _, err := bridge.Establish(ctx, &Identity{Email: "one@gmail.com", Name: "One"})
	require.NoError(t, err)

	second, _, err := bridge.Establish(ctx, &Identity{Email: "ONE@gmail.com", Name: "Renamed"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.byEmail, 1, "no duplicate account on repeat login")
}

func TestEstablishLinksPasswordAccount(t *testing.T) {
	bridge, repo, _ := newBridge(t)
	ctx := context.Background()

	// An account registered with a password earlier.
	require.NoError(t, repo.Create(ctx, &models.User{
		Name: "Local", Email: "local@gmail.com", Password: "hashed",
	}))

	user, raw, err := bridge.Establish(ctx, &Identity{Email: "local@gmail.com", Name: "Local"})
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "hashed", user.Password, "the existing record is reused untouched")
	assert.False(t, user.IsGoogleUser)
}

func TestEstablishDefaultAvatar(t *testing.T) {
	bridge, _, _ := newBridge(t)

	user, _, err := bridge.Establish(context.Background(), &Identity{
		Email: "noavatar@gmail.com", Name: "No Avatar",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAvatarURL, user.ProfileImage)
}
