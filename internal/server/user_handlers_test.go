package server

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"savornshare/internal/cache"
	"savornshare/internal/models"
	"savornshare/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGetUserPublicProfile(t *testing.T) {
	ts := newTestServer(t)
	user, _ := ts.registerUser(t, "Pub", "pub@example.com", "secret1")

	resp, err := ts.app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/users/%d", user.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got models.User
	decodeBody(t, resp, &got)
	assert.Equal(t, "Pub", got.Name)
	assert.Empty(t, got.Password)
}

func TestGetUserLegacyAvatarFallback(t *testing.T) {
	ts := newTestServer(t)

	// Accounts from before avatar handling carry no profile image at all.
	legacy := &models.User{Name: "Old", Email: "old@example.com", Password: "h"}
	require.NoError(t, ts.db.Create(legacy).Error)

	resp, err := ts.app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/users/%d", legacy.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got models.User
	decodeBody(t, resp, &got)
	assert.Equal(t, models.LegacyFallbackAvatarURL, got.ProfileImage)
}

func TestGetAuthors(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "L1", "l1@example.com", "secret1")
	ts.registerUser(t, "L2", "l2@example.com", "secret1")

	resp, err := ts.app.Test(authedReq("GET", "/api/users", nil, token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var users []models.User
	decodeBody(t, resp, &users)
	assert.Len(t, users, 2)
}

func TestChangeAvatar(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "Av", "av@example.com", "secret1")

	change := func(data []byte, filename, mime string) *models.User {
		body, contentType := multipartForm(t, nil, []filePart{{
			field: "avatar", filename: filename, contentType: mime, data: data,
		}})
		req := authedReq("POST", "/api/users/change-avatar", body, token)
		req.Header.Set("Content-Type", contentType)

		resp, err := ts.app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, readBody(t, resp))

		var got models.User
		decodeBody(t, resp, &got)
		return &got
	}

	first := change(testutil.TinyPNG(t, 24, 24), "a.png", "image/png")
	assert.True(t, strings.HasPrefix(first.ProfileImage, testutil.MemStoreBase+"avatars/"))

	second := change(testutil.TinyJPEG(t, 24, 24), "b.jpg", "image/jpeg")
	assert.NotEqual(t, first.ProfileImage, second.ProfileImage)
	assert.False(t, ts.store.Has(first.ProfileImage), "previous avatar object deleted")
}

func TestChangeAvatarNoFile(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "NF", "nf@example.com", "secret1")

	body, contentType := multipartForm(t, map[string]string{"noise": "x"}, nil)
	req := authedReq("POST", "/api/users/change-avatar", body, token)
	req.Header.Set("Content-Type", contentType)

	resp, err := ts.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "No image uploaded.")
}

func TestEditUser(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "Ed", "ed@example.com", "oldpass1")

	body, contentType := multipartForm(t, map[string]string{
		"name":               "Edited",
		"email":              "edited@example.com",
		"currentPassword":    "oldpass1",
		"newPassword":        "newpass1",
		"confirmNewPassword": "newpass1",
	}, nil)
	req := authedReq("PATCH", "/api/users/edit-user", body, token)
	req.Header.Set("Content-Type", contentType)

	resp, err := ts.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, readBody(t, resp))

	var got models.User
	decodeBody(t, resp, &got)
	assert.Equal(t, "Edited", got.Name)
	assert.Equal(t, "edited@example.com", got.Email)

	// The old credential is gone, the new one works.
	loginResp, err := ts.app.Test(jsonReq("POST", "/api/users/login", map[string]string{
		"email": "edited@example.com", "password": "newpass1",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, loginResp.StatusCode)

	oldResp, err := ts.app.Test(jsonReq("POST", "/api/users/login", map[string]string{
		"email": "edited@example.com", "password": "oldpass1",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, oldResp.StatusCode)
}

func TestEditUserWrongCurrentPassword(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "W", "w@example.com", "secret1")

	body, contentType := multipartForm(t, map[string]string{
		"name":               "W",
		"email":              "w@example.com",
		"currentPassword":    "wrong11",
		"newPassword":        "newpass1",
		"confirmNewPassword": "newpass1",
	}, nil)
	req := authedReq("PATCH", "/api/users/edit-user", body, token)
	req.Header.Set("Content-Type", contentType)

	resp, err := ts.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Invalid current password.")
}

func TestEditUserEmailConflict(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "Keep", "keep@example.com", "secret1")
	_, token := ts.registerUser(t, "Move", "move@example.com", "secret1")

	body, contentType := multipartForm(t, map[string]string{
		"name":               "Move",
		"email":              "KEEP@example.com",
		"currentPassword":    "secret1",
		"newPassword":        "secret2",
		"confirmNewPassword": "secret2",
	}, nil)
	req := authedReq("PATCH", "/api/users/edit-user", body, token)
	req.Header.Set("Content-Type", contentType)

	resp, err := ts.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

// withProfileCache backs the profile cache with miniredis for one test.
func withProfileCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	return mr
}

func TestEditUserSucceedsWithWarmProfileCache(t *testing.T) {
	ts := newTestServer(t)
	withProfileCache(t)

	user, token := ts.registerUser(t, "Warm", "warm@example.com", "oldpass1")

	// Warm the cache, then read through it once more.
	for i := 0; i < 2; i++ {
		resp, err := ts.app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/users/%d", user.ID), nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	body, contentType := multipartForm(t, map[string]string{
		"name":               "Warm",
		"email":              "warm@example.com",
		"currentPassword":    "oldpass1",
		"newPassword":        "newpass1",
		"confirmNewPassword": "newpass1",
	}, nil)
	req := authedReq("PATCH", "/api/users/edit-user", body, token)
	req.Header.Set("Content-Type", contentType)

	resp, err := ts.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, readBody(t, resp))

	loginResp, err := ts.app.Test(jsonReq("POST", "/api/users/login", map[string]string{
		"email": "warm@example.com", "password": "newpass1",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, loginResp.StatusCode)
}

func TestChangeAvatarKeepsStoredPassword(t *testing.T) {
	ts := newTestServer(t)
	withProfileCache(t)

	user, token := ts.registerUser(t, "Keep", "keep@example.com", "secret1")

	// Populate the cache before mutating the account.
	resp, err := ts.app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/users/%d", user.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, contentType := multipartForm(t, nil, []filePart{{
		field: "avatar", filename: "a.png", contentType: "image/png",
		data: testutil.TinyPNG(t, 4, 4),
	}})
	req := authedReq("POST", "/api/users/change-avatar", body, token)
	req.Header.Set("Content-Type", contentType)

	avatarResp, err := ts.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, avatarResp.StatusCode, readBody(t, avatarResp))

	var stored models.User
	require.NoError(t, ts.db.First(&stored, user.ID).Error)
	require.NotEmpty(t, stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret1")))
}

func TestProfileCacheNeverHoldsPasswordHash(t *testing.T) {
	ts := newTestServer(t)
	mr := withProfileCache(t)

	user, _ := ts.registerUser(t, "Hash", "hash@example.com", "secret1")

	resp, err := ts.app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/users/%d", user.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cached, err := mr.Get(cache.UserKey(user.ID))
	require.NoError(t, err)
	assert.NotContains(t, cached, "$2a$")
	assert.Contains(t, cached, "hash@example.com")
}
