package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"savornshare/internal/config"
	"savornshare/internal/database"
	"savornshare/internal/models"
	"savornshare/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int

type testServer struct {
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	store *testutil.MemStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	testDBCounter++
	dsn := fmt.Sprintf("file:servertest%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Port:         "0",
		Env:          "test",
		JWTSecret:    "test_secret",
		MediaBackend: "local",
	}

	store := testutil.NewMemStore()
	srv, err := NewServerWithDeps(cfg, db, nil, store)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)

	return &testServer{srv: srv, app: app, db: db, store: store}
}

// registerUser creates an account through the API and returns the user and
// its session token.
func (ts *testServer) registerUser(t *testing.T, name, email, password string) (*models.User, string) {
	t.Helper()

	body, contentType := multipartForm(t, map[string]string{
		"name":      name,
		"email":     email,
		"password":  password,
		"password2": password,
	}, nil)

	req := httptest.NewRequest("POST", "/api/users/register", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := ts.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, readBody(t, resp))

	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeBody(t, resp, &out)
	return &out.User, out.Token
}

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// multipartForm builds a multipart body from text fields and optional files.
func multipartForm(t *testing.T, fields map[string]string, files []filePart) (*bytes.Buffer, string) {
	t.Helper()

	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func authedReq(method, target string, body io.Reader, token string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func jsonReq(method, target string, v any) *http.Request {
	data, _ := json.Marshal(v)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// readBody drains the response body and puts it back, so it can be used in
// assertion messages without starving a later decodeBody.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return string(data)
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}
