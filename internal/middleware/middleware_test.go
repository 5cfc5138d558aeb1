package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sphinx_backend/internal/model"
	"sphinx_backend/pkg/apperrors"
	"sphinx_backend/pkg/logger"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type stubAuth map[string]*model.User

func (s stubAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotAuthorized
}

type memoryStore struct {
	saved   []string
	deleted []string
	failOn  int
}

func (m *memoryStore) Save(_ context.Context, name, _ string, body io.Reader) (string, error) {
	if m.failOn > 0 && len(m.saved)+1 == m.failOn {
		return "", errors.New("disk full")
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	url := "/uploads/" + name
	m.saved = append(m.saved, url)
	return url, nil
}

func (m *memoryStore) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logger.Component(logger.Discard(), "http"), false),
	})
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestProtectReadsHeaderThenCookie(t *testing.T) {
	admin := &model.User{Name: "Root", Role: model.RoleAdmin}
	admin.ID = 1
	editor := &model.User{Name: "Ed", Role: model.RoleUser}
	editor.ID = 2

	app := newApp()
	auth := stubAuth{"admin-token": admin, "user-token": editor}
	app.Get("/me", Protect(auth), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUser(c).Name)
	})
	app.Get("/admin", Protect(auth), RestrictTo(model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Root", string(body))

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "user-token"})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "Ed", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not authorized to access this route", decode(t, resp)["message"])

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestStatusMapping(t *testing.T) {
	validation := &apperrors.ValidationError{}
	validation.Add("name", "Please add a name")
	validation.Add("email", "Please add a valid email")

	tests := []struct {
		err     error
		code    int
		message string
	}{
		{validation, 400, "Please add a name, Please add a valid email"},
		{&apperrors.DuplicateKeyError{Field: "slug"}, 400, "Duplicate field value entered for slug. Please use another value."},
		{&apperrors.CastError{Path: "id", Value: "abc"}, 400, "Invalid id: abc"},
		{fmt.Errorf("get quote: %w", apperrors.NotFound("Quote", 7)), 404, "Quote not found with id 7"},
		{apperrors.ErrNotAuthorized, 401, "Not authorized to access this route"},
		{apperrors.ErrForbidden, 403, "You do not have permission to perform this action"},
		{&apperrors.UploadError{Message: "Only image files are allowed!"}, 400, "Only image files are allowed!"},
		{fiber.NewError(fiber.StatusRequestEntityTooLarge, "Request Entity Too Large"), 413, "Request Entity Too Large"},
		{errors.New("connection reset"), 500, "Server Error"},
	}
	for _, tt := range tests {
		code, message := Status(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.message, message)
	}
}

func TestErrorHandlerBody(t *testing.T) {
	for _, showStack := range []bool{true, false} {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.Component(logger.Discard(), "http"), showStack)})
		app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db exploded") })
		app.Use(NotFound)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		body := decode(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Server Error", body["message"])
		_, hasStack := body["stack"]
		assert.Equal(t, showStack, hasStack)

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Equal(t, "API endpoint not found", decode(t, resp)["message"])
	}
}

type part struct {
	field, name string
	content     []byte
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Carla"))
	for _, p := range parts {
		fw, err := w.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func uploadApp(store *memoryStore, handler fiber.Handler) *fiber.App {
	app := newApp()
	uploader := NewUploader(store, 0, logger.Component(logger.Discard(), "upload"))
	app.Post("/upload", uploader.Fields(UploadField{Name: "attachments", MaxCount: 2}), handler)
	return app
}

func TestUploadStoresFilesInOrder(t *testing.T) {
	store := &memoryStore{}
	var got []string
	app := uploadApp(store, func(c *fiber.Ctx) error {
		got = Uploaded(c, "attachments")
		return c.SendStatus(fiber.StatusCreated)
	})

	resp, err := app.Test(multipartRequest(t,
		part{"attachments", "Front Yard.PNG", pngBytes},
		part{"attachments", "back.png", pngBytes},
	), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Len(t, got, 2)
	assert.Equal(t, store.saved, got)
	assert.True(t, strings.HasPrefix(got[0], "/uploads/attachments-"))
	assert.True(t, strings.HasSuffix(got[0], ".png"))
	assert.Empty(t, store.deleted)
}

func TestUploadRejections(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) }

	tests := []struct {
		name    string
		parts   []part
		message string
	}{
		{"not an image", []part{{"attachments", "notes.png", []byte("plain text pretending")}}, "Only image files are allowed!"},
		{"too many", []part{{"attachments", "a.png", pngBytes}, {"attachments", "b.png", pngBytes}, {"attachments", "c.png", pngBytes}}, "Too many files. Maximum is 2"},
		{"unexpected field", []part{{"avatar", "a.png", pngBytes}}, "Unexpected field: avatar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			resp, err := uploadApp(store, ok).Test(multipartRequest(t, tt.parts...), -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.message, decode(t, resp)["message"])
			assert.Empty(t, store.saved, "nothing is stored when any file is rejected")
		})
	}
}

func TestUploadCleansUpOnFailure(t *testing.T) {
	store := &memoryStore{}
	app := uploadApp(store, func(c *fiber.Ctx) error {
		return apperrors.NewValidation("email", "Please add an email")
	})
	resp, err := app.Test(multipartRequest(t, part{"attachments", "a.png", pngBytes}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, store.saved, store.deleted)

	store = &memoryStore{failOn: 2}
	app = uploadApp(store, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })
	resp, err = app.Test(multipartRequest(t, part{"attachments", "a.png", pngBytes}, part{"attachments", "b.png", pngBytes}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, store.saved, store.deleted)
}

func TestUploadSkipsJSON(t *testing.T) {
	store := &memoryStore{}
	var got []string
	app := uploadApp(store, func(c *fiber.Ctx) error {
		got = Uploaded(c, "attachments")
		return c.SendStatus(fiber.StatusCreated)
	})
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"name":"Carla"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Nil(t, got)
}
