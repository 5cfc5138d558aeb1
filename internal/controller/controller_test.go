package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sphinx_backend/internal/middleware"
	"sphinx_backend/internal/model"
	"sphinx_backend/internal/service"
	"sphinx_backend/pkg/database"
	"sphinx_backend/pkg/logger"
	"sphinx_backend/pkg/storage"
	"sphinx_backend/pkg/utils/jwt"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type countingNotifier struct {
	service.NopNotifier
	mu       sync.Mutex
	statuses []string
	sent     int
}

func (n *countingNotifier) SendContactNotification(context.Context, *model.Contact) error {
	return n.count()
}

func (n *countingNotifier) SendContactConfirmation(context.Context, *model.Contact) error {
	return n.count()
}

func (n *countingNotifier) SendQuoteStatusUpdate(_ context.Context, _ *model.Quote, status string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, status)
	return nil
}

func (n *countingNotifier) count() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent++
	return nil
}

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	notifier *countingNotifier
	admin    string
	user     string
}

// newTestEnv wires the full route table against an in-memory database.
// Controllers hold package-level state, so tests in this package do not run in parallel.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Discard()
	db, err := database.Open("sqlite://:memory:", log)
	require.NoError(t, err)
	require.NoError(t, database.MigrateDatabase(db, log, model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	jwt.Configure("controller-test-secret", time.Hour)
	entry := logger.Component(log, "test")
	notifier := &countingNotifier{}
	auth := service.NewAuthService(db, entry)
	InitAuthController(auth, false)
	InitContactController(service.NewContactService(db, notifier, entry))
	InitQuoteController(service.NewQuoteService(db, notifier, entry))
	InitServiceController(service.NewCatalogService(db, entry))
	InitPortfolioController(service.NewPortfolioService(db, entry))
	InitBlogController(service.NewBlogService(db, entry))
	InitStatsController(service.NewStatsService(db), db)

	store, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(entry, false)})
	SetupRoutes(app, auth, middleware.NewUploader(store, 0, entry))
	app.Use(middleware.NotFound)

	return &testEnv{
		app:      app,
		db:       db,
		notifier: notifier,
		admin:    tokenFor(t, db, "Admin", "admin@sphinxlandscapes.com", model.RoleAdmin),
		user:     tokenFor(t, db, "Visitor", "visitor@example.com", model.RoleUser),
	}
}

func tokenFor(t *testing.T, db *gorm.DB, name, email, role string) string {
	t.Helper()
	hashed, err := service.HashPassword("secret123")
	require.NoError(t, err)
	u := &model.User{Name: name, Email: email, Password: hashed, Role: role}
	require.NoError(t, db.Create(u).Error)
	token, err := jwt.GenerateToken(u.ID, u.Email, u.Role)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Token      string             `json:"token"`
	Count      int                `json:"count"`
	Pagination service.Pagination `json:"pagination"`
	Data       json.RawMessage    `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "controller-test")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestContactSubmissionScenario(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/contact", "", fiber.Map{
		"name":    "Ann",
		"email":   "ann@x.com",
		"message": "Please call me about a quote for my yard.",
		"status":  "completed",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.True(t, body.Success)

	var contact model.Contact
	require.NoError(t, json.Unmarshal(body.Data, &contact))
	assert.Equal(t, model.ContactStatusNew, contact.Status)
	assert.Equal(t, "General Inquiry", contact.Subject)
	assert.Equal(t, "controller-test", contact.UserAgent)
	assert.NotEmpty(t, contact.IPAddress)
	assert.Equal(t, 2, env.notifier.sent)
}

func TestContactSubmissionValidation(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/contact", "", fiber.Map{"email": "not-an-email"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Contains(t, body.Message, "Name is required")
	assert.Contains(t, body.Message, "Please provide a valid email address")
	assert.Contains(t, body.Message, "Message is required")
	assert.Zero(t, env.notifier.sent)
}

func TestContactAdminListPagination(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		c := &model.Contact{
			Name:    fmt.Sprintf("Client %02d", i),
			Email:   fmt.Sprintf("client%02d@example.com", i),
			Message: "Looking for a new garden design.",
			Subject: "Design",
			Status:  model.ContactStatusCompleted,
		}
		c.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, env.db.Create(c).Error)
	}

	resp, _ := env.do(t, http.MethodGet, "/api/contact", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/api/contact", env.user, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/contact?status=completed&page=2&limit=5", env.admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, service.Pagination{Page: 2, Limit: 5, Total: 12, Pages: 3}, body.Pagination)
	assert.Equal(t, 5, body.Count)

	var contacts []model.Contact
	require.NoError(t, json.Unmarshal(body.Data, &contacts))
	require.Len(t, contacts, 5)
	assert.Equal(t, "Client 06", contacts[0].Name)
	assert.Equal(t, "Client 02", contacts[4].Name)
}

func TestContactAdminErrors(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/contact/abc", env.admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid id: abc", body.Message)

	resp, body = env.do(t, http.MethodDelete, "/api/contact/999", env.admin, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Contact not found with id 999", body.Message)

	resp, body = env.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "API endpoint not found", body.Message)
}

func quotePayload() fiber.Map {
	return fiber.Map{
		"name":  "Carla Diaz",
		"email": "carla@example.com",
		"phone": "(555) 987-6543",
		"address": fiber.Map{
			"street": "12 Elm St", "city": "Springfield", "state": "IL", "zipCode": "62704",
		},
		"servicesRequested": []fiber.Map{{"service": 1, "details": "Flagstone patio"}},
		"timeframe":         "within-3-months",
		"description":       "Backyard patio with a small water feature.",
		"status":            "accepted",
	}
}

func TestQuoteMultipartSubmission(t *testing.T) {
	env := newTestEnv(t)

	data, err := json.Marshal(quotePayload())
	require.NoError(t, err)
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("data", string(data)))
	fw, err := w.CreateFormFile(AttachmentsField, "yard.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/quote", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, body := env.send(t, req)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)

	var quote model.Quote
	require.NoError(t, json.Unmarshal(body.Data, &quote))
	assert.Equal(t, model.QuoteStatusNew, quote.Status)
	require.Len(t, quote.Attachments, 1)
	assert.True(t, strings.HasPrefix(quote.Attachments[0], "/uploads/attachments-"))
	require.Len(t, quote.ServicesRequested, 1)
	assert.Equal(t, "Flagstone patio", quote.ServicesRequested[0].Details)
}

func TestQuoteStatusUpdateSendsOneEmail(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/quote", "", quotePayload())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)
	var quote model.Quote
	require.NoError(t, json.Unmarshal(body.Data, &quote))
	path := fmt.Sprintf("/api/quote/%d", quote.ID)

	resp, body = env.do(t, http.MethodPut, path, env.admin, fiber.Map{"status": model.QuoteStatusSiteVisitScheduled})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body.Message)
	resp, _ = env.do(t, http.MethodPut, path, env.admin, fiber.Map{"status": model.QuoteStatusSiteVisitScheduled, "notes": "bring samples"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{model.QuoteStatusSiteVisitScheduled}, env.notifier.statuses)

	resp, body = env.do(t, http.MethodPut, path, env.admin, fiber.Map{"status": "lost"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Len(t, env.notifier.statuses, 1)

	resp, _ = env.do(t, http.MethodDelete, path, env.admin, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, path, env.admin, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestServiceCatalogRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/services", env.admin, fiber.Map{
		"name":        "Zen Garden & Patio!",
		"description": "Raked gravel, stone and calm.",
		"category":    "design",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)
	var created model.Service
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.Equal(t, "zen-garden-patio", created.Slug)

	resp, body = env.do(t, http.MethodPost, "/api/services", env.admin, fiber.Map{
		"name": "Zen Garden & Patio!", "description": "again", "category": "design",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Message, "Duplicate field value entered")

	resp, body = env.do(t, http.MethodGet, "/api/services", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, body.Count)

	resp, body = env.do(t, http.MethodGet, "/api/services/categories/all", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["design"]`, string(body.Data))

	resp, body = env.do(t, http.MethodGet, "/api/services/zen-garden-patio", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/services/%d", created.ID), env.user, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp, body = env.do(t, http.MethodDelete, fmt.Sprintf("/api/services/%d", created.ID), env.admin, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{}`, string(body.Data))
}

func TestBlogDraftsStayPrivate(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/blog", env.admin, fiber.Map{
		"title":   "Fall Cleanup Checklist",
		"content": "Leaves, beds and tools.",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)
	var post model.Blog
	require.NoError(t, json.Unmarshal(body.Data, &post))
	assert.Equal(t, model.BlogStatusDraft, post.Status)
	require.NotNil(t, post.Author)
	assert.Equal(t, "Admin", post.Author.Name)

	resp, _ = env.do(t, http.MethodGet, "/api/blog/fall-cleanup-checklist", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/blog", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, body.Pagination.Total)

	resp, body = env.do(t, http.MethodGet, "/api/blog/admin/all", env.admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), body.Pagination.Total)

	resp, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/blog/%d", post.ID), env.admin, fiber.Map{"status": "published"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/api/blog/fall-cleanup-checklist", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "ADMIN@sphinxlandscapes.com", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body.Message)
	require.NotEmpty(t, body.Token)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.TokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: cookie.Value})
	resp, body = env.send(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var me model.User
	require.NoError(t, json.Unmarshal(body.Data, &me))
	assert.Equal(t, model.RoleAdmin, me.Role)
	assert.NotContains(t, string(body.Data), "password")

	resp, body = env.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "admin@sphinxlandscapes.com", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body.Message)

	resp, _ = env.do(t, http.MethodGet, "/api/auth/logout", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHealthAndDashboard(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/dashboard/stats", env.admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var stats service.DashboardStats
	require.NoError(t, json.Unmarshal(body.Data, &stats))
	assert.Equal(t, int64(0), stats.Contacts[model.ContactStatusNew])
}
