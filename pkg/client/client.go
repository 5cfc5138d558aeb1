// Package client talks to the public API and holds the state of the quote wizard
// and the contact form used by the marketing site.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sphinx_backend/internal/model"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client calls the REST API rooted at baseURL (for example http://localhost:4000/api).
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends the bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContactRequest is the public contact form payload.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// QuoteRequest is the public quote payload.
type QuoteRequest struct {
	Name              string                      `json:"name"`
	Email             string                      `json:"email"`
	Phone             string                      `json:"phone"`
	Address           model.Address               `json:"address"`
	PropertyType      string                      `json:"propertyType,omitempty"`
	PropertySize      string                      `json:"propertySize,omitempty"`
	ServicesRequested []model.ServiceRequestInput `json:"servicesRequested"`
	Budget            string                      `json:"budget,omitempty"`
	Timeframe         string                      `json:"timeframe,omitempty"`
	Description       string                      `json:"description,omitempty"`
	HearAboutUs       string                      `json:"hearAboutUs,omitempty"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) SubmitContact(ctx context.Context, req ContactRequest) (*model.Contact, error) {
	var out model.Contact
	if _, err := c.do(ctx, http.MethodPost, "/contact", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitQuote(ctx context.Context, req QuoteRequest) (*model.Quote, error) {
	var out model.Quote
	if _, err := c.do(ctx, http.MethodPost, "/quote", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListServices returns the active services. An empty category means all of them.
func (c *Client) ListServices(ctx context.Context, category string, featured bool) ([]model.Service, error) {
	var out []model.Service
	if _, err := c.do(ctx, http.MethodGet, "/services"+filterQuery(category, featured), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetService(ctx context.Context, slug string) (*model.Service, error) {
	var out model.Service
	if _, err := c.do(ctx, http.MethodGet, "/services/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPortfolio(ctx context.Context, category string, featured bool) ([]model.Portfolio, error) {
	var out []model.Portfolio
	if _, err := c.do(ctx, http.MethodGet, "/portfolio"+filterQuery(category, featured), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPortfolio(ctx context.Context, slug string) (*model.Portfolio, error) {
	var out model.Portfolio
	if _, err := c.do(ctx, http.MethodGet, "/portfolio/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token and uses it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	env, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &user)
	if err != nil {
		return nil, err
	}
	c.token = env.Token
	return &user, nil
}

// Token returns the bearer token in use.
func (c *Client) Token() string {
	return c.token
}

func filterQuery(category string, featured bool) string {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if featured {
		q.Set("featured", "true")
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("no response from server: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = "Server responded with an error"
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return &env, nil
}
