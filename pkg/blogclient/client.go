// Package blogclient is a Go client for the blog REST API.
package blogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	Author    *Author   `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostUpdate sends only non-nil fields.
type PostUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type LoginResult struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("blog api: %d %s: %s", e.Status, e.Code, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialStore
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithCredentials(cs CredentialStore) Option { return func(c *Client) { c.creds = cs } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		creds:   &MemoryCredentials{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Credentials() CredentialStore { return c.creds }

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if tok := c.creds.Get(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Message
			apiErr.Code = payload.Code
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/auth/register", body, nil, false)
}

// Login stores the returned token in the credential store.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &res, false); err != nil {
		return LoginResult{}, err
	}
	c.creds.Set(res.Token)
	return res, nil
}

func (c *Client) Logout() { c.creds.Clear() }

func (c *Client) CreatePost(ctx context.Context, title, content string) (Post, error) {
	var p Post
	body := map[string]string{"title": title, "content": content}
	err := c.do(ctx, http.MethodPost, "/api/posts", body, &p, true)
	return p, err
}

func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	var out []Post
	err := c.do(ctx, http.MethodGet, "/api/posts", nil, &out, false)
	return out, err
}

func (c *Client) MyPosts(ctx context.Context) ([]Post, error) {
	var out []Post
	err := c.do(ctx, http.MethodGet, "/api/posts/my-blogs", nil, &out, true)
	return out, err
}

func (c *Client) GetPost(ctx context.Context, id string) (Post, error) {
	var p Post
	err := c.do(ctx, http.MethodGet, "/api/posts/"+id, nil, &p, true)
	return p, err
}

func (c *Client) GetPublicPost(ctx context.Context, id string) (Post, error) {
	var p Post
	err := c.do(ctx, http.MethodGet, "/api/posts/particular/"+id, nil, &p, false)
	return p, err
}

func (c *Client) UpdatePost(ctx context.Context, id string, u PostUpdate) (Post, error) {
	var p Post
	err := c.do(ctx, http.MethodPut, "/api/posts/"+id, u, &p, true)
	return p, err
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+id, nil, nil, true)
}
