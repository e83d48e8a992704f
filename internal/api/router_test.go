package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/blog-backend/internal/auth"
	"github.com/baharkarakas/blog-backend/internal/config"
	"github.com/baharkarakas/blog-backend/internal/metrics"
	"github.com/baharkarakas/blog-backend/internal/repository/memory"
	"github.com/baharkarakas/blog-backend/internal/services"
	"github.com/baharkarakas/blog-backend/internal/worker"
	"github.com/baharkarakas/blog-backend/pkg/blogclient"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{Env: "test", RateRPS: 0, AllowedOrigins: []string{"*"}}

	store := memory.NewStore()
	wp := worker.NewPool(2)
	t.Cleanup(wp.Stop)
	tm := auth.NewTokenManager("test-secret", "blog-backend", time.Hour)

	h := NewRouter(RouterDeps{
		Cfg:     cfg,
		AuthSvc: services.NewAuthService(store.Users(), auth.NewHasher(4), tm, wp, false),
		PostSvc: services.NewPostService(store.Posts(), nil, false),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var apiErr *blogclient.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	return apiErr.Status
}

func TestEndToEnd_BlogFlow(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	alice := blogclient.New(srv.URL)
	bob := blogclient.New(srv.URL)

	require.NoError(t, alice.Register(ctx, "alice", "alice@x.com", "pw123456"))
	res, err := alice.Login(ctx, "alice@x.com", "pw123456")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Bearer", res.TokenType)

	post, err := alice.CreatePost(ctx, "T", "C")
	require.NoError(t, err)
	require.NotEmpty(t, post.ID)
	aliceID := post.AuthorID

	all, err := alice.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Author)
	assert.Equal(t, "alice", all[0].Author.Username)
	assert.Equal(t, "alice@x.com", all[0].Author.Email)
	assert.Equal(t, aliceID, all[0].Author.ID)

	require.NoError(t, bob.Register(ctx, "bob", "bob@x.com", "pw654321"))
	_, err = bob.Login(ctx, "bob@x.com", "pw654321")
	require.NoError(t, err)

	title := "hijacked"
	_, err = bob.UpdatePost(ctx, post.ID, blogclient.PostUpdate{Title: &title})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	assert.Equal(t, http.StatusForbidden, statusOf(t, bob.DeletePost(ctx, post.ID)))

	mine, err := bob.MyPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, mine)

	title = "T2"
	updated, err := alice.UpdatePost(ctx, post.ID, blogclient.PostUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, "C", updated.Content)

	pub, err := bob.GetPublicPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "T2", pub.Title)

	require.NoError(t, alice.DeletePost(ctx, post.ID))
	_, err = alice.GetPost(ctx, post.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Equal(t, http.StatusNotFound, statusOf(t, alice.DeletePost(ctx, post.ID)))

	alice.Logout()
	_, err = alice.MyPosts(ctx)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestAuthRoutes(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	c := blogclient.New(srv.URL)

	require.NoError(t, c.Register(ctx, "alice", "alice@x.com", "pw123456"))

	err := c.Register(ctx, "alice2", "alice@x.com", "pw123456")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = c.Login(ctx, "nobody@x.com", "pw123456")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	_, err = c.Login(ctx, "alice@x.com", "wrong-pass")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Empty(t, c.Credentials().Get())
}

func TestPostRoutes_RawRequests(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	c := blogclient.New(srv.URL)
	require.NoError(t, c.Register(ctx, "alice", "alice@x.com", "pw123456"))
	res, err := c.Login(ctx, "alice@x.com", "pw123456")
	require.NoError(t, err)

	send := func(method, path, auth, body string) (int, string) {
		req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		auth       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"create without token", http.MethodPost, "/api/posts", "", `{"title":"T"}`, 401, "No token, authorization denied"},
		{"create with bad token", http.MethodPost, "/api/posts", "Bearer nope", `{"title":"T"}`, 400, "Invalid token"},
		{"create with raw token", http.MethodPost, "/api/posts", res.Token, `{"title":"T","content":"C"}`, 201, `"title":"T"`},
		{"create ignores author field", http.MethodPost, "/api/posts", res.Token, `{"title":"T","author":"someone-else","author_id":"someone-else"}`, 201, `"title":"T"`},
		{"create malformed json", http.MethodPost, "/api/posts", res.Token, `{"title":`, 400, "malformed JSON body"},
		{"create blank title", http.MethodPost, "/api/posts", res.Token, `{"title":"  "}`, 400, "title: required"},
		{"get invalid id", http.MethodGet, "/api/posts/not-a-uuid", res.Token, "", 404, "Post not found"},
		{"public get missing", http.MethodGet, "/api/posts/particular/" + uuid.NewString(), "", "", 404, "Post not found"},
		{"delete missing", http.MethodDelete, "/api/posts/" + uuid.NewString(), res.Token, "", 404, "Post not found"},
		{"list is public", http.MethodGet, "/api/posts", "", "", 200, `"username":"alice"`},
		{"health", http.MethodGet, "/health", "", "", 200, "ok"},
		{"metrics", http.MethodGet, "/metrics", "", "", 200, ""},
		{"register malformed", http.MethodPost, "/api/auth/register", "", `nope`, 400, "malformed JSON body"},
		{"register missing fields", http.MethodPost, "/api/auth/register", "", `{}`, 400, "username: required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := send(tt.method, tt.path, tt.auth, tt.body)
			assert.Equal(t, tt.wantStatus, status, body)
			assert.Contains(t, body, tt.wantBody)
		})
	}

	mine, err := c.MyPosts(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, p := range mine {
		assert.NotEqual(t, "someone-else", p.AuthorID)
	}
}

func TestCreatePost_AuthorComesFromToken(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	alice := blogclient.New(srv.URL)
	bob := blogclient.New(srv.URL)

	require.NoError(t, alice.Register(ctx, "alice", "alice@x.com", "pw123456"))
	aliceLogin, err := alice.Login(ctx, "alice@x.com", "pw123456")
	require.NoError(t, err)
	own, err := alice.CreatePost(ctx, "mine", "")
	require.NoError(t, err)
	aliceID := own.AuthorID

	require.NoError(t, bob.Register(ctx, "bob", "bob@x.com", "pw654321"))
	_, err = bob.Login(ctx, "bob@x.com", "pw654321")
	require.NoError(t, err)
	bobPost, err := bob.CreatePost(ctx, "bob's", "")
	require.NoError(t, err)
	bobID := bobPost.AuthorID
	require.NotEqual(t, aliceID, bobID)

	body := `{"title":"T","content":"C","author":"` + bobID + `","author_id":"` + bobID + `"}`
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/posts", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+aliceLogin.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created blogclient.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, aliceID, created.AuthorID)

	bobsPosts, err := bob.MyPosts(ctx)
	require.NoError(t, err)
	require.Len(t, bobsPosts, 1)
	assert.Equal(t, bobPost.ID, bobsPosts[0].ID)
}

func TestBaseMiddlewares_CountsPanics(t *testing.T) {
	r := chi.NewRouter()
	r.Use(baseMiddlewares(slog.New(slog.NewTextHandler(io.Discard, nil)))...)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	counter := metrics.RequestsTotal.WithLabelValues("/boom", http.MethodGet, "500")
	before := counterValue(t, counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, before+1, counterValue(t, counter))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
