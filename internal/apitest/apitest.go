// Package apitest runs the whole HTTP API in-process for integration tests.
//
// Each test builds its own Context: a fresh in-memory SQLite store, the
// fully wired server behind an httptest.Server, and a recording Client.
// The store is purged before the Context is handed out, so every test
// starts from an empty database and creates the users and programmers it
// needs through the fixture helpers.
//
// When a test fails, the last request and its response are printed to the
// test log.
package apitest

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakif/programmer-battle/internal/apiclient"
	"github.com/sakif/programmer-battle/internal/auth"
	"github.com/sakif/programmer-battle/internal/config"
	"github.com/sakif/programmer-battle/internal/model"
	"github.com/sakif/programmer-battle/internal/repository"
	sqliteRepo "github.com/sakif/programmer-battle/internal/repository/sqlite"
	"github.com/sakif/programmer-battle/internal/server"
	"github.com/sakif/programmer-battle/internal/service"
)

// TestJWTSecret signs tokens inside a Context.
const TestJWTSecret = "apitest-secret-not-for-production"

// DefaultPassword is used by CreateUser.
const DefaultPassword = "foo"

// Context is one running API plus the handles a test needs to drive it.
type Context struct {
	t      testing.TB
	Server *httptest.Server
	Store  repository.Store
	Client *apiclient.Client

	users    *service.AuthService
	asserter *ResponseAsserter
}

// New starts an API with the default test configuration.
func New(t testing.TB) *Context {
	return NewWithConfig(t, nil)
}

// NewWithConfig starts an API, letting configure adjust the configuration
// before the server is built.
func NewWithConfig(t testing.TB, configure func(*config.Config)) *Context {
	t.Helper()

	cfg := &config.Config{
		DBPath:          sqliteRepo.MemoryPath,
		JWTSecret:       TestJWTSecret,
		CreatorUsername: "weaverryan",
		CreatorPassword: DefaultPassword,
		LogLevel:        "error",
		BcryptCost:      auth.TestCost,
	}
	if configure != nil {
		configure(cfg)
	}

	store, err := sqliteRepo.New(sqliteRepo.MemoryPath)
	require.NoError(t, err, "opening test database")

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	srv, err := server.NewWithStore(cfg, logger, store)
	if err != nil {
		store.Close()
		require.NoError(t, err, "building server")
	}

	ts := httptest.NewServer(srv.Handler())

	c := &Context{
		t:      t,
		Server: ts,
		Store:  store,
		Client: apiclient.NewClient(ts.URL, ts.Client()),
		users:  service.NewAuthService(store, nil, auth.NewPasswordService(auth.TestCost), logger),
	}
	c.asserter = NewResponseAsserter(t)

	t.Cleanup(func() {
		if t.Failed() {
			var report strings.Builder
			apiclient.PrintFailure(&report, c.Client)
			if report.Len() > 0 {
				t.Log(report.String())
			}
		}
		ts.Close()
		store.Close()
	})

	require.NoError(t, store.Purge(context.Background()), "purging test database")
	return c
}

// Asserter returns the response asserter bound to this test.
func (c *Context) Asserter() *ResponseAsserter {
	return c.asserter
}

// Request sends a request and fails the test on a transport error.
func (c *Context) Request(method, path string, body any, header http.Header) *apiclient.Response {
	c.t.Helper()
	resp, err := c.Client.Do(method, path, body, header)
	require.NoError(c.t, err)
	return resp
}

// Get sends a GET request.
func (c *Context) Get(path string) *apiclient.Response {
	c.t.Helper()
	return c.Request(http.MethodGet, path, nil, nil)
}

// Post sends body as JSON. A string body is sent verbatim.
func (c *Context) Post(path string, body any) *apiclient.Response {
	c.t.Helper()
	return c.Request(http.MethodPost, path, body, nil)
}

// Put sends body as JSON.
func (c *Context) Put(path string, body any) *apiclient.Response {
	c.t.Helper()
	return c.Request(http.MethodPut, path, body, nil)
}

// Patch sends body as JSON.
func (c *Context) Patch(path string, body any) *apiclient.Response {
	c.t.Helper()
	return c.Request(http.MethodPatch, path, body, nil)
}

// Delete sends a DELETE request.
func (c *Context) Delete(path string) *apiclient.Response {
	c.t.Helper()
	return c.Request(http.MethodDelete, path, nil, nil)
}

// CreateUser stores a user with DefaultPassword.
func (c *Context) CreateUser(username string) *model.User {
	c.t.Helper()
	return c.CreateUserWithPassword(username, DefaultPassword)
}

// CreateUserWithPassword stores a user whose email is <username>@foo.com.
func (c *Context) CreateUserWithPassword(username, password string) *model.User {
	c.t.Helper()
	user, err := c.users.CreateUser(context.Background(), username, password)
	require.NoError(c.t, err, "creating user %q", username)
	return user
}

// ProgrammerData describes a programmer fixture. Nil PowerLevel picks a
// random level from 0 to 10; nil Owner picks the first user created.
type ProgrammerData struct {
	Nickname     string
	AvatarNumber int
	TagLine      *string
	PowerLevel   *int
	Owner        *model.User
}

// CreateProgrammer stores a programmer directly, bypassing the API.
func (c *Context) CreateProgrammer(data ProgrammerData) *model.Programmer {
	c.t.Helper()
	ctx := context.Background()

	owner := data.Owner
	if owner == nil {
		var err error
		owner, err = c.Store.FindAnyUser(ctx)
		require.NoError(c.t, err, "programmer fixtures need a user to own them")
	}

	powerLevel := rand.IntN(11)
	if data.PowerLevel != nil {
		powerLevel = *data.PowerLevel
	}

	p := &model.Programmer{
		Nickname:     data.Nickname,
		AvatarNumber: data.AvatarNumber,
		TagLine:      data.TagLine,
		PowerLevel:   powerLevel,
		UserID:       owner.ID,
	}
	require.NoError(c.t, c.Store.Create(ctx, p), "creating programmer %q", data.Nickname)
	return p
}

// Token logs in through POST /api/tokens and returns the bearer token.
func (c *Context) Token(username, password string) string {
	c.t.Helper()
	resp := c.Post("/api/tokens", map[string]string{"username": username, "password": password})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, "issuing token for %q", username)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, resp.JSON(&body))
	return body.Token
}

// Bearer returns an Authorization header carrying token.
func Bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}
