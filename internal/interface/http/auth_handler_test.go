package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oktaviandi/auth-portal/internal/application"
	"github.com/oktaviandi/auth-portal/internal/domain/entity"
	repo "github.com/oktaviandi/auth-portal/internal/domain/repository"
	handlers "github.com/oktaviandi/auth-portal/internal/interface/http"
	"github.com/oktaviandi/auth-portal/internal/interface/middleware"
	"github.com/oktaviandi/auth-portal/internal/oauth"
	"github.com/oktaviandi/auth-portal/internal/router/modules"
	"github.com/oktaviandi/auth-portal/internal/session"
	"github.com/oktaviandi/auth-portal/pkg/response"
	"github.com/oktaviandi/auth-portal/pkg/validation"
)

// ------------------------------------------------------------------ fakes

type fakeUserRepo struct {
	byID    map[string]*entity.User
	byEmail map[string]*entity.User
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*entity.User{}, byEmail: map[string]*entity.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *entity.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return repo.ErrDuplicateEmail
	}
	u.ID = "user-" + strconv.Itoa(f.nextID)
	f.nextID++
	cp := *u
	f.byID[u.ID] = &cp
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeSessionStore struct {
	data map[string]string
}

func (f *fakeSessionStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	f.data[token] = userID
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, token string) (string, error) {
	v, ok := f.data[token]
	if !ok {
		return "", session.ErrNotFound
	}
	return v, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, token string) error {
	delete(f.data, token)
	return nil
}

// ------------------------------------------------------------------ server

type testEnv struct {
	engine   *gin.Engine
	repo     *fakeUserRepo
	store    *fakeSessionStore
	sessions *session.Manager
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	userRepo := newFakeUserRepo()
	svc := application.NewService(userRepo, logger, nil, nil, "", true, false)

	store := &fakeSessionStore{data: map[string]string{}}
	sessions := session.NewManager(store, 24*time.Hour, "", false)
	google := oauth.NewGoogleProvider("client-id", "client-secret", "http://localhost:3000/auth/google/home")
	state := oauth.NewStateSigner("test-secret")

	authHandler := handlers.NewAuthHandler(svc, sessions, google, state, logger)
	pageHandler := handlers.NewPageHandler()

	r := gin.New()
	r.SetHTMLTemplate(handlers.Templates())
	restore := middleware.SessionRestore(sessions, svc, logger)
	root := r.Group("/")
	root.Use(restore)
	api := r.Group("/api")
	api.Use(restore)
	modules.NewPagesModule(pageHandler, authHandler, sessions).Register(root)
	modules.NewAuthModule(authHandler).Register(api)

	return &testEnv{engine: r, repo: userRepo, store: store, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) signup(t *testing.T, fullName, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(map[string]string{"fullName": fullName, "email": email, "password": password})
	return e.do(t, http.MethodPost, "/api/signup", string(b))
}

func (e *testEnv) login(t *testing.T, username, password string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(map[string]string{"username": username, "password": password})
	return e.do(t, http.MethodPost, "/api/login", string(b), cookies...)
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.APIResponse {
	t.Helper()
	var resp response.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ------------------------------------------------------------------ tests

func TestSignup(t *testing.T) {
	env := newTestServer(t)

	w := env.signup(t, "Ann Lee", "ann@example.com", "Secret123")
	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeEnvelope(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Account created successfully", resp.Message)

	// Same email again fails and performs no write
	w = env.signup(t, "Ann Lee", "ann@example.com", "Secret123")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp = decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Email already exists", resp.Message)
	assert.Len(t, env.repo.byID, 1)
}

func TestSignupValidation(t *testing.T) {
	env := newTestServer(t)

	w := env.signup(t, "Ann Lee", "not-an-email", "Secret123")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.signup(t, "Ann Lee", "ann@example.com", "short")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.repo.byID)
}

func TestSignupDoesNotLogIn(t *testing.T) {
	env := newTestServer(t)
	w := env.signup(t, "Ann Lee", "ann@example.com", "Secret123")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, cookieByName(w, session.CookieName))
}

func TestLoginSuccess(t *testing.T) {
	env := newTestServer(t)
	env.signup(t, "Ann Lee", "ann@example.com", "Secret123")

	w := env.login(t, "ann@example.com", "Secret123")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, "/home", resp.Redirect)

	ck := cookieByName(w, session.CookieName)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)

	// The session works without re-submitting credentials
	home := env.do(t, http.MethodGet, "/home", "", &http.Cookie{Name: session.CookieName, Value: ck.Value})
	assert.Equal(t, http.StatusOK, home.Code)
	assert.Contains(t, home.Body.String(), "ann@example.com")
}

func TestLoginBadCredentialsRedirects(t *testing.T) {
	env := newTestServer(t)
	env.signup(t, "Ann Lee", "ann@example.com", "Secret123")

	w := env.login(t, "ann@example.com", "wrong")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Nil(t, cookieByName(w, session.CookieName))
	assert.Empty(t, env.store.data)

	// Unknown email looks identical
	w = env.login(t, "nobody@example.com", "Secret123")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestGuardRedirectsAnonymous(t *testing.T) {
	env := newTestServer(t)

	w := env.do(t, http.MethodGet, "/home", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	ck := cookieByName(w, "return_to")
	require.NotNil(t, ck)
	// SetCookie escapes the value on the wire; compare the decoded form
	captured, err := url.QueryUnescape(ck.Value)
	require.NoError(t, err)
	assert.Equal(t, "/home", captured)
}

func TestLoginHonorsCapturedReturnTo(t *testing.T) {
	env := newTestServer(t)
	env.signup(t, "Ann Lee", "ann@example.com", "Secret123")

	w := env.login(t, "ann@example.com", "Secret123", &http.Cookie{Name: "return_to", Value: "/home?tab=keys"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "/home?tab=keys", resp.Redirect)

	// Capture is honored once: the cookie is cleared in the response
	cleared := cookieByName(w, "return_to")
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestLoginIgnoresOffSiteReturnTo(t *testing.T) {
	env := newTestServer(t)
	env.signup(t, "Ann Lee", "ann@example.com", "Secret123")

	// A forged cookie must not turn a successful login into an open redirect
	w := env.login(t, "ann@example.com", "Secret123", &http.Cookie{Name: "return_to", Value: "https://evil.example/phish"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "/home", resp.Redirect)
}

func TestLogout(t *testing.T) {
	env := newTestServer(t)
	env.signup(t, "Ann Lee", "ann@example.com", "Secret123")
	loginResp := env.login(t, "ann@example.com", "Secret123")
	ck := cookieByName(loginResp, session.CookieName)
	require.NotNil(t, ck)

	w := env.do(t, http.MethodGet, "/logout", "", &http.Cookie{Name: session.CookieName, Value: ck.Value})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Empty(t, env.store.data)

	// The old token is no longer accepted
	home := env.do(t, http.MethodGet, "/home", "", &http.Cookie{Name: session.CookieName, Value: ck.Value})
	assert.Equal(t, http.StatusFound, home.Code)
	assert.Equal(t, "/login", home.Header().Get("Location"))
}

func TestStaleSessionTreatedAsAnonymous(t *testing.T) {
	env := newTestServer(t)
	env.store.data["tok"] = "user-gone"

	w := env.do(t, http.MethodGet, "/home", "", &http.Cookie{Name: session.CookieName, Value: "tok"})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestIndexRedirects(t *testing.T) {
	env := newTestServer(t)

	w := env.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/register", w.Header().Get("Location"))

	env.signup(t, "Ann Lee", "ann@example.com", "Secret123")
	loginResp := env.login(t, "ann@example.com", "Secret123")
	ck := cookieByName(loginResp, session.CookieName)
	require.NotNil(t, ck)

	w = env.do(t, http.MethodGet, "/", "", &http.Cookie{Name: session.CookieName, Value: ck.Value})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))
}

func TestPagesRender(t *testing.T) {
	env := newTestServer(t)

	w := env.do(t, http.MethodGet, "/login", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/login")

	w = env.do(t, http.MethodGet, "/register", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/signup")
}

func TestGoogleBeginRedirectsToConsent(t *testing.T) {
	env := newTestServer(t)

	w := env.do(t, http.MethodGet, "/auth/google", "")
	assert.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	assert.Contains(t, loc, "accounts.google.com")
	assert.Contains(t, loc, "state=")
	assert.Contains(t, loc, "client-id")
}

func TestGoogleCallbackRejectsBadState(t *testing.T) {
	env := newTestServer(t)

	w := env.do(t, http.MethodGet, "/auth/google/home?state=forged&code=abc", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Empty(t, env.store.data)
}

func TestSearchRequiresAuth(t *testing.T) {
	env := newTestServer(t)

	// API endpoints answer anonymous requests with a 401 envelope, not the
	// page redirect, and capture nothing for post-login navigation.
	w := env.do(t, http.MethodGet, "/api/users/search?q=ann", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "authentication required", resp.Message)
	assert.Nil(t, cookieByName(w, "return_to"))

	env.signup(t, "Ann Lee", "ann@example.com", "Secret123")
	loginResp := env.login(t, "ann@example.com", "Secret123")
	ck := cookieByName(loginResp, session.CookieName)
	require.NotNil(t, ck)

	w = env.do(t, http.MethodGet, "/api/users/search?q=ann", "", &http.Cookie{Name: session.CookieName, Value: ck.Value})
	assert.Equal(t, http.StatusOK, w.Code)
}
