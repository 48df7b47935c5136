package session

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// CookieName carries the opaque session token.
	CookieName = "session_token"
	// returnToCookie holds the one-time post-login redirect target captured
	// by the route guard before redirecting an anonymous user to /login.
	returnToCookie = "return_to"

	returnToTTL = 10 * time.Minute
)

// Manager issues, restores, and destroys sessions, and owns the cookie
// attributes tied to them.
type Manager struct {
	store  Store
	ttl    time.Duration
	domain string
	secure bool
}

func NewManager(store Store, ttl time.Duration, domain string, secure bool) *Manager {
	return &Manager{store: store, ttl: ttl, domain: domain, secure: secure}
}

// NewToken returns a fresh opaque session token: 32 random bytes, base64url.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Issue creates a server-side session for the user and sets the session
// cookie. A fresh token is minted on every authentication.
func (m *Manager) Issue(c *gin.Context, userID string) error {
	token, err := NewToken()
	if err != nil {
		return err
	}
	if err := m.store.Save(c.Request.Context(), token, userID, m.ttl); err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(m.ttl.Seconds()), "/", m.domain, m.secure, true)
	return nil
}

// Current returns the user id held by the request's session, if any.
// A missing cookie or a token with no server-side record both mean anonymous.
func (m *Manager) Current(c *gin.Context) (string, error) {
	token, err := c.Cookie(CookieName)
	if err != nil || token == "" {
		return "", ErrNotFound
	}
	return m.store.Get(c.Request.Context(), token)
}

// Destroy deletes the server-side session record and clears the cookie.
// The store delete must succeed for logout to be reported as successful; the
// cookie is cleared regardless, since the record may already be gone.
func (m *Manager) Destroy(c *gin.Context) error {
	token, cookieErr := c.Cookie(CookieName)
	var storeErr error
	if cookieErr == nil && token != "" {
		storeErr = m.store.Delete(c.Request.Context(), token)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", m.domain, m.secure, true)
	return storeErr
}

// CaptureReturnTo remembers the originally requested path so a later login
// can send the user back where they were headed.
func (m *Manager) CaptureReturnTo(c *gin.Context, path string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(returnToCookie, path, int(returnToTTL.Seconds()), "/", m.domain, m.secure, true)
}

// ConsumeReturnTo returns the captured path (or fallback) and clears it, so
// the capture is honored at most once. The cookie is client-writable, so
// only local paths are accepted; anything else falls back.
func (m *Manager) ConsumeReturnTo(c *gin.Context, fallback string) string {
	target, err := c.Cookie(returnToCookie)
	if err != nil || target == "" {
		return fallback
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(returnToCookie, "", -1, "/", m.domain, m.secure, true)
	if !localPath(target) {
		return fallback
	}
	return target
}

// localPath reports whether target stays on this host: a single leading
// slash, no scheme, no protocol-relative "//" form. Backslashes are rejected
// because browsers treat them as slashes.
func localPath(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return false
	}
	return !strings.Contains(target, `\`)
}
