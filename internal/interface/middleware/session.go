package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oktaviandi/auth-portal/internal/application"
	"github.com/oktaviandi/auth-portal/internal/domain/entity"
	repo "github.com/oktaviandi/auth-portal/internal/domain/repository"
	"github.com/oktaviandi/auth-portal/internal/session"
	"github.com/oktaviandi/auth-portal/pkg/response"
)

// CtxUserKey is the Gin context key holding the authenticated *entity.User.
const CtxUserKey = "currentUser"

// SessionRestore resolves the session cookie to a user on every request.
// The session stores only the user id; the full record is rehydrated from
// the database so stale in-session copies can never exist. A token whose
// user has disappeared is treated as anonymous.
func SessionRestore(sessions *session.Manager, svc *application.Service, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := sessions.Current(c)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				logger.WithError(err).Warn("session lookup failed")
			}
			c.Next()
			return
		}
		u, err := svc.GetUser(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, repo.ErrNotFound) {
				logger.WithError(err).WithField("user_id", userID).Warn("session rehydrate failed")
			}
			c.Next()
			return
		}
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by SessionRestore, if any.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok
}

// RequireAuth guards protected page routes. Anonymous requests get their
// target path captured for a one-time post-login redirect, then a 302 to
// /login. Must run after SessionRestore.
func RequireAuth(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		sessions.CaptureReturnTo(c, c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// RequireAuthJSON guards protected API routes. Anonymous requests get a 401
// envelope instead of the page redirect; nothing is captured since an API
// call is not a navigation target.
func RequireAuthJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		response.AbortError(c, http.StatusUnauthorized, "authentication required", nil)
	}
}
