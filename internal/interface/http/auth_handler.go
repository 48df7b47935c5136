package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oktaviandi/auth-portal/internal/application"
	repo "github.com/oktaviandi/auth-portal/internal/domain/repository"
	"github.com/oktaviandi/auth-portal/internal/interface/middleware"
	"github.com/oktaviandi/auth-portal/internal/oauth"
	"github.com/oktaviandi/auth-portal/internal/session"
	"github.com/oktaviandi/auth-portal/pkg/response"
	"github.com/oktaviandi/auth-portal/pkg/validation"
)

// AuthHandler serves the signup/login/logout surface and the Google OAuth
// flow. Authentication failures redirect to /login; only validation and
// infrastructure failures produce JSON errors.
type AuthHandler struct {
	Svc      *application.Service
	Sessions *session.Manager
	Google   *oauth.GoogleProvider
	State    *oauth.StateSigner
	Logger   *logrus.Logger
}

func NewAuthHandler(svc *application.Service, sessions *session.Manager, google *oauth.GoogleProvider, state *oauth.StateSigner, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Sessions: sessions, Google: google, State: state, Logger: logger}
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup handles POST /api/signup. The new account is not logged in; a
// separate login follows.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	_, err := h.Svc.Signup(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			response.Error(c, http.StatusBadRequest, "Email already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("signup failed")
		response.Error(c, http.StatusInternalServerError, "Error creating account", nil)
		return
	}
	response.Success(c, http.StatusCreated, "Account created successfully", nil)
}

// Login handles POST /api/login. Bad credentials redirect to /login without
// distinguishing unknown email from wrong password. On success the response
// carries the redirect target: the path captured before the login redirect,
// or /home.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.LoginLocal(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			c.Redirect(http.StatusFound, "/login")
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error(c, http.StatusInternalServerError, "Error logging in", nil)
		return
	}

	if err := h.Sessions.Issue(c, u.ID); err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("session issue failed")
		response.Error(c, http.StatusInternalServerError, "Error logging in", nil)
		return
	}
	h.Svc.NotifyLogin(c.Request.Context(), u, middleware.ClientIP(c))

	redirect := h.Sessions.ConsumeReturnTo(c, "/home")
	response.SuccessRedirect(c, http.StatusOK, "Login successful", redirect)
}

// Logout handles GET /logout. All three steps are sequential: drop the
// server-side record, clear the cookie, redirect. A store failure surfaces
// as 500 with the cookie already cleared; that partial state is accepted.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Sessions.Destroy(c); err != nil {
		h.Logger.WithError(err).Error("logout failed")
		c.String(http.StatusInternalServerError, "Error during logout")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

// GoogleBegin handles GET /auth/google: mint a signed state token and send
// the user to the Google consent screen.
func (h *AuthHandler) GoogleBegin(c *gin.Context) {
	state, err := h.State.Mint()
	if err != nil {
		h.Logger.WithError(err).Error("oauth state mint failed")
		c.String(http.StatusInternalServerError, "Error starting Google login")
		return
	}
	c.Redirect(http.StatusFound, h.Google.AuthURL(state))
}

// GoogleCallback handles GET /auth/google/home. Any failure in the exchange
// redirects back to /login; only a session-store failure is a 500.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if err := h.State.Verify(c.Query("state")); err != nil {
		h.Logger.WithError(err).Warn("oauth state rejected")
		c.Redirect(http.StatusFound, "/login")
		return
	}
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	profile, err := h.Google.Exchange(c.Request.Context(), code)
	if err != nil {
		h.Logger.WithError(err).Warn("google exchange failed")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	u, err := h.Svc.LoginGoogle(c.Request.Context(), profile)
	if err != nil {
		if errors.Is(err, application.ErrAccountNotLinkable) {
			h.Logger.WithField("email", profile.Email).Warn("google login blocked: local account exists")
		} else {
			h.Logger.WithError(err).Error("google login failed")
		}
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if err := h.Sessions.Issue(c, u.ID); err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("session issue failed")
		c.String(http.StatusInternalServerError, "Error logging in")
		return
	}
	h.Svc.NotifyLogin(c.Request.Context(), u, middleware.ClientIP(c))
	c.Redirect(http.StatusFound, h.Sessions.ConsumeReturnTo(c, "/home"))
}

// Search handles GET /api/users/search (protected).
func (h *AuthHandler) Search(c *gin.Context) {
	q := c.Query("q")
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, 10)
	if err != nil {
		h.Logger.WithError(err).Error("user search failed")
		response.Error(c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, "results", hits)
}
