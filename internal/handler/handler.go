package handler

import (
	"errors"
	"net/http"
	"net/url"

	"auth-broker/internal/logger"
	"auth-broker/internal/provider"
	"auth-broker/internal/session"

	"github.com/gin-gonic/gin"
)

// Handler is the HTTP surface of the broker. It translates cookies and
// query parameters into session manager calls and manager outcomes
// into JSON bodies, redirects, and cookie headers. It holds no state
// of its own.
type Handler struct {
	manager       *session.Manager
	exchanger     provider.Exchanger
	allowedOrigin string
	maxAgeSeconds int
	cookieOpts    session.CookieOptions
}

func NewHandler(
	manager *session.Manager,
	exchanger provider.Exchanger,
	allowedOrigin string,
	maxAgeSeconds int,
) *Handler {
	return &Handler{
		manager:       manager,
		exchanger:     exchanger,
		allowedOrigin: allowedOrigin,
		maxAgeSeconds: maxAgeSeconds,
		cookieOpts: session.CookieOptions{
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		},
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/auth/login", h.login)
	r.GET("/auth/callback", h.callback)
	r.GET("/auth/token", h.token)
	r.POST("/auth/logout", h.logout)
	r.GET("/auth/status", h.status)
}

// login redirects the browser to the provider consent screen.
func (h *Handler) login(c *gin.Context) {
	c.Redirect(http.StatusFound, h.exchanger.AuthCodeURL())
}

// callback receives the authorization code from the provider and
// establishes a session. All user-facing outcomes are redirects back
// to the app origin with an auth marker.
func (h *Handler) callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("provider callback returned error", map[string]any{
			"error": errParam,
		})
		h.redirectError(c, errParam)
		return
	}

	sessionID, err := h.manager.Establish(c.Request.Context(), c.Query("code"))
	if err != nil {
		var providerErr *provider.Error
		switch {
		case errors.Is(err, session.ErrNoCode):
			h.redirectError(c, "no_code")
		case errors.As(err, &providerErr):
			logger.Warn("code exchange rejected", map[string]any{
				"code": providerErr.Code,
			})
			h.redirectError(c, providerErr.Message())
		case errors.Is(err, session.ErrNoRefreshToken):
			h.redirectError(c, "no_refresh_token")
		default:
			logger.Error("failed to establish session", map[string]any{
				"error": err.Error(),
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	session.SetCookie(c.Writer, sessionID, h.maxAgeSeconds, h.cookieOpts)
	c.Redirect(http.StatusFound, h.allowedOrigin+"?auth=success")
}

// token returns a fresh access token for the cookie-carried session.
func (h *Handler) token(c *gin.Context) {
	accessToken, err := h.manager.Refresh(c.Request.Context(), h.sessionID(c))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoSession):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Not authenticated",
				"code":  "NO_SESSION",
			})
		case errors.Is(err, session.ErrSessionNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Session expired",
				"code":  "SESSION_EXPIRED",
			})
		case errors.Is(err, session.ErrSessionInvalidated):
			session.ClearCookie(c.Writer, h.cookieOpts)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Session invalidated",
				"code":  "REFRESH_FAILED",
			})
		default:
			logger.Error("token refresh failed", map[string]any{
				"error": err.Error(),
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Token refresh failed",
				"code":  "REFRESH_ERROR",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken.Token,
		"expires_in":   accessToken.ExpiresIn,
	})
}

// logout terminates the session and clears the cookie. Always succeeds
// from the client's point of view; store failures are logged only.
func (h *Handler) logout(c *gin.Context) {
	if sessionID := h.sessionID(c); sessionID != "" {
		if err := h.manager.Terminate(c.Request.Context(), sessionID); err != nil {
			logger.Error("failed to terminate session", map[string]any{
				"error": err.Error(),
			})
		}
	}

	session.ClearCookie(c.Writer, h.cookieOpts)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// status is a cheap liveness check: one store read, no provider call.
func (h *Handler) status(c *gin.Context) {
	st, err := h.manager.Inspect(c.Request.Context(), h.sessionID(c))
	if err != nil {
		logger.Error("session inspect failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	if !st.Authenticated {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated":  true,
		"sessionCreated": st.Created,
	})
}

func (h *Handler) sessionID(c *gin.Context) string {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) redirectError(c *gin.Context, message string) {
	c.Redirect(
		http.StatusFound,
		h.allowedOrigin+"?auth=error&message="+url.QueryEscape(message),
	)
}
