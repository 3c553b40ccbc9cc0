package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/synthese-backend/internal/apierr"
	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/requestdata"
	"github.com/yungbote/synthese-backend/internal/services"
)

const SessionCookieName = "session"

type AuthMiddleware struct {
	log          *logger.Logger
	authService  services.AuthService
	tokenService services.TokenService
}

func NewAuthMiddleware(
	baseLog *logger.Logger,
	authService services.AuthService,
	tokenService services.TokenService,
) *AuthMiddleware {
	middlewareLog := baseLog.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{
		log:          middlewareLog,
		authService:  authService,
		tokenService: tokenService,
	}
}

// RequireSession guards the browser surface: a signed session token from
// the session cookie or the Authorization header.
func (am *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractSessionToken(c)
		if tokenString == "" {
			apierr.Write(c, http.StatusUnauthorized, "")
			c.Abort()
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			apierr.Write(c, http.StatusUnauthorized, "")
			c.Abort()
			return
		}
		rd := requestdata.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			apierr.Write(c, http.StatusUnauthorized, "")
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireToken guards the JSON API: an opaque bearer token minted via
// POST /api/tokens.
func (am *AuthMiddleware) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			apierr.Write(c, http.StatusUnauthorized, "")
			c.Abort()
			return
		}
		user, err := am.tokenService.CheckToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Warn("Token check failed", "error", err)
			apierr.Write(c, http.StatusInternalServerError, "")
			c.Abort()
			return
		}
		if user == nil {
			apierr.Write(c, http.StatusUnauthorized, "")
			c.Abort()
			return
		}
		rd := &requestdata.RequestData{
			TokenString: tokenString,
			UserID:      user.ID,
			IsGuest:     user.IsGuest,
		}
		c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// RequireBasicAuth is used only for token minting. Failures are a generic
// 401: nothing reveals whether the username or the password was wrong.
func (am *AuthMiddleware) RequireBasicAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="api"`)
			apierr.Write(c, http.StatusUnauthorized, "")
			c.Abort()
			return
		}
		user, err := am.authService.Authenticate(c.Request.Context(), username, password)
		if err != nil || user == nil {
			apierr.Write(c, http.StatusUnauthorized, "")
			c.Abort()
			return
		}
		rd := &requestdata.RequestData{
			UserID:  user.ID,
			IsGuest: user.IsGuest,
		}
		c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func extractSessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	return extractBearerToken(c)
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
