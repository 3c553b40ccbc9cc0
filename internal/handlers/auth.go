package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/synthese-backend/internal/apierr"
	"github.com/yungbote/synthese-backend/internal/middleware"
	"github.com/yungbote/synthese-backend/internal/services"
)

// AuthHandler serves the browser-facing session endpoints: login, guest
// sessions, OAuth callback and the password reset flow.
type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Write(c, http.StatusBadRequest, "Must include username and password fields")
		return
	}
	user, token, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	ah.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"user": user.ToDict(true), "session": token})
}

func (ah *AuthHandler) Guest(c *gin.Context) {
	user, token, err := ah.authService.StartGuestSession(c.Request.Context())
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	ah.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"user": user.ToDict(true), "session": token})
}

func (ah *AuthHandler) OAuthCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		apierr.Write(c, http.StatusBadRequest, "missing authorization code")
		return
	}
	user, token, err := ah.authService.OAuthLogin(c.Request.Context(), code)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	ah.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"user": user.ToDict(true), "session": token})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

type resetRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest always answers 202 so the response does not reveal
// whether the address is registered.
func (ah *AuthHandler) ResetPasswordRequest(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Write(c, http.StatusBadRequest, "Must include email field")
		return
	}
	ah.authService.RequestPasswordReset(c.Request.Context(), req.Email)
	c.JSON(http.StatusAccepted, gin.H{"message": "Check your email for the instructions to reset your password"})
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func (ah *AuthHandler) ResetPassword(c *gin.Context) {
	token := c.Param("token")
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Write(c, http.StatusBadRequest, "Must include password field")
		return
	}
	if err := ah.authService.ResetPassword(c.Request.Context(), token, req.Password); err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Your password has been reset"})
}

func (ah *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(ah.authService.SessionTTL().Seconds())
	c.SetCookie(middleware.SessionCookieName, token, maxAge, "/", "", false, true)
}
