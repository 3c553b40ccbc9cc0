package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/synthese-backend/internal/apierr"
	"github.com/yungbote/synthese-backend/internal/requestdata"
	"github.com/yungbote/synthese-backend/internal/services"
)

type TokenHandler struct {
	tokenService services.TokenService
	userService  services.UserService
}

func NewTokenHandler(tokenService services.TokenService, userService services.UserService) *TokenHandler {
	return &TokenHandler{tokenService: tokenService, userService: userService}
}

// GetToken mints (or reuses) the caller's API token. Basic auth has already
// identified the user.
func (th *TokenHandler) GetToken(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		apierr.Write(c, http.StatusUnauthorized, "")
		return
	}
	user, err := th.userService.Get(c.Request.Context(), rd.UserID)
	if err != nil || user == nil {
		apierr.Write(c, http.StatusUnauthorized, "")
		return
	}
	token, err := th.tokenService.GetToken(c.Request.Context(), user, services.DefaultTokenTTL)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (th *TokenHandler) RevokeToken(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		apierr.Write(c, http.StatusUnauthorized, "")
		return
	}
	user, err := th.userService.Get(c.Request.Context(), rd.UserID)
	if err != nil || user == nil {
		apierr.Write(c, http.StatusUnauthorized, "")
		return
	}
	if err := th.tokenService.RevokeToken(c.Request.Context(), user); err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
