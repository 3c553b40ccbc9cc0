package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/synthese-backend/internal/apierr"
	"github.com/yungbote/synthese-backend/internal/requestdata"
	"github.com/yungbote/synthese-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetUser(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		apierr.Write(c, http.StatusNotFound, "")
		return
	}
	if rd == nil || rd.UserID != userID {
		apierr.Write(c, http.StatusForbidden, "")
		return
	}
	user, err := uh.userService.Get(c.Request.Context(), userID)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	if user == nil {
		apierr.Write(c, http.StatusNotFound, "")
		return
	}
	c.JSON(http.StatusOK, user.ToDict(true))
}

func (uh *UserHandler) ListUsers(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	users, err := uh.userService.List(c.Request.Context())
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	items := make([]map[string]interface{}, 0, len(users))
	for _, user := range users {
		includePrivate := rd != nil && rd.UserID == user.ID
		items = append(items, user.ToDict(includePrivate))
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"_meta": gin.H{"total_items": len(users)},
	})
}

func (uh *UserHandler) CreateUser(c *gin.Context) {
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		apierr.Write(c, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := uh.userService.Create(c.Request.Context(), data)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/users/%s", user.ID))
	c.JSON(http.StatusCreated, user.ToDict(true))
}

func (uh *UserHandler) UpdateUser(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		apierr.Write(c, http.StatusNotFound, "")
		return
	}
	if rd == nil || rd.UserID != userID {
		apierr.Write(c, http.StatusForbidden, "")
		return
	}
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		apierr.Write(c, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := uh.userService.Update(c.Request.Context(), userID, data)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.JSON(http.StatusOK, user.ToDict(true))
}
