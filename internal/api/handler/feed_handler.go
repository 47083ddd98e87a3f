package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/placefeed/internal/api/middleware"
	"github.com/d60-Lab/placefeed/pkg/response"
)

// HomeFeed 首页流
// @Summary 自己 + 关注作者的帖子流（游标分页）
// @Tags Feed
// @Produce json
// @Param cursor query string false "游标"
// @Param limit query int false "每页数量" default(50)
// @Success 200 {object} response.Response
// @Router /api/v1/feed [get]
func (h *Handler) HomeFeed(c *gin.Context) {
	cursor, limit, ok := pageParams(c)
	if !ok {
		return
	}
	page, err := h.feedSvc.HomeFeed(c.Request.Context(), middleware.CurrentUserID(c), cursor, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, pageBody(page))
}

// UserPosts 用户帖子流
// @Summary 目标用户的帖子流（游标分页）
// @Tags Feed
// @Produce json
// @Param username path string true "用户名"
// @Param cursor query string false "游标"
// @Param limit query int false "每页数量" default(50)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username}/posts [get]
func (h *Handler) UserPosts(c *gin.Context) {
	cursor, limit, ok := pageParams(c)
	if !ok {
		return
	}
	page, err := h.feedSvc.UserPosts(c.Request.Context(), middleware.CurrentUserID(c), c.Param("username"), cursor, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, pageBody(page))
}

// Followers 粉丝列表
// @Summary 目标用户的粉丝（游标分页）
// @Tags Feed
// @Produce json
// @Param username path string true "用户名"
// @Param cursor query string false "游标"
// @Param limit query int false "每页数量" default(50)
// @Success 200 {object} response.Response
// @Router /api/v1/users/{username}/followers [get]
func (h *Handler) Followers(c *gin.Context) {
	cursor, limit, ok := pageParams(c)
	if !ok {
		return
	}
	page, err := h.feedSvc.Followers(c.Request.Context(), middleware.CurrentUserID(c), c.Param("username"), cursor, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, pageBody(page))
}

// Following 关注列表
// @Summary 目标用户关注的人（游标分页）
// @Tags Feed
// @Produce json
// @Param username path string true "用户名"
// @Param cursor query string false "游标"
// @Param limit query int false "每页数量" default(50)
// @Success 200 {object} response.Response
// @Router /api/v1/users/{username}/following [get]
func (h *Handler) Following(c *gin.Context) {
	cursor, limit, ok := pageParams(c)
	if !ok {
		return
	}
	page, err := h.feedSvc.Following(c.Request.Context(), middleware.CurrentUserID(c), c.Param("username"), cursor, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, pageBody(page))
}
