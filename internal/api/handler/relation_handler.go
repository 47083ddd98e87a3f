package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/placefeed/internal/api/middleware"
	"github.com/d60-Lab/placefeed/pkg/response"
)

// Follow 关注用户
// @Summary 关注用户（幂等）
// @Tags 关系链
// @Produce json
// @Param username path string true "目标用户名"
// @Success 200 {object} response.Response{data=service.FollowResult}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)
	result, err := h.relSvc.Follow(c.Request.Context(), callerID, c.Param("username"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

// Unfollow 取消关注
// @Summary 取消关注（幂等）
// @Tags 关系链
// @Produce json
// @Param username path string true "目标用户名"
// @Success 200 {object} response.Response{data=service.FollowResult}
// @Router /api/v1/users/{username}/follow [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)
	result, err := h.relSvc.Unfollow(c.Request.Context(), callerID, c.Param("username"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

// Block 拉黑用户
// @Summary 拉黑用户（删除双向关注边）
// @Tags 关系链
// @Produce json
// @Param username path string true "目标用户名"
// @Success 200 {object} response.Response
// @Router /api/v1/users/{username}/block [post]
func (h *Handler) Block(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)
	if err := h.relSvc.Block(c.Request.Context(), callerID, c.Param("username")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"blocked": true})
}

// Unblock 解除拉黑
// @Summary 解除拉黑（幂等）
// @Tags 关系链
// @Produce json
// @Param username path string true "目标用户名"
// @Success 200 {object} response.Response
// @Router /api/v1/users/{username}/block [delete]
func (h *Handler) Unblock(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)
	if err := h.relSvc.Unblock(c.Request.Context(), callerID, c.Param("username")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"blocked": false})
}

// Relation 查询关注状态
// @Summary 调用者对目标的关注状态
// @Tags 关系链
// @Produce json
// @Param username path string true "目标用户名"
// @Success 200 {object} response.Response
// @Router /api/v1/users/{username}/relation [get]
func (h *Handler) Relation(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)
	rel, err := h.relSvc.RelationTo(c.Request.Context(), callerID, c.Param("username"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"relation": rel})
}
