package handler

import (
	"encoding/base64"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/placefeed/internal/api/middleware"
	"github.com/d60-Lab/placefeed/internal/service"
	"github.com/d60-Lab/placefeed/pkg/response"
)

type createPostRequest struct {
	PlaceName string  `json:"place_name" binding:"required,max=255"`
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
	Content   string  `json:"content" binding:"required,max=2000"`
	// ImageBase64 可选配图，base64 编码
	ImageBase64 string `json:"image_base64"`
}

type reportRequest struct {
	Details string `json:"details" binding:"max=2000"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// CreatePost 发帖
// @Summary 发帖（同一地点每人一帖）
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body createPostRequest true "帖子内容"
// @Success 200 {object} response.Response{data=service.PostView}
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	var image []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			response.BadRequest(c, "invalid image encoding")
			return
		}
		image = decoded
	}
	post, err := h.postSvc.Create(c.Request.Context(), middleware.CurrentUserID(c), service.CreatePostInput{
		PlaceName: req.PlaceName,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Content:   req.Content,
		Image:     image,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, post)
}

// GetPost 查帖
// @Summary 按外部 id 查帖
// @Tags 帖子
// @Produce json
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response{data=service.PostView}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.postSvc.Get(c.Request.Context(), middleware.CurrentUserID(c), c.Param("post_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 删帖
// @Summary 软删帖子（仅限帖主）
// @Tags 帖子
// @Produce json
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	deleted, err := h.postSvc.Delete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("post_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

// LikePost 点赞
// @Summary 点赞（幂等）
// @Tags 帖子
// @Produce json
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id}/likes [post]
func (h *Handler) LikePost(c *gin.Context) {
	likes, err := h.postSvc.Like(c.Request.Context(), middleware.CurrentUserID(c), c.Param("post_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"likes": likes})
}

// UnlikePost 取消点赞
// @Summary 取消点赞（幂等）
// @Tags 帖子
// @Produce json
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id}/likes [delete]
func (h *Handler) UnlikePost(c *gin.Context) {
	likes, err := h.postSvc.Unlike(c.Request.Context(), middleware.CurrentUserID(c), c.Param("post_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"likes": likes})
}

// ReportPost 举报
// @Summary 举报帖子（每人每帖一次）
// @Tags 帖子
// @Accept json
// @Produce json
// @Param post_id path string true "帖子ID"
// @Param request body reportRequest true "举报说明"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id}/report [post]
func (h *Handler) ReportPost(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.postSvc.Report(c.Request.Context(), middleware.CurrentUserID(c), c.Param("post_id"), req.Details); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"reported": true})
}

// CreateComment 评论
// @Summary 评论帖子
// @Tags 评论
// @Accept json
// @Produce json
// @Param post_id path string true "帖子ID"
// @Param request body commentRequest true "评论内容"
// @Success 200 {object} response.Response{data=service.CommentView}
// @Router /api/v1/posts/{post_id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, err := h.postSvc.CreateComment(c.Request.Context(), middleware.CurrentUserID(c), c.Param("post_id"), req.Content)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, comment)
}

// ListComments 评论列表
// @Summary 帖子评论（游标分页）
// @Tags 评论
// @Produce json
// @Param post_id path string true "帖子ID"
// @Param cursor query string false "游标"
// @Param limit query int false "每页数量" default(50)
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	cursor, limit, ok := pageParams(c)
	if !ok {
		return
	}
	page, err := h.postSvc.Comments(c.Request.Context(), middleware.CurrentUserID(c), c.Param("post_id"), cursor, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, pageBody(page))
}

// DeleteComment 删评论
// @Summary 删除评论（评论作者或帖主）
// @Tags 评论
// @Produce json
// @Param comment_id path int true "评论ID"
// @Success 200 {object} response.Response
// @Router /api/v1/comments/{comment_id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}
	if err := h.postSvc.DeleteComment(c.Request.Context(), middleware.CurrentUserID(c), commentID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
