package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/placefeed/internal/api/middleware"
	"github.com/d60-Lab/placefeed/internal/service"
	"github.com/d60-Lab/placefeed/pkg/response"
)

type registerRequest struct {
	Username  string `json:"username" binding:"required,username"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"max=64"`
	LastName  string `json:"last_name" binding:"max=64"`
}

type loginRequest struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	ProfilePictureURL *string `json:"profile_picture_url"`
}

type preferencesRequest struct {
	FollowNotifications    *bool `json:"follow_notifications"`
	PostLikedNotifications *bool `json:"post_liked_notifications"`
	CommentNotifications   *bool `json:"comment_notifications"`
}

// Register 注册
// @Summary 注册新账号
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/users/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	profile, token, err := h.userSvc.Register(c.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"user": profile, "token": token})
}

// Login 登录
// @Summary 用户名或邮箱登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	profile, token, err := h.userSvc.Login(c.Request.Context(), req.Account, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"user": profile, "token": token})
}

// Me 当前用户主页
// @Summary 当前用户主页
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response{data=service.UserProfile}
// @Router /api/v1/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	profile, err := h.userSvc.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, profile)
}

// Profile 他人主页
// @Summary 按用户名查主页
// @Tags 用户
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=service.UserProfile}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username} [get]
func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.userSvc.Profile(c.Request.Context(), middleware.CurrentUserID(c), c.Param("username"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, profile)
}

// UpdateProfile 更新资料
// @Summary 更新当前用户资料
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body updateProfileRequest true "资料字段，缺省字段不变"
// @Success 200 {object} response.Response{data=service.UserProfile}
// @Router /api/v1/users/me [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	profile, err := h.userSvc.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), service.UpdateProfileInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, profile)
}

// Preferences 通知偏好
// @Summary 查询通知开关
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response{data=service.PreferencesView}
// @Router /api/v1/users/me/preferences [get]
func (h *Handler) Preferences(c *gin.Context) {
	prefs, err := h.userSvc.Preferences(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, prefs)
}

// UpdatePreferences 更新通知偏好
// @Summary 更新通知开关
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body preferencesRequest true "开关字段，缺省字段不变"
// @Success 200 {object} response.Response{data=service.PreferencesView}
// @Router /api/v1/users/me/preferences [patch]
func (h *Handler) UpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	prefs, err := h.userSvc.UpdatePreferences(c.Request.Context(), middleware.CurrentUserID(c), service.PreferencesInput{
		FollowNotifications:    req.FollowNotifications,
		PostLikedNotifications: req.PostLikedNotifications,
		CommentNotifications:   req.CommentNotifications,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, prefs)
}

// Deactivate 停用账号
// @Summary 停用当前账号
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/users/me [delete]
func (h *Handler) Deactivate(c *gin.Context) {
	if err := h.userSvc.Deactivate(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"deactivated": true})
}
