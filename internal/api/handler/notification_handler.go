package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/placefeed/internal/api/middleware"
	"github.com/d60-Lab/placefeed/pkg/response"
)

// Notifications 通知流
// @Summary 当前用户的通知（游标分页，读取时富化）
// @Tags 通知
// @Produce json
// @Param cursor query string false "游标"
// @Param limit query int false "每页数量" default(50)
// @Success 200 {object} response.Response
// @Router /api/v1/notifications [get]
func (h *Handler) Notifications(c *gin.Context) {
	cursor, limit, ok := pageParams(c)
	if !ok {
		return
	}
	page, err := h.notifSvc.Feed(c.Request.Context(), middleware.CurrentUserID(c), cursor, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, pageBody(page))
}
