package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/placefeed/internal/pagination"
	"github.com/d60-Lab/placefeed/internal/service"
	"github.com/d60-Lab/placefeed/pkg/response"
)

// Handler 聚合全部 HTTP 处理器的依赖。
type Handler struct {
	userSvc  service.UserService
	relSvc   service.RelationshipService
	postSvc  service.PostService
	feedSvc  service.FeedService
	notifSvc service.NotificationService
}

func NewHandler(
	userSvc service.UserService,
	relSvc service.RelationshipService,
	postSvc service.PostService,
	feedSvc service.FeedService,
	notifSvc service.NotificationService,
) *Handler {
	return &Handler{
		userSvc:  userSvc,
		relSvc:   relSvc,
		postSvc:  postSvc,
		feedSvc:  feedSvc,
		notifSvc: notifSvc,
	}
}

// pageParams 解析 cursor/limit 查询参数。cursor 非法按 400 处理。
func pageParams(c *gin.Context) (*pagination.Cursor, int, bool) {
	cursor, err := pagination.Parse(c.Query("cursor"))
	if err != nil {
		response.BadRequest(c, "invalid cursor")
		return nil, 0, false
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	return cursor, limit, true
}

// pageBody 分页响应体：items + 可选的下一页游标。
func pageBody[T any](page pagination.Page[T]) gin.H {
	body := gin.H{"items": page.Items}
	if page.Next != nil {
		body["cursor"] = page.Next.String()
	}
	return body
}
