package api

import (
	"regexp"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/placefeed/config"
	"github.com/d60-Lab/placefeed/internal/api/handler"
	"github.com/d60-Lab/placefeed/internal/api/middleware"
	"github.com/d60-Lab/placefeed/pkg/auth"
	"github.com/d60-Lab/placefeed/pkg/response"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._]{3,32}$`)

// NewRouter 组装 gin 引擎：中间件 + 全部路由。
func NewRouter(cfg *config.Config, h *handler.Handler, jwtSvc *auth.JWTService) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		})
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(otelgin.Middleware("placefeed"))
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Server.RateLimitQPS > 0 {
		r.Use(middleware.RateLimit(cfg.Server.RateLimitQPS, cfg.Server.RateBurst))
	}

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})
	// 本地 blob 存储的静态出口
	r.Static("/blobs", cfg.Blob.BaseDir)

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/register", h.Register)
			users.POST("/login", h.Login)

			authed := users.Group("")
			authed.Use(middleware.Auth(jwtSvc))
			{
				authed.GET("/me", h.Me)
				authed.PATCH("/me", h.UpdateProfile)
				authed.DELETE("/me", h.Deactivate)
				authed.GET("/me/preferences", h.Preferences)
				authed.PATCH("/me/preferences", h.UpdatePreferences)

				authed.GET("/:username", h.Profile)
				authed.GET("/:username/posts", h.UserPosts)
				authed.GET("/:username/followers", h.Followers)
				authed.GET("/:username/following", h.Following)
				authed.GET("/:username/relation", h.Relation)
				authed.POST("/:username/follow", h.Follow)
				authed.DELETE("/:username/follow", h.Unfollow)
				authed.POST("/:username/block", h.Block)
				authed.DELETE("/:username/block", h.Unblock)
			}
		}

		posts := v1.Group("/posts")
		posts.Use(middleware.Auth(jwtSvc))
		{
			posts.POST("", h.CreatePost)
			posts.GET("/:post_id", h.GetPost)
			posts.DELETE("/:post_id", h.DeletePost)
			posts.POST("/:post_id/likes", h.LikePost)
			posts.DELETE("/:post_id/likes", h.UnlikePost)
			posts.POST("/:post_id/report", h.ReportPost)
			posts.POST("/:post_id/comments", h.CreateComment)
			posts.GET("/:post_id/comments", h.ListComments)
		}

		comments := v1.Group("/comments")
		comments.Use(middleware.Auth(jwtSvc))
		{
			comments.DELETE("/:comment_id", h.DeleteComment)
		}

		feed := v1.Group("/feed")
		feed.Use(middleware.Auth(jwtSvc))
		{
			feed.GET("", h.HomeFeed)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(middleware.Auth(jwtSvc))
		{
			notifications.GET("", h.Notifications)
		}
	}

	return r
}
