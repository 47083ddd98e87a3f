package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/placefeed/config"
	"github.com/d60-Lab/placefeed/internal/api"
	"github.com/d60-Lab/placefeed/internal/api/handler"
	"github.com/d60-Lab/placefeed/internal/repository"
	"github.com/d60-Lab/placefeed/internal/service"
	"github.com/d60-Lab/placefeed/pkg/auth"
	"github.com/d60-Lab/placefeed/pkg/blob"
	"github.com/d60-Lab/placefeed/pkg/cache"
	"github.com/d60-Lab/placefeed/pkg/database"
	"github.com/d60-Lab/placefeed/pkg/logger"
	"github.com/d60-Lab/placefeed/pkg/tracing"
)

func main() {
	// 1. 配置
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// 2. 日志
	log := logger.Init(cfg.Log)
	defer log.Sync()
	logger.Info("placefeed starting",
		zap.String("addr", cfg.Server.Addr),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. sentry
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.SampleRate,
		}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	// 4. tracing
	shutdownTracing, err := tracing.Init(context.Background(), cfg.Trace)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}

	// 5. 数据库（含迁移）
	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	// 6. redis 计数缓存
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var counters *cache.CounterCache
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		// 缓存只是旁路，redis 不在也能起
		logger.Warn("redis unavailable, counter cache disabled", zap.Error(err))
	} else {
		counters = cache.NewCounterCache(redisClient)
	}

	// 7. blob 存储
	blobStore, err := blob.NewLocalStore(cfg.Blob.BaseDir, cfg.Blob.PublicURL)
	if err != nil {
		logger.Fatal("blob store init failed", zap.Error(err))
	}

	// 8. 仓储
	userRepo := repository.NewUserRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	placeRepo := repository.NewPlaceRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// 9. 旁路执行器
	dispatcher := service.NewAsyncDispatcher(service.LogPushSender{}, counters, cfg.Dispatcher.QueueSize)
	stopDispatcher := dispatcher.Start(cfg.Dispatcher.Workers)

	// 10. 服务
	jwtSvc := auth.NewJWTService(cfg.Auth)
	notifSvc := service.NewNotificationService(notifRepo, userRepo, postRepo, placeRepo)
	userSvc := service.NewUserService(userRepo, relationRepo, postRepo, jwtSvc, counters)
	relSvc := service.NewRelationshipService(userRepo, relationRepo, notifSvc, dispatcher)
	postSvc := service.NewPostService(userRepo, relationRepo, postRepo, placeRepo, commentRepo, notifSvc, blobStore, dispatcher)
	feedSvc := service.NewFeedService(userRepo, relationRepo, postRepo, placeRepo)

	// 11. 路由
	h := handler.NewHandler(userSvc, relSvc, postSvc, feedSvc, notifSvc)
	router := api.NewRouter(cfg, h, jwtSvc)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", zap.Error(err))
		}
	}()

	// 12. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	if err := stopDispatcher(ctx); err != nil {
		logger.Error("dispatcher shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("tracing shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
