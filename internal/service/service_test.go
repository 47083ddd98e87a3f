package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/placefeed/config"
	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/repository"
	"github.com/d60-Lab/placefeed/pkg/auth"
	"github.com/d60-Lab/placefeed/pkg/blob"
	"github.com/d60-Lab/placefeed/pkg/database"
)

// env 把全套服务架在内存 sqlite 上，不挂 redis 和旁路执行器。
type env struct {
	db       *gorm.DB
	users    repository.UserRepository
	posts    repository.PostRepository
	userSvc  UserService
	relSvc   RelationshipService
	postSvc  PostService
	feedSvc  FeedService
	notifSvc NotificationService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	placeRepo := repository.NewPlaceRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	blobStore, err := blob.NewLocalStore(t.TempDir(), "http://localhost/blobs")
	require.NoError(t, err)
	jwtSvc := auth.NewJWTService(config.AuthConfig{
		JWTSecret: "test-secret",
		JWTExpire: time.Hour,
		Issuer:    "test",
	})

	notifSvc := NewNotificationService(notifRepo, userRepo, postRepo, placeRepo)
	return &env{
		db:       db,
		users:    userRepo,
		posts:    postRepo,
		userSvc:  NewUserService(userRepo, relationRepo, postRepo, jwtSvc, nil),
		relSvc:   NewRelationshipService(userRepo, relationRepo, notifSvc, nil),
		postSvc:  NewPostService(userRepo, relationRepo, postRepo, placeRepo, commentRepo, notifSvc, blobStore, nil),
		feedSvc:  NewFeedService(userRepo, relationRepo, postRepo, placeRepo),
		notifSvc: notifSvc,
	}
}

func (e *env) createUser(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		FirstName:    name,
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *env) createPost(t *testing.T, userID int64, placeName string, n int) *PostView {
	t.Helper()
	view, err := e.postSvc.Create(context.Background(), userID, CreatePostInput{
		PlaceName: placeName,
		Latitude:  float64(n % 90),
		Longitude: float64(n % 180),
		Content:   fmt.Sprintf("post %d", n),
	})
	require.NoError(t, err)
	return view
}
