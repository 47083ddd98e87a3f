package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/repository"
	"github.com/d60-Lab/placefeed/pkg/auth"
	"github.com/d60-Lab/placefeed/pkg/cache"
	"github.com/d60-Lab/placefeed/pkg/logger"
)

// RegisterInput 注册入参。
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateProfileInput 资料更新入参，nil 字段保持不变。
type UpdateProfileInput struct {
	FirstName         *string
	LastName          *string
	ProfilePictureURL *string
}

// PreferencesInput 通知开关更新入参。
type PreferencesInput struct {
	FollowNotifications    *bool
	PostLikedNotifications *bool
	CommentNotifications   *bool
}

// PreferencesView 通知开关投影。
type PreferencesView struct {
	FollowNotifications    bool `json:"follow_notifications"`
	PostLikedNotifications bool `json:"post_liked_notifications"`
	CommentNotifications   bool `json:"comment_notifications"`
}

// UserService 账号与个人主页。
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*UserProfile, string, error)
	// Login 用户名或邮箱 + 密码，成功返回访问令牌。
	Login(ctx context.Context, account, password string) (*UserProfile, string, error)
	// Profile 他人主页。可见性规则同所有按用户名的读路径。
	Profile(ctx context.Context, callerID int64, username string) (*UserProfile, error)
	Me(ctx context.Context, callerID int64) (*UserProfile, error)
	UpdateProfile(ctx context.Context, callerID int64, input UpdateProfileInput) (*UserProfile, error)
	Preferences(ctx context.Context, callerID int64) (*PreferencesView, error)
	UpdatePreferences(ctx context.Context, callerID int64, input PreferencesInput) (*PreferencesView, error)
	Deactivate(ctx context.Context, callerID int64) error
}

type userService struct {
	users     repository.UserRepository
	relations repository.RelationRepository
	posts     repository.PostRepository
	jwt       *auth.JWTService
	counters  *cache.CounterCache
}

func NewUserService(users repository.UserRepository, relations repository.RelationRepository, posts repository.PostRepository, jwt *auth.JWTService, counters *cache.CounterCache) UserService {
	return &userService{users: users, relations: relations, posts: posts, jwt: jwt, counters: counters}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*UserProfile, string, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, "", apperr.Invalidf("username, email and password are required")
	}
	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, "", apperr.Invalidf("username already taken")
	} else if !apperr.IsNotFound(err) {
		return nil, "", apperr.Storage(err)
	}
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, "", apperr.Invalidf("email already registered")
	} else if !apperr.IsNotFound(err) {
		return nil, "", apperr.Storage(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", apperr.Storage(err)
	}
	token, err := s.jwt.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}
	profile, err := s.profileOf(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

func (s *userService) Login(ctx context.Context, account, password string) (*UserProfile, string, error) {
	user, err := s.users.GetByUsername(ctx, account)
	if apperr.IsNotFound(err) {
		user, err = s.users.GetByEmail(ctx, account)
	}
	if apperr.IsNotFound(err) {
		// 账号不存在和密码错误同一个回答
		return nil, "", apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, "", apperr.Storage(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", apperr.ErrUnauthenticated
	}
	token, err := s.jwt.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}
	profile, err := s.profileOf(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

func (s *userService) Profile(ctx context.Context, callerID int64, username string) (*UserProfile, error) {
	target, err := visibleUser(ctx, s.users, s.relations, callerID, username)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, target)
}

func (s *userService) Me(ctx context.Context, callerID int64) (*UserProfile, error) {
	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, user)
}

// profileOf 装配主页投影。计数先走缓存，未命中回落聚合查询并回填。
func (s *userService) profileOf(ctx context.Context, user *model.User) (*UserProfile, error) {
	if s.counters != nil {
		if cached, err := s.counters.GetUserCounters(ctx, user.ID); err == nil && len(cached) == 3 {
			followers, err1 := strconv.ParseInt(cached["followerCount"], 10, 64)
			following, err2 := strconv.ParseInt(cached["followingCount"], 10, 64)
			posts, err3 := strconv.ParseInt(cached["postCount"], 10, 64)
			if err1 == nil && err2 == nil && err3 == nil {
				return &UserProfile{
					UserSummary:    summarize(user),
					FollowerCount:  max(followers, 0),
					FollowingCount: max(following, 0),
					PostCount:      max(posts, 0),
				}, nil
			}
		}
	}
	followers, err := s.relations.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	following, err := s.relations.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	posts, err := s.posts.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if s.counters != nil {
		if err := s.counters.SetUserCounters(ctx, user.ID, followers, following, posts); err != nil {
			logger.Warn("refill counter cache failed", zap.Int64("user", user.ID), zap.Error(err))
		}
	}
	return &UserProfile{
		UserSummary:    summarize(user),
		FollowerCount:  followers,
		FollowingCount: following,
		PostCount:      posts,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, callerID int64, input UpdateProfileInput) (*UserProfile, error) {
	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.ProfilePictureURL != nil {
		user.ProfilePictureURL = *input.ProfilePictureURL
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Storage(err)
	}
	return s.profileOf(ctx, user)
}

func (s *userService) Preferences(ctx context.Context, callerID int64) (*PreferencesView, error) {
	prefs, err := s.users.GetPreferences(ctx, callerID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return prefsView(prefs), nil
}

func (s *userService) UpdatePreferences(ctx context.Context, callerID int64, input PreferencesInput) (*PreferencesView, error) {
	prefs, err := s.users.GetPreferences(ctx, callerID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if input.FollowNotifications != nil {
		prefs.FollowNotifications = *input.FollowNotifications
	}
	if input.PostLikedNotifications != nil {
		prefs.PostLikedNotifications = *input.PostLikedNotifications
	}
	if input.CommentNotifications != nil {
		prefs.CommentNotifications = *input.CommentNotifications
	}
	if err := s.users.UpdatePreferences(ctx, prefs); err != nil {
		return nil, apperr.Storage(err)
	}
	return prefsView(prefs), nil
}

func (s *userService) Deactivate(ctx context.Context, callerID int64) error {
	if err := s.users.Deactivate(ctx, callerID); err != nil {
		return apperr.Storage(err)
	}
	if s.counters != nil {
		if err := s.counters.InvalidateUser(ctx, callerID); err != nil {
			logger.Warn("invalidate counter cache failed", zap.Int64("user", callerID), zap.Error(err))
		}
	}
	return nil
}

func prefsView(p *model.UserPreferences) *PreferencesView {
	return &PreferencesView{
		FollowNotifications:    p.FollowNotifications,
		PostLikedNotifications: p.PostLikedNotifications,
		CommentNotifications:   p.CommentNotifications,
	}
}
