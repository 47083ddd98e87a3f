package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/placefeed/config"
)

// JWTService 签发和校验访问令牌。身份解析对核心只是
// "凭证 -> 用户ID"，换成别的身份提供方不影响下层。
type JWTService struct {
	secret []byte
	expire time.Duration
	issuer string
}

func NewJWTService(cfg config.AuthConfig) *JWTService {
	return &JWTService{secret: []byte(cfg.JWTSecret), expire: cfg.JWTExpire, issuer: cfg.Issuer}
}

// Generate 为用户签发 token。
func (s *JWTService) Generate(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expire)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify 校验 token 并返回用户ID。
func (s *JWTService) Verify(token string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	return strconv.ParseInt(claims.Subject, 10, 64)
}
