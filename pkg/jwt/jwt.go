package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"relgraph/config"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// JWTService 校验调用方令牌（HS256）
// 身份由外部系统签发，Subject 为用户ID
type JWTService struct {
	secretKey   []byte
	issuer      string
	expireAfter time.Duration
}

// CustomClaims 自定义声明载荷
type CustomClaims struct {
	Data map[string]interface{} `json:"data,omitempty"`
	jwtv5.RegisteredClaims
}

// NewJWTService 创建 JWT 服务
func NewJWTService(cfg config.JWTConfig) *JWTService {
	expire := cfg.ExpireTime
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	return &JWTService{
		secretKey:   []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		expireAfter: expire,
	}
}

// GenerateToken 签发令牌，仅供 relctl、压测工具和测试使用
func (s *JWTService) GenerateToken(userID uint, extraData map[string]interface{}) (string, error) {
	if userID == 0 {
		return "", errors.New("userID is required")
	}

	now := time.Now()
	claims := &CustomClaims{
		Data: extraData,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(s.expireAfter)),
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return signed, nil
}

// ValidateToken 校验并解析令牌
func (s *JWTService) ValidateToken(tokenString string) (*CustomClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}
	claims := &CustomClaims{}
	parsedToken, err := jwtv5.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwtv5.Token) (interface{}, error) {
			if token.Method != jwtv5.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
		jwtv5.WithIssuer(s.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	if !parsedToken.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// UserIDFromToken 校验令牌并返回 Subject 中的用户ID
func (s *JWTService) UserIDFromToken(tokenString string) (uint, error) {
	_, id, err := s.parse(tokenString)
	return id, err
}

func (s *JWTService) parse(tokenString string) (*CustomClaims, uint, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, 0, err
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, 0, errors.New("invalid subject")
	}
	return claims, uint(id), nil
}
