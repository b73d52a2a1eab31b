package jwt

import (
	"strings"

	"relgraph/pkg/logger"
	"relgraph/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextUserIDKey 用户ID在gin.Context中的键名，匿名访问时不设置
	ContextUserIDKey = "user_id"
	// ContextClaimsKey JWT声明在gin.Context中的键名
	ContextClaimsKey = "jwt_claims"
	// RoleAdmin 可管理关系类型的角色，写在 Data["role"]
	RoleAdmin = "admin"
)

// OptionalAuth 有令牌则校验并记录用户，无令牌按匿名继续
// 令牌存在但无效时拒绝请求
func (s *JWTService) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		if !s.authenticate(c, authHeader) {
			return
		}
		c.Next()
	}
}

// RequireAuth 必须携带有效令牌
func (s *JWTService) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "缺少Authorization请求头")
			c.Abort()
			return
		}
		if !s.authenticate(c, authHeader) {
			return
		}
		c.Next()
	}
}

func (s *JWTService) authenticate(c *gin.Context, authHeader string) bool {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		response.Unauthorized(c, "Authorization格式错误，应为Bearer <token>")
		c.Abort()
		return false
	}
	claims, userID, err := s.parse(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		logger.Warn("JWT验证失败",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.Unauthorized(c, "token无效或已过期")
		c.Abort()
		return false
	}
	c.Set(ContextUserIDKey, userID)
	c.Set(ContextClaimsKey, claims)
	return true
}

// RequireAdmin 必须是管理员令牌
func (s *JWTService) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "缺少Authorization请求头")
			c.Abort()
			return
		}
		if !s.authenticate(c, authHeader) {
			return
		}
		if role, _ := GetClaims(c).Data["role"].(string); role != RoleAdmin {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetClaims 从gin.Context中获取JWT声明
func GetClaims(c *gin.Context) *CustomClaims {
	if v, exists := c.Get(ContextClaimsKey); exists {
		if claims, ok := v.(*CustomClaims); ok {
			return claims
		}
	}
	return &CustomClaims{}
}

// GetUserID 从gin.Context中获取用户ID，匿名时为0
func GetUserID(c *gin.Context) uint {
	if v, exists := c.Get(ContextUserIDKey); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
