package response

import (
	"net/http"

	"relgraph/internal/apperror"
	"relgraph/internal/model"
	"relgraph/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`            // 0表示成功，其他为HTTP状态码
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Error   string      `json:"error,omitempty"` // 错误详情（仅在debug模式显示）
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应，HTTP状态码与code一致
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带错误详情的错误响应
func ErrorWithDetails(c *gin.Context, code int, message string, err error) {
	resp := Response{
		Code:    code,
		Message: message,
	}
	if gin.Mode() == gin.DebugMode && err != nil {
		resp.Error = err.Error()
	}
	c.JSON(code, resp)
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403错误
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// FromError 按错误分类映射响应
func FromError(c *gin.Context, err error) {
	switch {
	case apperror.IsNotFound(err):
		ErrorWithDetails(c, http.StatusNotFound, "资源不存在", err)
	case apperror.IsValidation(err):
		ErrorWithDetails(c, http.StatusBadRequest, err.Error(), err)
	case apperror.IsLoginRequired(err):
		Unauthorized(c, "需要登录")
	default:
		logger.Error("请求处理失败",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		ErrorWithDetails(c, http.StatusInternalServerError, "服务器内部错误", err)
	}
}

// UserInfo 对外暴露的用户信息
type UserInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// FilterUserInfo 过滤用户信息
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}
	return &UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
	}
}

// FilterUsers 批量过滤
func FilterUsers(users []model.User) []*UserInfo {
	out := make([]*UserInfo, len(users))
	for i := range users {
		out[i] = FilterUserInfo(&users[i])
	}
	return out
}

// UserListResponse 关系列表
type UserListResponse struct {
	UserID uint        `json:"user_id"`
	Status string      `json:"status"`
	Users  []*UserInfo `json:"users"`
	Total  int         `json:"total"`
}

// ExistsResponse 关系是否存在
type ExistsResponse struct {
	From   uint   `json:"from"`
	To     uint   `json:"to"`
	Status string `json:"status"`
	Exists bool   `json:"exists"`
}

// ClassifyResponse 关系分类
type ClassifyResponse struct {
	A      uint   `json:"a"`
	B      uint   `json:"b"`
	Result string `json:"result"`
}
