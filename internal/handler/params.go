package handler

import (
	"strconv"

	"relgraph/internal/service"
	"relgraph/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return service.ValidSlug(fl.Field().String())
		})
	}
}

// parseUint 解析路径或查询参数中的ID
func parseUint(raw string) (uint, bool) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

func parseInt(raw string) (int, bool) {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func viewerOf(c *gin.Context) service.Viewer {
	return service.Viewer{ID: jwt.GetUserID(c)}
}
