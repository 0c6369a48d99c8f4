package web

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	codes "github.com/lk2023060901/xdooria-arena/pkg/web/errors"
)

// BindAndValidate 绑定并校验请求体，失败时已写出响应
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			Error(c, codes.CodeInvalidParams, verrs.Error())
			return false
		}
		Error(c, codes.CodeInvalidParams, "invalid request parameters: "+err.Error())
		return false
	}
	return true
}

// ParamInt64 解析路径参数，失败时已写出响应
func ParamInt64(c *gin.Context, key string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil {
		Error(c, codes.CodeInvalidParams, "invalid "+key)
		return 0, false
	}
	return v, true
}

// QueryInt 读取查询参数，缺失或非法时返回默认值
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return defaultValue
	}
	return v
}
