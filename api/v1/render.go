package v1

import (
	"fmt"
	"net/http"

	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/e"
	"github.com/gin-gonic/gin"
)

// OK 统一成功返回 {code, message, data}
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    e.SUCCESS,
		"message": e.GetMsg(e.SUCCESS),
		"data":    data,
	})
}

// Fail 统一失败返回
func Fail(c *gin.Context, status, code int, message string) {
	if message == "" {
		message = e.GetMsg(code)
	}
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

// 工具
func toInt64(s string) int64 {
	var r int64
	_, _ = fmt.Sscan(s, &r)
	return r
}

func toInt32(s string) int32 {
	var r int32
	_, _ = fmt.Sscan(s, &r)
	if r <= 0 {
		r = 1
	}
	return r
}
