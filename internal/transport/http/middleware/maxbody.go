package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "heartbeat-insights/internal/transport/http/response"
)

// MaxBodyBytes 声明长度超限直接 413；其余边读边限（绑定时表现为 *http.MaxBytesError）
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, http.StatusRequestEntityTooLarge, "")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
