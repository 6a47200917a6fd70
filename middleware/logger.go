package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/storefinder-api/utils"
)

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		utils.LogAPIRequest(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).String())
	}
}
