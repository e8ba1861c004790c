// Package controller holds the helpers shared by the route controllers.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Fail writes the standard error body.
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "detail": msg})
}

// Internal logs err and answers 500 without leaking it.
func Internal(c *gin.Context, logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	Fail(c, http.StatusInternalServerError, msg)
}

func HealthController(router *gin.RouterGroup) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "BharatPrint API is running!", "version": "1.0.0"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}
