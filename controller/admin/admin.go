package admin

import (
	"net/http"

	"bharatprint/controller"
	"bharatprint/middleware"
	"bharatprint/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func AdminController(router *gin.RouterGroup, db *gorm.DB, svc *services.Services) {
	routes := router.Group("/admin", middleware.AdminMiddleware(svc.Config.AdminAPIKey))
	{
		routes.POST("/check-trials", func(c *gin.Context) {
			CheckTrials(c, db, svc)
		})
		routes.POST("/sweep-documents", func(c *gin.Context) {
			SweepDocuments(c, db, svc)
		})
		routes.POST("/reset-usage", func(c *gin.Context) {
			ResetUsage(c, db, svc)
		})
	}
}

func CheckTrials(c *gin.Context, db *gorm.DB, svc *services.Services) {
	n, err := svc.ExpireTrials(c.Request.Context(), db)
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to check trials", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "downgraded_count": n})
}

func SweepDocuments(c *gin.Context, db *gorm.DB, svc *services.Services) {
	res, err := svc.SweepDocuments(c.Request.Context(), db)
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to sweep documents", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"expired_count": res.Expired,
		"purged_count":  res.Purged,
		"failed_count":  res.Failed,
	})
}

func ResetUsage(c *gin.Context, db *gorm.DB, svc *services.Services) {
	n, err := svc.ResetMonthlyUsage(db)
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to reset usage", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reset_count": n})
}
