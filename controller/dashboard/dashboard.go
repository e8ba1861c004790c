package dashboard

import (
	"net/http"
	"time"

	"bharatprint/controller"
	"bharatprint/middleware"
	"bharatprint/model"
	"bharatprint/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const recentActivityLimit = 5

func DashboardController(router *gin.RouterGroup, db *gorm.DB, svc *services.Services) {
	routes := router.Group("/dashboard", middleware.AccessTokenMiddleware(db, svc.Config.JWT.Secret))
	{
		routes.GET("/stats", func(c *gin.Context) {
			Stats(c, db, svc)
		})
	}
}

type activity struct {
	ID           string    `json:"id"`
	DocumentName string    `json:"documentName"`
	CreatedAt    time.Time `json:"createdAt"`
	Status       string    `json:"status"`
}

func Stats(c *gin.Context, db *gorm.DB, svc *services.Services) {
	user := middleware.CurrentUser(c)
	now := svc.Now()
	docs := func() *gorm.DB {
		return db.Model(&model.Document{}).Where("user_id = ?", user.ID)
	}

	var totalUploaded, thisMonth, thisWeek int64
	if err := docs().Where("status = ?", model.DocumentActive).Count(&totalUploaded).Error; err != nil {
		controller.Internal(c, svc.Logger, "Failed to load stats", err)
		return
	}
	if err := docs().Where("created_at >= ?", services.MonthStart(now)).Count(&thisMonth).Error; err != nil {
		controller.Internal(c, svc.Logger, "Failed to load stats", err)
		return
	}
	if err := docs().Where("created_at >= ?", now.AddDate(0, 0, -7)).Count(&thisWeek).Error; err != nil {
		controller.Internal(c, svc.Logger, "Failed to load stats", err)
		return
	}
	var totalViews int64
	if err := docs().Select("COALESCE(SUM(share_view_count), 0)").Scan(&totalViews).Error; err != nil {
		controller.Internal(c, svc.Logger, "Failed to load stats", err)
		return
	}

	var recent []model.Document
	if err := docs().Order("created_at DESC").Limit(recentActivityLimit).Find(&recent).Error; err != nil {
		controller.Internal(c, svc.Logger, "Failed to load stats", err)
		return
	}
	activities := make([]activity, 0, len(recent))
	for _, d := range recent {
		activities = append(activities, activity{
			ID:           d.ID,
			DocumentName: d.DocumentName,
			CreatedAt:    d.CreatedAt,
			Status:       d.Status,
		})
	}

	plan := svc.Plans.ForStatus(user.SubscriptionStatus)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"documents": gin.H{
				"totalUploaded": totalUploaded,
				"thisMonth":     thisMonth,
				"thisWeek":      thisWeek,
				"totalViews":    totalViews,
			},
			"subscription": gin.H{
				"status":        user.SubscriptionStatus,
				"plan":          plan.Name,
				"monthlyLimit":  user.MonthlyUploadLimit,
				"used":          user.UploadsUsedThisMonth,
				"remaining":     user.RemainingUploads(),
				"trialEndsAt":   user.TrialEndsAt,
				"trialDaysLeft": services.TrialEndsIn(user, now),
			},
			"recentActivity": activities,
		},
	})
}
