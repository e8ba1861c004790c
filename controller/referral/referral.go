package referral

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bharatprint/controller"
	"bharatprint/dto"
	"bharatprint/middleware"
	"bharatprint/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ReferralController(router *gin.RouterGroup, db *gorm.DB, svc *services.Services) {
	auth := middleware.AccessTokenMiddleware(db, svc.Config.JWT.Secret)
	routes := router.Group("/referrals", auth)
	{
		routes.GET("/my-code", func(c *gin.Context) {
			MyCode(c, db, svc)
		})
		routes.POST("/claim", func(c *gin.Context) {
			Claim(c, db, svc)
		})
	}
	router.GET("/leaderboard", auth, func(c *gin.Context) {
		Leaderboard(c, db, svc)
	})
}

type referralItem struct {
	ID           string    `json:"id"`
	ShopName     string    `json:"shopName"`
	ReferredAt   time.Time `json:"referredAt"`
	Status       string    `json:"status"`
	RewardAmount int       `json:"rewardAmount"`
}

func MyCode(c *gin.Context, db *gorm.DB, svc *services.Services) {
	user := middleware.CurrentUser(c)
	sum, err := svc.ReferralSummary(db, user.ID)
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to load referrals", err)
		return
	}

	link := svc.UploadPortalURL(user.ReferralCode)
	qr, err := services.QRCodeDataURI(link)
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to render QR code", err)
		return
	}

	items := make([]referralItem, 0, len(sum.Referrals))
	for _, r := range sum.Referrals {
		shop := r.Referee.ShopName
		if shop == "" {
			shop = "New Shop"
		}
		items = append(items, referralItem{
			ID:           r.ID,
			ShopName:     shop,
			ReferredAt:   r.CreatedAt,
			Status:       r.Status,
			RewardAmount: r.RewardRupees,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"referral": gin.H{
			"code":         user.ReferralCode,
			"referralLink": link,
			"qrCode":       qr,
			"referralsCount": gin.H{
				"total":   sum.Total,
				"pending": sum.Pending,
				"earned":  sum.Earned,
				"claimed": sum.Claimed,
			},
			"rewardsEarned": gin.H{
				"totalRupees":   sum.TotalRupees,
				"pendingRupees": sum.PendingRupees,
				"claimedRupees": sum.ClaimedRupees,
			},
			"referrals": items,
		},
	})
}

func Claim(c *gin.Context, db *gorm.DB, svc *services.Services) {
	user := middleware.CurrentUser(c)
	var req dto.ClaimReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.Fail(c, http.StatusBadRequest, "Referral code is required")
		return
	}

	ref, err := svc.ApplyReferral(db, user, req.ReferralCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReferralNotFound):
			controller.Fail(c, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrSelfReferral):
			controller.Fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrAlreadyReferred):
			controller.Fail(c, http.StatusConflict, err.Error())
		default:
			controller.Internal(c, svc.Logger, "Failed to apply referral", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Referral applied",
		"referralId":   ref.ID,
		"status":       ref.Status,
		"rewardAmount": ref.RewardRupees,
	})
}

func Leaderboard(c *gin.Context, db *gorm.DB, svc *services.Services) {
	user := middleware.CurrentUser(c)
	limit := services.DefaultLeaderboardLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			controller.Fail(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	if limit > services.MaxLeaderboardLimit {
		limit = services.MaxLeaderboardLimit
	}

	global, err := svc.Leaderboard(db, "")
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to load leaderboard", err)
		return
	}
	entries := global
	city := strings.TrimSpace(c.Query("city"))
	if city != "" {
		if entries, err = svc.Leaderboard(db, city); err != nil {
			controller.Internal(c, svc.Logger, "Failed to load leaderboard", err)
			return
		}
	}

	var yourRank gin.H
	if rank := services.RankOf(global, user.ID); rank != nil {
		yourRank = gin.H{"global": *rank}
		if city != "" {
			yourRank["city"] = services.RankOf(entries, user.ID)
		}
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"city":        city,
		"leaderboard": entries,
		"yourRank":    yourRank,
	})
}
