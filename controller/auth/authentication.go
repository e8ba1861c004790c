package auth

import (
	"errors"
	"net/http"
	"strings"

	"bharatprint/controller"
	"bharatprint/dto"
	"bharatprint/identity"
	"bharatprint/middleware"
	"bharatprint/model"
	"bharatprint/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func AuthController(router *gin.RouterGroup, db *gorm.DB, svc *services.Services) {
	routes := router.Group("/auth")
	{
		routes.POST("/verify-firebase-token", func(c *gin.Context) {
			VerifyFirebaseToken(c, db, svc)
		})
		routes.POST("/verify-otp-firebase", func(c *gin.Context) {
			VerifyFirebaseToken(c, db, svc)
		})
		routes.POST("/verify-clerk-token", func(c *gin.Context) {
			VerifyClerkToken(c, db, svc)
		})
		routes.POST("/register", middleware.AccessTokenMiddleware(db, svc.Config.JWT.Secret), func(c *gin.Context) {
			Register(c, db, svc)
		})
		routes.GET("/me", middleware.AccessTokenMiddleware(db, svc.Config.JWT.Secret), func(c *gin.Context) {
			Me(c)
		})
	}
}

func VerifyFirebaseToken(c *gin.Context, db *gorm.DB, svc *services.Services) {
	if svc.Verifier == nil {
		controller.Fail(c, http.StatusInternalServerError, "Firebase not configured")
		return
	}
	var req dto.FirebaseTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.Fail(c, http.StatusBadRequest, "ID token and phone number are required")
		return
	}

	token, err := svc.Verifier.VerifyIDToken(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, identity.ErrNotConfigured) {
			controller.Fail(c, http.StatusInternalServerError, "Firebase not configured")
			return
		}
		svc.Logger.Warn("firebase token rejected", zap.Error(err))
		controller.Fail(c, http.StatusUnauthorized, "Invalid Firebase token")
		return
	}
	if !services.PhoneMatches(token.PhoneNumber, req.PhoneNumber) {
		controller.Fail(c, http.StatusBadRequest, "Phone number mismatch")
		return
	}

	signIn(c, db, svc, services.SignIn{
		Phone:         services.NormalizePhoneLenient(req.PhoneNumber),
		Name:          req.Name,
		Method:        "firebase",
		FirebaseUID:   token.UID,
		OverwriteName: true,
	})
}

// VerifyClerkToken signs in a user whose phone was verified by Clerk. The
// Clerk user is looked up server side and must own the requested phone.
func VerifyClerkToken(c *gin.Context, db *gorm.DB, svc *services.Services) {
	if svc.Clerk == nil {
		controller.Fail(c, http.StatusInternalServerError, "Clerk not configured")
		return
	}
	var req dto.ClerkTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.Fail(c, http.StatusBadRequest, "Phone number is required")
		return
	}
	if strings.TrimSpace(req.ClerkUserID) == "" {
		controller.Fail(c, http.StatusBadRequest, "Clerk user ID is required")
		return
	}

	phones, err := svc.Clerk.VerifiedPhoneNumbers(c.Request.Context(), req.ClerkUserID)
	if err != nil {
		if errors.Is(err, identity.ErrNotConfigured) {
			controller.Fail(c, http.StatusInternalServerError, "Clerk not configured")
			return
		}
		svc.Logger.Warn("clerk user rejected", zap.String("clerk_user_id", req.ClerkUserID), zap.Error(err))
		controller.Fail(c, http.StatusUnauthorized, "Invalid Clerk user")
		return
	}
	matched := false
	for _, p := range phones {
		if services.PhoneMatches(p, req.PhoneNumber) {
			matched = true
			break
		}
	}
	if !matched {
		controller.Fail(c, http.StatusBadRequest, "Phone number mismatch")
		return
	}

	signIn(c, db, svc, services.SignIn{
		Phone:         services.NormalizePhoneLenient(req.PhoneNumber),
		Name:          req.Name,
		Method:        "clerk",
		ClerkUserID:   req.ClerkUserID,
		OverwriteName: true,
	})
}

// Register completes onboarding for the signed-in merchant.
func Register(c *gin.Context, db *gorm.DB, svc *services.Services) {
	user := middleware.CurrentUser(c)
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.Fail(c, http.StatusBadRequest, "Name, shop name and city are required")
		return
	}

	updates := map[string]interface{}{
		"owner_name":           strings.TrimSpace(req.Name),
		"shop_name":            strings.TrimSpace(req.ShopName),
		"city":                 strings.TrimSpace(req.City),
		"onboarding_completed": true,
	}
	if req.State != "" {
		updates["state"] = req.State
	}
	if req.Pincode != "" {
		updates["pincode"] = req.Pincode
	}
	if req.BusinessCategory != "" {
		updates["business_category"] = req.BusinessCategory
	}
	if err := db.Model(&model.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		controller.Internal(c, svc.Logger, "Failed to complete registration", err)
		return
	}

	if req.ReferralCode != "" {
		if _, err := svc.ApplyReferral(db, user, req.ReferralCode); err != nil {
			svc.Logger.Warn("referral not applied at registration",
				zap.String("user_id", user.ID),
				zap.String("code", req.ReferralCode),
				zap.Error(err))
		}
	}

	fresh, err := services.GetUserByID(db, user.ID)
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to complete registration", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Registration completed",
		"user":    dto.NewUserProfile(fresh),
	})
}

func Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    dto.NewUserProfile(middleware.CurrentUser(c)),
	})
}
