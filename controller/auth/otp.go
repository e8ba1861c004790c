package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"bharatprint/controller"
	"bharatprint/dto"
	"bharatprint/model"
	"bharatprint/services"
	"bharatprint/sms"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OTPController registers the OTP routes. Each route takes its own rate
// limiter so sending and verifying keep separate per-client budgets.
func OTPController(router *gin.RouterGroup, db *gorm.DB, svc *services.Services, sendLimit, verifyLimit gin.HandlerFunc) {
	routes := router.Group("/auth")
	{
		routes.POST("/send-otp", sendLimit, func(c *gin.Context) {
			SendOTP(c, db, svc)
		})
		routes.POST("/verify-otp", verifyLimit, func(c *gin.Context) {
			VerifyOTP(c, db, svc)
		})
	}
}

// generateOTP returns a uniformly random six digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func SendOTP(c *gin.Context, db *gorm.DB, svc *services.Services) {
	var req dto.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.Fail(c, http.StatusBadRequest, "Phone number is required")
		return
	}
	phone, err := services.NormalizePhone(req.PhoneNumber)
	if err != nil {
		controller.Fail(c, http.StatusBadRequest, "Invalid phone number. Use 10-digit Indian mobile number")
		return
	}

	code, err := generateOTP()
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to generate OTP", err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to generate OTP", err)
		return
	}

	ttl := svc.Config.OTP.TTL
	now := svc.Now()
	record := model.OTPRecord{
		ID:          uuid.NewString(),
		PhoneNumber: phone,
		OTPHash:     string(hash),
		SentAt:      now,
		ExpiresAt:   now.Add(ttl),
	}
	if svc.Config.DevMode {
		record.OTPCode = &code
	}
	if err := db.Create(&record).Error; err != nil {
		controller.Internal(c, svc.Logger, "Failed to save OTP", err)
		return
	}

	// The code stays valid even when delivery fails; the user can retry.
	if err := svc.Sender.Send(c.Request.Context(), phone, sms.OTPMessage(code, int(ttl.Minutes()))); err != nil {
		svc.Logger.Error("OTP delivery failed", zap.String("phone", phone), zap.Error(err))
	}
	if svc.Config.DevMode {
		svc.Logger.Info(fmt.Sprintf("OTP for %s: %s", phone, code))
	}

	resp := dto.SendOTPResponse{
		Success:     true,
		Message:     "OTP sent to " + phone,
		ExpiresIn:   int(ttl.Seconds()),
		PhoneNumber: phone,
	}
	if svc.Config.DevMode {
		resp.DevOTP = code
	}
	c.JSON(http.StatusOK, resp)
}

func VerifyOTP(c *gin.Context, db *gorm.DB, svc *services.Services) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PhoneNumber == "" || req.Code() == "" {
		controller.Fail(c, http.StatusBadRequest, "Phone number and OTP are required")
		return
	}
	phone, err := services.NormalizePhone(req.PhoneNumber)
	if err != nil {
		controller.Fail(c, http.StatusBadRequest, "Invalid phone number. Use 10-digit Indian mobile number")
		return
	}

	now := svc.Now()
	var record model.OTPRecord
	err = db.Where("phone_number = ? AND expires_at > ? AND verified_at IS NULL", phone, now).
		Order("sent_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			controller.Fail(c, http.StatusBadRequest, "OTP expired or not found")
			return
		}
		controller.Internal(c, svc.Logger, "Failed to verify OTP", err)
		return
	}

	// Reserve an attempt before comparing so concurrent guesses cannot
	// exceed the limit.
	res := db.Model(&model.OTPRecord{}).
		Where("id = ? AND attempts < ? AND verified_at IS NULL", record.ID, svc.Config.OTP.MaxAttempts).
		Update("attempts", gorm.Expr("attempts + 1"))
	if res.Error != nil {
		controller.Internal(c, svc.Logger, "Failed to verify OTP", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		controller.Fail(c, http.StatusBadRequest, "Too many attempts. Request new OTP.")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(record.OTPHash), []byte(req.Code())) != nil {
		controller.Fail(c, http.StatusBadRequest, "Invalid OTP")
		return
	}

	// Consume the code; a concurrent verify may already have done so.
	res = db.Model(&model.OTPRecord{}).
		Where("id = ? AND verified_at IS NULL", record.ID).
		Update("verified_at", now)
	if res.Error != nil {
		controller.Internal(c, svc.Logger, "Failed to verify OTP", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		controller.Fail(c, http.StatusBadRequest, "OTP expired or not found")
		return
	}

	signIn(c, db, svc, services.SignIn{Phone: phone, Name: req.Name, Method: "otp"})
}

// signIn finds or creates the user and answers with a fresh session.
func signIn(c *gin.Context, db *gorm.DB, svc *services.Services, in services.SignIn) {
	user, isNew, err := svc.FindOrCreateUser(c.Request.Context(), db, in)
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to sign in", err)
		return
	}
	token, err := CreateAccessToken(user, svc.Config.JWT.Secret, svc.Config.JWT.Expiration, svc.Now())
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to create token", err)
		return
	}

	// Reload so the profile reflects the sign-in updates.
	if fresh, err := services.GetUserByID(db, user.ID); err == nil {
		user = fresh
	}
	c.JSON(http.StatusOK, dto.AuthResponse{
		Success:   true,
		Token:     token,
		IsNewUser: isNew,
		User:      dto.NewUserProfile(user),
	})
}
