package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"bharatprint/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultState            = "Assam"
	defaultBusinessCategory = "print_shop"
	referralCodeAttempts    = 10
)

// SignIn describes a verified phone sign-in.
type SignIn struct {
	Phone  string
	Name   string
	Method string // otp, firebase, clerk

	FirebaseUID string
	ClerkUserID string

	// OverwriteName replaces an existing owner name with Name (the token
	// based flows do this); otherwise a name is only filled in when empty.
	OverwriteName bool
}

// GenerateReferralCode returns BP_<last 4 of phone><4 random digits>.
func GenerateReferralCode(phone string) string {
	suffix := phone
	if len(phone) >= 4 {
		suffix = phone[len(phone)-4:]
	}
	return fmt.Sprintf("BP_%s%d", strings.ToUpper(suffix), 1000+rand.Intn(9000))
}

func uniqueReferralCode(db *gorm.DB, phone string) (string, error) {
	for i := 0; i < referralCodeAttempts; i++ {
		code := GenerateReferralCode(phone)
		var count int64
		if err := db.Model(&model.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique referral code for %s", phone)
}

// FindOrCreateUser returns the user for in.Phone, creating a free-plan user
// when none exists. The boolean is true for newly created users.
func (s *Services) FindOrCreateUser(ctx context.Context, db *gorm.DB, in SignIn) (*model.User, bool, error) {
	now := s.Now()
	user, err := GetUserByPhone(db, in.Phone)
	if err == nil {
		if err := s.touchUser(db, user, in, now); err != nil {
			return nil, false, err
		}
		s.recordLogin(ctx, user, in.Method, false)
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	code, err := uniqueReferralCode(db, in.Phone)
	if err != nil {
		return nil, false, err
	}
	free := s.Plans.Free()
	user = &model.User{
		ID:                 uuid.NewString(),
		PhoneNumber:        in.Phone,
		OwnerName:          in.Name,
		PhoneVerified:      true,
		State:              defaultState,
		BusinessCategory:   defaultBusinessCategory,
		ReferralCode:       code,
		SubscriptionStatus: model.SubscriptionFree,
		MonthlyUploadLimit: free.MonthlyLimit,
		LastLogin:          &now,
	}
	if in.FirebaseUID != "" {
		user.FirebaseUID = &in.FirebaseUID
	}
	if in.ClerkUserID != "" {
		user.ClerkUserID = &in.ClerkUserID
	}

	if err := db.Create(user).Error; err != nil {
		// A concurrent sign-in for the same phone may have won the insert.
		existing, lookupErr := GetUserByPhone(db, in.Phone)
		if lookupErr != nil {
			return nil, false, fmt.Errorf("create user: %w", err)
		}
		s.recordLogin(ctx, existing, in.Method, false)
		return existing, false, nil
	}

	s.Logger.Info("New user created", zap.String("user_id", user.ID), zap.String("method", in.Method))
	s.recordLogin(ctx, user, in.Method, true)
	return user, true, nil
}

func (s *Services) touchUser(db *gorm.DB, user *model.User, in SignIn, now time.Time) error {
	updates := map[string]interface{}{"last_login": now}
	if in.Name != "" && (in.OverwriteName || user.OwnerName == "") {
		updates["owner_name"] = in.Name
	}
	if in.FirebaseUID != "" {
		updates["firebase_uid"] = in.FirebaseUID
	}
	if in.ClerkUserID != "" {
		updates["clerk_user_id"] = in.ClerkUserID
	}
	if err := db.Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.Logger.Info("Existing user logged in", zap.String("user_id", user.ID), zap.String("method", in.Method))
	return nil
}

func (s *Services) recordLogin(ctx context.Context, user *model.User, method string, isNew bool) {
	if s.Logins == nil {
		return
	}
	err := s.Logins.RecordLogin(ctx, model.LoginRecord{
		PhoneNumber: user.PhoneNumber,
		UserID:      user.ID,
		Method:      method,
		IsNewUser:   isNew,
		UpdatedAt:   s.Now(),
	})
	if err != nil {
		s.Logger.Warn("failed to mirror login", zap.String("user_id", user.ID), zap.Error(err))
	}
}
