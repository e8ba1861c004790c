package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"bharatprint/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StartTrial puts a free user on the unlimited plan for its trial period.
// A trial can be used once per account.
func (s *Services) StartTrial(db *gorm.DB, user *model.User) error {
	if user.IsPaid() {
		return ErrAlreadySubscribed
	}
	if user.TrialStartedAt != nil {
		return ErrTrialUsed
	}

	plan := s.Plans.Unlimited()
	now := s.Now()
	ends := now.AddDate(0, 0, plan.TrialDays)
	res := db.Model(&model.User{}).
		Where("id = ? AND subscription_status = ? AND trial_started_at IS NULL", user.ID, model.SubscriptionFree).
		Updates(map[string]interface{}{
			"subscription_status":  model.SubscriptionTrial,
			"trial_started_at":     now,
			"trial_ends_at":        ends,
			"monthly_upload_limit": plan.MonthlyLimit,
		})
	if res.Error != nil {
		return fmt.Errorf("start trial: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTrialUsed
	}

	user.SubscriptionStatus = model.SubscriptionTrial
	user.TrialStartedAt = &now
	user.TrialEndsAt = &ends
	user.MonthlyUploadLimit = plan.MonthlyLimit
	s.Logger.Info("Trial started", zap.String("user_id", user.ID), zap.Time("ends_at", ends))
	return nil
}

// TestOrderID returns an order id in the gateway's format for test mode.
func TestOrderID() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "order_" + hex.EncodeToString(b), nil
}

// ActivateSubscription marks the order paid, moves the user to the
// unlimited plan and turns the user's pending referral into an earned one.
func (s *Services) ActivateSubscription(db *gorm.DB, userID, orderID, paymentID string) error {
	now := s.Now()
	plan := s.Plans.Unlimited()

	return db.Transaction(func(tx *gorm.DB) error {
		var order model.PaymentOrder
		if err := tx.Where("order_id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if order.Status != model.OrderPaid {
			if err := tx.Model(&order).Updates(map[string]interface{}{
				"status":     model.OrderPaid,
				"payment_id": paymentID,
				"paid_at":    now,
			}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"subscription_status":     model.SubscriptionUnlimited,
			"monthly_upload_limit":    plan.MonthlyLimit,
			"subscription_payment_id": paymentID,
			"subscription_started_at": now,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Referral{}).
			Where("referee_id = ? AND status = ?", userID, model.ReferralPending).
			Update("status", model.ReferralEarned).Error; err != nil {
			return err
		}

		s.Logger.Info("Subscription activated",
			zap.String("user_id", userID),
			zap.String("order_id", orderID),
			zap.Bool("test_mode", order.TestMode))
		return nil
	})
}

// TrialEndsIn is the whole days left on a trial, or zero.
func TrialEndsIn(user *model.User, now time.Time) int {
	if user.TrialEndsAt == nil || !user.TrialEndsAt.After(now) {
		return 0
	}
	return int(user.TrialEndsAt.Sub(now).Hours() / 24)
}
