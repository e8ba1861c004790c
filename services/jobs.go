package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bharatprint/model"
	"bharatprint/sms"
	"bharatprint/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SweepResult reports what a single sweeper pass did.
type SweepResult struct {
	Expired int64 `json:"expired_count"`
	Purged  int   `json:"purged_count"`
	Failed  int   `json:"failed_count"`
}

// ExpireTrials downgrades every trial whose end date has passed and
// notifies the merchant.
func (s *Services) ExpireTrials(ctx context.Context, db *gorm.DB) (int, error) {
	now := s.Now()
	var users []model.User
	if err := db.Where("subscription_status = ? AND trial_ends_at < ?", model.SubscriptionTrial, now).
		Find(&users).Error; err != nil {
		return 0, fmt.Errorf("find expired trials: %w", err)
	}

	free := s.Plans.Free()
	downgraded := 0
	for _, user := range users {
		res := db.Model(&model.User{}).
			Where("id = ? AND subscription_status = ?", user.ID, model.SubscriptionTrial).
			Updates(map[string]interface{}{
				"subscription_status":  model.SubscriptionFree,
				"monthly_upload_limit": free.MonthlyLimit,
			})
		if res.Error != nil {
			s.Logger.Error("failed to downgrade trial", zap.String("user_id", user.ID), zap.Error(res.Error))
			continue
		}
		if res.RowsAffected == 0 {
			continue
		}
		downgraded++

		if s.Sender != nil {
			if err := s.Sender.Send(ctx, user.PhoneNumber, sms.TrialEndedMessage); err != nil {
				s.Logger.Warn("failed to send trial notice", zap.String("user_id", user.ID), zap.Error(err))
			}
		}
	}

	s.Logger.Info("Trial expiry check finished", zap.Int("downgraded_count", downgraded))
	return downgraded, nil
}

// SweepDocuments expires documents past their auto-delete time and purges
// the blobs of every expired or deleted document not yet purged. A blob
// that fails to delete is retried on the next pass.
func (s *Services) SweepDocuments(ctx context.Context, db *gorm.DB) (SweepResult, error) {
	var result SweepResult
	now := s.Now()

	res := db.Model(&model.Document{}).
		Where("status = ? AND auto_delete_at <= ?", model.DocumentActive, now).
		Update("status", model.DocumentExpired)
	if res.Error != nil {
		return result, fmt.Errorf("expire documents: %w", res.Error)
	}
	result.Expired = res.RowsAffected

	var docs []model.Document
	if err := db.Select("id", "file_storage_key").
		Where("status IN ? AND blob_purged = ?", []string{model.DocumentExpired, model.DocumentDeleted}, false).
		Find(&docs).Error; err != nil {
		return result, fmt.Errorf("find unpurged documents: %w", err)
	}

	for _, doc := range docs {
		if err := s.Blobs.Delete(ctx, doc.FileStorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.Logger.Warn("failed to purge blob", zap.String("document_id", doc.ID), zap.Error(err))
			result.Failed++
			continue
		}
		if err := db.Model(&model.Document{}).Where("id = ?", doc.ID).Update("blob_purged", true).Error; err != nil {
			s.Logger.Error("failed to mark blob purged", zap.String("document_id", doc.ID), zap.Error(err))
			result.Failed++
			continue
		}
		result.Purged++
	}

	if result.Expired > 0 || result.Purged > 0 || result.Failed > 0 {
		s.Logger.Info("Document sweep finished",
			zap.Int64("expired", result.Expired),
			zap.Int("purged", result.Purged),
			zap.Int("failed", result.Failed))
	}
	return result, nil
}

// ResetMonthlyUsage zeroes every merchant's monthly upload counter.
func (s *Services) ResetMonthlyUsage(db *gorm.DB) (int64, error) {
	res := db.Model(&model.User{}).Where("uploads_used_this_month > ?", 0).Update("uploads_used_this_month", 0)
	if res.Error != nil {
		return 0, fmt.Errorf("reset monthly usage: %w", res.Error)
	}
	s.Logger.Info("Monthly usage reset", zap.Int64("users", res.RowsAffected))
	return res.RowsAffected, nil
}

// MonthStart is midnight UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
