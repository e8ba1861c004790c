package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"bharatprint/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MaxUploadBytes       = 50 << 20
	DefaultDeleteMinutes = 5

	// Customer uploads self-destruct within a day at most.
	MaxSelfDestructMinutes = 24 * 60
)

// NewDocument is a merchant upload that has passed request validation.
type NewDocument struct {
	FileName      string
	ContentType   string
	Data          []byte
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	OrderDetails  string
	DueDate       string
	OneTimeView   bool
	DeleteAfter   int // minutes
	AllowDownload bool
}

// CustomerUpload is a file sent to a merchant through the public portal.
type CustomerUpload struct {
	FileName      string
	ContentType   string
	Data          []byte
	SelfDestruct  int // minutes
	AllowDownload bool
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// CreateDocument stores the blob, inserts the document with a fresh share
// link and bumps the owner's counters. The limit check and increment are a
// single conditional UPDATE so concurrent uploads cannot exceed the plan.
func (s *Services) CreateDocument(ctx context.Context, db *gorm.DB, owner *model.User, in NewDocument) (*model.Document, error) {
	if len(in.Data) > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	if owner.RemainingUploads() <= 0 {
		return nil, ErrLimitReached
	}
	minutes := in.DeleteAfter
	if minutes == 0 {
		minutes = DefaultDeleteMinutes
	}
	if !s.Plans.ForStatus(owner.SubscriptionStatus).AllowsTimer(minutes) {
		return nil, ErrTimerNotAllowed
	}

	now := s.Now()
	id := uuid.NewString()
	link := uuid.NewString()
	expires := now.Add(time.Duration(minutes) * time.Minute)
	doc := &model.Document{
		ID:                 id,
		UserID:             owner.ID,
		DocumentName:       in.FileName,
		DocumentType:       in.ContentType,
		FileSizeBytes:      int64(len(in.Data)),
		FileStorageKey:     path.Join("docs", id, path.Base(in.FileName)),
		SharedLink:         &link,
		ShareLinkExpiresAt: &expires,
		OneTimeView:        in.OneTimeView,
		AllowDownload:      in.AllowDownload,
		SelfDestructMins:   minutes,
		CustomerName:       in.CustomerName,
		CustomerPhone:      optional(in.CustomerPhone),
		CustomerEmail:      optional(in.CustomerEmail),
		OrderDetails:       optional(in.OrderDetails),
		DueDate:            optional(in.DueDate),
		Status:             model.DocumentActive,
		AutoDeleteAt:       expires,
		CreatedAt:          now,
	}

	if err := s.Blobs.Put(ctx, doc.FileStorageKey, in.Data, in.ContentType); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ? AND uploads_used_this_month < monthly_upload_limit", owner.ID).
			Updates(map[string]interface{}{
				"uploads_used_this_month": gorm.Expr("uploads_used_this_month + 1"),
				"documents_uploaded":      gorm.Expr("documents_uploaded + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLimitReached
		}
		return tx.Create(doc).Error
	})
	if err != nil {
		if derr := s.Blobs.Delete(ctx, doc.FileStorageKey); derr != nil {
			s.Logger.Warn("failed to remove orphaned blob", zap.String("key", doc.FileStorageKey), zap.Error(derr))
		}
		if errors.Is(err, ErrLimitReached) {
			return nil, err
		}
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.Logger.Info("Document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("user_id", owner.ID),
		zap.Int64("size", doc.FileSizeBytes))
	return doc, nil
}

// CreateCustomerUpload stores a customer's file for merchant. Customer uploads
// have no share link and do not count against the merchant's plan, but they
// do add to the merchant's lifetime documents_uploaded.
func (s *Services) CreateCustomerUpload(ctx context.Context, db *gorm.DB, merchant *model.User, in CustomerUpload) (*model.Document, error) {
	if len(in.Data) > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	minutes := in.SelfDestruct
	if minutes <= 0 {
		minutes = DefaultDeleteMinutes
	}
	if minutes > MaxSelfDestructMinutes {
		minutes = MaxSelfDestructMinutes
	}

	now := s.Now()
	id := uuid.NewString()
	doc := &model.Document{
		ID:               id,
		UserID:           merchant.ID,
		DocumentName:     in.FileName,
		DocumentType:     in.ContentType,
		FileSizeBytes:    int64(len(in.Data)),
		FileStorageKey:   path.Join("customer-uploads", id, path.Base(in.FileName)),
		AllowDownload:    in.AllowDownload,
		CustomerUploaded: true,
		SelfDestructMins: minutes,
		CustomerName:     "Customer Upload",
		Status:           model.DocumentActive,
		AutoDeleteAt:     now.Add(time.Duration(minutes) * time.Minute),
		CreatedAt:        now,
	}

	if err := s.Blobs.Put(ctx, doc.FileStorageKey, in.Data, in.ContentType); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", merchant.ID).
			Update("documents_uploaded", gorm.Expr("documents_uploaded + 1")).Error
	})
	if err != nil {
		if derr := s.Blobs.Delete(ctx, doc.FileStorageKey); derr != nil {
			s.Logger.Warn("failed to remove orphaned blob", zap.String("key", doc.FileStorageKey), zap.Error(derr))
		}
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.Logger.Info("Customer upload received",
		zap.String("document_id", doc.ID),
		zap.String("merchant_id", merchant.ID),
		zap.Int("self_destruct_minutes", minutes))
	return doc, nil
}

// RevealSharedDocument records one public view of the document behind
// shareLink. The view is counted by a conditional UPDATE so at most one
// concurrent reader can open a one-time document.
func (s *Services) RevealSharedDocument(db *gorm.DB, shareLink string) (*model.Document, error) {
	now := s.Now()
	doc, err := GetDocumentByShareLink(db, shareLink)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if doc.Expired(now) {
		return nil, ErrDocumentExpired
	}
	if doc.OneTimeView && doc.ShareViewCount > 0 {
		return nil, ErrOneTimeConsumed
	}

	res := db.Model(&model.Document{}).
		Where("id = ? AND status = ? AND auto_delete_at > ?", doc.ID, model.DocumentActive, now).
		Where("share_link_expires_at IS NULL OR share_link_expires_at > ?", now).
		Where("one_time_view = ? OR share_view_count = 0", false).
		Update("share_view_count", gorm.Expr("share_view_count + 1"))
	if res.Error != nil {
		return nil, fmt.Errorf("count view: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if doc.OneTimeView {
			return nil, ErrOneTimeConsumed
		}
		return nil, ErrDocumentExpired
	}
	doc.ShareViewCount++
	return doc, nil
}

// SharedDownload returns the document and bytes behind a public download.
// One-time documents must have been revealed first.
func (s *Services) SharedDownload(ctx context.Context, db *gorm.DB, shareLink string) (*model.Document, []byte, error) {
	doc, err := GetDocumentByShareLink(db, shareLink)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, err
	}
	if doc.Expired(s.Now()) {
		return nil, nil, ErrDocumentExpired
	}
	if !doc.AllowDownload || (doc.OneTimeView && doc.ShareViewCount == 0) {
		return nil, nil, ErrDownloadForbidden
	}
	data, err := s.Blobs.Get(ctx, doc.FileStorageKey)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}

// DeleteDocument removes the blob and soft-deletes the row. A blob that
// fails to delete is left for the sweeper.
func (s *Services) DeleteDocument(ctx context.Context, db *gorm.DB, doc *model.Document) error {
	now := s.Now()
	purged := true
	if err := s.Blobs.Delete(ctx, doc.FileStorageKey); err != nil {
		s.Logger.Warn("failed to delete blob", zap.String("document_id", doc.ID), zap.Error(err))
		purged = false
	}
	err := db.Model(&model.Document{}).Where("id = ?", doc.ID).Updates(map[string]interface{}{
		"status":      model.DocumentDeleted,
		"deleted_at":  now,
		"blob_purged": purged,
	}).Error
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	doc.Status = model.DocumentDeleted
	doc.DeletedAt = &now
	doc.BlobPurged = purged
	return nil
}

// SecondsLeft is the time until the document expires, never negative.
func SecondsLeft(doc *model.Document, now time.Time) int {
	end := doc.AutoDeleteAt
	if doc.ShareLinkExpiresAt != nil && doc.ShareLinkExpiresAt.Before(end) {
		end = *doc.ShareLinkExpiresAt
	}
	if left := int(end.Sub(now).Seconds()); left > 0 {
		return left
	}
	return 0
}
