package model

import (
	"time"
)

const (
	DocumentActive  = "active"
	DocumentExpired = "expired"
	DocumentDeleted = "deleted"
)

type Document struct {
	ID                 string     `gorm:"column:id;type:varchar(36);primaryKey"`
	UserID             string     `gorm:"column:user_id;type:varchar(36);index:idx_doc_user_status;not null"`
	DocumentName       string     `gorm:"column:document_name;type:varchar(255);not null"`
	DocumentType       string     `gorm:"column:document_type;type:varchar(127)"`
	FileSizeBytes      int64      `gorm:"column:file_size_bytes;not null"`
	FileStorageKey     string     `gorm:"column:file_storage_key;type:varchar(512);not null"`
	SharedLink         *string    `gorm:"column:shared_link;type:varchar(36);uniqueIndex"`
	ShareLinkExpiresAt *time.Time `gorm:"column:share_link_expires_at"`
	ShareViewCount     int        `gorm:"column:share_view_count;default:0;not null"`
	OneTimeView        bool       `gorm:"column:one_time_view;default:false"`
	AllowDownload      bool       `gorm:"column:allow_merchant_download;not null"`
	CustomerUploaded   bool       `gorm:"column:customer_uploaded;default:false"`
	SelfDestructMins   int        `gorm:"column:self_destruct_minutes;default:5"`
	CustomerName       string     `gorm:"column:customer_name;type:varchar(255)"`
	CustomerPhone      *string    `gorm:"column:customer_phone;type:varchar(20)"`
	CustomerEmail      *string    `gorm:"column:customer_email;type:varchar(255)"`
	OrderDetails       *string    `gorm:"column:order_details;type:text"`
	DueDate            *string    `gorm:"column:due_date;type:varchar(32)"`
	Status             string     `gorm:"column:status;type:varchar(16);default:'active';index:idx_doc_user_status;index:idx_doc_status_delete;not null"`
	AutoDeleteAt       time.Time  `gorm:"column:auto_delete_at;index:idx_doc_status_delete;not null"`
	BlobPurged         bool       `gorm:"column:blob_purged;default:false;not null"`
	DeletedAt          *time.Time `gorm:"column:deleted_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	// Relations
	Owner User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE"`
}

func (Document) TableName() string {
	return "documents"
}

// Expired reports whether the share window has closed at now.
func (d *Document) Expired(now time.Time) bool {
	if d.Status != DocumentActive {
		return true
	}
	if d.ShareLinkExpiresAt != nil && !d.ShareLinkExpiresAt.After(now) {
		return true
	}
	return !d.AutoDeleteAt.After(now)
}
