package model

import (
	"time"
)

const (
	SubscriptionFree      = "free"
	SubscriptionTrial     = "trial"
	SubscriptionUnlimited = "unlimited"
)

type User struct {
	ID                    string     `gorm:"column:id;type:varchar(36);primaryKey"`
	PhoneNumber           string     `gorm:"column:phone_number;type:varchar(20);uniqueIndex;not null"`
	OwnerName             string     `gorm:"column:owner_name;type:varchar(255)"`
	PhoneVerified         bool       `gorm:"column:phone_verified;default:false"`
	FirebaseUID           *string    `gorm:"column:firebase_uid;type:varchar(128)"`
	ClerkUserID           *string    `gorm:"column:clerk_user_id;type:varchar(128)"`
	ShopName              string     `gorm:"column:shop_name;type:varchar(255)"`
	City                  string     `gorm:"column:city;type:varchar(100);index"`
	State                 string     `gorm:"column:state;type:varchar(100);default:'Assam'"`
	Pincode               *string    `gorm:"column:pincode;type:varchar(10)"`
	BusinessCategory      string     `gorm:"column:business_category;type:varchar(50);default:'print_shop'"`
	ReferralCode          string     `gorm:"column:referral_code;type:varchar(20);uniqueIndex;not null"`
	DocumentsUploaded     int        `gorm:"column:documents_uploaded;default:0;not null"`
	SubscriptionStatus    string     `gorm:"column:subscription_status;type:varchar(20);default:'free';index;not null"`
	MonthlyUploadLimit    int        `gorm:"column:monthly_upload_limit;default:20;not null"`
	UploadsUsedThisMonth  int        `gorm:"column:uploads_used_this_month;default:0;not null"`
	OnboardingCompleted   bool       `gorm:"column:onboarding_completed;default:false"`
	TrialStartedAt        *time.Time `gorm:"column:trial_started_at"`
	TrialEndsAt           *time.Time `gorm:"column:trial_ends_at"`
	SubscriptionPaymentID *string    `gorm:"column:subscription_payment_id;type:varchar(64)"`
	SubscriptionStartedAt *time.Time `gorm:"column:subscription_started_at"`
	LastLogin             *time.Time `gorm:"column:last_login"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// RemainingUploads never goes below zero.
func (u *User) RemainingUploads() int {
	if r := u.MonthlyUploadLimit - u.UploadsUsedThisMonth; r > 0 {
		return r
	}
	return 0
}

func (u *User) IsPaid() bool {
	return u.SubscriptionStatus == SubscriptionTrial || u.SubscriptionStatus == SubscriptionUnlimited
}
