package model

import "time"

const (
	ReferralPending = "pending"
	ReferralEarned  = "earned"
	ReferralClaimed = "claimed"

	ReferralRewardRupees = 500
)

type Referral struct {
	ID           string    `gorm:"column:id;type:varchar(36);primaryKey"`
	ReferrerID   string    `gorm:"column:referrer_id;type:varchar(36);index;not null"`
	RefereeID    string    `gorm:"column:referee_id;type:varchar(36);uniqueIndex;not null"`
	Status       string    `gorm:"column:status;type:varchar(16);default:'pending';not null"`
	RewardRupees int       `gorm:"column:reward_rupees;default:500;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relations
	Referrer User `gorm:"foreignKey:ReferrerID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE"`
	Referee  User `gorm:"foreignKey:RefereeID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE"`
}

func (Referral) TableName() string {
	return "referrals"
}
