package model

import "time"

type OTPRecord struct {
	ID          string     `gorm:"column:id;type:varchar(36);primaryKey"`
	PhoneNumber string     `gorm:"column:phone_number;type:varchar(20);index:idx_otp_phone_sent;not null"`
	OTPHash     string     `gorm:"column:otp_hash;type:varchar(100);not null"`
	OTPCode     *string    `gorm:"column:otp_code;type:varchar(6)"` // dev mode only
	Attempts    int        `gorm:"column:attempts;default:0;not null"`
	SentAt      time.Time  `gorm:"column:sent_at;index:idx_otp_phone_sent;not null"`
	ExpiresAt   time.Time  `gorm:"column:expires_at;not null"`
	VerifiedAt  *time.Time `gorm:"column:verified_at"`
}

func (OTPRecord) TableName() string {
	return "otps"
}

// LoginRecord mirrors a successful sign-in into Firestore collection "usersLogin".
type LoginRecord struct {
	PhoneNumber string    `firestore:"phone_number"`
	UserID      string    `firestore:"user_id"`
	Method      string    `firestore:"method"`
	IsNewUser   bool      `firestore:"is_new_user"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}
