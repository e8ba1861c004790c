package model

import "time"

const (
	OrderCreated = "created"
	OrderPaid    = "paid"
)

type PaymentOrder struct {
	OrderID   string     `gorm:"column:order_id;type:varchar(64);primaryKey"`
	UserID    string     `gorm:"column:user_id;type:varchar(36);index;not null"`
	PlanID    string     `gorm:"column:plan_id;type:varchar(32);not null"`
	Amount    int        `gorm:"column:amount;not null"`
	Currency  string     `gorm:"column:currency;type:varchar(8);not null"`
	Status    string     `gorm:"column:status;type:varchar(16);default:'created';not null"`
	TestMode  bool       `gorm:"column:test_mode;default:false"`
	PaymentID *string    `gorm:"column:payment_id;type:varchar(64)"`
	PaidAt    *time.Time `gorm:"column:paid_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (PaymentOrder) TableName() string {
	return "payment_orders"
}
