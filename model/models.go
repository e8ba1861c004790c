package model

// AllModels lists every table migrated at startup.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&OTPRecord{},
		&Document{},
		&Referral{},
		&PaymentOrder{},
	}
}
