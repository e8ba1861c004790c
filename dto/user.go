package dto

import (
	"time"

	"bharatprint/model"
)

type UserProfile struct {
	ID                   string     `json:"id"`
	PhoneNumber          string     `json:"phoneNumber"`
	OwnerName            string     `json:"ownerName"`
	ShopName             string     `json:"shopName"`
	City                 string     `json:"city"`
	State                string     `json:"state"`
	Pincode              *string    `json:"pincode"`
	ReferralCode         string     `json:"referralCode"`
	OnboardingCompleted  bool       `json:"onboardingCompleted"`
	SubscriptionStatus   string     `json:"subscriptionStatus"`
	MonthlyUploadLimit   int        `json:"monthlyUploadLimit"`
	UploadsUsedThisMonth int        `json:"uploadsUsedThisMonth"`
	TrialEndsAt          *time.Time `json:"trialEndsAt"`
}

func NewUserProfile(u *model.User) UserProfile {
	return UserProfile{
		ID:                   u.ID,
		PhoneNumber:          u.PhoneNumber,
		OwnerName:            u.OwnerName,
		ShopName:             u.ShopName,
		City:                 u.City,
		State:                u.State,
		Pincode:              u.Pincode,
		ReferralCode:         u.ReferralCode,
		OnboardingCompleted:  u.OnboardingCompleted,
		SubscriptionStatus:   u.SubscriptionStatus,
		MonthlyUploadLimit:   u.MonthlyUploadLimit,
		UploadsUsedThisMonth: u.UploadsUsedThisMonth,
		TrialEndsAt:          u.TrialEndsAt,
	}
}
