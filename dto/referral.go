package dto

type ClaimReferralRequest struct {
	ReferralCode string `json:"referralCode" binding:"required"`
}
