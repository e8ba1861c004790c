package dto

type SendOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Name        string `json:"name"`
}

// VerifyOTPRequest accepts the code as either otpCode or otp.
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTPCode     string `json:"otpCode"`
	OTP         string `json:"otp"`
	Name        string `json:"name"`
}

func (r VerifyOTPRequest) Code() string {
	if r.OTPCode != "" {
		return r.OTPCode
	}
	return r.OTP
}

type FirebaseTokenRequest struct {
	IDToken     string `json:"idToken" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Name        string `json:"name"`
}

type ClerkTokenRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	ClerkUserID string `json:"clerkUserId"`
	Name        string `json:"name"`
}

type RegisterRequest struct {
	Name             string `json:"name" binding:"required"`
	ShopName         string `json:"shopName" binding:"required"`
	City             string `json:"city" binding:"required"`
	State            string `json:"state"`
	Pincode          string `json:"pincode"`
	BusinessCategory string `json:"businessCategory"`
	ReferralCode     string `json:"referralCode"`
}

type AuthResponse struct {
	Success   bool        `json:"success"`
	Token     string      `json:"token"`
	IsNewUser bool        `json:"isNewUser"`
	User      UserProfile `json:"user"`
}
