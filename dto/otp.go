package dto

type SendOTPResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ExpiresIn   int    `json:"expiresIn"`
	PhoneNumber string `json:"phoneNumber"`
	// DevOTP is only populated in dev mode.
	DevOTP string `json:"devOtp,omitempty"`
}
