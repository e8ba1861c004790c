package services

import "errors"

var (
	ErrLimitReached      = errors.New("Monthly upload limit reached. Please upgrade your plan.")
	ErrFileTooLarge      = errors.New("File too large. Maximum size is 50MB")
	ErrTimerNotAllowed   = errors.New("Delete timer not available on your plan")
	ErrDocumentNotFound  = errors.New("Document not found or expired")
	ErrDocumentExpired   = errors.New("Document has expired")
	ErrOneTimeConsumed   = errors.New("Document was a one-time view and has been accessed")
	ErrDownloadForbidden = errors.New("Download not allowed for this document")

	ErrReferralNotFound = errors.New("Referral code not found")
	ErrSelfReferral     = errors.New("You cannot use your own referral code")
	ErrAlreadyReferred  = errors.New("You have already used a referral code")

	ErrAlreadySubscribed = errors.New("Already on trial or paid plan")
	ErrTrialUsed         = errors.New("Trial already used")
	ErrOrderNotFound     = errors.New("Order not found")
)
