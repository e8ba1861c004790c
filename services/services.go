// Package services holds the collaborators shared by every controller and
// the domain operations that are reused across HTTP handlers and jobs.
package services

import (
	"time"

	"bharatprint/captcha"
	"bharatprint/config"
	"bharatprint/identity"
	"bharatprint/payment"
	"bharatprint/sms"
	"bharatprint/storage"

	"go.uber.org/zap"
)

type Services struct {
	Config *config.Config
	Plans  *config.PlanCatalog
	Logger *zap.Logger
	Blobs  storage.BlobStore
	Sender sms.Sender

	// Optional providers; nil means the provider is not configured.
	Verifier identity.TokenVerifier
	Clerk    identity.ClerkDirectory
	Logins   identity.LoginRecorder
	Payments payment.Gateway
	Captcha  captcha.Verifier

	Clock func() time.Time
}

// Now returns the current time in UTC, honouring an injected clock.
func (s *Services) Now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Services) ViewURL(shareLink string) string {
	return s.Config.PublicBaseURL + "/view/" + shareLink
}

func (s *Services) UploadPortalURL(merchantCode string) string {
	return s.Config.PublicBaseURL + "/upload/" + merchantCode
}
