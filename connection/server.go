package connection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bharatprint/captcha"
	"bharatprint/config"
	"bharatprint/controller"
	"bharatprint/controller/admin"
	"bharatprint/controller/auth"
	"bharatprint/controller/dashboard"
	"bharatprint/controller/document"
	"bharatprint/controller/referral"
	"bharatprint/controller/subscription"
	"bharatprint/identity"
	"bharatprint/logging"
	"bharatprint/middleware"
	"bharatprint/payment"
	"bharatprint/services"
	"bharatprint/sms"
	"bharatprint/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the opened connections and the services built on them.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	Services *services.Services

	closers []func() error
}

// Open connects the database and every configured provider. Providers
// without credentials are skipped and their features fall back or report
// not configured.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	plans, err := config.LoadPlans()
	if err != nil {
		return nil, err
	}

	db, err := DBConnection(cfg.Database)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger, DB: db}
	if sqlDB, err := db.DB(); err == nil {
		app.closers = append(app.closers, sqlDB.Close)
	}

	svc := &services.Services{
		Config: cfg,
		Plans:  plans,
		Logger: logger,
	}

	fb, err := FBConnection(ctx, cfg.Firebase)
	if err != nil {
		app.Close()
		return nil, err
	}
	if fb != nil {
		app.closers = append(app.closers, fb.Close)
		svc.Verifier = identity.NewFirebaseVerifier(fb.Auth)
		svc.Logins = identity.NewFirestoreLoginRecorder(fb.Firestore)
	} else {
		logger.Warn("Firebase is not configured; firebase sign-in is disabled")
	}
	if fb != nil && fb.Bucket != nil {
		svc.Blobs = storage.NewGCSStore(fb.Bucket)
	} else {
		logger.Warn("No storage bucket configured; documents are kept in memory")
		svc.Blobs = storage.NewMemoryStore()
	}

	if cfg.Clerk.Enabled() {
		svc.Clerk = identity.NewClerkUsers(cfg.Clerk.SecretKey)
	} else {
		logger.Warn("Clerk is not configured; clerk sign-in is disabled")
	}

	svc.Sender = app.sender(ctx)

	if cfg.Razorpay.Enabled() {
		svc.Payments = payment.NewRazorpay(cfg.Razorpay.KeyID, cfg.Razorpay.SecretKey)
	} else {
		logger.Warn("Razorpay is not configured; orders run in test mode")
	}

	if cfg.Captcha.Enabled() {
		verifier, err := captcha.NewEnterprise(ctx, cfg.Captcha.ProjectID, cfg.Captcha.SiteKey, cfg.Captcha.MinScore)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, verifier.Close)
		svc.Captcha = verifier
	}

	app.Services = svc
	return app, nil
}

// sender picks Twilio, then WhatsApp, and always falls back to the log.
func (a *App) sender(ctx context.Context) sms.Sender {
	console := sms.NewConsoleSender(a.Logger)
	cfg := a.Config

	if cfg.Twilio.Enabled() {
		a.Logger.Info("Using Twilio for SMS")
		return sms.NewFallbackSender(sms.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.PhoneNumber, a.Logger), console, a.Logger)
	}
	if cfg.WhatsApp.DatabaseURL != "" {
		client, err := WhatsAppConnection(ctx, cfg.WhatsApp.DatabaseURL, a.Logger)
		if err != nil {
			a.Logger.Error("WhatsApp unavailable, logging messages instead", zap.Error(err))
			return console
		}
		a.closers = append(a.closers, func() error {
			client.Disconnect()
			return nil
		})
		a.Logger.Info("Using WhatsApp for SMS")
		return sms.NewFallbackSender(sms.NewWhatsAppSender(client), console, a.Logger)
	}
	a.Logger.Warn("No SMS provider configured; messages are written to the log")
	return console
}

// Close releases every connection in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Admin-Key"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// NewRouter registers every controller under /api.
func NewRouter(db *gorm.DB, svc *services.Services) (*gin.Engine, error) {
	cfg := svc.Config
	router := gin.New()
	router.MaxMultipartMemory = services.MaxUploadBytes + 1<<20
	router.Use(logging.Middleware(svc.Logger), logging.Recovery(svc.Logger))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	sendLimit, err := middleware.RateLimit(cfg.OTP.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("otp rate limit: %w", err)
	}
	verifyLimit, err := middleware.RateLimit(cfg.OTP.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("otp rate limit: %w", err)
	}

	api := router.Group("/api")
	controller.HealthController(api)

	auth.OTPController(api, db, svc, sendLimit, verifyLimit)
	auth.AuthController(api, db, svc)

	document.DocumentController(api, db, svc)
	dashboard.DashboardController(api, db, svc)
	subscription.SubscriptionController(api, db, svc)
	referral.ReferralController(api, db, svc)

	admin.AdminController(api, db, svc)

	return router, nil
}

// NewServer wraps the router in an http.Server listening on the configured port.
func NewServer(router http.Handler, port string) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
