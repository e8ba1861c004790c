package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the API. Values come from the
// process environment, optionally seeded from a local .env file.
type Config struct {
	Port          string
	GinMode       string
	DevMode       bool
	LogLevel      string
	PublicBaseURL string
	CORSOrigins   []string

	Database DatabaseConfig
	JWT      JWTConfig
	OTP      OTPConfig
	Twilio   TwilioConfig
	WhatsApp WhatsAppConfig
	Razorpay RazorpayConfig
	Firebase FirebaseConfig
	Clerk    ClerkConfig
	Captcha  CaptchaConfig

	AdminAPIKey string
}

type DatabaseConfig struct {
	Driver string // mysql or sqlite
	DSN    string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type OTPConfig struct {
	TTL         time.Duration
	MaxAttempts int
	RateLimit   string // ulule/limiter format, e.g. "5-M"
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

// Enabled reports whether all Twilio credentials are present.
func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.PhoneNumber != ""
}

type WhatsAppConfig struct {
	DatabaseURL string
}

type RazorpayConfig struct {
	KeyID     string
	SecretKey string
}

func (r RazorpayConfig) Enabled() bool {
	return r.KeyID != "" && r.SecretKey != ""
}

type FirebaseConfig struct {
	CredentialsPath string
	StorageBucket   string
}

type ClerkConfig struct {
	SecretKey string
}

// Enabled reports whether Clerk sign-in can verify users server side.
func (c ClerkConfig) Enabled() bool {
	return c.SecretKey != ""
}

type CaptchaConfig struct {
	ProjectID string
	SiteKey   string
	MinScore  float32
}

func (c CaptchaConfig) Enabled() bool {
	return c.ProjectID != "" && c.SiteKey != ""
}

const defaultJWTSecret = "your-secret-key-change-this-in-production"

// Load reads .env (when present) and the environment into a Config.
func Load() (*Config, error) {
	// .env is optional; deployments set real environment variables.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8001"),
		GinMode:       getEnv("GIN_MODE", "release"),
		DevMode:       getBool("DEV_MODE", false),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "https://bharatprint.app"), "/"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:    getEnv("DB_DSN", "file:bharatprint.db?cache=shared"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", defaultJWTSecret),
		},
		OTP: OTPConfig{
			TTL:         10 * time.Minute,
			MaxAttempts: 5,
			RateLimit:   getEnv("OTP_RATE_LIMIT", "5-M"),
		},
		Twilio: TwilioConfig{
			AccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
			PhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		},
		WhatsApp: WhatsAppConfig{
			DatabaseURL: os.Getenv("WHATSAPP_DB_URL"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     os.Getenv("RAZORPAY_KEY_ID"),
			SecretKey: os.Getenv("RAZORPAY_SECRET_KEY"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
			StorageBucket:   os.Getenv("FIREBASE_STORAGE_BUCKET"),
		},
		Clerk: ClerkConfig{
			SecretKey: os.Getenv("CLERK_SECRET_KEY"),
		},
		Captcha: CaptchaConfig{
			ProjectID: os.Getenv("RECAPTCHA_PROJECT_ID"),
			SiteKey:   os.Getenv("RECAPTCHA_SITE_KEY"),
		},
		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),
	}

	days, err := getInt("JWT_EXPIRATION_DAYS", 30)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRATION_DAYS must be positive, got %d", days)
	}
	cfg.JWT.Expiration = time.Duration(days) * 24 * time.Hour

	score, err := strconv.ParseFloat(getEnv("RECAPTCHA_MIN_SCORE", "0.5"), 32)
	if err != nil {
		return nil, fmt.Errorf("invalid RECAPTCHA_MIN_SCORE: %w", err)
	}
	cfg.Captcha.MinScore = float32(score)

	switch cfg.Database.Driver {
	case "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	if cfg.JWT.Secret == defaultJWTSecret && !cfg.DevMode {
		fmt.Println("Warning: JWT_SECRET is not set, using the development default")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
