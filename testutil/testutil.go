// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"bharatprint/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Shared-cache SQLite reports table locks instead of waiting on them.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// CreateUser inserts an onboarded free-plan merchant.
func CreateUser(t testing.TB, db *gorm.DB, phone string, mutate ...func(*model.User)) *model.User {
	t.Helper()
	user := &model.User{
		ID:                  uuid.NewString(),
		PhoneNumber:         phone,
		OwnerName:           "Owner " + phone[len(phone)-4:],
		PhoneVerified:       true,
		ShopName:            "Shop " + phone[len(phone)-4:],
		City:                "Guwahati",
		State:               "Assam",
		BusinessCategory:    "print_shop",
		ReferralCode:        "BP_" + phone[len(phone)-4:] + "1000",
		SubscriptionStatus:  model.SubscriptionFree,
		MonthlyUploadLimit:  20,
		OnboardingCompleted: true,
	}
	for _, m := range mutate {
		m(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
