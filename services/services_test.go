package services

import (
	"testing"
	"time"

	"bharatprint/config"
	"bharatprint/storage"
	"bharatprint/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Services
	db    *gorm.DB
	blobs *storage.MemoryStore
	clock *testutil.Clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	plans, err := config.LoadPlans()
	require.NoError(t, err)

	clock := testutil.NewClock(testNow)
	blobs := storage.NewMemoryStore()
	svc := &Services{
		Config: &config.Config{PublicBaseURL: "https://bharatprint.test"},
		Plans:  plans,
		Logger: zap.NewNop(),
		Blobs:  blobs,
		Clock:  clock.Now,
	}
	return &fixture{svc: svc, db: testutil.NewDB(t), blobs: blobs, clock: clock}
}
