package services

import (
	"testing"
	"time"

	"bharatprint/model"
	"bharatprint/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTrial(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "+919000000001")

	require.NoError(t, f.svc.StartTrial(f.db, user))
	assert.Equal(t, model.SubscriptionTrial, user.SubscriptionStatus)
	require.NotNil(t, user.TrialEndsAt)
	assert.Equal(t, testNow.AddDate(0, 0, 7), *user.TrialEndsAt)

	got, err := GetUserByID(f.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 999999, got.MonthlyUploadLimit)

	assert.ErrorIs(t, f.svc.StartTrial(f.db, got), ErrAlreadySubscribed)

	// Back on free after the trial ran out, the trial cannot be reused.
	require.NoError(t, f.db.Model(got).Update("subscription_status", model.SubscriptionFree).Error)
	got.SubscriptionStatus = model.SubscriptionFree
	assert.ErrorIs(t, f.svc.StartTrial(f.db, got), ErrTrialUsed)
}

func TestTestOrderID(t *testing.T) {
	id, err := TestOrderID()
	require.NoError(t, err)
	assert.Regexp(t, `^order_[0-9a-f]{12}$`, id)
}

func TestActivateSubscription(t *testing.T) {
	f := newFixture(t)
	referrer := testutil.CreateUser(t, f.db, "+919000000001")
	user := testutil.CreateUser(t, f.db, "+919000000002")
	_, err := f.svc.ApplyReferral(f.db, user, referrer.ReferralCode)
	require.NoError(t, err)

	order := &model.PaymentOrder{OrderID: "order_abc", UserID: user.ID, PlanID: "plan_unlimited", Amount: 25000, Currency: "INR", Status: model.OrderCreated}
	require.NoError(t, f.db.Create(order).Error)

	assert.ErrorIs(t, f.svc.ActivateSubscription(f.db, referrer.ID, "order_abc", "pay_1"), ErrOrderNotFound)
	require.NoError(t, f.svc.ActivateSubscription(f.db, user.ID, "order_abc", "pay_1"))

	got, err := GetUserByID(f.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionUnlimited, got.SubscriptionStatus)
	require.NotNil(t, got.SubscriptionPaymentID)
	assert.Equal(t, "pay_1", *got.SubscriptionPaymentID)

	var stored model.PaymentOrder
	require.NoError(t, f.db.First(&stored, "order_id = ?", "order_abc").Error)
	assert.Equal(t, model.OrderPaid, stored.Status)

	var ref model.Referral
	require.NoError(t, f.db.First(&ref, "referee_id = ?", user.ID).Error)
	assert.Equal(t, model.ReferralEarned, ref.Status)
}

func TestTrialEndsIn(t *testing.T) {
	ends := testNow.Add(72*time.Hour + time.Minute)
	assert.Equal(t, 3, TrialEndsIn(&model.User{TrialEndsAt: &ends}, testNow))
	assert.Zero(t, TrialEndsIn(&model.User{}, testNow))
}
