package services

import (
	"context"
	"testing"

	"bharatprint/model"
	"bharatprint/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyReferral(t *testing.T) {
	f := newFixture(t)
	referrer := testutil.CreateUser(t, f.db, "+919000000001")
	referee := testutil.CreateUser(t, f.db, "+919000000002")

	_, err := f.svc.ApplyReferral(f.db, referee, "BP_NOPE0000")
	assert.ErrorIs(t, err, ErrReferralNotFound)

	_, err = f.svc.ApplyReferral(f.db, referrer, referrer.ReferralCode)
	assert.ErrorIs(t, err, ErrSelfReferral)

	ref, err := f.svc.ApplyReferral(f.db, referee, " "+referrer.ReferralCode+" ")
	require.NoError(t, err)
	assert.Equal(t, referrer.ID, ref.ReferrerID)
	assert.Equal(t, model.ReferralPending, ref.Status)
	assert.Equal(t, 500, ref.RewardRupees)

	_, err = f.svc.ApplyReferral(f.db, referee, referrer.ReferralCode)
	assert.ErrorIs(t, err, ErrAlreadyReferred)
}

func TestReferralSummary(t *testing.T) {
	f := newFixture(t)
	referrer := testutil.CreateUser(t, f.db, "+919000000001")
	a := testutil.CreateUser(t, f.db, "+919000000002")
	b := testutil.CreateUser(t, f.db, "+919000000003")

	_, err := f.svc.ApplyReferral(f.db, a, referrer.ReferralCode)
	require.NoError(t, err)
	_, err = f.svc.ApplyReferral(f.db, b, referrer.ReferralCode)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&model.Referral{}).Where("referee_id = ?", b.ID).
		Update("status", model.ReferralEarned).Error)

	sum, err := f.svc.ReferralSummary(f.db, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Pending)
	assert.Equal(t, 1, sum.Earned)
	assert.Equal(t, 500, sum.TotalRupees)
	assert.Equal(t, 500, sum.PendingRupees)
	assert.Zero(t, sum.ClaimedRupees)
	require.Len(t, sum.Referrals, 2)
	assert.NotEmpty(t, sum.Referrals[0].Referee.ShopName)
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	top := testutil.CreateUser(t, f.db, "+919000000001")
	second := testutil.CreateUser(t, f.db, "+919000000002", func(u *model.User) { u.DocumentsUploaded = 4 })
	third := testutil.CreateUser(t, f.db, "+919000000003", func(u *model.User) { u.DocumentsUploaded = 3 })
	other := testutil.CreateUser(t, f.db, "+919000000004", func(u *model.User) { u.City = "Shillong" })
	testutil.CreateUser(t, f.db, "+919000000005", func(u *model.User) { u.OnboardingCompleted = false })

	_, err := f.svc.ApplyReferral(f.db, other, top.ReferralCode)
	require.NoError(t, err)

	// The upload brings third level with second on documents; views break the tie.
	doc, err := f.svc.CreateDocument(ctx, f.db, third, upload("a.pdf"))
	require.NoError(t, err)
	_, err = f.svc.RevealSharedDocument(f.db, *doc.SharedLink)
	require.NoError(t, err)

	entries, err := f.svc.Leaderboard(f.db, "")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, top.ID, entries[0].UserID)
	assert.Equal(t, 1, entries[0].ReferralCount)
	assert.Zero(t, entries[0].TotalRewards)
	assert.Equal(t, third.ID, entries[1].UserID)
	assert.Equal(t, 1, entries[1].TotalViews)
	assert.Equal(t, second.ID, entries[2].UserID)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}

	rank := RankOf(entries, second.ID)
	require.NotNil(t, rank)
	assert.Equal(t, 3, *rank)

	local, err := f.svc.Leaderboard(f.db, "shillong")
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.Equal(t, other.ID, local[0].UserID)
	assert.Nil(t, RankOf(local, top.ID))
}
