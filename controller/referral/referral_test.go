package referral

import (
	"net/http"
	"strings"
	"testing"

	"bharatprint/controller/controllertest"
	"bharatprint/model"
	"bharatprint/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *controllertest.Env {
	env := controllertest.New(t)
	ReferralController(env.API, env.DB, env.Svc)
	return env
}

func TestClaimAndMyCode(t *testing.T) {
	env := setup(t)
	referrer := testutil.CreateUser(t, env.DB, "+919000000001")
	referee := testutil.CreateUser(t, env.DB, "+919000000002")
	refereeToken := env.Token(t, referee)

	claim := func(token, code string) int {
		return env.Do(t, http.MethodPost, "/api/referrals/claim", token, map[string]string{"referralCode": code}).Code
	}
	assert.Equal(t, http.StatusBadRequest, env.Do(t, http.MethodPost, "/api/referrals/claim", refereeToken, map[string]string{}).Code)
	assert.Equal(t, http.StatusNotFound, claim(refereeToken, "BP_NOPE"))
	assert.Equal(t, http.StatusBadRequest, claim(refereeToken, referee.ReferralCode))
	assert.Equal(t, http.StatusOK, claim(refereeToken, referrer.ReferralCode))
	assert.Equal(t, http.StatusConflict, claim(refereeToken, referrer.ReferralCode))

	w := env.Do(t, http.MethodGet, "/api/referrals/my-code", env.Token(t, referrer), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := controllertest.Decode(t, w)["referral"].(map[string]interface{})
	assert.Equal(t, referrer.ReferralCode, body["code"])
	assert.Equal(t, "https://bharatprint.test/upload/"+referrer.ReferralCode, body["referralLink"])
	assert.True(t, strings.HasPrefix(body["qrCode"].(string), "data:image/png;base64,"))

	counts := body["referralsCount"].(map[string]interface{})
	assert.EqualValues(t, 1, counts["total"])
	assert.EqualValues(t, 1, counts["pending"])
	rewards := body["rewardsEarned"].(map[string]interface{})
	assert.EqualValues(t, 500, rewards["pendingRupees"])

	refs := body["referrals"].([]interface{})
	require.Len(t, refs, 1)
	item := refs[0].(map[string]interface{})
	assert.Equal(t, referee.ShopName, item["shopName"])
	assert.EqualValues(t, 500, item["rewardAmount"])
}

func TestLeaderboard(t *testing.T) {
	env := setup(t)
	leader := testutil.CreateUser(t, env.DB, "+919000000001")
	me := testutil.CreateUser(t, env.DB, "+919000000002")
	away := testutil.CreateUser(t, env.DB, "+919000000003", func(u *model.User) { u.City = "Shillong" })

	_, err := env.Svc.ApplyReferral(env.DB, away, leader.ReferralCode)
	require.NoError(t, err)
	token := env.Token(t, me)

	w := env.Do(t, http.MethodGet, "/api/leaderboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := controllertest.Decode(t, w)
	entries := body["leaderboard"].([]interface{})
	require.Len(t, entries, 3)
	first := entries[0].(map[string]interface{})
	assert.Equal(t, leader.ID, first["userId"])
	assert.EqualValues(t, 1, first["rank"])
	assert.EqualValues(t, 1, first["referralCount"])
	rank := body["yourRank"].(map[string]interface{})
	assert.Contains(t, rank, "global")
	assert.NotContains(t, rank, "city")

	w = env.Do(t, http.MethodGet, "/api/leaderboard?limit=1", token, nil)
	body = controllertest.Decode(t, w)
	require.Len(t, body["leaderboard"], 1)
	assert.Contains(t, body["yourRank"], "global")

	w = env.Do(t, http.MethodGet, "/api/leaderboard?city=Shillong", token, nil)
	body = controllertest.Decode(t, w)
	assert.Equal(t, "Shillong", body["city"])
	require.Len(t, body["leaderboard"], 1)
	rank = body["yourRank"].(map[string]interface{})
	assert.Contains(t, rank, "global")
	assert.Nil(t, rank["city"])

	w = env.Do(t, http.MethodGet, "/api/leaderboard?city=Guwahati", token, nil)
	body = controllertest.Decode(t, w)
	require.Len(t, body["leaderboard"], 2)
	rank = body["yourRank"].(map[string]interface{})
	assert.NotNil(t, rank["city"])

	w = env.Do(t, http.MethodGet, "/api/leaderboard?limit=zero", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Do(t, http.MethodGet, "/api/leaderboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
