package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bharatprint/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLeaderboardLimit = 100
	MaxLeaderboardLimit     = 500
)

// ApplyReferral records that referee signed up with code. The referral
// stays pending until the referee pays for a plan.
func (s *Services) ApplyReferral(db *gorm.DB, referee *model.User, code string) (*model.Referral, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	referrer, err := GetUserByMerchantCode(db, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferralNotFound
		}
		return nil, err
	}
	if referrer.ID == referee.ID {
		return nil, ErrSelfReferral
	}

	var count int64
	if err := db.Model(&model.Referral{}).Where("referee_id = ?", referee.ID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyReferred
	}

	ref := &model.Referral{
		ID:           uuid.NewString(),
		ReferrerID:   referrer.ID,
		RefereeID:    referee.ID,
		Status:       model.ReferralPending,
		RewardRupees: model.ReferralRewardRupees,
	}
	if err := db.Create(ref).Error; err != nil {
		// referee_id is unique; a parallel claim may have landed first.
		var existing int64
		db.Model(&model.Referral{}).Where("referee_id = ?", referee.ID).Count(&existing)
		if existing > 0 {
			return nil, ErrAlreadyReferred
		}
		return nil, fmt.Errorf("create referral: %w", err)
	}
	return ref, nil
}

// ReferralSummary aggregates the referrals a merchant has made.
type ReferralSummary struct {
	Referrals []model.Referral

	Total, Pending, Earned, Claimed int

	TotalRupees, PendingRupees, ClaimedRupees int
}

func (s *Services) ReferralSummary(db *gorm.DB, referrerID string) (*ReferralSummary, error) {
	var refs []model.Referral
	if err := db.Preload("Referee").Where("referrer_id = ?", referrerID).
		Order("created_at DESC").Find(&refs).Error; err != nil {
		return nil, err
	}

	sum := &ReferralSummary{Referrals: refs, Total: len(refs)}
	for _, r := range refs {
		switch r.Status {
		case model.ReferralPending:
			sum.Pending++
			sum.PendingRupees += r.RewardRupees
		case model.ReferralEarned:
			sum.Earned++
			sum.TotalRupees += r.RewardRupees
		case model.ReferralClaimed:
			sum.Claimed++
			sum.TotalRupees += r.RewardRupees
			sum.ClaimedRupees += r.RewardRupees
		}
	}
	return sum, nil
}

// LeaderboardEntry is one ranked merchant.
type LeaderboardEntry struct {
	Rank              int    `json:"rank"`
	UserID            string `json:"userId"`
	ShopName          string `json:"shopName"`
	City              string `json:"city"`
	ReferralCount     int    `json:"referralCount"`
	TotalRewards      int    `json:"totalRewards"`
	DocumentsUploaded int    `json:"documentsUploaded"`
	TotalViews        int    `json:"totalViews"`
}

type referralAgg struct {
	ReferrerID string
	Count      int
	Rewards    int
}

type viewAgg struct {
	UserID string
	Views  int
}

// Leaderboard ranks onboarded merchants, optionally within one city, by
// referral count, then documents uploaded, then total views.
func (s *Services) Leaderboard(db *gorm.DB, city string) ([]LeaderboardEntry, error) {
	q := db.Model(&model.User{}).Where("onboarding_completed = ?", true)
	if city = strings.TrimSpace(city); city != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	var users []model.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []LeaderboardEntry{}, nil
	}
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	var refs []referralAgg
	if err := db.Model(&model.Referral{}).
		Select("referrer_id, COUNT(*) AS count, COALESCE(SUM(CASE WHEN status <> ? THEN reward_rupees ELSE 0 END), 0) AS rewards", model.ReferralPending).
		Where("referrer_id IN ?", ids).
		Group("referrer_id").
		Scan(&refs).Error; err != nil {
		return nil, err
	}
	var views []viewAgg
	if err := db.Model(&model.Document{}).
		Select("user_id, COALESCE(SUM(share_view_count), 0) AS views").
		Where("user_id IN ?", ids).
		Group("user_id").
		Scan(&views).Error; err != nil {
		return nil, err
	}

	refByUser := make(map[string]referralAgg, len(refs))
	for _, r := range refs {
		refByUser[r.ReferrerID] = r
	}
	viewsByUser := make(map[string]int, len(views))
	for _, v := range views {
		viewsByUser[v.UserID] = v.Views
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			UserID:            u.ID,
			ShopName:          u.ShopName,
			City:              u.City,
			ReferralCount:     refByUser[u.ID].Count,
			TotalRewards:      refByUser[u.ID].Rewards,
			DocumentsUploaded: u.DocumentsUploaded,
			TotalViews:        viewsByUser[u.ID],
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ReferralCount != b.ReferralCount {
			return a.ReferralCount > b.ReferralCount
		}
		if a.DocumentsUploaded != b.DocumentsUploaded {
			return a.DocumentsUploaded > b.DocumentsUploaded
		}
		if a.TotalViews != b.TotalViews {
			return a.TotalViews > b.TotalViews
		}
		return a.UserID < b.UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// RankOf returns the caller's rank within entries, or nil.
func RankOf(entries []LeaderboardEntry, userID string) *int {
	for _, e := range entries {
		if e.UserID == userID {
			rank := e.Rank
			return &rank
		}
	}
	return nil
}
