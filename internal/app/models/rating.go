package models

import (
	"math"
	"time"
)

// TrustTier is the coarse bucket derived from a mentor's average rating.
type TrustTier string

const (
	TrustLow    TrustTier = "low"
	TrustMedium TrustTier = "medium"
	TrustHigh   TrustTier = "high"
)

// Valid reports whether t is a known tier.
func (t TrustTier) Valid() bool {
	return t == TrustLow || t == TrustMedium || t == TrustHigh
}

const (
	// MinRating and MaxRating bound a single rating value.
	MinRating = 1
	MaxRating = 5

	// Synthetic vote every mentor starts with.
	SeedRatingSum   = 50
	SeedRatingCount = 1
	SeedTrustScore  = 50

	// DefaultRatingCooldown is the minimum interval between two ratings
	// from the same rater to the same mentor.
	DefaultRatingCooldown = 7 * 24 * time.Hour
)

// RatingSummary is a mentor's running rating accumulator and the values
// derived from it.
type RatingSummary struct {
	Sum        int       `json:"sum"`
	Count      int       `json:"count"`
	Avg        float64   `json:"avg"`
	Tier       TrustTier `json:"tier"`
	TrustScore int       `json:"trustScore"`
}

// SeedRatingSummary is the summary a new mentor account starts with. The
// tier is pinned to medium rather than derived from the seed average, so an
// unrated mentor is never listed as high trust.
func SeedRatingSummary() RatingSummary {
	return RatingSummary{
		Sum:        SeedRatingSum,
		Count:      SeedRatingCount,
		Avg:        RoundOneDecimal(float64(SeedRatingSum) / float64(SeedRatingCount)),
		Tier:       TrustMedium,
		TrustScore: SeedTrustScore,
	}
}

// TierFor buckets an average: below 2 is low, below 4 is medium, else high.
func TierFor(avg float64) TrustTier {
	switch {
	case avg < 2:
		return TrustLow
	case avg < 4:
		return TrustMedium
	default:
		return TrustHigh
	}
}

// RoundOneDecimal rounds half away from zero to one decimal place.
func RoundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

// TrustScoreFor maps an average on the 1-5 scale to a 0-100 style score.
func TrustScoreFor(avg float64) int {
	return int(math.Round(avg / MaxRating * 100))
}

// Add returns the summary after accepting one more rating value. The tier
// is derived from the rounded average so it always agrees with Avg.
func (s RatingSummary) Add(value int) RatingSummary {
	sum := s.Sum + value
	count := s.Count + 1
	avg := RoundOneDecimal(float64(sum) / float64(count))
	return RatingSummary{
		Sum:        sum,
		Count:      count,
		Avg:        avg,
		Tier:       TierFor(avg),
		TrustScore: TrustScoreFor(avg),
	}
}

// RatingRecord is one rater's last rating of one mentor.
type RatingRecord struct {
	MentorID    string    `json:"mentorId"`
	RaterID     string    `json:"raterId"`
	LastValue   int       `json:"lastValue"`
	LastRatedAt time.Time `json:"lastRatedAt"`
}

// NextAllowedAt is the earliest time the same rater may rate again.
func (r *RatingRecord) NextAllowedAt(cooldown time.Duration) time.Time {
	return r.LastRatedAt.Add(cooldown)
}

// InCooldown reports whether now is before the next allowed rating time.
func (r *RatingRecord) InCooldown(now time.Time, cooldown time.Duration) bool {
	if r == nil {
		return false
	}
	return now.Before(r.NextAllowedAt(cooldown))
}
