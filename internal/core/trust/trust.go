// Package trust holds the vendor reputation rules: the initial score per role,
// the weighted update applied on each customer review, the admin override and
// the tiers used for badges, filters and checkout warnings.
//
// Everything here is pure. Callers load the current values, call into this
// package and persist the result.
package trust

import (
	"fmt"
	"math"

	"github.com/freshcart/marketplace/internal/core/domain"
)

const (
	MinScore = 1.0
	MaxScore = 5.0

	vendorInitialScore  = 3.0
	defaultInitialScore = 4.0

	// Weight of the existing score when blending in a new rating.
	historyWeight = 0.7
	ratingWeight  = 0.3

	// Scores below this trigger a warning at checkout.
	lowTrustWarningBelow = 3.0
)

// InitialScore returns the score assigned at registration.
func InitialScore(role domain.Role) float64 {
	if role == domain.RoleVendor {
		return vendorInitialScore
	}
	return defaultInitialScore
}

// ReviewOutcome is the value pair to persist after a review.
type ReviewOutcome struct {
	NewScore       float64
	NewReviewCount int
}

// RecordReview folds a 1..5 rating into the vendor's score. The first review
// replaces the score outright; later ones move it by an exponentially weighted
// average.
func RecordReview(current float64, reviewCount, rating int) (ReviewOutcome, error) {
	if err := ValidateRating(rating); err != nil {
		return ReviewOutcome{}, err
	}
	if reviewCount < 0 {
		reviewCount = 0
	}

	next := float64(rating)
	if reviewCount > 0 {
		next = current*historyWeight + float64(rating)*ratingWeight
	}

	return ReviewOutcome{
		NewScore:       Round(next),
		NewReviewCount: reviewCount + 1,
	}, nil
}

// ValidateRating rejects ratings outside 1..5.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidRating, rating)
	}
	return nil
}

// ApplyAdminAdjustment nudges a score by one step, clamped to [1, 5].
func ApplyAdminAdjustment(current float64, delta int) (float64, error) {
	if delta != -1 && delta != 1 {
		return current, fmt.Errorf("%w: got %d", domain.ErrInvalidAdjustment, delta)
	}
	return Round(Clamp(current + float64(delta))), nil
}

// Round rounds to one decimal place.
func Round(score float64) float64 {
	return math.Round(score*10) / 10
}

// Clamp bounds a score to [MinScore, MaxScore]. NaN clamps to MinScore.
func Clamp(score float64) float64 {
	if math.IsNaN(score) {
		return MinScore
	}
	return math.Min(MaxScore, math.Max(MinScore, score))
}

// ValidScore reports whether score lies within [MinScore, MaxScore].
func ValidScore(score float64) bool {
	return score >= MinScore && score <= MaxScore
}

// NeedsLowTrustWarning reports whether checkout should warn about the vendor.
func NeedsLowTrustWarning(score float64) bool {
	return score < lowTrustWarningBelow
}

// CanPerformAction gates trust-restricted features.
func CanPerformAction(score, required float64) bool {
	return score >= required
}
