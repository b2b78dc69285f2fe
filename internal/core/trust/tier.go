package trust

import "math"

// Tier is the discrete trust band shown as a badge.
type Tier string

const (
	LowTrust      Tier = "low_trust"
	ModerateTrust Tier = "moderate_trust"
	Trusted       Tier = "trusted"
	HighlyTrusted Tier = "highly_trusted"
)

// Classify maps a score onto its tier. Bands are closed at the bottom.
func Classify(score float64) Tier {
	switch {
	case score >= 4.5:
		return HighlyTrusted
	case score >= 3.5:
		return Trusted
	case score >= 2.5:
		return ModerateTrust
	default:
		return LowTrust
	}
}

// Label is the human-readable badge text.
func (t Tier) Label() string {
	switch t {
	case HighlyTrusted:
		return "Highly Trusted"
	case Trusted:
		return "Trusted"
	case ModerateTrust:
		return "Moderate Trust"
	default:
		return "Low Trust"
	}
}

var levelDescriptions = [...]string{
	1: "New user - Limited access",
	2: "Basic user - Standard access",
	3: "Verified user - Enhanced access",
	4: "Trusted user - Premium access",
	5: "Elite user - Full access",
}

// LevelDescription rounds the score to a whole level and describes it.
func LevelDescription(score float64) string {
	level := int(Clamp(math.Round(score)))
	return levelDescriptions[level]
}
