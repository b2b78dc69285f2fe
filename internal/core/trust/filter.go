package trust

import "iter"

// Scored is anything carrying a trust score.
type Scored interface {
	GetTrustScore() float64
}

// FilterByTrust yields the items whose score is at least minScore, in input
// order. A minScore of zero or less disables the filter. The returned sequence
// is lazy, may be ranged over more than once, and never touches items.
func FilterByTrust[T Scored](items []T, minScore float64) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, it := range items {
			if minScore > 0 && it.GetTrustScore() < minScore {
				continue
			}
			if !yield(it) {
				return
			}
		}
	}
}
