package engine

import "sort"

// scoreEpsilon absorbs float noise from the bonus additions when comparing
// against the threshold.
const scoreEpsilon = 1e-9

// Candidate is one opportunity's score for the current applicant.
type Candidate struct {
	Index int
	Raw   float64
	Final float64
}

// Rank keeps candidates whose final score reaches threshold and orders them
// by final score descending. Ordering compares the three-decimal scores that
// callers see, so scores that print the same keep corpus order. limit <= 0
// means no cap.
func Rank(candidates []Candidate, threshold float64, limit int) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Final+scoreEpsilon >= threshold {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if fi, fj := Round3(out[i].Final), Round3(out[j].Final); fi != fj {
			return fi > fj
		}
		return out[i].Index < out[j].Index
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
