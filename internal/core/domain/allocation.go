package domain

import "time"

// Allocation is one persisted match of an applicant to an opportunity.
// Records are immutable once stored.
type Allocation struct {
	ID                  string              `json:"id"`
	ApplicantID         string              `json:"applicant_id"`
	OpportunityID       string              `json:"opportunity_id"`
	Role                string              `json:"role"`
	Organization        string              `json:"organization"`
	RawSimilarity       float64             `json:"raw_similarity"`
	FinalScore          float64             `json:"final_score"`
	IsAspirational      bool                `json:"is_aspirational"`
	IsRural             bool                `json:"is_rural"`
	SocialCategory      SocialCategory      `json:"social_category"`
	ParticipationStatus ParticipationStatus `json:"participation_status"`
	Rank                int                 `json:"rank"`
	CreatedAt           time.Time           `json:"created_at"`
}

type MatchResult struct {
	ApplicantID string       `json:"applicant_id"`
	Replayed    bool         `json:"replayed"`
	Allocations []Allocation `json:"allocations"`
}
