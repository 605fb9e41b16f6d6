package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type SocialCategory string

type ParticipationStatus string

const (
	ParticipationNew        ParticipationStatus = "New"
	ParticipationRejected   ParticipationStatus = "Rejected"
	ParticipationBenefitted ParticipationStatus = "Benefitted"
)

// SkillList accepts either a single string or a list of strings on the wire.
type SkillList []string

func (s *SkillList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*s = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("skills: %w", err)
		}
		*s = items
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("skills: %w", err)
	}
	if single == "" {
		*s = nil
		return nil
	}
	*s = SkillList{single}
	return nil
}

func (s SkillList) String() string {
	return strings.Join(s, " ")
}

// ApplicantProfile is the transient input of one matching request.
type ApplicantProfile struct {
	ApplicantID         string              `json:"applicant_id"`
	Skills              SkillList           `json:"skills"`
	Qualifications      string              `json:"qualifications"`
	LocationPreferences string              `json:"location_preferences"`
	NativeLocation      string              `json:"native_location"`
	SocialCategory      SocialCategory      `json:"social_category"`
	ParticipationStatus ParticipationStatus `json:"participation_status"`
}

// ProfileText joins the profile fields in the order used for vectorization.
// Missing fields contribute empty strings.
func (p ApplicantProfile) ProfileText() string {
	return strings.Join([]string{
		p.Skills.String(),
		p.Qualifications,
		p.LocationPreferences,
		p.NativeLocation,
		string(p.SocialCategory),
	}, " ")
}
