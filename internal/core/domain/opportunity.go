package domain

import "strings"

// Opportunity is one internship posting of the loaded corpus.
type Opportunity struct {
	ID                    string `json:"id"`
	Role                  string `json:"role"`
	Organization          string `json:"organization"`
	RequiredSkills        string `json:"required_skills"`
	QualificationRequired string `json:"qualification_required"`
	WorkLocation          string `json:"work_location"`
}

// RequirementsText is the text the vocabulary is fitted on.
func (o Opportunity) RequirementsText() string {
	return strings.Join([]string{o.RequiredSkills, o.QualificationRequired, o.WorkLocation}, " ")
}
