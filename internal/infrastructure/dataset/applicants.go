package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

var (
	applicantIDAliases     = []string{"applicant_id", "student_id", "id"}
	applicantSkillsAliases = []string{"skills"}
	applicantQualAliases   = []string{"qualifications", "qualification"}
	locationPrefAliases    = []string{"location_preferences", "preferred_location", "location_preference"}
	nativeLocationAliases  = []string{"native_location"}
	socialCategoryAliases  = []string{"social_category", "category"}
	participationAliases   = []string{"participation_status", "participation"}
)

// LoadApplicants reads applicant profiles for batch runs. Skills cells may
// hold a comma or semicolon separated list.
func LoadApplicants(path string) ([]domain.ApplicantProfile, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return parseApplicants(t)
}

func parseApplicants(t *table) ([]domain.ApplicantProfile, error) {
	idCol, ok := t.column(applicantIDAliases...)
	if !ok {
		return nil, errors.New("applicant table needs an applicant id column")
	}
	skillsCol, _ := t.column(applicantSkillsAliases...)
	qualCol, _ := t.column(applicantQualAliases...)
	prefCol, _ := t.column(locationPrefAliases...)
	nativeCol, _ := t.column(nativeLocationAliases...)
	categoryCol, _ := t.column(socialCategoryAliases...)
	statusCol, _ := t.column(participationAliases...)

	out := make([]domain.ApplicantProfile, 0, len(t.rows))
	for i, row := range t.rows {
		id := cell(row, idCol)
		if id == "" {
			return nil, fmt.Errorf("row %d: applicant id is empty", i+2)
		}
		out = append(out, domain.ApplicantProfile{
			ApplicantID:         id,
			Skills:              splitSkills(cell(row, skillsCol)),
			Qualifications:      cell(row, qualCol),
			LocationPreferences: cell(row, prefCol),
			NativeLocation:      cell(row, nativeCol),
			SocialCategory:      domain.SocialCategory(cell(row, categoryCol)),
			ParticipationStatus: domain.ParticipationStatus(cell(row, statusCol)),
		})
	}
	return out, nil
}

func splitSkills(raw string) domain.SkillList {
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	out := make(domain.SkillList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
