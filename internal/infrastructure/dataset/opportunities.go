package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

var (
	opportunityIDAliases    = []string{"id", "opportunity_id", "internship_id", "InternshipID"}
	opportunityRoleAliases  = []string{"role", "title", "internship", "position"}
	opportunityOrgAliases   = []string{"organization", "organisation", "company", "company_name"}
	requiredSkillsAliases   = []string{"required_skills", "skills_required", "skills"}
	qualificationReqAliases = []string{"qualification_required", "qualification", "qualifications"}
	workLocationAliases     = []string{"work_location", "location"}
)

// OpportunityFile loads the opportunity corpus from a CSV or XLSX file.
type OpportunityFile struct {
	Path string
}

func NewOpportunityFile(path string) *OpportunityFile {
	return &OpportunityFile{Path: path}
}

func (f *OpportunityFile) LoadOpportunities(ctx context.Context) ([]domain.Opportunity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadOpportunities(f.Path)
}

// LoadOpportunities reads every non-blank row in file order. Rows without an
// id column get OPP-0001 style ids from their 1-based position.
func LoadOpportunities(path string) ([]domain.Opportunity, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return parseOpportunities(t)
}

func parseOpportunities(t *table) ([]domain.Opportunity, error) {
	skillsCol, hasSkills := t.column(requiredSkillsAliases...)
	qualCol, hasQual := t.column(qualificationReqAliases...)
	locCol, hasLoc := t.column(workLocationAliases...)
	if !hasSkills && !hasQual && !hasLoc {
		return nil, errors.New("opportunity table needs at least one of required skills, qualification or work location columns")
	}
	idCol, _ := t.column(opportunityIDAliases...)
	roleCol, _ := t.column(opportunityRoleAliases...)
	orgCol, _ := t.column(opportunityOrgAliases...)

	out := make([]domain.Opportunity, 0, len(t.rows))
	seen := make(map[string]int, len(t.rows))
	for i, row := range t.rows {
		id := cell(row, idCol)
		if id == "" {
			id = fmt.Sprintf("OPP-%04d", i+1)
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate opportunity id %q in rows %d and %d", id, prev+1, i+1)
		}
		seen[id] = i
		out = append(out, domain.Opportunity{
			ID:                    id,
			Role:                  cell(row, roleCol),
			Organization:          cell(row, orgCol),
			RequiredSkills:        cell(row, skillsCol),
			QualificationRequired: cell(row, qualCol),
			WorkLocation:          cell(row, locCol),
		})
	}
	if len(out) == 0 {
		return nil, errors.New("opportunity table has no rows")
	}
	return out, nil
}
