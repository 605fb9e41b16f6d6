package engine

import (
	"errors"
	"math"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

// Options tunes the ranker.
type Options struct {
	Threshold  float64
	MaxResults int
}

// Engine holds the read-only state built once at startup: the opportunity
// corpus, its vocabulary and vectors, the fairness policy and the district
// sets. It is safe for concurrent use.
type Engine struct {
	opportunities []domain.Opportunity
	vocab         *Vocabulary
	corpus        *Corpus
	policy        *Policy
	geo           *GeoClassifier
	opts          Options
}

func New(opportunities []domain.Opportunity, policy *Policy, geo *GeoClassifier, opts Options) (*Engine, error) {
	if len(opportunities) == 0 {
		return nil, errors.New("opportunity corpus is empty")
	}
	if policy == nil || geo == nil {
		return nil, errors.New("policy and geo classifier are required")
	}
	if math.IsNaN(opts.Threshold) || opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, errors.New("threshold must be within [0, 1]")
	}

	opps := make([]domain.Opportunity, len(opportunities))
	copy(opps, opportunities)

	docs := make([]string, len(opps))
	for i, o := range opps {
		docs[i] = o.RequirementsText()
	}
	vocab := BuildVocabulary(docs)

	return &Engine{
		opportunities: opps,
		vocab:         vocab,
		corpus:        NewCorpus(vocab, docs),
		policy:        policy,
		geo:           geo,
		opts:          opts,
	}, nil
}

func (e *Engine) Vocabulary() *Vocabulary {
	return e.vocab
}

func (e *Engine) Threshold() float64 {
	return e.opts.Threshold
}

func (e *Engine) OpportunityCount() int {
	return len(e.opportunities)
}

// Assessment is the unfiltered scoring of one applicant against the corpus.
type Assessment struct {
	Geo        GeoFlags
	Bonus      Bonus
	Candidates []Candidate
}

func (e *Engine) Assess(profile domain.ApplicantProfile) (Assessment, error) {
	similarities, err := e.corpus.Cosine(e.vocab.Vectorize(profile.ProfileText()))
	if err != nil {
		return Assessment{}, err
	}

	geo := e.geo.Classify(profile.NativeLocation)
	bonus := e.policy.Breakdown(profile.SocialCategory, profile.ParticipationStatus, geo)

	candidates := make([]Candidate, len(similarities))
	for i, raw := range similarities {
		candidates[i] = Candidate{
			Index: i,
			Raw:   raw,
			Final: e.policy.Adjust(raw, profile.SocialCategory, profile.ParticipationStatus, geo),
		}
	}
	return Assessment{Geo: geo, Bonus: bonus, Candidates: candidates}, nil
}

// Match returns the ranked allocations for profile. IDs and timestamps are
// left for the caller to assign.
func (e *Engine) Match(profile domain.ApplicantProfile) ([]domain.Allocation, error) {
	assessment, err := e.Assess(profile)
	if err != nil {
		return nil, err
	}

	ranked := Rank(assessment.Candidates, e.opts.Threshold, e.opts.MaxResults)
	out := make([]domain.Allocation, 0, len(ranked))
	for i, c := range ranked {
		opp := e.opportunities[c.Index]
		out = append(out, domain.Allocation{
			ApplicantID:         profile.ApplicantID,
			OpportunityID:       opp.ID,
			Role:                opp.Role,
			Organization:        opp.Organization,
			RawSimilarity:       Round3(c.Raw),
			FinalScore:          Round3(c.Final),
			IsAspirational:      assessment.Geo.Aspirational,
			IsRural:             assessment.Geo.Rural,
			SocialCategory:      profile.SocialCategory,
			ParticipationStatus: profile.ParticipationStatus,
			Rank:                i + 1,
		})
	}
	return out, nil
}

// BestMatch is the single highest-similarity opportunity for an applicant,
// reported regardless of the threshold.
type BestMatch struct {
	Opportunity   domain.Opportunity
	RawSimilarity float64
	Bonus         Bonus
	FinalScore    float64
	Geo           GeoFlags
}

// Best picks the opportunity with the highest raw similarity; the first one
// wins on ties.
func (e *Engine) Best(profile domain.ApplicantProfile) (BestMatch, error) {
	assessment, err := e.Assess(profile)
	if err != nil {
		return BestMatch{}, err
	}

	best := assessment.Candidates[0]
	for _, c := range assessment.Candidates[1:] {
		if c.Raw > best.Raw {
			best = c
		}
	}
	return BestMatch{
		Opportunity:   e.opportunities[best.Index],
		RawSimilarity: Round3(best.Raw),
		Bonus: Bonus{
			Category:      Round3(assessment.Bonus.Category),
			Geo:           Round3(assessment.Bonus.Geo),
			Participation: Round3(assessment.Bonus.Participation),
		},
		FinalScore: Round3(best.Final),
		Geo:        assessment.Geo,
	}, nil
}

// Round3 rounds half away from zero to three decimals.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
