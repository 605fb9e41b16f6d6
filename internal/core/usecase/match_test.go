package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
	"github.com/kirillkom/internship-allocator/internal/core/engine"
)

type allocationStoreFake struct {
	mu       sync.Mutex
	records  map[string][]domain.Allocation
	gets     int
	inserts  int
	getErr   error
	raceWith []domain.Allocation
}

func newAllocationStoreFake() *allocationStoreFake {
	return &allocationStoreFake{records: make(map[string][]domain.Allocation)}
}

func (f *allocationStoreFake) GetExisting(_ context.Context, applicantID string) ([]domain.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.records[applicantID], nil
}

func (f *allocationStoreFake) InsertIfAbsent(_ context.Context, applicantID string, records []domain.Allocation) ([]domain.Allocation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raceWith != nil {
		f.records[applicantID] = f.raceWith
		f.raceWith = nil
	}
	if existing := f.records[applicantID]; len(existing) > 0 {
		return existing, false, nil
	}
	f.inserts++
	f.records[applicantID] = records
	return records, true, nil
}

func testEngine(t *testing.T, opportunities []domain.Opportunity) *engine.Engine {
	t.Helper()
	cfg := engine.DefaultPolicyConfig()
	policy, err := engine.NewPolicy(cfg)
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}
	e, err := engine.New(opportunities, policy, engine.NewGeoClassifier(cfg.AspirationalDistricts, cfg.RuralDistricts), engine.Options{Threshold: 0.75})
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	return e
}

func testOpportunities() []domain.Opportunity {
	return []domain.Opportunity{
		{ID: "O1", Role: "Data Analyst", Organization: "Acme", RequiredSkills: "Python SQL", QualificationRequired: "B.Tech", WorkLocation: "Bengaluru"},
		{ID: "O2", Role: "Backend Intern", Organization: "Globex", RequiredSkills: "Java Spring", QualificationRequired: "MCA", WorkLocation: "Pune"},
		{ID: "O3", Role: "ML Intern", Organization: "Initech", RequiredSkills: "Python Machine Learning", QualificationRequired: "M.Tech", WorkLocation: "Remote"},
	}
}

func testApplicant() domain.ApplicantProfile {
	return domain.ApplicantProfile{
		ApplicantID:         "A1",
		Skills:              domain.SkillList{"Python", "SQL"},
		Qualifications:      "B.Tech",
		LocationPreferences: "Bengaluru",
		NativeLocation:      "Nuh, Haryana",
		SocialCategory:      "ST",
		ParticipationStatus: domain.ParticipationNew,
	}
}

func newTestMatchUseCase(t *testing.T, store *allocationStoreFake) *MatchUseCase {
	t.Helper()
	uc := NewMatchUseCase(store)
	uc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	seq := 0
	var mu sync.Mutex
	uc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return "alloc-" + strconv.Itoa(seq)
	}
	uc.Install(testEngine(t, testOpportunities()))
	return uc
}

func TestMatchUseCaseRejectsBlankApplicantID(t *testing.T) {
	store := newAllocationStoreFake()
	uc := newTestMatchUseCase(t, store)

	profile := testApplicant()
	profile.ApplicantID = "   "
	_, err := uc.Match(context.Background(), profile)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if store.gets != 0 {
		t.Fatalf("store must not be touched, got %d reads", store.gets)
	}
}

func TestMatchUseCaseRequiresEngine(t *testing.T) {
	uc := NewMatchUseCase(newAllocationStoreFake())
	if uc.Ready() {
		t.Fatalf("expected use case not ready before Install")
	}

	_, err := uc.Match(context.Background(), testApplicant())
	if !errors.Is(err, domain.ErrEngineNotInitialized) {
		t.Fatalf("expected ErrEngineNotInitialized, got %v", err)
	}
}

func TestMatchUseCasePersistsNewAllocations(t *testing.T) {
	store := newAllocationStoreFake()
	uc := newTestMatchUseCase(t, store)

	result, err := uc.Match(context.Background(), testApplicant())
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if result.Replayed {
		t.Fatalf("first match must not be a replay")
	}
	if len(result.Allocations) != 2 || store.inserts != 1 {
		t.Fatalf("expected 2 allocations in one insert, got %d allocations and %d inserts", len(result.Allocations), store.inserts)
	}
	first := result.Allocations[0]
	if first.ID != "alloc-1" || first.CreatedAt.IsZero() || first.OpportunityID != "O1" || first.Rank != 1 {
		t.Fatalf("unexpected first allocation %+v", first)
	}
}

func TestMatchUseCaseReplaysStoredAllocations(t *testing.T) {
	store := newAllocationStoreFake()
	uc := newTestMatchUseCase(t, store)

	first, err := uc.Match(context.Background(), testApplicant())
	if err != nil {
		t.Fatalf("first Match() error = %v", err)
	}

	profile := testApplicant()
	profile.Skills = domain.SkillList{"Java"}
	second, err := uc.Match(context.Background(), profile)
	if err != nil {
		t.Fatalf("second Match() error = %v", err)
	}
	if !second.Replayed {
		t.Fatalf("expected replay on second call")
	}
	if len(second.Allocations) != len(first.Allocations) || second.Allocations[0].ID != first.Allocations[0].ID {
		t.Fatalf("replay differs from stored set: %+v vs %+v", second.Allocations, first.Allocations)
	}
	if store.inserts != 1 {
		t.Fatalf("expected a single insert, got %d", store.inserts)
	}
}

func TestMatchUseCaseReplayIgnoresCorpusChange(t *testing.T) {
	store := newAllocationStoreFake()
	uc := newTestMatchUseCase(t, store)

	first, err := uc.Match(context.Background(), testApplicant())
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}

	uc.Install(testEngine(t, testOpportunities()[1:]))
	second, err := uc.Match(context.Background(), testApplicant())
	if err != nil {
		t.Fatalf("Match() after reload error = %v", err)
	}
	if !second.Replayed || second.Allocations[0].OpportunityID != first.Allocations[0].OpportunityID {
		t.Fatalf("expected stored set after corpus change, got %+v", second)
	}
}

func TestMatchUseCaseEmptyResultIsNotPersisted(t *testing.T) {
	store := newAllocationStoreFake()
	uc := newTestMatchUseCase(t, store)

	profile := testApplicant()
	profile.Skills = domain.SkillList{"Cooking"}
	profile.Qualifications = "Diploma"
	profile.LocationPreferences = "Goa"
	profile.NativeLocation = ""
	profile.SocialCategory = "OC"
	profile.ParticipationStatus = domain.ParticipationBenefitted

	result, err := uc.Match(context.Background(), profile)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if result.Replayed || len(result.Allocations) != 0 {
		t.Fatalf("expected empty fresh result, got %+v", result)
	}
	if store.inserts != 0 || len(store.records) != 0 {
		t.Fatalf("empty result must not be stored")
	}

	profile.Skills = domain.SkillList{"Python", "SQL"}
	profile.Qualifications = "B.Tech"
	profile.LocationPreferences = "Bengaluru"
	again, err := uc.Match(context.Background(), profile)
	if err != nil {
		t.Fatalf("second Match() error = %v", err)
	}
	if again.Replayed || len(again.Allocations) == 0 {
		t.Fatalf("expected fresh computation after empty result, got %+v", again)
	}
}

func TestMatchUseCaseReturnsWinnerOnLostRace(t *testing.T) {
	store := newAllocationStoreFake()
	winner := []domain.Allocation{{ID: "winner", ApplicantID: "A1", OpportunityID: "O3", Rank: 1}}
	store.raceWith = winner
	uc := newTestMatchUseCase(t, store)

	result, err := uc.Match(context.Background(), testApplicant())
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if !result.Replayed || len(result.Allocations) != 1 || result.Allocations[0].ID != "winner" {
		t.Fatalf("expected winner set as replay, got %+v", result)
	}
	if store.inserts != 0 {
		t.Fatalf("losing writer must not insert")
	}
}

func TestMatchUseCaseConcurrentCallsStoreOnce(t *testing.T) {
	store := newAllocationStoreFake()
	uc := newTestMatchUseCase(t, store)

	const callers = 16
	results := make([]*domain.MatchResult, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = uc.Match(context.Background(), testApplicant())
		}(i)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if results[i].Allocations[0].ID != results[0].Allocations[0].ID {
			t.Fatalf("caller %d saw a different set", i)
		}
	}
	if store.inserts != 1 {
		t.Fatalf("expected exactly one insert, got %d", store.inserts)
	}
}

func TestMatchUseCasePropagatesStoreErrors(t *testing.T) {
	store := newAllocationStoreFake()
	store.getErr = domain.WrapError(domain.ErrStorageUnavailable, "get existing", errors.New("connection refused"))
	uc := newTestMatchUseCase(t, store)

	_, err := uc.Match(context.Background(), testApplicant())
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestAllocationsNotFound(t *testing.T) {
	uc := newTestMatchUseCase(t, newAllocationStoreFake())

	_, err := uc.Allocations(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAllocationNotFound) {
		t.Fatalf("expected ErrAllocationNotFound, got %v", err)
	}
}

func TestAllocationsReturnsStoredSet(t *testing.T) {
	store := newAllocationStoreFake()
	uc := newTestMatchUseCase(t, store)
	if _, err := uc.Match(context.Background(), testApplicant()); err != nil {
		t.Fatalf("Match() error = %v", err)
	}

	records, err := uc.Allocations(context.Background(), " A1 ")
	if err != nil {
		t.Fatalf("Allocations() error = %v", err)
	}
	if len(records) != 2 || records[1].OpportunityID != "O3" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestStoredNowIsUTCMicroseconds(t *testing.T) {
	now := storedNow()
	if now.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", now.Location())
	}
	if now.Nanosecond()%1000 != 0 {
		t.Fatalf("expected microsecond precision, got %d ns", now.Nanosecond())
	}
}
