package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("MATCH_SUBJECT", "")
	t.Setenv("MATCH_THRESHOLD", "")
	t.Setenv("MATCH_MAX_RESULTS", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "")

	cfg := Load()
	if cfg.StoreBackend != StoreBackendPostgres {
		t.Fatalf("expected postgres backend by default, got %q", cfg.StoreBackend)
	}
	if cfg.MatchSubject != "allocations.match.requested" {
		t.Fatalf("unexpected default subject %q", cfg.MatchSubject)
	}
	if cfg.MatchThreshold != nil || cfg.MatchMaxResults != nil {
		t.Fatalf("expected no threshold overrides by default")
	}
	if cfg.Resilience.RetryMaxAttempts != 3 || cfg.Resilience.RetryInitialBackoff != 100*time.Millisecond {
		t.Fatalf("unexpected retry defaults %+v", cfg.Resilience)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("MATCH_THRESHOLD", "0.6")
	t.Setenv("MATCH_MAX_RESULTS", "5")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("BREAKER_ENABLED", "false")

	cfg := Load()
	if cfg.StoreBackend != StoreBackendMemory {
		t.Fatalf("expected memory backend, got %q", cfg.StoreBackend)
	}
	if cfg.MatchThreshold == nil || *cfg.MatchThreshold != 0.6 {
		t.Fatalf("expected threshold override 0.6, got %v", cfg.MatchThreshold)
	}
	if cfg.MatchMaxResults == nil || *cfg.MatchMaxResults != 5 {
		t.Fatalf("expected max results override 5, got %v", cfg.MatchMaxResults)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.Resilience.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "high")
	t.Setenv("API_MAX_IN_FLIGHT", "lots")

	cfg := Load()
	if cfg.MatchThreshold != nil {
		t.Fatalf("malformed threshold should be ignored")
	}
	if cfg.APIMaxInFlight != 64 {
		t.Fatalf("expected fallback in-flight limit 64, got %d", cfg.APIMaxInFlight)
	}
}

func TestLoadPolicyDefaults(t *testing.T) {
	policy, err := LoadPolicy("")
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if policy.Threshold != 0.75 || len(policy.CategoryBonuses) != 2 || len(policy.AspirationalDistricts) == 0 {
		t.Fatalf("unexpected default policy %+v", policy)
	}
}

func TestLoadPolicyOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `
threshold: 0.6
rural_bonus: 0.08
participation_bonuses:
  Rejected: 0.2
rural_districts:
  - district: Wayanad
    state: Kerala
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}

	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if policy.Threshold != 0.6 || policy.RuralBonus != 0.08 {
		t.Fatalf("expected overrides applied, got %+v", policy)
	}
	if policy.ParticipationBonuses["Rejected"] != 0.2 || policy.ParticipationBonuses["New"] != 0.10 {
		t.Fatalf("expected merged participation bonuses, got %+v", policy.ParticipationBonuses)
	}
	if len(policy.RuralDistricts) != 1 || policy.RuralDistricts[0].District != "Wayanad" {
		t.Fatalf("expected rural districts replaced, got %+v", policy.RuralDistricts)
	}
	if policy.AspirationalBonus != 0.10 {
		t.Fatalf("expected untouched defaults kept, got %+v", policy)
	}
}

func TestParsePolicyRejectsInvalidValues(t *testing.T) {
	if _, err := ParsePolicy([]byte("rural_bonus: 1.5\n")); err == nil {
		t.Fatalf("expected error for bonus above 1")
	}
	if _, err := ParsePolicy([]byte("threshold: -0.1\n")); err == nil {
		t.Fatalf("expected error for negative threshold")
	}
	if _, err := ParsePolicy([]byte("unknown_key: 1\n")); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestApplyOverrides(t *testing.T) {
	threshold := 0.5
	limit := 3
	cfg := Config{MatchThreshold: &threshold, MatchMaxResults: &limit}

	policy, err := LoadPolicy("")
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	policy = cfg.ApplyOverrides(policy)
	if policy.Threshold != 0.5 || policy.MaxResults != 3 {
		t.Fatalf("expected env overrides applied, got threshold=%v max=%d", policy.Threshold, policy.MaxResults)
	}
}
