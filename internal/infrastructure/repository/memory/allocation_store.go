package memory

import (
	"context"
	"sync"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

// AllocationStore keeps allocation sets in process memory. It backs the
// single-process deployment and tests; nothing survives a restart.
type AllocationStore struct {
	mu      sync.RWMutex
	records map[string][]domain.Allocation
}

func NewAllocationStore() *AllocationStore {
	return &AllocationStore{records: make(map[string][]domain.Allocation)}
}

func (s *AllocationStore) GetExisting(_ context.Context, applicantID string) ([]domain.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAllocations(s.records[applicantID]), nil
}

func (s *AllocationStore) InsertIfAbsent(_ context.Context, applicantID string, records []domain.Allocation) ([]domain.Allocation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.records[applicantID]; len(existing) > 0 {
		return cloneAllocations(existing), false, nil
	}
	if len(records) == 0 {
		return []domain.Allocation{}, false, nil
	}
	s.records[applicantID] = cloneAllocations(records)
	return cloneAllocations(records), true, nil
}

func cloneAllocations(in []domain.Allocation) []domain.Allocation {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Allocation, len(in))
	copy(out, in)
	return out
}
