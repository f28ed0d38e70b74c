// internal/organizer/memory.go
package organizer

import (
	"context"
	"sync"
)

// MemoryStore is an in-process PatternStore used in tests and
// single-node development.
type MemoryStore struct {
	mu       sync.RWMutex
	patterns map[string]*OrganizationPattern // id -> pattern
	byKey    map[string]string               // owner|matchKey -> id, active only
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patterns: make(map[string]*OrganizationPattern),
		byKey:    make(map[string]string),
	}
}

func activeKey(ownerID, matchKey string) string {
	return ownerID + "\x00" + matchKey
}

// ReinforceOrCreate implements PatternStore.
func (s *MemoryStore) ReinforceOrCreate(_ context.Context, p *OrganizationPattern, step float64) (*OrganizationPattern, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := activeKey(p.OwnerID, p.MatchKey())
	if id, ok := s.byKey[key]; ok {
		existing := s.patterns[id]
		existing.Occurrences++
		// Events can arrive out of order; lastOccurrence only moves
		// forward so it never drops below firstSeen.
		if p.LastOccurrence.After(existing.LastOccurrence) {
			existing.LastOccurrence = p.LastOccurrence
		}
		existing.Confidence = clamp(existing.Confidence + step*(1-existing.Confidence))
		existing.Context = p.Context
		existing.Version++
		return existing.Clone(), false, nil
	}

	cp := p.Clone()
	cp.Version = 1
	s.patterns[cp.ID] = cp
	s.byKey[key] = cp.ID
	return cp.Clone(), true, nil
}

// ListActive implements PatternStore.
func (s *MemoryStore) ListActive(_ context.Context, ownerID string) ([]*OrganizationPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*OrganizationPattern, 0)
	for _, p := range s.patterns {
		if p.OwnerID == ownerID && p.IsActive {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

// Get implements PatternStore.
func (s *MemoryStore) Get(_ context.Context, ownerID, patternID string) (*OrganizationPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patterns[patternID]
	if !ok || p.OwnerID != ownerID {
		return nil, NotFoundError{OwnerID: ownerID, PatternID: patternID}
	}
	return p.Clone(), nil
}

// Update implements PatternStore.
func (s *MemoryStore) Update(_ context.Context, p *OrganizationPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.patterns[p.ID]
	if !ok || existing.OwnerID != p.OwnerID {
		return NotFoundError{OwnerID: p.OwnerID, PatternID: p.ID}
	}
	if existing.Version != p.Version {
		return ErrConflict
	}

	wasActive := existing.IsActive
	cp := p.Clone()
	cp.Version = existing.Version + 1
	s.patterns[p.ID] = cp

	key := activeKey(cp.OwnerID, cp.MatchKey())
	if wasActive && !cp.IsActive {
		delete(s.byKey, key)
	} else if !wasActive && cp.IsActive {
		s.byKey[key] = cp.ID
	}

	p.Version = cp.Version
	return nil
}

// SetExplanation implements PatternStore.
func (s *MemoryStore) SetExplanation(_ context.Context, ownerID, patternID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patterns[patternID]
	if !ok || p.OwnerID != ownerID {
		return nil
	}
	p.AIExplanation = text
	p.Version++
	return nil
}

// RenameFolder implements PatternStore.
func (s *MemoryStore) RenameFolder(_ context.Context, ownerID, folderID, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, p := range s.patterns {
		if p.OwnerID == ownerID && p.DestinationFolderID == folderID {
			p.DestinationFolderName = name
			p.Version++
			n++
		}
	}
	return n, nil
}

// OwnerStats implements PatternStore.
func (s *MemoryStore) OwnerStats(_ context.Context, ownerID string) (*OwnerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &OwnerStats{OwnerID: ownerID}
	var sum float64
	for _, p := range s.patterns {
		if p.OwnerID != ownerID {
			continue
		}
		stats.TotalPatterns++
		if p.IsActive {
			stats.ActivePatterns++
			sum += p.Confidence
		}
	}
	if stats.ActivePatterns > 0 {
		stats.MeanConfidence = sum / float64(stats.ActivePatterns)
	}
	return stats, nil
}

var _ PatternStore = (*MemoryStore)(nil)
