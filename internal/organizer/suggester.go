// internal/organizer/suggester.go
package organizer

import (
	"context"
	"sort"
	"time"
)

// DefaultTopN bounds a suggestion list when the caller does not say.
const DefaultTopN = 3

// Suggest ranks destination folders for a file. An owner with no
// patterns gets an empty list, not an error; storage failures
// propagate.
func (s *Service) Suggest(ctx context.Context, ownerID string, file FileDescriptor, ectx EventContext, currentFolderID string, topN int) ([]Suggestion, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	now := time.Now().UTC()
	moment := Moment{Time: now, SourceFolderID: currentFolderID}

	patterns, err := s.store.ListActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// One suggestion per destination folder: patterns pointing at the
	// same folder merge, the higher-ranked pattern represents the
	// group and the merged confidence is the max of the group.
	byID := patternsByID(patterns)
	best := make(map[string]Suggestion)
	for _, p := range patterns {
		if !s.matcher.Matches(p, file, ectx, moment) {
			continue
		}
		score := s.scorer.EffectiveScore(p, now)
		if score < s.cfg.MinSuggestionScore {
			continue
		}

		cand := Suggestion{
			DestinationFolderID:   p.DestinationFolderID,
			DestinationFolderName: p.DestinationFolderName,
			Confidence:            p.Confidence,
			PatternID:             p.ID,
			Explanation:           s.explanationFor(p),
			score:                 score,
		}

		cur, ok := best[p.DestinationFolderID]
		if !ok {
			best[p.DestinationFolderID] = cand
			continue
		}
		maxConf := cur.Confidence
		if cand.Confidence > maxConf {
			maxConf = cand.Confidence
		}
		if less(cur, cand, byID) {
			cur = cand
		}
		cur.Confidence = maxConf
		best[p.DestinationFolderID] = cur
	}

	out := make([]Suggestion, 0, len(best))
	for _, sg := range best {
		out = append(out, sg)
	}
	sort.Slice(out, func(i, j int) bool {
		return less(out[j], out[i], byID)
	})

	if len(out) > topN {
		out = out[:topN]
	}
	s.metrics.SuggestionsServed.Inc()
	return out, nil
}

// less orders a below b: by effective score, then occurrences, then
// recency of last occurrence.
func less(a, b Suggestion, byID map[string]*OrganizationPattern) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	pa, pb := byID[a.PatternID], byID[b.PatternID]
	if pa == nil || pb == nil {
		return a.score < b.score
	}
	if pa.Occurrences != pb.Occurrences {
		return pa.Occurrences < pb.Occurrences
	}
	return pa.LastOccurrence.Before(pb.LastOccurrence)
}

func patternsByID(patterns []*OrganizationPattern) map[string]*OrganizationPattern {
	m := make(map[string]*OrganizationPattern, len(patterns))
	for _, p := range patterns {
		m[p.ID] = p
	}
	return m
}

func (s *Service) explanationFor(p *OrganizationPattern) string {
	if p.AIExplanation != "" {
		return p.AIExplanation
	}
	return describePattern(p)
}

// ListPatterns returns the owner's active patterns, strongest first.
func (s *Service) ListPatterns(ctx context.Context, ownerID string) ([]*OrganizationPattern, error) {
	patterns, err := s.store.ListActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.Slice(patterns, func(i, j int) bool {
		return patterns[i].Confidence > patterns[j].Confidence
	})
	return patterns, nil
}

// Stats summarizes the owner's learned patterns.
func (s *Service) Stats(ctx context.Context, ownerID string) (*OwnerStats, error) {
	return s.store.OwnerStats(ctx, ownerID)
}

// RenameFolder refreshes the denormalized destination name on every
// pattern pointing at the folder.
func (s *Service) RenameFolder(ctx context.Context, ownerID, folderID, name string) (int64, error) {
	return s.store.RenameFolder(ctx, ownerID, folderID, name)
}
