// internal/organizer/scorer_test.go
package organizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScorer_EffectiveScore(t *testing.T) {
	scorer := NewScorer(ScorerConfig{})
	now := time.Now().UTC()

	fresh := func(conf float64, occurrences int, last time.Time) *OrganizationPattern {
		return &OrganizationPattern{
			Confidence:     conf,
			Occurrences:    occurrences,
			LastOccurrence: last,
			IsActive:       true,
		}
	}

	t.Run("recent pattern keeps its confidence", func(t *testing.T) {
		score := scorer.EffectiveScore(fresh(0.8, 1, now), now)
		assert.InDelta(t, 0.8, score, 0.001)
	})

	t.Run("stale patterns decay", func(t *testing.T) {
		recent := scorer.EffectiveScore(fresh(0.8, 1, now.Add(-24*time.Hour)), now)
		stale := scorer.EffectiveScore(fresh(0.8, 1, now.Add(-180*24*time.Hour)), now)
		assert.Greater(t, recent, stale)
	})

	t.Run("decay never reaches zero while active", func(t *testing.T) {
		ancient := scorer.EffectiveScore(fresh(0.8, 1, now.Add(-10*365*24*time.Hour)), now)
		assert.Greater(t, ancient, 0.0)
	})

	t.Run("more occurrences score higher", func(t *testing.T) {
		twice := scorer.EffectiveScore(fresh(0.5, 2, now), now)
		twenty := scorer.EffectiveScore(fresh(0.5, 20, now), now)
		assert.Greater(t, twenty, twice)
	})

	t.Run("occurrence boost has diminishing returns", func(t *testing.T) {
		s1 := scorer.EffectiveScore(fresh(0.5, 1, now), now)
		s2 := scorer.EffectiveScore(fresh(0.5, 2, now), now)
		s20 := scorer.EffectiveScore(fresh(0.5, 20, now), now)
		s21 := scorer.EffectiveScore(fresh(0.5, 21, now), now)
		assert.Greater(t, s2-s1, s21-s20)
	})

	t.Run("occurrence boost is capped", func(t *testing.T) {
		huge := scorer.EffectiveScore(fresh(0.5, 1_000_000, now), now)
		assert.LessOrEqual(t, huge, 0.5*1.5+0.001)
	})

	t.Run("pure function leaves the pattern untouched", func(t *testing.T) {
		p := fresh(0.6, 5, now.Add(-time.Hour))
		before := *p
		_ = scorer.EffectiveScore(p, now)
		assert.Equal(t, before, *p)
	})
}
