// internal/organizer/scorer.go
package organizer

import (
	"math"
	"time"
)

// ScorerConfig tunes the effective-score computation. Zero values are
// replaced with defaults so an empty struct is usable.
type ScorerConfig struct {
	// DecayHalfLifeDays is the age since last occurrence at which the
	// recency factor halves.
	DecayHalfLifeDays float64 `yaml:"decay_half_life_days"`
	// MinRecencyFactor is the asymptotic floor of the recency factor.
	// Active patterns never decay to zero relevance.
	MinRecencyFactor float64 `yaml:"min_recency_factor"`
	// OccurrenceBeta scales the logarithmic occurrence boost.
	OccurrenceBeta float64 `yaml:"occurrence_beta"`
	// MaxOccurrenceBoost caps the boost so occurrence count alone
	// cannot dominate confidence.
	MaxOccurrenceBoost float64 `yaml:"max_occurrence_boost"`
}

func (c *ScorerConfig) applyDefaults() {
	if c.DecayHalfLifeDays == 0 {
		c.DecayHalfLifeDays = 90
	}
	if c.MinRecencyFactor == 0 {
		c.MinRecencyFactor = 0.05
	}
	if c.OccurrenceBeta == 0 {
		c.OccurrenceBeta = 0.15
	}
	if c.MaxOccurrenceBoost == 0 {
		c.MaxOccurrenceBoost = 1.5
	}
}

// Scorer computes a pattern's effective ranking strength. It is pure:
// no storage, no side effects.
type Scorer struct {
	cfg ScorerConfig
}

// NewScorer creates a scorer, filling config defaults.
func NewScorer(cfg ScorerConfig) *Scorer {
	cfg.applyDefaults()
	return &Scorer{cfg: cfg}
}

// EffectiveScore combines stored confidence with a recency decay and
// a diminishing-returns occurrence boost. Used for ranking only; the
// result is never persisted.
func (s *Scorer) EffectiveScore(p *OrganizationPattern, now time.Time) float64 {
	return p.Confidence * s.recencyFactor(p.LastOccurrence, now) * s.occurrenceBoost(p.Occurrences)
}

func (s *Scorer) recencyFactor(lastOccurrence, now time.Time) float64 {
	age := now.Sub(lastOccurrence)
	if age <= 0 {
		return 1
	}
	days := age.Hours() / 24
	decay := math.Exp2(-days / s.cfg.DecayHalfLifeDays)
	if decay < s.cfg.MinRecencyFactor {
		return s.cfg.MinRecencyFactor
	}
	return decay
}

func (s *Scorer) occurrenceBoost(occurrences int) float64 {
	if occurrences < 1 {
		occurrences = 1
	}
	boost := 1 + s.cfg.OccurrenceBeta*math.Log(float64(occurrences))
	if boost > s.cfg.MaxOccurrenceBoost {
		return s.cfg.MaxOccurrenceBoost
	}
	return boost
}
