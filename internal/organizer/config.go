// internal/organizer/config.go
package organizer

// GeneralizationMode controls how an observed file name becomes a
// reusable regular expression.
type GeneralizationMode string

const (
	// GeneralizeConservative keeps the exact name (escaped): only
	// identical names match the learned pattern.
	GeneralizeConservative GeneralizationMode = "conservative"
	// GeneralizeAggressive replaces digit runs with \d+ so near
	// duplicates like invoice_2024.pdf / invoice_2025.pdf match.
	GeneralizeAggressive GeneralizationMode = "aggressive"
)

// Config tunes the engine's learning behavior. The numeric constants
// are an implementation choice; the monotonicity and [0,1] clamping
// they feed are contractual and covered by tests.
type Config struct {
	// InitialConfidence is the starting band for new patterns. Kept
	// low so a freshly observed rule never outranks a mature one.
	InitialConfidence float64 `yaml:"initial_confidence"`
	// ReinforceStep is the fraction of the remaining distance to 1.0
	// gained per organic reinforcement.
	ReinforceStep float64 `yaml:"reinforce_step"`
	// AcceptStep is the (stronger) fraction gained on explicit accept.
	AcceptStep float64 `yaml:"accept_step"`
	// RejectFactor is the share of confidence removed per rejection.
	RejectFactor float64 `yaml:"reject_factor"`
	// IgnoreFactor is the (small) share removed when a suggestion is
	// shown and not acted on.
	IgnoreFactor float64 `yaml:"ignore_factor"`
	// DeactivationFloor deactivates a pattern whose confidence falls
	// below it.
	DeactivationFloor float64 `yaml:"deactivation_floor"`
	// MinSuggestionScore excludes matching but noisy patterns from
	// suggestion results.
	MinSuggestionScore float64 `yaml:"min_suggestion_score"`
	// NameGeneralization selects the filename generalizer.
	NameGeneralization GeneralizationMode `yaml:"name_generalization"`
	// QueueSize bounds the async move-event buffer.
	QueueSize int `yaml:"queue_size"`

	Scorer ScorerConfig `yaml:"scorer"`
}

// ApplyDefaults fills in default values.
func (c *Config) ApplyDefaults() {
	if c.InitialConfidence == 0 {
		c.InitialConfidence = 0.3
	}
	if c.ReinforceStep == 0 {
		c.ReinforceStep = 0.15
	}
	if c.AcceptStep == 0 {
		c.AcceptStep = 0.25
	}
	if c.RejectFactor == 0 {
		c.RejectFactor = 0.5
	}
	if c.IgnoreFactor == 0 {
		c.IgnoreFactor = 0.05
	}
	if c.DeactivationFloor == 0 {
		c.DeactivationFloor = 0.1
	}
	if c.MinSuggestionScore == 0 {
		c.MinSuggestionScore = 0.15
	}
	if c.NameGeneralization == "" {
		c.NameGeneralization = GeneralizeAggressive
	}
	if c.QueueSize == 0 {
		c.QueueSize = 1024
	}
	c.Scorer.applyDefaults()
}
