// internal/organizer/recorder.go
package organizer

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record learns from one observed move. It finds the active pattern
// with the same (kind, trigger, destination) and reinforces it, or
// creates a new one. It never returns an error: recording is
// best-effort telemetry and must not fail the caller's move, so
// internal failures are logged and nil is returned. A nil result also
// means the event carried no usable signal.
func (s *Service) Record(ctx context.Context, ev MoveEvent) *OrganizationPattern {
	if ev.OwnerID == "" || ev.DestinationFolderID == "" {
		return nil
	}
	// Moving a file to the folder it is already in teaches nothing.
	if ev.SourceFolderID != "" && ev.SourceFolderID == ev.DestinationFolderID {
		return nil
	}
	if ev.ObservedAt.IsZero() {
		ev.ObservedAt = time.Now().UTC()
	}

	kind, trigger := s.deriveTrigger(ev)
	if trigger.IsEmpty() {
		return nil
	}
	if err := trigger.Validate(kind); err != nil {
		s.logger.Warn("derived trigger rejected",
			zap.String("owner_id", ev.OwnerID), zap.Error(err))
		return nil
	}

	candidate := &OrganizationPattern{
		ID:                    uuid.New().String(),
		OwnerID:               ev.OwnerID,
		Kind:                  kind,
		Trigger:               trigger,
		DestinationFolderID:   ev.DestinationFolderID,
		DestinationFolderName: ev.DestinationFolderName,
		Confidence:            s.cfg.InitialConfidence,
		Occurrences:           1,
		FirstSeen:             ev.ObservedAt,
		LastOccurrence:        ev.ObservedAt,
		Context: ObservedContext{
			PrecedingAction:    ev.Context.PrecedingAction,
			MinutesSinceUpload: ev.Context.MinutesSinceUpload,
			SizeBand:           SizeBand(ev.File.Size),
		},
		IsActive: true,
	}

	pattern, created, err := s.store.ReinforceOrCreate(ctx, candidate, s.cfg.ReinforceStep)
	if err != nil {
		s.logger.Error("failed to record organization pattern",
			zap.String("owner_id", ev.OwnerID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return nil
	}

	outcome := "reinforced"
	if created {
		outcome = "created"
		s.explainAsync(pattern)
	}
	s.metrics.PatternsRecorded.WithLabelValues(string(kind), outcome).Inc()

	s.logger.Debug("recorded organization pattern",
		zap.String("owner_id", ev.OwnerID),
		zap.String("pattern_id", pattern.ID),
		zap.String("kind", string(kind)),
		zap.String("outcome", outcome),
		zap.Int("occurrences", pattern.Occurrences),
		zap.Float64("confidence", pattern.Confidence))

	return pattern
}

// deriveTrigger extracts the most specific trigger the event supports.
// Preference order: source-folder routing, generalized name shape,
// file type, project context.
func (s *Service) deriveTrigger(ev MoveEvent) (PatternKind, Trigger) {
	trigger := EmptyTrigger()
	ext := normalizeExtension(strings.ToLower(ev.File.Extension))

	if ev.SourceFolderID != "" {
		trigger.SourceFolderID = ev.SourceFolderID
		trigger.Extension = ext
		return KindSourceFolderToDest, trigger
	}

	if s.cfg.NameGeneralization == GeneralizeAggressive {
		if expr, ok := generalizeName(ev.File.DisplayName); ok {
			trigger.NameRegexp = expr
			trigger.Extension = ext
			return KindFileNamePatternToFolder, trigger
		}
	}

	if ev.File.MimeType != "" || ext != "" {
		trigger.MimeType = strings.ToLower(ev.File.MimeType)
		trigger.Extension = ext
		return KindFileTypeToFolder, trigger
	}

	if ev.Context.ProjectLabel != "" {
		trigger.ProjectLabel = ev.Context.ProjectLabel
		return KindProjectBased, trigger
	}

	return KindFileTypeToFolder, trigger
}

var digitRun = regexp.MustCompile(`[0-9]+`)

// generalizeName turns an observed file name into a reusable anchored
// expression by replacing digit runs with \d+, so invoice_2024.pdf
// later matches invoice_2025.pdf. Deterministic: the same name always
// yields the same expression. Returns false when the name has no
// digits to generalize, in which case a name pattern would be no more
// useful than a file-type pattern.
func generalizeName(name string) (string, bool) {
	if name == "" || !digitRun.MatchString(name) {
		return "", false
	}

	var b strings.Builder
	b.WriteString("^")
	last := 0
	for _, loc := range digitRun.FindAllStringIndex(name, -1) {
		b.WriteString(regexp.QuoteMeta(name[last:loc[0]]))
		b.WriteString(`[0-9]+`)
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(name[last:]))
	b.WriteString("$")
	return b.String(), true
}
