// internal/organizer/types.go
package organizer

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PatternKind determines which trigger fields are semantically active.
type PatternKind string

const (
	KindFileTypeToFolder        PatternKind = "fileTypeToFolder"
	KindFileNamePatternToFolder PatternKind = "fileNamePatternToFolder"
	KindSourceFolderToDest      PatternKind = "sourceFolderToDestination"
	KindTimeBased               PatternKind = "timeBased"
	KindProjectBased            PatternKind = "projectBased"
)

// FeedbackAction is a user's response to a suggestion.
type FeedbackAction string

const (
	FeedbackAccepted FeedbackAction = "accepted"
	FeedbackRejected FeedbackAction = "rejected"
	FeedbackIgnored  FeedbackAction = "ignored"
)

// ValidFeedbackAction reports whether s names a known action.
func ValidFeedbackAction(s string) bool {
	switch FeedbackAction(s) {
	case FeedbackAccepted, FeedbackRejected, FeedbackIgnored:
		return true
	}
	return false
}

// FileDescriptor is the file metadata the surrounding system hands us.
type FileDescriptor struct {
	ID          string `json:"id"`
	MimeType    string `json:"mime_type"`
	Extension   string `json:"extension"`
	DisplayName string `json:"display_name"`
	Size        int64  `json:"size"`
}

// EventContext carries caller-supplied signals alongside a file event.
type EventContext struct {
	ProjectLabel       string `json:"project_label,omitempty"`
	PrecedingAction    string `json:"preceding_action,omitempty"`
	MinutesSinceUpload int    `json:"minutes_since_upload,omitempty"`
}

// Trigger is the condition set a file must satisfy for a pattern to
// apply. Unset fields are wildcards. HourOfDay and DayOfWeek use -1
// for unset so that hour 0 (midnight) and Sunday remain expressible.
type Trigger struct {
	MimeType       string `json:"mime_type,omitempty"`
	Extension      string `json:"extension,omitempty"`
	NameRegexp     string `json:"name_regexp,omitempty"`
	SourceFolderID string `json:"source_folder_id,omitempty"`
	ProjectLabel   string `json:"project_label,omitempty"`
	HourOfDay      int    `json:"hour_of_day"`
	DayOfWeek      int    `json:"day_of_week"`
}

// EmptyTrigger returns a trigger with all fields unset.
func EmptyTrigger() Trigger {
	return Trigger{HourOfDay: -1, DayOfWeek: -1}
}

// IsEmpty reports whether no trigger field is populated. An empty
// trigger would match every file and is invalid.
func (t Trigger) IsEmpty() bool {
	return t.MimeType == "" && t.Extension == "" && t.NameRegexp == "" &&
		t.SourceFolderID == "" && t.ProjectLabel == "" &&
		t.HourOfDay < 0 && t.DayOfWeek < 0
}

// kindFields maps each pattern kind to the trigger fields it may
// populate. Anything outside the set is an invalid combination.
var kindFields = map[PatternKind]struct {
	mime, ext, name, source, project, hour, day bool
}{
	KindFileTypeToFolder:        {mime: true, ext: true},
	KindFileNamePatternToFolder: {name: true, ext: true},
	KindSourceFolderToDest:      {source: true, mime: true, ext: true},
	KindTimeBased:               {hour: true, day: true, mime: true, ext: true},
	KindProjectBased:            {project: true},
}

// Validate checks the trigger against the kind's allowed field set.
func (t Trigger) Validate(kind PatternKind) error {
	allowed, ok := kindFields[kind]
	if !ok {
		return ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown pattern kind %q", kind)}
	}
	if t.IsEmpty() {
		return ValidationError{Field: "trigger", Reason: "no populated fields; pattern would match everything"}
	}
	switch {
	case t.MimeType != "" && !allowed.mime:
		return ValidationError{Field: "mime_type", Reason: fmt.Sprintf("not valid for kind %s", kind)}
	case t.Extension != "" && !allowed.ext:
		return ValidationError{Field: "extension", Reason: fmt.Sprintf("not valid for kind %s", kind)}
	case t.NameRegexp != "" && !allowed.name:
		return ValidationError{Field: "name_regexp", Reason: fmt.Sprintf("not valid for kind %s", kind)}
	case t.SourceFolderID != "" && !allowed.source:
		return ValidationError{Field: "source_folder_id", Reason: fmt.Sprintf("not valid for kind %s", kind)}
	case t.ProjectLabel != "" && !allowed.project:
		return ValidationError{Field: "project_label", Reason: fmt.Sprintf("not valid for kind %s", kind)}
	case t.HourOfDay >= 0 && !allowed.hour:
		return ValidationError{Field: "hour_of_day", Reason: fmt.Sprintf("not valid for kind %s", kind)}
	case t.DayOfWeek >= 0 && !allowed.day:
		return ValidationError{Field: "day_of_week", Reason: fmt.Sprintf("not valid for kind %s", kind)}
	}
	// Each kind also has a defining field without which it cannot
	// distinguish anything.
	switch kind {
	case KindFileTypeToFolder:
		if t.MimeType == "" && t.Extension == "" {
			return ValidationError{Field: "trigger", Reason: "fileTypeToFolder requires a mime type or extension"}
		}
	case KindFileNamePatternToFolder:
		if t.NameRegexp == "" {
			return ValidationError{Field: "name_regexp", Reason: "fileNamePatternToFolder requires a name pattern"}
		}
	case KindSourceFolderToDest:
		if t.SourceFolderID == "" {
			return ValidationError{Field: "source_folder_id", Reason: "sourceFolderToDestination requires a source folder"}
		}
	case KindTimeBased:
		if t.HourOfDay < 0 && t.DayOfWeek < 0 {
			return ValidationError{Field: "trigger", Reason: "timeBased requires an hour or weekday"}
		}
	case KindProjectBased:
		if t.ProjectLabel == "" {
			return ValidationError{Field: "project_label", Reason: "projectBased requires a project label"}
		}
	}
	if t.HourOfDay > 23 {
		return ValidationError{Field: "hour_of_day", Reason: "must be 0-23"}
	}
	if t.DayOfWeek > 6 {
		return ValidationError{Field: "day_of_week", Reason: "must be 0-6"}
	}
	if t.NameRegexp != "" {
		if _, err := regexp.Compile(t.NameRegexp); err != nil {
			return ValidationError{Field: "name_regexp", Reason: err.Error()}
		}
	}
	return nil
}

// Moment is the evaluation context for trigger matching: the wall
// clock and the folder the file currently sits in (or is being
// uploaded into).
type Moment struct {
	Time           time.Time
	SourceFolderID string
}

// ObservedContext is the auxiliary signal captured when a pattern is
// recorded or reinforced.
type ObservedContext struct {
	PrecedingAction    string `json:"preceding_action,omitempty"`
	MinutesSinceUpload int    `json:"minutes_since_upload,omitempty"`
	SizeBand           string `json:"size_band,omitempty"`
}

// FeedbackEvent is one user response to a suggestion.
type FeedbackEvent struct {
	Action    FeedbackAction `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
}

// maxRecentFeedback caps the per-pattern feedback log. Older events
// are summarized by the counters and dropped from the log.
const maxRecentFeedback = 20

// FeedbackSummary holds per-action counters plus a capped log of the
// most recent events.
type FeedbackSummary struct {
	AcceptedCount int             `json:"accepted_count"`
	RejectedCount int             `json:"rejected_count"`
	IgnoredCount  int             `json:"ignored_count"`
	Recent        []FeedbackEvent `json:"recent,omitempty"`
}

// Append records an event, bumping the matching counter and trimming
// the log to the cap.
func (f *FeedbackSummary) Append(action FeedbackAction, at time.Time) {
	switch action {
	case FeedbackAccepted:
		f.AcceptedCount++
	case FeedbackRejected:
		f.RejectedCount++
	case FeedbackIgnored:
		f.IgnoredCount++
	}
	f.Recent = append(f.Recent, FeedbackEvent{Action: action, Timestamp: at})
	if len(f.Recent) > maxRecentFeedback {
		f.Recent = f.Recent[len(f.Recent)-maxRecentFeedback:]
	}
}

// OrganizationPattern is one learned trigger-to-destination rule,
// owned by exactly one user.
type OrganizationPattern struct {
	ID                    string          `json:"id"`
	OwnerID               string          `json:"owner_id"`
	Kind                  PatternKind     `json:"kind"`
	Trigger               Trigger         `json:"trigger"`
	DestinationFolderID   string          `json:"destination_folder_id"`
	DestinationFolderName string          `json:"destination_folder_name"`
	Confidence            float64         `json:"confidence"`
	Occurrences           int             `json:"occurrences"`
	FirstSeen             time.Time       `json:"first_seen"`
	LastOccurrence        time.Time       `json:"last_occurrence"`
	Context               ObservedContext `json:"context"`
	AIExplanation         string          `json:"ai_explanation,omitempty"`
	Feedback              FeedbackSummary `json:"feedback"`
	IsActive              bool            `json:"is_active"`

	// Version supports optimistic concurrency in the store.
	Version int64 `json:"-"`
}

// MatchKey is the canonical identity of an active pattern: two active
// patterns for one owner never share a key. Includes the destination
// so the same trigger may map to different folders as separate rules.
func (p *OrganizationPattern) MatchKey() string {
	return TriggerKey(p.Kind, p.Trigger, p.DestinationFolderID)
}

// TriggerKey builds the canonical (kind, trigger, destination) key.
func TriggerKey(kind PatternKind, t Trigger, destFolderID string) string {
	return strings.Join([]string{
		string(kind),
		strings.ToLower(t.MimeType),
		strings.ToLower(t.Extension),
		t.NameRegexp,
		t.SourceFolderID,
		strings.ToLower(t.ProjectLabel),
		fmt.Sprintf("%d", t.HourOfDay),
		fmt.Sprintf("%d", t.DayOfWeek),
		destFolderID,
	}, "|")
}

// Clone returns a deep copy, detaching the feedback log.
func (p *OrganizationPattern) Clone() *OrganizationPattern {
	cp := *p
	if p.Feedback.Recent != nil {
		cp.Feedback.Recent = make([]FeedbackEvent, len(p.Feedback.Recent))
		copy(cp.Feedback.Recent, p.Feedback.Recent)
	}
	return &cp
}

// Suggestion is one ranked destination proposal.
type Suggestion struct {
	DestinationFolderID   string  `json:"destination_folder_id"`
	DestinationFolderName string  `json:"destination_folder_name"`
	Confidence            float64 `json:"confidence"`
	PatternID             string  `json:"pattern_id"`
	Explanation           string  `json:"explanation,omitempty"`

	score float64 // effective ranking score, not serialized
}

// OwnerStats summarizes an owner's learned patterns.
type OwnerStats struct {
	OwnerID        string  `json:"owner_id"`
	ActivePatterns int     `json:"active_patterns"`
	TotalPatterns  int     `json:"total_patterns"`
	MeanConfidence float64 `json:"mean_confidence"`
}

// SizeBand buckets a file size into a coarse label for the observed
// context.
func SizeBand(size int64) string {
	switch {
	case size <= 0:
		return ""
	case size < 1<<20:
		return "small"
	case size < 100<<20:
		return "medium"
	default:
		return "large"
	}
}

// clamp keeps confidence inside [0,1] after every mutation.
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
