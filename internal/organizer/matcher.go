// internal/organizer/matcher.go
package organizer

import (
	"regexp"
	"strings"
	"sync"
)

// Matcher decides whether a pattern's trigger is satisfied by a file.
// It is ranking-free: compatibility only, scoring happens elsewhere.
type Matcher struct {
	mu    sync.RWMutex
	cache map[string]*regexp.Regexp
}

// NewMatcher creates a matcher with a compiled-regexp cache.
func NewMatcher() *Matcher {
	return &Matcher{cache: make(map[string]*regexp.Regexp)}
}

// Matches reports whether every populated trigger field holds for the
// file at the given moment. Unset fields are wildcards.
func (m *Matcher) Matches(p *OrganizationPattern, file FileDescriptor, ctx EventContext, now Moment) bool {
	t := p.Trigger

	if t.MimeType != "" && !strings.EqualFold(t.MimeType, file.MimeType) {
		return false
	}
	if t.Extension != "" && !strings.EqualFold(t.Extension, normalizeExtension(file.Extension)) {
		return false
	}
	if t.NameRegexp != "" {
		re := m.compiled(t.NameRegexp)
		if re == nil || !re.MatchString(file.DisplayName) {
			return false
		}
	}
	if t.SourceFolderID != "" && t.SourceFolderID != now.SourceFolderID {
		return false
	}
	if t.ProjectLabel != "" {
		label := strings.ToLower(ctx.ProjectLabel)
		want := strings.ToLower(t.ProjectLabel)
		if label != want && !strings.Contains(label, want) {
			return false
		}
	}
	// Time triggers are exact on purpose: a range would make
	// time-based suggestions fire all day.
	if t.HourOfDay >= 0 && t.HourOfDay != now.Time.Hour() {
		return false
	}
	if t.DayOfWeek >= 0 && t.DayOfWeek != int(now.Time.Weekday()) {
		return false
	}
	return true
}

func (m *Matcher) compiled(expr string) *regexp.Regexp {
	m.mu.RLock()
	re, ok := m.cache[expr]
	m.mu.RUnlock()
	if ok {
		return re
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		// Stored expressions are validated at creation; a bad one
		// here means corrupted data, so the trigger simply never
		// matches.
		re = nil
	}

	m.mu.Lock()
	m.cache[expr] = re
	m.mu.Unlock()
	return re
}

// normalizeExtension strips a leading dot so ".pdf" and "pdf" compare
// equal.
func normalizeExtension(ext string) string {
	return strings.TrimPrefix(ext, ".")
}
