// internal/organizer/feedback.go
package organizer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// feedbackRetries bounds the optimistic-concurrency retry loop.
const feedbackRetries = 3

// RecordFeedback applies a user's response to a suggestion. Accepted
// moves confidence strongly toward 1.0, rejected sharply toward 0
// (deactivating below the floor), ignored decays it slightly. Every
// call appends to the feedback log. Feedback for a pattern the owner
// does not hold fails with NotFoundError; it is a user-visible action
// and deserves a visible failure.
func (s *Service) RecordFeedback(ctx context.Context, ownerID, patternID string, action FeedbackAction) (*OrganizationPattern, error) {
	if !ValidFeedbackAction(string(action)) {
		return nil, ValidationError{Field: "action", Reason: "must be accepted, rejected or ignored"}
	}

	var lastErr error
	for attempt := 0; attempt < feedbackRetries; attempt++ {
		p, err := s.store.Get(ctx, ownerID, patternID)
		if err != nil {
			return nil, err
		}

		s.applyFeedback(p, action, time.Now().UTC())

		if err := s.store.Update(ctx, p); err != nil {
			if errors.Is(err, ErrConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}

		s.metrics.FeedbackApplied.WithLabelValues(string(action)).Inc()
		s.logger.Debug("applied pattern feedback",
			zap.String("owner_id", ownerID),
			zap.String("pattern_id", patternID),
			zap.String("action", string(action)),
			zap.Float64("confidence", p.Confidence),
			zap.Bool("is_active", p.IsActive))
		return p, nil
	}
	return nil, StorageError{Op: "feedback", Err: lastErr}
}

func (s *Service) applyFeedback(p *OrganizationPattern, action FeedbackAction, now time.Time) {
	switch action {
	case FeedbackAccepted:
		p.Confidence = clamp(p.Confidence + s.cfg.AcceptStep*(1-p.Confidence))
	case FeedbackRejected:
		p.Confidence = clamp(p.Confidence * (1 - s.cfg.RejectFactor))
		if p.Confidence < s.cfg.DeactivationFloor {
			p.IsActive = false
		}
	case FeedbackIgnored:
		p.Confidence = clamp(p.Confidence * (1 - s.cfg.IgnoreFactor))
	}
	p.Feedback.Append(action, now)
}

// Dismiss deactivates a pattern on the user's explicit request. The
// record is kept for audit; it just stops producing suggestions.
func (s *Service) Dismiss(ctx context.Context, ownerID, patternID string) (*OrganizationPattern, error) {
	var lastErr error
	for attempt := 0; attempt < feedbackRetries; attempt++ {
		p, err := s.store.Get(ctx, ownerID, patternID)
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return p, nil
		}

		p.IsActive = false
		if err := s.store.Update(ctx, p); err != nil {
			if errors.Is(err, ErrConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}

		s.logger.Info("pattern dismissed",
			zap.String("owner_id", ownerID),
			zap.String("pattern_id", patternID))
		return p, nil
	}
	return nil, StorageError{Op: "dismiss", Err: lastErr}
}
