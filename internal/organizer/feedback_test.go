// internal/organizer/feedback_test.go
package organizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RecordFeedback(t *testing.T) {
	ctx := context.Background()

	newPattern := func(t *testing.T) (*Service, *MemoryStore, *OrganizationPattern) {
		svc, store := newTestService(t)
		p := svc.Record(ctx, moveEvent("owner-1", "invoice_2024.pdf", "pdf", "application/pdf", "inbox", "finance"))
		require.NotNil(t, p)
		return svc, store, p
	}

	t.Run("accepted raises confidence beyond reinforcement", func(t *testing.T) {
		svc, _, p := newPattern(t)
		before := p.Confidence

		updated, err := svc.RecordFeedback(ctx, "owner-1", p.ID, FeedbackAccepted)
		require.NoError(t, err)
		assert.Greater(t, updated.Confidence, before)
		assert.LessOrEqual(t, updated.Confidence, 1.0)
		assert.Equal(t, 1, updated.Feedback.AcceptedCount)
		require.Len(t, updated.Feedback.Recent, 1)
		assert.Equal(t, FeedbackAccepted, updated.Feedback.Recent[0].Action)
	})

	t.Run("rejected twice deactivates a fresh pattern", func(t *testing.T) {
		svc, _, p := newPattern(t)

		first, err := svc.RecordFeedback(ctx, "owner-1", p.ID, FeedbackRejected)
		require.NoError(t, err)
		assert.True(t, first.IsActive, "one rejection is not enough")
		assert.Less(t, first.Confidence, p.Confidence)

		second, err := svc.RecordFeedback(ctx, "owner-1", p.ID, FeedbackRejected)
		require.NoError(t, err)
		assert.False(t, second.IsActive, "confidence collapsed below the floor")
		assert.Equal(t, 2, second.Feedback.RejectedCount)
	})

	t.Run("deactivated patterns stop appearing in suggestions", func(t *testing.T) {
		svc, _, p := newPattern(t)

		_, err := svc.RecordFeedback(ctx, "owner-1", p.ID, FeedbackRejected)
		require.NoError(t, err)
		_, err = svc.RecordFeedback(ctx, "owner-1", p.ID, FeedbackRejected)
		require.NoError(t, err)

		file := FileDescriptor{DisplayName: "invoice_2025.pdf", Extension: "pdf", MimeType: "application/pdf"}
		suggestions, err := svc.Suggest(ctx, "owner-1", file, EventContext{}, "inbox", 5)
		require.NoError(t, err)
		assert.Empty(t, suggestions)
	})

	t.Run("ignored decays gently", func(t *testing.T) {
		svc, _, p := newPattern(t)

		ignored, err := svc.RecordFeedback(ctx, "owner-1", p.ID, FeedbackIgnored)
		require.NoError(t, err)
		assert.Less(t, ignored.Confidence, p.Confidence)
		assert.True(t, ignored.IsActive)

		// Much weaker than a rejection from the same starting point.
		svc2, _, p2 := newPattern(t)
		rejected, err := svc2.RecordFeedback(ctx, "owner-1", p2.ID, FeedbackRejected)
		require.NoError(t, err)
		assert.Greater(t, ignored.Confidence, rejected.Confidence)
	})

	t.Run("confidence stays in range under any sequence", func(t *testing.T) {
		svc, _, p := newPattern(t)

		actions := []FeedbackAction{
			FeedbackAccepted, FeedbackAccepted, FeedbackAccepted, FeedbackAccepted,
			FeedbackAccepted, FeedbackAccepted, FeedbackAccepted, FeedbackAccepted,
			FeedbackRejected, FeedbackIgnored, FeedbackAccepted, FeedbackRejected,
		}
		for _, action := range actions {
			updated, err := svc.RecordFeedback(ctx, "owner-1", p.ID, action)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, updated.Confidence, 0.0)
			assert.LessOrEqual(t, updated.Confidence, 1.0)
		}
	})

	t.Run("cross-tenant feedback is rejected", func(t *testing.T) {
		svc, _, p := newPattern(t)

		_, err := svc.RecordFeedback(ctx, "owner-2", p.ID, FeedbackAccepted)
		require.Error(t, err)
		assert.IsType(t, NotFoundError{}, err)
	})

	t.Run("unknown pattern is not found", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.RecordFeedback(ctx, "owner-1", "no-such-pattern", FeedbackAccepted)
		require.Error(t, err)
		assert.IsType(t, NotFoundError{}, err)
	})

	t.Run("unknown action is a validation error", func(t *testing.T) {
		svc, _, p := newPattern(t)

		_, err := svc.RecordFeedback(ctx, "owner-1", p.ID, FeedbackAction("shrugged"))
		require.Error(t, err)
		assert.IsType(t, ValidationError{}, err)
	})

	t.Run("feedback log is capped", func(t *testing.T) {
		svc, _, p := newPattern(t)

		var updated *OrganizationPattern
		var err error
		for i := 0; i < maxRecentFeedback+10; i++ {
			updated, err = svc.RecordFeedback(ctx, "owner-1", p.ID, FeedbackAccepted)
			require.NoError(t, err)
		}
		assert.Len(t, updated.Feedback.Recent, maxRecentFeedback)
		assert.Equal(t, maxRecentFeedback+10, updated.Feedback.AcceptedCount)
	})
}

func TestService_Dismiss(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	p := svc.Record(ctx, moveEvent("owner-1", "invoice_2024.pdf", "pdf", "", "inbox", "finance"))
	require.NotNil(t, p)

	dismissed, err := svc.Dismiss(ctx, "owner-1", p.ID)
	require.NoError(t, err)
	assert.False(t, dismissed.IsActive)

	// Retained for audit, just inactive.
	kept, err := store.Get(ctx, "owner-1", p.ID)
	require.NoError(t, err)
	assert.False(t, kept.IsActive)

	// Dismissing again is a no-op, not an error.
	again, err := svc.Dismiss(ctx, "owner-1", p.ID)
	require.NoError(t, err)
	assert.False(t, again.IsActive)

	// Cross-tenant dismissal is rejected.
	_, err = svc.Dismiss(ctx, "owner-2", p.ID)
	assert.Error(t, err)
}

func TestService_RenameFolder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	p := svc.Record(ctx, moveEvent("owner-1", "invoice_2024.pdf", "pdf", "", "inbox", "finance"))
	require.NotNil(t, p)
	assert.Equal(t, "Finance", p.DestinationFolderName)

	n, err := svc.RenameFolder(ctx, "owner-1", "finance", "Accounting")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	patterns, err := svc.ListPatterns(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "Accounting", patterns[0].DestinationFolderName)
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	svc.Record(ctx, moveEvent("owner-1", "invoice_2024.pdf", "pdf", "", "inbox", "finance"))
	p2 := svc.Record(ctx, moveEvent("owner-1", "notes.txt", "txt", "text/plain", "", "notes"))
	require.NotNil(t, p2)

	_, err := svc.Dismiss(ctx, "owner-1", p2.ID)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPatterns)
	assert.Equal(t, 1, stats.ActivePatterns)
	assert.InDelta(t, 0.3, stats.MeanConfidence, 0.001)
}

func TestFeedbackSummary_Append(t *testing.T) {
	var f FeedbackSummary
	now := time.Now()

	for i := 0; i < 5; i++ {
		f.Append(FeedbackAccepted, now)
	}
	f.Append(FeedbackRejected, now)
	f.Append(FeedbackIgnored, now)

	assert.Equal(t, 5, f.AcceptedCount)
	assert.Equal(t, 1, f.RejectedCount)
	assert.Equal(t, 1, f.IgnoredCount)
	assert.Len(t, f.Recent, 7)
}
