// internal/organizer/service.go
package organizer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SDRoan/Filebox-sub002/internal/metrics"
)

// MoveEvent is one observed move or upload of a file into a folder.
type MoveEvent struct {
	OwnerID               string         `json:"owner_id"`
	File                  FileDescriptor `json:"file"`
	SourceFolderID        string         `json:"source_folder_id"`
	DestinationFolderID   string         `json:"destination_folder_id"`
	DestinationFolderName string         `json:"destination_folder_name"`
	Context               EventContext   `json:"context"`
	ObservedAt            time.Time      `json:"observed_at"`
}

// Service is the predictive organization engine: it learns patterns
// from move events and ranks destination suggestions for new files.
type Service struct {
	store     PatternStore
	matcher   *Matcher
	scorer    *Scorer
	explainer ExplanationGenerator
	metrics   *metrics.Metrics
	cfg       Config
	logger    *zap.Logger

	events    chan MoveEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewService creates the engine and starts its recording worker.
// explainer may be nil; explanations are optional metadata.
func NewService(store PatternStore, cfg Config, explainer ExplanationGenerator, logger *zap.Logger) *Service {
	cfg.ApplyDefaults()
	if explainer == nil {
		explainer = NoopExplainer{}
	}

	s := &Service{
		store:     store,
		matcher:   NewMatcher(),
		scorer:    NewScorer(cfg.Scorer),
		explainer: explainer,
		metrics:   metrics.Get(),
		cfg:       cfg,
		logger:    logger,
		events:    make(chan MoveEvent, cfg.QueueSize),
		done:      make(chan struct{}),
	}

	go s.processEvents()
	return s
}

// Enqueue hands a move event to the recording worker. Recording is
// best-effort telemetry: a full buffer drops the event with a warning
// instead of blocking the caller's file operation.
func (s *Service) Enqueue(ev MoveEvent) {
	select {
	case s.events <- ev:
	default:
		s.logger.Warn("organizer event buffer full, dropping move event",
			zap.String("owner_id", ev.OwnerID))
		s.metrics.EventsDropped.Inc()
	}
}

// Flush synchronously drains any buffered events. Test helper.
func (s *Service) Flush() {
	for {
		select {
		case ev := <-s.events:
			s.Record(context.Background(), ev)
		default:
			return
		}
	}
}

// Close stops the recording worker after draining the buffer. Safe to
// call more than once.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.Flush()
	})
}

func (s *Service) processEvents() {
	for {
		select {
		case ev := <-s.events:
			s.Record(context.Background(), ev)
		case <-s.done:
			return
		}
	}
}
