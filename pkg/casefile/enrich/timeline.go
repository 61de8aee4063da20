package enrich

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/casefile-io/casefile/pkg/casefile/store"
)

// TimelineBuilder emits one timeline event per dated document. It runs
// against a freshly rebuilt timeline_events table, so no dedup is
// needed.
type TimelineBuilder struct {
	store store.Store
	log   *zap.Logger
}

// NewTimelineBuilder builds the timeline stage.
func NewTimelineBuilder(st store.Store, log *zap.Logger) *TimelineBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &TimelineBuilder{store: st, log: log}
}

// Name implements Stage.
func (b *TimelineBuilder) Name() string { return "timeline-build" }

// Run joins documents to their enrichment rows and inserts one event
// per document that carries an extracted date. Undated documents are
// skipped; the skip count only shows up in the log.
func (b *TimelineBuilder) Run(ctx context.Context) error {
	docs, err := b.store.Documents(ctx)
	if err != nil {
		return fmt.Errorf("read documents: %w", err)
	}
	dated, err := b.store.DatedEnrichments(ctx)
	if err != nil {
		return fmt.Errorf("read dated enrichments: %w", err)
	}

	for _, de := range dated {
		ev := BuildEvent(de)
		if err := b.store.InsertTimelineEvent(ctx, ev); err != nil {
			return fmt.Errorf("insert event for document %d: %w", de.DocumentID, err)
		}
	}

	b.log.Info("timeline build complete",
		zap.Int("events", len(dated)),
		zap.Int("skipped_undated", len(docs)-len(dated)))
	return nil
}

// BuildEvent derives a timeline event from one dated document.
func BuildEvent(de store.DatedEnrichment) store.TimelineEvent {
	title := de.Title
	if title == "" {
		title = de.FileName
	}

	return store.TimelineEvent{
		EventDate:    de.ExtractedDate,
		EventType:    EventTypeFor(de.DocumentType),
		Title:        truncate(title, 200),
		Description:  "Document: " + de.FileName,
		DocumentIDs:  []int64{de.DocumentID},
		Significance: 5,
	}
}

// EventTypeFor maps a document type to its coarse timeline category.
func EventTypeFor(t store.DocType) store.EventType {
	switch t {
	case store.DocEmail:
		return store.EventCommunication
	case store.DocLegal:
		return store.EventLegal
	case store.DocFlightLog:
		return store.EventTravel
	case store.DocFinancial:
		return store.EventFinancial
	default:
		return store.EventDocument
	}
}
