package casefile

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/casefile-io/casefile/pkg/casefile/enrich"
	"github.com/casefile-io/casefile/pkg/casefile/store"
)

// Enricher is the main pipeline facade: schema init, entity
// classification, role annotation, document classification and
// timeline build, run strictly in that order against one store.
type Enricher struct {
	store   store.Store
	rules   enrich.Rules
	log     *zap.Logger
	entropy *ulid.MonotonicEntropy
}

// Options configures an Enricher instance.
type Options struct {
	Store  store.Store
	Rules  enrich.Rules // zero value means DefaultRules
	Logger *zap.Logger
}

// New creates an Enricher with the given dependencies.
func New(opts Options) *Enricher {
	rules := opts.Rules
	if len(rules.OrgIndicators) == 0 && len(rules.KnownPeople) == 0 && len(rules.RoleGroups) == 0 {
		rules = enrich.DefaultRules()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Enricher{
		store:   opts.Store,
		rules:   rules,
		log:     log,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Close cleanly shuts down the Enricher.
func (e *Enricher) Close() error {
	return e.store.Close()
}

// Summary reports the derived-table counts after a run.
type Summary struct {
	RunID               string
	People              int64
	Organizations       int64
	EnrichedDocuments   int64
	ClassifiedDocuments int64
	TimelineEvents      int64
}

// Run executes the full pipeline once. Schema initialization happens
// first and rebuilds timeline_events from scratch; the stages then run
// sequentially, each checkpointed under a fresh run id. The first
// error aborts the rest — already-committed stages stay committed.
func (e *Enricher) Run(ctx context.Context) (Summary, error) {
	if err := e.store.EnsureSchema(ctx); err != nil {
		return Summary{}, fmt.Errorf("ensure schema: %w", err)
	}

	annotator, err := enrich.NewRoleAnnotator(e.store, e.rules, e.log)
	if err != nil {
		return Summary{}, err
	}

	pipeline := enrich.NewPipeline(e.store, e.log,
		enrich.NewEntityClassifier(e.store, e.rules, e.log),
		annotator,
		enrich.NewDocumentClassifier(e.store, e.log),
		enrich.NewTimelineBuilder(e.store, e.log),
	)

	runID := ulid.MustNew(ulid.Now(), e.entropy).String()
	if err := pipeline.Run(ctx, runID); err != nil {
		return Summary{RunID: runID}, err
	}

	counts, err := e.store.Counts(ctx)
	if err != nil {
		return Summary{RunID: runID}, fmt.Errorf("final counts: %w", err)
	}

	return Summary{
		RunID:               runID,
		People:              counts.People,
		Organizations:       counts.Organizations,
		EnrichedDocuments:   counts.EnrichedDocuments,
		ClassifiedDocuments: counts.ClassifiedDocuments,
		TimelineEvents:      counts.TimelineEvents,
	}, nil
}
