package enrich

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/casefile-io/casefile/pkg/casefile/store"
)

// Stage is one step of the enrichment pipeline. Stages run strictly in
// order; each depends on the committed writes of the one before it.
type Stage interface {
	Name() string
	Run(ctx context.Context) error
}

// Pipeline executes an ordered list of stages against a shared store,
// checkpointing each completion under a run id. There is no
// transaction across stages: a failure leaves earlier stages
// committed, matching the all-or-nothing batch contract.
type Pipeline struct {
	store  store.Store
	stages []Stage
	log    *zap.Logger
}

// NewPipeline creates a pipeline over the given stages.
func NewPipeline(st store.Store, log *zap.Logger, stages ...Stage) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{store: st, stages: stages, log: log}
}

// Run executes every stage in order under the given run id. The first
// stage error aborts the remainder and marks the run failed.
func (p *Pipeline) Run(ctx context.Context, runID string) error {
	if err := p.store.BeginRun(ctx, runID, time.Now()); err != nil {
		return fmt.Errorf("begin run: %w", err)
	}

	for i, stage := range p.stages {
		p.log.Info("stage starting",
			zap.String("run_id", runID),
			zap.String("stage", stage.Name()),
			zap.Int("position", i+1),
			zap.Int("stages", len(p.stages)))

		start := time.Now()
		if err := stage.Run(ctx); err != nil {
			if ferr := p.store.FinishRun(ctx, runID, "failed", time.Now()); ferr != nil {
				p.log.Warn("could not record failed run", zap.Error(ferr))
			}
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}

		if err := p.store.MarkStageDone(ctx, runID, stage.Name(), time.Now()); err != nil {
			return fmt.Errorf("checkpoint stage %s: %w", stage.Name(), err)
		}
		p.log.Info("stage complete",
			zap.String("stage", stage.Name()),
			zap.Duration("took", time.Since(start)))
	}

	if err := p.store.FinishRun(ctx, runID, "succeeded", time.Now()); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}
