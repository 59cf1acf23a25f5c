package orchestrator

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"echoscribe/internal/app/model"
)

// BatchOptions configure a multi-source run.
type BatchOptions struct {
	Options
	// SkipProcessed skips sources the run history already shows a
	// successful run for.
	SkipProcessed bool
	// Progress renders a progress bar while the batch runs.
	Progress bool
	// ProgressWriter overrides the progress output stream (tests).
	ProgressWriter io.Writer
}

// ProcessBatch runs the pipeline for each source in order and returns one
// result per processed source. Sources are independent; a failed run never
// stops the batch.
func (o *Orchestrator) ProcessBatch(ctx context.Context, sources []string, opts BatchOptions) []model.ProcessingResult {
	pending := sources
	if opts.SkipProcessed && o.db != nil {
		pending = o.filterUnprocessed(sources)
	}

	var bar *mpb.Bar
	var container *mpb.Progress
	if opts.Progress && len(pending) > 0 {
		writer := opts.ProgressWriter
		if writer == nil {
			writer = os.Stderr
		}
		container = mpb.New(
			mpb.WithOutput(writer),
			mpb.WithRefreshRate(120*time.Millisecond),
		)
		bar = container.AddBar(int64(len(pending)),
			mpb.PrependDecorators(
				decor.Name("processing "),
				decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.NewPercentage("%.0f", decor.WCSyncSpace),
			),
		)
	}

	results := make([]model.ProcessingResult, 0, len(pending))
	for _, source := range pending {
		results = append(results, o.Process(ctx, source, opts.Options))
		if bar != nil {
			bar.Increment()
		}
	}
	if container != nil {
		container.Wait()
	}
	return results
}

func (o *Orchestrator) filterUnprocessed(sources []string) []string {
	pending := make([]string, 0, len(sources))
	for _, source := range sources {
		if id, err := o.db.CheckIfProcessed(source); err == nil {
			o.logger.Info("source already processed, skipping", "source", source, "run_id", id)
			continue
		}
		pending = append(pending, source)
	}
	return pending
}
