// Package orchestrator drives one audio source through the full pipeline:
// acquisition, transcription and diarization in parallel, speaker alignment,
// and persistence. It owns the failure policy: collaborator errors never
// escape, they are classified by stage and folded into the ProcessingResult.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"echoscribe/internal/app/align"
	"echoscribe/internal/app/api"
	apperrors "echoscribe/internal/app/errors"
	"echoscribe/internal/app/logging"
	"echoscribe/internal/app/metrics"
	"echoscribe/internal/app/model"
	"echoscribe/internal/app/output"
	"echoscribe/internal/app/repository"
	"echoscribe/internal/downloader"
)

// DownloaderFactory resolves the acquisition collaborator for one source.
type DownloaderFactory func(source, outputDir string) (downloader.Downloader, error)

// Preprocessor normalizes acquired audio before inference. A nil Preprocessor
// passes the downloaded file through unchanged.
type Preprocessor interface {
	Prepare(ctx context.Context, audioPath string) (string, error)
}

// Options configure a single run.
type Options struct {
	// OutputDestination selects where the transcript is persisted. Empty
	// means the result is only returned in memory.
	OutputDestination string
	// MergeGapTolerance overrides the aligner's default same-speaker merge
	// gap in seconds when > 0.
	MergeGapTolerance float64
	// Deadline bounds the whole run when > 0. A run that exceeds it fails
	// with a timeout status distinct from stage failures.
	Deadline time.Duration
}

// Orchestrator coordinates one run at a time; concurrent runs are independent
// and share no mutable state.
type Orchestrator struct {
	downloaders DownloaderFactory
	preprocess  Preprocessor
	transcriber api.Transcriber
	diarizer    api.Diarizer
	saver       output.Saver
	db          repository.RunDAO
	logger      logging.Logger
	workDir     string
}

// NewOrchestrator wires the pipeline collaborators. db may be nil when run
// history is not wanted (tests, one-off invocations).
func NewOrchestrator(
	downloaders DownloaderFactory,
	preprocess Preprocessor,
	transcriber api.Transcriber,
	diarizer api.Diarizer,
	saver output.Saver,
	db repository.RunDAO,
	logger logging.Logger,
	workDir string,
) *Orchestrator {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Orchestrator{
		downloaders: downloaders,
		preprocess:  preprocess,
		transcriber: transcriber,
		diarizer:    diarizer,
		saver:       saver,
		db:          db,
		logger:      logger,
		workDir:     workDir,
	}
}

// Close releases the run-history store.
func (o *Orchestrator) Close() error {
	if o.db == nil {
		return nil
	}
	return o.db.Close()
}

// Process runs the pipeline end to end for one source and always returns a
// result: success with the aligned transcript, or a stage-classified failure.
func (o *Orchestrator) Process(ctx context.Context, source string, opts Options) model.ProcessingResult {
	start := time.Now()

	if strings.TrimSpace(source) == "" {
		return o.finish(start, model.ProcessingResult{
			Source:  source,
			Status:  model.StatusError,
			Message: apperrors.ErrMissingSource.Error(),
		})
	}

	if opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Deadline)
		defer cancel()
	}

	o.logger.Info("acquiring audio", "source", source)
	dl, err := o.downloaders(source, o.workDir)
	if err != nil {
		return o.finish(start, o.failure(ctx, source, model.StageAcquisition, err))
	}
	audioPath, err := dl.Download(ctx, source)
	if err != nil {
		return o.finish(start, o.failure(ctx, source, model.StageAcquisition, err))
	}
	if o.preprocess != nil {
		audioPath, err = o.preprocess.Prepare(ctx, audioPath)
		if err != nil {
			return o.finish(start, o.failure(ctx, source, model.StageAcquisition, err))
		}
	}

	// Transcription and diarization are independent: both consume the same
	// audio and neither needs the other's output, so they run concurrently
	// and are joined before alignment.
	o.logger.Info("running transcription and diarization", "audio", audioPath)
	var (
		wg       sync.WaitGroup
		segments []model.TranscriptSegment
		turns    []model.SpeakerTurn
		terr     error
		derr     error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		segments, terr = o.transcriber.Transcribe(ctx, audioPath)
	}()
	go func() {
		defer wg.Done()
		turns, derr = o.diarizer.Diarize(ctx, audioPath)
	}()
	wg.Wait()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return o.finish(start, o.timeout(source, ""))
	}
	if terr != nil {
		// Deterministic tie-break: a simultaneous diarization failure is
		// reported inside the transcription failure, never instead of it.
		err := apperrors.Stage(model.StageTranscription, terr)
		if derr != nil {
			o.logger.Error("diarization also failed", "source", source, "error", derr)
			err = apperrors.Stagef(model.StageTranscription, terr,
				"transcription failed (diarization also failed: %v)", derr)
		}
		return o.finish(start, o.failure(ctx, source, model.StageTranscription, err))
	}
	if derr != nil {
		return o.finish(start, o.failure(ctx, source, model.StageDiarization, derr))
	}

	o.logger.Info("aligning speakers", "segments", len(segments), "turns", len(turns))
	aligned, alignErr := o.align(segments, turns, opts)
	if alignErr != nil {
		// An alignment failure means the engine violated its own guarantee;
		// this is a defect, not user input, so no partial output is kept.
		return o.finish(start, model.ProcessingResult{
			Source:      source,
			Status:      model.StatusError,
			FailedStage: model.StageAlignment,
			Message:     alignErr.Error(),
		})
	}

	result := model.ProcessingResult{
		Source:   source,
		Status:   model.StatusSuccess,
		Segments: aligned,
	}

	if opts.OutputDestination != "" && o.saver != nil {
		location, err := o.saver.Save(ctx, result, opts.OutputDestination)
		if err != nil {
			// Computed work is never discarded: the failure envelope still
			// carries the aligned segments for in-process callers.
			failed := o.failure(ctx, source, model.StagePersistence, err)
			failed.Segments = aligned
			return o.finish(start, failed)
		}
		result.OutputLocation = location
	}

	return o.finish(start, result)
}

// align calls the pure engine, converting a non-overlap invariant violation
// (a panic, by construction impossible on well-formed input) into an error.
func (o *Orchestrator) align(segments []model.TranscriptSegment, turns []model.SpeakerTurn, opts Options) (aligned []model.AlignedSegment, err error) {
	defer func() {
		if r := recover(); r != nil {
			aligned = nil
			err = apperrors.Wrapf(apperrors.ErrAlignmentInvariant, "%v", r)
		}
	}()
	aligned = align.Align(segments, turns, align.Options{MergeGapTolerance: opts.MergeGapTolerance})
	return aligned, nil
}

// failure classifies a stage error, promoting deadline expiry to the distinct
// timeout status. Caller cancellation is not a timeout and keeps its stage
// classification.
func (o *Orchestrator) failure(ctx context.Context, source string, stage model.Stage, err error) model.ProcessingResult {
	if errors.Is(err, context.DeadlineExceeded) || apperrors.IsTimeout(err) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return o.timeout(source, err.Error())
	}
	return model.ProcessingResult{
		Source:      source,
		Status:      model.StatusError,
		FailedStage: stage,
		Message:     err.Error(),
	}
}

func (o *Orchestrator) timeout(source, detail string) model.ProcessingResult {
	message := apperrors.ErrDeadlineExceeded.Error()
	if detail != "" {
		message = fmt.Sprintf("%s: %s", message, detail)
	}
	return model.ProcessingResult{
		Source:  source,
		Status:  model.StatusTimeout,
		Message: message,
	}
}

// finish stamps the duration, records the run, and updates metrics. It is the
// single exit point so every outcome lands in the run history.
func (o *Orchestrator) finish(start time.Time, result model.ProcessingResult) model.ProcessingResult {
	result.Elapsed = time.Since(start)
	metrics.ObserveRun(result)

	if result.OK() {
		o.logger.Info("run completed", "source", result.Source,
			"segments", len(result.Segments), "output", result.OutputLocation,
			"elapsed", result.Elapsed)
	} else {
		o.logger.Error("run failed", "source", result.Source,
			"stage", string(result.FailedStage), "status", string(result.Status),
			"error", result.Message)
	}

	if o.db != nil {
		rec := model.RunRecord{
			Source:         result.Source,
			Status:         string(result.Status),
			FailedStage:    string(result.FailedStage),
			ErrorMessage:   result.Message,
			SegmentCount:   len(result.Segments),
			OutputLocation: result.OutputLocation,
			DurationMs:     result.Elapsed.Milliseconds(),
			CreatedAt:      time.Now(),
		}
		if err := o.db.RecordRun(rec); err != nil {
			o.logger.Error("failed to record run", "source", result.Source, "error", err)
		}
	}
	return result
}
