package process

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"echoscribe/internal/app"
	"echoscribe/internal/app/orchestrator"
	"echoscribe/internal/config"
)

var (
	outputDestination string
	mergeGapTolerance float64
	timeoutSec        int
	enginesConfigPath string
	skipProcessed     bool
	showProgress      bool
)

func init() {
	Cmd.Flags().StringVarP(&outputDestination, "output", "o", "results",
		"Where the aligned transcript is written: a directory, a .json path, or s3://bucket/key")
	Cmd.Flags().Float64VarP(&mergeGapTolerance, "merge-gap", "g", 0,
		"Largest silence in seconds still merged between consecutive segments of the same speaker (0 = default)")
	Cmd.Flags().IntVarP(&timeoutSec, "timeout", "t", 0,
		"Per-source processing deadline in seconds (0 = no deadline)")
	Cmd.Flags().StringVarP(&enginesConfigPath, "engines-config", "c", "engines.yaml",
		"Optional YAML file tuning the transcription and diarization engines")
	Cmd.Flags().BoolVar(&skipProcessed, "skip-processed", false,
		"Skip sources the run history already shows a successful run for")
	Cmd.Flags().BoolVar(&showProgress, "progress", true,
		"Show a progress bar when processing multiple sources")
}

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process [sources...]",
	Short: "Run the full pipeline for one or more audio sources",
	Long: `Run the full pipeline for one or more audio sources

- Accepts podcast RSS feeds, episode pages, direct audio URLs, and local files
- Transcription and diarization run in parallel, then spans are attributed to speakers
- The aligned transcript is saved as JSON to the output destination`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := config.FromEnv()
		if err != nil {
			log.Fatalf("Failed to load settings: %v\n", err)
		}
		if err := settings.RequireEngines(); err != nil {
			log.Fatalf("%v\n", err)
		}
		engines, err := config.LoadEnginesConfig(enginesConfigPath)
		if err != nil {
			log.Fatalf("Failed to load engines config: %v\n", err)
		}
		if mergeGapTolerance == 0 {
			mergeGapTolerance = engines.Alignment.MergeGapToleranceSec
		}
		deadline := time.Duration(timeoutSec) * time.Second
		if deadline == 0 {
			deadline = settings.ProcessTimeout
		}

		pipeline := app.InitializePipeline(settings, engines)
		defer pipeline.Close()

		opts := orchestrator.BatchOptions{
			Options: orchestrator.Options{
				OutputDestination: outputDestination,
				MergeGapTolerance: mergeGapTolerance,
				Deadline:          deadline,
			},
			SkipProcessed: skipProcessed,
			Progress:      showProgress && len(args) > 1,
		}

		results := pipeline.ProcessBatch(context.Background(), args, opts)

		failed := 0
		for _, result := range results {
			if result.OK() {
				fmt.Printf("done: %s (%d segments) -> %s\n",
					result.Source, len(result.Segments), result.OutputLocation)
				continue
			}
			failed++
			if result.FailedStage != "" {
				fmt.Fprintf(os.Stderr, "failed: %s [%s] %s\n", result.Source, result.FailedStage, result.Message)
			} else {
				fmt.Fprintf(os.Stderr, "failed: %s %s\n", result.Source, result.Message)
			}
		}
		if failed > 0 {
			os.Exit(1)
		}
	},
}
