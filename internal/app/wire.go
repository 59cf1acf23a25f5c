//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"echoscribe/internal/app/orchestrator"
	"echoscribe/internal/config"
)

// InitializePipeline assembles the full processing pipeline from the
// environment settings and the optional engines config.
func InitializePipeline(settings *config.Settings, engines *config.EnginesConfig) *orchestrator.Orchestrator {
	wire.Build(
		provideDownloaderFactory,
		provideNormalizer,
		provideTranscriber,
		provideDiarizer,
		provideSaver,
		provideRunDAO,
		provideLogger,
		provideWorkDir,
		orchestrator.NewOrchestrator,
	)
	return &orchestrator.Orchestrator{}
}
