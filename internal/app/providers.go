package app

import (
	"log"
	"os"
	"path/filepath"

	"echoscribe/internal/app/api"
	"echoscribe/internal/app/api/pyannote"
	"echoscribe/internal/app/audio"
	"echoscribe/internal/app/api/whisper"
	"echoscribe/internal/app/logging"
	"echoscribe/internal/app/orchestrator"
	"echoscribe/internal/app/output"
	"echoscribe/internal/app/repository"
	"echoscribe/internal/app/repository/pg"
	"echoscribe/internal/app/repository/sqlite"
	"echoscribe/internal/config"
	"echoscribe/internal/downloader"
)

// provideDownloaderFactory resolves acquisition per source shape.
func provideDownloaderFactory() orchestrator.DownloaderFactory {
	return downloader.ForSource
}

// provideNormalizer converts downloaded audio to 16kHz mono WAV via ffmpeg.
func provideNormalizer() orchestrator.Preprocessor {
	return audio.NewNormalizer()
}

// provideTranscriber builds the whisper engine; requires OPENAI_API_KEY.
func provideTranscriber(engines *config.EnginesConfig) api.Transcriber {
	var opts []whisper.Option
	if engines.Transcription.Model != "" {
		opts = append(opts, whisper.WithModel(engines.Transcription.Model))
	}
	if engines.Transcription.Language != "" {
		opts = append(opts, whisper.WithLanguage(engines.Transcription.Language))
	}
	return whisper.NewTranscriber(whisper.GetClient(), opts...)
}

// provideDiarizer builds the pyannote HTTP client.
func provideDiarizer(settings *config.Settings, engines *config.EnginesConfig) api.Diarizer {
	return pyannote.NewDiarizer(pyannote.Config{
		BaseURL:     settings.PyannoteServerURL,
		AuthToken:   settings.PyannoteAuthToken,
		DiarizePath: engines.Diarization.DiarizePath,
		HealthPath:  engines.Diarization.HealthPath,
		Timeout:     engines.Diarization.Timeout,
		NumSpeakers: engines.Diarization.NumSpeakers,
	})
}

// provideSaver routes between local JSON files and object storage. Object
// storage is optional; without MINIO_ENDPOINT only file destinations work.
func provideSaver() output.Saver {
	router := &output.Router{File: &output.JSONSaver{}}
	if os.Getenv("MINIO_ENDPOINT") != "" {
		object, err := output.NewObjectSaverFromEnv()
		if err != nil {
			log.Fatalf("Failed to configure object storage: %v\n", err)
		}
		router.Object = object
	}
	return router
}

// provideRunDAO picks postgres when a DSN is configured, sqlite otherwise.
func provideRunDAO(settings *config.Settings) repository.RunDAO {
	if settings.PostgresDSN != "" {
		return pg.NewPostgresDB(settings.PostgresDSN)
	}
	if dir := filepath.Dir(settings.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			log.Fatalf("Failed to create database directory: %v\n", err)
		}
	}
	return sqlite.NewSQLiteDB(settings.DatabasePath)
}

func provideLogger() logging.Logger {
	return logging.MustNewLogger(os.Getenv("ECHOSCRIBE_ENV") != "production")
}

func provideWorkDir(settings *config.Settings) string {
	return settings.WorkDir
}
