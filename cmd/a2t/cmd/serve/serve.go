package serve

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"echoscribe/internal/api/server"
	"echoscribe/internal/app"
	"echoscribe/internal/app/repository"
	"echoscribe/internal/app/repository/pg"
	"echoscribe/internal/app/repository/sqlite"
	"echoscribe/internal/config"
)

var (
	host              string
	port              string
	environment       string
	enginesConfigPath string
)

func init() {
	Cmd.Flags().StringVar(&host, "host", "0.0.0.0", "Interface to bind")
	Cmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to listen on")
	Cmd.Flags().StringVarP(&environment, "env", "e", "development", "Runtime environment (development or production)")
	Cmd.Flags().StringVarP(&enginesConfigPath, "engines-config", "c", "engines.yaml",
		"Optional YAML file tuning the transcription and diarization engines")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Long: `Serve the pipeline over HTTP

- POST /api/v1/process runs one source synchronously
- GET /api/v1/runs lists the run history
- /health and /metrics expose liveness and prometheus metrics`,
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

		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		pipeline := app.InitializePipeline(settings, engines)
		defer pipeline.Close()

		// The API reads the run history through its own connection so the
		// pipeline's store stays single-writer.
		var db repository.RunDAO
		if settings.PostgresDSN != "" {
			db = pg.NewPostgresDB(settings.PostgresDSN)
		} else {
			db = sqlite.NewSQLiteDB(settings.DatabasePath)
		}
		defer db.Close()

		srv := server.NewServer(server.Config{
			Host:         host,
			Port:         port,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Minute,
			IdleTimeout:  2 * time.Minute,
			Environment:  environment,
		}, pipeline, db, logger)

		if err := srv.Start(); err != nil {
			log.Fatalf("Failed to start server: %v\n", err)
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("Server shutdown failed: %v\n", err)
		}
	},
}
