package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmoreira/politicos/internal/collector"
	"github.com/rmoreira/politicos/internal/model"
	"github.com/rmoreira/politicos/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var importYear int
var importSource string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import expense data from the chamber and senate sources",
	Long: `Import downloads and stores parliamentary expense data.

The chamber source is a yearly zipped JSON archive; the senate source is a
JSON API. Each run records its lifecycle in the sync log, and re-running the
same source and year is safe: records are upserted on their natural key.

Examples:
  # Import both sources for the current year
  ./politicos import

  # Import a specific year
  ./politicos import --year 2024

  # Import a single source
  ./politicos import --year 2024 --source senado`,
	Run: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().IntVarP(&importYear, "year", "y", time.Now().Year(), "Year to import data for")
	importCmd.Flags().StringVarP(&importSource, "source", "s", "both", "Source to import (camara|senado|both)")
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

func runImport(cmd *cobra.Command, args []string) {
	logger := newLogger()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL environment variable is required")
	}

	if importSource != "both" && importSource != model.SourceChamber && importSource != model.SourceSenate {
		logger.Fatalf("invalid source %q (expected camara, senado or both)", importSource)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received interrupt signal, shutting down...")
		cancel()
	}()

	db, err := store.NewDB(dbURL)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ingest := store.NewIngestStore(db)

	var collectors []collector.Collector
	if importSource == "both" || importSource == model.SourceChamber {
		collectors = append(collectors, collector.NewChamberCollector(ingest, collector.ChamberConfig{
			APIURL:     os.Getenv("CAMARA_API_URL"),
			ArchiveURL: os.Getenv("CAMARA_COTAS_URL"),
		}, logger))
	}
	if importSource == "both" || importSource == model.SourceSenate {
		collectors = append(collectors, collector.NewSenateCollector(ingest, collector.SenateConfig{
			APIURL:   os.Getenv("SENADO_API_URL"),
			LegisURL: os.Getenv("SENADO_LEGIS_URL"),
		}, logger))
	}

	// Sources are independent: a failure in one does not stop the next
	failed := 0
	for _, c := range collectors {
		res, err := c.Collect(ctx, importYear)
		if err != nil {
			if ctx.Err() != nil {
				logger.Warn("import cancelled")
				os.Exit(1)
			}
			logger.WithError(err).Error("collection failed")
			failed++
			continue
		}

		logger.WithFields(logrus.Fields{
			"source":    res.Source,
			"year":      res.Year,
			"processed": res.Processed,
			"upserted":  res.Upserted,
			"duration":  res.Duration.Round(time.Millisecond),
		}).Info("collection summary")
	}

	if failed > 0 {
		os.Exit(1)
	}
}
