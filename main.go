package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ramen-dashboard/config"
	"ramen-dashboard/dashboard"
	"ramen-dashboard/ingest/yelp"
	"ramen-dashboard/models"
	"ramen-dashboard/services"
	"ramen-dashboard/snapshot"
	"ramen-dashboard/storage"
	"ramen-dashboard/utils"
)

func main() {
	logger := utils.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Configuration error: %v", err)
		os.Exit(1)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat, cfg.LogOutput, cfg.LogMaxAgeDays); err != nil {
		logger.Error("Logger configuration failed: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Ramen dashboard starting ===")

	client := yelp.New(cfg.YelpSearchURL, cfg.YelpAPIKey, logger)
	start := time.Now()
	raw, err := client.Search(ctx)
	ingestDuration := time.Since(start)
	if err != nil {
		logger.Error("Yelp search failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Fetched %d businesses in %v", len(raw), ingestDuration.Round(time.Millisecond))

	enricher := services.NewEnricher(logger, services.RamenPrices)
	listings, err := enricher.Enrich(raw)
	if err != nil {
		logger.Error("Enrichment failed: %v", err)
		os.Exit(1)
	}

	run := models.NewRun(listings, time.Now())
	logger.Info("Run %s: %d enriched listings", run.ID, len(run.Listings))

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(run.Listings))

	exportRun(ctx, cfg, run, logger)

	if !cfg.Serve && cfg.SnapshotPath == "" {
		fmt.Printf("  Done. Run %s was not served (SERVE=false)\n\n", run.ID)
		return
	}

	srv, err := dashboard.NewServer(cfg.DashboardAddr, run, dashboard.Options{
		MapboxKey:      cfg.MapboxToken,
		IngestDuration: ingestDuration,
	}, logger)
	if err != nil {
		logger.Error("Dashboard setup failed: %v", err)
		os.Exit(1)
	}

	serveCtx, cancelServe := context.WithCancel(ctx)
	defer cancelServe()

	if cfg.SnapshotPath != "" {
		go func() {
			select {
			case <-srv.Started():
			case <-serveCtx.Done():
				return
			}
			capturer := snapshot.New(cfg.ChromeBin, logger)
			if err := capturer.Capture(serveCtx, srv.URL(), cfg.SnapshotPath); err != nil {
				logger.Error("Dashboard snapshot failed: %v", err)
			}
			if !cfg.Serve {
				cancelServe()
			}
		}()
	}

	if err := srv.Run(serveCtx); err != nil {
		logger.Error("Dashboard server failed: %v", err)
		os.Exit(1)
	}
}

// exportRun writes the run to every configured sink. Failures are logged
// and never stop the dashboard.
func exportRun(ctx context.Context, cfg *config.Config, run *models.Run, logger *utils.Logger) {
	if !cfg.ExportsEnabled() {
		return
	}

	var writers []storage.RunWriter
	if cfg.CSVOutputPath != "" {
		w, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
		} else {
			writers = append(writers, w)
		}
	}
	if cfg.PostgresDSN != "" {
		w, err := storage.NewPostgresWriter(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
		} else {
			writers = append(writers, w)
		}
	}
	if cfg.MinioEndpoint != "" {
		w, err := storage.NewS3Writer(ctx, storage.S3Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		}, logger)
		if err != nil {
			logger.Error("Failed to connect to S3: %v", err)
		} else {
			writers = append(writers, w)
		}
	}

	for _, w := range writers {
		if err := w.Write(ctx, run); err != nil {
			logger.Error("Export failed (%T): %v", w, err)
		}
		if err := w.Close(); err != nil {
			logger.Warn("Closing export (%T): %v", w, err)
		}
	}
	logger.Info("Run %s exported to %d sink(s)", run.ID, len(writers))
}
