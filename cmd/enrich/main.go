package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/casefile-io/casefile/pkg/casefile"
	"github.com/casefile-io/casefile/pkg/casefile/backup"
	"github.com/casefile-io/casefile/pkg/casefile/config"
	"github.com/casefile-io/casefile/pkg/casefile/enrich"
	"github.com/casefile-io/casefile/pkg/casefile/store/sqlite"
)

func main() {
	var (
		dbPath    = flag.String("db", "", "Database path (overrides CASEFILE_DB)")
		rulesPath = flag.String("rules", "", "Rules YAML path (overrides CASEFILE_RULES)")
		noBackup  = flag.Bool("no-backup", false, "Skip the pre-run database backup")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *rulesPath != "" {
		cfg.RulesPath = *rulesPath
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, *noBackup, logger); err != nil {
		logger.Error("enrichment failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, noBackup bool, logger *zap.Logger) error {
	ctx := context.Background()

	rules := enrich.DefaultRules()
	if cfg.RulesPath != "" {
		var err error
		rules, err = config.LoadRules(cfg.RulesPath)
		if err != nil {
			return err
		}
		logger.Info("loaded rules override", zap.String("path", cfg.RulesPath))
	}

	// Full-file copy before any mutation. This is the only recovery
	// mechanism: a failed run leaves the database partially enriched.
	if noBackup {
		logger.Warn("pre-run backup skipped")
	} else {
		path, err := backup.Snapshot(cfg.DBPath, cfg.BackupDir)
		if err != nil {
			return err
		}
		logger.Info("database backed up", zap.String("backup", path))

		if err := backup.Rotate(cfg.BackupDir, cfg.KeepBackups); err != nil {
			return err
		}
	}

	st, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}

	enricher := casefile.New(casefile.Options{
		Store:  st,
		Rules:  rules,
		Logger: logger,
	})
	defer enricher.Close()

	logger.Info("starting enrichment pipeline", zap.String("db", cfg.DBPath))
	summary, err := enricher.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("enrichment complete",
		zap.String("run_id", summary.RunID),
		zap.Int64("people", summary.People),
		zap.Int64("organizations", summary.Organizations),
		zap.Int64("documents_enriched", summary.EnrichedDocuments),
		zap.Int64("documents_classified", summary.ClassifiedDocuments),
		zap.Int64("timeline_events", summary.TimelineEvents))
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
