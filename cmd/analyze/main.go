// cmd/analyze/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/tj309c/supply-signals/internal/codes"
	"github.com/tj309c/supply-signals/internal/config"
	"github.com/tj309c/supply-signals/internal/domain"
	"github.com/tj309c/supply-signals/internal/engine"
	"github.com/tj309c/supply-signals/internal/ingest"
	"github.com/tj309c/supply-signals/internal/report"
	"github.com/tj309c/supply-signals/internal/repository/postgres"
	"github.com/tj309c/supply-signals/internal/service"
	"github.com/tj309c/supply-signals/internal/storage"
	"github.com/tj309c/supply-signals/pkg/logger"
)

const (
	masterFile        = "master.csv"
	inventoryFile     = "inventory.csv"
	deliveriesFile    = "deliveries.csv"
	vendorPOsFile     = "vendor_pos.csv"
	receiptsFile      = "receipts.csv"
	supersessionsFile = "supersessions.csv"
)

func newDataDirFlag(cfg *config.Config) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing the input CSV extracts",
		Value:   cfg.App.DataDir,
		EnvVars: []string{"APP_DATA_DIR"},
	}
}

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	app := &cli.App{
		Name:  "analyze",
		Usage: "Compute supply decision signals from planning-system extracts",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the full signal pipeline and write CSV reports",
				Flags: []cli.Flag{
					newDataDirFlag(cfg),
					&cli.StringFlag{
						Name:    "report-dir",
						Usage:   "Directory to write report CSVs into",
						Value:   cfg.App.ReportDir,
						EnvVars: []string{"APP_REPORT_DIR"},
					},
					&cli.StringFlag{
						Name:  "as-of",
						Usage: "Analysis date (YYYY-MM-DD), defaults to today",
					},
					&cli.StringFlag{
						Name:    "db-url",
						Usage:   "Optional database connection string to persist signals",
						EnvVars: []string{"DATABASE_URL"},
					},
				},
				Action: func(c *cli.Context) error {
					return runPipeline(c, cfg)
				},
			},
			{
				Name:  "fetch",
				Usage: "Download input extracts from object storage into the data directory",
				Flags: []cli.Flag{
					newDataDirFlag(cfg),
					&cli.StringFlag{
						Name:    "prefix",
						Usage:   "Object key prefix to fetch",
						Value:   cfg.Storage.Prefix,
						EnvVars: []string{"STORAGE_PREFIX"},
					},
				},
				Action: func(c *cli.Context) error {
					return fetchExtracts(c, cfg)
				},
			},
			{
				Name:  "codes",
				Usage: "Summarize supersession chains from the supersession extract",
				Flags: []cli.Flag{
					newDataDirFlag(cfg),
				},
				Action: summarizeCodes,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func runPipeline(c *cli.Context, cfg *config.Config) error {
	dataDir := c.String("data-dir")
	reportDir := c.String("report-dir")

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := c.String("as-of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid --as-of date %q: %w", raw, err)
		}
		today = parsed
	}

	snap, issues, err := loadSnapshot(dataDir, today)
	if err != nil {
		return err
	}

	eng := engine.New(cfg.EngineConfig())
	start := time.Now()
	set, err := eng.Run(c.Context, *snap)
	if err != nil {
		return fmt.Errorf("signal run failed: %w", err)
	}
	set.Issues = append(issues, set.Issues...)

	if err := report.WriteAll(reportDir, set); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	log.Info().
		Str("report_dir", reportDir).
		Int("issues", len(set.Issues)).
		Dur("elapsed", time.Since(start)).
		Msg("signal run complete")

	if dbURL := c.String("db-url"); dbURL != "" {
		if err := persistRun(c.Context, dbURL, set); err != nil {
			return err
		}
	}
	return nil
}

// loadSnapshot reads every input table from the data directory. A table that
// is missing or has unusable columns is dropped with a logged error so the
// remaining signals can still be computed.
func loadSnapshot(dataDir string, today time.Time) (*domain.Snapshot, []domain.Issue, error) {
	snap := &domain.Snapshot{Today: today}
	var issues []domain.Issue

	load := func(file string, fn func(records [][]string) ([]domain.Issue, error)) {
		records, err := ingest.ReadCSVFile(filepath.Join(dataDir, file))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Error().Str("file", file).Msg("input extract missing, table skipped")
				issues = append(issues, domain.Issue{
					Component: "ingest",
					Severity:  "error",
					Message:   fmt.Sprintf("input extract %s missing, table skipped", file),
				})
				return
			}
			log.Error().Err(err).Str("file", file).Msg("failed to read input extract")
			issues = append(issues, domain.Issue{
				Component: "ingest",
				Severity:  "error",
				Message:   fmt.Sprintf("failed to read %s: %v", file, err),
			})
			return
		}

		tableIssues, err := fn(records)
		issues = append(issues, tableIssues...)
		if err != nil {
			log.Error().Err(err).Str("file", file).Msg("input extract unusable, table skipped")
			issues = append(issues, domain.Issue{
				Component: "ingest",
				Severity:  "error",
				Message:   fmt.Sprintf("input extract %s unusable: %v", file, err),
			})
		}
	}

	load(masterFile, func(records [][]string) ([]domain.Issue, error) {
		rows, is, err := ingest.LoadMaster(records)
		snap.Master = rows
		return is, err
	})
	load(inventoryFile, func(records [][]string) ([]domain.Issue, error) {
		rows, is, err := ingest.LoadInventory(records)
		snap.Inventory = rows
		return is, err
	})
	load(deliveriesFile, func(records [][]string) ([]domain.Issue, error) {
		rows, is, err := ingest.LoadDeliveries(records)
		snap.Deliveries = rows
		return is, err
	})
	load(vendorPOsFile, func(records [][]string) ([]domain.Issue, error) {
		rows, is, err := ingest.LoadVendorPOs(records)
		snap.VendorPOs = rows
		return is, err
	})
	load(receiptsFile, func(records [][]string) ([]domain.Issue, error) {
		rows, is, err := ingest.LoadReceipts(records)
		snap.Receipts = rows
		return is, err
	})
	load(supersessionsFile, func(records [][]string) ([]domain.Issue, error) {
		rows, is, err := ingest.LoadSupersessions(records)
		snap.Supersessions = rows
		return is, err
	})

	if len(snap.Inventory) == 0 && len(snap.Deliveries) == 0 {
		return nil, issues, fmt.Errorf("no usable input tables found in %s", dataDir)
	}
	return snap, issues, nil
}

func persistRun(ctx context.Context, dbURL string, set *domain.SignalSet) error {
	db, err := postgres.NewDBFromURL("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	repo := postgres.NewSignalRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate signal tables: %w", err)
	}

	svc := service.NewSignalService(repo, nil)
	if err := svc.StoreRun(ctx, set); err != nil {
		return err
	}
	log.Info().Int("risk_rows", len(set.Risk)).Msg("signal run persisted")
	return nil
}

func fetchExtracts(c *cli.Context, cfg *config.Config) error {
	if !cfg.Storage.Enabled {
		return fmt.Errorf("object storage is not enabled (set STORAGE_ENABLED=true)")
	}

	store, err := storage.NewMinioStorage(cfg.Storage)
	if err != nil {
		return err
	}

	paths, err := store.FetchAll(c.Context, c.String("prefix"), c.String("data-dir"))
	if err != nil {
		return fmt.Errorf("fetch extracts: %w", err)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

func summarizeCodes(c *cli.Context) error {
	records, err := ingest.ReadCSVFile(filepath.Join(c.String("data-dir"), supersessionsFile))
	if err != nil {
		return fmt.Errorf("read supersessions: %w", err)
	}

	rows, _, err := ingest.LoadSupersessions(records)
	if err != nil {
		return fmt.Errorf("load supersessions: %w", err)
	}

	resolver := codes.NewResolver(rows)
	out, err := json.MarshalIndent(resolver.Summary(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
