package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"dcfanalyst/pkg/config"
	"dcfanalyst/pkg/core/edgar"
	"dcfanalyst/pkg/core/logger"
	"dcfanalyst/pkg/core/pipeline"
	"dcfanalyst/pkg/core/store"
	"dcfanalyst/pkg/models"
)

// discardRepo lets the pipeline run without a database: results are
// printed but not persisted, and every run recomputes.
type discardRepo struct{}

func (discardRepo) Save(ctx context.Context, rec *store.RunRecord) error {
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	return nil
}

func (discardRepo) Latest(ctx context.Context, ticker string) (*store.RunRecord, error) {
	return nil, nil
}

func main() {
	configPath := flag.String("config", "run.yaml", "path to the YAML run config")
	factsPath := flag.String("facts", "", "optional local company-facts JSON (skips SEC fetch)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	zlog := logger.New()
	defer zlog.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	overrides, err := config.LoadOverrides(cfg.OverridesFile)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	ctx := context.Background()

	facts, err := loadFacts(ctx, cfg.Ticker, *factsPath, zlog)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	snap, err := facts.Snapshot(cfg.Ticker)
	if err != nil {
		log.Fatalf("Error: building snapshot for %s: %v", cfg.Ticker, err)
	}

	var repo store.RunRepository = discardRepo{}
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			log.Fatalf("Error: %v", err)
		}
		defer store.Close()
		repo = store.NewPGRunRepo()
	} else {
		zlog.Warn("DATABASE_URL not set, results will not be persisted")
	}

	rec, err := pipeline.New(repo, zlog).Run(ctx, snap, facts.History(), cfg, overrides)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	printSummary(rec, snap)
}

// loadFacts reads XBRL company facts from a local file when -facts is
// given, otherwise fetches them live from SEC EDGAR. Live fetches need
// SEC_USER_AGENT set to a contact string, per SEC fair-access policy.
func loadFacts(ctx context.Context, ticker, path string, zlog *zap.SugaredLogger) (*edgar.CompanyFacts, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading facts file: %w", err)
		}
		var facts edgar.CompanyFacts
		if err := json.Unmarshal(data, &facts); err != nil {
			return nil, fmt.Errorf("parsing facts file %s: %w", path, err)
		}
		return &facts, nil
	}

	userAgent := os.Getenv("SEC_USER_AGENT")
	if userAgent == "" {
		return nil, fmt.Errorf("SEC_USER_AGENT must be set for live EDGAR fetches (e.g. \"name contact@example.com\")")
	}

	client := edgar.NewClient(userAgent)
	cik, err := client.ResolveCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if filings, err := client.RecentAnnualFilings(ctx, cik); err == nil && len(filings) > 0 {
		zlog.Infow("latest annual filing",
			"ticker", ticker, "form", filings[0].Form,
			"filed", filings[0].FilingDate, "index", filings[0].IndexURL)
	}

	return client.CompanyFacts(ctx, cik)
}

func printSummary(rec *store.RunRecord, snap models.FinancialSnapshot) {
	set := rec.Scenarios
	fmt.Printf("\n%s FY%d valuation (%s, per share)\n", snap.Ticker, snap.FiscalYear, snap.Currency)
	fmt.Printf("  Bear: %10.2f\n", set.Bear.ValuePerShare)
	fmt.Printf("  Base: %10.2f\n", set.Base.ValuePerShare)
	fmt.Printf("  Bull: %10.2f\n", set.Bull.ValuePerShare)

	grid := rec.Sensitivity
	fmt.Printf("\nSensitivity (rows: WACC, cols: terminal growth)\n")
	fmt.Printf("%8s", "")
	for _, g := range grid.TerminalGrowthAxis {
		fmt.Printf("%10.2f%%", g*100)
	}
	fmt.Println()
	for i, w := range grid.CostOfCapitalAxis {
		fmt.Printf("%7.2f%%", w*100)
		for j := range grid.TerminalGrowthAxis {
			cell := grid.Cells[i][j]
			if cell.Valid {
				fmt.Printf("%11.2f", cell.ValuePerShare)
			} else {
				fmt.Printf("%11s", "N/A")
			}
		}
		fmt.Println()
	}

	fmt.Printf("\nRun %s (input hash %s)\n", rec.RunID, rec.InputHash[:12])
}
