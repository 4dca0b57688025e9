// clvsync maintains the closing-line-value ledger: it commits a run's
// playable edges as bet records, grades pending bets against a closing
// snapshot, and reports aggregate CLV.
//
// Usage:
//
//	clvsync commit -edges report.json
//	clvsync grade  -closings closings.json -league nfl
//	clvsync report -league nfl -week 14
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/wagerlab/linehawk/pkg/clv"
	"github.com/wagerlab/linehawk/pkg/config"
	"github.com/wagerlab/linehawk/pkg/engine"
	"github.com/wagerlab/linehawk/pkg/metrics"
)

var (
	configPath   = flag.String("config", "", "Directory containing linehawk.yaml")
	edgesPath    = flag.String("edges", "", "Edge report JSON to commit (commit)")
	closingsPath = flag.String("closings", "", "Closing snapshot JSON (grade)")
	leagueFlag   = flag.String("league", "nfl", "League (grade, report)")
	weekFlag     = flag.Int("week", 0, "Week (report)")
	settleID     = flag.String("settle", "", "Bet ID to settle (settle)")
	settleResult = flag.String("result", "", "Settlement result: win, loss or push (settle)")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("clvsync failed")
	}
}

func run(log *logrus.Logger) error {
	if flag.NArg() < 1 {
		return fmt.Errorf("usage: clvsync <commit|grade|settle|report> [flags]")
	}
	cmd := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("clvsync: postgres_dsn not configured (set LINEHAWK_POSTGRES_DSN)")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := clv.OpenPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	pm := metrics.NewPipelineMetrics()
	if cfg.MetricsAddr != "" {
		go serveMetrics(log, cfg.MetricsAddr, pm)
	}
	tracker := clv.NewTracker(store, log, pm)

	switch cmd {
	case "commit":
		return commit(ctx, tracker, *edgesPath)
	case "grade":
		return grade(ctx, tracker, *closingsPath, *leagueFlag)
	case "settle":
		return settle(ctx, tracker, *settleID, *settleResult)
	case "report":
		return report(ctx, tracker, *leagueFlag, *weekFlag)
	default:
		return fmt.Errorf("clvsync: unknown command %q", cmd)
	}
}

func serveMetrics(log *logrus.Logger, addr string, pm *metrics.PipelineMetrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(pm.Registry(), promhttp.HandlerOpts{}))
	log.WithField("addr", addr).Info("metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Warn("metrics server stopped")
	}
}

// commit writes every playable edge in a run report as a bet record.
func commit(ctx context.Context, tracker *clv.Tracker, path string) error {
	if path == "" {
		return fmt.Errorf("clvsync commit: -edges is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("clvsync: read edges: %w", err)
	}
	var rep engine.RunReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return fmt.Errorf("clvsync: decode edges: %w", err)
	}

	committed := 0
	now := time.Now()
	for i := range rep.Edges {
		e := &rep.Edges[i]
		if !e.Playable() {
			continue
		}
		if _, err := tracker.Commit(ctx, e, -e.MarketMargin, now); err != nil {
			return err
		}
		committed++
	}
	fmt.Printf("committed %d bets from %s week %d\n", committed, rep.League, rep.Week)
	return nil
}

// grade applies a closing snapshot, keyed by game ID, to pending bets.
func grade(ctx context.Context, tracker *clv.Tracker, path, league string) error {
	if path == "" {
		return fmt.Errorf("clvsync grade: -closings is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("clvsync: read closings: %w", err)
	}
	var closings map[string]clv.Closing
	if err := json.Unmarshal(data, &closings); err != nil {
		return fmt.Errorf("clvsync: decode closings: %w", err)
	}

	graded, err := tracker.GradeClosings(ctx, league, closings)
	if err != nil {
		return err
	}
	fmt.Printf("graded %d bets against %d closing lines\n", graded, len(closings))
	return nil
}

func settle(ctx context.Context, tracker *clv.Tracker, id, result string) error {
	if id == "" || result == "" {
		return fmt.Errorf("clvsync settle: -settle and -result are required")
	}
	return tracker.Settle(ctx, id, clv.Result(result))
}

// report prints the week's records and recomputed aggregates.
func report(ctx context.Context, tracker *clv.Tracker, league string, week int) error {
	recs, agg, err := tracker.Report(ctx, league, week)
	if err != nil {
		return err
	}
	out := struct {
		League     string           `json:"league"`
		Week       int              `json:"week"`
		Aggregates clv.Aggregates   `json:"aggregates"`
		Bets       []*clv.BetRecord `json:"bets"`
	}{league, week, agg, recs}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
