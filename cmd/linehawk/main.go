// linehawk computes the week's ranked spread edges for one league.
// It fans out to the snapshot feeds, resolves identities, runs the
// adjustment pipeline and prints the ranked card as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/wagerlab/linehawk/pkg/config"
	"github.com/wagerlab/linehawk/pkg/edge"
	"github.com/wagerlab/linehawk/pkg/engine"
	"github.com/wagerlab/linehawk/pkg/feeds"
	"github.com/wagerlab/linehawk/pkg/league"
	"github.com/wagerlab/linehawk/pkg/metrics"
)

var (
	leagueFlag  = flag.String("league", "nfl", "League to compute: nfl or ncaaf")
	weekFlag    = flag.Int("week", 0, "Week number (0 = auto-detect from system date)")
	configPath  = flag.String("config", "", "Directory containing linehawk.yaml")
	snapshotDir = flag.String("snapshots", "", "Feed snapshot directory (overrides config)")
	allGames    = flag.Bool("all", false, "Include no-play games in the output")
	metricsAddr = flag.String("metrics", "", "Expose Prometheus metrics on this address (overrides config)")
	verbose     = flag.Bool("verbose", false, "Debug logging")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(log); err != nil {
		log.WithError(err).Fatal("run failed")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil && !*verbose {
		log.SetLevel(lvl)
	}

	lg := league.League(*leagueFlag)
	week := *weekFlag
	if week == 0 {
		week = currentWeek(lg, time.Now())
		log.WithField("week", week).Debug("week auto-detected")
	}

	dir := cfg.SnapshotDir
	if *snapshotDir != "" {
		dir = *snapshotDir
	}
	fp := feeds.NewFileProvider(dir)
	providers := feeds.Providers{
		Schedule: fp,
		Odds:     fp,
		Ratings:  fp,
		Weather:  fp,
		Injuries: fp,
		Context:  fp,
		News:     feeds.NewCachedNews(fp, cfg.NewsFetchPerHour, cfg.NewsCacheTTL),
	}

	pm := metrics.NewPipelineMetrics()
	if addr := firstNonEmpty(*metricsAddr, cfg.MetricsAddr); addr != "" {
		go serveMetrics(log, addr, pm)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eng := engine.New(cfg, providers, log, pm)
	report, err := eng.Run(ctx, lg, week)
	if err != nil {
		// Missing required inputs is the only non-zero exit path; the
		// zero-edges case below still exits 0.
		return err
	}

	out := *report
	if !*allGames {
		out.Edges = edge.Playable(report.Edges)
	}
	if len(out.Edges) == 0 {
		log.Info("no playable edges this week")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// currentWeek derives the league week from the calendar: week 1 opens the
// first Thursday of September and weeks roll over on Tuesdays.
func currentWeek(lg league.League, now time.Time) int {
	year := now.Year()
	if now.Month() < time.July {
		year--
	}
	opener := firstThursdayOfSeptember(year)
	if lg == league.LeagueNCAAF {
		// College kicks off the Saturday before Labor Day week.
		opener = opener.AddDate(0, 0, -6)
	}

	// Weeks advance on the Tuesday after each slate.
	elapsed := now.Sub(opener.AddDate(0, 0, -2))
	week := int(elapsed.Hours()/(24*7)) + 1
	if week < 1 {
		week = 1
	}
	if week > 18 {
		week = 18
	}
	return week
}

func firstThursdayOfSeptember(year int) time.Time {
	d := time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Thursday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func serveMetrics(log *logrus.Logger, addr string, pm *metrics.PipelineMetrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(pm.Registry(), promhttp.HandlerOpts{}))
	log.WithField("addr", addr).Info("metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Warn("metrics server stopped")
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
