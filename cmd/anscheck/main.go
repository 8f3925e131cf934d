// Command anscheck runs a single assessment from the terminal and prints the
// recommendation with the staff notes.
//
// Usage:
//
//	go run ./cmd/anscheck -user patient-7 -chart trend.png
//	POLAR_ACCESS_TOKEN=... go run ./cmd/anscheck
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/ans-recharge-service/internal/adapter/polar"
	"github.com/couchcryptid/ans-recharge-service/internal/advisor"
	"github.com/couchcryptid/ans-recharge-service/internal/chart"
	"github.com/couchcryptid/ans-recharge-service/internal/config"
	"github.com/couchcryptid/ans-recharge-service/internal/domain"
	"github.com/couchcryptid/ans-recharge-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	user := flag.String("user", "", "user id for a synthetic assessment; live mode reads POLAR_ACCESS_TOKEN when empty")
	chartPath := flag.String("chart", "", "optional output path for a PNG trend chart")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewUnregisteredMetrics()
	source := polar.NewClient(cfg.RechargeURL, cfg.RechargeTimeout, metrics, logger)
	adv := advisor.New(source, nil, advisor.Options{Days: cfg.SyntheticDays, Seed: cfg.SyntheticSeed}, logger, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RechargeTimeout+5*time.Second)
	defer cancel()

	var report domain.Report
	if *user != "" {
		report, err = adv.Synthetic(ctx, *user)
	} else {
		report, err = adv.Recharge(ctx, domain.Token(os.Getenv("POLAR_ACCESS_TOKEN")))
	}
	switch {
	case errors.Is(err, domain.ErrInputMissing):
		flag.Usage()
		return errors.New("pass -user or set POLAR_ACCESS_TOKEN")
	case errors.Is(err, domain.ErrNoData):
		fmt.Println("WARNING: no nightly recharge data available")
		return nil
	case err != nil:
		return err
	}

	printReport(os.Stdout, report)

	if *chartPath != "" {
		if err := writeChart(*chartPath, chart.NewRenderer(cfg.ChartWidth, cfg.ChartHeight), report); err != nil {
			return err
		}
		slog.Info("chart written", "path", *chartPath)
	}
	return nil
}

func printReport(w io.Writer, r domain.Report) {
	a := r.Assessment
	fmt.Fprintf(w, "Date:            %s\n", a.Latest.Date.Format(time.DateOnly))
	fmt.Fprintf(w, "Value:           %.1f\n", a.Latest.Value)
	if a.DeltaText != "" {
		fmt.Fprintf(w, "Change:          %s\n", a.DeltaText)
	}
	if a.Status != nil {
		fmt.Fprintf(w, "Status:          %d (%s, %s)\n", *a.Latest.StatusCode, a.Status.Label, a.Status.Color)
	}
	fmt.Fprintf(w, "Recommendation:  %s [%s] %s\n", a.Recommendation, a.Banner, a.Guidance)
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Join(r.Notes, "\n  - "))
}

func writeChart(path string, renderer *chart.Renderer, r domain.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	title := "ANS trend"
	if r.Assessment.Subject != "" {
		title += ": " + r.Assessment.Subject
	}
	return renderer.RenderTrend(f, title, r.Series)
}
