package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"zwrot/internal/config"
	"zwrot/internal/database"
	"zwrot/internal/model"
	"zwrot/internal/portal"
	"zwrot/internal/records"
	"zwrot/internal/service"
)

func fillCommand(cfg *config.Config) *cli.Command {
	var headless bool

	return &cli.Command{
		Name:  "fill",
		Usage: "log in to the patient portal and fill the refund form from the records file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "service-type", Usage: "service picked on the first form page", Value: cfg.ServiceType, EnvVars: []string{"SERVICE_TYPE"}, Destination: &cfg.ServiceType},
			&cli.BoolFlag{Name: "headless", Usage: "hide the browser window", Destination: &headless},
		},
		Action: func(c *cli.Context) error {
			return runFill(c.Context, cfg, headless)
		},
	}
}

func runFill(ctx context.Context, cfg *config.Config, headless bool) error {
	p, err := config.EnsurePortal(cfg.Path(config.PortalFile))
	if err != nil {
		return err
	}
	recs, err := records.Read(cfg.Path(config.RecordsFile))
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return errors.New("records file is empty, run `zwrot extract` first")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	browser, err := portal.NewChrome(ctx, portal.ChromeOptions{Headless: headless, ScreenshotDir: cfg.WorkDir})
	if err != nil {
		return err
	}
	defer browser.Close()

	slog.Info("filling refund form", "records", len(recs))
	report := portal.NewFiller(browser, *p, portal.FillerOptions{ServiceName: cfg.ServiceType}).Run(ctx, recs)

	failures := report.Failures()
	for _, o := range failures {
		slog.Warn("step not completed", "outcome", o.String())
	}
	filled := report.Filled()
	fmt.Printf("Wypełniono %d z %d faktur, problemów: %d\n", len(filled), len(recs), len(failures))

	if report.Aborted() {
		return ctx.Err()
	}
	recordSubmissions(ctx, cfg, recs, filled)

	// The claim is reviewed and sent by hand, so the browser stays open.
	fmt.Println("Sprawdź formularz i wyślij wniosek. Ctrl+C zamyka przeglądarkę.")
	<-ctx.Done()
	return nil
}

func recordSubmissions(ctx context.Context, cfg *config.Config, recs []model.Record, filled []int) {
	if cfg.DatabaseURI == "" || len(filled) == 0 {
		return
	}
	runID := os.Getenv(service.RunIDEnv)
	if runID == "" {
		runID = uuid.NewString()
	}

	db, err := database.NewDB(ctx, cfg.DatabaseURI)
	if err != nil {
		slog.Error("submissions not recorded", "error", err)
		return
	}
	defer database.CloseDB(db)
	if err := database.InitSchema(ctx, db); err != nil {
		slog.Error("submissions not recorded", "error", err)
		return
	}

	sent := make([]model.Record, 0, len(filled))
	for _, i := range filled {
		sent = append(sent, recs[i])
	}
	if err := service.NewSubmissionService(db).Record(ctx, runID, sent); err != nil {
		slog.Error("submissions not recorded", "error", err)
		return
	}
	slog.Info("submissions recorded", "run_id", runID, "count", len(sent))
}
