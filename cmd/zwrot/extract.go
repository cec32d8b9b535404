package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"zwrot/internal/config"
	"zwrot/internal/extract"
	"zwrot/internal/llm"
	"zwrot/internal/metrics"
	"zwrot/internal/records"
	"zwrot/internal/summary"
)

func extractCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "read the invoice PDFs from Drive into the records file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "model", Value: cfg.LLM.Model, EnvVars: []string{"LLM_MODEL"}, Destination: &cfg.LLM.Model},
			&cli.IntFlag{Name: "requests-per-minute", Usage: "LLM request pacing, 0 disables it", Value: cfg.LLM.RequestsPerMinute, EnvVars: []string{"LLM_REQUESTS_PER_MINUTE"}, Destination: &cfg.LLM.RequestsPerMinute},
		},
		Action: func(c *cli.Context) error {
			return runExtract(c.Context, cfg)
		},
	}
}

func runExtract(ctx context.Context, cfg *config.Config) error {
	portal, err := readPortal(cfg.Path(config.PortalFile))
	if err != nil {
		return err
	}
	if err := portal.RequireAPIKey(); err != nil {
		return err
	}

	client, err := llm.New(llm.Options{
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		APIKey:            portal.APIKey,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})
	if err != nil {
		return err
	}
	dc, err := newDrive(ctx, cfg)
	if err != nil {
		return err
	}

	m := metrics.New(prometheus.NewRegistry(), metrics.Config{ServiceName: cfg.ServiceName})
	out := cfg.Path(config.RecordsFile)
	res, err := extract.NewExtractor(dc, client, cfg.DriveFolder, nil, m).Run(ctx, out)
	for _, f := range res.Files {
		if f.Err != nil {
			fmt.Fprintf(os.Stderr, "  %-40s %s: %v\n", f.File.Name, f.Outcome, f.Err)
		}
	}
	if err != nil {
		return err
	}

	recs, err := records.Read(out)
	if err != nil {
		return err
	}
	return summary.Format(os.Stdout, summary.Summarize(recs))
}

// readPortal loads config.json for commands that only need the API key.
// A missing file is replaced by the template.
func readPortal(path string) (*config.Portal, error) {
	p, err := config.ReadPortal(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.EnsurePortal(path)
	}
	return p, err
}
