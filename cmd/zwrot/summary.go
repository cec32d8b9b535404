package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"zwrot/internal/config"
	"zwrot/internal/records"
	"zwrot/internal/summary"
)

func summaryCommand(cfg *config.Config) *cli.Command {
	var pdfPath string

	return &cli.Command{
		Name:  "summary",
		Usage: "print the totals of the records file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pdf", Usage: "also write the report as a PDF to this path", Destination: &pdfPath},
		},
		Action: func(c *cli.Context) error {
			recs, err := records.Read(cfg.Path(config.RecordsFile))
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("Plik z danymi jest pusty. Brak danych do analizy.")
				return nil
			}

			s := summary.Summarize(recs)
			if err := summary.Format(os.Stdout, s); err != nil {
				return err
			}
			if pdfPath == "" {
				return nil
			}

			f, err := os.Create(pdfPath)
			if err != nil {
				return err
			}
			if err := summary.RenderPDF(f, s, recs); err != nil {
				_ = f.Close()
				return fmt.Errorf("render pdf: %w", err)
			}
			return f.Close()
		},
	}
}
