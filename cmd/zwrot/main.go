package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"zwrot/internal/config"
)

func main() {
	cfg := config.New()

	app := &cli.App{
		Name:  "zwrot",
		Usage: "turn speech-therapy invoices into a medical refund claim",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "work-dir", Aliases: []string{"w"}, Usage: "directory holding config.json, token.json and the records file", Value: cfg.WorkDir, EnvVars: []string{"WORK_DIR"}, Destination: &cfg.WorkDir},
			&cli.StringFlag{Name: "database-uri", Aliases: []string{"d"}, Usage: "postgres URI of the submissions ledger (optional)", Value: cfg.DatabaseURI, EnvVars: []string{"DATABASE_URI"}, Destination: &cfg.DatabaseURI},
			&cli.StringFlag{Name: "drive-folder", Usage: "Google Drive folder with the invoice PDFs", Value: cfg.DriveFolder, EnvVars: []string{"DRIVE_FOLDER"}, Destination: &cfg.DriveFolder},
		},
		Commands: []*cli.Command{
			serveCommand(cfg),
			extractCommand(cfg),
			fillCommand(cfg),
			summaryCommand(cfg),
			authCommand(cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("zwrot failed", "error", err)
		os.Exit(1)
	}
}
