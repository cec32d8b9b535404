package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"zwrot/internal/config"
	"zwrot/internal/database"
	"zwrot/internal/drive"
	"zwrot/internal/handler"
	"zwrot/internal/metrics"
	"zwrot/internal/service"
	"zwrot/internal/worker"
)

func serveCommand(cfg *config.Config) *cli.Command {
	var watchInterval time.Duration

	return &cli.Command{
		Name:  "serve",
		Usage: "run the local control server used by the dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Usage: "listen address", Value: cfg.RunAddress, EnvVars: []string{"RUN_ADDRESS"}, Destination: &cfg.RunAddress},
			&cli.StringFlag{Name: "desktop", Usage: "desktop directory for the merged PDF", Value: cfg.DesktopDir, EnvVars: []string{"DESKTOP_DIR"}, Destination: &cfg.DesktopDir},
			&cli.StringFlag{Name: "github-repo", Value: cfg.GitHub.Repo, EnvVars: []string{"GITHUB_REPO"}, Destination: &cfg.GitHub.Repo},
			&cli.StringFlag{Name: "github-workflow", Value: cfg.GitHub.Workflow, EnvVars: []string{"GITHUB_WORKFLOW"}, Destination: &cfg.GitHub.Workflow},
			&cli.StringFlag{Name: "service-type", Usage: "service the launched form filler picks", Value: cfg.ServiceType, EnvVars: []string{"SERVICE_TYPE"}, Destination: &cfg.ServiceType},
			&cli.StringFlag{Name: "service-name", Usage: "service label on exported metrics", Value: cfg.ServiceName, EnvVars: []string{"SERVICE_NAME"}, Destination: &cfg.ServiceName},
			&cli.DurationFlag{Name: "watch-interval", Usage: "workflow polling interval, 0 disables the watcher", Value: 30 * time.Second, Destination: &watchInterval},
		},
		Action: func(c *cli.Context) error {
			return serve(c.Context, cfg, watchInterval)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, watchInterval time.Duration) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, metrics.Config{ServiceName: cfg.ServiceName})

	var db *sql.DB
	if cfg.DatabaseURI != "" {
		var err error
		if db, err = database.NewDB(ctx, cfg.DatabaseURI); err != nil {
			return err
		}
		defer database.CloseDB(db)
		if err := database.InitSchema(ctx, db); err != nil {
			return err
		}
	}

	// Services
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	supervisor := service.NewSupervisor(exe, []string{"--work-dir", cfg.WorkDir, "fill"}, cfg.WorkDir, childEnv(cfg), nil)

	runner, err := newWorkflowRunner(cfg.GitHub)
	if err != nil {
		return err
	}

	var files service.DriveFiles
	if dc, err := newDrive(ctx, cfg); err != nil {
		slog.Warn("drive unavailable, merge and delete routes will fail", "error", err)
	} else {
		files = dc
	}
	cleanup := service.NewCleanupService(files, cfg.DriveFolder, cfg.DesktopDir, nil)

	var submissions *service.SubmissionService
	if db != nil {
		submissions = service.NewSubmissionService(db)
	}

	r := handler.NewRouter(handler.Deps{
		Launcher:    supervisor,
		Workflow:    runner,
		Cleaner:     cleanup,
		Submissions: submissions,
		RecordsPath: cfg.Path(config.RecordsFile),
		DriveFolder: cfg.DriveFolder,
		Metrics:     m,
		Gatherer:    reg,
	})

	srv := &http.Server{
		Addr:        cfg.RunAddress,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// Merging downloads every PDF of the folder.
		WriteTimeout: 2 * time.Minute,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if watchInterval > 0 {
		go worker.NewWorkflowWatcher(runner, m, watchInterval).Start(ctx)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-quit:
	case err := <-errCh:
		return err
	}
	slog.Info("shutting down...")

	cancel() // stop watcher
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

func newWorkflowRunner(gh config.GitHub) (service.WorkflowRunner, error) {
	if gh.UseAPI() {
		return service.NewGitHubRunner(gh)
	}
	return service.NewGHRunner(gh.Repo, gh.Workflow), nil
}

func newDrive(ctx context.Context, cfg *config.Config) (*drive.Client, error) {
	hc, err := drive.HTTPClient(ctx, cfg.Path(config.CredentialsFile), cfg.Path(config.TokenFile))
	if err != nil {
		return nil, err
	}
	return drive.New(ctx, hc)
}

// childEnv forwards the settings the fill command reads to the child, whether
// they came from flags or the environment.
func childEnv(cfg *config.Config) []string {
	env := []string{"SERVICE_TYPE=" + cfg.ServiceType}
	if cfg.DatabaseURI != "" {
		env = append(env, "DATABASE_URI="+cfg.DatabaseURI)
	}
	return env
}
