package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zwrot/internal/metrics"
	"zwrot/internal/mw"
	"zwrot/internal/service"
)

type Deps struct {
	Launcher    Launcher
	Workflow    service.WorkflowRunner
	Cleaner     Cleaner
	Submissions SubmissionLister
	RecordsPath string
	DriveFolder string
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(mw.Metrics(d.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/launch-luxmed", LaunchHandler(d.Launcher, d.Metrics))
	r.Get("/status", StatusHandler(d.Launcher))
	r.Get("/trigger-refresh", TriggerRefreshHandler(d.Workflow))
	r.Get("/workflow-status", WorkflowStatusHandler(d.Workflow))
	r.Get("/merge-pdfs", MergePDFsHandler(d.Cleaner, d.DriveFolder))
	r.Get("/delete-drive-files", DeleteDriveFilesHandler(d.Cleaner, d.DriveFolder))
	r.Get("/delete-desktop-folder", DeleteDesktopFolderHandler(d.Cleaner))
	r.Get("/invoices", InvoicesHandler(d.RecordsPath))
	r.Get("/invoices.tsv", InvoicesTSVHandler(d.RecordsPath))
	r.Get("/submissions", ListSubmissionsHandler(d.Submissions))

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
