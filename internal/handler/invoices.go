package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"zwrot/internal/model"
	"zwrot/internal/records"
	"zwrot/internal/summary"
)

// TSVStatus fills the refund column of the spreadsheet export.
const TSVStatus = "wysłano"

type invoicesResponse struct {
	Status   string          `json:"status"`
	Invoices []model.Record  `json:"invoices"`
	Stats    summary.Summary `json:"stats"`
}

func InvoicesHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, ok := loadRecords(w, path)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, invoicesResponse{Status: statusOK, Invoices: recs, Stats: summary.Summarize(recs)})
	}
}

func InvoicesTSVHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, ok := loadRecords(w, path)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
		if err := summary.WriteTSV(w, recs, TSVStatus); err != nil {
			slog.Error("failed to write tsv", "error", err)
		}
	}
}

func loadRecords(w http.ResponseWriter, path string) ([]model.Record, bool) {
	recs, err := records.Read(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		writeError(w, http.StatusNotFound, "Brak danych faktur (uruchom: zwrot extract)")
		return nil, false
	case err != nil:
		slog.Error("failed to read records", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if recs == nil {
		recs = []model.Record{}
	}
	return recs, true
}
