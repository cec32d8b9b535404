// Package extract turns the invoice PDFs of one Drive folder into the record
// file the form filler consumes.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"zwrot/internal/drive"
	"zwrot/internal/metrics"
	"zwrot/internal/model"
	"zwrot/internal/pdftext"
	"zwrot/internal/records"
)

var (
	ErrNoFiles   = errors.New("no PDF files in folder")
	ErrNoRecords = errors.New("no invoices extracted")
)

// Per-file outcomes, also used as metric labels.
const (
	OutcomeOK             = "ok"
	OutcomeEmpty          = "empty"
	OutcomeDownloadFailed = "download_failed"
	OutcomeNoText         = "no_text"
	OutcomeLLMFailed      = "llm_failed"
	OutcomeSchemaInvalid  = "schema_invalid"
)

type Source interface {
	FindFolder(ctx context.Context, name string) (string, error)
	ListPDFs(ctx context.Context, folderID string) ([]drive.File, error)
	Download(ctx context.Context, id string) ([]byte, error)
}

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type FileResult struct {
	File    drive.File
	Outcome string
	Records int
	Err     error
}

type Result struct {
	Files   []FileResult
	Records []model.Record
}

type Extractor struct {
	source  Source
	llm     Completer
	folder  string
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewExtractor(source Source, llm Completer, folder string, log *slog.Logger, m *metrics.Metrics) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{source: source, llm: llm, folder: folder, log: log, metrics: m}
}

// Run extracts every invoice of the folder and writes them, sorted by service
// date, to outPath. Nothing is written when there are no PDFs or no invoices.
func (e *Extractor) Run(ctx context.Context, outPath string) (Result, error) {
	var res Result

	folderID, err := e.source.FindFolder(ctx, e.folder)
	if err != nil {
		return res, err
	}
	files, err := e.source.ListPDFs(ctx, folderID)
	if err != nil {
		return res, fmt.Errorf("list invoices: %w", err)
	}
	if len(files) == 0 {
		return res, fmt.Errorf("%w: %q", ErrNoFiles, e.folder)
	}
	e.log.Info("processing invoices", "folder", e.folder, "files", len(files))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fr, recs := e.process(ctx, f)
		res.Files = append(res.Files, fr)
		res.Records = append(res.Records, recs...)
		e.metrics.ExtractFile(fr.Outcome)
	}

	if len(res.Records) == 0 {
		return res, ErrNoRecords
	}
	records.SortByServiceDate(res.Records)
	if err := records.Write(outPath, res.Records); err != nil {
		return res, fmt.Errorf("write records: %w", err)
	}
	e.metrics.ExtractRecords(len(res.Records))
	e.log.Info("records written", "path", outPath, "records", len(res.Records))
	return res, nil
}

func (e *Extractor) process(ctx context.Context, f drive.File) (FileResult, []model.Record) {
	fr := FileResult{File: f}
	log := e.log.With("file", f.Name)

	data, err := e.source.Download(ctx, f.ID)
	if err != nil {
		fr.Outcome, fr.Err = OutcomeDownloadFailed, err
		log.Error("download failed", "error", err)
		return fr, nil
	}

	text, err := pdftext.Extract(data)
	if err != nil {
		fr.Outcome, fr.Err = OutcomeNoText, err
		log.Error("cannot read PDF text", "error", err)
		return fr, nil
	}

	answer, err := e.llm.Complete(ctx, Prompt(text))
	if err != nil {
		fr.Outcome, fr.Err = OutcomeLLMFailed, err
		log.Error("extraction request failed", "error", err)
		return fr, nil
	}

	recs, err := Decode(answer)
	if err != nil {
		fr.Outcome, fr.Err = OutcomeSchemaInvalid, err
		log.Error("unexpected extraction answer", "error", err, "answer", answer)
		return fr, nil
	}
	if len(recs) == 0 {
		fr.Outcome = OutcomeEmpty
		log.Info("no invoices in file")
		return fr, nil
	}

	fr.Outcome, fr.Records = OutcomeOK, len(recs)
	log.Info("invoices extracted", "count", len(recs))
	return fr, recs
}
