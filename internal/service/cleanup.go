package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"zwrot/internal/drive"
)

const (
	MergedFileName    = "faktury_logopeda.pdf"
	DesktopFolderName = "faktury logopeda"
)

var (
	ErrNoPDFs           = errors.New("no PDF files in folder")
	ErrDriveUnavailable = errors.New("drive is not authorised")
)

func init() {
	// Keep pdfcpu from creating its config directory in the user's home.
	api.DisableConfigDir()
}

type DriveFiles interface {
	FindFolder(ctx context.Context, name string) (string, error)
	ListPDFs(ctx context.Context, folderID string) ([]drive.File, error)
	ListAll(ctx context.Context, folderID string) ([]drive.File, error)
	Download(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

type MergeResult struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
	Files int    `json:"files"`
}

// CleanupService runs the end-of-cycle chores: one merged PDF for printing,
// then removing the invoices from Drive and the desktop.
type CleanupService struct {
	drive   DriveFiles
	folder  string
	desktop string
	log     *slog.Logger
}

// NewCleanupService accepts a nil drive; Drive operations then fail with ErrDriveUnavailable.
func NewCleanupService(d DriveFiles, folder, desktop string, log *slog.Logger) *CleanupService {
	if log == nil {
		log = slog.Default()
	}
	return &CleanupService{drive: d, folder: folder, desktop: desktop, log: log}
}

// MergePDFs concatenates the folder's PDFs, in name order, into the desktop file.
func (s *CleanupService) MergePDFs(ctx context.Context) (MergeResult, error) {
	if s.drive == nil {
		return MergeResult{}, ErrDriveUnavailable
	}
	folderID, err := s.drive.FindFolder(ctx, s.folder)
	if err != nil {
		return MergeResult{}, err
	}
	files, err := s.drive.ListPDFs(ctx, folderID)
	if err != nil {
		return MergeResult{}, fmt.Errorf("list pdfs: %w", err)
	}
	if len(files) == 0 {
		return MergeResult{}, ErrNoPDFs
	}

	sources := make([]io.ReadSeeker, 0, len(files))
	for _, f := range files {
		data, err := s.drive.Download(ctx, f.ID)
		if err != nil {
			return MergeResult{}, fmt.Errorf("download %s: %w", f.Name, err)
		}
		sources = append(sources, bytes.NewReader(data))
	}

	conf := pdfmodel.NewDefaultConfiguration()
	var merged bytes.Buffer
	if err := api.MergeRaw(sources, &merged, false, conf); err != nil {
		return MergeResult{}, fmt.Errorf("merge pdfs: %w", err)
	}
	pages, err := api.PageCount(bytes.NewReader(merged.Bytes()), conf)
	if err != nil {
		return MergeResult{}, fmt.Errorf("count pages: %w", err)
	}

	path := filepath.Join(s.desktop, MergedFileName)
	if err := os.WriteFile(path, merged.Bytes(), 0o644); err != nil {
		return MergeResult{}, fmt.Errorf("write merged pdf: %w", err)
	}
	s.log.Info("invoices merged", "path", path, "files", len(files), "pages", pages)
	return MergeResult{Path: path, Pages: pages, Files: len(files)}, nil
}

// DeleteDriveFiles removes every file in the folder and returns how many went.
func (s *CleanupService) DeleteDriveFiles(ctx context.Context) (int, error) {
	if s.drive == nil {
		return 0, ErrDriveUnavailable
	}
	folderID, err := s.drive.FindFolder(ctx, s.folder)
	if err != nil {
		return 0, err
	}
	files, err := s.drive.ListAll(ctx, folderID)
	if err != nil {
		return 0, fmt.Errorf("list files: %w", err)
	}

	deleted := 0
	for _, f := range files {
		if err := s.drive.Delete(ctx, f.ID); err != nil {
			return deleted, fmt.Errorf("delete %s: %w", f.Name, err)
		}
		deleted++
	}
	s.log.Info("drive folder emptied", "folder", s.folder, "deleted", deleted)
	return deleted, nil
}

// DeleteDesktopFolder removes the local invoice folder and the merged PDF.
// Missing paths are not an error; the result lists what was removed.
func (s *CleanupService) DeleteDesktopFolder() ([]string, error) {
	deleted := []string{}

	folder := filepath.Join(s.desktop, DesktopFolderName)
	if _, err := os.Stat(folder); err == nil {
		if err := os.RemoveAll(folder); err != nil {
			return deleted, fmt.Errorf("remove %s: %w", folder, err)
		}
		deleted = append(deleted, folder)
	}

	merged := filepath.Join(s.desktop, MergedFileName)
	if _, err := os.Stat(merged); err == nil {
		if err := os.Remove(merged); err != nil {
			return deleted, fmt.Errorf("remove %s: %w", merged, err)
		}
		deleted = append(deleted, merged)
	}
	return deleted, nil
}
