package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"zwrot/internal/drive"
	"zwrot/internal/service"
)

type Cleaner interface {
	MergePDFs(ctx context.Context) (service.MergeResult, error)
	DeleteDriveFiles(ctx context.Context) (int, error)
	DeleteDesktopFolder() ([]string, error)
}

type mergeResponse struct {
	Status string `json:"status"`
	service.MergeResult
}

func MergePDFsHandler(c Cleaner, folder string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := c.MergePDFs(r.Context())
		if err != nil {
			writeDriveError(w, err, folder)
			return
		}
		writeJSON(w, http.StatusOK, mergeResponse{Status: statusOK, MergeResult: res})
	}
}

func DeleteDriveFilesHandler(c Cleaner, folder string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := c.DeleteDriveFiles(r.Context())
		if err != nil {
			writeDriveError(w, err, folder)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": statusOK, "deleted": n})
	}
}

func DeleteDesktopFolderHandler(c Cleaner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := c.DeleteDesktopFolder()
		if err != nil {
			slog.Error("desktop cleanup failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": statusOK, "deleted": deleted})
	}
}

func writeDriveError(w http.ResponseWriter, err error, folder string) {
	switch {
	case errors.Is(err, drive.ErrFolderNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Nie znaleziono folderu '%s'", folder))
	case errors.Is(err, service.ErrNoPDFs):
		writeError(w, http.StatusNotFound, "Brak plików PDF w folderze")
	case errors.Is(err, service.ErrDriveUnavailable):
		writeError(w, http.StatusInternalServerError, "Brak autoryzacji Dysku Google (uruchom: zwrot auth)")
	default:
		slog.Error("drive operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
