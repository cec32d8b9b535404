// Package drive wraps the Google Drive v3 calls the workflow needs: locate one
// folder by name, list its files, download and delete them.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	pdfMimeType    = "application/pdf"
	pageSize       = 100
)

var ErrFolderNotFound = errors.New("drive folder not found")

type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Client struct {
	svc *gdrive.Service
	log *slog.Logger
}

// New builds a client on top of an authorised HTTP client. Extra options are
// passed to the Drive service (tests point the endpoint at a local server).
func New(ctx context.Context, hc *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(hc)}, opts...)
	svc, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &Client{svc: svc, log: slog.Default()}, nil
}

// FindFolder returns the id of the first folder called name.
func (c *Client) FindFolder(ctx context.Context, name string) (string, error) {
	q := fmt.Sprintf("mimeType='%s' and name='%s' and trashed=false", folderMimeType, escape(name))
	res, err := c.svc.Files.List().Q(q).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("list folders: %w", err)
	}
	if len(res.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrFolderNotFound, name)
	}
	if len(res.Files) > 1 {
		c.log.Warn("several drive folders share the name, using the first", "name", name, "count", len(res.Files))
	}
	return res.Files[0].Id, nil
}

// ListPDFs returns the PDFs directly inside folderID sorted by name.
func (c *Client) ListPDFs(ctx context.Context, folderID string) ([]File, error) {
	return c.list(ctx, fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false", escape(folderID), pdfMimeType))
}

// ListAll returns every file directly inside folderID sorted by name.
func (c *Client) ListAll(ctx context.Context, folderID string) ([]File, error) {
	return c.list(ctx, fmt.Sprintf("'%s' in parents and trashed=false", escape(folderID)))
}

func (c *Client) list(ctx context.Context, q string) ([]File, error) {
	var files []File
	err := c.svc.Files.List().Q(q).PageSize(pageSize).Fields("nextPageToken, files(id, name)").
		Pages(ctx, func(page *gdrive.FileList) error {
			for _, f := range page.Files {
				files = append(files, File{ID: f.Id, Name: f.Name})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	return data, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.svc.Files.Delete(id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
