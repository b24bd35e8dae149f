package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// FileRemote serves a catalog export from disk: libraries.json lists the
// libraries and <library id>.json holds each library's items.
type FileRemote struct {
	dir string
}

// NewFileRemote creates a remote catalog over an export directory.
func NewFileRemote(dir string) *FileRemote {
	return &FileRemote{dir: dir}
}

// GetLibraries implements RemoteCatalog.
func (f *FileRemote) GetLibraries(ctx context.Context) ([]models.Library, error) {
	var libs []models.Library
	if err := f.read("libraries.json", &libs); err != nil {
		return nil, err
	}
	return libs, nil
}

// GetLibraryItems implements RemoteCatalog.
func (f *FileRemote) GetLibraryItems(ctx context.Context, libraryID string, offset, limit int) ([]models.CatalogItem, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var items []models.CatalogItem
	if err := f.read(libraryID+".json", &items); err != nil {
		return nil, 0, err
	}

	total := len(items)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return items[offset:end], total, nil
}

func (f *FileRemote) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(f.dir, filepath.Base(name)))
	if err != nil {
		return fmt.Errorf("read catalog export: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse catalog export %s: %w", name, err)
	}
	return nil
}
