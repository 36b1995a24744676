// Package inbox locates ERP exports in the directory the export
// collaborator downloads them into.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
)

// Ensure Locator implements the interface.
var _ driven.PDFLocator = (*Locator)(nil)

// Locator resolves each entity type to <dir>/<file>.
//
// Browsers save a repeated download as "ordini (1).pdf"; when the exact
// file is missing the newest PDF whose name starts with the same stem is
// used instead.
type Locator struct {
	dir   string
	files map[domain.EntityType]string
}

// NewLocator creates a locator from inbox settings. A leading ~ in the
// directory is expanded to the user's home.
func NewLocator(settings domain.InboxSettings) (*Locator, error) {
	dir, err := ExpandHome(settings.Dir)
	if err != nil {
		return nil, err
	}

	files := domain.DefaultExportFiles()
	for t, name := range settings.Files {
		if strings.TrimSpace(name) != "" {
			files[t] = name
		}
	}
	return &Locator{dir: dir, files: files}, nil
}

// Dir returns the resolved inbox directory.
func (l *Locator) Dir() string {
	return l.dir
}

// Locate returns the path of the export for an entity type.
func (l *Locator) Locate(ctx context.Context, entityType domain.EntityType) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, ok := l.files[entityType]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, entityType)
	}

	path := filepath.Join(l.dir, name)
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return path, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if alt, ok := l.newestVariant(name); ok {
		return alt, nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrExportNotFound, path)
}

// EntityFor maps a file in the inbox back to the entity type it exports.
func (l *Locator) EntityFor(path string) (domain.EntityType, bool) {
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(l.dir) {
		return "", false
	}
	base := strings.ToLower(filepath.Base(path))
	for _, t := range domain.AllEntityTypes() {
		if matchesExport(base, l.files[t]) {
			return t, true
		}
	}
	return "", false
}

func (l *Locator) newestVariant(name string) (string, bool) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return "", false
	}

	var best string
	var bestMod int64
	for _, e := range entries {
		if e.IsDir() || !matchesExport(strings.ToLower(e.Name()), name) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); best == "" || mod > bestMod {
			best, bestMod = filepath.Join(l.dir, e.Name()), mod
		}
	}
	return best, best != ""
}

// matchesExport reports whether a lower-cased file name is the export
// file or a numbered copy of it.
func matchesExport(base, name string) bool {
	if name == "" {
		return false
	}
	name = strings.ToLower(name)
	if base == name {
		return true
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if !strings.HasSuffix(base, ext) || !strings.HasPrefix(base, stem) {
		return false
	}
	rest := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(base, stem), ext))
	return strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
