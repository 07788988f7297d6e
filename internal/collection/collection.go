// Package collection maps named trees to their SQLite files.
package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	apperrors "github.com/rcliao/family-tree/internal/errors"
	"github.com/rcliao/family-tree/internal/store"
)

const ext = ".db"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Collections is a directory holding one database per tree.
type Collections struct {
	dir string
}

// New returns the collections stored under dir.
func New(dir string) *Collections {
	return &Collections{dir: dir}
}

// Dir returns the backing directory.
func (c *Collections) Dir() string {
	return c.dir
}

// SanitizeName reduces a name to characters safe for a file name.
// Whitespace becomes underscores; leading dots and separators are dropped.
func SanitizeName(name string) string {
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._-")
}

// NameFromFile derives a tree name from an input file name without its extension.
func NameFromFile(path string) string {
	base := filepath.Base(path)
	return SanitizeName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Path returns the database path for a tree.
func (c *Collections) Path(name string) (string, error) {
	clean := SanitizeName(name)
	if clean == "" {
		return "", fmt.Errorf("invalid collection name %q", name)
	}
	return filepath.Join(c.dir, clean+ext), nil
}

// Exists reports whether a tree has a database file.
func (c *Collections) Exists(name string) bool {
	path, err := c.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Create opens the tree's database, creating it when missing.
func (c *Collections) Create(name string) (*store.SQLiteStore, error) {
	path, err := c.Path(name)
	if err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(path)
}

// Open opens an existing tree. A tree without a database is *errors.CollectionNotFound.
func (c *Collections) Open(name string) (*store.SQLiteStore, error) {
	if !c.Exists(name) {
		return nil, apperrors.NewCollectionNotFound(name)
	}
	path, _ := c.Path(name)
	return store.NewSQLiteStore(path)
}

// List returns the names of all trees, sorted.
func (c *Collections) List() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collections dir: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes a tree's database along with its WAL side files.
func (c *Collections) Remove(name string) error {
	if !c.Exists(name) {
		return apperrors.NewCollectionNotFound(name)
	}
	path, _ := c.Path(name)
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}
