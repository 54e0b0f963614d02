package collection

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zenithds/zenithds/internal/domain"
	"github.com/zenithds/zenithds/internal/domain/file"
	"github.com/zenithds/zenithds/internal/domain/predicate"
	"github.com/zenithds/zenithds/internal/repository/csvfile"
)

// FilenameMode selects how filename predicates are evaluated.
type FilenameMode string

const (
	// ModePattern extracts text from file names with one configured pattern
	// and evaluates every filename predicate against it.
	ModePattern FilenameMode = "pattern"
	// ModeRegex treats each filename predicate's field as its own pattern.
	ModeRegex FilenameMode = "regex"
)

// DefaultFilenamePattern extracts a date suffix such as _20240131 or _2024_01_31.
const DefaultFilenamePattern = `_(\d{8}|\d{4}_\d{2}_\d{2})`

// IsValid checks if the mode is supported.
func (m FilenameMode) IsValid() bool {
	return m == ModePattern || m == ModeRegex
}

// Config holds repository settings.
type Config struct {
	Root    string
	Mode    FilenameMode
	Pattern string
}

// Repo stores collections as directories of CSV files under a root directory.
type Repo struct {
	root    string
	mode    FilenameMode
	pattern *regexp.Regexp
}

// New creates a collection repository. The fixed filename pattern is compiled
// here so a bad configuration fails at startup.
func New(cfg Config) (*Repo, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModePattern
	}
	if !cfg.Mode.IsValid() {
		return nil, fmt.Errorf("invalid filename mode %q", cfg.Mode)
	}
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultFilenamePattern
	}
	re, err := regexp.Compile(cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compile filename pattern: %w: %w", domain.ErrRegex, err)
	}
	return &Repo{root: cfg.Root, mode: cfg.Mode, pattern: re}, nil
}

// Root returns the storage root directory.
func (r *Repo) Root() string { return r.root }

// Ping checks that the storage root is an accessible directory.
func (r *Repo) Ping(_ context.Context) error {
	info, err := os.Stat(r.root)
	if err != nil {
		return domain.FileSystemError("stat root", err)
	}
	if !info.IsDir() {
		return domain.FileSystemError("stat root", fmt.Errorf("%s is not a directory", r.root))
	}
	return nil
}

// List returns the non-empty regular files of a collection that pass the
// filename predicates. Filename patterns are compiled once before listing.
func (r *Repo) List(
	_ context.Context, collection string, preds []predicate.Predicate,
) ([]file.Metadata, error) {
	accept, err := r.filenameFilter(preds)
	if err != nil {
		return nil, err
	}

	dir, err := r.dir(collection)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, domain.FileSystemError("list collection "+collection, err)
	}

	files := make([]file.Metadata, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		if size <= 0 || !accept(e.Name()) {
			continue
		}
		files = append(files, file.Metadata{
			Name:       e.Name(),
			Collection: collection,
			Path:       filepath.Join(dir, e.Name()),
			Size:       size,
		})
	}
	return files, nil
}

// SampleHeaders returns the detected headers of up to n non-empty files in
// the collection, in directory order. Files without a detectable header are
// skipped. A missing collection yields no headers.
func (r *Repo) SampleHeaders(_ context.Context, collection string, n int) ([][]string, error) {
	dir, err := r.dir(collection)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, domain.FileSystemError("list collection "+collection, err)
	}

	headers := make([][]string, 0, n)
	for _, e := range entries {
		if len(headers) >= n {
			break
		}
		if !e.Type().IsRegular() {
			continue
		}
		h, err := readHeader(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if h != nil {
			headers = append(headers, h)
		}
	}
	return headers, nil
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, domain.FileSystemError("open "+path, err)
	}
	defer func() { _ = f.Close() }()

	h, err := csvfile.DetectHeader(f)
	if err != nil {
		return nil, fmt.Errorf("detect header %s: %w", path, err)
	}
	return h, nil
}

// Write creates or overwrites filename in the collection with header and rows.
// The collection directory is created when missing.
func (r *Repo) Write(
	_ context.Context, collection, filename string, header []string, rows [][]string,
) error {
	dir, err := r.dir(collection)
	if err != nil {
		return err
	}
	path, err := r.path(collection, filename)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return domain.FileSystemError("create collection "+collection, err)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return domain.FileSystemError("create "+path, err)
	}
	if err := csvfile.Write(f, header, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return domain.FileSystemError("close "+path, err)
	}
	return nil
}

// Remove deletes filename from the collection.
func (r *Repo) Remove(_ context.Context, collection, filename string) error {
	path, err := r.path(collection, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return domain.FileSystemError("remove "+path, err)
	}
	return nil
}

func (r *Repo) dir(collection string) (string, error) {
	if !isPlainName(collection) {
		return "", domain.FileSystemError("resolve collection",
			fmt.Errorf("collection name %q: %w", collection, fs.ErrInvalid))
	}
	return filepath.Join(r.root, collection), nil
}

func (r *Repo) path(collection, filename string) (string, error) {
	dir, err := r.dir(collection)
	if err != nil {
		return "", err
	}
	if !isPlainName(filename) {
		return "", domain.FileSystemError("resolve file",
			fmt.Errorf("file name %q: %w", filename, fs.ErrInvalid))
	}
	return filepath.Join(dir, filename), nil
}

// isPlainName reports whether name is a single path element.
func isPlainName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`)
}
