package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var nonDirChar = regexp.MustCompile(`[^a-z0-9_\-]+`)

// Store owns the image directory tree. Every stored file lives under
// Root()/<collection dir>/<uuid><ext>; the database Item row holds the
// resulting path and is the only live reference to the file.
type Store struct {
	root string
	log  zerolog.Logger
}

func New(root string, log zerolog.Logger) *Store {
	return &Store{root: root, log: log}
}

func (s *Store) Root() string {
	return s.root
}

// DirNameFor maps a collection display name onto a storage directory
// name: lower-cased, spaces to underscores, anything path-hostile
// stripped. Deterministic so a collection always resolves to the same
// directory.
func DirNameFor(collectionName string) string {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(collectionName), " ", "_"))
	name = nonDirChar.ReplaceAllString(name, "")
	if name == "" {
		name = "collection"
	}
	return name
}

// UniqueFilename derives a collision-resistant storage name from the
// client-supplied one. Only the extension survives; the original name is
// kept as a display attribute on the Item, never used as a path.
func UniqueFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}
	return uuid.New().String() + ext
}

// EnsureDir creates (if needed) and returns the directory for a
// collection.
func (s *Store) EnsureDir(collectionName string) (string, error) {
	dir := filepath.Join(s.root, DirNameFor(collectionName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	return dir, nil
}

// Save writes data to dir/filename and returns the full path.
func (s *Store) Save(dir, filename string, data []byte) (string, error) {
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// Discard removes a file written earlier in the same request, as the
// compensating action when the record never committed. Failure here is
// logged: the row does not exist, so the worst case is an orphan on disk.
func (s *Store) Discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Error().Err(err).Str("path", path).Msg("rollback file delete failed, orphan left behind")
	}
}

// Remove is the best-effort unlink used after a record-level delete or
// replacement committed. Errors are swallowed: once the row is gone (or
// points elsewhere), a stale file is a leak, not a correctness break.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Str("path", path).Msg("best-effort file delete failed")
	}
}

// Reconcile walks the storage root and deletes every regular file not in
// live (a set of full paths held by Item rows). Idempotent; safe to run
// at any time because uploads in flight are not visible as rows yet and
// may be re-created, while files this removes were unreferenced.
func (s *Store) Reconcile(live map[string]struct{}) (scanned, removed int, err error) {
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		scanned++
		if _, ok := live[path]; ok {
			return nil
		}
		if rmErr := os.Remove(path); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("path", path).Msg("reconcile could not remove orphan")
			return nil
		}
		s.log.Info().Str("path", path).Msg("removed orphaned file")
		removed++
		return nil
	})
	if os.IsNotExist(err) {
		err = nil
	}
	return scanned, removed, err
}
