// Package backup copies the library file into timestamped snapshots.
package backup

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	snapshotPrefix = "library-"
	snapshotSuffix = ".json"
	stampLayout    = "20060102-150405"
)

// ErrNothingToBackUp is returned when the library file does not exist yet.
var ErrNothingToBackUp = errors.New("library file does not exist")

// Snapshotter writes copies of the library file and prunes old ones.
type Snapshotter struct {
	source string
	dir    string
	keep   int
	now    func() time.Time
}

// NewSnapshotter copies source into dir, keeping the newest keep snapshots.
// A keep of zero or less keeps everything.
func NewSnapshotter(source, dir string, keep int) *Snapshotter {
	return &Snapshotter{
		source: source,
		dir:    dir,
		keep:   keep,
		now:    time.Now,
	}
}

// Snapshot copies the library file and returns the snapshot path.
func (s *Snapshotter) Snapshot() (string, error) {
	src, err := os.Open(s.source)
	if os.IsNotExist(err) {
		return "", ErrNothingToBackUp
	}
	if err != nil {
		return "", fmt.Errorf("open library: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := snapshotPrefix + s.now().UTC().Format(stampLayout) + snapshotSuffix
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("copy snapshot: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}

	if err := s.prune(); err != nil {
		log.Printf("Backup: failed to prune old snapshots: %v", err)
	}
	return path, nil
}

// Snapshots lists existing snapshot paths, oldest first.
func (s *Snapshotter) Snapshots() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		names = append(names, name)
	}
	// The timestamp layout sorts lexicographically.
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(s.dir, name)
	}
	return paths, nil
}

func (s *Snapshotter) prune() error {
	if s.keep <= 0 {
		return nil
	}
	paths, err := s.Snapshots()
	if err != nil {
		return err
	}
	for len(paths) > s.keep {
		if err := os.Remove(paths[0]); err != nil && !os.IsNotExist(err) {
			return err
		}
		paths = paths[1:]
	}
	return nil
}
