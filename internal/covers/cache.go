// Package covers keeps local copies of book cover images.
//
// Files are named cover_<book id>_<url hash>.jpg, so a changed cover URL
// never serves the old image. A book has at most one cached file: fetching a
// new URL drops whatever was stored for the previous one.
package covers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// maxCoverBytes caps a single downloaded image.
	maxCoverBytes = 10 << 20
	fetchTimeout  = 30 * time.Second
)

var (
	// ErrNoBookID is returned when the id has no file-name-safe characters.
	ErrNoBookID = errors.New("book id is required")
	// ErrCoverTooLarge is returned when an image exceeds the size cap.
	ErrCoverTooLarge = errors.New("cover image too large")
)

// Cache stores downloaded covers in a directory.
type Cache struct {
	dir      string
	client   *http.Client
	maxBytes int64
}

// NewCache creates the cache directory if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{
		dir:      dir,
		client:   &http.Client{Timeout: fetchTimeout},
		maxBytes: maxCoverBytes,
	}, nil
}

// GetCover returns the local path of a book's cover, downloading it on first
// use. An empty coverURL yields an empty path and no error.
func (c *Cache) GetCover(ctx context.Context, bookID, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}
	key := safeKey(bookID)
	if key == "" {
		return "", ErrNoBookID
	}

	target := filepath.Join(c.dir, fileName(key, coverURL))
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	if err := c.download(ctx, coverURL, target); err != nil {
		return "", fmt.Errorf("cache cover for %s: %w", bookID, err)
	}
	if err := c.removeExcept(key, target); err != nil {
		return "", err
	}
	return target, nil
}

// InvalidateCover removes every cached cover for a book.
func (c *Cache) InvalidateCover(bookID string) error {
	key := safeKey(bookID)
	if key == "" {
		return nil
	}
	return c.removeExcept(key, "")
}

func (c *Cache) removeExcept(key, keep string) error {
	matches, err := filepath.Glob(filepath.Join(c.dir, "cover_"+key+"_*"))
	if err != nil {
		return err
	}
	for _, match := range matches {
		if match == keep {
			continue
		}
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func fileName(key, coverURL string) string {
	sum := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%s_%x.jpg", key, sum[:8])
}

// safeKey keeps only characters that are safe in a file name.
func safeKey(bookID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return -1
		}
	}, bookID)
}

// download writes the image to a temp file in the cache directory and renames
// it into place, so readers never see a partial file.
func (c *Cache) download(ctx context.Context, coverURL, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Bookshelf/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(c.dir, "tmp-cover-*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return err
	}
	if n > c.maxBytes {
		return ErrCoverTooLarge
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
