package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// DirStore serves objects from a local directory laid out as <root>/<bucket>/<key>.
// It backs offline scoring of downloaded job output and tests.
type DirStore struct {
	root string
}

// Compile-time check that DirStore implements Store.
var _ Store = (*DirStore)(nil)

// NewDirStore creates a store rooted at root.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

func (d *DirStore) path(bucket, key string) string {
	return filepath.Join(d.root, bucket, filepath.FromSlash(key))
}

// GetObject reads the file for bucket/key.
func (d *DirStore) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	body, err := os.ReadFile(d.path(bucket, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", models.ErrNotFound, bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: %s/%s is empty", models.ErrNotFound, bucket, key)
	}
	return body, nil
}

// ListKeys walks the bucket directory and returns slash-separated keys
// under prefix that end in suffix, sorted.
func (d *DirStore) ListKeys(_ context.Context, bucket, prefix, suffix string) ([]string, error) {
	base := filepath.Join(d.root, bucket)
	var keys []string

	err := filepath.WalkDir(base, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) && strings.HasSuffix(key, suffix) {
			keys = append(keys, key)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: bucket %s", models.ErrNotFound, bucket)
	}
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", base, err)
	}

	slices.Sort(keys)
	return keys, nil
}
