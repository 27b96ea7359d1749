// Package assetstore abstracts where binary assets (content images,
// attachments, GPS tracks) live. The porting engine only ever asks one
// question of it: given an asset reference, return bytes or not-found. Photo
// servers and activity trackers plug in behind the same interface.
package assetstore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound reports that a referenced asset does not exist in the store.
var ErrNotFound = errors.New("assetstore: asset not found")

// Store is the asset-source capability used by export and import.
type Store interface {
	// Open returns a reader for the named asset, or ErrNotFound.
	Open(name string) (io.ReadCloser, error)
	// Save writes asset bytes under a unique name derived from filename and
	// returns the stored name.
	Save(filename string, r io.Reader) (string, error)
}

// DiskStore keeps assets as flat files under a root directory.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Open(name string) (io.ReadCloser, error) {
	clean := sanitizeName(name)
	if clean == "" {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.root, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *DiskStore) Save(filename string, r io.Reader) (string, error) {
	name := uniqueName(filename)
	f, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return name, nil
}

// sanitizeName strips any path components so a stored name can never escape
// the store root. Names with no filename part at all come back empty.
func sanitizeName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	base := filepath.Base(name)
	if base == "." || base == ".." || base == "/" {
		return ""
	}
	return base
}

// uniqueName prefixes the original filename with a UUID, keeping the
// extension and a recognizable suffix.
func uniqueName(filename string) string {
	base := sanitizeName(filename)
	if base == "" {
		base = "asset"
	}
	return uuid.New().String() + "_" + base
}
