package porting

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/waylog/core/internal/pkg/assetstore"
	"go.uber.org/zap"
)

// DocumentEntry is the single required entry of every archive.
const DocumentEntry = "data.json"

// Fixed logical prefixes for the archive's binary sections.
const (
	PrefixImages      = "images/"
	PrefixAttachments = "attachments/"
	PrefixGPX         = "gpx/"
)

func nowUTC() time.Time { return time.Now().UTC() }

// BuildArchive packs a document and its referenced binary assets into a zip
// staged on local disk, so archive size is bounded by disk, not memory. The
// caller owns the returned path and must remove it on every exit path.
//
// An asset that cannot be read from the store is skipped with a warning; the
// document metadata keeps referencing it and import tolerates the gap. Export
// never aborts because one asset is unreadable.
func BuildArchive(stagingDir string, doc *Document, refs []AssetRef, assets assetstore.Store, log *zap.Logger) (string, error) {
	staged, err := os.CreateTemp(stagingDir, "waylog-export-*.zip")
	if err != nil {
		return "", fmt.Errorf("stage archive: %w", err)
	}
	ok := false
	defer func() {
		staged.Close()
		if !ok {
			os.Remove(staged.Name())
		}
	}()

	zw := zip.NewWriter(staged)

	docEntry, err := zw.Create(DocumentEntry)
	if err != nil {
		return "", err
	}
	enc := json.NewEncoder(docEntry)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	for _, ref := range refs {
		src, err := assets.Open(ref.StoreName)
		if err != nil {
			if errors.Is(err, assetstore.ErrNotFound) {
				log.Warn("asset missing from store, skipping bundle",
					zap.String("path", ref.Path))
				continue
			}
			log.Warn("asset unreadable, skipping bundle",
				zap.String("path", ref.Path), zap.Error(err))
			continue
		}
		entry, err := zw.Create(ref.Path)
		if err != nil {
			src.Close()
			return "", err
		}
		if _, err := io.Copy(entry, src); err != nil {
			src.Close()
			return "", fmt.Errorf("bundle %s: %w", ref.Path, err)
		}
		src.Close()
	}

	if err := zw.Close(); err != nil {
		return "", err
	}
	if err := staged.Close(); err != nil {
		return "", err
	}
	ok = true
	return staged.Name(), nil
}

// Archive is an opened, structurally validated export container. It performs
// no database access; it only exposes the parsed document and byte lookup for
// binary entries.
type Archive struct {
	rc      *zip.ReadCloser
	entries map[string]*zip.File
	doc     *Document
}

// OpenArchive opens and validates an uploaded archive staged at path.
// It fails with ErrMalformedArchive when the container is not a readable zip,
// ErrMissingDocument when the required document entry is absent, and
// ErrMalformedDocument when the document does not parse.
func OpenArchive(archivePath string) (*Archive, error) {
	rc, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}

	a := &Archive{rc: rc, entries: make(map[string]*zip.File, len(rc.File))}
	for _, f := range rc.File {
		a.entries[normalizeEntryName(f.Name)] = f
	}

	docEntry, found := a.entries[DocumentEntry]
	if !found {
		rc.Close()
		return nil, ErrMissingDocument
	}

	doc, err := decodeDocument(docEntry)
	if err != nil {
		rc.Close()
		return nil, err
	}
	a.doc = doc
	return a, nil
}

// Document returns the parsed export document.
func (a *Archive) Document() *Document { return a.doc }

// Asset returns the bytes of a binary entry under the given prefix, or
// ErrAssetNotFound.
func (a *Archive) Asset(prefix, filename string) ([]byte, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrAssetNotFound
	}
	entry, found := a.entries[prefix+path.Base(filename)]
	if !found {
		return nil, ErrAssetNotFound
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Close releases the underlying container.
func (a *Archive) Close() error { return a.rc.Close() }

func decodeDocument(entry *zip.File) (*Document, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	defer rc.Close()

	var doc Document
	dec := json.NewDecoder(rc)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.Version <= 0 || doc.Version > DocumentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedDocument, doc.Version)
	}
	return &doc, nil
}

func normalizeEntryName(name string) string {
	return strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/")
}
