package porting

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildAndOpenArchive(t *testing.T) {
	store := newTestStore(t)
	gpxName, err := store.Save("track.gpx", strings.NewReader("<gpx/>"))
	require.NoError(t, err)

	doc := &Document{
		Version:   DocumentVersion,
		AccountID: "explorer",
		Locations: []LocationDoc{{ExportID: 0, Name: "Reykjavik"}},
	}
	refs := []AssetRef{{Path: PrefixGPX + gpxName, StoreName: gpxName}}

	path, err := BuildArchive(t.TempDir(), doc, refs, store, zap.NewNop())
	require.NoError(t, err)
	defer os.Remove(path)

	ar, err := OpenArchive(path)
	require.NoError(t, err)
	defer ar.Close()

	got := ar.Document()
	assert.Equal(t, "explorer", got.AccountID)
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "Reykjavik", got.Locations[0].Name)

	data, err := ar.Asset(PrefixGPX, gpxName)
	require.NoError(t, err)
	assert.Equal(t, "<gpx/>", string(data))

	_, err = ar.Asset(PrefixImages, "nope.jpg")
	assert.ErrorIs(t, err, ErrAssetNotFound)
	_, err = ar.Asset(PrefixGPX, "")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestBuildArchiveSkipsAssetsMissingFromStore(t *testing.T) {
	store := newTestStore(t)
	doc := &Document{Version: DocumentVersion, AccountID: "explorer"}
	refs := []AssetRef{{Path: PrefixImages + "ghost.jpg", StoreName: "ghost.jpg"}}

	path, err := BuildArchive(t.TempDir(), doc, refs, store, zap.NewNop())
	require.NoError(t, err)
	defer os.Remove(path)

	ar, err := OpenArchive(path)
	require.NoError(t, err)
	defer ar.Close()

	// The archive is valid; only the unreadable asset is absent.
	_, err = ar.Asset(PrefixImages, "ghost.jpg")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestOpenArchiveRejectsNonZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-zip.zip")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := OpenArchive(path)
	assert.ErrorIs(t, err, ErrMalformedArchive)
}

func TestOpenArchiveRejectsMissingDocument(t *testing.T) {
	path := writeZip(t, map[string]string{"images/pic.jpg": "bytes"})

	_, err := OpenArchive(path)
	assert.ErrorIs(t, err, ErrMissingDocument)
}

func TestOpenArchiveRejectsUnparseableDocument(t *testing.T) {
	path := writeZip(t, map[string]string{DocumentEntry: "{not json"})

	_, err := OpenArchive(path)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestOpenArchiveRejectsUnsupportedVersion(t *testing.T) {
	path := writeZip(t, map[string]string{DocumentEntry: `{"version": 99}`})

	_, err := OpenArchive(path)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	path = writeZip(t, map[string]string{DocumentEntry: `{"version": 0}`})
	_, err = OpenArchive(path)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}
