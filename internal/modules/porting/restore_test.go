package porting

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/waylog/core/internal/models"
	"github.com/waylog/core/internal/pkg/assetstore"
)

func TestRestoreRoundTrip(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	sc := seedScenario(t, db, store)

	ar := exportToArchive(t, db, store, sc.user.ID)

	summary, err := NewRestorer(db, store, zap.NewNop()).Restore(sc.user.ID, ar)
	require.NoError(t, err)

	assert.Equal(t, Summary{
		"categories":          1,
		"collections":         1,
		"locations":           1,
		"trails":              1,
		"visits":              1,
		"activities":          1,
		"content_images":      2,
		"content_attachments": 1,
		"transportation":      1,
		"notes":               1,
		"checklists":          1,
		"checklist_items":     1,
		"lodging":             1,
		"visited_regions":     1,
		"visited_cities":      1,
	}, summary)

	var loc models.LocationModel
	require.NoError(t, db.Preload("Category").Preload("Country").Preload("Collections").
		First(&loc, "user_id = ?", sc.user.ID).Error)
	assert.Equal(t, "Reykjavik", loc.Name)
	assert.Equal(t, []string{"capital", "coast"}, []string(loc.Tags))
	require.NotNil(t, loc.Category)
	assert.Equal(t, "hiking", loc.Category.Name)
	require.NotNil(t, loc.Country)
	assert.Equal(t, "IS", loc.Country.ISOCode)
	require.Len(t, loc.Collections, 1)
	assert.Equal(t, "Iceland 2024", loc.Collections[0].Name)

	var activity models.ActivityModel
	require.NoError(t, db.Preload("Trail").First(&activity, "name = ?", "Hike").Error)
	assert.Equal(t, float64(5000), activity.Distance)
	require.NotNil(t, activity.Trail)
	assert.Equal(t, "Laugavegur", activity.Trail.Name)

	// The gpx track landed in the live asset store under a fresh name.
	require.NotEmpty(t, activity.GPXFile)
	rc, err := store.Open(activity.GPXFile)
	require.NoError(t, err)
	rc.Close()

	var col models.CollectionModel
	require.NoError(t, db.Preload("SharedWith").First(&col, "user_id = ?", sc.user.ID).Error)
	require.Len(t, col.SharedWith, 1)
	assert.Equal(t, "buddy", col.SharedWith[0].Username)
}

func TestRestoreIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	sc := seedScenario(t, db, store)

	ar := exportToArchive(t, db, store, sc.user.ID)
	restorer := NewRestorer(db, store, zap.NewNop())

	first, err := restorer.Restore(sc.user.ID, ar)
	require.NoError(t, err)
	second, err := restorer.Restore(sc.user.ID, ar)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Importing the same archive twice must not duplicate anything.
	var locations int64
	require.NoError(t, db.Model(&models.LocationModel{}).Where("user_id = ?", sc.user.ID).Count(&locations).Error)
	assert.Equal(t, int64(1), locations)
	var visits int64
	require.NoError(t, db.Model(&models.VisitModel{}).Count(&visits).Error)
	assert.Equal(t, int64(1), visits)
}

func TestRestoreRollsBackEverythingOnFailure(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	sc := seedScenario(t, db, store)

	ar := exportToArchive(t, db, store, sc.user.ID)

	// Data created after the export must survive a failed import untouched.
	marker := models.LocationModel{UserID: sc.user.ID, Name: "Marker Cabin"}
	require.NoError(t, db.Create(&marker).Error)

	restorer := NewRestorer(db, store, zap.NewNop())
	restorer.afterLocationCreate = func(created int) error {
		return errors.New("disk full")
	}

	_, err := restorer.Restore(sc.user.ID, ar)
	require.Error(t, err)

	var names []string
	require.NoError(t, db.Model(&models.LocationModel{}).
		Where("user_id = ?", sc.user.ID).Order("name ASC").
		Pluck("name", &names).Error)
	assert.Equal(t, []string{"Marker Cabin", "Reykjavik"}, names)

	var collections int64
	require.NoError(t, db.Model(&models.CollectionModel{}).Where("user_id = ?", sc.user.ID).Count(&collections).Error)
	assert.Equal(t, int64(1), collections)
}

func TestRestoreSkipsDanglingReferences(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	user := createUser(t, db, "explorer", true)

	unknownCol := int64(7)
	doc := &Document{
		Version:   DocumentVersion,
		AccountID: "explorer",
		Locations: []LocationDoc{{
			ExportID:      0,
			Name:          "Lonely Peak",
			CategoryName:  "nonexistent",
			Country:       "ZZ",
			CollectionIDs: []int64{unknownCol},
		}},
		Notes: []NoteDoc{{
			ExportID:     0,
			Name:         "Orphan note",
			CollectionID: &unknownCol,
		}},
		VisitedRegions: []VisitedRegionDoc{{RegionRef: "ZZ-1"}},
	}
	ar := docArchive(t, store, doc)

	summary, err := NewRestorer(db, store, zap.NewNop()).Restore(user.ID, ar)
	require.NoError(t, err)
	assert.Equal(t, 1, summary["locations"])
	assert.Equal(t, 1, summary["notes"])
	assert.Zero(t, summary["visited_regions"])

	var loc models.LocationModel
	require.NoError(t, db.First(&loc, "name = ?", "Lonely Peak").Error)
	assert.Nil(t, loc.CategoryID)
	assert.Nil(t, loc.CountryID)

	var memberships int64
	require.NoError(t, db.Table("location_collections").Count(&memberships).Error)
	assert.Zero(t, memberships)

	var note models.NoteModel
	require.NoError(t, db.First(&note, "name = ?", "Orphan note").Error)
	assert.Nil(t, note.CollectionID)
}

func TestRestoreToleratesMissingAssets(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	user := createUser(t, db, "explorer", true)

	remoteID := "remote-1"
	doc := &Document{
		Version:   DocumentVersion,
		AccountID: "explorer",
		Locations: []LocationDoc{{
			ExportID: 0,
			Name:     "Glacier",
			Visits: []VisitDoc{{
				ExportID: 0,
				Activities: []ActivityDoc{{
					Name:        "Ski tour",
					GPXFilename: "lost.gpx",
				}},
			}},
			Images: []ImageDoc{
				{Filename: "lost.jpg"},                        // no bytes, no remote ref
				{Filename: "also-lost.jpg", RemoteAssetID: &remoteID}, // remote ref survives
			},
			Attachments: []AttachmentDoc{{Name: "Map", Filename: "lost.pdf"}},
		}},
	}
	ar := docArchive(t, store, doc)

	summary, err := NewRestorer(db, store, zap.NewNop()).Restore(user.ID, ar)
	require.NoError(t, err)
	assert.Equal(t, 1, summary["activities"])
	assert.Equal(t, 1, summary["content_images"])
	assert.Zero(t, summary["content_attachments"])

	var activity models.ActivityModel
	require.NoError(t, db.First(&activity, "name = ?", "Ski tour").Error)
	assert.Empty(t, activity.GPXFile)

	var img models.ContentImageModel
	require.NoError(t, db.First(&img, "user_id = ?", user.ID).Error)
	require.NotNil(t, img.RemoteAssetID)
	assert.Equal(t, "remote-1", *img.RemoteAssetID)
	assert.Empty(t, img.Filename)
}

func TestRestoreSkipsUnknownSharedUsers(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	user := createUser(t, db, "explorer", true)
	createUser(t, db, "friend", true)
	createUser(t, db, "hermit", false)

	doc := &Document{
		Version:   DocumentVersion,
		AccountID: "explorer",
		Collections: []CollectionDoc{{
			ExportID:   0,
			Name:       "Shared trip",
			SharedWith: []string{"friend", "ghost", "hermit", "explorer"},
		}},
	}
	ar := docArchive(t, store, doc)

	_, err := NewRestorer(db, store, zap.NewNop()).Restore(user.ID, ar)
	require.NoError(t, err)

	var col models.CollectionModel
	require.NoError(t, db.Preload("SharedWith").First(&col, "name = ?", "Shared trip").Error)
	// Only the existing, shareable, non-owner account keeps the share.
	require.Len(t, col.SharedWith, 1)
	assert.Equal(t, "friend", col.SharedWith[0].Username)
}

// docArchive packs a hand-built document into an opened archive with no
// binary entries.
func docArchive(t *testing.T, store *assetstore.DiskStore, doc *Document) *Archive {
	t.Helper()
	path, err := BuildArchive(t.TempDir(), doc, nil, store, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })
	ar, err := OpenArchive(path)
	require.NoError(t, err)
	t.Cleanup(func() { ar.Close() })
	return ar
}
