package porting

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/waylog/core/internal/database"
	"github.com/waylog/core/internal/models"
	"github.com/waylog/core/internal/pkg/assetstore"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestStore(t *testing.T) *assetstore.DiskStore {
	t.Helper()
	store, err := assetstore.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func createUser(t *testing.T, db *gorm.DB, username string, public bool) *models.UserModel {
	t.Helper()
	user := &models.UserModel{
		Username: username,
		Name:     username,
		Password: "x",
		IsPublic: public,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// scenario is the seeded graph used by export and restore tests: one trip to
// Iceland with a hike in Reykjavik, itinerary entries, media and visited
// geography.
type scenario struct {
	user    *models.UserModel
	buddy   *models.UserModel
	gpxName string
	imgName string
	attName string
}

func seedScenario(t *testing.T, db *gorm.DB, store *assetstore.DiskStore) scenario {
	t.Helper()

	user := createUser(t, db, "explorer", true)
	buddy := createUser(t, db, "buddy", true)

	country := models.CountryModel{Name: "Iceland", ISOCode: "IS"}
	require.NoError(t, db.Create(&country).Error)
	region := models.RegionModel{Name: "Capital Region", RefID: "IS-1", CountryID: country.ID}
	require.NoError(t, db.Create(&region).Error)
	city := models.CityModel{Name: "Reykjavik", RefID: "IS-1-reykjavik", RegionID: region.ID}
	require.NoError(t, db.Create(&city).Error)

	category := models.CategoryModel{UserID: user.ID, Name: "hiking", DisplayName: "Hiking", Icon: "🥾"}
	require.NoError(t, db.Create(&category).Error)

	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 14, 0, 0, 0, 0, time.UTC)
	collection := models.CollectionModel{
		UserID:    user.ID,
		Name:      "Iceland 2024",
		IsPublic:  true,
		StartDate: &start,
		EndDate:   &end,
	}
	require.NoError(t, db.Create(&collection).Error)
	require.NoError(t, db.Model(&collection).Association("SharedWith").Append(buddy))

	rating := 5.0
	location := models.LocationModel{
		UserID:     user.ID,
		Name:       "Reykjavik",
		Place:      "Reykjavik, Iceland",
		Tags:       models.StringArray{"capital", "coast"},
		Rating:     &rating,
		IsPublic:   true,
		CategoryID: &category.ID,
		CountryID:  &country.ID,
		RegionID:   &region.ID,
		CityID:     &city.ID,
	}
	require.NoError(t, db.Create(&location).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO location_collections (location_model_id, collection_model_id) VALUES (?, ?)",
		location.ID, collection.ID,
	).Error)

	trail := models.TrailModel{UserID: user.ID, LocationID: location.ID, Name: "Laugavegur"}
	require.NoError(t, db.Create(&trail).Error)

	visitStart := time.Date(2024, 7, 2, 9, 0, 0, 0, time.UTC)
	visitEnd := time.Date(2024, 7, 2, 17, 0, 0, 0, time.UTC)
	visit := models.VisitModel{
		LocationID: location.ID,
		StartDate:  &visitStart,
		EndDate:    &visitEnd,
		Timezone:   "Atlantic/Reykjavik",
		Notes:      "clear skies",
	}
	require.NoError(t, db.Create(&visit).Error)

	gpxName, err := store.Save("hike.gpx", strings.NewReader("<gpx></gpx>"))
	require.NoError(t, err)
	activity := models.ActivityModel{
		VisitID:   visit.ID,
		TrailID:   &trail.ID,
		Name:      "Hike",
		SportType: "hiking",
		Distance:  5000,
		Timezone:  "Atlantic/Reykjavik",
		GPXFile:   gpxName,
	}
	require.NoError(t, db.Create(&activity).Error)

	imgName, err := store.Save("harbor.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.ContentImageModel{
		UserID:    user.ID,
		OwnerKind: models.OwnerLocation,
		OwnerID:   location.ID,
		Filename:  imgName,
		IsPrimary: true,
	}).Error)

	remoteID := "immich-asset-1"
	require.NoError(t, db.Create(&models.ContentImageModel{
		UserID:        user.ID,
		OwnerKind:     models.OwnerVisit,
		OwnerID:       visit.ID,
		RemoteAssetID: &remoteID,
	}).Error)

	attName, err := store.Save("tickets.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.ContentAttachmentModel{
		UserID:    user.ID,
		OwnerKind: models.OwnerLocation,
		OwnerID:   location.ID,
		Name:      "Tickets",
		Filename:  attName,
	}).Error)

	flightDate := time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.TransportationModel{
		UserID:       user.ID,
		CollectionID: &collection.ID,
		Type:         "plane",
		Name:         "Flight to KEF",
		FlightNumber: "FI205",
		FromName:     "Seattle",
		ToName:       "Keflavik",
		Date:         &flightDate,
	}).Error)

	require.NoError(t, db.Create(&models.NoteModel{
		UserID:       user.ID,
		CollectionID: &collection.ID,
		Name:         "Packing notes",
		Content:      "bring layers",
		Links:        models.StringArray{"https://vedur.is"},
	}).Error)

	checklist := models.ChecklistModel{UserID: user.ID, CollectionID: &collection.ID, Name: "Gear"}
	require.NoError(t, db.Create(&checklist).Error)
	require.NoError(t, db.Create(&models.ChecklistItemModel{
		UserID:      user.ID,
		ChecklistID: checklist.ID,
		Name:        "Rain jacket",
		IsChecked:   true,
	}).Error)

	require.NoError(t, db.Create(&models.LodgingModel{
		UserID:       user.ID,
		CollectionID: &collection.ID,
		Type:         "hotel",
		Name:         "Harbor Hotel",
		Timezone:     "Atlantic/Reykjavik",
	}).Error)

	require.NoError(t, db.Create(&models.VisitedRegionModel{UserID: user.ID, RegionID: region.ID}).Error)
	require.NoError(t, db.Create(&models.VisitedCityModel{UserID: user.ID, CityID: city.ID}).Error)

	return scenario{user: user, buddy: buddy, gpxName: gpxName, imgName: imgName, attName: attName}
}

// writeZip builds a zip on disk from literal entries and returns its path.
func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func exportToArchive(t *testing.T, db *gorm.DB, store *assetstore.DiskStore, userID string) *Archive {
	t.Helper()
	log := zap.NewNop()
	doc, refs, err := NewExporter(db, log).Export(userID)
	require.NoError(t, err)
	path, err := BuildArchive(t.TempDir(), doc, refs, store, log)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })
	ar, err := OpenArchive(path)
	require.NoError(t, err)
	t.Cleanup(func() { ar.Close() })
	return ar
}
