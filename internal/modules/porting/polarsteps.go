package porting

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/waylog/core/internal/models"
	"github.com/waylog/core/internal/pkg/assetstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// polarstepsTrip mirrors the subset of a Polarsteps trip.json we consume.
type polarstepsTrip struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Summary   string           `json:"summary"`
	StartDate *float64         `json:"start_date"`
	EndDate   *float64         `json:"end_date"`
	Timezone  string           `json:"timezone_id"`
	AllSteps  []polarstepsStep `json:"all_steps"`
}

type polarstepsStep struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name"`
	Description string             `json:"description"`
	StartTime   *float64           `json:"start_time"`
	Timezone    string             `json:"timezone_id"`
	IsDeleted   bool               `json:"is_deleted"`
	Location    polarstepsLocation `json:"location"`
}

type polarstepsLocation struct {
	Name      string   `json:"name"`
	Detail    string   `json:"detail"`
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lon"`
}

// PolarstepsImporter maps a Polarsteps takeout zip onto collections,
// locations and visits. The import is additive: nothing existing is touched,
// and each trip lands in its own transaction so one broken trip does not
// take down its siblings.
type PolarstepsImporter struct {
	db     *gorm.DB
	assets assetstore.Store
	log    *zap.Logger
}

func NewPolarstepsImporter(db *gorm.DB, assets assetstore.Store, log *zap.Logger) *PolarstepsImporter {
	return &PolarstepsImporter{db: db, assets: assets, log: log}
}

// Import walks the zip at archivePath, importing every trip.json it finds.
func (p *PolarstepsImporter) Import(userID, archivePath string) (Summary, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	defer zr.Close()

	trips := make(map[string]*zip.File) // trip directory -> trip.json entry
	for _, f := range zr.File {
		name := normalizeEntryName(f.Name)
		if path.Base(name) == "trip.json" {
			trips[path.Dir(name)] = f
		}
	}
	if len(trips) == 0 {
		return nil, fmt.Errorf("%w: no trip.json found in archive", ErrMissingDocument)
	}

	total := Summary{}
	for dir, entry := range trips {
		trip, err := readTrip(entry)
		if err != nil {
			p.log.Warn("skipping unreadable polarsteps trip",
				zap.String("entry", entry.Name), zap.Error(err))
			continue
		}
		summary, err := p.importTrip(userID, dir, trip, &zr.Reader)
		if err != nil {
			p.log.Error("polarsteps trip import failed, skipping trip",
				zap.String("trip", trip.Name), zap.Error(err))
			continue
		}
		total.merge(summary)
	}
	return total, nil
}

func readTrip(entry *zip.File) (*polarstepsTrip, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var trip polarstepsTrip
	if err := json.NewDecoder(rc).Decode(&trip); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &trip, nil
}

func (p *PolarstepsImporter) importTrip(userID, dir string, trip *polarstepsTrip, zr *zip.Reader) (Summary, error) {
	summary := Summary{}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		col := models.CollectionModel{
			UserID:      userID,
			Name:        trip.Name,
			Description: trip.Summary,
			StartDate:   unixTime(trip.StartDate, trip.Timezone),
			EndDate:     unixTime(trip.EndDate, trip.Timezone),
		}
		if col.Name == "" {
			col.Name = "Polarsteps trip"
		}
		if err := tx.Create(&col).Error; err != nil {
			return fmt.Errorf("create collection %q: %w", col.Name, err)
		}
		summary.add("collections")

		for _, step := range trip.AllSteps {
			if step.IsDeleted {
				continue
			}
			if err := p.importStep(tx, userID, dir, col.ID, step, summary, zr); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (p *PolarstepsImporter) importStep(tx *gorm.DB, userID, dir, collectionID string, step polarstepsStep, summary Summary, zr *zip.Reader) error {
	name := step.DisplayName
	if name == "" {
		name = step.Name
	}
	if name == "" {
		name = step.Location.Name
	}
	if name == "" {
		name = "Untitled step"
	}

	place := step.Location.Name
	if step.Location.Detail != "" && step.Location.Detail != place {
		if place != "" {
			place += ", "
		}
		place += step.Location.Detail
	}

	loc := models.LocationModel{
		UserID:      userID,
		Name:        name,
		Place:       place,
		Description: step.Description,
		Latitude:    step.Location.Latitude,
		Longitude:   step.Location.Longitude,
	}
	if err := tx.Create(&loc).Error; err != nil {
		return fmt.Errorf("create location %q: %w", name, err)
	}
	summary.add("locations")

	if err := tx.Exec(
		"INSERT INTO location_collections (location_model_id, collection_model_id) VALUES (?, ?)",
		loc.ID, collectionID,
	).Error; err != nil {
		return fmt.Errorf("attach location %q to collection: %w", name, err)
	}

	start := unixTime(step.StartTime, step.Timezone)
	visit := models.VisitModel{
		LocationID: loc.ID,
		StartDate:  start,
		EndDate:    start, // steps carry no end time
		Timezone:   step.Timezone,
	}
	if err := tx.Create(&visit).Error; err != nil {
		return fmt.Errorf("create visit for %q: %w", name, err)
	}
	summary.add("visits")

	return p.importStepPhotos(tx, userID, dir, loc.ID, step.ID, summary, zr)
}

// importStepPhotos attaches any photo under the step's folder, recognized by
// the `<slug>_<step id>/photos/` naming Polarsteps uses inside a trip
// directory.
func (p *PolarstepsImporter) importStepPhotos(tx *gorm.DB, userID, dir, locationID string, stepID int64, summary Summary, zr *zip.Reader) error {
	suffix := fmt.Sprintf("_%d", stepID)
	for _, f := range zr.File {
		name := normalizeEntryName(f.Name)
		rel, ok := stripDir(name, dir)
		if !ok {
			continue
		}
		parts := strings.Split(rel, "/")
		if len(parts) != 3 || parts[1] != "photos" || !strings.HasSuffix(parts[0], suffix) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			p.log.Warn("skipping unreadable polarsteps photo",
				zap.String("entry", f.Name), zap.Error(err))
			continue
		}
		stored, err := p.assets.Save(parts[2], rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("store photo %q: %w", parts[2], err)
		}

		img := models.ContentImageModel{
			UserID:    userID,
			OwnerKind: models.OwnerLocation,
			OwnerID:   locationID,
			Filename:  stored,
		}
		if err := tx.Create(&img).Error; err != nil {
			return fmt.Errorf("create photo record %q: %w", parts[2], err)
		}
		summary.add("content_images")
	}
	return nil
}

// stripDir returns name relative to dir. A dir of "." matches entries at the
// archive root.
func stripDir(name, dir string) (string, bool) {
	if dir == "." {
		return name, true
	}
	if rest, ok := strings.CutPrefix(name, dir+"/"); ok {
		return rest, true
	}
	return "", false
}

// unixTime converts a Polarsteps unix timestamp into wall time in the given
// IANA zone, falling back to UTC for unknown zones.
func unixTime(ts *float64, tz string) *time.Time {
	if ts == nil {
		return nil
	}
	loc := time.UTC
	if tz != "" {
		if parsed, err := time.LoadLocation(tz); err == nil {
			loc = parsed
		}
	}
	t := time.Unix(int64(*ts), 0).In(loc)
	return &t
}
