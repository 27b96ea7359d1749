package porting

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/waylog/core/internal/models"
	"github.com/waylog/core/internal/pkg/assetstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Summary maps entity kind to the number of rows created by an import.
type Summary map[string]int

func (s Summary) add(kind string) { s[kind]++ }

// merge folds another summary into this one.
func (s Summary) merge(other Summary) {
	for kind, n := range other {
		s[kind] += n
	}
}

// Restorer performs the destructive restore: inside one transaction it purges
// the account's owned data and recreates it from an export document,
// resolving cross-references through a document-scoped arena. Any error rolls
// back everything including the purge, so a failed import leaves the account
// exactly as it was.
type Restorer struct {
	db     *gorm.DB
	assets assetstore.Store
	log    *zap.Logger

	// afterLocationCreate, when set, runs after each location row is created.
	afterLocationCreate func(created int) error
}

func NewRestorer(db *gorm.DB, assets assetstore.Store, log *zap.Logger) *Restorer {
	return &Restorer{db: db, assets: assets, log: log}
}

// purgeStatements deletes an account's owned rows in reverse-dependency
// order so foreign keys never dangle mid-purge. Visits go right before
// locations; join rows go before their owning side.
var purgeStatements = []string{
	"DELETE FROM activities WHERE visit_id IN (SELECT id FROM visits WHERE location_id IN (SELECT id FROM locations WHERE user_id = ?))",
	"DELETE FROM trails WHERE user_id = ?",
	"DELETE FROM checklist_items WHERE user_id = ?",
	"DELETE FROM checklists WHERE user_id = ?",
	"DELETE FROM notes WHERE user_id = ?",
	"DELETE FROM transportation WHERE user_id = ?",
	"DELETE FROM lodging WHERE user_id = ?",
	"DELETE FROM content_images WHERE user_id = ?",
	"DELETE FROM content_attachments WHERE user_id = ?",
	"DELETE FROM visits WHERE location_id IN (SELECT id FROM locations WHERE user_id = ?)",
	"DELETE FROM location_collections WHERE location_model_id IN (SELECT id FROM locations WHERE user_id = ?)",
	"DELETE FROM locations WHERE user_id = ?",
	"DELETE FROM collection_shared_with WHERE collection_model_id IN (SELECT id FROM collections WHERE user_id = ?)",
	"DELETE FROM collections WHERE user_id = ?",
	"DELETE FROM categories WHERE user_id = ?",
	"DELETE FROM visited_cities WHERE user_id = ?",
	"DELETE FROM visited_regions WHERE user_id = ?",
}

// Restore replaces the account's owned data with the archive's content.
// The caller must already hold explicit confirmation from the user.
func (r *Restorer) Restore(userID string, ar *Archive) (Summary, error) {
	doc := ar.Document()
	summary := Summary{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range purgeStatements {
			if err := tx.Exec(stmt, userID).Error; err != nil {
				return fmt.Errorf("purge: %w", err)
			}
		}

		state := &restoreState{
			tx:      tx,
			ar:      ar,
			userID:  userID,
			arena:   NewArena(),
			trails:  make(map[trailKey]string),
			summary: summary,
		}

		if err := r.restoreCategories(state, doc); err != nil {
			return err
		}
		if err := r.restoreCollections(state, doc); err != nil {
			return err
		}
		if err := r.restoreLocations(state, doc); err != nil {
			return err
		}
		if err := r.restoreImages(state); err != nil {
			return err
		}
		if err := r.restoreItinerary(state, doc); err != nil {
			return err
		}
		return r.restoreVisited(state, doc)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// restoreState carries the per-document reconciliation context. It is
// discarded once the transaction completes.
type restoreState struct {
	tx     *gorm.DB
	ar     *Archive
	userID string
	arena  *Arena

	categoryIDs map[string]string // category name -> row id
	trails      map[trailKey]string

	pendingImages      []pendingImage
	pendingAttachments []pendingAttachment

	summary Summary
}

type trailKey struct {
	locationExportID int64
	name             string
}

type pendingImage struct {
	ownerKind models.OwnerKind
	arenaKind Kind
	exportID  int64
	doc       ImageDoc
}

type pendingAttachment struct {
	exportID int64 // location export id
	doc      AttachmentDoc
}

func (r *Restorer) restoreCategories(st *restoreState, doc *Document) error {
	st.categoryIDs = make(map[string]string, len(doc.Categories))
	for _, cat := range doc.Categories {
		row := models.CategoryModel{
			UserID:      st.userID,
			Name:        cat.Name,
			DisplayName: cat.DisplayName,
			Icon:        cat.Icon,
		}
		if err := st.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create category %q: %w", cat.Name, err)
		}
		st.categoryIDs[cat.Name] = row.ID
		st.summary.add("categories")
	}
	return nil
}

func (r *Restorer) restoreCollections(st *restoreState, doc *Document) error {
	for _, col := range doc.Collections {
		row := models.CollectionModel{
			UserID:      st.userID,
			Name:        col.Name,
			Description: col.Description,
			IsPublic:    col.IsPublic,
			StartDate:   col.StartDate,
			EndDate:     col.EndDate,
			IsArchived:  col.IsArchived,
			Link:        col.Link,
		}
		if err := st.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create collection %q: %w", col.Name, err)
		}
		st.arena.Register(KindCollection, col.ExportID, row.ID)
		st.summary.add("collections")

		// Re-attach shares by username. Accounts that no longer exist, are
		// not shareable, or are the importer itself are skipped silently.
		for _, username := range col.SharedWith {
			var user models.UserModel
			if err := st.tx.First(&user, "username = ?", username).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return fmt.Errorf("lookup shared user %q: %w", username, err)
			}
			if user.ID == st.userID || !user.IsPublic {
				continue
			}
			if err := st.tx.Model(&row).Association("SharedWith").Append(&user); err != nil {
				return fmt.Errorf("share collection %q with %q: %w", col.Name, username, err)
			}
		}
	}
	return nil
}

func (r *Restorer) restoreLocations(st *restoreState, doc *Document) error {
	created := 0
	for _, loc := range doc.Locations {
		row := models.LocationModel{
			UserID:      st.userID,
			Name:        loc.Name,
			Place:       loc.Place,
			Tags:        loc.Tags,
			Description: loc.Description,
			Rating:      loc.Rating,
			Link:        loc.Link,
			IsPublic:    loc.IsPublic,
			Longitude:   loc.Longitude,
			Latitude:    loc.Latitude,
		}
		if loc.CategoryName != "" {
			if catID, ok := st.categoryIDs[loc.CategoryName]; ok {
				row.CategoryID = &catID
			} else {
				r.log.Warn("category reference not found, leaving location uncategorized",
					zap.String("location", loc.Name), zap.String("category", loc.CategoryName))
			}
		}
		r.resolveGeography(st.tx, &row, loc)

		if err := st.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create location %q: %w", loc.Name, err)
		}
		st.arena.Register(KindLocation, loc.ExportID, row.ID)
		st.summary.add("locations")
		created++
		if r.afterLocationCreate != nil {
			if err := r.afterLocationCreate(created); err != nil {
				return err
			}
		}

		// Collection membership attaches after the row exists, via the arena.
		for _, colExportID := range loc.CollectionIDs {
			colID, ok := st.arena.Resolve(KindCollection, colExportID)
			if !ok {
				r.log.Warn("collection reference not found, skipping membership",
					zap.String("location", loc.Name), zap.Int64("collection_export_id", colExportID))
				continue
			}
			if err := st.tx.Exec(
				"INSERT INTO location_collections (location_model_id, collection_model_id) VALUES (?, ?)",
				row.ID, colID,
			).Error; err != nil {
				return fmt.Errorf("attach location %q to collection: %w", loc.Name, err)
			}
		}

		for _, trail := range loc.Trails {
			trailRow := models.TrailModel{
				UserID:          st.userID,
				LocationID:      row.ID,
				Name:            trail.Name,
				Link:            trail.Link,
				ExternalTrailID: trail.ExternalTrailID,
			}
			trailRow.CreatedAt = trail.CreatedAt
			if err := st.tx.Create(&trailRow).Error; err != nil {
				return fmt.Errorf("create trail %q: %w", trail.Name, err)
			}
			st.trails[trailKey{loc.ExportID, trail.Name}] = trailRow.ID
			st.summary.add("trails")
		}

		for _, visit := range loc.Visits {
			if err := r.restoreVisit(st, row.ID, loc.ExportID, visit); err != nil {
				return err
			}
		}

		for _, img := range loc.Images {
			st.pendingImages = append(st.pendingImages, pendingImage{
				ownerKind: models.OwnerLocation, arenaKind: KindLocation, exportID: loc.ExportID, doc: img,
			})
		}
		for _, att := range loc.Attachments {
			st.pendingAttachments = append(st.pendingAttachments, pendingAttachment{exportID: loc.ExportID, doc: att})
		}
	}
	return nil
}

func (r *Restorer) restoreVisit(st *restoreState, locationID string, locationExportID int64, visit VisitDoc) error {
	row := models.VisitModel{
		LocationID: locationID,
		StartDate:  visit.StartDate,
		EndDate:    visit.EndDate,
		Timezone:   visit.Timezone,
		Notes:      visit.Notes,
	}
	if err := st.tx.Create(&row).Error; err != nil {
		return fmt.Errorf("create visit: %w", err)
	}
	st.arena.Register(KindVisit, visit.ExportID, row.ID)
	st.summary.add("visits")

	for _, act := range visit.Activities {
		actRow := models.ActivityModel{
			VisitID:           row.ID,
			Name:              act.Name,
			SportType:         act.SportType,
			Distance:          act.Distance,
			MovingTime:        act.MovingTime,
			ElapsedTime:       act.ElapsedTime,
			RestTime:          act.RestTime,
			ElevationGain:     act.ElevationGain,
			ElevationLoss:     act.ElevationLoss,
			ElevHigh:          act.ElevHigh,
			ElevLow:           act.ElevLow,
			StartDate:         act.StartDate,
			Timezone:          act.Timezone,
			AvgSpeed:          act.AvgSpeed,
			MaxSpeed:          act.MaxSpeed,
			Cadence:           act.Cadence,
			Calories:          act.Calories,
			StartLat:          act.StartLat,
			StartLng:          act.StartLng,
			EndLat:            act.EndLat,
			EndLng:            act.EndLng,
			ExternalServiceID: act.ExternalServiceID,
		}
		// A trail resolves by (location, name) within this document; an
		// unknown name leaves the activity untrailed.
		if act.TrailName != "" {
			if trailID, ok := st.trails[trailKey{locationExportID, act.TrailName}]; ok {
				actRow.TrailID = &trailID
			} else {
				r.log.Warn("trail reference not found, leaving activity unlinked",
					zap.String("activity", act.Name), zap.String("trail", act.TrailName))
			}
		}
		if act.GPXFilename != "" {
			stored, err := r.importAsset(st.ar, PrefixGPX, act.GPXFilename)
			if err != nil {
				return err
			}
			if stored == "" {
				r.log.Warn("gpx track missing from archive, importing activity without it",
					zap.String("activity", act.Name), zap.String("filename", act.GPXFilename))
			}
			actRow.GPXFile = stored
		}
		if err := st.tx.Create(&actRow).Error; err != nil {
			return fmt.Errorf("create activity %q: %w", act.Name, err)
		}
		st.summary.add("activities")
	}

	for _, img := range visit.Images {
		st.pendingImages = append(st.pendingImages, pendingImage{
			ownerKind: models.OwnerVisit, arenaKind: KindVisit, exportID: visit.ExportID, doc: img,
		})
	}
	return nil
}

// restoreImages creates content images and attachments after every owner row
// exists, resolving each owner through the arena by (kind, export id).
func (r *Restorer) restoreImages(st *restoreState) error {
	for _, pending := range st.pendingImages {
		ownerID, ok := st.arena.Resolve(pending.arenaKind, pending.exportID)
		if !ok {
			r.log.Warn("image owner not found, skipping image",
				zap.String("owner_kind", string(pending.ownerKind)),
				zap.Int64("export_id", pending.exportID))
			continue
		}

		row := models.ContentImageModel{
			UserID:        st.userID,
			OwnerKind:     pending.ownerKind,
			OwnerID:       ownerID,
			RemoteAssetID: pending.doc.RemoteAssetID,
			IsPrimary:     pending.doc.IsPrimary,
		}
		if pending.doc.Filename != "" {
			stored, err := r.importAsset(st.ar, PrefixImages, pending.doc.Filename)
			if err != nil {
				return err
			}
			if stored == "" && pending.doc.RemoteAssetID == nil {
				r.log.Warn("image bytes missing from archive, skipping image",
					zap.String("filename", pending.doc.Filename))
				continue
			}
			row.Filename = stored
		}
		if err := st.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create content image: %w", err)
		}
		st.summary.add("content_images")
	}

	for _, pending := range st.pendingAttachments {
		ownerID, ok := st.arena.Resolve(KindLocation, pending.exportID)
		if !ok {
			r.log.Warn("attachment owner not found, skipping attachment",
				zap.Int64("export_id", pending.exportID))
			continue
		}
		stored, err := r.importAsset(st.ar, PrefixAttachments, pending.doc.Filename)
		if err != nil {
			return err
		}
		if stored == "" {
			r.log.Warn("attachment bytes missing from archive, skipping attachment",
				zap.String("filename", pending.doc.Filename))
			continue
		}
		row := models.ContentAttachmentModel{
			UserID:    st.userID,
			OwnerKind: models.OwnerLocation,
			OwnerID:   ownerID,
			Name:      pending.doc.Name,
			Filename:  stored,
		}
		if err := st.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create content attachment: %w", err)
		}
		st.summary.add("content_attachments")
	}

	st.pendingImages = nil
	st.pendingAttachments = nil
	return nil
}

func (r *Restorer) restoreItinerary(st *restoreState, doc *Document) error {
	collectionRef := func(exportID *int64, what string) *string {
		if exportID == nil {
			return nil
		}
		if colID, ok := st.arena.Resolve(KindCollection, *exportID); ok {
			return &colID
		}
		r.log.Warn("collection reference not found, importing without it",
			zap.String("entity", what), zap.Int64("collection_export_id", *exportID))
		return nil
	}

	for _, t := range doc.Transportation {
		row := models.TransportationModel{
			UserID:       st.userID,
			CollectionID: collectionRef(t.CollectionID, "transportation"),
			Type:         t.Type,
			Name:         t.Name,
			Description:  t.Description,
			Rating:       t.Rating,
			Link:         t.Link,
			Date:         t.Date,
			EndDate:      t.EndDate,
			FlightNumber: t.FlightNumber,
			FromName:     t.FromName,
			ToName:       t.ToName,
			OriginLat:    t.OriginLat,
			OriginLng:    t.OriginLng,
			DestLat:      t.DestLat,
			DestLng:      t.DestLng,
		}
		if err := st.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create transportation %q: %w", t.Name, err)
		}
		st.arena.Register(KindTransportation, t.ExportID, row.ID)
		st.summary.add("transportation")
		for _, img := range t.Images {
			st.pendingImages = append(st.pendingImages, pendingImage{
				ownerKind: models.OwnerTransportation, arenaKind: KindTransportation, exportID: t.ExportID, doc: img,
			})
		}
	}

	for _, n := range doc.Notes {
		row := models.NoteModel{
			UserID:       st.userID,
			CollectionID: collectionRef(n.CollectionID, "note"),
			Name:         n.Name,
			Content:      n.Content,
			Links:        n.Links,
			Date:         n.Date,
		}
		if err := st.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create note %q: %w", n.Name, err)
		}
		st.arena.Register(KindNote, n.ExportID, row.ID)
		st.summary.add("notes")
		for _, img := range n.Images {
			st.pendingImages = append(st.pendingImages, pendingImage{
				ownerKind: models.OwnerNote, arenaKind: KindNote, exportID: n.ExportID, doc: img,
			})
		}
	}

	for _, cl := range doc.Checklists {
		row := models.ChecklistModel{
			UserID:       st.userID,
			CollectionID: collectionRef(cl.CollectionID, "checklist"),
			Name:         cl.Name,
			Date:         cl.Date,
		}
		if err := st.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create checklist %q: %w", cl.Name, err)
		}
		st.summary.add("checklists")
		for _, item := range cl.Items {
			itemRow := models.ChecklistItemModel{
				UserID:      st.userID,
				ChecklistID: row.ID,
				Name:        item.Name,
				IsChecked:   item.IsChecked,
				Date:        item.Date,
			}
			if err := st.tx.Create(&itemRow).Error; err != nil {
				return fmt.Errorf("create checklist item %q: %w", item.Name, err)
			}
			st.summary.add("checklist_items")
		}
	}

	for _, l := range doc.Lodging {
		row := models.LodgingModel{
			UserID:            st.userID,
			CollectionID:      collectionRef(l.CollectionID, "lodging"),
			Type:              l.Type,
			Name:              l.Name,
			Description:       l.Description,
			Rating:            l.Rating,
			Link:              l.Link,
			CheckIn:           l.CheckIn,
			CheckOut:          l.CheckOut,
			ReservationNumber: l.ReservationNumber,
			Price:             l.Price,
			Latitude:          l.Latitude,
			Longitude:         l.Longitude,
			Place:             l.Place,
			Timezone:          l.Timezone,
		}
		if err := st.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create lodging %q: %w", l.Name, err)
		}
		st.arena.Register(KindLodging, l.ExportID, row.ID)
		st.summary.add("lodging")
		for _, img := range l.Images {
			st.pendingImages = append(st.pendingImages, pendingImage{
				ownerKind: models.OwnerLodging, arenaKind: KindLodging, exportID: l.ExportID, doc: img,
			})
		}
	}

	// Itinerary images can only be created once their owners exist.
	return r.restoreImages(st)
}

func (r *Restorer) restoreVisited(st *restoreState, doc *Document) error {
	for _, vr := range doc.VisitedRegions {
		var region models.RegionModel
		if err := st.tx.First(&region, "ref_id = ?", vr.RegionRef).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				r.log.Warn("region reference not found, skipping visited region",
					zap.String("region_ref", vr.RegionRef))
				continue
			}
			return fmt.Errorf("lookup region %q: %w", vr.RegionRef, err)
		}
		row := models.VisitedRegionModel{UserID: st.userID, RegionID: region.ID}
		if err := st.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create visited region: %w", err)
		}
		st.summary.add("visited_regions")
	}

	for _, vc := range doc.VisitedCities {
		var city models.CityModel
		if err := st.tx.First(&city, "ref_id = ?", vc.CityRef).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				r.log.Warn("city reference not found, skipping visited city",
					zap.String("city_ref", vc.CityRef))
				continue
			}
			return fmt.Errorf("lookup city %q: %w", vc.CityRef, err)
		}
		row := models.VisitedCityModel{UserID: st.userID, CityID: city.ID}
		if err := st.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create visited city: %w", err)
		}
		st.summary.add("visited_cities")
	}
	return nil
}

func (r *Restorer) resolveGeography(tx *gorm.DB, row *models.LocationModel, loc LocationDoc) {
	if loc.Country != "" {
		var country models.CountryModel
		if err := tx.First(&country, "iso_code = ?", loc.Country).Error; err == nil {
			row.CountryID = &country.ID
		} else {
			r.log.Warn("country reference not found", zap.String("iso_code", loc.Country))
		}
	}
	if loc.Region != "" {
		var region models.RegionModel
		if err := tx.First(&region, "ref_id = ?", loc.Region).Error; err == nil {
			row.RegionID = &region.ID
		} else {
			r.log.Warn("region reference not found", zap.String("ref_id", loc.Region))
		}
	}
	if loc.City != "" {
		var city models.CityModel
		if err := tx.First(&city, "ref_id = ?", loc.City).Error; err == nil {
			row.CityID = &city.ID
		} else {
			r.log.Warn("city reference not found", zap.String("ref_id", loc.City))
		}
	}
}

// importAsset copies one archive entry into the live asset store and returns
// the stored name. A missing entry returns "" — the caller decides whether
// the surrounding entity is still created.
func (r *Restorer) importAsset(ar *Archive, prefix, filename string) (string, error) {
	data, err := ar.Asset(prefix, filename)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			return "", nil
		}
		return "", err
	}
	stored, err := r.assets.Save(filename, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("store asset %q: %w", filename, err)
	}
	return stored, nil
}
