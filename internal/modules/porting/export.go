package porting

import (
	"fmt"

	"github.com/waylog/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssetRef maps an archive logical path to the asset-store name backing it.
type AssetRef struct {
	Path      string
	StoreName string
}

// Exporter walks one account's owned entity graph and produces an export
// document plus the manifest of binary assets to bundle. It performs no
// writes and is safe to run concurrently with normal traffic.
type Exporter struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewExporter(db *gorm.DB, log *zap.Logger) *Exporter {
	return &Exporter{db: db, log: log}
}

// Export serializes the account's entire data graph. Export ids are assigned
// through a fresh arena: collections first, then locations and their nested
// visits, so every cross-reference in the document points backwards.
func (e *Exporter) Export(userID string) (*Document, []AssetRef, error) {
	var user models.UserModel
	if err := e.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, nil, fmt.Errorf("load account: %w", err)
	}

	arena := NewArena()
	doc := &Document{
		Version:    DocumentVersion,
		ExportDate: nowUTC(),
		AccountID:  user.Username,
	}

	manifest := newAssetManifest()
	images, attachments, err := e.loadContent(userID)
	if err != nil {
		return nil, nil, err
	}

	if err := e.exportCategories(userID, doc); err != nil {
		return nil, nil, err
	}
	collectionExportIDs, err := e.exportCollections(userID, doc, arena)
	if err != nil {
		return nil, nil, err
	}
	if err := e.exportLocations(userID, doc, arena, collectionExportIDs, images, attachments, manifest); err != nil {
		return nil, nil, err
	}
	if err := e.exportItinerary(userID, doc, arena, collectionExportIDs, images, manifest); err != nil {
		return nil, nil, err
	}
	if err := e.exportVisited(userID, doc); err != nil {
		return nil, nil, err
	}

	return doc, manifest.refs, nil
}

func (e *Exporter) exportCategories(userID string, doc *Document) error {
	var categories []models.CategoryModel
	if err := e.db.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	doc.Categories = make([]CategoryDoc, 0, len(categories))
	for _, cat := range categories {
		doc.Categories = append(doc.Categories, CategoryDoc{
			Name:        cat.Name,
			DisplayName: cat.DisplayName,
			Icon:        cat.Icon,
		})
	}
	return nil
}

// exportCollections returns a row-id to export-id map used to encode
// collection references on every later entity.
func (e *Exporter) exportCollections(userID string, doc *Document, arena *Arena) (map[string]int64, error) {
	var collections []models.CollectionModel
	if err := e.db.Preload("SharedWith").
		Where("user_id = ?", userID).Order("created_at ASC").
		Find(&collections).Error; err != nil {
		return nil, fmt.Errorf("load collections: %w", err)
	}

	exportIDs := make(map[string]int64, len(collections))
	doc.Collections = make([]CollectionDoc, 0, len(collections))
	for _, col := range collections {
		exportID := arena.Assign(KindCollection)
		exportIDs[col.ID] = exportID

		shared := make([]string, 0, len(col.SharedWith))
		for _, u := range col.SharedWith {
			shared = append(shared, u.Username)
		}

		doc.Collections = append(doc.Collections, CollectionDoc{
			ExportID:    exportID,
			Name:        col.Name,
			Description: col.Description,
			IsPublic:    col.IsPublic,
			StartDate:   col.StartDate,
			EndDate:     col.EndDate,
			IsArchived:  col.IsArchived,
			Link:        col.Link,
			SharedWith:  shared,
		})
	}
	return exportIDs, nil
}

func (e *Exporter) exportLocations(
	userID string,
	doc *Document,
	arena *Arena,
	collectionExportIDs map[string]int64,
	images map[ownerKey][]models.ContentImageModel,
	attachments map[ownerKey][]models.ContentAttachmentModel,
	manifest *assetManifest,
) error {
	var locations []models.LocationModel
	if err := e.db.
		Preload("Collections").
		Preload("Visits", func(db *gorm.DB) *gorm.DB { return db.Order("start_date ASC") }).
		Preload("Visits.Activities").
		Preload("Trails").
		Preload("Category").
		Preload("Country").
		Preload("Region").
		Preload("City").
		Where("user_id = ?", userID).Order("created_at ASC").
		Find(&locations).Error; err != nil {
		return fmt.Errorf("load locations: %w", err)
	}

	doc.Locations = make([]LocationDoc, 0, len(locations))
	for _, loc := range locations {
		exportID := arena.Assign(KindLocation)

		locDoc := LocationDoc{
			ExportID:      exportID,
			Name:          loc.Name,
			Place:         loc.Place,
			Tags:          loc.Tags,
			Description:   loc.Description,
			Rating:        loc.Rating,
			Link:          loc.Link,
			IsPublic:      loc.IsPublic,
			Longitude:     loc.Longitude,
			Latitude:      loc.Latitude,
			CollectionIDs: []int64{},
			Visits:        []VisitDoc{},
			Trails:        []TrailDoc{},
		}
		if locDoc.Tags == nil {
			locDoc.Tags = []string{}
		}
		if loc.Category != nil {
			locDoc.CategoryName = loc.Category.Name
		}
		if loc.Country != nil {
			locDoc.Country = loc.Country.ISOCode
		}
		if loc.Region != nil {
			locDoc.Region = loc.Region.RefID
		}
		if loc.City != nil {
			locDoc.City = loc.City.RefID
		}

		// Collections with no export id belong to another account's share and
		// are simply omitted from the reference list.
		for _, col := range loc.Collections {
			if id, ok := collectionExportIDs[col.ID]; ok {
				locDoc.CollectionIDs = append(locDoc.CollectionIDs, id)
			}
		}

		trailNames := make(map[string]string, len(loc.Trails))
		for _, trail := range loc.Trails {
			trailNames[trail.ID] = trail.Name
			locDoc.Trails = append(locDoc.Trails, TrailDoc{
				Name:            trail.Name,
				Link:            trail.Link,
				ExternalTrailID: trail.ExternalTrailID,
				CreatedAt:       trail.CreatedAt,
			})
		}

		for _, visit := range loc.Visits {
			visitExportID := arena.Assign(KindVisit)
			visitDoc := VisitDoc{
				ExportID:   visitExportID,
				StartDate:  visit.StartDate,
				EndDate:    visit.EndDate,
				Timezone:   visit.Timezone,
				Notes:      visit.Notes,
				Activities: []ActivityDoc{},
			}
			for _, act := range visit.Activities {
				actDoc := ActivityDoc{
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
				if act.TrailID != nil {
					actDoc.TrailName = trailNames[*act.TrailID]
				}
				if act.GPXFile != "" {
					actDoc.GPXFilename = act.GPXFile
					manifest.add(PrefixGPX, act.GPXFile)
				}
				visitDoc.Activities = append(visitDoc.Activities, actDoc)
			}
			visitDoc.Images = e.exportImages(images, models.OwnerVisit, visit.ID, manifest)
			locDoc.Visits = append(locDoc.Visits, visitDoc)
		}

		locDoc.Images = e.exportImages(images, models.OwnerLocation, loc.ID, manifest)
		locDoc.Attachments = e.exportAttachments(attachments, loc.ID, manifest)
		doc.Locations = append(doc.Locations, locDoc)
	}
	return nil
}

func (e *Exporter) exportItinerary(
	userID string,
	doc *Document,
	arena *Arena,
	collectionExportIDs map[string]int64,
	images map[ownerKey][]models.ContentImageModel,
	manifest *assetManifest,
) error {
	collectionRef := func(id *string) *int64 {
		if id == nil {
			return nil
		}
		if exportID, ok := collectionExportIDs[*id]; ok {
			return &exportID
		}
		return nil
	}

	var transportation []models.TransportationModel
	if err := e.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&transportation).Error; err != nil {
		return fmt.Errorf("load transportation: %w", err)
	}
	doc.Transportation = make([]TransportationDoc, 0, len(transportation))
	for _, t := range transportation {
		doc.Transportation = append(doc.Transportation, TransportationDoc{
			ExportID:     arena.Assign(KindTransportation),
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
			CollectionID: collectionRef(t.CollectionID),
			Images:       e.exportImages(images, models.OwnerTransportation, t.ID, manifest),
		})
	}

	var notes []models.NoteModel
	if err := e.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&notes).Error; err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	doc.Notes = make([]NoteDoc, 0, len(notes))
	for _, n := range notes {
		links := []string(n.Links)
		if links == nil {
			links = []string{}
		}
		doc.Notes = append(doc.Notes, NoteDoc{
			ExportID:     arena.Assign(KindNote),
			Name:         n.Name,
			Content:      n.Content,
			Links:        links,
			Date:         n.Date,
			CollectionID: collectionRef(n.CollectionID),
			Images:       e.exportImages(images, models.OwnerNote, n.ID, manifest),
		})
	}

	var checklists []models.ChecklistModel
	if err := e.db.Preload("Items").Where("user_id = ?", userID).Order("created_at ASC").Find(&checklists).Error; err != nil {
		return fmt.Errorf("load checklists: %w", err)
	}
	doc.Checklists = make([]ChecklistDoc, 0, len(checklists))
	for _, cl := range checklists {
		items := make([]ChecklistItemDoc, 0, len(cl.Items))
		for _, item := range cl.Items {
			items = append(items, ChecklistItemDoc{
				Name:      item.Name,
				IsChecked: item.IsChecked,
				Date:      item.Date,
			})
		}
		doc.Checklists = append(doc.Checklists, ChecklistDoc{
			Name:         cl.Name,
			Date:         cl.Date,
			CollectionID: collectionRef(cl.CollectionID),
			Items:        items,
		})
	}

	var lodging []models.LodgingModel
	if err := e.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&lodging).Error; err != nil {
		return fmt.Errorf("load lodging: %w", err)
	}
	doc.Lodging = make([]LodgingDoc, 0, len(lodging))
	for _, l := range lodging {
		doc.Lodging = append(doc.Lodging, LodgingDoc{
			ExportID:          arena.Assign(KindLodging),
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
			CollectionID:      collectionRef(l.CollectionID),
			Images:            e.exportImages(images, models.OwnerLodging, l.ID, manifest),
		})
	}
	return nil
}

func (e *Exporter) exportVisited(userID string, doc *Document) error {
	var visitedRegions []models.VisitedRegionModel
	if err := e.db.Preload("Region").Where("user_id = ?", userID).Find(&visitedRegions).Error; err != nil {
		return fmt.Errorf("load visited regions: %w", err)
	}
	doc.VisitedRegions = make([]VisitedRegionDoc, 0, len(visitedRegions))
	for _, vr := range visitedRegions {
		if vr.Region == nil {
			continue
		}
		doc.VisitedRegions = append(doc.VisitedRegions, VisitedRegionDoc{RegionRef: vr.Region.RefID})
	}

	var visitedCities []models.VisitedCityModel
	if err := e.db.Preload("City").Where("user_id = ?", userID).Find(&visitedCities).Error; err != nil {
		return fmt.Errorf("load visited cities: %w", err)
	}
	doc.VisitedCities = make([]VisitedCityDoc, 0, len(visitedCities))
	for _, vc := range visitedCities {
		if vc.City == nil {
			continue
		}
		doc.VisitedCities = append(doc.VisitedCities, VisitedCityDoc{CityRef: vc.City.RefID})
	}
	return nil
}

// loadContent fetches all of the account's images and attachments grouped by
// their polymorphic (owner kind, owner id) pair.
func (e *Exporter) loadContent(userID string) (map[ownerKey][]models.ContentImageModel, map[ownerKey][]models.ContentAttachmentModel, error) {
	var images []models.ContentImageModel
	if err := e.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&images).Error; err != nil {
		return nil, nil, fmt.Errorf("load content images: %w", err)
	}
	imagesByOwner := make(map[ownerKey][]models.ContentImageModel)
	for _, img := range images {
		key := ownerKey{kind: img.OwnerKind, id: img.OwnerID}
		imagesByOwner[key] = append(imagesByOwner[key], img)
	}

	var attachments []models.ContentAttachmentModel
	if err := e.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&attachments).Error; err != nil {
		return nil, nil, fmt.Errorf("load content attachments: %w", err)
	}
	attachmentsByOwner := make(map[ownerKey][]models.ContentAttachmentModel)
	for _, att := range attachments {
		key := ownerKey{kind: att.OwnerKind, id: att.OwnerID}
		attachmentsByOwner[key] = append(attachmentsByOwner[key], att)
	}
	return imagesByOwner, attachmentsByOwner, nil
}

func (e *Exporter) exportImages(images map[ownerKey][]models.ContentImageModel, kind models.OwnerKind, ownerID string, manifest *assetManifest) []ImageDoc {
	owned := images[ownerKey{kind: kind, id: ownerID}]
	docs := make([]ImageDoc, 0, len(owned))
	for _, img := range owned {
		docs = append(docs, ImageDoc{
			RemoteAssetID: img.RemoteAssetID,
			IsPrimary:     img.IsPrimary,
			Filename:      img.Filename,
		})
		if img.Filename != "" {
			manifest.add(PrefixImages, img.Filename)
		}
	}
	return docs
}

func (e *Exporter) exportAttachments(attachments map[ownerKey][]models.ContentAttachmentModel, locationID string, manifest *assetManifest) []AttachmentDoc {
	owned := attachments[ownerKey{kind: models.OwnerLocation, id: locationID}]
	docs := make([]AttachmentDoc, 0, len(owned))
	for _, att := range owned {
		docs = append(docs, AttachmentDoc{Name: att.Name, Filename: att.Filename})
		if att.Filename != "" {
			manifest.add(PrefixAttachments, att.Filename)
		}
	}
	return docs
}

type ownerKey struct {
	kind models.OwnerKind
	id   string
}

// assetManifest collects archive entries, deduplicating by logical path so an
// asset referenced by multiple entities is bundled once.
type assetManifest struct {
	seen map[string]struct{}
	refs []AssetRef
}

func newAssetManifest() *assetManifest {
	return &assetManifest{seen: make(map[string]struct{})}
}

func (m *assetManifest) add(prefix, storeName string) {
	path := prefix + storeName
	if _, dup := m.seen[path]; dup {
		return
	}
	m.seen[path] = struct{}{}
	m.refs = append(m.refs, AssetRef{Path: path, StoreName: storeName})
}
