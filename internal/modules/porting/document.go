package porting

import "time"

// DocumentVersion is bumped whenever the document shape changes.
const DocumentVersion = 1

// Document is the versioned structured description of an account's data.
// Entities reference each other exclusively through document-local export ids
// and names; database row ids never appear in a document.
type Document struct {
	Version        int                 `json:"version"`
	ExportDate     time.Time           `json:"export_date"`
	AccountID      string              `json:"account_identifier"` // username
	Categories     []CategoryDoc       `json:"categories"`
	Collections    []CollectionDoc     `json:"collections"`
	Locations      []LocationDoc       `json:"locations"`
	Transportation []TransportationDoc `json:"transportation"`
	Notes          []NoteDoc           `json:"notes"`
	Checklists     []ChecklistDoc      `json:"checklists"`
	Lodging        []LodgingDoc        `json:"lodging"`
	VisitedCities  []VisitedCityDoc    `json:"visited_cities"`
	VisitedRegions []VisitedRegionDoc  `json:"visited_regions"`
}

type CategoryDoc struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon"`
}

type CollectionDoc struct {
	ExportID    int64      `json:"export_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsPublic    bool       `json:"is_public"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsArchived  bool       `json:"is_archived"`
	Link        string     `json:"link"`
	// Usernames, the stable external user identifier.
	SharedWith []string `json:"shared_with_external_ids"`
}

type LocationDoc struct {
	ExportID    int64    `json:"export_id"`
	Name        string   `json:"name"`
	Place       string   `json:"location"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Rating      *float64 `json:"rating"`
	Link        string   `json:"link"`
	IsPublic    bool     `json:"is_public"`
	Longitude   *float64 `json:"longitude"`
	Latitude    *float64 `json:"latitude"`
	City        string   `json:"city,omitempty"`    // reference city ref id
	Region      string   `json:"region,omitempty"`  // reference region ref id
	Country     string   `json:"country,omitempty"` // reference country ISO code
	// Categories are unique per (owner, name), so name is the reference.
	CategoryName  string          `json:"category_name,omitempty"`
	CollectionIDs []int64         `json:"collection_export_ids"`
	Visits        []VisitDoc      `json:"visits"`
	Trails        []TrailDoc      `json:"trails"`
	Images        []ImageDoc      `json:"images"`
	Attachments   []AttachmentDoc `json:"attachments"`
}

type VisitDoc struct {
	ExportID   int64         `json:"export_id"`
	StartDate  *time.Time    `json:"start_date"`
	EndDate    *time.Time    `json:"end_date"`
	Timezone   string        `json:"timezone"`
	Notes      string        `json:"notes"`
	Activities []ActivityDoc `json:"activities"`
	Images     []ImageDoc    `json:"images,omitempty"`
}

type ActivityDoc struct {
	Name              string     `json:"name"`
	SportType         string     `json:"sport_type"`
	Distance          float64    `json:"distance"`
	MovingTime        float64    `json:"moving_time_s"`
	ElapsedTime       float64    `json:"elapsed_time_s"`
	RestTime          float64    `json:"rest_time_s"`
	ElevationGain     float64    `json:"elevation_gain"`
	ElevationLoss     float64    `json:"elevation_loss"`
	ElevHigh          float64    `json:"elev_high"`
	ElevLow           float64    `json:"elev_low"`
	StartDate         *time.Time `json:"start_date"`
	Timezone          string     `json:"timezone"`
	AvgSpeed          float64    `json:"avg_speed"`
	MaxSpeed          float64    `json:"max_speed"`
	Cadence           float64    `json:"cadence"`
	Calories          float64    `json:"calories"`
	StartLat          *float64   `json:"start_lat"`
	StartLng          *float64   `json:"start_lng"`
	EndLat            *float64   `json:"end_lat"`
	EndLng            *float64   `json:"end_lng"`
	ExternalServiceID *string    `json:"external_service_id"`
	// Trails carry no stable id; the name resolves within the same location.
	TrailName   string `json:"trail_name,omitempty"`
	GPXFilename string `json:"gpx_filename,omitempty"`
}

type TrailDoc struct {
	Name            string    `json:"name"`
	Link            string    `json:"link"`
	ExternalTrailID *string   `json:"external_trail_id"`
	CreatedAt       time.Time `json:"created_at"`
}

type ImageDoc struct {
	RemoteAssetID *string `json:"remote_asset_id"`
	IsPrimary     bool    `json:"is_primary"`
	Filename      string  `json:"filename,omitempty"`
}

type AttachmentDoc struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

type TransportationDoc struct {
	ExportID     int64      `json:"export_id"`
	Type         string     `json:"type"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Rating       *float64   `json:"rating"`
	Link         string     `json:"link"`
	Date         *time.Time `json:"date"`
	EndDate      *time.Time `json:"end_date"`
	FlightNumber string     `json:"flight_number"`
	FromName     string     `json:"from_location"`
	ToName       string     `json:"to_location"`
	OriginLat    *float64   `json:"origin_latitude"`
	OriginLng    *float64   `json:"origin_longitude"`
	DestLat      *float64   `json:"destination_latitude"`
	DestLng      *float64   `json:"destination_longitude"`
	CollectionID *int64     `json:"collection_export_id"`
	Images       []ImageDoc `json:"images,omitempty"`
}

type NoteDoc struct {
	ExportID     int64      `json:"export_id"`
	Name         string     `json:"name"`
	Content      string     `json:"content"`
	Links        []string   `json:"links"`
	Date         *time.Time `json:"date"`
	CollectionID *int64     `json:"collection_export_id"`
	Images       []ImageDoc `json:"images,omitempty"`
}

type ChecklistDoc struct {
	Name         string             `json:"name"`
	Date         *time.Time         `json:"date"`
	CollectionID *int64             `json:"collection_export_id"`
	Items        []ChecklistItemDoc `json:"items"`
}

type ChecklistItemDoc struct {
	Name      string     `json:"name"`
	IsChecked bool       `json:"is_checked"`
	Date      *time.Time `json:"date"`
}

type LodgingDoc struct {
	ExportID          int64      `json:"export_id"`
	Type              string     `json:"type"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Rating            *float64   `json:"rating"`
	Link              string     `json:"link"`
	CheckIn           *time.Time `json:"check_in"`
	CheckOut          *time.Time `json:"check_out"`
	ReservationNumber string     `json:"reservation_number"`
	Price             *float64   `json:"price"`
	Latitude          *float64   `json:"latitude"`
	Longitude         *float64   `json:"longitude"`
	Place             string     `json:"location"`
	Timezone          string     `json:"timezone"`
	CollectionID      *int64     `json:"collection_export_id"`
	Images            []ImageDoc `json:"images,omitempty"`
}

type VisitedCityDoc struct {
	CityRef string `json:"city_ref"`
}

type VisitedRegionDoc struct {
	RegionRef string `json:"region_ref"`
}
