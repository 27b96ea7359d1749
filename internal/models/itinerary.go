package models

import "time"

// Itinerary-adjacent entities. Each holds a single nullable CollectionID,
// unlike locations whose collection membership is many-to-many.

type TransportationModel struct {
	Base
	UserID       string     `json:"-"            gorm:"index;not null"`
	CollectionID *string    `json:"-"            gorm:"index"`
	Type         string     `json:"type"` // car, plane, train, bus, boat, bike, walking, other
	Name         string     `json:"name"         gorm:"not null"`
	Description  string     `json:"description"  gorm:"type:text"`
	Rating       *float64   `json:"rating"`
	Link         string     `json:"link"`
	Date         *time.Time `json:"date"`
	EndDate      *time.Time `json:"end_date"`
	FlightNumber string     `json:"flight_number"`
	FromName     string     `json:"from_location" gorm:"column:from_name"`
	ToName       string     `json:"to_location"   gorm:"column:to_name"`
	OriginLat    *float64   `json:"origin_latitude"`
	OriginLng    *float64   `json:"origin_longitude"`
	DestLat      *float64   `json:"destination_latitude"`
	DestLng      *float64   `json:"destination_longitude"`
}

func (TransportationModel) TableName() string { return "transportation" }

type NoteModel struct {
	Base
	UserID       string      `json:"-"       gorm:"index;not null"`
	CollectionID *string     `json:"-"       gorm:"index"`
	Name         string      `json:"name"    gorm:"not null"`
	Content      string      `json:"content" gorm:"type:text"`
	Links        StringArray `json:"links"   gorm:"type:text;serializer:json"`
	Date         *time.Time  `json:"date"`
}

func (NoteModel) TableName() string { return "notes" }

type ChecklistModel struct {
	Base
	UserID       string     `json:"-"    gorm:"index;not null"`
	CollectionID *string    `json:"-"    gorm:"index"`
	Name         string     `json:"name" gorm:"not null"`
	Date         *time.Time `json:"date"`

	Items []ChecklistItemModel `json:"items,omitempty" gorm:"foreignKey:ChecklistID"`
}

func (ChecklistModel) TableName() string { return "checklists" }

type ChecklistItemModel struct {
	Base
	UserID      string     `json:"-"       gorm:"index;not null"`
	ChecklistID string     `json:"-"       gorm:"index;not null"`
	Name        string     `json:"name"    gorm:"not null"`
	IsChecked   bool       `json:"is_checked" gorm:"default:false"`
	Date        *time.Time `json:"date"`
}

func (ChecklistItemModel) TableName() string { return "checklist_items" }

type LodgingModel struct {
	Base
	UserID            string     `json:"-"           gorm:"index;not null"`
	CollectionID      *string    `json:"-"           gorm:"index"`
	Type              string     `json:"type"` // hotel, hostel, resort, bnb, campground, cabin, apartment, house, villa, other
	Name              string     `json:"name"        gorm:"not null"`
	Description       string     `json:"description" gorm:"type:text"`
	Rating            *float64   `json:"rating"`
	Link              string     `json:"link"`
	CheckIn           *time.Time `json:"check_in"`
	CheckOut          *time.Time `json:"check_out"`
	ReservationNumber string     `json:"reservation_number"`
	Price             *float64   `json:"price"`
	Latitude          *float64   `json:"latitude"`
	Longitude         *float64   `json:"longitude"`
	Place             string     `json:"location" gorm:"column:place"`
	Timezone          string     `json:"timezone"`
}

func (LodgingModel) TableName() string { return "lodging" }
