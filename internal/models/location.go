package models

// LocationModel is a logged travel location.
type LocationModel struct {
	Base
	UserID      string      `json:"-"           gorm:"index;not null"`
	Name        string      `json:"name"        gorm:"not null"`
	Place       string      `json:"location"    gorm:"column:place"` // free-text place string
	Tags        StringArray `json:"tags"        gorm:"type:text;serializer:json"`
	Description string      `json:"description" gorm:"type:text"`
	Rating      *float64    `json:"rating"`
	Link        string      `json:"link"`
	IsPublic    bool        `json:"is_public"   gorm:"default:false"`
	Longitude   *float64    `json:"longitude"`
	Latitude    *float64    `json:"latitude"`

	CountryID  *string        `json:"-" gorm:"index"`
	RegionID   *string        `json:"-" gorm:"index"`
	CityID     *string        `json:"-" gorm:"index"`
	Country    *CountryModel  `json:"country,omitempty"  gorm:"foreignKey:CountryID"`
	Region     *RegionModel   `json:"region,omitempty"   gorm:"foreignKey:RegionID"`
	City       *CityModel     `json:"city,omitempty"     gorm:"foreignKey:CityID"`
	CategoryID *string        `json:"-" gorm:"index"`
	Category   *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`

	Collections []CollectionModel `json:"collections,omitempty" gorm:"many2many:location_collections"`
	Visits      []VisitModel      `json:"visits,omitempty"      gorm:"foreignKey:LocationID"`
	Trails      []TrailModel      `json:"trails,omitempty"      gorm:"foreignKey:LocationID"`
}

func (LocationModel) TableName() string { return "locations" }
