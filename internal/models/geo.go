package models

// Reference geography. These rows are seeded from a regions dataset and are
// never owned by an account; exports carry only the membership linkage below.

type CountryModel struct {
	Base
	Name    string `json:"name"     gorm:"uniqueIndex;not null"`
	ISOCode string `json:"iso_code" gorm:"column:iso_code;uniqueIndex"`
}

func (CountryModel) TableName() string { return "countries" }

type RegionModel struct {
	Base
	Name      string  `json:"name"    gorm:"not null;index"`
	RefID     string  `json:"ref_id"  gorm:"column:ref_id;uniqueIndex;not null"` // e.g. "US-WA"
	CountryID string  `json:"-"       gorm:"index;not null"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (RegionModel) TableName() string { return "regions" }

type CityModel struct {
	Base
	Name      string  `json:"name"   gorm:"not null;index"`
	RefID     string  `json:"ref_id" gorm:"column:ref_id;uniqueIndex;not null"` // e.g. "US-WA-seattle"
	RegionID  string  `json:"-"      gorm:"index;not null"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (CityModel) TableName() string { return "cities" }

// VisitedRegionModel links an account to a reference region it has visited.
type VisitedRegionModel struct {
	Base
	UserID   string       `json:"-" gorm:"index;not null"`
	RegionID string       `json:"-" gorm:"index;not null"`
	Region   *RegionModel `json:"region,omitempty" gorm:"foreignKey:RegionID"`
}

func (VisitedRegionModel) TableName() string { return "visited_regions" }

// VisitedCityModel links an account to a reference city it has visited.
type VisitedCityModel struct {
	Base
	UserID string     `json:"-" gorm:"index;not null"`
	CityID string     `json:"-" gorm:"index;not null"`
	City   *CityModel `json:"city,omitempty" gorm:"foreignKey:CityID"`
}

func (VisitedCityModel) TableName() string { return "visited_cities" }
