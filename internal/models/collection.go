package models

import "time"

// CollectionModel groups locations, transportation, notes, checklists and
// lodging for one trip. Locations attach many-to-many; the other kinds hold a
// single nullable CollectionID foreign key.
type CollectionModel struct {
	Base
	UserID      string     `json:"-"           gorm:"index;not null"`
	Name        string     `json:"name"        gorm:"not null"`
	Description string     `json:"description" gorm:"type:text"`
	IsPublic    bool       `json:"is_public"   gorm:"default:false"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsArchived  bool       `json:"is_archived" gorm:"default:false"`
	Link        string     `json:"link"`

	// SharedWith is exported by username, the stable external user identifier.
	SharedWith []UserModel     `json:"shared_with,omitempty" gorm:"many2many:collection_shared_with"`
	Locations  []LocationModel `json:"locations,omitempty"   gorm:"many2many:location_collections"`
}

func (CollectionModel) TableName() string { return "collections" }
