package models

import (
	"fmt"

	"gorm.io/gorm"
)

// OwnerKind tags the entity kind a binary asset is attached to. Polymorphic
// ownership is an explicit (kind, id) pair enumerated over the ownerable
// kinds, not reflection.
type OwnerKind string

const (
	OwnerLocation       OwnerKind = "location"
	OwnerTransportation OwnerKind = "transportation"
	OwnerNote           OwnerKind = "note"
	OwnerLodging        OwnerKind = "lodging"
	OwnerVisit          OwnerKind = "visit"
)

// OwnerKinds lists every kind an image or attachment may attach to.
var OwnerKinds = []OwnerKind{OwnerLocation, OwnerTransportation, OwnerNote, OwnerLodging, OwnerVisit}

// Valid reports whether k is one of the ownerable kinds.
func (k OwnerKind) Valid() bool {
	for _, known := range OwnerKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ContentImageModel is an image attached to exactly one owner. Either
// Filename names bytes in the local asset store, or RemoteAssetID references
// an asset on a linked photo server.
type ContentImageModel struct {
	Base
	UserID        string    `json:"-"          gorm:"index;not null"`
	OwnerKind     OwnerKind `json:"owner_kind" gorm:"index:idx_image_owner;not null"`
	OwnerID       string    `json:"owner_id"   gorm:"index:idx_image_owner;not null"`
	Filename      string    `json:"filename"`
	RemoteAssetID *string   `json:"remote_asset_id" gorm:"column:remote_asset_id"`
	IsPrimary     bool      `json:"is_primary" gorm:"default:false"`
}

func (ContentImageModel) TableName() string { return "content_images" }

func (m *ContentImageModel) BeforeCreate(tx *gorm.DB) error {
	if !m.OwnerKind.Valid() {
		return fmt.Errorf("content image: unknown owner kind %q", m.OwnerKind)
	}
	return m.Base.BeforeCreate(tx)
}

// ContentAttachmentModel is an arbitrary file attached to exactly one owner.
type ContentAttachmentModel struct {
	Base
	UserID    string    `json:"-"          gorm:"index;not null"`
	OwnerKind OwnerKind `json:"owner_kind" gorm:"index:idx_attachment_owner;not null"`
	OwnerID   string    `json:"owner_id"   gorm:"index:idx_attachment_owner;not null"`
	Name      string    `json:"name"`
	Filename  string    `json:"filename"   gorm:"not null"`
}

func (ContentAttachmentModel) TableName() string { return "content_attachments" }

func (m *ContentAttachmentModel) BeforeCreate(tx *gorm.DB) error {
	if !m.OwnerKind.Valid() {
		return fmt.Errorf("content attachment: unknown owner kind %q", m.OwnerKind)
	}
	return m.Base.BeforeCreate(tx)
}
