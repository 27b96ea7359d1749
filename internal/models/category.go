package models

// CategoryModel classifies locations (e.g. "hiking", "food").
// Name is unique per owner, so exports reference categories by name.
type CategoryModel struct {
	Base
	UserID      string `json:"-"            gorm:"uniqueIndex:uniq_user_category;not null"`
	Name        string `json:"name"         gorm:"uniqueIndex:uniq_user_category;not null"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon"`

	Locations []LocationModel `json:"locations,omitempty" gorm:"foreignKey:CategoryID"`
}

func (CategoryModel) TableName() string { return "categories" }
