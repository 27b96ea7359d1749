package models

import "time"

// VisitModel is one stay at a location. A visit never outlives its location.
type VisitModel struct {
	Base
	LocationID string     `json:"-"          gorm:"index;not null"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	Timezone   string     `json:"timezone"`
	Notes      string     `json:"notes"      gorm:"type:text"`

	Activities []ActivityModel `json:"activities,omitempty" gorm:"foreignKey:VisitID"`
}

func (VisitModel) TableName() string { return "visits" }

// TrailModel is a named trail under a location. Trails carry no cross-document
// stable id; exports reference them by (location, name).
type TrailModel struct {
	Base
	UserID          string  `json:"-"    gorm:"index;not null"`
	LocationID      string  `json:"-"    gorm:"index;not null"`
	Name            string  `json:"name" gorm:"not null"`
	Link            string  `json:"link"`
	ExternalTrailID *string `json:"external_trail_id" gorm:"column:external_trail_id"`
}

func (TrailModel) TableName() string { return "trails" }

// ActivityModel is a tracked sport activity during a visit. Durations are
// stored in seconds, distances in meters, speeds in meters per second.
type ActivityModel struct {
	Base
	VisitID string  `json:"-" gorm:"index;not null"`
	TrailID *string `json:"-" gorm:"index"`

	Name              string     `json:"name"`
	SportType         string     `json:"sport_type"`
	Distance          float64    `json:"distance"`
	MovingTime        float64    `json:"moving_time_s"   gorm:"column:moving_time"`
	ElapsedTime       float64    `json:"elapsed_time_s"  gorm:"column:elapsed_time"`
	RestTime          float64    `json:"rest_time_s"     gorm:"column:rest_time"`
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
	ExternalServiceID *string    `json:"external_service_id" gorm:"column:external_service_id"`
	GPXFile           string     `json:"gpx_file"            gorm:"column:gpx_file"` // filename in the asset store

	Trail *TrailModel `json:"trail,omitempty" gorm:"foreignKey:TrailID"`
}

func (ActivityModel) TableName() string { return "activities" }
