package models

import "time"

// Plan is one row of the plan catalog. Rows are maintained by an
// administrator; the engine only ever reads them.
type Plan struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Code                  string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name                  string    `gorm:"type:varchar(100)" json:"name"`
	Price                 int64     `gorm:"type:bigint;default:0" json:"price"`
	DurationDays          int       `gorm:"type:int;default:0" json:"duration_days"`
	HighlightDays         int       `gorm:"type:int;default:0" json:"highlight_days"`
	MaxPhotos             int       `gorm:"type:int;default:0" json:"max_photos"`
	ContactChannelEnabled bool      `gorm:"default:false" json:"contact_channel_enabled"`
	IsActive              bool      `gorm:"default:true" json:"is_active"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
