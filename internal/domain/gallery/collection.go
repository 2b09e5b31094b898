package gallery

import (
	"time"
)

// Collection groups items and controls who can see them. Name is treated
// as a natural key by the seed tooling but is not unique at the schema
// level.
type Collection struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"not null;size:255" json:"name"`
	Description *string `gorm:"size:1000" json:"description,omitempty"`
	IsPublic    bool    `gorm:"not null;default:false" json:"is_public"`

	CreatedBy   uint      `gorm:"not null;index" json:"created_by"`
	CreatedDate time.Time `gorm:"not null;index;autoCreateTime" json:"created_date"`

	Items []Item `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE;" json:"items,omitempty"`
}
