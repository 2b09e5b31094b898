package gallery

import (
	"time"
)

// Item is one uploaded image plus curated metadata. The stored file on
// disk is owned by this record: FilePath is the only reference to it.
// Width and Height are either both set or both null (probe failure).
type Item struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"not null;size:255" json:"title"`

	Veneration     *string    `gorm:"size:255" json:"veneration,omitempty"`
	Description    *string    `gorm:"size:1000" json:"description,omitempty"`
	CommissionDate *time.Time `json:"commission_date,omitempty"`
	OwnedSince     *time.Time `json:"owned_since,omitempty"`
	MonitoryValue  *float64   `json:"monitory_value,omitempty"`
	AltText        *string    `gorm:"size:500" json:"alt_text,omitempty"`

	Filename string `gorm:"not null;size:255" json:"filename"`
	FilePath string `gorm:"not null;size:500" json:"file_path"`
	FileSize int64  `gorm:"not null" json:"file_size"`
	MimeType string `gorm:"not null;size:100" json:"mime_type"`
	Width    *int   `json:"width,omitempty"`
	Height   *int   `json:"height,omitempty"`

	OwnerID      uint      `gorm:"not null;index" json:"owner_id"`
	CollectionID uint      `gorm:"not null;index" json:"collection_id"`
	UploadDate   time.Time `gorm:"not null;index;autoCreateTime" json:"upload_date"`
}
