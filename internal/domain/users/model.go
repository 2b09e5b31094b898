package users

import (
	"time"

	"curio-server/internal/domain/gallery"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Email          string  `gorm:"not null;uniqueIndex:idx_users_email;size:255" json:"email"`
	FullName       *string `gorm:"size:255" json:"full_name,omitempty"`
	HashedPassword *string `json:"-"`
	IsActive       bool    `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser    bool    `gorm:"not null;default:false" json:"is_superuser"`

	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'" json:"-"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub" json:"-"`

	// Deleting a user takes their collections and items with them.
	Collections []gallery.Collection `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE;" json:"-"`
	Items       []gallery.Item       `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE;" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
