package collections

import (
	"gorm.io/gorm"

	"curio-server/internal/domain/access"
	"curio-server/internal/domain/gallery"
)

// visibleCollectionsQuery scopes a listing by role: admins see
// everything, everyone else sees public collections plus their own. The
// same query feeds both the page and the count so the count is
// independent of the window.
func visibleCollectionsQuery(db *gorm.DB, id access.Identity) *gorm.DB {
	q := db.Model(&gallery.Collection{})
	if id.IsSuperuser {
		return q
	}
	return q.Where("is_public = ? OR created_by = ?", true, id.UserID)
}
