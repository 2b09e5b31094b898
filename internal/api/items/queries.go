package items

import (
	"gorm.io/gorm"

	"curio-server/internal/domain/access"
	"curio-server/internal/domain/gallery"
)

// visibleItemsQuery scopes a listing by role. Non-admin listings are
// owner-only on purpose: public collections open up direct reads, not
// other owners' rows in a list. The optional collection filter
// intersects with the scope. Count and page both run over this query so
// the count ignores the window.
func visibleItemsQuery(db *gorm.DB, id access.Identity, collectionID *uint) *gorm.DB {
	q := db.Model(&gallery.Item{})
	if collectionID != nil {
		q = q.Where("collection_id = ?", *collectionID)
	}
	if !id.IsSuperuser {
		q = q.Where("owner_id = ?", id.UserID)
	}
	return q
}
