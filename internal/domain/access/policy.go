package access

import (
	"curio-server/internal/domain/gallery"
)

/*
	Access policy
	-------------
	- Pure predicates over (identity, resource); no database, no side
	  effects. Callers resolve resources first: a nonexistent id must be
	  reported as not-found BEFORE any of these run, so that error codes
	  never leak existence.
	- Collection writes are role-centric (admins curate the taxonomy),
	  item writes are ownership-centric with a collection gate.
*/

// CanViewCollection: admins, the creator, and everyone for public
// collections.
func CanViewCollection(id Identity, col gallery.Collection) bool {
	return id.IsSuperuser || col.IsPublic || col.CreatedBy == id.UserID
}

// CanManageCollections gates collection create/update/delete.
func CanManageCollections(id Identity) bool {
	return id.IsSuperuser
}

// CanContributeTo gates placing items into a collection, both on upload
// and when moving an item between collections.
func CanContributeTo(id Identity, col gallery.Collection) bool {
	return id.IsSuperuser || col.IsPublic || col.CreatedBy == id.UserID
}

// CanViewItem: admins, the owner, and anyone when the item sits in a
// public collection. col may be nil when the parent lookup failed; the
// public-collection leg then simply does not apply.
func CanViewItem(id Identity, item gallery.Item, col *gallery.Collection) bool {
	if id.IsSuperuser || item.OwnerID == id.UserID {
		return true
	}
	return col != nil && col.IsPublic
}

// CanModifyItem gates item update and delete. Collection visibility is
// irrelevant here: public collections never grant write access to other
// owners' items.
func CanModifyItem(id Identity, item gallery.Item) bool {
	return id.IsSuperuser || item.OwnerID == id.UserID
}
