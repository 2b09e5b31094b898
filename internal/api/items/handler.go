package items

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"curio-server/internal/app/http/middleware"
	"curio-server/internal/domain/access"
	"curio-server/internal/domain/gallery"
	"curio-server/internal/storage"
)

type Handler struct {
	db    *gorm.DB
	store *storage.Store
	log   zerolog.Logger
}

func NewHandler(db *gorm.DB, store *storage.Store, log zerolog.Logger) *Handler {
	return &Handler{db: db, store: store, log: log}
}

func parseWindow(c *gin.Context) (skip, limit int) {
	skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 100 {
		limit = 100
	}
	return skip, limit
}

func mustIdentity(c *gin.Context) (access.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return id, ok
}

// List handles GET /items?skip&limit&collection_id.
func (h *Handler) List(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}
	skip, limit := parseWindow(c)

	var collectionID *uint
	if raw := c.Query("collection_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collection_id"})
			return
		}
		cid := uint(parsed)
		collectionID = &cid
	}

	var count int64
	if err := visibleItemsQuery(h.db, id, collectionID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count items"})
		return
	}

	var list []gallery.Item
	if err := visibleItemsQuery(h.db, id, collectionID).
		Order("upload_date DESC").
		Order("id DESC").
		Offset(skip).Limit(limit).
		Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load items"})
		return
	}

	c.JSON(http.StatusOK, ItemsPublic{Data: list, Count: count})
}

// Get handles GET /items/:id. Existence resolves to 404 before any
// permission predicate runs.
func (h *Handler) Get(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}
	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	col := h.parentCollection(item)
	if !access.CanViewItem(id, item, col) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// PatchMetadata handles PATCH /items/:id: a metadata-only sparse patch,
// no file involvement.
func (h *Handler) PatchMetadata(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}
	item, ok := h.loadItem(c)
	if !ok {
		return
	}
	if !access.CanModifyItem(id, item) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	var req MetadataPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}

	if req.CollectionID.Set() {
		if req.CollectionID.Null() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "collection_id cannot be null"})
			return
		}
		target, ok := h.loadTargetCollection(c, req.CollectionID.Value())
		if !ok {
			return
		}
		if !access.CanContributeTo(id, target) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot move image to this collection"})
			return
		}
		updates["collection_id"] = target.ID
	}

	if req.Title.Set() {
		if req.Title.Null() || req.Title.Value() == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title cannot be empty"})
			return
		}
		updates["title"] = req.Title.Value()
	}
	req.Veneration.Apply(updates, "veneration")
	req.Description.Apply(updates, "description")
	req.AltText.Apply(updates, "alt_text")
	req.MonitoryValue.Apply(updates, "monitory_value")

	if req.CommissionDate.Set() {
		if req.CommissionDate.Null() {
			updates["commission_date"] = nil
		} else {
			t, err := parseFlexibleDate(req.CommissionDate.Value())
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid commission_date format. Use ISO format."})
				return
			}
			updates["commission_date"] = t
		}
	}
	if req.OwnedSince.Set() {
		if req.OwnedSince.Null() {
			updates["owned_since"] = nil
		} else {
			t, err := parseFlexibleDate(req.OwnedSince.Value())
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid owned_since format. Use ISO format."})
				return
			}
			updates["owned_since"] = t
		}
	}

	if len(updates) > 0 {
		if err := h.db.Model(&item).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
			return
		}
	}

	if err := h.db.First(&item, item.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /items/:id. The row goes first; once it is
// gone, the file unlink is best-effort — a leftover file is a leak for
// the reconcile sweep, not an error for the caller.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}
	item, ok := h.loadItem(c)
	if !ok {
		return
	}
	if !access.CanModifyItem(id, item) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	if err := h.db.Delete(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}

	h.store.Remove(item.FilePath)

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}

// ServeFile handles GET /items/:id/image, gated exactly like a metadata
// read.
func (h *Handler) ServeFile(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}
	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	col := h.parentCollection(item)
	if !access.CanViewItem(id, item, col) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	if _, err := os.Stat(item.FilePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image file not found on server"})
		return
	}

	c.Header("Content-Type", item.MimeType)
	c.FileAttachment(item.FilePath, item.Filename)
}

func (h *Handler) loadItem(c *gin.Context) (gallery.Item, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return gallery.Item{}, false
	}
	var item gallery.Item
	if err := h.db.First(&item, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return gallery.Item{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load item"})
		return gallery.Item{}, false
	}
	return item, true
}

// parentCollection resolves the item's collection for the public-read
// leg of the view predicate; nil when missing.
func (h *Handler) parentCollection(item gallery.Item) *gallery.Collection {
	var col gallery.Collection
	if err := h.db.First(&col, item.CollectionID).Error; err != nil {
		return nil
	}
	return &col
}

// loadTargetCollection resolves a move/upload target; 404 on absence per
// the error-ordering contract.
func (h *Handler) loadTargetCollection(c *gin.Context, id uint) (gallery.Collection, bool) {
	var col gallery.Collection
	if err := h.db.First(&col, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Target collection not found"})
			return gallery.Collection{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load collection"})
		return gallery.Collection{}, false
	}
	return col, true
}
