package collections

import (
	"errors"
	"net/http"
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

// List handles GET /collections.
func (h *Handler) List(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}
	skip, limit := parseWindow(c)

	var count int64
	if err := visibleCollectionsQuery(h.db, id).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count collections"})
		return
	}

	var cols []gallery.Collection
	if err := visibleCollectionsQuery(h.db, id).
		Order("created_date DESC").
		Offset(skip).Limit(limit).
		Find(&cols).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load collections"})
		return
	}

	c.JSON(http.StatusOK, CollectionsPublic{Data: cols, Count: count})
}

// Get handles GET /collections/:id. Not-found is decided before the
// permission check so error codes never leak existence.
func (h *Handler) Get(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}

	col, ok := h.loadCollection(c)
	if !ok {
		return
	}
	if !access.CanViewCollection(id, col) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	c.JSON(http.StatusOK, col)
}

// Create handles POST /collections (admin only — the taxonomy stays
// curated).
func (h *Handler) Create(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}
	if !access.CanManageCollections(id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators can create collections"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	col := gallery.Collection{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		CreatedBy:   id.UserID,
	}
	if err := h.db.Create(&col).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create collection"})
		return
	}

	c.JSON(http.StatusOK, col)
}

// Update handles PUT /collections/:id (admin only, sparse).
func (h *Handler) Update(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}
	col, ok := h.loadCollection(c)
	if !ok {
		return
	}
	if !access.CanManageCollections(id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators can update collections"})
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}
	if req.Name.Set() {
		if req.Name.Null() || req.Name.Value() == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name cannot be empty"})
			return
		}
		updates["name"] = req.Name.Value()
	}
	req.Description.Apply(updates, "description")
	if req.IsPublic.Set() && !req.IsPublic.Null() {
		updates["is_public"] = req.IsPublic.Value()
	}

	if len(updates) > 0 {
		if err := h.db.Model(&col).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update collection"})
			return
		}
	}

	if err := h.db.First(&col, col.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload collection"})
		return
	}
	c.JSON(http.StatusOK, col)
}

// Delete handles DELETE /collections/:id (admin only). The FK cascade
// removes the items; their files are unlinked best-effort afterwards.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}
	col, ok := h.loadCollection(c)
	if !ok {
		return
	}
	if !access.CanManageCollections(id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators can delete collections"})
		return
	}

	// Snapshot file paths before the cascade erases the rows.
	var paths []string
	if err := h.db.Model(&gallery.Item{}).
		Where("collection_id = ?", col.ID).
		Pluck("file_path", &paths).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load collection items"})
		return
	}

	if err := h.db.Delete(&col).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete collection"})
		return
	}

	for _, p := range paths {
		h.store.Remove(p)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Collection deleted successfully"})
}

func (h *Handler) loadCollection(c *gin.Context) (gallery.Collection, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
		return gallery.Collection{}, false
	}
	var col gallery.Collection
	if err := h.db.First(&col, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
			return gallery.Collection{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load collection"})
		return gallery.Collection{}, false
	}
	return col, true
}
