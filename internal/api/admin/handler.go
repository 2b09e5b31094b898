package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"curio-server/internal/domain/gallery"
	"curio-server/internal/domain/users"
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

// ReconcileFiles handles POST /admin/maintenance/reconcile-files. It
// sweeps the storage tree and removes files no Item row references,
// cleaning up the debris that best-effort deletes and user cascades
// leave behind.
func (h *Handler) ReconcileFiles(c *gin.Context) {
	var paths []string
	if err := h.db.Model(&gallery.Item{}).Pluck("file_path", &paths).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load file references"})
		return
	}

	live := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		live[p] = struct{}{}
	}

	scanned, removed, err := h.store.Reconcile(live)
	if err != nil {
		h.log.Error().Err(err).Msg("reconcile sweep failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconcile failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scanned":    scanned,
		"removed":    removed,
		"referenced": len(paths),
	})
}

// Dashboard handles GET /admin/dashboard with headline counts.
func (h *Handler) Dashboard(c *gin.Context) {
	var userCount, collectionCount, itemCount int64
	if err := h.db.Model(&users.User{}).Count(&userCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	if err := h.db.Model(&gallery.Collection{}).Count(&collectionCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	if err := h.db.Model(&gallery.Item{}).Count(&itemCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":       userCount,
		"collections": collectionCount,
		"items":       itemCount,
	})
}
