package items

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"curio-server/internal/domain/access"
	"curio-server/internal/domain/gallery"
	"curio-server/internal/imaging"
	"curio-server/internal/storage"
)

// Upload handles POST /items/upload. Step order matters: the collection
// and permission gates run before any disk write, and every failure
// after the write discards the file so a rejected request leaves
// nothing behind.
func (h *Handler) Upload(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	rawCollectionID := c.PostForm("collection_id")
	if rawCollectionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection_id is required"})
		return
	}
	parsedID, err := strconv.ParseUint(rawCollectionID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collection_id"})
		return
	}

	col, ok := h.loadTargetCollection(c, uint(parsedID))
	if !ok {
		return
	}
	if !access.CanContributeTo(id, col) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot upload to this collection"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be an image"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is empty"})
		return
	}

	dir, err := h.store.EnsureDir(col.Name)
	if err != nil {
		h.log.Error().Err(err).Msg("storage dir create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	filename := storage.UniqueFilename(fileHeader.Filename)
	path, err := h.store.Save(dir, filename, data)
	if err != nil {
		h.log.Error().Err(err).Msg("file write failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	width, height := probeDimensions(h, data)

	// The file is on disk now. Any rejection from here on discards it.
	commissionDate, ownedSince, ok := h.parseDateForms(c, path)
	if !ok {
		return
	}

	item := gallery.Item{
		Title:          title,
		Filename:       fileHeader.Filename,
		FilePath:       path,
		FileSize:       int64(len(data)),
		MimeType:       fileHeader.Header.Get("Content-Type"),
		Width:          width,
		Height:         height,
		OwnerID:        id.UserID,
		CollectionID:   col.ID,
		CommissionDate: commissionDate,
		OwnedSince:     ownedSince,
	}
	if v := strings.TrimSpace(c.PostForm("veneration")); v != "" {
		item.Veneration = &v
	}
	if v := strings.TrimSpace(c.PostForm("description")); v != "" {
		item.Description = &v
	}
	if v := strings.TrimSpace(c.PostForm("alt_text")); v != "" {
		item.AltText = &v
	}
	if raw := c.PostForm("monitory_value"); raw != "" {
		mv, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.store.Discard(path)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid monitory_value"})
			return
		}
		item.MonitoryValue = &mv
	}

	if err := h.db.Create(&item).Error; err != nil {
		h.store.Discard(path)
		h.log.Error().Err(err).Msg("item insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image record"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// Replace handles PUT /items/:id: a full-resource update that may swap
// the stored file. The new file must be durable in the database before
// the old one is unlinked, so a failure mid-way never strands the
// record pointing at a missing file.
func (h *Handler) Replace(c *gin.Context) {
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

	targetCol := gallery.Collection{}
	haveTarget := false
	if raw, present := c.GetPostForm("collection_id"); present && raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collection_id"})
			return
		}
		if uint(parsed) != item.CollectionID {
			targetCol, ok = h.loadTargetCollection(c, uint(parsed))
			if !ok {
				return
			}
			if !access.CanContributeTo(id, targetCol) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Cannot move image to this collection"})
				return
			}
			haveTarget = true
		}
	}

	updates := map[string]any{}
	if haveTarget {
		updates["collection_id"] = targetCol.ID
	}
	if v, present := c.GetPostForm("title"); present {
		if strings.TrimSpace(v) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title cannot be empty"})
			return
		}
		updates["title"] = strings.TrimSpace(v)
	}
	for _, f := range []struct {
		form, column string
	}{
		{"veneration", "veneration"},
		{"description", "description"},
		{"alt_text", "alt_text"},
	} {
		if v, present := c.GetPostForm(f.form); present {
			if v == "" {
				updates[f.column] = nil
			} else {
				updates[f.column] = v
			}
		}
	}
	if raw, present := c.GetPostForm("monitory_value"); present {
		if raw == "" {
			updates["monitory_value"] = nil
		} else {
			mv, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid monitory_value"})
				return
			}
			updates["monitory_value"] = mv
		}
	}

	// Dates are validated before any disk write so a malformed one costs
	// nothing to clean up.
	for _, f := range []struct {
		form, column, label string
	}{
		{"commission_date", "commission_date", "commission_date"},
		{"owned_since", "owned_since", "owned_since"},
	} {
		raw, present := c.GetPostForm(f.form)
		if !present {
			continue
		}
		if raw == "" {
			updates[f.column] = nil
			continue
		}
		t, err := parseFlexibleDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + f.label + " format. Use ISO format."})
			return
		}
		updates[f.column] = t
	}

	oldPath := ""
	if fileHeader, err := c.FormFile("file"); err == nil {
		if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File must be an image"})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil || len(data) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
			return
		}

		// The new file lands in the directory of whichever collection
		// the item will belong to after this request.
		dirName := ""
		if haveTarget {
			dirName = targetCol.Name
		} else {
			col := h.parentCollection(item)
			if col != nil {
				dirName = col.Name
			}
		}
		dir, err := h.store.EnsureDir(dirName)
		if err != nil {
			h.log.Error().Err(err).Msg("storage dir create failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}
		newPath, err := h.store.Save(dir, storage.UniqueFilename(fileHeader.Filename), data)
		if err != nil {
			h.log.Error().Err(err).Msg("file write failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}

		width, height := probeDimensions(h, data)
		updates["filename"] = fileHeader.Filename
		updates["file_path"] = newPath
		updates["file_size"] = int64(len(data))
		updates["mime_type"] = fileHeader.Header.Get("Content-Type")
		updates["width"] = width
		updates["height"] = height
		oldPath = item.FilePath

		if err := h.db.Model(&item).Updates(updates).Error; err != nil {
			h.store.Discard(newPath)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update image"})
			return
		}
		// Update is durable; the previous file is now unreferenced.
		if oldPath != newPath {
			h.store.Remove(oldPath)
		}
	} else if len(updates) > 0 {
		if err := h.db.Model(&item).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update image"})
			return
		}
	}

	if err := h.db.First(&item, item.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// probeDimensions is the best-effort decode wrapper around the imaging
// package. Decode failure logs and stores nil dimensions rather than
// failing the upload.
func probeDimensions(h *Handler, data []byte) (width, height *int) {
	w, ht, err := imaging.Dimensions(data)
	if err != nil {
		h.log.Debug().Err(err).Msg("could not probe image dimensions")
		return nil, nil
	}
	return &w, &ht
}

// parseDateForms validates the optional upload date fields. The stored
// file at path is discarded on rejection, keeping the no-orphan
// contract.
func (h *Handler) parseDateForms(c *gin.Context, path string) (commissionDate, ownedSince *time.Time, ok bool) {
	if raw := c.PostForm("commission_date"); raw != "" {
		t, err := parseFlexibleDate(raw)
		if err != nil {
			h.store.Discard(path)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid commission_date format. Use ISO format."})
			return nil, nil, false
		}
		commissionDate = &t
	}
	if raw := c.PostForm("owned_since"); raw != "" {
		t, err := parseFlexibleDate(raw)
		if err != nil {
			h.store.Discard(path)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid owned_since format. Use ISO format."})
			return nil, nil, false
		}
		ownedSince = &t
	}
	return commissionDate, ownedSince, true
}
