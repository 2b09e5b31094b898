package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curio-server/internal/domain/gallery"
	"curio-server/internal/domain/users"
	"curio-server/internal/storage"
	"curio-server/internal/testutils"
)

func TestReconcileFilesRemovesOrphans(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := storage.New(t.TempDir(), zerolog.Nop())
	h := NewHandler(db, store, zerolog.Nop())

	owner := users.User{Email: "owner@example.com", IsActive: true}
	require.NoError(t, db.Create(&owner).Error)
	col := gallery.Collection{Name: "Kept", IsPublic: true, CreatedBy: owner.ID}
	require.NoError(t, db.Create(&col).Error)

	dir, err := store.EnsureDir(col.Name)
	require.NoError(t, err)
	referenced, err := store.Save(dir, storage.UniqueFilename("live.png"), testutils.MinimalPNG(t))
	require.NoError(t, err)
	orphan, err := store.Save(dir, storage.UniqueFilename("orphan.png"), testutils.MinimalPNG(t))
	require.NoError(t, err)

	item := gallery.Item{
		Title: "live", Filename: "live.png", FilePath: referenced, FileSize: 1,
		MimeType: "image/png", OwnerID: owner.ID, CollectionID: col.ID,
	}
	require.NoError(t, db.Create(&item).Error)

	r := testutils.NewRouter()
	r.POST("/admin/maintenance/reconcile-files", h.ReconcileFiles)
	req := httptest.NewRequest(http.MethodPost, "/admin/maintenance/reconcile-files", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.FileExists(t, referenced)
	assert.NoFileExists(t, orphan)
	assert.Contains(t, w.Body.String(), `"removed":1`)
	assert.Contains(t, w.Body.String(), `"scanned":2`)

	// A second sweep finds nothing to do.
	req = httptest.NewRequest(http.MethodPost, "/admin/maintenance/reconcile-files", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed":0`)
	assert.FileExists(t, referenced)
}

func TestDashboardCounts(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := storage.New(t.TempDir(), zerolog.Nop())
	h := NewHandler(db, store, zerolog.Nop())

	u := users.User{Email: "one@example.com", IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	col := gallery.Collection{Name: "Only", IsPublic: true, CreatedBy: u.ID}
	require.NoError(t, db.Create(&col).Error)

	r := testutils.NewRouter()
	r.GET("/admin/dashboard", h.Dashboard)
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"users":1`)
	assert.Contains(t, w.Body.String(), `"collections":1`)
	assert.Contains(t, w.Body.String(), `"items":0`)
}
