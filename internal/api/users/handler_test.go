package users

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"curio-server/internal/domain/gallery"
	"curio-server/internal/domain/users"
	"curio-server/internal/testutils"
)

func newTestHandler(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	db := testutils.NewTestDB(t)
	return NewHandler(db, zerolog.Nop()), db
}

func createUser(t *testing.T, db *gorm.DB, email, password string, superuser bool) users.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	pw := string(hashed)
	u := users.User{
		Email:          email,
		HashedPassword: &pw,
		IsActive:       true,
		IsSuperuser:    superuser,
		AuthProvider:   users.ProviderLocal,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func doJSON(t *testing.T, h *Handler, as *users.User, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := testutils.NewRouter()
	g := r.Group("")
	if as != nil {
		g.Use(testutils.AsUser(*as))
	}
	g.POST("/users/signup", h.Signup)
	g.GET("/users/me", h.Me)
	g.PATCH("/users/me", h.UpdateMe)
	g.PATCH("/users/me/password", h.ChangePassword)
	g.GET("/users/:id", h.Get)
	g.GET("/users", h.List)
	g.POST("/users", h.Create)
	g.PATCH("/users/:id", h.Update)
	g.DELETE("/users/:id", h.Delete)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignupValidation(t *testing.T) {
	h, db := newTestHandler(t)

	// Too weak: no digits.
	w := doJSON(t, h, nil, http.MethodPost, "/users/signup",
		`{"email":"weak@example.com","password":"password"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, nil, http.MethodPost, "/users/signup",
		`{"email":"new@example.com","password":"passw0rd1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var u users.User
	require.NoError(t, db.Where("email = ?", "new@example.com").First(&u).Error)
	assert.False(t, u.IsSuperuser)
	assert.True(t, u.IsActive)
	require.NotNil(t, u.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*u.HashedPassword), []byte("passw0rd1")))

	// Duplicate email conflicts.
	w = doJSON(t, h, nil, http.MethodPost, "/users/signup",
		`{"email":"new@example.com","password":"passw0rd1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestChangePassword(t *testing.T) {
	h, db := newTestHandler(t)
	u := createUser(t, db, "me@example.com", "oldpass12", false)

	w := doJSON(t, h, &u, http.MethodPatch, "/users/me/password",
		`{"current_password":"wrong","new_password":"newpass12"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, &u, http.MethodPatch, "/users/me/password",
		`{"current_password":"oldpass12","new_password":"oldpass12"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, &u, http.MethodPatch, "/users/me/password",
		`{"current_password":"oldpass12","new_password":"newpass12"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got users.User
	require.NoError(t, db.First(&got, u.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*got.HashedPassword), []byte("newpass12")))
}

func TestUpdateMeEmailConflict(t *testing.T) {
	h, db := newTestHandler(t)
	createUser(t, db, "taken@example.com", "passw0rd1", false)
	u := createUser(t, db, "me@example.com", "passw0rd1", false)

	w := doJSON(t, h, &u, http.MethodPatch, "/users/me",
		`{"email":"taken@example.com"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, h, &u, http.MethodPatch, "/users/me",
		`{"full_name":"Renamed"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got users.User
	require.NoError(t, db.First(&got, u.ID).Error)
	require.NotNil(t, got.FullName)
	assert.Equal(t, "Renamed", *got.FullName)
	assert.Equal(t, "me@example.com", got.Email)
}

func TestGetUserSelfOrAdmin(t *testing.T) {
	h, db := newTestHandler(t)
	admin := createUser(t, db, "admin@example.com", "passw0rd1", true)
	alice := createUser(t, db, "alice@example.com", "passw0rd1", false)
	bob := createUser(t, db, "bob@example.com", "passw0rd1", false)

	w := doJSON(t, h, &alice, http.MethodGet, fmt.Sprintf("/users/%d", alice.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, &alice, http.MethodGet, fmt.Sprintf("/users/%d", bob.ID), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, h, &admin, http.MethodGet, fmt.Sprintf("/users/%d", bob.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, &admin, http.MethodGet, "/users/99999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unparseable ids read the same as missing ones.
	w = doJSON(t, h, &admin, http.MethodGet, "/users/not-a-number", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	h, db := newTestHandler(t)
	admin := createUser(t, db, "admin@example.com", "passw0rd1", true)

	w := doJSON(t, h, &admin, http.MethodDelete, fmt.Sprintf("/users/%d", admin.ID), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// Deleting a user must take their collections and items along through
// the foreign key cascade.
func TestDeleteUserCascades(t *testing.T) {
	h, db := newTestHandler(t)
	admin := createUser(t, db, "admin@example.com", "passw0rd1", true)
	alice := createUser(t, db, "alice@example.com", "passw0rd1", false)

	col := gallery.Collection{Name: "Alices", IsPublic: false, CreatedBy: alice.ID}
	require.NoError(t, db.Create(&col).Error)
	item := gallery.Item{
		Title: "hers", Filename: "a.png", FilePath: "/nope/a.png", FileSize: 1,
		MimeType: "image/png", OwnerID: alice.ID, CollectionID: col.ID,
	}
	require.NoError(t, db.Create(&item).Error)

	w := doJSON(t, h, &admin, http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var colCount, itemCount int64
	db.Model(&gallery.Collection{}).Where("created_by = ?", alice.ID).Count(&colCount)
	db.Model(&gallery.Item{}).Where("owner_id = ?", alice.ID).Count(&itemCount)
	assert.EqualValues(t, 0, colCount)
	assert.EqualValues(t, 0, itemCount)
}

func TestAdminUpdateTogglesRole(t *testing.T) {
	h, db := newTestHandler(t)
	admin := createUser(t, db, "admin@example.com", "passw0rd1", true)
	alice := createUser(t, db, "alice@example.com", "passw0rd1", false)

	w := doJSON(t, h, &admin, http.MethodPatch, fmt.Sprintf("/users/%d", alice.ID),
		`{"is_superuser":true,"is_active":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got users.User
	require.NoError(t, db.First(&got, alice.ID).Error)
	assert.True(t, got.IsSuperuser)
	assert.False(t, got.IsActive)
}

func TestListPagination(t *testing.T) {
	h, db := newTestHandler(t)
	admin := createUser(t, db, "admin@example.com", "passw0rd1", true)
	for i := 0; i < 12; i++ {
		createUser(t, db, fmt.Sprintf("user%02d@example.com", i), "passw0rd1", false)
	}

	w := doJSON(t, h, &admin, http.MethodGet, "/users?skip=5&limit=4", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"count":13`)
}
