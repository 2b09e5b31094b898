// Package testutils holds the shared scaffolding for handler tests: an
// isolated in-memory database per test, fake auth injection, and
// multipart request builders.
package testutils

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"curio-server/database"
	"curio-server/internal/domain/access"
	"curio-server/internal/domain/users"
)

var dbSeq atomic.Int64

// NewTestDB opens a unique in-memory sqlite database with foreign key
// cascades enabled and the full schema migrated. Each call gets its own
// database, so tests never share state.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// NewRouter returns a quiet gin engine for handler tests.
func NewRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// AsIdentity stands in for the auth middleware, injecting a
// pre-resolved identity.
func AsIdentity(id access.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("identity", id)
		c.Next()
	}
}

// AsUser injects both the identity and the loaded user row, for
// handlers that read the full current user.
func AsUser(u users.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("identity", access.Identity{UserID: u.ID, IsSuperuser: u.IsSuperuser})
		c.Set("current_user", u)
		c.Next()
	}
}

// MinimalPNG returns a valid encoded 2x3 PNG.
func MinimalPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// MultipartBody builds a multipart form with the given text fields and
// one file part carrying an explicit Content-Type. Returns the body and
// the request Content-Type header value.
func MultipartBody(t *testing.T, fields map[string]string, fileField, filename, fileContentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filename))
		h.Set("Content-Type", fileContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}
