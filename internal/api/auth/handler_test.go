package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"curio-server/config"
	"curio-server/internal/domain/users"
	"curio-server/internal/testutils"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", TTL: time.Hour},
	}
}

func newTestHandler(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	db := testutils.NewTestDB(t)
	return NewHandler(db, testConfig(), zerolog.Nop()), db
}

func createUser(t *testing.T, db *gorm.DB, email, password string, active bool) users.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	pw := string(hashed)
	u := users.User{
		Email:          email,
		HashedPassword: &pw,
		IsActive:       active,
		AuthProvider:   users.ProviderLocal,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func postForm(t *testing.T, h *Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	r := testutils.NewRouter()
	r.POST("/login/access-token", h.Login)
	r.POST("/password-recovery/:email", h.RequestPasswordReset)
	r.POST("/reset-password", h.ResetPassword)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(t *testing.T, h *Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := testutils.NewRouter()
	r.POST("/reset-password", h.ResetPassword)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	h, db := newTestHandler(t)
	createUser(t, db, "alice@example.com", "passw0rd1", true)

	w := postForm(t, h, "/login/access-token", url.Values{
		"username": {"alice@example.com"},
		"password": {"passw0rd1"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "access_token")
	assert.Contains(t, w.Body.String(), `"token_type":"bearer"`)

	// Wrong password and unknown email read identically.
	w = postForm(t, h, "/login/access-token", url.Values{
		"username": {"alice@example.com"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect email or password")

	w = postForm(t, h, "/login/access-token", url.Values{
		"username": {"nobody@example.com"},
		"password": {"passw0rd1"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect email or password")
}

func TestLoginInactiveUser(t *testing.T) {
	h, db := newTestHandler(t)
	createUser(t, db, "frozen@example.com", "passw0rd1", false)

	w := postForm(t, h, "/login/access-token", url.Values{
		"username": {"frozen@example.com"},
		"password": {"passw0rd1"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Inactive user")
}

// The recovery endpoint must answer the same whether or not the address
// exists.
func TestPasswordRecoveryDoesNotRevealAccounts(t *testing.T) {
	h, db := newTestHandler(t)
	u := createUser(t, db, "known@example.com", "passw0rd1", true)

	w := postForm(t, h, "/password-recovery/known@example.com", url.Values{})
	require.Equal(t, http.StatusOK, w.Code)
	known := w.Body.String()

	w = postForm(t, h, "/password-recovery/unknown@example.com", url.Values{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, known, w.Body.String())

	var count int64
	db.Model(&users.PasswordResetToken{}).Where("user_id = ?", u.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestResetPasswordFlow(t *testing.T) {
	h, db := newTestHandler(t)
	u := createUser(t, db, "reset@example.com", "oldpass12", true)

	w := postForm(t, h, "/password-recovery/reset@example.com", url.Values{})
	require.Equal(t, http.StatusOK, w.Code)

	var reset users.PasswordResetToken
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&reset).Error)

	// Weak replacement rejected.
	w = postJSON(t, h, "/reset-password",
		`{"token":"`+reset.Token+`","new_password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, h, "/reset-password",
		`{"token":"`+reset.Token+`","new_password":"newpass12"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got users.User
	require.NoError(t, db.First(&got, u.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*got.HashedPassword), []byte("newpass12")))

	// The token is single use.
	w = postJSON(t, h, "/reset-password",
		`{"token":"`+reset.Token+`","new_password":"another12"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	h, db := newTestHandler(t)
	u := createUser(t, db, "late@example.com", "oldpass12", true)

	reset := users.PasswordResetToken{
		UserID:    u.ID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(&reset).Error)

	w := postJSON(t, h, "/reset-password",
		`{"token":"expired-token","new_password":"newpass12"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")
}

func TestIsPasswordStrong(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"short1", false},
		{"allletters", false},
		{"12345678", false},
		{"letters123", true},
		{"PassW0rd", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsPasswordStrong(tc.password), "password %q", tc.password)
	}
}
