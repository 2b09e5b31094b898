package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"curio-server/internal/domain/users"
)

// IssueToken signs the bearer token used by both password and Google
// logins. The middleware re-loads the user, so claims carry identity
// only.
func IssueToken(user users.User, secret string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":      user.ID,
		"email":        user.Email,
		"is_superuser": user.IsSuperuser,
		"exp":          time.Now().Add(ttl).Unix(),
	})
	return t.SignedString([]byte(secret))
}
