package access

// Identity is the authenticated actor for one request, as established by
// the auth middleware. Handlers never read token claims directly.
type Identity struct {
	UserID      uint
	IsSuperuser bool
}
