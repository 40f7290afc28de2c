package domain

// Identity is the verified caller extracted from a session token.
type Identity struct {
	UserID  int64
	Email   string
	IsAdmin bool
}

// CanModify reports whether the identity may mutate a resource owned by
// ownerID. Admin is a universal override.
func (id Identity) CanModify(ownerID int64) bool {
	return id.IsAdmin || id.UserID == ownerID
}
