// Package permission decides whether an actor may act on a resource.
// Rules are small pure predicates combined by logical OR, so each one is
// independently testable and new rules can be added without touching the
// existing ones.
package permission

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID      uint64
	IsStaff bool
}

// Resource carries the two ownership references consulted by the rules.
// Author is set at creation time and immutable; Owner is a secondary,
// possibly absent reference.
type Resource struct {
	AuthorID uint64
	OwnerID  *uint64
}

// IsOwner reports whether the actor is the resource's owner.
func IsOwner(a Actor, r Resource) bool {
	return r.OwnerID != nil && a.ID == *r.OwnerID
}

// IsAuthor reports whether the actor created the resource.  For reviews
// the author is the identity that matters, independently of the owner.
func IsAuthor(a Actor, r Resource) bool {
	return a.ID == r.AuthorID
}

// IsAdminOrReadOnly allows anyone to read and staff to write.
func IsAdminOrReadOnly(a Actor, write bool) bool {
	return !write || a.IsStaff
}

// CanWrite is the composition used by the ad and review endpoints:
// write access is granted to the owner, the author, or staff.  Reads are
// always allowed and never reach this check.
func CanWrite(a Actor, r Resource) bool {
	return IsOwner(a, r) || IsAuthor(a, r) || IsAdminOrReadOnly(a, true)
}
