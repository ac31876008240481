package model

import "time"

// Ad represents a classified listing.  AuthorID records who created the ad
// and is never taken from a request body.  OwnerID is a secondary ownership
// reference consulted by permission checks; it is nullable to match rows
// created before the owner column existed.
type Ad struct {
	ID          uint64    // ads.id
	Title       string    // ads.title
	Price       uint64    // ads.price
	Description string    // ads.description
	AuthorID    uint64    // ads.author_id
	OwnerID     *uint64   // ads.owner_id (nullable)
	CreatedAt   time.Time // ads.created_at
}

// Review is a comment left under an ad.  Like ads, the author is fixed at
// creation time from the authenticated actor.
type Review struct {
	ID        uint64    // reviews.id
	Text      string    // reviews.text
	AuthorID  uint64    // reviews.author_id
	AdID      uint64    // reviews.ad_id
	OwnerID   *uint64   // reviews.owner_id (nullable)
	CreatedAt time.Time // reviews.created_at
}
