// Package actor describes the identity on whose behalf a storage or
// service operation runs. The actor is always passed explicitly; nothing
// in the module reads identity from ambient state.
package actor

// Actor identifies the caller of a filtered operation.
//
// The zero value is an unauthenticated actor: every visibility predicate
// evaluates to false for it, so filtered reads return nothing and filtered
// writes affect nothing.
type Actor struct {
	// UserID is the stable identifier of the authenticated user. Empty for
	// anonymous callers.
	UserID string
	// IsAdmin grants ownership bypass. It does not bypass soft-delete
	// tombstones.
	IsAdmin bool
	// IsAuthenticated reports whether the caller presented a valid
	// identity. An actor with a UserID but IsAuthenticated=false is
	// treated as anonymous.
	IsAuthenticated bool
}

// Anonymous is the identity-free actor. All visibility predicates are
// false for it.
var Anonymous = Actor{}

// User returns an authenticated non-admin actor for the given user id.
func User(userID string) Actor {
	return Actor{UserID: userID, IsAuthenticated: true}
}

// Admin returns an authenticated admin actor for the given user id.
func Admin(userID string) Actor {
	return Actor{UserID: userID, IsAdmin: true, IsAuthenticated: true}
}

// CanSeeAnything reports whether any visibility predicate can match for
// this actor. Unauthenticated actors short-circuit to no rows.
func (a Actor) CanSeeAnything() bool {
	return a.IsAuthenticated && (a.IsAdmin || a.UserID != "")
}
