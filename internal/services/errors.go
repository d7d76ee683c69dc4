package services

import "errors"

// Domain errors surfaced by the services. Handlers translate these to HTTP
// status codes; anything not in this list is treated as an internal failure
// and never shown to clients verbatim.
var (
	ErrInvalidIdentity  = errors.New("invalid user identity")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrAlreadyLiked     = errors.New("post already liked")
	ErrNotLiked         = errors.New("post not liked")
	ErrUnauthenticated  = errors.New("not authenticated")

	// ErrStoreUnavailable wraps store-layer failures encountered inside a
	// unit of work. The operation was rolled back and may be retried.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsDomainErr reports whether err is one of the sentinel errors above, as
// opposed to an unexpected store or driver failure.
func IsDomainErr(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidIdentity, ErrSelfFollow, ErrUserNotFound,
		ErrAlreadyFollowing, ErrNotFollowing, ErrAlreadyLiked,
		ErrNotLiked, ErrUnauthenticated,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
