// Package policy decides whether an actor may perform an action against a
// target account's resources.  It holds no state: the answer is a pure
// function of the actor identity, the looked-up manager flag and the target
// owner, so handlers can call it without touching the database again.
package policy

// Action enumerates every permission-checked operation in the application.
type Action int

const (
	// Public reads available to anonymous visitors.
	ViewDirectory Action = iota
	ViewProfile

	// Self-service operations; allowed only when the target is the actor.
	ViewOwnProfile
	EditOwnProfile
	DeleteOwnProfile
	UploadOwnMedia
	DeleteOwnMediaItem

	// Manager-only operations on arbitrary accounts.
	ManagerEditAnyProfile
	ManagerDeleteAnyAccount
	ManagerToggleManagerFlag
	ManagerDeleteAnyMediaItem
)

// Actor identifies the caller of an operation.  The zero value is an
// anonymous visitor.
type Actor struct {
	ID        uint64
	IsManager bool
}

// Anonymous is the actor used for requests with no session.
var Anonymous = Actor{}

// isPublic reports whether an action needs no authentication at all.
func isPublic(a Action) bool {
	return a == ViewDirectory || a == ViewProfile
}

// isManagerOnly reports whether an action is reserved to managers.
func isManagerOnly(a Action) bool {
	switch a {
	case ManagerEditAnyProfile, ManagerDeleteAnyAccount,
		ManagerToggleManagerFlag, ManagerDeleteAnyMediaItem:
		return true
	}
	return false
}

// CanAct reports whether actor may perform action against the resources of
// targetOwner.  Managers may do everything, including acting on themselves;
// non-managers get the self-service actions only on their own id and are
// denied every manager action unconditionally.  Anonymous actors get public
// reads and nothing else.
func CanAct(actor Actor, action Action, targetOwner uint64) bool {
	if isPublic(action) {
		return true
	}
	if actor.ID == 0 {
		return false
	}
	if actor.IsManager {
		return true
	}
	if isManagerOnly(action) {
		return false
	}
	return actor.ID == targetOwner
}
