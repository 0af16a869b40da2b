package models

import (
	"errors"
	"fmt"
)

var (
	ErrRegistrantNotFound = errors.New("registrant not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrAllocationNotFound = errors.New("allocation not found")
	ErrAlreadyAllocated   = errors.New("registrant already allocated")
	ErrGenderMismatch     = errors.New("room gender does not match registrant")
	ErrRoomFull           = errors.New("room is at capacity")
	ErrAgeOutOfRange      = errors.New("registrant age outside room bounds")
	ErrInvalidAgeGap      = errors.New("age gap outside allowed range")
	ErrNotVerified        = errors.New("registrant is not verified")

	// ErrConcurrentUpdate signals a lost race between candidate selection
	// and commit. Bulk strategies retry the next candidate; manual
	// allocation surfaces it as ErrRoomFull.
	ErrConcurrentUpdate = errors.New("concurrent update detected")
)

// RoomAllocatedError rejects an unverify request against an allocated
// registrant. It is a first-class conflict, not a generic error: the admin
// needs the room and roommate detail to decide whether to force.
type RoomAllocatedError struct {
	Conflict RoomConflict
}

func (e *RoomAllocatedError) Error() string {
	return fmt.Sprintf("registrant allocated to room %s", e.Conflict.RoomID)
}
