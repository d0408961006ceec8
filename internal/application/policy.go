package application

import (
	"fmt"

	"github.com/tonearm/tonearm/pkg/apperr"
)

// Ownership checks shared by every mutating service. They run strictly after
// the resource has been loaded, so a missing resource surfaces as a 404
// before ownership is ever tested.

// requireOwner rejects mutations on resources the actor does not own.
func requireOwner(actorID, ownerID int64, action, resource string) error {
	if actorID != ownerID {
		return apperr.Forbidden(fmt.Sprintf("This user not allowed to %s this %s", action, resource))
	}
	return nil
}

// requireNotSelf rejects follow edges from a user to themselves.
func requireNotSelf(actorID, targetID int64) error {
	if actorID == targetID {
		return apperr.Validation("user_id", "You cannot follow yourself")
	}
	return nil
}
