package auth

import (
	"strings"

	"github.com/vidhub/backend/internal/apierror"
)

// RequireOwner fails with 403 unless actorID owns the resource. Callers load the
// resource first so a missing record surfaces as 404 before ownership is checked.
func RequireOwner(actorID, ownerID, resource string) error {
	if actorID == "" || !strings.EqualFold(strings.TrimSpace(actorID), strings.TrimSpace(ownerID)) {
		return apierror.Forbidden("You are not allowed to modify this " + resource)
	}
	return nil
}
