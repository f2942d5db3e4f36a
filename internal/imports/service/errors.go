package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound means the import session expired or never existed.
	ErrSessionNotFound = errors.New("import session not found")
	// ErrBadState means the requested transition is not allowed from the
	// session's current state.
	ErrBadState = errors.New("operation not allowed in current session state")
)

// MissingOrganizationError blocks an import before any diff is shown: the
// document's organization has no catalog match and everything downstream
// depends on it. The session is suspended, not destroyed, so the user can
// create the organization externally and resume.
type MissingOrganizationError struct {
	Name string
}

func (e *MissingOrganizationError) Error() string {
	return fmt.Sprintf("organization %q not found in catalog", e.Name)
}
