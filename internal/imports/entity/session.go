package entity

import "time"

// SessionState is the reconciliation lifecycle position of one upload.
type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionParsed     SessionState = "parsed"
	SessionDiffReady  SessionState = "diff_ready"
	SessionSuspended  SessionState = "suspended" // parked on a missing organization
	SessionConfirming SessionState = "confirming"
	SessionCreating   SessionState = "creating"
	SessionCommitted  SessionState = "committed"
	SessionCancelled  SessionState = "cancelled"
)

// ImportSession aggregates everything one upload produced. Exactly one
// session is live per upload; it is kept in memory until committed or
// cancelled, then retained until TTL so late creation-bridge messages can
// still find it.
type ImportSession struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	FileName string `json:"file_name"`

	State SessionState `json:"state"`

	// Organization is the catalog organization the document was matched
	// to, nil while the session is suspended on a missing organization.
	Organization *EntityRef `json:"organization,omitempty"`

	Metadata HeaderMetadata      `json:"metadata"`
	Mapping  ColumnMapping       `json:"mapping"` // effective mapping for this import
	Items    []RawLineItem       `json:"items"`
	Diff     *ReconciliationDiff `json:"diff,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy safe to read without the store lock. The row slice
// is copied because the creation bridge rewrites rows in place; refs and
// the diff are always replaced wholesale, so sharing them is fine.
func (s *ImportSession) Clone() *ImportSession {
	out := *s
	out.Items = make([]RawLineItem, len(s.Items))
	copy(out.Items, s.Items)
	return &out
}

// CanCancel reports whether the session may still be abandoned. Once the
// creation calls start, cancellation no longer rolls anything back.
func (s *ImportSession) CanCancel() bool {
	switch s.State {
	case SessionIdle, SessionParsed, SessionDiffReady, SessionSuspended, SessionConfirming:
		return true
	}
	return false
}
