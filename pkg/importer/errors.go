package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound reports an unknown or already consumed session id.
	ErrSessionNotFound = errors.New("import session not found")

	// ErrSessionExpired reports a session past its review window. The
	// document has to be uploaded again.
	ErrSessionExpired = errors.New("import session has expired")

	// ErrNoApprovals is returned by Commit when the ledger holds no
	// approved records; no request is sent in that case.
	ErrNoApprovals = errors.New("no records approved for update")

	// ErrLedgerConsumed reports a commit attempt on a ledger whose
	// approvals were already applied.
	ErrLedgerConsumed = errors.New("review ledger already committed")
)

// ValidationError reports a file rejected before upload.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// APIError carries a non-2xx response from the import service that does not
// map to one of the sentinel errors.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("import api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("import api: unexpected status %d", e.Status)
}
