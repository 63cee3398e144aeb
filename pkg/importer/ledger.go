package importer

import (
	"strings"
	"sync"
)

// FilterType selects which slice of the ledger a view shows.
type FilterType string

const (
	FilterAll         FilterType = "all"
	FilterNeedsUpdate FilterType = "needsUpdate"
	FilterApproved    FilterType = "approved"
	// FilterRejected matches actionable records the reviewer has not approved.
	FilterRejected FilterType = "rejected"
)

// Ledger tracks a reviewer's approval decisions over a session's records.
// It is safe for concurrent use. Records where NeedsUpdate is false are
// informational: approval toggles on them are silently ignored so the commit
// can never write a no-op change.
type Ledger struct {
	mu        sync.RWMutex
	sessionID string
	records   []ReviewRecord
	consumed  bool
}

// LedgerStats summarises the full collection for review screens, regardless of
// any active filter.
type LedgerStats struct {
	Total          int
	NeedsUpdate    int
	Approved       int
	NoUpdateNeeded int
}

// NewLedger copies a session's review data into a fresh ledger.
func NewLedger(session *Session) *Ledger {
	records := make([]ReviewRecord, len(session.ReviewData))
	copy(records, session.ReviewData)
	return &Ledger{sessionID: session.SessionID, records: records}
}

// SessionID returns the session the ledger belongs to.
func (l *Ledger) SessionID() string {
	return l.sessionID
}

// SetApproval records a verdict for every record carrying the matric number.
// Informational records and consumed ledgers are left untouched.
func (l *Ledger) SetApproval(matricNo string, approved bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.consumed {
		return
	}
	for i := range l.records {
		if l.records[i].MatricNo != matricNo {
			continue
		}
		if !l.records[i].NeedsUpdate {
			continue
		}
		l.records[i].Approved = approved
	}
}

// BulkSetApproval applies one verdict to every actionable record in the view
// described by term and filterType, in a single atomic step. Records outside
// the view are untouched, so a bulk action only ever covers what a search or
// filter currently shows.
func (l *Ledger) BulkSetApproval(approved bool, term string, filterType FilterType) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.consumed {
		return
	}
	for i := range l.records {
		if !matchesView(&l.records[i], term, filterType) {
			continue
		}
		if !l.records[i].NeedsUpdate {
			continue
		}
		l.records[i].Approved = approved
	}
}

// Records returns a copy of the current ledger state.
func (l *Ledger) Records() []ReviewRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ReviewRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Filter returns the records matching a case-insensitive substring search on
// matric number or student name, narrowed by filterType. It never mutates the
// collection.
func (l *Ledger) Filter(term string, filterType FilterType) []ReviewRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ReviewRecord, 0, len(l.records))
	for i := range l.records {
		if matchesView(&l.records[i], term, filterType) {
			out = append(out, l.records[i])
		}
	}
	return out
}

// Stats summarises the ledger over the full collection.
func (l *Ledger) Stats() LedgerStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stats := LedgerStats{Total: len(l.records)}
	for _, r := range l.records {
		if r.NeedsUpdate {
			stats.NeedsUpdate++
		} else {
			stats.NoUpdateNeeded++
		}
		if r.Approved {
			stats.Approved++
		}
	}
	return stats
}

// Decisions renders the complete decision set for submission. Every record
// appears, approved or not, so the service sees the reviewer's full verdict.
func (l *Ledger) Decisions() []ApprovalDecision {
	l.mu.RLock()
	defer l.mu.RUnlock()
	decisions := make([]ApprovalDecision, 0, len(l.records))
	for _, r := range l.records {
		decisions = append(decisions, ApprovalDecision{
			StudentID:             r.StudentID,
			MatricNo:              r.MatricNo,
			ProposedClassOfDegree: r.ProposedClassOfDegree,
			Approved:              r.Approved,
		})
	}
	return decisions
}

// ApprovedCount returns the number of approved records.
func (l *Ledger) ApprovedCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	count := 0
	for _, r := range l.records {
		if r.Approved {
			count++
		}
	}
	return count
}

// Consumed reports whether the ledger's approvals were already applied.
func (l *Ledger) Consumed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.consumed
}

func (l *Ledger) markConsumed() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.consumed = true
}

func matchesView(r *ReviewRecord, term string, filterType FilterType) bool {
	if term != "" {
		needle := strings.ToLower(term)
		if !strings.Contains(strings.ToLower(r.MatricNo), needle) &&
			!strings.Contains(strings.ToLower(r.StudentName), needle) {
			return false
		}
	}
	switch filterType {
	case FilterNeedsUpdate:
		return r.NeedsUpdate
	case FilterApproved:
		return r.Approved
	case FilterRejected:
		return r.NeedsUpdate && !r.Approved
	default:
		return true
	}
}
