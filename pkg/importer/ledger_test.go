package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func testSession() *Session {
	return &Session{
		SessionID: "sess-1",
		Summary:   SessionSummary{TotalExtracted: 4, TotalMatched: 4, ReadyForReview: 4},
		ReviewData: []ReviewRecord{
			{StudentID: 1, MatricNo: "ABC/12/0001", StudentName: "Ada", CurrentClassOfDegree: strPtr("Second Class Lower"), ProposedClassOfDegree: "Second Class Upper", MatchConfidence: MatchExact, NeedsUpdate: true},
			{StudentID: 2, MatricNo: "ABC/12/0002", StudentName: "Bola", CurrentClassOfDegree: strPtr("First Class"), ProposedClassOfDegree: "First Class", MatchConfidence: MatchExact, NeedsUpdate: false},
			{StudentID: 3, MatricNo: "ABC/12/0003", StudentName: "Chidi", CurrentClassOfDegree: nil, ProposedClassOfDegree: "Third Class", MatchConfidence: MatchPartial, NeedsUpdate: true},
			{StudentID: 4, MatricNo: "ABC/12/0004", StudentName: "Dayo", CurrentClassOfDegree: strPtr("Pass"), ProposedClassOfDegree: "Second Class Lower", MatchConfidence: MatchExact, NeedsUpdate: true},
		},
	}
}

func TestLedgerSetApproval(t *testing.T) {
	ledger := NewLedger(testSession())

	ledger.SetApproval("ABC/12/0001", true)
	require.Equal(t, 1, ledger.ApprovedCount())

	ledger.SetApproval("ABC/12/0001", false)
	require.Equal(t, 0, ledger.ApprovedCount())
}

func TestLedgerSetApprovalIgnoresInformationalRecords(t *testing.T) {
	ledger := NewLedger(testSession())

	// ABC/12/0002 already holds the proposed class.
	ledger.SetApproval("ABC/12/0002", true)
	require.Equal(t, 0, ledger.ApprovedCount())
}

func TestLedgerSetApprovalUnknownMatricIsNoop(t *testing.T) {
	ledger := NewLedger(testSession())
	ledger.SetApproval("XYZ/99/9999", true)
	require.Equal(t, 0, ledger.ApprovedCount())
}

func TestLedgerSetApprovalMutatesAllDuplicates(t *testing.T) {
	session := testSession()
	dup := session.ReviewData[0]
	dup.StudentID = 5
	session.ReviewData = append(session.ReviewData, dup)

	ledger := NewLedger(session)
	ledger.SetApproval("ABC/12/0001", true)
	require.Equal(t, 2, ledger.ApprovedCount())
}

func TestLedgerBulkSetApproval(t *testing.T) {
	ledger := NewLedger(testSession())

	ledger.BulkSetApproval(true, "", FilterAll)
	require.Equal(t, 3, ledger.ApprovedCount())

	ledger.BulkSetApproval(false, "", FilterAll)
	require.Equal(t, 0, ledger.ApprovedCount())
}

func TestLedgerBulkSetApprovalScopedToView(t *testing.T) {
	ledger := NewLedger(testSession())

	// Only Ada matches the search, so only her record is approved.
	ledger.BulkSetApproval(true, "ada", FilterAll)
	require.Equal(t, 1, ledger.ApprovedCount())

	records := ledger.Filter("", FilterApproved)
	require.Len(t, records, 1)
	require.Equal(t, "ABC/12/0001", records[0].MatricNo)

	// Round trip over the same unchanged scope restores the original state.
	ledger.BulkSetApproval(false, "ada", FilterAll)
	require.Equal(t, 0, ledger.ApprovedCount())
}

func TestLedgerStats(t *testing.T) {
	ledger := NewLedger(testSession())
	ledger.SetApproval("ABC/12/0001", true)

	stats := ledger.Stats()
	require.Equal(t, 4, stats.Total)
	require.Equal(t, 3, stats.NeedsUpdate)
	require.Equal(t, 1, stats.NoUpdateNeeded)
	require.Equal(t, 1, stats.Approved)
}

func TestLedgerStatsAreFilterInvariant(t *testing.T) {
	ledger := NewLedger(testSession())
	ledger.SetApproval("ABC/12/0004", true)

	before := ledger.Stats()
	_ = ledger.Filter("chidi", FilterRejected)
	require.Equal(t, before, ledger.Stats())
}

func TestLedgerFilter(t *testing.T) {
	ledger := NewLedger(testSession())

	require.Len(t, ledger.Filter("", FilterAll), 4)
	require.Len(t, ledger.Filter("", FilterNeedsUpdate), 3)
	require.Len(t, ledger.Filter("", FilterRejected), 3)

	// Search matches matric number or student name, case-insensitively.
	require.Len(t, ledger.Filter("abc/12", FilterAll), 4)
	byName := ledger.Filter("BOLA", FilterAll)
	require.Len(t, byName, 1)
	require.Equal(t, "ABC/12/0002", byName[0].MatricNo)

	ledger.SetApproval("ABC/12/0004", true)
	approved := ledger.Filter("", FilterApproved)
	require.Len(t, approved, 1)
	require.Equal(t, "ABC/12/0004", approved[0].MatricNo)
	require.Len(t, ledger.Filter("", FilterRejected), 2)
}

func TestLedgerFilterNeverMutates(t *testing.T) {
	ledger := NewLedger(testSession())
	records := ledger.Filter("", FilterAll)
	records[0].Approved = true

	require.Equal(t, 0, ledger.ApprovedCount())
}

func TestLedgerDecisionsCoverEveryRecord(t *testing.T) {
	ledger := NewLedger(testSession())
	ledger.SetApproval("ABC/12/0001", true)

	decisions := ledger.Decisions()
	require.Len(t, decisions, 4)

	byMatric := make(map[string]ApprovalDecision)
	for _, d := range decisions {
		byMatric[d.MatricNo] = d
	}
	require.True(t, byMatric["ABC/12/0001"].Approved)
	require.False(t, byMatric["ABC/12/0003"].Approved)
}

func TestLedgerConsumedBlocksMutation(t *testing.T) {
	ledger := NewLedger(testSession())
	ledger.markConsumed()

	ledger.SetApproval("ABC/12/0001", true)
	ledger.BulkSetApproval(true, "", FilterAll)
	require.Equal(t, 0, ledger.ApprovedCount())
	require.True(t, ledger.Consumed())
}

func TestLedgerRecordsReturnsCopy(t *testing.T) {
	ledger := NewLedger(testSession())
	records := ledger.Records()
	records[0].Approved = true

	require.Equal(t, 0, ledger.ApprovedCount())
}
