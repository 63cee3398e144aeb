package importer

import (
	"context"

	"go.uber.org/zap"
)

// CommitClassification buckets a commit outcome.
type CommitClassification string

const (
	// FullSuccess: every approved record was applied.
	FullSuccess CommitClassification = "full_success"
	// PartialSuccess: some records applied, some failed. The applied
	// updates stand; only the failures need attention.
	PartialSuccess CommitClassification = "partial_success"
	// TotalFailure: nothing was applied.
	TotalFailure CommitClassification = "total_failure"
)

// CommitResult pairs the service outcome with its classification.
type CommitResult struct {
	Classification CommitClassification
	UpdatedCount   int
	ErrorCount     int
	Errors         []string
}

type approvalSubmitter interface {
	SubmitApprovals(ctx context.Context, sessionID string, decisions []ApprovalDecision) (*UpdateResult, error)
}

// Committer turns a reviewed ledger into register updates.
type Committer struct {
	client approvalSubmitter
	logger *zap.Logger
}

// NewCommitter constructs a Committer.
func NewCommitter(client approvalSubmitter, logger *zap.Logger) *Committer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Committer{client: client, logger: logger}
}

// Commit submits the ledger's decision set. It refuses to send a request
// when nothing is approved or the ledger was already committed. A full or
// partial success consumes the ledger; a total failure leaves it open so
// the reviewer can retry.
func (c *Committer) Commit(ctx context.Context, ledger *Ledger) (*CommitResult, error) {
	if ledger.Consumed() {
		return nil, ErrLedgerConsumed
	}
	if ledger.ApprovedCount() == 0 {
		return nil, ErrNoApprovals
	}

	outcome, err := c.client.SubmitApprovals(ctx, ledger.SessionID(), ledger.Decisions())
	if err != nil {
		return nil, err
	}

	result := &CommitResult{
		UpdatedCount: outcome.UpdatedCount,
		ErrorCount:   outcome.ErrorCount,
		Errors:       outcome.Errors,
	}
	switch {
	case outcome.UpdatedCount > 0 && outcome.ErrorCount == 0:
		result.Classification = FullSuccess
	case outcome.UpdatedCount > 0:
		result.Classification = PartialSuccess
	default:
		result.Classification = TotalFailure
	}

	if result.Classification != TotalFailure {
		ledger.markConsumed()
	}

	c.logger.Info("commit finished",
		zap.String("session_id", ledger.SessionID()),
		zap.String("classification", string(result.Classification)),
		zap.Int("updated", result.UpdatedCount),
		zap.Int("errors", result.ErrorCount))

	return result, nil
}
