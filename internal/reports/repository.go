package reports

import (
	"context"
)

// Repository persists trail reports and their votes.
type Repository interface {
	// ListByTrail returns the reports for a trail, newest first.
	ListByTrail(ctx context.Context, trailID string) ([]Report, error)

	// Create stores a new report and returns it with its assigned ID.
	Create(ctx context.Context, trailID string, sub Submission) (Report, error)

	// Vote records a vote on a report, keyed by the hashed client address.
	// A repeat of the same vote returns ErrAlreadyVoted; a vote in the
	// opposite direction switches the earlier one. An unknown report
	// returns ErrReportNotFound.
	Vote(ctx context.Context, reportID int64, ipHash string, vote VoteType) error
}
