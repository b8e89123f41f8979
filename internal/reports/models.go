// Package reports provides user-submitted trail condition reports with
// community voting.
package reports

import (
	"errors"
	"time"
)

var (
	// ErrReportNotFound indicates the report ID does not exist.
	ErrReportNotFound = errors.New("report not found")

	// ErrAlreadyVoted indicates the client already cast this vote on the
	// report.
	ErrAlreadyVoted = errors.New("already voted")

	// ErrInvalidVote indicates an unrecognized vote type.
	ErrInvalidVote = errors.New("invalid vote type")

	// ErrInvalidReport indicates a report submission failed validation.
	ErrInvalidReport = errors.New("invalid report")
)

// VoteType is the direction of a community vote.
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Valid reports whether the vote type is recognized.
func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// Report is a user-submitted trail condition report.
type Report struct {
	ID          int64     `json:"id"`
	TrailID     string    `json:"trail_id"`
	TrailName   string    `json:"trail_name"`
	Condition   string    `json:"condition"`
	Surface     string    `json:"surface"`
	RoadAccess  string    `json:"road_access"`
	Notes       string    `json:"notes"`
	DateVisited string    `json:"date_visited"`
	Upvotes     int       `json:"upvotes"`
	Downvotes   int       `json:"downvotes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Submission is the user-provided portion of a new report.
type Submission struct {
	TrailName   string `json:"trail_name"`
	Condition   string `json:"condition"`
	Surface     string `json:"surface"`
	RoadAccess  string `json:"road_access"`
	Notes       string `json:"notes"`
	DateVisited string `json:"date_visited"`
}
