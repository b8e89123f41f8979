package reports

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the reports service.
type ServiceConfig struct {
	// Repository persists reports and votes.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service coordinates trail report submission, listing and voting.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a reports service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}
}

// ListByTrail returns the reports for a trail, newest first. A trail with
// no reports yields an empty slice, not an error.
func (s *Service) ListByTrail(ctx context.Context, trailID string) ([]Report, error) {
	trailID = strings.TrimSpace(trailID)
	if trailID == "" {
		return nil, fmt.Errorf("%w: empty trail id", ErrInvalidReport)
	}

	result, err := s.repo.ListByTrail(ctx, trailID)
	if err != nil {
		return nil, fmt.Errorf("listing reports for %s: %w", trailID, err)
	}
	if result == nil {
		result = []Report{}
	}
	return result, nil
}

// Submit validates and stores a new trail report.
func (s *Service) Submit(ctx context.Context, trailID string, sub Submission) (Report, error) {
	trailID = strings.TrimSpace(trailID)
	if trailID == "" {
		return Report{}, fmt.Errorf("%w: empty trail id", ErrInvalidReport)
	}
	if strings.TrimSpace(sub.TrailName) == "" {
		return Report{}, fmt.Errorf("%w: trail name is required", ErrInvalidReport)
	}

	rep, err := s.repo.Create(ctx, trailID, sub)
	if err != nil {
		return Report{}, fmt.Errorf("creating report for %s: %w", trailID, err)
	}

	s.logger.Info().
		Str("trail_id", trailID).
		Int64("report_id", rep.ID).
		Msg("trail report submitted")
	return rep, nil
}

// Vote records a vote on a report on behalf of the client address. The
// address is hashed before storage so raw IPs are never persisted. Repeating
// the same vote returns ErrAlreadyVoted; the opposite vote switches it.
func (s *Service) Vote(ctx context.Context, reportID int64, clientAddr string, vote VoteType) error {
	if !vote.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidVote, vote)
	}

	if err := s.repo.Vote(ctx, reportID, HashAddr(clientAddr), vote); err != nil {
		return err
	}

	s.logger.Debug().
		Int64("report_id", reportID).
		Str("vote", string(vote)).
		Msg("report vote recorded")
	return nil
}

// HashAddr derives the anonymized voter key from a client address: the
// first 16 hex characters of its SHA-256.
func HashAddr(addr string) string {
	sum := sha256.Sum256([]byte(addr))
	return hex.EncodeToString(sum[:])[:16]
}
