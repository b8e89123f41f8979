package reports

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory implementation of Repository, used in
// local development when no database is configured, and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	reports map[int64]*Report
	votes   map[int64]map[string]VoteType
}

// NewMemoryRepository creates a new in-memory reports repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:  1,
		reports: make(map[int64]*Report),
		votes:   make(map[int64]map[string]VoteType),
	}
}

// ListByTrail returns the reports for a trail, newest first.
func (r *MemoryRepository) ListByTrail(_ context.Context, trailID string) ([]Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Report
	for _, rep := range r.reports {
		if rep.TrailID == trailID {
			result = append(result, *rep)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// Create stores a new report.
func (r *MemoryRepository) Create(_ context.Context, trailID string, sub Submission) (Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := &Report{
		ID:          r.nextID,
		TrailID:     trailID,
		TrailName:   sub.TrailName,
		Condition:   sub.Condition,
		Surface:     sub.Surface,
		RoadAccess:  sub.RoadAccess,
		Notes:       sub.Notes,
		DateVisited: sub.DateVisited,
		CreatedAt:   time.Now().UTC(),
	}
	r.nextID++
	r.reports[rep.ID] = rep

	return *rep, nil
}

// Vote records or switches a vote.
func (r *MemoryRepository) Vote(_ context.Context, reportID int64, ipHash string, vote VoteType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.reports[reportID]
	if !ok {
		return ErrReportNotFound
	}

	votes := r.votes[reportID]
	if votes == nil {
		votes = make(map[string]VoteType)
		r.votes[reportID] = votes
	}

	previous, voted := votes[ipHash]
	if voted && previous == vote {
		return ErrAlreadyVoted
	}

	votes[ipHash] = vote
	if vote == VoteUp {
		rep.Upvotes++
		if voted {
			rep.Downvotes--
		}
	} else {
		rep.Downvotes++
		if voted {
			rep.Upvotes--
		}
	}

	return nil
}

// Ensure MemoryRepository implements Repository interface.
var _ Repository = (*MemoryRepository)(nil)
