package reports

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL reports repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListByTrail retrieves all reports for a trail, newest first.
func (r *PostgresRepository) ListByTrail(ctx context.Context, trailID string) ([]Report, error) {
	query := `
		SELECT
			id, trail_id, trail_name, condition, surface,
			road_access, notes, date_visited, upvotes, downvotes, created_at
		FROM reports
		WHERE trail_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, trailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Report
	for rows.Next() {
		var rep Report
		err := rows.Scan(
			&rep.ID,
			&rep.TrailID,
			&rep.TrailName,
			&rep.Condition,
			&rep.Surface,
			&rep.RoadAccess,
			&rep.Notes,
			&rep.DateVisited,
			&rep.Upvotes,
			&rep.Downvotes,
			&rep.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Create stores a new report.
func (r *PostgresRepository) Create(ctx context.Context, trailID string, sub Submission) (Report, error) {
	query := `
		INSERT INTO reports (
			trail_id, trail_name, condition, surface,
			road_access, notes, date_visited
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, upvotes, downvotes, created_at
	`

	rep := Report{
		TrailID:     trailID,
		TrailName:   sub.TrailName,
		Condition:   sub.Condition,
		Surface:     sub.Surface,
		RoadAccess:  sub.RoadAccess,
		Notes:       sub.Notes,
		DateVisited: sub.DateVisited,
	}

	err := r.pool.QueryRow(ctx, query,
		rep.TrailID,
		rep.TrailName,
		rep.Condition,
		rep.Surface,
		rep.RoadAccess,
		rep.Notes,
		rep.DateVisited,
	).Scan(&rep.ID, &rep.Upvotes, &rep.Downvotes, &rep.CreatedAt)
	if err != nil {
		return Report{}, err
	}

	return rep, nil
}

// Vote records or switches a vote inside a transaction so the per-report
// counters stay consistent with the votes table.
func (r *PostgresRepository) Vote(ctx context.Context, reportID int64, ipHash string, vote VoteType) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback error is not critical

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1)`, reportID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrReportNotFound
	}

	var previous VoteType
	err = tx.QueryRow(ctx,
		`SELECT vote_type FROM report_votes WHERE report_id = $1 AND ip_hash = $2`,
		reportID, ipHash,
	).Scan(&previous)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		_, err = tx.Exec(ctx,
			`INSERT INTO report_votes (report_id, ip_hash, vote_type) VALUES ($1, $2, $3)`,
			reportID, ipHash, string(vote),
		)
		if err != nil {
			return err
		}
		if err := applyVote(ctx, tx, reportID, vote, false); err != nil {
			return err
		}

	case err != nil:
		return err

	case previous == vote:
		return ErrAlreadyVoted

	default:
		_, err = tx.Exec(ctx,
			`UPDATE report_votes SET vote_type = $3 WHERE report_id = $1 AND ip_hash = $2`,
			reportID, ipHash, string(vote),
		)
		if err != nil {
			return err
		}
		if err := applyVote(ctx, tx, reportID, vote, true); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// applyVote adjusts the denormalized counters. A switched vote also
// decrements the opposite counter.
func applyVote(ctx context.Context, tx pgx.Tx, reportID int64, vote VoteType, switched bool) error {
	var query string
	switch {
	case vote == VoteUp && switched:
		query = `UPDATE reports SET upvotes = upvotes + 1, downvotes = downvotes - 1 WHERE id = $1`
	case vote == VoteUp:
		query = `UPDATE reports SET upvotes = upvotes + 1 WHERE id = $1`
	case switched:
		query = `UPDATE reports SET downvotes = downvotes + 1, upvotes = upvotes - 1 WHERE id = $1`
	default:
		query = `UPDATE reports SET downvotes = downvotes + 1 WHERE id = $1`
	}

	_, err := tx.Exec(ctx, query, reportID)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
