package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventify/internal/domain"
)

const feedbackSelect = `
	SELECT f.id, f.event_id, f.user_id, u.name, f.overall_rating, f.was_informative,
	       f.organization_rating, f.additional_comments, f.created_at
	FROM feedback f
	JOIN users u ON u.id = f.user_id
`

func scanFeedback(s rowScanner) (*domain.Feedback, error) {
	f := &domain.Feedback{}
	var org string
	var commentsNull sql.NullString
	if err := s.Scan(
		&f.ID, &f.EventID, &f.UserID, &f.UserName, &f.OverallRating, &f.WasInformative,
		&org, &commentsNull, &f.CreatedAt,
	); err != nil {
		return nil, err
	}
	f.OrganizationRating = domain.OrganizationRating(org)
	if commentsNull.Valid {
		f.AdditionalComments = &commentsNull.String
	}
	return f, nil
}

type feedbackRepository struct {
	DB *sql.DB
}

func NewFeedbackRepository(db *sql.DB) domain.FeedbackRepository {
	return &feedbackRepository{DB: db}
}

func (r *feedbackRepository) Upsert(ctx context.Context, f *domain.Feedback) error {
	query := `
		INSERT INTO feedback (event_id, user_id, overall_rating, was_informative, organization_rating, additional_comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			overall_rating = EXCLUDED.overall_rating,
			was_informative = EXCLUDED.was_informative,
			organization_rating = EXCLUDED.organization_rating,
			additional_comments = EXCLUDED.additional_comments,
			created_at = EXCLUDED.created_at
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		f.EventID, f.UserID, f.OverallRating, f.WasInformative, string(f.OrganizationRating), f.AdditionalComments, f.CreatedAt,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		if isPQCode(err, pqCheckViolation) {
			return domain.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (r *feedbackRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Feedback, error) {
	query := feedbackSelect + ` WHERE f.event_id = $1 AND f.user_id = $2`
	f, err := scanFeedback(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *feedbackRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Feedback, error) {
	return r.list(ctx, feedbackSelect+` WHERE f.event_id = $1 ORDER BY f.created_at DESC`, eventID)
}

func (r *feedbackRepository) ListAll(ctx context.Context) ([]*domain.Feedback, error) {
	return r.list(ctx, feedbackSelect+` ORDER BY f.created_at DESC`)
}

func (r *feedbackRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Feedback, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.Feedback, 0)
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *feedbackRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}
