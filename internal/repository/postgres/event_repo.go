package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"eventify/internal/domain"
)

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
)

const eventColumns = `id, title, description, date, location, total_slots, available_slots, creator_id, image_url, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var imageNull sql.NullString
	if err := s.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.TotalSlots, &e.AvailableSlots,
		&e.CreatorID, &imageNull, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if imageNull.Valid {
		e.ImageURL = &imageNull.String
	}
	return e, nil
}

func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, location, total_slots, available_slots, creator_id, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, e.TotalSlots, e.AvailableSlots,
		e.CreatorID, e.ImageURL, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isPQCode(err, pqCheckViolation) {
			return domain.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date ASC, id ASC LIMIT $1 OFFSET $2`
	events, err := r.queryEvents(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	return r.queryEvents(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date ASC, id ASC`)
}

func (r *eventRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE date >= $1 AND date < $2 ORDER BY date ASC`
	return r.queryEvents(ctx, query, from, to)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	where := []string{}
	args := []any{}
	n := 1
	if patch.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *patch.Title)
		n++
	}
	if patch.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *patch.Description)
		n++
	}
	if patch.Date != nil {
		setClauses = append(setClauses, fmt.Sprintf("date = $%d", n))
		args = append(args, *patch.Date)
		n++
	}
	if patch.Location != nil {
		setClauses = append(setClauses, fmt.Sprintf("location = $%d", n))
		args = append(args, *patch.Location)
		n++
	}
	if patch.ImageURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("image_url = $%d", n))
		args = append(args, *patch.ImageURL)
		n++
	}
	if patch.TotalSlots != nil {
		// Taken slots are preserved: available = new total - (old total - old available).
		setClauses = append(setClauses,
			fmt.Sprintf("total_slots = $%d", n),
			fmt.Sprintf("available_slots = $%d - (total_slots - available_slots)", n),
		)
		where = append(where, fmt.Sprintf("$%d >= total_slots - available_slots", n))
		args = append(args, *patch.TotalSlots)
		n++
	}
	if n == 1 {
		return r.GetByID(ctx, id)
	}
	where = append([]string{fmt.Sprintf("id = $%d", n)}, where...)
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE %s
		RETURNING %s
	`, strings.Join(setClauses, ", "), strings.Join(where, " AND "), eventColumns)

	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if patch.TotalSlots == nil {
				return nil, domain.ErrNotFound
			}
			// Either the event is gone or the new total is below the taken count.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, domain.ErrInvalidInput
		}
		if isPQCode(err, pqCheckViolation) {
			return nil, domain.ErrInvalidInput
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) AddSlots(ctx context.Context, id string, n int) (*domain.Event, error) {
	query := `
		UPDATE events
		SET total_slots = total_slots + $2, available_slots = available_slots + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + eventColumns
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, n))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isPQCode(err, pqCheckViolation) {
			return nil, domain.ErrInvalidInput
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
