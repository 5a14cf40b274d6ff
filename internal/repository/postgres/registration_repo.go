package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventify/internal/domain"
)

const registrationColumns = `id, event_id, user_id, team_name, registration_date, attended, certificate_generated, od_letter_generated`

func scanRegistration(s rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{TeamMembers: []*domain.TeamMember{}}
	if err := s.Scan(
		&reg.ID, &reg.EventID, &reg.UserID, &reg.TeamName, &reg.RegistrationDate,
		&reg.Attended, &reg.CertificateGenerated, &reg.ODLetterGenerated,
	); err != nil {
		return nil, err
	}
	return reg, nil
}

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// Register runs the slot decrement, the registration insert and the team member inserts in
// one transaction. The conditional UPDATE takes the event row lock, so concurrent attempts
// on the same event are serialised and the last slot can only be consumed once.
func (r *registrationRepository) Register(ctx context.Context, reg *domain.Registration) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE events
		SET available_slots = available_slots - 1, updated_at = NOW()
		WHERE id = $1 AND available_slots > 0
	`, reg.EventID)
	if err != nil {
		return fmt.Errorf("decrement slots: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement slots: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, reg.EventID).Scan(&exists); err != nil {
			return fmt.Errorf("check event: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrNoSlots
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO registrations (event_id, user_id, team_name, registration_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, reg.EventID, reg.UserID, reg.TeamName, reg.RegistrationDate).Scan(&reg.ID)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return domain.ErrAlreadyRegistered
		}
		return fmt.Errorf("insert registration: %w", err)
	}

	for i, m := range reg.TeamMembers {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO team_members (registration_id, position, name, email, department, roll_number)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, reg.ID, i, m.Name, m.Email, m.Department, m.RollNumber).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("insert team member: %w", err)
		}
		m.RegistrationID = reg.ID
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit registration: %w", err)
	}
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 AND user_id = $2`
	return r.getOne(ctx, query, eventID, userID)
}

func (r *registrationRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Registration, error) {
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadMembers(ctx, []*domain.Registration{reg}); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	query := `
		SELECT r.id, r.event_id, r.user_id, r.team_name, r.registration_date, r.attended, r.certificate_generated, r.od_letter_generated,
		       e.id, e.title, e.description, e.date, e.location, e.total_slots, e.available_slots, e.creator_id, e.image_url, e.created_at, e.updated_at
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.registration_date DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.RegistrationWithEvent, 0)
	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg := &domain.Registration{TeamMembers: []*domain.TeamMember{}}
		e := &domain.Event{}
		var imageNull sql.NullString
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.UserID, &reg.TeamName, &reg.RegistrationDate,
			&reg.Attended, &reg.CertificateGenerated, &reg.ODLetterGenerated,
			&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.TotalSlots, &e.AvailableSlots,
			&e.CreatorID, &imageNull, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if imageNull.Valid {
			e.ImageURL = &imageNull.String
		}
		regs = append(regs, reg)
		out = append(out, &domain.RegistrationWithEvent{Registration: reg, Event: e})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, regs); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 ORDER BY registration_date DESC`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// loadMembers fills TeamMembers of every registration with a single query.
func (r *registrationRepository) loadMembers(ctx context.Context, regs []*domain.Registration) error {
	if len(regs) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Registration, len(regs))
	ids := make([]string, 0, len(regs))
	for _, reg := range regs {
		byID[reg.ID] = reg
		ids = append(ids, reg.ID)
	}
	query := `
		SELECT id, registration_id, name, email, department, roll_number
		FROM team_members
		WHERE registration_id = ANY($1)
		ORDER BY registration_id, position
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m := &domain.TeamMember{}
		var rollNull sql.NullString
		if err := rows.Scan(&m.ID, &m.RegistrationID, &m.Name, &m.Email, &m.Department, &rollNull); err != nil {
			return err
		}
		if rollNull.Valid {
			m.RollNumber = &rollNull.String
		}
		if reg, ok := byID[m.RegistrationID]; ok {
			reg.TeamMembers = append(reg.TeamMembers, m)
		}
	}
	return rows.Err()
}

func (r *registrationRepository) CountByEvent(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT event_id, COUNT(*) FROM registrations GROUP BY event_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var eventID string
		var n int
		if err := rows.Scan(&eventID, &n); err != nil {
			return nil, err
		}
		counts[eventID] = n
	}
	return counts, rows.Err()
}

func (r *registrationRepository) SetAttended(ctx context.Context, id string, attended bool) (*domain.Registration, error) {
	query := `UPDATE registrations SET attended = $2 WHERE id = $1 RETURNING ` + registrationColumns
	return r.getOne(ctx, query, id, attended)
}

func (r *registrationRepository) MarkGenerated(ctx context.Context, id string, kind domain.DocumentKind) error {
	var column string
	switch kind {
	case domain.DocumentCertificate:
		column = "certificate_generated"
	case domain.DocumentODLetter:
		column = "od_letter_generated"
	default:
		return fmt.Errorf("unknown document kind %q: %w", kind, domain.ErrInvalidInput)
	}
	result, err := r.DB.ExecContext(ctx, `UPDATE registrations SET `+column+` = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
