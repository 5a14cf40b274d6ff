package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventify/internal/domain"
)

var feedbackColumnNames = []string{"id", "event_id", "user_id", "name", "overall_rating", "was_informative", "organization_rating", "additional_comments", "created_at"}

func TestFeedbackRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)
	comment := "More hands-on time please"

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "insert or replace",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO feedback[\s\S]*ON CONFLICT \(event_id, user_id\) DO UPDATE SET`).
					WithArgs("ev-1", "u-1", 4, true, "Good", sqlmock.AnyArg(), now).
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("fb-1", now))
			},
		},
		{
			name: "check violation",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO feedback`).
					WillReturnError(&pq.Error{Code: "23514"})
			},
			wantErr: domain.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			f := &domain.Feedback{
				EventID: "ev-1", UserID: "u-1", OverallRating: 4, WasInformative: true,
				OrganizationRating: domain.OrganizationGood, AdditionalComments: &comment, CreatedAt: now,
			}
			err = NewFeedbackRepository(db).Upsert(ctx, f)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "fb-1", f.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFeedbackRepository_GetByEventAndUser(t *testing.T) {
	now := time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`JOIN users u ON u.id = f.user_id\s+WHERE f.event_id = \$1 AND f.user_id = \$2`).
			WithArgs("ev-1", "u-1").
			WillReturnRows(sqlmock.NewRows(feedbackColumnNames).
				AddRow("fb-1", "ev-1", "u-1", "Asha", 5, true, "Excellent", nil, now))

		got, err := NewFeedbackRepository(db).GetByEventAndUser(context.Background(), "ev-1", "u-1")
		require.NoError(t, err)
		assert.Equal(t, domain.OrganizationExcellent, got.OrganizationRating)
		assert.Equal(t, "Asha", got.UserName)
		assert.Nil(t, got.AdditionalComments)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM feedback f`).WillReturnError(sql.ErrNoRows)

		_, err = NewFeedbackRepository(db).GetByEventAndUser(context.Background(), "ev-1", "u-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestFeedbackRepository_ListByEventID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`WHERE f.event_id = \$1 ORDER BY f.created_at DESC`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(feedbackColumnNames).
			AddRow("fb-1", "ev-1", "u-1", "Asha", 5, true, "Excellent", "Great", now).
			AddRow("fb-2", "ev-1", "u-2", "Kiran", 3, false, "Average", nil, now))

	got, err := NewFeedbackRepository(db).ListByEventID(context.Background(), "ev-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].AdditionalComments)
	assert.Equal(t, "Great", *got[0].AdditionalComments)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_CountByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM feedback WHERE user_id = \$1`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := NewFeedbackRepository(db).CountByUserID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
