package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/models"
)

var barterColumnNames = []string{
	"id", "status", "skill_from_id", "skill_to_id", "user_from_id", "user_to_id", "admin_id",
	"completed_by_from", "completed_by_to", "date_requested", "date_responded",
}

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func barterRow(b models.Barter) *pgxmock.Rows {
	return pgxmock.NewRows(barterColumnNames).AddRow(
		b.ID, string(b.Status), b.SkillFromID, b.SkillToID, b.UserFromID, b.UserToID, b.AdminID,
		b.CompletedByFrom, b.CompletedByTo, b.DateRequested, b.DateResponded,
	)
}

func acceptedBarter() models.Barter {
	return models.Barter{
		ID:            uuid.New(),
		Status:        models.BarterAccepted,
		SkillFromID:   uuid.New(),
		SkillToID:     uuid.New(),
		UserFromID:    uuid.New(),
		UserToID:      uuid.New(),
		AdminID:       (*uuid.UUID)(nil),
		DateRequested: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		DateResponded: (*time.Time)(nil),
	}
}

func TestGetBarterNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM barters WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetBarter(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrBarterNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBarter(t *testing.T) {
	store, mock := newMockStore(t)
	b := acceptedBarter()
	b.Status = models.BarterPending

	mock.ExpectExec(`INSERT INTO barters`).
		WithArgs(b.ID, "Pending", b.SkillFromID, b.SkillToID, b.UserFromID, b.UserToID,
			false, false, b.DateRequested).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.CreateBarter(context.Background(), &b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBarterConstraintViolation(t *testing.T) {
	store, mock := newMockStore(t)
	b := acceptedBarter()

	mock.ExpectExec(`INSERT INTO barters`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23514", Message: "barters_distinct_users"})

	err := store.CreateBarter(context.Background(), &b)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBarterCommits(t *testing.T) {
	store, mock := newMockStore(t)
	b := acceptedBarter()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM barters WHERE id = \$1 FOR UPDATE`).
		WithArgs(b.ID).
		WillReturnRows(barterRow(b))
	mock.ExpectExec(`UPDATE barters SET status = \$1`).
		WithArgs("Accepted", pgxmock.AnyArg(), true, false, pgxmock.AnyArg(), b.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	updated, err := store.UpdateBarter(context.Background(), b.ID, func(b *models.Barter) error {
		b.CompletedByFrom = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, updated.CompletedByFrom)
	assert.Equal(t, models.BarterAccepted, updated.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBarterRollsBackOnMutateError(t *testing.T) {
	store, mock := newMockStore(t)
	b := acceptedBarter()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM barters WHERE id = \$1 FOR UPDATE`).
		WithArgs(b.ID).
		WillReturnRows(barterRow(b))
	mock.ExpectRollback()

	_, err := store.UpdateBarter(context.Background(), b.ID, func(*models.Barter) error {
		return apperrors.ErrNotPending
	})
	assert.ErrorIs(t, err, apperrors.ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBarterWrapsDriverErrors(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := store.UpdateBarter(context.Background(), uuid.New(), func(*models.Barter) error { return nil })
	assert.True(t, apperrors.IsKind(err, apperrors.KindStorage))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingSummary(t *testing.T) {
	store, mock := newMockStore(t)
	userID := uuid.New()
	avg := 4.0

	mock.ExpectQuery(`SELECT AVG\(f.rating\), COUNT\(f.id\) FROM feedback f`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"avg", "count"}).AddRow(&avg, int64(3)))

	summary, err := store.RatingSummary(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, summary.Average)
	assert.Equal(t, 4.0, *summary.Average)
	assert.Equal(t, 3, summary.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingSummaryWithoutFeedback(t *testing.T) {
	store, mock := newMockStore(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT AVG\(f.rating\), COUNT\(f.id\) FROM feedback f`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"avg", "count"}).AddRow((*float64)(nil), int64(0)))

	summary, err := store.RatingSummary(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, summary.Average)
	assert.Zero(t, summary.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkConversationRead(t *testing.T) {
	store, mock := newMockStore(t)
	sender, recipient := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE messages SET is_read = TRUE`).
		WithArgs(sender, recipient).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := store.MarkConversationRead(context.Background(), sender, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}
