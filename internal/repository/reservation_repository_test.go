package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuri-shui/FlightBooking/internal/model"
)

func newReservationMock(t *testing.T) (*ReservationRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewReservationRepo(db), mock
}

func countRow(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(n)
}

func TestBookTwoLegsAllOrNothingCommit(t *testing.T) {
	repo, mock := newReservationMock(t)
	it := oneHop(1, 2, 240, 150)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reservations r").
		WithArgs(uint64(7), 2015, 6, 1).
		WillReturnRows(countRow(0))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reservations WHERE flight_id").
		WithArgs(uint64(1)).
		WillReturnRows(countRow(1))
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(7), uint64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reservations WHERE flight_id").
		WithArgs(uint64(2)).
		WillReturnRows(countRow(MaxFlightBookings - 1))
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(7), uint64(2)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	res, err := repo.Book(context.Background(), 7, it)
	require.NoError(t, err)
	assert.Equal(t, BookingAdded, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The day check runs once, before any capacity work, and an already
// reserved date rolls back without touching flight counts.
func TestBookDayFullRollsBackBeforeCapacityChecks(t *testing.T) {
	repo, mock := newReservationMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reservations r").
		WithArgs(uint64(7), 2015, 6, 1).
		WillReturnRows(countRow(1))
	mock.ExpectRollback()

	res, err := repo.Book(context.Background(), 7, direct(1, 300))
	require.NoError(t, err)
	assert.Equal(t, BookingDayFull, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A second leg at capacity aborts the transaction after the first leg
// was already inserted: rollback discards that insert, so a full leg
// means nothing is kept.
func TestBookSecondLegFullRollsBackFirstInsert(t *testing.T) {
	repo, mock := newReservationMock(t)
	it := oneHop(1, 2, 240, 150)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reservations r").
		WithArgs(uint64(7), 2015, 6, 1).
		WillReturnRows(countRow(0))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reservations WHERE flight_id").
		WithArgs(uint64(1)).
		WillReturnRows(countRow(0))
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(7), uint64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reservations WHERE flight_id").
		WithArgs(uint64(2)).
		WillReturnRows(countRow(MaxFlightBookings))
	mock.ExpectRollback()

	res, err := repo.Book(context.Background(), 7, it)
	require.NoError(t, err)
	assert.Equal(t, BookingFlightFull, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookMapsEngineAbortToSerializationConflict(t *testing.T) {
	repo, mock := newReservationMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reservations r").
		WithArgs(uint64(7), 2015, 6, 1).
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), 7, direct(1, 300))
	assert.ErrorIs(t, err, ErrSerializationConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Invalid itineraries are rejected before a transaction is ever opened,
// so the database sees nothing.
func TestBookRejectsInvalidItineraryWithoutTransaction(t *testing.T) {
	repo, mock := newReservationMock(t)

	selfLoop := direct(42, 60).Legs[0]
	selfLoop.DestCity = selfLoop.OriginCity
	it := model.Itinerary{Legs: []model.Flight{selfLoop, selfLoop}}

	_, err := repo.Book(context.Background(), 7, it)
	assert.ErrorIs(t, err, model.ErrDuplicateLeg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelDeletesEachFlightAndCommits(t *testing.T) {
	repo, mock := newReservationMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM reservations").
		WithArgs(uint64(7), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Second flight was never booked; zero rows affected is still fine.
	mock.ExpectExec("DELETE FROM reservations").
		WithArgs(uint64(7), uint64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Cancel(context.Background(), 7, []uint64{5, 6})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelEmptyListIsNoOp(t *testing.T) {
	repo, mock := newReservationMock(t)
	require.NoError(t, repo.Cancel(context.Background(), 7, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
