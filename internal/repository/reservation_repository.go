package repository

import (
	"context"
	"database/sql"

	"github.com/yuri-shui/FlightBooking/internal/model"
)

// MaxFlightBookings is the maximum number of reservations allowed on
// one flight.
const MaxFlightBookings = 3

// BookingResult enumerates the business outcomes of a booking attempt.
// These are results, not faults: a full flight is a normal answer and
// travels back through the success channel, never as an error.
type BookingResult int

const (
	// BookingAdded means every leg of the itinerary was reserved and
	// the transaction committed.
	BookingAdded BookingResult = iota
	// BookingFlightFull means some leg already carries MaxFlightBookings
	// reservations; nothing was inserted.
	BookingFlightFull
	// BookingDayFull means the user already holds a reservation on the
	// itinerary's date; nothing was inserted.
	BookingDayFull
)

// String makes outcomes readable in logs and tests.
func (r BookingResult) String() string {
	switch r {
	case BookingAdded:
		return "added"
	case BookingFlightFull:
		return "flight_full"
	case BookingDayFull:
		return "day_full"
	}
	return "unknown"
}

// ReservationRepo implements the reservation transaction core: booking
// and cancellation under explicit transaction boundaries, plus the
// read-only listing of a user's reserved flights.
//
// Correctness under concurrency is delegated entirely to MySQL's
// serializable isolation.  Each call checks a fresh connection out of
// the pool, so concurrent bookings run in independent sessions and the
// engine forces one of two conflicting transactions to abort; that
// abort surfaces as ErrSerializationConflict and the caller retries.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const (
	countDaySQL = `SELECT COUNT(*) FROM reservations r
	               JOIN flights f ON f.id = r.flight_id
	               WHERE r.user_id = ? AND f.year = ? AND f.month = ? AND f.day_of_month = ?`
	countFlightSQL = `SELECT COUNT(*) FROM reservations WHERE flight_id = ?`
	insertSQL      = `INSERT INTO reservations (user_id, flight_id) VALUES (?, ?)`
	deleteSQL      = `DELETE FROM reservations WHERE user_id = ? AND flight_id = ?`
	listByUserSQL  = `SELECT f.id, c.name, f.flight_num, f.origin_city, f.dest_city,
	                         f.year, f.month, f.day_of_month, f.actual_time
	                  FROM reservations r
	                  JOIN flights f  ON f.id = r.flight_id
	                  JOIN carriers c ON c.id = f.carrier_id
	                  WHERE r.user_id = ?
	                  ORDER BY f.year, f.month, f.day_of_month, f.id`
)

// Book attempts to reserve every leg of the itinerary for the user in
// one serializable transaction.  The phases are:
//
//  1. begin with isolation level SERIALIZABLE
//  2. count the user's existing reservations on the itinerary's date;
//     any at all means the day is taken -> DayFull, rollback
//  3. for each leg in order: count reservations on that flight; at
//     capacity -> FlightFull, rollback with nothing kept; otherwise
//     insert the (user, flight) row
//  4. commit -> Added
//
// The day check runs once per booking, before any capacity work, and
// all legs are inserted before commit: a two-leg itinerary is reserved
// atomically or not at all.  On any exit path the transaction ends in
// commit or rollback before the caller sees the result.  Engine-level
// aborts caused by a conflicting concurrent transaction are mapped to
// ErrSerializationConflict; this method never retries internally.
func (r *ReservationRepo) Book(ctx context.Context, userID uint64, it model.Itinerary) (BookingResult, error) {
	if err := it.Validate(); err != nil {
		return 0, err
	}
	date := it.Date()

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, wrapTxErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var dayCount int
	err = tx.QueryRowContext(ctx, countDaySQL,
		userID, date.Year, date.Month, date.DayOfMonth).Scan(&dayCount)
	if err != nil {
		return 0, wrapTxErr(err)
	}
	if dayCount > 0 {
		return BookingDayFull, nil
	}

	for _, leg := range it.Legs {
		var flightCount int
		if err := tx.QueryRowContext(ctx, countFlightSQL, leg.ID).Scan(&flightCount); err != nil {
			return 0, wrapTxErr(err)
		}
		if flightCount >= MaxFlightBookings {
			return BookingFlightFull, nil
		}
		if _, err := tx.ExecContext(ctx, insertSQL, userID, leg.ID); err != nil {
			return 0, wrapTxErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, wrapTxErr(err)
	}
	committed = true
	return BookingAdded, nil
}

// Cancel removes the user's reservations on each of the given flights
// inside one transaction.  Deleting a reservation that does not exist
// is a no-op, not an error, so cancellation always succeeds unless the
// database itself fails.  No invariant check is needed: removal can
// never violate capacity or daily exclusivity, so the transaction runs
// at the engine's default isolation.
func (r *ReservationRepo) Cancel(ctx context.Context, userID uint64, flightIDs []uint64) error {
	if len(flightIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapTxErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, fid := range flightIDs {
		if _, err := tx.ExecContext(ctx, deleteSQL, userID, fid); err != nil {
			return wrapTxErr(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrapTxErr(err)
	}
	committed = true
	return nil
}

// ListByUser returns every flight the user holds a reservation on,
// ordered by date then flight id.  Plain read, no transaction needed
// beyond the engine's default read consistency.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Flight, error) {
	rows, err := r.db.QueryContext(ctx, listByUserSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Flight, 0)
	for rows.Next() {
		var f model.Flight
		if err := rows.Scan(&f.ID, &f.Carrier, &f.FlightNum, &f.OriginCity, &f.DestCity,
			&f.Year, &f.Month, &f.DayOfMonth, &f.ActualTime); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// wrapTxErr maps engine-level transaction aborts to the sentinel the
// handlers retry on, and passes everything else through.
func wrapTxErr(err error) error {
	if isSerializationFailure(err) {
		return ErrSerializationConflict
	}
	return err
}
