package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/yuri-shui/FlightBooking/internal/model"
)

// MaxItineraries caps the number of itineraries a single search
// returns, after direct and one-connection candidates are merged.
const MaxItineraries = 99

// FlightRepo provides read-only access to the flight catalog: the
// `flights` table joined to `carriers`.  Flight rows are immutable from
// this service's point of view, so no method here opens a transaction.
type FlightRepo struct {
	db *sql.DB
}

// NewFlightRepo returns a new FlightRepo bound to the given database.
func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

// searchDirectSQL finds direct legs for a date and city pair.  Legs
// with an unknown actual time are rows for flights that never flew or
// were cancelled in the source data; they are unsearchable.
const searchDirectSQL = `
SELECT f.id, c.name, f.flight_num, f.origin_city, f.dest_city, f.actual_time
FROM flights f
JOIN carriers c ON c.id = f.carrier_id
WHERE f.actual_time IS NOT NULL
  AND f.year = ? AND f.month = ? AND f.day_of_month = ?
  AND f.origin_city = ? AND f.dest_city = ?
ORDER BY f.actual_time ASC
LIMIT ?`

// searchOneHopSQL finds connecting leg pairs on the same date where the
// first leg lands in the city the second departs from.  Same-carrier is
// not required and the connecting city is unconstrained.
const searchOneHopSQL = `
SELECT f1.id, c1.name, f1.flight_num, f1.origin_city, f1.dest_city, f1.actual_time,
       f2.id, c2.name, f2.flight_num, f2.origin_city, f2.dest_city, f2.actual_time
FROM flights f1
JOIN flights f2  ON f2.origin_city = f1.dest_city
JOIN carriers c1 ON c1.id = f1.carrier_id
JOIN carriers c2 ON c2.id = f2.carrier_id
WHERE f1.actual_time IS NOT NULL AND f2.actual_time IS NOT NULL
  AND f1.year = ? AND f1.month = ? AND f1.day_of_month = ?
  AND f2.year = ? AND f2.month = ? AND f2.day_of_month = ?
  AND f1.origin_city = ? AND f2.dest_city = ?
ORDER BY f1.actual_time + f2.actual_time ASC
LIMIT ?`

// SearchItineraries returns the ranked itineraries between two cities
// on the given date: direct flights and one-connection pairs, merged
// into a single list ordered by ascending total flight time and capped
// at MaxItineraries.  Both candidate queries are plain reads; any
// database error propagates to the caller unwrapped.
func (r *FlightRepo) SearchItineraries(ctx context.Context, date model.Date, originCity, destCity string) ([]model.Itinerary, error) {
	direct, err := r.searchDirect(ctx, date, originCity, destCity)
	if err != nil {
		return nil, err
	}
	oneHop, err := r.searchOneHop(ctx, date, originCity, destCity)
	if err != nil {
		return nil, err
	}
	return mergeRanked(direct, oneHop, MaxItineraries), nil
}

func (r *FlightRepo) searchDirect(ctx context.Context, date model.Date, originCity, destCity string) ([]model.Itinerary, error) {
	rows, err := r.db.QueryContext(ctx, searchDirectSQL,
		date.Year, date.Month, date.DayOfMonth, originCity, destCity, MaxItineraries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Itinerary, 0)
	for rows.Next() {
		var leg model.Flight
		if err := rows.Scan(&leg.ID, &leg.Carrier, &leg.FlightNum,
			&leg.OriginCity, &leg.DestCity, &leg.ActualTime); err != nil {
			return nil, err
		}
		leg.Year, leg.Month, leg.DayOfMonth = date.Year, date.Month, date.DayOfMonth
		out = append(out, model.Itinerary{Legs: []model.Flight{leg}})
	}
	return out, rows.Err()
}

func (r *FlightRepo) searchOneHop(ctx context.Context, date model.Date, originCity, destCity string) ([]model.Itinerary, error) {
	rows, err := r.db.QueryContext(ctx, searchOneHopSQL,
		date.Year, date.Month, date.DayOfMonth,
		date.Year, date.Month, date.DayOfMonth,
		originCity, destCity, MaxItineraries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Itinerary, 0)
	for rows.Next() {
		var leg1, leg2 model.Flight
		if err := rows.Scan(
			&leg1.ID, &leg1.Carrier, &leg1.FlightNum, &leg1.OriginCity, &leg1.DestCity, &leg1.ActualTime,
			&leg2.ID, &leg2.Carrier, &leg2.FlightNum, &leg2.OriginCity, &leg2.DestCity, &leg2.ActualTime,
		); err != nil {
			return nil, err
		}
		leg1.Year, leg1.Month, leg1.DayOfMonth = date.Year, date.Month, date.DayOfMonth
		leg2.Year, leg2.Month, leg2.DayOfMonth = date.Year, date.Month, date.DayOfMonth
		out = append(out, model.Itinerary{Legs: []model.Flight{leg1, leg2}})
	}
	return out, rows.Err()
}

// mergeRanked merges two itinerary lists that are each already sorted
// by ascending total time into one ranked list of at most max entries.
// The merge is stable: within equal total times the relative order of
// each input list is preserved, and entries from the first list (the
// direct flights) come first.
func mergeRanked(a, b []model.Itinerary, max int) []model.Itinerary {
	merged := make([]model.Itinerary, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].TotalTime() < merged[j].TotalTime()
	})
	if len(merged) > max {
		merged = merged[:max]
	}
	return merged
}

// GetByIDs resolves flight IDs to full flight records, preserving the
// order of the requested IDs.  IDs that match no flight, or flights
// whose actual time is unknown, are absent from the result; the caller
// decides whether that is an error.
func (r *FlightRepo) GetByIDs(ctx context.Context, ids []uint64) ([]model.Flight, error) {
	if len(ids) == 0 {
		return []model.Flight{}, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT f.id, c.name, f.flight_num, f.origin_city, f.dest_city,
	             f.year, f.month, f.day_of_month, f.actual_time
	      FROM flights f
	      JOIN carriers c ON c.id = f.carrier_id
	      WHERE f.actual_time IS NOT NULL AND f.id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uint64]model.Flight, len(ids))
	for rows.Next() {
		var f model.Flight
		if err := rows.Scan(&f.ID, &f.Carrier, &f.FlightNum, &f.OriginCity, &f.DestCity,
			&f.Year, &f.Month, &f.DayOfMonth, &f.ActualTime); err != nil {
			return nil, err
		}
		byID[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Flight, 0, len(ids))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}
