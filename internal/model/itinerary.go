package model

import "errors"

// Itinerary is an ordered sequence of one or two flight legs forming a
// bookable route on a single calendar date.  Itineraries are derived
// from search results and are never persisted; a booking stores one
// reservation row per leg instead.
//
// A one-leg itinerary is a direct route.  A two-leg itinerary is a
// one-connection route whose first leg lands in the city the second
// leg departs from.  Carriers may differ between legs.
type Itinerary struct {
	Legs []Flight `json:"legs"`
}

// TotalTime returns the summed actual flight time of all legs in
// minutes.  It is the sole ranking key for search results.
func (it Itinerary) TotalTime() int {
	total := 0
	for _, leg := range it.Legs {
		total += leg.ActualTime
	}
	return total
}

// Date returns the calendar date shared by all legs.  Valid itineraries
// never mix dates, which Validate enforces.
func (it Itinerary) Date() Date {
	if len(it.Legs) == 0 {
		return Date{}
	}
	return it.Legs[0].Date()
}

var (
	// ErrEmptyItinerary is returned when an itinerary has no legs.
	ErrEmptyItinerary = errors.New("itinerary has no legs")
	// ErrTooManyLegs is returned when an itinerary has more than two legs.
	ErrTooManyLegs = errors.New("itinerary has more than two legs")
	// ErrMixedDates is returned when legs fall on different calendar dates.
	ErrMixedDates = errors.New("itinerary legs are on different dates")
	// ErrBrokenConnection is returned when the first leg does not land in
	// the city the second leg departs from.
	ErrBrokenConnection = errors.New("itinerary legs do not connect")
	// ErrDuplicateLeg is returned when both legs are the same flight.
	ErrDuplicateLeg = errors.New("itinerary uses the same flight twice")
)

// Validate checks the structural invariants of an itinerary: one or
// two distinct legs, all on the same date, and for two legs a matching
// connection city.  The distinctness check matters for flights whose
// origin equals their destination, where the same leg twice would
// otherwise chain.  Booking rejects anything that fails here before a
// transaction is ever opened.
func (it Itinerary) Validate() error {
	switch {
	case len(it.Legs) == 0:
		return ErrEmptyItinerary
	case len(it.Legs) > 2:
		return ErrTooManyLegs
	}
	first := it.Legs[0]
	for _, leg := range it.Legs[1:] {
		if leg.Date() != first.Date() {
			return ErrMixedDates
		}
	}
	if len(it.Legs) == 2 {
		if it.Legs[0].ID == it.Legs[1].ID {
			return ErrDuplicateLeg
		}
		if it.Legs[0].DestCity != it.Legs[1].OriginCity {
			return ErrBrokenConnection
		}
	}
	return nil
}
