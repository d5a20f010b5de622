// Package queue defines message payloads exchanged over the message broker.
package queue

// BookedLeg is one reserved flight inside a confirmed booking event.
type BookedLeg struct {
	FlightID   uint64 `json:"flight_id"`
	Carrier    string `json:"carrier"`
	FlightNum  string `json:"flight_num"`
	OriginCity string `json:"origin_city"`
	DestCity   string `json:"dest_city"`
}

// BookingConfirmedEvent is published when an itinerary booking commits.
// It carries enough information for downstream consumers to log, notify
// or feed analytics without querying the primary database.
type BookingConfirmedEvent struct {
	UserID      uint64      `json:"user_id"`
	Handle      string      `json:"handle"`
	Date        string      `json:"date"` // YYYY-MM-DD
	Legs        []BookedLeg `json:"legs"`
	TotalTime   int         `json:"total_time_minutes"`
	ConfirmedAt string      `json:"confirmed_at"`
}
