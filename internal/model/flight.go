package model

// Flight represents one scheduled flight leg as stored in the
// `flights` table, with the carrier name joined in from `carriers`.
// Flight rows are loaded by an external data import and are never
// mutated by this service.
//
// Fields:
//  ID         – primary key identifier of the flight.
//  Carrier    – carrier display name (carriers.name).
//  FlightNum  – carrier-assigned flight number.
//  OriginCity – departure city, e.g. "Seattle WA".
//  DestCity   – arrival city, e.g. "Boston MA".
//  Year       – calendar year of departure.
//  Month      – month of year (1-12).
//  DayOfMonth – day of month (1-31).
//  ActualTime – elapsed flight time in minutes.  Rows with an
//               unknown actual time are excluded from search and
//               never reach this struct.
type Flight struct {
	ID         uint64 `json:"id"`           // flights.id
	Carrier    string `json:"carrier"`      // carriers.name
	FlightNum  string `json:"flight_num"`   // flights.flight_num
	OriginCity string `json:"origin_city"`  // flights.origin_city
	DestCity   string `json:"dest_city"`    // flights.dest_city
	Year       int    `json:"year"`         // flights.year
	Month      int    `json:"month"`        // flights.month
	DayOfMonth int    `json:"day_of_month"` // flights.day_of_month
	ActualTime int    `json:"actual_time"`  // flights.actual_time (minutes)
}

// Date is the calendar date a flight departs on.  Flights store the
// date as three integer columns, so the service passes dates around in
// the same decomposed form rather than as time.Time.
type Date struct {
	Year       int `json:"year"`
	Month      int `json:"month"`
	DayOfMonth int `json:"day_of_month"`
}

// Date returns the calendar date of the flight.
func (f Flight) Date() Date {
	return Date{Year: f.Year, Month: f.Month, DayOfMonth: f.DayOfMonth}
}
