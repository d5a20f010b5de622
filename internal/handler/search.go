package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yuri-shui/FlightBooking/internal/model"
)

// ItinerarySearcher is the slice of the flight repository the search
// handler needs.  Declaring the interface here keeps the handler
// testable against a mock while the repository stays a plain struct.
type ItinerarySearcher interface {
	SearchItineraries(ctx context.Context, date model.Date, originCity, destCity string) ([]model.Itinerary, error)
}

// SearchHandler serves the public itinerary search endpoint.
type SearchHandler struct {
	Flights ItinerarySearcher
}

// NewSearchHandler constructs a SearchHandler.  The searcher must be non-nil.
func NewSearchHandler(flights ItinerarySearcher) *SearchHandler {
	if flights == nil {
		panic("nil searcher passed to NewSearchHandler")
	}
	return &SearchHandler{Flights: flights}
}

// itineraryItem is the JSON projection of one ranked itinerary.
type itineraryItem struct {
	TotalTime int            `json:"total_time"`
	Legs      []model.Flight `json:"legs"`
}

// Search handles GET /v1/itineraries?date=YYYY-MM-DD&origin=...&dest=...
// It returns direct and one-connection itineraries between the two
// cities on the date, ordered by ascending total flight time and capped
// at 99 entries.  City names match the catalog exactly ("Seattle WA").
func (h *SearchHandler) Search(c echo.Context) error {
	dateStr := strings.TrimSpace(c.QueryParam("date"))
	origin := strings.TrimSpace(c.QueryParam("origin"))
	dest := strings.TrimSpace(c.QueryParam("dest"))
	if dateStr == "" || origin == "" || dest == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date, origin and dest are required"})
	}
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	date := model.Date{Year: t.Year(), Month: int(t.Month()), DayOfMonth: t.Day()}

	results, err := h.Flights.SearchItineraries(c.Request().Context(), date, origin, dest)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}

	items := make([]itineraryItem, 0, len(results))
	for _, it := range results {
		items = append(items, itineraryItem{TotalTime: it.TotalTime(), Legs: it.Legs})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"count": len(items),
	})
}
