package main

import (
	"fmt"
	"net/http"
	"time"

	"tarelka/internal/booking"

	"github.com/go-chi/chi/v5"
)

// bookingSlotsHandler proxies table availability for one restaurant. The
// date query defaults to today so the mini-app can render the picker
// without an extra round trip.
func (app *application) bookingSlotsHandler(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantID")

	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw))
			return
		}
		date = parsed
	}

	slots, err := app.booking.Slots(r.Context(), restaurantID, date)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := struct {
		Restaurant string         `json:"restaurant"`
		Date       string         `json:"date"`
		Slots      []booking.Slot `json:"slots"`
	}{
		Restaurant: restaurantID,
		Date:       date.Format("2006-01-02"),
		Slots:      slots,
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
