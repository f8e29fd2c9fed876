package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/robertarktes/restaurant-reservations/internal/booking"
	"github.com/robertarktes/restaurant-reservations/internal/domain"
	"github.com/robertarktes/restaurant-reservations/internal/observability"
)

type Handlers struct {
	availability *booking.Availability
	scheduler    *booking.Scheduler
	reservations *booking.Reservations
	restaurants  domain.RestaurantRepository
	sectors      domain.SectorRepository
	logger       observability.Logger
}

func NewHandlers(
	availability *booking.Availability,
	scheduler *booking.Scheduler,
	reservations *booking.Reservations,
	restaurants domain.RestaurantRepository,
	sectors domain.SectorRepository,
	logger observability.Logger,
) *Handlers {
	return &Handlers{
		availability: availability,
		scheduler:    scheduler,
		reservations: reservations,
		restaurants:  restaurants,
		sectors:      sectors,
		logger:       logger,
	}
}

type customerJSON struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type reservationJSON struct {
	ID           uuid.UUID    `json:"id"`
	RestaurantID string       `json:"restaurantId"`
	SectorID     string       `json:"sectorId"`
	TableIDs     []string     `json:"tableIds"`
	PartySize    int          `json:"partySize"`
	Start        time.Time    `json:"start"`
	End          time.Time    `json:"end"`
	Status       string       `json:"status"`
	Customer     customerJSON `json:"customer"`
	Notes        string       `json:"notes,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func toReservationJSON(r domain.Reservation) reservationJSON {
	return reservationJSON{
		ID:           r.ID,
		RestaurantID: r.RestaurantID,
		SectorID:     r.SectorID,
		TableIDs:     r.TableIDs,
		PartySize:    r.PartySize,
		Start:        r.StartAt,
		End:          r.EndAt,
		Status:       string(r.Status),
		Customer: customerJSON{
			Name:      r.Customer.Name,
			Phone:     r.Customer.Phone,
			Email:     r.Customer.Email,
			CreatedAt: r.Customer.CreatedAt,
			UpdatedAt: r.Customer.UpdatedAt,
		},
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (h *Handlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")

	var req struct {
		RestaurantID string `json:"restaurantId"`
		SectorID     string `json:"sectorId"`
		PartySize    int    `json:"partySize"`
		Start        string `json:"start"`
		Customer     struct {
			Name  string `json:"name"`
			Phone string `json:"phone"`
			Email string `json:"email"`
		} `json:"customer"`
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.Wrap(domain.ErrValidation, "malformed JSON body"))
		return
	}
	if req.RestaurantID == "" || req.SectorID == "" || req.Start == "" {
		h.writeError(w, r, errors.Wrap(domain.ErrValidation, "restaurantId, sectorId and start are required"))
		return
	}
	if req.Customer.Name == "" || req.Customer.Phone == "" || req.Customer.Email == "" {
		h.writeError(w, r, errors.Wrap(domain.ErrValidation, "customer must have name, phone and email"))
		return
	}

	reservation, err := h.scheduler.Create(r.Context(), booking.CreateInput{
		RestaurantID: req.RestaurantID,
		SectorID:     req.SectorID,
		PartySize:    req.PartySize,
		Start:        req.Start,
		Customer: booking.CustomerInput{
			Name:  req.Customer.Name,
			Phone: req.Customer.Phone,
			Email: req.Customer.Email,
		},
		Notes:          req.Notes,
		IdempotencyKey: key,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReservationJSON(*reservation))
}

func (h *Handlers) GetAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	restaurantID := q.Get("restaurantId")
	sectorID := q.Get("sectorId")
	dateStr := q.Get("date")
	partySizeStr := q.Get("partySize")
	if restaurantID == "" || sectorID == "" || dateStr == "" || partySizeStr == "" {
		h.writeError(w, r, errors.Wrap(domain.ErrValidation,
			"missing required query parameters: restaurantId, sectorId, date, partySize"))
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		h.writeError(w, r, errors.Wrap(domain.ErrValidation, "date must be in YYYY-MM-DD format"))
		return
	}
	partySize, err := strconv.Atoi(partySizeStr)
	if err != nil || partySize < 1 {
		h.writeError(w, r, errors.Wrap(domain.ErrValidation, "partySize must be a positive integer"))
		return
	}

	report, err := h.availability.Check(r.Context(), booking.AvailabilityInput{
		RestaurantID: restaurantID,
		SectorID:     sectorID,
		Date:         date,
		PartySize:    partySize,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	type slotJSON struct {
		Start     time.Time `json:"start"`
		Available bool      `json:"available"`
		Tables    []string  `json:"tables,omitempty"`
		Reason    string    `json:"reason,omitempty"`
	}
	resp := struct {
		SlotMinutes     int        `json:"slotMinutes"`
		DurationMinutes int        `json:"durationMinutes"`
		Slots           []slotJSON `json:"slots"`
	}{
		SlotMinutes:     report.SlotMinutes,
		DurationMinutes: report.DurationMinutes,
		Slots:           make([]slotJSON, 0, len(report.Slots)),
	}
	for _, s := range report.Slots {
		resp.Slots = append(resp.Slots, slotJSON{
			Start:     s.Start,
			Available: s.Available,
			Tables:    s.TableIDs,
			Reason:    s.Reason,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	restaurantID := q.Get("restaurantId")
	dateStr := q.Get("date")
	if restaurantID == "" || dateStr == "" {
		h.writeError(w, r, errors.Wrap(domain.ErrValidation,
			"missing required query parameters: restaurantId, date"))
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		h.writeError(w, r, errors.Wrap(domain.ErrValidation, "date must be in YYYY-MM-DD format"))
		return
	}

	items, err := h.reservations.List(r.Context(), restaurantID, date, q.Get("sectorId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]reservationJSON, 0, len(items))
	for _, item := range items {
		out = append(out, toReservationJSON(item))
	}
	writeJSON(w, http.StatusOK, struct {
		Date  string            `json:"date"`
		Items []reservationJSON `json:"items"`
	}{Date: dateStr, Items: out})
}

func (h *Handlers) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, errors.Wrap(domain.ErrValidation, "invalid reservation id"))
		return
	}
	if err := h.reservations.Cancel(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.restaurants.FindAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	type shiftJSON struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	type restaurantJSON struct {
		ID       string      `json:"id"`
		Name     string      `json:"name"`
		Timezone string      `json:"timezone"`
		Shifts   []shiftJSON `json:"shifts,omitempty"`
	}
	out := make([]restaurantJSON, 0, len(restaurants))
	for _, restaurant := range restaurants {
		rj := restaurantJSON{ID: restaurant.ID, Name: restaurant.Name, Timezone: restaurant.Timezone}
		for _, shift := range restaurant.Shifts {
			rj.Shifts = append(rj.Shifts, shiftJSON{Start: shift.Start, End: shift.End})
		}
		out = append(out, rj)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) ListSectors(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "id")
	if _, err := h.restaurants.FindByID(r.Context(), restaurantID); err != nil {
		h.writeError(w, r, err)
		return
	}
	sectors, err := h.sectors.FindByRestaurantID(r.Context(), restaurantID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	type sectorJSON struct {
		ID           string `json:"id"`
		RestaurantID string `json:"restaurantId"`
		Name         string `json:"name"`
	}
	out := make([]sectorJSON, 0, len(sectors))
	for _, sector := range sectors {
		out = append(out, sectorJSON{ID: sector.ID, RestaurantID: sector.RestaurantID, Name: sector.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
