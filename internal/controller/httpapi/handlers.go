package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/slot_booking/internal/formatting"
	"github.com/Freeeeeet/slot_booking/internal/model"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 16

type slotResponse struct {
	ID       int64   `json:"id"`
	DateTime string  `json:"datetime"`
	Service  string  `json:"service"`
	Customer *string `json:"customer"`
}

type bookRequest struct {
	SlotID  *slotID `json:"slot_id"`
	Name    *string `json:"name"`
	Service string  `json:"service"`
}

type cancelRequest struct {
	SlotID *slotID `json:"slot_id"`
	Name   *string `json:"name"`
}

// slotID принимает и число, и строку с числом: {"slot_id": 3} / {"slot_id": "3"}
type slotID int64

func (s *slotID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("slot_id must be an integer")
	}
	v, err := n.Int64()
	if err != nil {
		return errors.New("slot_id must be an integer")
	}
	*s = slotID(v)
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func toSlotResponse(slot *model.Slot) slotResponse {
	return slotResponse{
		ID:       slot.ID,
		DateTime: formatting.FormatDateTime(slot.When),
		Service:  slot.Service,
		Customer: slot.Customer,
	}
}

func toSlotResponses(slots []*model.Slot) []slotResponse {
	out := make([]slotResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, toSlotResponse(slot))
	}
	return out
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// GET /chat/turnos?date=YYYY-MM-DD
func (a *App) listSlotsHandler(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
			return
		}
	}

	slots := a.Reservations.ListAvailable(r.Context(), date)
	a.Logger.Debug("Slots listed", zap.String("date", date), zap.Int("count", len(slots)))

	writeJSON(w, http.StatusOK, map[string]any{"turnos": toSlotResponses(slots)})
}

// GET /chat/turnos/{slot_id}
func (a *App) getSlotHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "slot_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "slot_id must be an integer")
		return
	}

	slot := a.Reservations.FindSlot(r.Context(), id)
	if slot == nil {
		writeError(w, http.StatusNotFound, "slot not found")
		return
	}

	writeJSON(w, http.StatusOK, toSlotResponse(slot))
}

// GET /chat/reservas
func (a *App) listBookingsHandler(w http.ResponseWriter, r *http.Request) {
	bookings := a.Reservations.ListBookings(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"reservas": toSlotResponses(bookings)})
}

// POST /chat/reservar {"slot_id": 1, "name": "Ana", "service": "Corte"}
func (a *App) bookHandler(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.SlotID == nil || req.Name == nil {
		writeError(w, http.StatusBadRequest, "slot_id and name are required")
		return
	}

	name := strings.TrimSpace(*req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name must be a non-empty string")
		return
	}
	if utf8.RuneCountInString(name) > model.MaxCustomerNameLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("name must not exceed %d characters", model.MaxCustomerNameLength))
		return
	}

	service, ok := model.CanonicalService(req.Service)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid service, allowed: "+strings.Join(model.AllowedServices, ", "))
		return
	}

	id := int64(*req.SlotID)
	if !a.Reservations.Book(r.Context(), id, name, service) {
		a.Logger.Info("Booking rejected", zap.Int64("slot_id", id), zap.String("customer", name))
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "slot not available"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// POST /chat/cancelar {"slot_id": 1} или {"name": "Ana"}
func (a *App) cancelHandler(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case req.SlotID != nil:
		ok := a.Reservations.CancelBySlot(r.Context(), int64(*req.SlotID))
		writeJSON(w, http.StatusOK, map[string]any{"ok": ok})

	case req.Name != nil:
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name must be a non-empty string")
			return
		}
		n := a.Reservations.CancelByCustomer(r.Context(), name)
		writeJSON(w, http.StatusOK, map[string]any{"cancelados": n})

	default:
		writeError(w, http.StatusBadRequest, "provide slot_id or name to cancel")
	}
}
