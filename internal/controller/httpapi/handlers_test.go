package httpapi

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReservations struct {
	mu    sync.Mutex
	slots map[int64]*model.Slot
	dates []string
}

func newFakeReservations() *fakeReservations {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &fakeReservations{slots: map[int64]*model.Slot{
		1: {ID: 1, When: base, Service: model.DefaultService},
		2: {ID: 2, When: base.Add(time.Hour), Service: model.DefaultService},
	}}
}

func (f *fakeReservations) ListAvailable(_ context.Context, date string) []*model.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dates = append(f.dates, date)
	out := make([]*model.Slot, 0)
	for id := int64(1); id <= int64(len(f.slots)); id++ {
		if s := f.slots[id]; s != nil && s.IsAvailable() {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeReservations) ListBookings(context.Context) []*model.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Slot, 0)
	for id := int64(1); id <= int64(len(f.slots)); id++ {
		if s := f.slots[id]; s != nil && !s.IsAvailable() {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeReservations) ListRange(_ context.Context, from, to time.Time) []*model.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Slot, 0)
	for id := int64(1); id <= int64(len(f.slots)); id++ {
		if s := f.slots[id]; s != nil && !s.When.Before(from) && s.When.Before(to) {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeReservations) FindSlot(_ context.Context, id int64) *model.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[id]
}

func (f *fakeReservations) Book(_ context.Context, id int64, name, service string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.slots[id]
	if s == nil || !s.IsAvailable() {
		return false
	}
	s.Customer = &name
	s.Service = service
	return true
}

func (f *fakeReservations) CancelBySlot(_ context.Context, id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.slots[id]
	if s == nil || s.IsAvailable() {
		return false
	}
	s.Customer = nil
	s.Service = model.DefaultService
	return true
}

func (f *fakeReservations) CancelByCustomer(_ context.Context, name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.slots {
		if s.Customer != nil && strings.EqualFold(*s.Customer, name) {
			s.Customer = nil
			s.Service = model.DefaultService
			n++
		}
	}
	return n
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeReservations) {
	t.Helper()
	res := newFakeReservations()
	srv := httptest.NewServer(NewRouter(&App{
		Reservations: res,
		APIToken:     "secret",
		Logger:       zap.NewNop(),
	}))
	t.Cleanup(srv.Close)
	return srv, res
}

func doJSON(t *testing.T, method, url, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
}

func TestListSlots(t *testing.T) {
	srv, res := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/chat/turnos?date=2026-03-01", "", nil)
	require.Equal(t, http.StatusOK, status)

	turnos, ok := body["turnos"].([]any)
	require.True(t, ok)
	require.Len(t, turnos, 2)

	first := turnos[0].(map[string]any)
	assert.Equal(t, float64(1), first["id"])
	assert.Equal(t, "2026-03-01 10:00", first["datetime"])
	assert.Equal(t, model.DefaultService, first["service"])
	assert.Nil(t, first["customer"])

	assert.Equal(t, []string{"2026-03-01"}, res.dates)
}

func TestListSlotsRejectsMalformedDate(t *testing.T) {
	srv, res := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/chat/turnos?date=01/03/2026", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "YYYY-MM-DD")
	assert.Empty(t, res.dates)
}

func TestGetSlot(t *testing.T) {
	srv, _ := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/chat/turnos/2", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2026-03-01 11:00", body["datetime"])

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/chat/turnos/99", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/chat/turnos/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBook(t *testing.T) {
	srv, res := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/chat/reservar",
		`{"slot_id": 1, "name": "  Ana ", "service": "corte"}`, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])

	slot := res.FindSlot(context.Background(), 1)
	require.NotNil(t, slot)
	assert.Equal(t, "Ana", slot.CustomerName())
	assert.Equal(t, "Corte", slot.Service)

	status, body = doJSON(t, http.MethodPost, srv.URL+"/chat/reservar",
		`{"slot_id": "1", "name": "Luis"}`, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "slot not available", body["error"])
	assert.Equal(t, "Ana", res.FindSlot(context.Background(), 1).CustomerName())
}

func TestBookAccentedNameAtLimit(t *testing.T) {
	srv, res := newTestServer(t)
	name := "José Muñoz " + strings.Repeat("ñ", model.MaxCustomerNameLength-len([]rune("José Muñoz ")))

	status, body := doJSON(t, http.MethodPost, srv.URL+"/chat/reservar",
		`{"slot_id": 2, "name": "`+name+`"}`, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, name, res.FindSlot(context.Background(), 2).CustomerName())
}

func TestBookValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"slot_id":`},
		{"missing slot_id", `{"name": "Ana"}`},
		{"missing name", `{"slot_id": 1}`},
		{"blank name", `{"slot_id": 1, "name": "   "}`},
		{"long name", `{"slot_id": 1, "name": "` + strings.Repeat("x", model.MaxCustomerNameLength+1) + `"}`},
		{"long accented name", `{"slot_id": 1, "name": "` + strings.Repeat("ñ", model.MaxCustomerNameLength+1) + `"}`},
		{"unknown service", `{"slot_id": 1, "name": "Ana", "service": "Masaje"}`},
		{"fractional id", `{"slot_id": 1.5, "name": "Ana"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, http.MethodPost, srv.URL+"/chat/reservar", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestCancel(t *testing.T) {
	srv, res := newTestServer(t)
	ctx := context.Background()

	require.True(t, res.Book(ctx, 1, "Maria", "Tinte"))
	require.True(t, res.Book(ctx, 2, "maria", "Corte"))

	status, body := doJSON(t, http.MethodPost, srv.URL+"/chat/cancelar", `{"slot_id": 1}`, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.True(t, res.FindSlot(ctx, 1).IsAvailable())

	status, body = doJSON(t, http.MethodPost, srv.URL+"/chat/cancelar", `{"slot_id": 1}`, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["ok"])

	status, body = doJSON(t, http.MethodPost, srv.URL+"/chat/cancelar", `{"name": "MARIA"}`, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["cancelados"])

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/chat/cancelar", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/chat/cancelar", `{"name": " "}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestListBookingsRequiresToken(t *testing.T) {
	srv, res := newTestServer(t)
	require.True(t, res.Book(context.Background(), 2, "Juan", "Barba"))

	status, _ := doJSON(t, http.MethodGet, srv.URL+"/chat/reservas", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/chat/reservas", "", map[string]string{apiTokenHeader: "wrong"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/chat/reservas", "", map[string]string{apiTokenHeader: "secret"})
	require.Equal(t, http.StatusOK, status)

	reservas, ok := body["reservas"].([]any)
	require.True(t, ok)
	require.Len(t, reservas, 1)
	assert.Equal(t, "Juan", reservas[0].(map[string]any)["customer"])
	assert.Equal(t, "Barba", reservas[0].(map[string]any)["service"])
}

func TestAgendaImage(t *testing.T) {
	srv, res := newTestServer(t)
	require.True(t, res.Book(context.Background(), 1, "Ana", "Corte"))

	resp, err := http.Get(srv.URL + "/chat/agenda.png?date=2026-03-01")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	_, err = png.Decode(resp.Body)
	require.NoError(t, err)

	status, _ := doJSON(t, http.MethodGet, srv.URL+"/chat/agenda.png?date=tomorrow", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/chat/reservar", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
