package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/agenda"
	"go.uber.org/zap"
)

// GET /chat/agenda.png?date=YYYY-MM-DD
// Картинка недели, в которую попадает date (по умолчанию текущая).
func (a *App) agendaHandler(w http.ResponseWriter, r *http.Request) {
	now := wallClock(time.Now())

	day := now
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
			return
		}
		day = parsed
	}

	week := agenda.WeekOf(day)
	slots := a.Reservations.ListRange(r.Context(), week.Start, week.End)

	img, err := agenda.RenderWeek(week, slots, now)
	if err != nil {
		a.Logger.Error("Failed to render agenda", zap.Time("week", week.Start), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render agenda")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

// wallClock переносит время в UTC без сдвига: слоты хранятся без часового пояса
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
