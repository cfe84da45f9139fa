package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter собирает chi-роутер со всеми маршрутами
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(app.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", apiTokenHeader},
	}))

	RegisterRoutes(r, app)
	return r
}

func RegisterRoutes(r chi.Router, app *App) {
	r.Get("/healthz", healthHandler)

	r.Route("/chat", func(r chi.Router) {
		r.Get("/turnos", app.listSlotsHandler)
		r.Get("/turnos/{slot_id}", app.getSlotHandler)
		r.Get("/agenda.png", app.agendaHandler)
		r.Post("/reservar", app.bookHandler)
		r.Post("/cancelar", app.cancelHandler)

		r.With(requireToken(app.APIToken)).Get("/reservas", app.listBookingsHandler)
	})
}
