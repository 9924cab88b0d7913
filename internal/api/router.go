package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/halvard/gebo/internal/contactservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *contactservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Contact documents.
	r.Get("/contacts", h.ListContacts)
	r.Get("/contacts/*", h.GetContact)

	// Reminder scheduling.
	r.Post("/reminders", h.InsertReminder)
	r.Post("/reminders/birthdays", h.ScheduleBirthdays)
	r.Post("/reminders/birthdays/batch", h.ScheduleBirthdaysBatch)

	// Birthday agenda.
	r.Get("/birthdays", h.UpcomingBirthdays)

	// Managed property keys.
	r.Get("/properties", h.ManagedProperties)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
