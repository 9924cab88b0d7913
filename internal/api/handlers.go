package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/halvard/gebo/internal/apperr"
	"github.com/halvard/gebo/internal/contacts"
	"github.com/halvard/gebo/internal/contactservice"
	"github.com/halvard/gebo/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *contactservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *contactservice.Service) *Handler {
	return &Handler{svc: svc}
}

// docPath extracts the document path from the URL (everything after /api/contacts/).
// Supports encoded slashes from OpenAPI clients (e.g. people%2Fjane.md).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListContacts handles GET /api/contacts.
//
//	@Summary		List contact documents with optional pagination
//	@Tags			contacts
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/contacts [get]
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListContacts(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list contacts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"contacts": items,
		"total":    total,
	})
}

// GetContact handles GET /api/contacts/*.
//
//	@Summary		Get a single contact document by path
//	@Tags			contacts
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	contactservice.DocumentDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts/{path} [get]
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get contact failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// ScheduleBirthdays handles POST /api/reminders/birthdays.
//
//	@Summary		Schedule birthday reminders for one contact document
//	@Tags			reminders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		object	true	"Path and advance days"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reminders/birthdays [post]
func (h *Handler) ScheduleBirthdays(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Path        string `json:"path"`
		AdvanceDays int    `json:"advance_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if req.AdvanceDays < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("advance_days must not be negative"))
		return
	}

	created, err := h.svc.ScheduleReminders(r.Context(), req.Path, req.AdvanceDays)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrBadPropertyValue), errors.Is(err, apperr.ErrMissingName):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		default:
			slog.Error("schedule birthdays failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if created == nil {
		created = []models.Reminder{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"created": created,
	})
}

// ScheduleBirthdaysBatch handles POST /api/reminders/birthdays/batch.
//
//	@Summary		Schedule birthday reminders across the whole vault
//	@Tags			reminders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		object	true	"Advance days"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reminders/birthdays/batch [post]
func (h *Handler) ScheduleBirthdaysBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		AdvanceDays int `json:"advance_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.AdvanceDays < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("advance_days must not be negative"))
		return
	}

	results, err := h.svc.ScheduleAll(r.Context(), req.AdvanceDays)
	if err != nil {
		slog.Error("batch schedule failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []contactservice.BatchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// InsertReminder handles POST /api/reminders.
//
//	@Summary		Insert a one-off or repeating reminder into a document
//	@Tags			reminders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		object	true	"Path, heading text, date, repeat years"
//	@Success		201		{object}	models.Reminder
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reminders [post]
func (h *Handler) InsertReminder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Path        string `json:"path"`
		Text        string `json:"text"`
		Date        string `json:"date"`
		RepeatYears int    `json:"repeat_years"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Text == "" || req.Date == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path, text, and date are required"))
		return
	}
	at, err := contacts.ParseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date: "+req.Date))
		return
	}
	if req.RepeatYears < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("repeat_years must not be negative"))
		return
	}

	rem, err := h.svc.InsertReminder(r.Context(), req.Path, req.Text, at, req.RepeatYears)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("insert reminder failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, rem)
}

// UpcomingBirthdays handles GET /api/birthdays.
//
//	@Summary		List upcoming birthdays within a horizon
//	@Tags			birthdays
//	@Produce		json
//	@Param			within	query		int	false	"Horizon in days (default 30)"
//	@Success		200		{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/birthdays [get]
func (h *Handler) UpcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	within, _ := strconv.Atoi(r.URL.Query().Get("within"))

	entries, err := h.svc.UpcomingBirthdays(r.Context(), within)
	if err != nil {
		slog.Error("upcoming birthdays failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if entries == nil {
		entries = []contactservice.BirthdayEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"birthdays": entries,
	})
}

// ManagedProperties handles GET /api/properties.
//
//	@Summary		List the managed contact property keys
//	@Tags			properties
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/properties [get]
func (h *Handler) ManagedProperties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"properties": h.svc.ManagedProperties(),
	})
}
