// Package contactservice coordinates storage, index, and scheduler
// operations over the contact vault.
package contactservice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/halvard/gebo/internal/apperr"
	"github.com/halvard/gebo/internal/checksum"
	"github.com/halvard/gebo/internal/contacts"
	"github.com/halvard/gebo/internal/index"
	"github.com/halvard/gebo/internal/models"
	"github.com/halvard/gebo/internal/outline"
	"github.com/halvard/gebo/internal/recurrence"
	"github.com/halvard/gebo/internal/scheduler"
	"github.com/halvard/gebo/internal/storage"
)

// DocumentDetail is the full representation of one vault document.
type DocumentDetail struct {
	Path      string            `json:"path"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Checksum  string            `json:"checksum"`
	Tags      []string          `json:"tags"`
	Contact   *models.Contact   `json:"contact,omitempty"`
	Reminders []models.Reminder `json:"reminders"`
}

// ContactListItem is a lightweight item in a list response.
type ContactListItem struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Birthday  string    `json:"birthday,omitempty"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BirthdayEntry is one upcoming birthday.
type BirthdayEntry struct {
	Path string    `json:"path"`
	Name string    `json:"name"`
	Next time.Time `json:"next"`
}

// BatchResult reports the outcome of scheduling one document during a
// batch run.
type BatchResult struct {
	Path    string `json:"path"`
	Created int    `json:"created"`
	Error   string `json:"error,omitempty"`
}

// Service coordinates vault, index, and scheduler operations.
type Service struct {
	store  storage.Provider
	db     index.DocumentIndex
	cfg    scheduler.Config
	sched  *scheduler.Scheduler
	now    func() time.Time
	notify func(kind, path string)
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotify sets a callback invoked after reminder-creating mutations,
// e.g. to feed the SSE broker.
func WithNotify(fn func(kind, path string)) Option {
	return func(s *Service) { s.notify = fn }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a contact service with the given scheduling
// configuration.
func NewService(store storage.Provider, db index.DocumentIndex, cfg scheduler.Config, opts ...Option) *Service {
	s := &Service{
		store:  store,
		db:     db,
		cfg:    cfg,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sched = scheduler.New(cfg, scheduler.WithClock(s.now))
	return s
}

// GetDocument reads a document from storage, parses it, and enriches it
// with the contact view and current reminders.
func (s *Service) GetDocument(_ context.Context, path string) (*DocumentDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	doc, err := outline.Parse(data)
	if err != nil {
		return nil, err
	}
	doc.Path = path

	detail := &DocumentDetail{
		Path:      path,
		Title:     doc.Title(),
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Tags:      nonNilSlice(doc.Tags()),
		Reminders: nonNilSlice(s.sched.Reminders(doc)),
	}
	// The contact view is best-effort: non-contact or incomplete
	// documents still render as plain documents.
	if c, err := contacts.FromDocument(doc, s.cfg.ContactTag, s.cfg.Keys); err == nil {
		detail.Contact = c
	}
	return detail, nil
}

// ListContacts returns paginated contact documents (those carrying the
// contact tag).
func (s *Service) ListContacts(_ context.Context, limit, offset int) ([]ContactListItem, int, error) {
	rows, total, err := s.db.ListDocuments(limit, offset, s.cfg.ContactTag)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ContactListItem, len(rows))
	for i, r := range rows {
		items[i] = ContactListItem{
			Path:      r.Path,
			Name:      r.Title,
			Birthday:  r.Birthday,
			Tags:      nonNilSlice(r.Tags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// ScheduleReminders runs birthday reminder scheduling for one document
// and persists the result when anything was created.
func (s *Service) ScheduleReminders(_ context.Context, path string, advanceDays int) ([]models.Reminder, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	doc, err := outline.Parse(data)
	if err != nil {
		return nil, err
	}
	doc.Path = path

	created, err := s.sched.ScheduleBirthdayReminders(doc, advanceDays)
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, nil
	}

	out := doc.Bytes()
	if err := s.store.Write(path, out); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, out); err != nil {
		return nil, err
	}
	if s.notify != nil {
		s.notify("reminder-created", path)
	}
	return created, nil
}

// ScheduleAll runs birthday reminder scheduling across the whole vault.
// One bad document never aborts the batch: its failure is recorded and
// the run continues.
func (s *Service) ScheduleAll(ctx context.Context, advanceDays int) ([]BatchResult, error) {
	metas, err := s.store.List("")
	if err != nil {
		return nil, err
	}

	var results []BatchResult
	for _, m := range metas {
		created, err := s.ScheduleReminders(ctx, m.Path, advanceDays)
		res := BatchResult{Path: m.Path, Created: len(created)}
		if err != nil {
			res.Error = err.Error()
			s.logger.Warn("schedule: document failed",
				slog.String("path", m.Path),
				slog.String("error", err.Error()))
		}
		if res.Created > 0 || res.Error != "" {
			results = append(results, res)
		}
	}
	return results, nil
}

// InsertReminder unconditionally appends one scheduled sub-heading
// under the reminders heading of the document and persists it.
func (s *Service) InsertReminder(_ context.Context, path, text string, at time.Time, repeatYears int) (*models.Reminder, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	doc, err := outline.Parse(data)
	if err != nil {
		return nil, err
	}
	doc.Path = path

	r := s.sched.InsertReminder(doc, text, at, repeatYears)

	out := doc.Bytes()
	if err := s.store.Write(path, out); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, out); err != nil {
		return nil, err
	}
	if s.notify != nil {
		s.notify("reminder-created", path)
	}
	return &r, nil
}

// UpcomingBirthdays lists contacts whose next birthday falls within the
// given number of days from now, soonest first.
func (s *Service) UpcomingBirthdays(_ context.Context, withinDays int) ([]BirthdayEntry, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	rows, err := s.db.FindByTag(s.cfg.ContactTag)
	if err != nil {
		return nil, err
	}

	now := s.now()
	horizon := now.AddDate(0, 0, withinDays)

	var out []BirthdayEntry
	for _, r := range rows {
		if r.Birthday == "" {
			continue
		}
		bd, err := contacts.ParseDate(r.Birthday)
		if err != nil {
			s.logger.Warn("birthdays: bad value",
				slog.String("path", r.Path),
				slog.String("error", err.Error()))
			continue
		}
		// Project the birthday into the current year first, then let
		// NextAnnual roll it into next year if it already passed.
		candidate := time.Date(now.Year(), bd.Month(), bd.Day(), bd.Hour(), bd.Minute(), bd.Second(), 0, now.Location())
		next := recurrence.NextAnnual(candidate, now)
		if next.After(horizon) {
			continue
		}
		out = append(out, BirthdayEntry{Path: r.Path, Name: r.Title, Next: next})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Next.Before(out[j].Next) })
	return out, nil
}

// ManagedProperties returns the configured contact property key names.
func (s *Service) ManagedProperties() []string {
	return s.sched.ManagedProperties()
}

// IndexFile parses data and upserts it into the index.
// Exported so the entry point can reuse it after mutations.
func (s *Service) IndexFile(path string, data []byte) error {
	doc, err := outline.Parse(data)
	if err != nil {
		return err
	}
	doc.Path = path

	birthday, _ := contacts.Property(doc, s.cfg.Keys.Birthday)
	props := make(map[string]string, len(doc.Frontmatter))
	for key := range doc.Frontmatter {
		if key == "title" || key == "tags" {
			continue
		}
		if v, ok := contacts.Property(doc, key); ok {
			props[key] = v
		}
	}

	return s.db.UpsertDocument(index.DocRow{
		Path:      path,
		Title:     doc.Title(),
		Checksum:  checksum.Sum(data),
		Tags:      nonNilSlice(doc.Tags()),
		Birthday:  birthday,
		UpdatedAt: s.now(),
	}, props)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
