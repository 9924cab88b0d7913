// Package scheduler decides which reminders a contact document needs
// and materializes them as scheduled headings, without duplication.
package scheduler

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/halvard/gebo/internal/apperr"
	"github.com/halvard/gebo/internal/contacts"
	"github.com/halvard/gebo/internal/models"
	"github.com/halvard/gebo/internal/outline"
	"github.com/halvard/gebo/internal/recurrence"
)

// Config holds the scheduling configuration: the contact-tag gate, the
// managed property keys, and the heading templates.
type Config struct {
	ContactTag       string        `yaml:"contact_tag"`
	Keys             contacts.Keys `yaml:"property_keys"`
	RemindersHeading string        `yaml:"reminders_heading"`
	BirthdayTemplate string        `yaml:"birthday_template"`
	AdvanceTemplate  string        `yaml:"advance_template"`
}

// DefaultConfig returns the standard scheduling configuration.
func DefaultConfig() Config {
	return Config{
		ContactTag:       "person",
		Keys:             contacts.DefaultKeys(),
		RemindersHeading: "Reminders",
		BirthdayTemplate: "%s's birthday",
		AdvanceTemplate:  "%s's birthday in %d days",
	}
}

// Validate validates the scheduling configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ContactTag, validation.Required),
		validation.Field(&c.RemindersHeading, validation.Required),
		validation.Field(&c.BirthdayTemplate, validation.Required, validation.By(hasPlaceholders("%s"))),
		validation.Field(&c.AdvanceTemplate, validation.Required, validation.By(hasPlaceholders("%s", "%d"))),
	)
}

func hasPlaceholders(verbs ...string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		for _, v := range verbs {
			if !strings.Contains(s, v) {
				return fmt.Errorf("template must contain %s", v)
			}
		}
		return nil
	}
}

// Scheduler materializes reminders in contact documents.
type Scheduler struct {
	cfg Config
	now func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// New creates a Scheduler with the given configuration.
func New(cfg Config, opts ...Option) *Scheduler {
	s := &Scheduler{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ManagedProperties returns the configured property key names in
// birthday/emails/addresses/phones order.
func (s *Scheduler) ManagedProperties() []string {
	return s.cfg.Keys.List()
}

// ScheduleBirthdayReminders ensures the document carries its two
// birthday reminders: one advanceDays before the birthday and one on
// the day itself, both recurring yearly.
//
// Documents without the contact tag or without a birthday property are
// skipped silently (nil error, zero mutations): this call is meant to
// be invoked broadly across a whole vault.
//
// Identity is the rendered heading text. A reminder whose exact text
// already exists anywhere in the document is left alone — create-only,
// never update-in-place. Renaming a contact or changing advanceDays
// therefore creates a new reminder next to the orphaned old one; that
// matches the documented semantics, it is not a bug to "fix" here.
//
// The two reminders are checked and inserted independently, so partial
// states (one present, one missing) heal per reminder.
func (s *Scheduler) ScheduleBirthdayReminders(doc *outline.Document, advanceDays int) ([]models.Reminder, error) {
	if advanceDays < 0 {
		return nil, fmt.Errorf("advance days must be non-negative, got %d", advanceDays)
	}
	if !contacts.IsContactDocument(doc, s.cfg.ContactTag) {
		return nil, nil
	}
	if !contacts.HasProperty(doc, s.cfg.Keys.Birthday) {
		return nil, nil
	}

	birth, err := contacts.Birthday(doc, s.cfg.Keys.Birthday)
	if err != nil {
		return nil, err
	}
	name, ok := contacts.Name(doc)
	if !ok {
		return nil, fmt.Errorf("%s: %w", doc.Path, apperr.ErrMissingName)
	}

	now := s.now()
	var created []models.Reminder

	advanceText := fmt.Sprintf(s.cfg.AdvanceTemplate, name, advanceDays)
	if doc.FindHeading(advanceText) == nil {
		at := recurrence.NextAnnual(birth.AddDate(0, 0, -advanceDays), now)
		h := doc.InsertReminder(s.cfg.RemindersHeading, advanceText, at, 1, now)
		created = append(created, reminderOf(h))
	}

	dayText := fmt.Sprintf(s.cfg.BirthdayTemplate, name)
	if doc.FindHeading(dayText) == nil {
		at := recurrence.NextAnnual(birth, now)
		h := doc.InsertReminder(s.cfg.RemindersHeading, dayText, at, 1, now)
		created = append(created, reminderOf(h))
	}

	return created, nil
}

// InsertReminder is the low-level primitive behind the user-invoked
// command: it unconditionally appends one scheduled sub-heading under
// the reminders heading. No idempotency check.
func (s *Scheduler) InsertReminder(doc *outline.Document, text string, at time.Time, repeatYears int) models.Reminder {
	h := doc.InsertReminder(s.cfg.RemindersHeading, text, at, repeatYears, s.now())
	return reminderOf(h)
}

// Reminders lists the scheduled sub-headings currently under the
// reminders heading of the document.
func (s *Scheduler) Reminders(doc *outline.Document) []models.Reminder {
	parent := doc.FindTopLevel(s.cfg.RemindersHeading)
	if parent == nil {
		return nil
	}
	out := make([]models.Reminder, 0, len(parent.Children))
	for _, h := range parent.Children {
		if h.Scheduled == nil {
			continue
		}
		out = append(out, reminderOf(h))
	}
	return out
}

func reminderOf(h *outline.Heading) models.Reminder {
	r := models.Reminder{
		Heading:   h.Text,
		CreatedAt: h.CreatedAt,
	}
	if h.Scheduled != nil {
		r.At = h.Scheduled.At
		r.RepeatYears = h.Scheduled.RepeatYears
	}
	return r
}
