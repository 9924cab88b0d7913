package scheduler

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/halvard/gebo/internal/apperr"
	"github.com/halvard/gebo/internal/outline"
)

// fixedNow is in late 2022, before March 15 of 2023: the 1985 birthday
// is decades past, so both reminders project into 2023.
var fixedNow = time.Date(2022, time.November, 1, 12, 0, 0, 0, time.UTC)

func testScheduler() *Scheduler {
	return New(DefaultConfig(), WithClock(func() time.Time { return fixedNow }))
}

func parseDoc(t *testing.T, src string) *outline.Document {
	t.Helper()
	doc, err := outline.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

const janeDoc = `---
title: Jane Doe
tags: [person]
CONTACT_BIRTHDAY: "1985-03-15"
---
# Notes
Some notes.
`

func TestScheduleBirthdayReminders_CreatesBoth(t *testing.T) {
	doc := parseDoc(t, janeDoc)
	created, err := testScheduler().ScheduleBirthdayReminders(doc, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created = %d reminders, want 2", len(created))
	}

	parent := doc.FindTopLevel("Reminders")
	if parent == nil {
		t.Fatal("Reminders heading not created")
	}
	if len(parent.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(parent.Children))
	}

	adv := doc.FindHeading("Jane Doe's birthday in 7 days")
	if adv == nil || adv.Scheduled == nil {
		t.Fatal("advance reminder missing")
	}
	wantAdv := time.Date(2023, time.March, 8, 0, 0, 0, 0, time.UTC)
	if !adv.Scheduled.At.Equal(wantAdv) || adv.Scheduled.RepeatYears != 1 {
		t.Errorf("advance schedule = %+v, want %v yearly", adv.Scheduled, wantAdv)
	}
	if adv.Keyword != "TODO" {
		t.Errorf("keyword = %q, want TODO", adv.Keyword)
	}
	if !adv.CreatedAt.Equal(fixedNow) {
		t.Errorf("created stamp = %v, want %v", adv.CreatedAt, fixedNow)
	}

	day := doc.FindHeading("Jane Doe's birthday")
	if day == nil || day.Scheduled == nil {
		t.Fatal("day-of reminder missing")
	}
	wantDay := time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !day.Scheduled.At.Equal(wantDay) {
		t.Errorf("day-of schedule = %v, want %v", day.Scheduled.At, wantDay)
	}
}

func TestScheduleBirthdayReminders_Idempotent(t *testing.T) {
	doc := parseDoc(t, janeDoc)
	s := testScheduler()

	if _, err := s.ScheduleBirthdayReminders(doc, 7); err != nil {
		t.Fatalf("first call: %v", err)
	}
	once := doc.Bytes()

	created, err := s.ScheduleBirthdayReminders(doc, 7)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("second call created %d reminders, want 0", len(created))
	}
	if !bytes.Equal(doc.Bytes(), once) {
		t.Error("second call changed the document")
	}
}

func TestScheduleBirthdayReminders_PartialHeals(t *testing.T) {
	// Advance reminder already present, day-of missing: only day-of is added.
	doc := parseDoc(t, janeDoc+"\n# Reminders\n## TODO Jane Doe's birthday in 7 days\nscheduled:: 2023-03-08 +1y\n")
	created, err := testScheduler().ScheduleBirthdayReminders(doc, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 1 || created[0].Heading != "Jane Doe's birthday" {
		t.Errorf("created = %+v", created)
	}
}

func TestScheduleBirthdayReminders_NotContact(t *testing.T) {
	doc := parseDoc(t, "---\ntitle: Meeting notes\nCONTACT_BIRTHDAY: \"1985-03-15\"\n---\n# Agenda\n")
	before := doc.Bytes()
	created, err := testScheduler().ScheduleBirthdayReminders(doc, 7)
	if err != nil {
		t.Fatalf("precondition miss must be a silent no-op, got %v", err)
	}
	if len(created) != 0 || !bytes.Equal(doc.Bytes(), before) {
		t.Error("untagged document was mutated")
	}
}

func TestScheduleBirthdayReminders_NoBirthday(t *testing.T) {
	doc := parseDoc(t, "---\ntitle: Jane Doe\ntags: [person]\n---\n")
	before := doc.Bytes()
	created, err := testScheduler().ScheduleBirthdayReminders(doc, 7)
	if err != nil {
		t.Fatalf("precondition miss must be a silent no-op, got %v", err)
	}
	if len(created) != 0 || !bytes.Equal(doc.Bytes(), before) {
		t.Error("document without birthday was mutated")
	}
}

func TestScheduleBirthdayReminders_BadBirthday(t *testing.T) {
	doc := parseDoc(t, "---\ntitle: Jane Doe\ntags: [person]\nCONTACT_BIRTHDAY: soon\n---\n")
	_, err := testScheduler().ScheduleBirthdayReminders(doc, 7)
	if !errors.Is(err, apperr.ErrBadPropertyValue) {
		t.Errorf("err = %v, want ErrBadPropertyValue", err)
	}
}

func TestScheduleBirthdayReminders_MissingName(t *testing.T) {
	doc := parseDoc(t, "---\ntags: [person]\nCONTACT_BIRTHDAY: \"1985-03-15\"\n---\n")
	before := doc.Bytes()
	_, err := testScheduler().ScheduleBirthdayReminders(doc, 7)
	if !errors.Is(err, apperr.ErrMissingName) {
		t.Fatalf("err = %v, want ErrMissingName", err)
	}
	if !bytes.Equal(doc.Bytes(), before) {
		t.Error("document mutated despite missing name")
	}
}

func TestScheduleBirthdayReminders_NegativeAdvance(t *testing.T) {
	doc := parseDoc(t, janeDoc)
	if _, err := testScheduler().ScheduleBirthdayReminders(doc, -1); err == nil {
		t.Error("negative advance days must fail")
	}
}

func TestScheduleBirthdayReminders_BirthdayAlreadyPassed(t *testing.T) {
	// Reference now after March 15: both reminders land next year.
	now := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	s := New(DefaultConfig(), WithClock(func() time.Time { return now }))

	doc := parseDoc(t, janeDoc)
	if _, err := s.ScheduleBirthdayReminders(doc, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	day := doc.FindHeading("Jane Doe's birthday")
	want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !day.Scheduled.At.Equal(want) {
		t.Errorf("day-of = %v, want %v", day.Scheduled.At, want)
	}
}

func TestInsertReminder_Unconditional(t *testing.T) {
	doc := parseDoc(t, janeDoc)
	s := testScheduler()
	at := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)

	s.InsertReminder(doc, "Call about the move", at, 0)
	s.InsertReminder(doc, "Call about the move", at, 0)

	if n := len(doc.FindTopLevel("Reminders").Children); n != 2 {
		t.Errorf("children = %d, want 2 (primitive is unconditional)", n)
	}
}

func TestReminders_ListsScheduledChildren(t *testing.T) {
	doc := parseDoc(t, janeDoc)
	s := testScheduler()
	if got := s.Reminders(doc); got != nil {
		t.Errorf("expected no reminders before scheduling, got %v", got)
	}
	if _, err := s.ScheduleBirthdayReminders(doc, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := s.Reminders(doc)
	if len(got) != 2 {
		t.Fatalf("reminders = %+v, want 2", got)
	}
}

func TestManagedProperties(t *testing.T) {
	got := testScheduler().ManagedProperties()
	want := []string{"CONTACT_BIRTHDAY", "CONTACT_EMAILS", "CONTACT_ADDRESSES", "CONTACT_PHONES"}
	if len(got) != len(want) {
		t.Fatalf("properties = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("properties[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	bad := DefaultConfig()
	bad.AdvanceTemplate = "no placeholders"
	if err := bad.Validate(); err == nil {
		t.Error("template without placeholders must fail validation")
	}
}
