package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextAnnual_NotYetPassed(t *testing.T) {
	now := date(2022, time.October, 5)
	got := NextAnnual(date(2022, time.October, 10), now)
	want := date(2022, time.October, 10)
	if !got.Equal(want) {
		t.Errorf("NextAnnual = %v, want %v", got, want)
	}
}

func TestNextAnnual_AlreadyPassedThisYear(t *testing.T) {
	now := date(2022, time.October, 5)
	got := NextAnnual(date(2022, time.October, 1), now)
	want := date(2023, time.October, 1)
	if !got.Equal(want) {
		t.Errorf("NextAnnual = %v, want %v", got, want)
	}
}

func TestNextAnnual_FarPastAnchorsToNow(t *testing.T) {
	// One step relative to now, not original year + 1.
	now := date(2022, time.October, 5)
	got := NextAnnual(date(2000, time.October, 10), now)
	want := date(2023, time.October, 10)
	if !got.Equal(want) {
		t.Errorf("NextAnnual = %v, want %v", got, want)
	}
}

func TestNextAnnual_EqualToNowReturnedUnchanged(t *testing.T) {
	now := date(2022, time.October, 5)
	got := NextAnnual(now, now)
	if !got.Equal(now) {
		t.Errorf("NextAnnual = %v, want %v", got, now)
	}
}

func TestNextAnnual_PreservesTimeOfDay(t *testing.T) {
	now := date(2022, time.October, 5)
	anniv := time.Date(1990, time.March, 15, 9, 30, 45, 0, time.UTC)
	got := NextAnnual(anniv, now)
	want := time.Date(2023, time.March, 15, 9, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextAnnual = %v, want %v", got, want)
	}
}

func TestNextAnnual_LeapDayRollsForward(t *testing.T) {
	// 2023 is not a leap year: Feb 29 becomes Mar 1, never Feb 28.
	now := date(2022, time.October, 5)
	got := NextAnnual(date(2000, time.February, 29), now)
	want := date(2023, time.March, 1)
	if !got.Equal(want) {
		t.Errorf("NextAnnual = %v, want %v", got, want)
	}
}

func TestNextAnnual_LeapDayOntoLeapYear(t *testing.T) {
	now := date(2023, time.June, 1)
	got := NextAnnual(date(2000, time.February, 29), now)
	want := date(2024, time.February, 29)
	if !got.Equal(want) {
		t.Errorf("NextAnnual = %v, want %v", got, want)
	}
}

func TestNextAnnual_PlaceholderYearZero(t *testing.T) {
	// A year-less birthday parses with year 0 and is always in the past.
	now := date(2022, time.October, 5)
	got := NextAnnual(date(0, time.December, 24), now)
	want := date(2023, time.December, 24)
	if !got.Equal(want) {
		t.Errorf("NextAnnual = %v, want %v", got, want)
	}
}
