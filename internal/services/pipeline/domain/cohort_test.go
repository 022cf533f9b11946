package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCalendarNextSkipsToday(t *testing.T) {
	resolver := NewCohortResolver(nil, func() time.Time {
		// Exactly a UNL calendar date: today itself is not eligible.
		return time.Date(2025, time.August, 4, 9, 30, 0, 0, time.UTC)
	})

	next, err := resolver.NextStartDate(ClassTypeUNL)
	if err != nil {
		t.Fatalf("next start date: %v", err)
	}
	want := time.Date(2025, time.September, 8, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %s, want %s", next.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestCalendarNextReturnsFirstFutureDate(t *testing.T) {
	resolver := NewCohortResolver(nil, func() time.Time {
		return time.Date(2025, time.July, 22, 0, 0, 0, 0, time.UTC)
	})

	next, err := resolver.NextStartDate(ClassTypeAgent)
	if err != nil {
		t.Fatalf("next start date: %v", err)
	}
	want := time.Date(2025, time.August, 18, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %s, want %s", next.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestCalendarNextExhaustedFallsBackToLastEntry(t *testing.T) {
	calendar := NewCalendar([]time.Time{
		time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC),
	})
	next, err := calendar.Next(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	want := time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %s, want last calendar entry %s", next.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestCalendarNextEmptyCalendar(t *testing.T) {
	calendar := NewCalendar(nil)
	if _, err := calendar.Next(time.Now()); !errors.Is(err, ErrCalendarExhausted) {
		t.Fatalf("expected ErrCalendarExhausted, got %v", err)
	}
}

func TestValidateStartDateMembership(t *testing.T) {
	resolver := NewCohortResolver(nil, nil)

	member := time.Date(2025, time.September, 8, 0, 0, 0, 0, time.UTC)
	if err := resolver.ValidateStartDate(ClassTypeUNL, member); err != nil {
		t.Fatalf("validate member date: %v", err)
	}

	outsider := time.Date(2025, time.September, 9, 0, 0, 0, 0, time.UTC)
	if err := resolver.ValidateStartDate(ClassTypeUNL, outsider); !errors.Is(err, ErrDateNotInCalendar) {
		t.Fatalf("expected ErrDateNotInCalendar, got %v", err)
	}
}

func TestValidateStartDateUnknownClassType(t *testing.T) {
	resolver := NewCohortResolver(nil, nil)
	err := resolver.ValidateStartDate(ClassType("NIGHT"), time.Now())
	if !errors.Is(err, ErrInvalidClassType) {
		t.Fatalf("expected ErrInvalidClassType, got %v", err)
	}
}

func TestSetCalendarReplacesDates(t *testing.T) {
	resolver := NewCohortResolver(nil, func() time.Time {
		return time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	})
	refreshed := NewCalendar([]time.Time{
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
	})
	if err := resolver.SetCalendar(ClassTypeUNL, refreshed); err != nil {
		t.Fatalf("set calendar: %v", err)
	}

	next, err := resolver.NextStartDate(ClassTypeUNL)
	if err != nil {
		t.Fatalf("next start date: %v", err)
	}
	want := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %s, want refreshed %s", next.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestExpectedEndDate(t *testing.T) {
	start := time.Date(2025, time.September, 8, 0, 0, 0, 0, time.UTC)
	end := ExpectedEndDate(start)
	want := time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC)
	if !end.Equal(want) {
		t.Fatalf("end = %s, want %s", end.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestWeekNumber(t *testing.T) {
	start := time.Date(2025, time.September, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before start", time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), 0},
		{"start day", start, 1},
		{"sixth day", time.Date(2025, time.September, 13, 23, 0, 0, 0, time.UTC), 1},
		{"second week", time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekNumber(start, tt.now); got != tt.want {
				t.Fatalf("week = %d, want %d", got, tt.want)
			}
		})
	}
}
