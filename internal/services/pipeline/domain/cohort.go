package domain

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// CohortDurationDays is the fixed training length used to derive the
// expected end date from a start date.
const CohortDurationDays = 63

// CohortStatus identifies one training cohort lifecycle state.
type CohortStatus string

const (
	// CohortStatusActive means the cohort is scheduled or in training.
	CohortStatusActive CohortStatus = "active"
	// CohortStatusCompleted means the cohort finished training.
	CohortStatusCompleted CohortStatus = "completed"
)

// Cohort is one training class instance with a fixed start date.
type Cohort struct {
	ID              string
	Name            string
	CallCenter      CallCenter
	ClassType       ClassType
	StartDate       time.Time
	ExpectedEndDate time.Time
	TrainerName     string
	ParticipantIDs  []string
	CurrentStage    string
	WeekNumber      int
	Status          CohortStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Calendar is a finite ascending list of legal class start dates for one
// class type. Calendars are refreshed externally; exhaustion falls back to
// the last entry rather than inventing dates.
type Calendar struct {
	dates []time.Time
}

// NewCalendar builds a calendar from the given dates, normalized to
// midnight UTC and sorted ascending.
func NewCalendar(dates []time.Time) Calendar {
	normalized := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		normalized = append(normalized, midnightUTC(date))
	}
	sort.Slice(normalized, func(i, j int) bool { return normalized[i].Before(normalized[j]) })
	return Calendar{dates: normalized}
}

// Dates returns a copy of the calendar entries.
func (c Calendar) Dates() []time.Time {
	out := make([]time.Time, len(c.dates))
	copy(out, c.dates)
	return out
}

// Contains reports whether date is a member of the calendar.
func (c Calendar) Contains(date time.Time) bool {
	target := midnightUTC(date)
	for _, entry := range c.dates {
		if entry.Equal(target) {
			return true
		}
	}
	return false
}

// Next returns the first calendar date strictly after today. A date equal to
// today is not eligible: a new cohort must start in the future. When the
// calendar is exhausted it returns its last entry, which callers should
// treat as a stale-calendar signal.
func (c Calendar) Next(today time.Time) (time.Time, error) {
	if len(c.dates) == 0 {
		return time.Time{}, ErrCalendarExhausted
	}
	cutoff := midnightUTC(today)
	for _, entry := range c.dates {
		if entry.After(cutoff) {
			return entry, nil
		}
	}
	return c.dates[len(c.dates)-1], nil
}

// DefaultCalendars returns the fixed per-track start date calendars.
func DefaultCalendars() map[ClassType]Calendar {
	return map[ClassType]Calendar{
		ClassTypeUNL: NewCalendar([]time.Time{
			classDate(2025, time.June, 2),
			classDate(2025, time.July, 7),
			classDate(2025, time.August, 4),
			classDate(2025, time.September, 8),
			classDate(2025, time.October, 6),
			classDate(2025, time.November, 3),
			classDate(2025, time.December, 1),
			classDate(2026, time.January, 5),
			classDate(2026, time.February, 2),
		}),
		ClassTypeAgent: NewCalendar([]time.Time{
			classDate(2025, time.June, 16),
			classDate(2025, time.July, 21),
			classDate(2025, time.August, 18),
			classDate(2025, time.September, 22),
			classDate(2025, time.October, 20),
			classDate(2025, time.November, 17),
			classDate(2025, time.December, 15),
			classDate(2026, time.January, 19),
			classDate(2026, time.February, 16),
		}),
	}
}

// CohortResolver answers class-date questions against per-track calendars.
// Calendars are replaceable at runtime so stale entries can be refreshed
// without a restart.
type CohortResolver struct {
	mu        sync.RWMutex
	calendars map[ClassType]Calendar
	clock     func() time.Time
}

// NewCohortResolver builds a resolver over the provided calendars. Nil
// calendars fall back to the fixed defaults.
func NewCohortResolver(calendars map[ClassType]Calendar, clock func() time.Time) *CohortResolver {
	if calendars == nil {
		calendars = DefaultCalendars()
	}
	if clock == nil {
		clock = time.Now
	}
	return &CohortResolver{calendars: calendars, clock: clock}
}

// NextStartDate returns the next legal class start date for one class type.
func (r *CohortResolver) NextStartDate(classType ClassType) (time.Time, error) {
	calendar, err := r.calendar(classType)
	if err != nil {
		return time.Time{}, err
	}
	return calendar.Next(r.clock())
}

// ValidateStartDate checks calendar membership for one chosen date.
func (r *CohortResolver) ValidateStartDate(classType ClassType, date time.Time) error {
	calendar, err := r.calendar(classType)
	if err != nil {
		return err
	}
	if !calendar.Contains(date) {
		return fmt.Errorf("%w: %s is not a %s start date", ErrDateNotInCalendar, date.Format("2006-01-02"), classType)
	}
	return nil
}

// SetCalendar replaces the calendar for one class type.
func (r *CohortResolver) SetCalendar(classType ClassType, calendar Calendar) error {
	if !isValidClassType(classType) {
		return ErrInvalidClassType
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calendars[classType] = calendar
	return nil
}

func (r *CohortResolver) calendar(classType ClassType) (Calendar, error) {
	if !isValidClassType(classType) {
		return Calendar{}, ErrInvalidClassType
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	calendar, ok := r.calendars[classType]
	if !ok {
		return Calendar{}, ErrCalendarExhausted
	}
	return calendar, nil
}

// ExpectedEndDate derives the cohort end date from its start date.
func ExpectedEndDate(startDate time.Time) time.Time {
	return midnightUTC(startDate).AddDate(0, 0, CohortDurationDays)
}

// WeekNumber derives the 1-based training week for a cohort at the given
// time. Cohorts that have not started yet report week 0.
func WeekNumber(startDate time.Time, now time.Time) int {
	start := midnightUTC(startDate)
	current := midnightUTC(now)
	if current.Before(start) {
		return 0
	}
	return int(current.Sub(start).Hours()/(24*7)) + 1
}

func isValidClassType(classType ClassType) bool {
	switch classType {
	case ClassTypeUNL, ClassTypeAgent:
		return true
	default:
		return false
	}
}

func midnightUTC(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

func classDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
