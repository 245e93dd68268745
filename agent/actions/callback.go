package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/pharmesol/salesline/agent/contract"
)

// MockCallbackScheduler simulates the scheduling service. Booking
// always succeeds and issues a CB- reference.
type MockCallbackScheduler struct {
	now func() time.Time
}

func NewMockCallbackScheduler(now func() time.Time) *MockCallbackScheduler {
	if now == nil {
		now = time.Now
	}
	return &MockCallbackScheduler{now: now}
}

func (m *MockCallbackScheduler) ScheduleCallback(_ context.Context, req contractx.CallbackRequest) (contractx.ActionResult, error) {
	when := req.When
	if when.IsZero() {
		when = resolveCallbackTime(m.now(), req.TimeHint)
	}
	ref := newRef("CB")

	log.Info().
		Str("reference", ref).
		Str("phone", req.Phone).
		Time("scheduled_for", when).
		Msg("mock callback scheduled")

	return contractx.ActionResult{
		Success:   true,
		Message:   fmt.Sprintf("Callback scheduled for %s", when.Format("Monday, Jan 2 at 3:04 PM")),
		Reference: ref,
		Payload: map[string]any{
			"phone":         req.Phone,
			"pharmacy_name": req.PharmacyName,
			"scheduled_for": when.Format(time.RFC3339),
			"status":        "scheduled",
		},
	}, nil
}

// resolveCallbackTime turns a caller's loose time hint into a slot.
// With no hint the callback lands on the next business day at 10:00.
func resolveCallbackTime(now time.Time, hint string) time.Time {
	day := nextBusinessDay(now)
	hour := 10

	hint = strings.ToLower(strings.TrimSpace(hint))
	switch {
	case hint == "":
	case strings.Contains(hint, "today") || strings.HasPrefix(hint, "this "):
		day = now
	case strings.Contains(hint, "tomorrow"):
		day = now.AddDate(0, 0, 1)
	case strings.Contains(hint, "next week"):
		day = nextBusinessDay(now.AddDate(0, 0, 7))
	default:
		if wd, ok := weekdayFromHint(hint); ok {
			day = nextWeekday(now, wd)
		}
	}

	switch {
	case strings.Contains(hint, "afternoon"):
		hour = 14
	case strings.Contains(hint, "evening"):
		hour = 17
	case strings.Contains(hint, "morning"):
		hour = 10
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, now.Location())
}

func nextBusinessDay(from time.Time) time.Time {
	day := from.AddDate(0, 0, 1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

func nextWeekday(from time.Time, wd time.Weekday) time.Time {
	day := from.AddDate(0, 0, 1)
	for day.Weekday() != wd {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

func weekdayFromHint(hint string) (time.Weekday, bool) {
	names := map[string]time.Weekday{
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
	}
	for name, wd := range names {
		if strings.Contains(hint, name) {
			return wd, true
		}
	}
	return 0, false
}
