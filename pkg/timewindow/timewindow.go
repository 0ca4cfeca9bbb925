package timewindow

import (
	"fmt"
	"time"
)

// DayClass buckets a meeting relative to "now" by civil day.
type DayClass string

const (
	DayToday    DayClass = "today"
	DayTomorrow DayClass = "tomorrow"
	DayFuture   DayClass = "future"
	DayPast     DayClass = "past"
)

// Classification describes where a meeting sits relative to a reference instant.
type Classification struct {
	Day     DayClass `json:"day"`
	Ongoing bool     `json:"ongoing"`
	Ended   bool     `json:"ended"`
}

// Interval is the slice of a meeting the evaluator needs: a start instant and
// an optional end instant. A nil end means the meeting stays open for
// attendance indefinitely and never counts as ended.
type Interval struct {
	StartsAt time.Time
	EndsAt   *time.Time
}

// Evaluator answers permission and display questions about meeting intervals.
// All civil-day math is anchored to one fixed timezone so "today" is the same
// for every client regardless of locale.
type Evaluator struct {
	loc            *time.Location
	homeworkWindow time.Duration
}

// NewEvaluator builds an evaluator for the named zone. The homework window is
// the grace period after a meeting ends during which uploads are accepted.
func NewEvaluator(timezone string, homeworkWindow time.Duration) (*Evaluator, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	if homeworkWindow <= 0 {
		homeworkWindow = 7 * 24 * time.Hour
	}
	return &Evaluator{loc: loc, homeworkWindow: homeworkWindow}, nil
}

// Location exposes the anchored zone.
func (e *Evaluator) Location() *time.Location {
	return e.loc
}

// CanMarkAttendance reports whether attendance may still be marked at the
// reference instant. The interval is closed: marking exactly at the end
// instant is allowed.
func (e *Evaluator) CanMarkAttendance(now time.Time, iv Interval) bool {
	if iv.EndsAt == nil {
		return true
	}
	return !now.After(*iv.EndsAt)
}

// CanUploadHomework reports whether homework may be uploaded at the reference
// instant. Uploads open once the meeting ends and close after the grace
// window; both bounds are inclusive. Without an end instant the window never
// opens.
func (e *Evaluator) CanUploadHomework(now time.Time, iv Interval) bool {
	if iv.EndsAt == nil {
		return false
	}
	end := *iv.EndsAt
	if now.Before(end) {
		return false
	}
	return !now.After(end.Add(e.homeworkWindow))
}

// Classify compares the meeting's civil day against the reference instant's
// civil day in the anchored zone.
func (e *Evaluator) Classify(now time.Time, iv Interval) Classification {
	nowDay := e.civilDay(now)
	startDay := e.civilDay(iv.StartsAt)

	var cls Classification
	switch days := daysBetween(nowDay, startDay); {
	case days == 0:
		cls.Day = DayToday
	case days == 1:
		cls.Day = DayTomorrow
	case days > 1:
		cls.Day = DayFuture
	default:
		cls.Day = DayPast
	}

	if iv.EndsAt != nil && now.After(*iv.EndsAt) {
		cls.Ended = true
	}
	if !cls.Ended && !now.Before(iv.StartsAt) {
		cls.Ongoing = true
	}
	return cls
}

// Tag renders the display label used on schedule lists: ended, ongoing,
// today, tomorrow, or a D-N countdown.
func (e *Evaluator) Tag(now time.Time, iv Interval) string {
	cls := e.Classify(now, iv)
	switch {
	case cls.Ended:
		return "ended"
	case cls.Ongoing:
		return "ongoing"
	case cls.Day == DayToday:
		return "today"
	case cls.Day == DayTomorrow:
		return "tomorrow"
	case cls.Day == DayFuture:
		return fmt.Sprintf("D-%d", daysBetween(e.civilDay(now), e.civilDay(iv.StartsAt)))
	default:
		return "ended"
	}
}

// civilDay truncates an instant to midnight of its civil day in the anchored
// zone.
func (e *Evaluator) civilDay(t time.Time) time.Time {
	lt := t.In(e.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, e.loc)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
