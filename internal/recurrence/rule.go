package recurrence

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Type is the period unit of a rule.
type Type string

const (
	TypeDaily   Type = "daily"
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
	TypeYearly  Type = "yearly"
	// TypeCustom repeats every Interval days.
	TypeCustom Type = "custom"
)

func (t Type) valid() bool {
	switch t {
	case TypeDaily, TypeWeekly, TypeMonthly, TypeYearly, TypeCustom:
		return true
	}
	return false
}

// EndKind tags the variant held by EndCondition.
type EndKind string

const (
	EndNever EndKind = "never"
	EndAfter EndKind = "after"
	EndOn    EndKind = "on"
)

// EndCondition decides when a series stops. Count is only meaningful for
// EndAfter and Date only for EndOn; use the constructors.
type EndCondition struct {
	Kind  EndKind
	Count int
	Date  time.Time
}

func Never() EndCondition { return EndCondition{Kind: EndNever} }

func AfterCount(n int) EndCondition { return EndCondition{Kind: EndAfter, Count: n} }

func OnDate(date time.Time) EndCondition { return EndCondition{Kind: EndOn, Date: DateOf(date)} }

// allows reports whether an occurrence on candidate may follow the emitted ones.
func (e EndCondition) allows(emitted int, candidate time.Time) bool {
	switch e.Kind {
	case EndAfter:
		return emitted < e.Count
	case EndOn:
		return candidate.Before(e.Date)
	default:
		return true
	}
}

// MaxInterval bounds Interval so that stepping from the anchor stays inside the
// range time.Time can represent.
const MaxInterval = 1000

// Rule is the canonical recurrence description consumed by the generator.
type Rule struct {
	Type       Type
	Interval   int
	End        EndCondition
	WeeklyDays []time.Weekday
}

// Validate checks the rule invariants. Normalize already guarantees them; rules
// assembled by hand (or loaded from storage) go through here.
func (r Rule) Validate() error {
	if !r.Type.valid() {
		return invalid("recurrenceType", fmt.Sprintf("unknown type %q", r.Type))
	}
	if r.Interval < 1 {
		return invalid("recurrenceInterval", "must be at least 1")
	}
	if r.Interval > MaxInterval {
		return invalid("recurrenceInterval", fmt.Sprintf("must be at most %d", MaxInterval))
	}
	switch r.End.Kind {
	case EndNever:
	case EndAfter:
		if r.End.Count < 1 {
			return invalid("recurrenceEndCount", "must be at least 1")
		}
	case EndOn:
		if r.End.Date.IsZero() {
			return invalid("recurrenceEndDate", "is required")
		}
	default:
		return invalid("recurrenceEndType", fmt.Sprintf("unknown end type %q", r.End.Kind))
	}
	for _, d := range r.WeeklyDays {
		if d < time.Sunday || d > time.Saturday {
			return invalid("weeklyDays", fmt.Sprintf("day %d is outside 0..6", d))
		}
	}
	return nil
}

// fansOut reports whether each period expands to several weekdays.
func (r Rule) fansOut() bool {
	return r.Type == TypeWeekly && len(r.WeeklyDays) > 0
}

// weekdays returns the weekly days sorted and without duplicates.
func (r Rule) weekdays() []time.Weekday {
	days := slices.Clone(r.WeeklyDays)
	slices.Sort(days)
	return slices.Compact(days)
}

// advance returns the cursor after step periods. Months and years are counted
// from the anchor so a clamped day (Jan 31 -> Feb 28) does not drift into the
// following months.
func (r Rule) advance(anchor time.Time, step int) time.Time {
	n := max(r.Interval, 1) * step
	switch r.Type {
	case TypeWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case TypeMonthly:
		return AddMonths(anchor, n)
	case TypeYearly:
		return AddMonths(anchor, 12*n)
	default:
		return anchor.AddDate(0, 0, n)
	}
}

func (r Rule) String() string {
	var sb strings.Builder
	unit := map[Type]string{
		TypeDaily:   "day",
		TypeWeekly:  "week",
		TypeMonthly: "month",
		TypeYearly:  "year",
		TypeCustom:  "day",
	}[r.Type]
	if r.Interval == 1 {
		sb.WriteString("every " + unit)
	} else {
		sb.WriteString(fmt.Sprintf("every %d %ss", r.Interval, unit))
	}
	if r.fansOut() {
		names := make([]string, 0, len(r.WeeklyDays))
		for _, d := range r.weekdays() {
			names = append(names, d.String()[:3])
		}
		sb.WriteString(" on " + strings.Join(names, ","))
	}
	switch r.End.Kind {
	case EndAfter:
		sb.WriteString(fmt.Sprintf(", %d times", r.End.Count))
	case EndOn:
		sb.WriteString(", until " + r.End.Date.Format(DateLayout))
	}
	return sb.String()
}
