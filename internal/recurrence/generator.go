package recurrence

import (
	"iter"
	"time"
)

// Template holds the fields copied onto every generated task.
type Template struct {
	WorkspaceID      uint
	ProjectID        *uint
	CategoryID       *uint
	AssignedMemberID *uint
	Title            string
	Description      string
	Priority         string
	Status           string
	TimeSlot         string
}

// Instance is one dated occurrence of a template.
type Instance struct {
	Template
	DueDate time.Time
}

// Expansion is a capped walk over a rule.
type Expansion struct {
	Dates []time.Time
	// Capped is set when the series would have continued past the cap.
	Capped bool
}

// Occurrences walks the rule forward from start. The anchor (start itself) is
// always yielded first. Every following period advances the cursor, checks the
// end condition against it and then yields either the cursor date or, for
// weekly rules with weekdays, each listed weekday of the cursor's week that the
// end condition still allows. The cursor moves every period even when a week
// yields nothing, so the walk terminates whenever the end condition does.
//
// Yielded dates strictly increase: the walk stops once the cursor no longer
// moves past the last yielded date, which only happens when stepping leaves the
// range time.Time can represent. With EndNever the sequence is otherwise
// infinite; callers bound it (see Expand).
func (r Rule) Occurrences(start time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		anchor := DateOf(start)
		if !yield(anchor) {
			return
		}
		emitted := 1
		days := r.weekdays()
		last := anchor
		for step := 1; ; step++ {
			cursor := r.advance(anchor, step)
			if !cursor.After(last) || !r.End.allows(emitted, cursor) {
				return
			}
			if !r.fansOut() {
				if !yield(cursor) {
					return
				}
				emitted++
				last = cursor
				continue
			}
			sunday := StartOfWeek(cursor)
			for _, day := range days {
				date := sunday.AddDate(0, 0, int(day))
				if !date.After(last) || !r.End.allows(emitted, date) {
					continue
				}
				if !yield(date) {
					return
				}
				emitted++
				last = date
			}
		}
	}
}

// Expand takes at most maxInstances dates from Occurrences.
func Expand(start time.Time, rule Rule, maxInstances int) Expansion {
	if maxInstances < 1 {
		return Expansion{}
	}
	dates := make([]time.Time, 0, min(maxInstances, 64))
	capped := false
	for date := range rule.Occurrences(start) {
		if len(dates) == maxInstances {
			capped = true
			break
		}
		dates = append(dates, date)
	}
	return Expansion{Dates: dates[:min(len(dates), maxInstances)], Capped: capped}
}

// Instances binds tmpl to every expanded date.
func (e Expansion) Instances(tmpl Template) []Instance {
	instances := make([]Instance, 0, len(e.Dates))
	for _, date := range e.Dates {
		instances = append(instances, Instance{Template: tmpl, DueDate: date})
	}
	return instances
}

// Generate expands the rule into dated copies of tmpl, ordered by due date.
func Generate(tmpl Template, start time.Time, rule Rule, maxInstances int) []Instance {
	return Expand(start, rule, maxInstances).Instances(tmpl)
}
