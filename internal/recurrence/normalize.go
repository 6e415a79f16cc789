package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRule is matched by every *InvalidRuleError.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// InvalidRuleError names the offending input field.
type InvalidRuleError struct {
	Field  string
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid recurrence rule: %s %s", e.Field, e.Reason)
}

func (e *InvalidRuleError) Is(target error) bool {
	return target == ErrInvalidRule
}

func invalid(field, reason string) error {
	return &InvalidRuleError{Field: field, Reason: reason}
}

// Input is the recurrence part of a task form submission. Every field is
// optional; missing ones fall back to defaults in Normalize.
type Input struct {
	Type       *string `json:"recurrenceType,omitempty"`
	Interval   *int    `json:"recurrenceInterval,omitempty"`
	EndType    *string `json:"recurrenceEndType,omitempty"`
	EndCount   *int    `json:"recurrenceEndCount,omitempty"`
	EndDate    *string `json:"recurrenceEndDate,omitempty"`
	WeeklyDays []int   `json:"weeklyDays,omitempty"`
}

// Normalize turns form input into a canonical Rule. It returns nil without an
// error when recurrence is disabled. Defaults: daily, interval 1, never ends.
func Normalize(hasRecurrence bool, in Input) (*Rule, error) {
	if !hasRecurrence {
		return nil, nil
	}

	rule := Rule{Type: TypeDaily, Interval: 1, End: Never()}

	if raw := trimmed(in.Type); raw != "" {
		rule.Type = Type(strings.ToLower(raw))
		if !rule.Type.valid() {
			return nil, invalid("recurrenceType", fmt.Sprintf("unknown type %q", raw))
		}
	}

	if in.Interval != nil {
		if *in.Interval < 1 {
			return nil, invalid("recurrenceInterval", "must be at least 1")
		}
		if *in.Interval > MaxInterval {
			return nil, invalid("recurrenceInterval", fmt.Sprintf("must be at most %d", MaxInterval))
		}
		rule.Interval = *in.Interval
	}

	switch endType := strings.ToLower(trimmed(in.EndType)); endType {
	case "", string(EndNever):
	case string(EndAfter), "count":
		if in.EndCount == nil || *in.EndCount < 1 {
			return nil, invalid("recurrenceEndCount", "must be a positive number")
		}
		rule.End = AfterCount(*in.EndCount)
	case string(EndOn), "date", "until":
		raw := trimmed(in.EndDate)
		if raw == "" {
			return nil, invalid("recurrenceEndDate", "is required")
		}
		date, err := ParseDate(raw)
		if err != nil {
			return nil, invalid("recurrenceEndDate", fmt.Sprintf("%q is not a date", raw))
		}
		rule.End = OnDate(date)
	default:
		return nil, invalid("recurrenceEndType", fmt.Sprintf("unknown end type %q", endType))
	}

	days := make([]time.Weekday, 0, len(in.WeeklyDays))
	for _, d := range in.WeeklyDays {
		if d < 0 || d > 6 {
			return nil, invalid("weeklyDays", fmt.Sprintf("day %d is outside 0..6", d))
		}
		days = append(days, time.Weekday(d))
	}
	// Weekdays only shape weekly rules; elsewhere they are ignored.
	if rule.Type == TypeWeekly && len(days) > 0 {
		rule.WeeklyDays = days
		rule.WeeklyDays = rule.weekdays()
	}

	return &rule, nil
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
