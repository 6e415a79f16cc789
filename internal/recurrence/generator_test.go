package recurrence

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(raw string) time.Time {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		panic(err)
	}
	return t
}

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(DateLayout))
	}
	return out
}

func requireStrictlyIncreasing(t *testing.T, dates []time.Time) {
	t.Helper()
	for i := 1; i < len(dates); i++ {
		require.Truef(t, dates[i].After(dates[i-1]), "date %d (%s) is not after %s",
			i, dates[i].Format(DateLayout), dates[i-1].Format(DateLayout))
	}
}

func TestExpand_NeverFillsCap(t *testing.T) {
	rule := Rule{Type: TypeDaily, Interval: 1, End: Never()}

	exp := Expand(day("2025-03-01"), rule, 50)

	require.Len(t, exp.Dates, 50)
	assert.True(t, exp.Capped)
	assert.Equal(t, day("2025-03-01"), exp.Dates[0])
	assert.Equal(t, day("2025-04-19"), exp.Dates[49])
	requireStrictlyIncreasing(t, exp.Dates)
}

func TestExpand_AfterCountIgnoresLargerCap(t *testing.T) {
	rule := Rule{Type: TypeWeekly, Interval: 2, End: AfterCount(5)}

	exp := Expand(day("2025-01-06"), rule, 100)

	assert.Equal(t, []string{"2025-01-06", "2025-01-20", "2025-02-03", "2025-02-17", "2025-03-03"}, formatDates(exp.Dates))
	assert.False(t, exp.Capped)
}

func TestExpand_AfterCountAboveCapIsCapped(t *testing.T) {
	rule := Rule{Type: TypeDaily, Interval: 1, End: AfterCount(20)}

	exp := Expand(day("2025-01-01"), rule, 10)

	assert.Len(t, exp.Dates, 10)
	assert.True(t, exp.Capped)
}

func TestExpand_OnDateIsExclusive(t *testing.T) {
	rule := Rule{Type: TypeDaily, Interval: 3, End: OnDate(day("2025-01-10"))}

	exp := Expand(day("2025-01-01"), rule, 100)

	assert.Equal(t, []string{"2025-01-01", "2025-01-04", "2025-01-07"}, formatDates(exp.Dates))
	assert.False(t, exp.Capped)
}

func TestExpand_AnchorIsUnconditional(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{name: "end before start", rule: Rule{Type: TypeDaily, Interval: 1, End: OnDate(day("2024-12-01"))}},
		{name: "end equals start", rule: Rule{Type: TypeMonthly, Interval: 1, End: OnDate(day("2025-01-15"))}},
		{name: "single count", rule: Rule{Type: TypeYearly, Interval: 1, End: AfterCount(1)}},
		{name: "weekly days not including start", rule: Rule{Type: TypeWeekly, Interval: 1, End: AfterCount(1), WeeklyDays: []time.Weekday{time.Saturday}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := Expand(day("2025-01-15"), tt.rule, 10)
			assert.Equal(t, []string{"2025-01-15"}, formatDates(exp.Dates))
		})
	}
}

func TestExpand_WeeklyDaysFanOut(t *testing.T) {
	rule := Rule{
		Type:       TypeWeekly,
		Interval:   1,
		End:        Never(),
		WeeklyDays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
	}

	// 2025-01-06 is a Monday.
	exp := Expand(day("2025-01-06"), rule, 10)

	require.Len(t, exp.Dates, 10)
	requireStrictlyIncreasing(t, exp.Dates)
	for _, d := range exp.Dates {
		assert.Contains(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, d.Weekday())
	}
	assert.Equal(t, []string{
		"2025-01-06",
		"2025-01-13", "2025-01-15", "2025-01-17",
		"2025-01-20", "2025-01-22", "2025-01-24",
		"2025-01-27", "2025-01-29", "2025-01-31",
	}, formatDates(exp.Dates))
}

func TestExpand_WeeklyDaysStartAfterAnchorWeek(t *testing.T) {
	rule := Rule{
		Type:       TypeWeekly,
		Interval:   1,
		End:        AfterCount(4),
		WeeklyDays: []time.Weekday{time.Sunday, time.Saturday},
	}

	// 2025-01-08 is a Wednesday; its own week's Saturday is not emitted.
	exp := Expand(day("2025-01-08"), rule, 50)

	assert.Equal(t, []string{"2025-01-08", "2025-01-12", "2025-01-18", "2025-01-19"}, formatDates(exp.Dates))
	for _, d := range exp.Dates[1:] {
		assert.True(t, StartOfWeek(d).After(day("2025-01-08")))
	}
}

func TestExpand_WeeklyDaysRespectCountMidWeek(t *testing.T) {
	rule := Rule{
		Type:       TypeWeekly,
		Interval:   2,
		End:        AfterCount(4),
		WeeklyDays: []time.Weekday{time.Tuesday, time.Thursday},
	}

	exp := Expand(day("2025-01-06"), rule, 50)

	assert.Equal(t, []string{"2025-01-06", "2025-01-21", "2025-01-23", "2025-02-04"}, formatDates(exp.Dates))
}

func TestExpand_WeeklyDaysRespectEndDate(t *testing.T) {
	rule := Rule{
		Type:       TypeWeekly,
		Interval:   1,
		End:        OnDate(day("2025-01-15")),
		WeeklyDays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
	}

	exp := Expand(day("2025-01-06"), rule, 50)

	assert.Equal(t, []string{"2025-01-06", "2025-01-13"}, formatDates(exp.Dates))
}

func TestExpand_WeeklyWithoutDaysFollowsStart(t *testing.T) {
	rule := Rule{Type: TypeWeekly, Interval: 1, End: AfterCount(3)}

	// 2025-01-09 is a Thursday.
	exp := Expand(day("2025-01-09"), rule, 10)

	assert.Equal(t, []string{"2025-01-09", "2025-01-16", "2025-01-23"}, formatDates(exp.Dates))
}

func TestExpand_MonthEndClamps(t *testing.T) {
	rule := Rule{Type: TypeMonthly, Interval: 1, End: Never()}

	exp := Expand(day("2025-01-31"), rule, 3)

	assert.Equal(t, []string{"2025-01-31", "2025-02-28", "2025-03-31"}, formatDates(exp.Dates))
}

func TestExpand_MonthEndLeapYear(t *testing.T) {
	rule := Rule{Type: TypeMonthly, Interval: 1, End: AfterCount(4)}

	exp := Expand(day("2024-01-31"), rule, 10)

	assert.Equal(t, []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}, formatDates(exp.Dates))
}

func TestExpand_YearlyFromLeapDay(t *testing.T) {
	rule := Rule{Type: TypeYearly, Interval: 1, End: AfterCount(5)}

	exp := Expand(day("2024-02-29"), rule, 10)

	assert.Equal(t, []string{"2024-02-29", "2025-02-28", "2026-02-28", "2027-02-28", "2028-02-29"}, formatDates(exp.Dates))
}

func TestExpand_CustomIsDayInterval(t *testing.T) {
	rule := Rule{Type: TypeCustom, Interval: 10, End: AfterCount(3)}

	exp := Expand(day("2025-12-25"), rule, 10)

	assert.Equal(t, []string{"2025-12-25", "2026-01-04", "2026-01-14"}, formatDates(exp.Dates))
}

func TestExpand_DropsTimeOfDay(t *testing.T) {
	rule := Rule{Type: TypeDaily, Interval: 1, End: AfterCount(2)}
	start := time.Date(2025, 5, 4, 23, 30, 0, 0, time.FixedZone("UTC+3", 3*3600))

	exp := Expand(start, rule, 10)

	assert.Equal(t, []string{"2025-05-04", "2025-05-05"}, formatDates(exp.Dates))
	assert.Equal(t, time.UTC, exp.Dates[0].Location())
}

func TestExpand_NonPositiveCap(t *testing.T) {
	exp := Expand(day("2025-01-01"), Rule{Type: TypeDaily, Interval: 1, End: Never()}, 0)

	assert.Empty(t, exp.Dates)
}

func TestExpand_PropertiesAcrossRules(t *testing.T) {
	starts := []time.Time{day("2024-01-31"), day("2024-02-29"), day("2025-06-01"), day("2025-12-31")}
	rules := []Rule{
		{Type: TypeDaily, Interval: 1, End: Never()},
		{Type: TypeCustom, Interval: 4, End: OnDate(day("2026-06-01"))},
		{Type: TypeWeekly, Interval: 3, End: Never()},
		{Type: TypeWeekly, Interval: 1, End: AfterCount(17), WeeklyDays: []time.Weekday{time.Sunday, time.Saturday}},
		{Type: TypeWeekly, Interval: 2, End: OnDate(day("2026-03-01")), WeeklyDays: []time.Weekday{time.Friday, time.Monday, time.Monday}},
		{Type: TypeMonthly, Interval: 1, End: Never()},
		{Type: TypeMonthly, Interval: 5, End: AfterCount(7)},
		{Type: TypeYearly, Interval: 1, End: OnDate(day("2040-01-01"))},
	}
	for _, start := range starts {
		for _, rule := range rules {
			t.Run(start.Format(DateLayout)+" "+rule.String(), func(t *testing.T) {
				exp := Expand(start, rule, 40)
				require.NotEmpty(t, exp.Dates)
				assert.LessOrEqual(t, len(exp.Dates), 40)
				assert.Equal(t, start, exp.Dates[0])
				requireStrictlyIncreasing(t, exp.Dates)
				if rule.End.Kind == EndOn {
					for _, d := range exp.Dates[1:] {
						assert.True(t, d.Before(rule.End.Date))
					}
				}
			})
		}
	}
}

func TestExpand_LargestIntervalIncreases(t *testing.T) {
	start := day("2025-01-31")
	rules := []Rule{
		{Type: TypeDaily, Interval: MaxInterval, End: Never()},
		{Type: TypeCustom, Interval: MaxInterval, End: Never()},
		{Type: TypeWeekly, Interval: MaxInterval, End: Never()},
		{Type: TypeWeekly, Interval: MaxInterval, End: Never(), WeeklyDays: []time.Weekday{time.Monday, time.Friday}},
		{Type: TypeMonthly, Interval: MaxInterval, End: Never()},
		{Type: TypeYearly, Interval: MaxInterval, End: Never()},
	}
	for _, rule := range rules {
		t.Run(rule.String(), func(t *testing.T) {
			require.NoError(t, rule.Validate())

			exp := Expand(start, rule, 10)

			assert.Len(t, exp.Dates, 10)
			assert.True(t, exp.Capped)
			requireStrictlyIncreasing(t, exp.Dates)
		})
	}
}

func TestOccurrences_StopsWhenSteppingOverflows(t *testing.T) {
	start := day("2025-01-31")
	for _, typ := range []Type{TypeDaily, TypeWeekly, TypeMonthly, TypeYearly} {
		rule := Rule{Type: typ, Interval: math.MaxInt, End: Never()}
		t.Run(string(typ), func(t *testing.T) {
			require.ErrorIs(t, rule.Validate(), ErrInvalidRule)

			exp := Expand(start, rule, 10)

			require.NotEmpty(t, exp.Dates)
			assert.Equal(t, start, exp.Dates[0])
			requireStrictlyIncreasing(t, exp.Dates)
		})
	}
}

func TestGenerate_CopiesTemplate(t *testing.T) {
	projectID := uint(7)
	tmpl := Template{WorkspaceID: 3, ProjectID: &projectID, Title: "Standup", Priority: "high", Status: "todo", TimeSlot: "morning"}

	instances := Generate(tmpl, day("2025-02-03"), Rule{Type: TypeDaily, Interval: 1, End: AfterCount(3)}, 10)

	require.Len(t, instances, 3)
	for i, inst := range instances {
		assert.Equal(t, tmpl, inst.Template)
		assert.Equal(t, day("2025-02-03").AddDate(0, 0, i), inst.DueDate)
	}
}

func TestOccurrences_StopsEarly(t *testing.T) {
	var got []time.Time
	for d := range (Rule{Type: TypeDaily, Interval: 1, End: Never()}).Occurrences(day("2025-01-01")) {
		got = append(got, d)
		if len(got) == 3 {
			break
		}
	}
	assert.Len(t, got, 3)
}
