package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-planner/internal/model"
	"workspace-planner/internal/recurrence"
)

func TestParseWeekdays(t *testing.T) {
	days, err := parseWeekdays("пн, Ср пт.")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, days)

	days, err = parseWeekdays("0;6")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 6}, days)

	days, err = parseWeekdays("mon/friday")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, days)

	for _, bad := range []string{"", "  ", "7", "funday"} {
		_, err := parseWeekdays(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseInterval(t *testing.T) {
	n, err := parseInterval(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = parseInterval("1000")
	require.NoError(t, err)
	assert.Equal(t, recurrence.MaxInterval, n)

	for _, bad := range []string{"0", "-2", "1001", "9223372036854775807", "два"} {
		_, err := parseInterval(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseEndCondition(t *testing.T) {
	end, err := parseEndCondition("Никогда")
	require.NoError(t, err)
	assert.Equal(t, "never", end.kind)

	end, err = parseEndCondition("10")
	require.NoError(t, err)
	assert.Equal(t, "after", end.kind)
	require.NotNil(t, end.count)
	assert.Equal(t, 10, *end.count)

	end, err = parseEndCondition("2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, "on", end.kind)
	require.NotNil(t, end.date)
	assert.Equal(t, "2025-12-31", *end.date)

	_, err = parseEndCondition("0")
	assert.Error(t, err)
	_, err = parseEndCondition("потом")
	assert.Error(t, err)
}

func TestParseEndConditionFeedsNormalize(t *testing.T) {
	end, err := parseEndCondition("3")
	require.NoError(t, err)
	kind := "daily"
	rule, err := recurrence.Normalize(true, recurrence.Input{Type: &kind, EndType: &end.kind, EndCount: end.count, EndDate: end.date})
	require.NoError(t, err)
	assert.Equal(t, recurrence.AfterCount(3), rule.End)
}

func TestParseRecurrenceType(t *testing.T) {
	cases := map[string]string{
		btnDaily:      "daily",
		"еженедельно": "weekly",
		btnMonthly:    "monthly",
		" Ежегодно ":  "yearly",
		btnCustom:     "custom",
		"Weekly":      "weekly",
	}
	for input, want := range cases {
		got, ok := parseRecurrenceType(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
	_, ok := parseRecurrenceType("иногда")
	assert.False(t, ok)
}

func TestDescribeRule(t *testing.T) {
	cases := []struct {
		rule recurrence.Rule
		want string
	}{
		{recurrence.Rule{Type: recurrence.TypeDaily, Interval: 1, End: recurrence.Never()}, "каждый день"},
		{recurrence.Rule{Type: recurrence.TypeCustom, Interval: 3, End: recurrence.AfterCount(5)}, "каждые 3 дн., 5 раз"},
		{
			recurrence.Rule{Type: recurrence.TypeWeekly, Interval: 2, End: recurrence.Never(), WeeklyDays: []time.Weekday{time.Monday, time.Friday}},
			"каждые 2 нед. (пн, пт)",
		},
		{
			recurrence.Rule{Type: recurrence.TypeMonthly, Interval: 1, End: recurrence.OnDate(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))},
			"каждый месяц, до 2025-12-31",
		},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, describeRule(tc.rule))
	}
}

func TestParseCallback(t *testing.T) {
	prefix, id, ok := parseCallback("stop:12")
	require.True(t, ok)
	assert.Equal(t, cbStopPrefix, prefix)
	assert.Equal(t, uint(12), id)

	_, _, ok = parseCallback("complete:x")
	assert.False(t, ok)
	_, _, ok = parseCallback("unknown:1")
	assert.False(t, ok)
}

func TestCommandID(t *testing.T) {
	id, ok := commandID(" #7 ")
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)

	_, ok = commandID("0")
	assert.False(t, ok)
	_, ok = commandID("")
	assert.False(t, ok)
}

func TestSplitByHorizon(t *testing.T) {
	near := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	far := time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{{ID: 1, DueDate: &near}, {ID: 2}, {ID: 3, DueDate: &far}}

	visible, hidden := splitByHorizon(tasks, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, hidden)
	require.Len(t, visible, 2)
	assert.Equal(t, uint(1), visible[0].ID)
	assert.Equal(t, uint(2), visible[1].ID)
}

func TestFormatTask(t *testing.T) {
	due := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	recID := uint(4)
	line := formatTask(model.Task{ID: 5, Title: "полить <цветы>", DueDate: &due, RecurrenceID: &recID}, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	assert.Contains(t, line, iconOverdue+iconRecurring)
	assert.Contains(t, line, "Полить &lt;цветы&gt;")
	assert.Contains(t, line, "просрочено")
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Купить", shortTitle("купить", 10))
	assert.Equal(t, "Очень дл…", shortTitle("очень длинное название", 9))
}

func TestInputPredicates(t *testing.T) {
	assert.True(t, isSkipInput(btnSkip))
	assert.True(t, isSkipInput(" - "))
	assert.True(t, isYesInput("Да"))
	assert.True(t, isNoInput("нет"))
	assert.True(t, isConfirmInput(btnConfirm))
	assert.True(t, isCancelInput(btnCancel))
	assert.True(t, isCancelDialogInput(btnCancelDialog))
	assert.False(t, isCancelDialogInput("отмена"))
}

func TestDialogs(t *testing.T) {
	d := newDialogs[confirmationRequest]()
	_, ok := d.get(1)
	assert.False(t, ok)

	d.set(1, confirmationRequest{id: 9, action: actionStopSeries})
	got, ok := d.get(1)
	require.True(t, ok)
	assert.Equal(t, uint(9), got.id)

	d.drop(1)
	_, ok = d.get(1)
	assert.False(t, ok)
}
