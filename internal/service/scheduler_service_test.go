package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("09:05")
	require.NoError(t, err)
	assert.Equal(t, "0 5 9 * * *", spec)

	for _, bad := range []string{"", "9", "24:00", "12:60", "aa:bb"} {
		_, err := buildDailySpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestSchedulerService_ScheduleReport(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	_, err := s.ScheduleReport("", 0, func() {})
	assert.Error(t, err)

	_, err = s.ScheduleReport("", 5*time.Hour, func() {})
	require.NoError(t, err)

	id, err := s.ScheduleReport("07:30", 0, func() {})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()
	next := s.Next(id)
	require.False(t, next.IsZero())
	assert.Equal(t, 7, next.Hour())
	assert.Equal(t, 30, next.Minute())
}

func TestSchedulerService_Replace(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	id, err := s.ScheduleInterval(time.Hour, func() {})
	require.NoError(t, err)

	_, err = s.Replace(id, -time.Hour, func() {})
	assert.Error(t, err)

	next, err := s.Replace(id, 2*time.Hour, func() {})
	require.NoError(t, err)
	assert.NotEqual(t, id, next)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestParseClock(t *testing.T) {
	hour, minute, err := parseClock(" 7:45 ")
	require.NoError(t, err)
	assert.Equal(t, 7, hour)
	assert.Equal(t, 45, minute)
}
