package service

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var errNonPositiveInterval = errors.New("interval must be positive")

// SchedulerService runs the periodic report jobs. A job still running when its
// next tick arrives is skipped, and a panicking job is logged, not fatal.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	logger := cron.PrintfLogger(log.New(os.Stdout, "[cron] ", log.LstdFlags))
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// ScheduleReport registers job at a fixed HH:MM time when dailyAt is set and
// every interval otherwise.
func (s *SchedulerService) ScheduleReport(dailyAt string, interval time.Duration, job func()) (cron.EntryID, error) {
	if strings.TrimSpace(dailyAt) != "" {
		return s.ScheduleDaily(dailyAt, job)
	}
	return s.ScheduleInterval(interval, job)
}

func (s *SchedulerService) ScheduleDaily(clock string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(clock)
	if err != nil {
		return 0, err
	}
	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return 0, fmt.Errorf("schedule daily job: %w", err)
	}
	return id, nil
}

// ScheduleInterval rounds interval down to whole seconds, minimum one.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, errNonPositiveInterval
	}
	every := max(interval.Truncate(time.Second), time.Second)
	return s.cron.Schedule(cron.Every(every), cron.FuncJob(job)), nil
}

// Replace moves job to a new interval. The old entry survives if the new
// one cannot be registered.
func (s *SchedulerService) Replace(id cron.EntryID, interval time.Duration, job func()) (cron.EntryID, error) {
	next, err := s.ScheduleInterval(interval, job)
	if err != nil {
		return id, err
	}
	s.cron.Remove(id)
	return next, nil
}

// Next is zero until Start is called.
func (s *SchedulerService) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop blocks until running jobs return.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

func buildDailySpec(clock string) (string, error) {
	hour, minute, err := parseClock(clock)
	if err != nil {
		return "", err
	}
	// sec min hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

// parseClock parses an HH:MM wall clock time. Single-digit hours are accepted.
func parseClock(clock string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	return t.Hour(), t.Minute(), nil
}
