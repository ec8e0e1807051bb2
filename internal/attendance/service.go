package attendance

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"hadhin/internal/model"
)

// EventStore is the persistence surface for attendance events.
type EventStore interface {
	Insert(ctx context.Context, e *model.AttendanceEvent) error
	LastInRange(ctx context.Context, childID int64, from, to time.Time) (*model.AttendanceEvent, error)
	ListInRange(ctx context.Context, childID int64, from, to time.Time) ([]model.AttendanceEvent, error)
	CountDistinctCheckIns(ctx context.Context, from, to time.Time) (int, error)
}

// ChildDirectory resolves children for scans and roster queries.
type ChildDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.Child, error)
	GetScannable(ctx context.Context, qrCode string) (*model.Child, error)
	ListRoster(ctx context.Context) ([]model.Child, error)
	CountRoster(ctx context.Context) (int, error)
}

// Service is the attendance engine: it infers entry/exit from scan order and
// answers day-scoped presence and range statistics.
type Service struct {
	events   EventStore
	children ChildDirectory
	now      func() time.Time
}

// NewService creates a service backed by the given stores.
func NewService(events EventStore, children ChildDirectory) *Service {
	return &Service{events: events, children: children, now: time.Now}
}

// dayBounds returns the [start, next-day-start) window containing t, in t's
// location. "Today" is the server-local calendar date.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// ScanResult is the outcome of one QR scan.
type ScanResult struct {
	Event   model.AttendanceEvent `json:"attendance"`
	Child   model.Child           `json:"child"`
	Status  model.EventStatus     `json:"status"`
	Message string                `json:"message"`
}

// RecordScan resolves a scan token to an approved, active child, derives the
// event type from the child's last event today, and appends the event.
//
// The decision rule is a strict two-state alternation per calendar day: no
// event today or a trailing check_out means this scan is a check_in; a
// trailing check_in means check_out. A third scan simply toggles again.
//
// Two concurrent scans of the same child can both observe the same last
// event and record duplicate statuses; the read and the insert are
// deliberately not serialized.
func (s *Service) RecordScan(ctx context.Context, qrCode string, staffID int64, notes string) (*ScanResult, error) {
	if qrCode == "" {
		return nil, fmt.Errorf("%w: QR code is required", model.ErrValidation)
	}
	c, err := s.children.GetScannable(ctx, qrCode)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: invalid QR code or child not approved", model.ErrNotFound)
	}

	from, to := dayBounds(s.now())
	last, err := s.events.LastInRange(ctx, c.ID, from, to)
	if err != nil {
		return nil, err
	}

	status := model.StatusCheckIn
	message := fmt.Sprintf("%s checked in successfully", c.Name)
	if last != nil && last.Status == model.StatusCheckIn {
		status = model.StatusCheckOut
		message = fmt.Sprintf("%s checked out successfully", c.Name)
	}

	e := &model.AttendanceEvent{
		ChildID: c.ID,
		StaffID: staffID,
		Status:  status,
		Notes:   notes,
	}
	if err := s.events.Insert(ctx, e); err != nil {
		return nil, err
	}
	return &ScanResult{Event: *e, Child: *c, Status: status, Message: message}, nil
}

// ChildDay is a child's attendance for one calendar date.
type ChildDay struct {
	Child  model.Child             `json:"child"`
	Status model.Presence          `json:"current_status"`
	Events []model.AttendanceEvent `json:"attendance_records"`
}

// ChildToday returns a child's events for today plus the current status:
// present iff the chronologically last event today is a check_in. Presence
// is day-scoped; an unclosed check_in from a prior day does not carry over.
func (s *Service) ChildToday(ctx context.Context, caller *model.User, childID int64) (*ChildDay, error) {
	c, err := s.visibleChild(ctx, caller, childID)
	if err != nil {
		return nil, err
	}
	from, to := dayBounds(s.now())
	events, err := s.events.ListInRange(ctx, childID, from, to)
	if err != nil {
		return nil, err
	}
	status := model.Absent
	if len(events) > 0 && events[len(events)-1].Status == model.StatusCheckIn {
		status = model.Present
	}
	return &ChildDay{Child: *c, Status: status, Events: events}, nil
}

// RosterEntry is one child's line on the daily roster.
type RosterEntry struct {
	Child         model.Child    `json:"child"`
	Status        model.Presence `json:"current_status"`
	LastEventTime *time.Time     `json:"last_action_time"`
}

// RosterSummary aggregates the roster counts. Present + Absent == Total.
type RosterSummary struct {
	TotalChildren int `json:"total_children"`
	Present       int `json:"present"`
	Absent        int `json:"absent"`
}

// Roster is the full daily roster.
type Roster struct {
	Date     string        `json:"date"`
	Summary  RosterSummary `json:"summary"`
	Children []RosterEntry `json:"children"`
}

// TodayRoster computes today's status for every approved, active child.
func (s *Service) TodayRoster(ctx context.Context) (*Roster, error) {
	children, err := s.children.ListRoster(ctx)
	if err != nil {
		return nil, err
	}
	from, to := dayBounds(s.now())

	roster := &Roster{Date: from.Format("2006-01-02"), Children: make([]RosterEntry, 0, len(children))}
	for _, c := range children {
		last, err := s.events.LastInRange(ctx, c.ID, from, to)
		if err != nil {
			return nil, err
		}
		entry := RosterEntry{Child: c, Status: model.Absent}
		if last != nil {
			if last.Status == model.StatusCheckIn {
				entry.Status = model.Present
			}
			ts := last.Timestamp
			entry.LastEventTime = &ts
		}
		if entry.Status == model.Present {
			roster.Summary.Present++
		}
		roster.Children = append(roster.Children, entry)
	}
	roster.Summary.TotalChildren = len(children)
	roster.Summary.Absent = roster.Summary.TotalChildren - roster.Summary.Present
	return roster, nil
}

// DayHistory is one calendar date in a child's attendance history.
//
// Its Status uses a different rule than ChildToday: a date is present when
// ANY event that date is a check_in, so a day with entry then exit reads
// present here while ChildToday would report absent after the exit. The two
// answer different questions ("did the child attend" vs "is the child here
// now") and are kept separate on purpose.
type DayHistory struct {
	Date   string                  `json:"date"`
	Events []model.AttendanceEvent `json:"records"`
	Status model.Presence          `json:"status"`
}

// ChildHistory groups a child's events from the last windowDays calendar
// days (inclusive of today) by date, newest date first. The window is an
// explicit date range, so no events inside it are ever truncated.
func (s *Service) ChildHistory(ctx context.Context, caller *model.User, childID int64, windowDays int) (*model.Child, []DayHistory, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	c, err := s.visibleChild(ctx, caller, childID)
	if err != nil {
		return nil, nil, err
	}
	todayStart, todayEnd := dayBounds(s.now())
	from := todayStart.AddDate(0, 0, -(windowDays - 1))

	events, err := s.events.ListInRange(ctx, childID, from, todayEnd)
	if err != nil {
		return nil, nil, err
	}
	return c, groupByDate(events), nil
}

// groupByDate buckets events by their calendar date, newest date first.
// A date is present when it holds at least one check_in.
func groupByDate(events []model.AttendanceEvent) []DayHistory {
	byDate := make(map[string]*DayHistory)
	for _, e := range events {
		date := e.Timestamp.Format("2006-01-02")
		day, ok := byDate[date]
		if !ok {
			day = &DayHistory{Date: date, Status: model.Absent}
			byDate[date] = day
		}
		day.Events = append(day.Events, e)
		if e.Status == model.StatusCheckIn {
			day.Status = model.Present
		}
	}
	days := make([]DayHistory, 0, len(byDate))
	for _, day := range byDate {
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	return days
}

// DayStat is one day's attendance aggregate.
type DayStat struct {
	Date           string  `json:"date"`
	TotalChildren  int     `json:"total_children"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// Stats covers a trailing window of calendar days.
type Stats struct {
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	Days           int       `json:"days"`
	TotalChildren  int       `json:"total_children"`
	AverageRate    float64   `json:"average_attendance_rate"`
	Daily          []DayStat `json:"daily_stats"`
}

// Statistics computes per-day attendance over the last days calendar days,
// inclusive of today, oldest first. A day's present count is the number of
// distinct children with at least one check_in that date; the rate is
// present/total*100 rounded to two decimals, zero when the roster is empty.
func (s *Service) Statistics(ctx context.Context, days int) (*Stats, error) {
	if days <= 0 {
		days = 7
	}
	total, err := s.children.CountRoster(ctx)
	if err != nil {
		return nil, err
	}

	todayStart, _ := dayBounds(s.now())
	start := todayStart.AddDate(0, 0, -(days - 1))

	stats := &Stats{
		StartDate:     start.Format("2006-01-02"),
		EndDate:       todayStart.Format("2006-01-02"),
		Days:          days,
		TotalChildren: total,
		Daily:         make([]DayStat, 0, days),
	}

	var rateSum float64
	for i := 0; i < days; i++ {
		from := start.AddDate(0, 0, i)
		to := from.AddDate(0, 0, 1)
		present, err := s.events.CountDistinctCheckIns(ctx, from, to)
		if err != nil {
			return nil, err
		}
		rate := 0.0
		if total > 0 {
			rate = round2(float64(present) / float64(total) * 100)
		}
		rateSum += rate
		stats.Daily = append(stats.Daily, DayStat{
			Date:           from.Format("2006-01-02"),
			TotalChildren:  total,
			Present:        present,
			Absent:         total - present,
			AttendanceRate: rate,
		})
	}
	stats.AverageRate = round2(rateSum / float64(days))
	return stats, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// visibleChild loads a child and applies the parent-ownership rule.
func (s *Service) visibleChild(ctx context.Context, caller *model.User, childID int64) (*model.Child, error) {
	c, err := s.children.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: child not found", model.ErrNotFound)
	}
	if caller != nil && caller.Role == model.RoleParent && c.ParentID != caller.ID {
		return nil, fmt.Errorf("%w: not your child", model.ErrAuthorization)
	}
	return c, nil
}
