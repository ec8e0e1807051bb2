package dailyupdate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hadhin/internal/model"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, u *model.DailyUpdate) error
	GetByID(ctx context.Context, id int64) (*model.DailyUpdate, error)
	ListForChild(ctx context.Context, childID int64, from, to time.Time, activityType string) ([]Entry, error)
	ListAll(ctx context.Context, from, to time.Time) ([]Entry, error)
	Update(ctx context.Context, id int64, note, photoURL, videoURL, activityType *string) error
	Delete(ctx context.Context, id int64) error
}

// ChildDirectory resolves children for update authorization.
type ChildDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.Child, error)
	ListScannableByParent(ctx context.Context, parentID int64) ([]model.Child, error)
}

// Service implements the daily activity log: an independent CRUD log,
// mutable or deletable only by its author or an admin.
type Service struct {
	store    Store
	children ChildDirectory
	now      func() time.Time
}

// NewService creates a service backed by the given stores.
func NewService(store Store, children ChildDirectory) *Service {
	return &Service{store: store, children: children, now: time.Now}
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// AddInput carries a new daily update.
type AddInput struct {
	ChildID      int64
	Note         string
	PhotoURL     string
	VideoURL     string
	ActivityType string
}

// Add records an activity update for an approved child.
func (s *Service) Add(ctx context.Context, staffID int64, in AddInput) (*model.DailyUpdate, *model.Child, error) {
	if in.ChildID == 0 {
		return nil, nil, fmt.Errorf("%w: child ID is required", model.ErrValidation)
	}
	c, err := s.children.GetByID(ctx, in.ChildID)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, fmt.Errorf("%w: child not found", model.ErrNotFound)
	}
	if !c.IsApproved {
		return nil, nil, fmt.Errorf("%w: child is not approved yet", model.ErrValidation)
	}
	u := &model.DailyUpdate{
		ChildID:      in.ChildID,
		StaffID:      staffID,
		Note:         in.Note,
		PhotoURL:     in.PhotoURL,
		VideoURL:     in.VideoURL,
		ActivityType: in.ActivityType,
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return nil, nil, err
	}
	return u, c, nil
}

// ChildToday returns today's updates for one child.
func (s *Service) ChildToday(ctx context.Context, caller *model.User, childID int64) (*model.Child, []Entry, error) {
	c, err := s.visibleChild(ctx, caller, childID)
	if err != nil {
		return nil, nil, err
	}
	from, to := dayBounds(s.now())
	entries, err := s.store.ListForChild(ctx, childID, from, to, "")
	if err != nil {
		return nil, nil, err
	}
	return c, entries, nil
}

// DayUpdates is one calendar date of a child's update history.
type DayUpdates struct {
	Date    string  `json:"date"`
	Updates []Entry `json:"updates"`
}

// ChildHistory groups a child's updates from the last days calendar days by
// date, newest first, optionally filtered by activity type.
func (s *Service) ChildHistory(ctx context.Context, caller *model.User, childID int64, days int, activityType string) (*model.Child, []DayUpdates, error) {
	if days <= 0 {
		days = 7
	}
	c, err := s.visibleChild(ctx, caller, childID)
	if err != nil {
		return nil, nil, err
	}
	todayStart, todayEnd := dayBounds(s.now())
	from := todayStart.AddDate(0, 0, -(days - 1))

	entries, err := s.store.ListForChild(ctx, childID, from, todayEnd, activityType)
	if err != nil {
		return nil, nil, err
	}

	byDate := make(map[string]*DayUpdates)
	for _, e := range entries {
		date := e.CreatedAt.Format("2006-01-02")
		day, ok := byDate[date]
		if !ok {
			day = &DayUpdates{Date: date}
			byDate[date] = day
		}
		day.Updates = append(day.Updates, e)
	}
	history := make([]DayUpdates, 0, len(byDate))
	for _, day := range byDate {
		history = append(history, *day)
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Date > history[j].Date })
	return c, history, nil
}

// ChildUpdates pairs a child with today's updates for the parent digest.
type ChildUpdates struct {
	Child   model.Child `json:"child"`
	Updates []Entry     `json:"updates"`
	Count   int         `json:"updates_count"`
}

// MyChildrenToday returns today's updates for each of a parent's approved
// children.
func (s *Service) MyChildrenToday(ctx context.Context, parentID int64) ([]ChildUpdates, error) {
	children, err := s.children.ListScannableByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	from, to := dayBounds(s.now())
	res := make([]ChildUpdates, 0, len(children))
	for _, c := range children {
		entries, err := s.store.ListForChild(ctx, c.ID, from, to, "")
		if err != nil {
			return nil, err
		}
		res = append(res, ChildUpdates{Child: c, Updates: entries, Count: len(entries)})
	}
	return res, nil
}

// TodayDigest is the staff-facing view of all updates today.
type TodayDigest struct {
	Date              string         `json:"date"`
	TotalUpdates      int            `json:"total_updates"`
	ActivityBreakdown map[string]int `json:"activity_breakdown"`
	Updates           []Entry        `json:"updates"`
}

// AllToday returns every update recorded today with a per-activity count.
func (s *Service) AllToday(ctx context.Context) (*TodayDigest, error) {
	from, to := dayBounds(s.now())
	entries, err := s.store.ListAll(ctx, from, to)
	if err != nil {
		return nil, err
	}
	digest := &TodayDigest{
		Date:              from.Format("2006-01-02"),
		TotalUpdates:      len(entries),
		ActivityBreakdown: make(map[string]int),
		Updates:           entries,
	}
	for _, e := range entries {
		key := e.ActivityType
		if key == "" {
			key = "unspecified"
		}
		digest.ActivityBreakdown[key]++
	}
	return digest, nil
}

// EditInput carries partial changes; nil fields are left untouched.
type EditInput struct {
	Note         *string
	PhotoURL     *string
	VideoURL     *string
	ActivityType *string
}

// Edit changes an update. Staff may only edit their own; admins may edit any.
func (s *Service) Edit(ctx context.Context, caller *model.User, id int64, in EditInput) (*model.DailyUpdate, error) {
	if _, err := s.editable(ctx, caller, id); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, id, in.Note, in.PhotoURL, in.VideoURL, in.ActivityType); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

// Delete removes an update under the same ownership rule as Edit.
func (s *Service) Delete(ctx context.Context, caller *model.User, id int64) error {
	if _, err := s.editable(ctx, caller, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) editable(ctx context.Context, caller *model.User, id int64) (*model.DailyUpdate, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: update not found", model.ErrNotFound)
	}
	switch caller.Role {
	case model.RoleAdmin:
	case model.RoleStaff:
		if u.StaffID != caller.ID {
			return nil, fmt.Errorf("%w: you can only modify your own updates", model.ErrAuthorization)
		}
	default:
		return nil, fmt.Errorf("%w: access denied", model.ErrAuthorization)
	}
	return u, nil
}

func (s *Service) visibleChild(ctx context.Context, caller *model.User, childID int64) (*model.Child, error) {
	c, err := s.children.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: child not found", model.ErrNotFound)
	}
	if caller.Role == model.RoleParent && c.ParentID != caller.ID {
		return nil, fmt.Errorf("%w: not your child", model.ErrAuthorization)
	}
	return c, nil
}

// ActivityType describes one selectable activity category.
type ActivityType struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// ActivityTypes lists the selectable activity categories.
func ActivityTypes() []ActivityType {
	return []ActivityType{
		{Value: "meal", Label: "Meal time", Icon: "🍽️"},
		{Value: "nap", Label: "Nap time", Icon: "😴"},
		{Value: "play", Label: "Play time", Icon: "🎮"},
		{Value: "learning", Label: "Learning activity", Icon: "📚"},
		{Value: "sports", Label: "Sports activity", Icon: "⚽"},
		{Value: "art", Label: "Art activity", Icon: "🎨"},
		{Value: "music", Label: "Music activity", Icon: "🎵"},
		{Value: "medical", Label: "Medical care", Icon: "🏥"},
		{Value: "other", Label: "Other activities", Icon: "📝"},
	}
}
