package dailyupdate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hadhin/internal/model"
)

type fakeStore struct {
	updates []Entry
	nextID  int64
	now     func() time.Time
}

func (f *fakeStore) Insert(_ context.Context, u *model.DailyUpdate) error {
	f.nextID++
	u.ID = f.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = f.now()
	}
	f.updates = append(f.updates, Entry{DailyUpdate: *u, StaffName: "Staff"})
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*model.DailyUpdate, error) {
	for i := range f.updates {
		if f.updates[i].ID == id {
			return &f.updates[i].DailyUpdate, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListForChild(_ context.Context, childID int64, from, to time.Time, activityType string) ([]Entry, error) {
	var res []Entry
	for _, e := range f.updates {
		if e.ChildID != childID || e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
			continue
		}
		if activityType != "" && e.ActivityType != activityType {
			continue
		}
		res = append(res, e)
	}
	return res, nil
}

func (f *fakeStore) ListAll(_ context.Context, from, to time.Time) ([]Entry, error) {
	var res []Entry
	for _, e := range f.updates {
		if !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			res = append(res, e)
		}
	}
	return res, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, note, photoURL, videoURL, activityType *string) error {
	for i := range f.updates {
		if f.updates[i].ID != id {
			continue
		}
		if note != nil {
			f.updates[i].Note = *note
		}
		if photoURL != nil {
			f.updates[i].PhotoURL = *photoURL
		}
		if videoURL != nil {
			f.updates[i].VideoURL = *videoURL
		}
		if activityType != nil {
			f.updates[i].ActivityType = *activityType
		}
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	for i := range f.updates {
		if f.updates[i].ID == id {
			f.updates = append(f.updates[:i], f.updates[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeChildren struct {
	children []model.Child
}

func (f *fakeChildren) GetByID(_ context.Context, id int64) (*model.Child, error) {
	for i := range f.children {
		if f.children[i].ID == id {
			return &f.children[i], nil
		}
	}
	return nil, nil
}

func (f *fakeChildren) ListScannableByParent(_ context.Context, parentID int64) ([]model.Child, error) {
	var res []model.Child
	for _, c := range f.children {
		if c.ParentID == parentID && c.IsApproved && c.IsActive {
			res = append(res, c)
		}
	}
	return res, nil
}

func newTestService(children ...model.Child) (*Service, *fakeStore) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	store := &fakeStore{now: func() time.Time { return now }}
	s := NewService(store, &fakeChildren{children: children})
	s.now = func() time.Time { return now }
	return s, store
}

func approvedChild(id, parentID int64) model.Child {
	return model.Child{ID: id, Name: "Child", ParentID: parentID, IsApproved: true, IsActive: true}
}

func staffUser(id int64) *model.User {
	return &model.User{ID: id, Role: model.RoleStaff, IsActive: true}
}

func adminUser() *model.User {
	return &model.User{ID: 1, Role: model.RoleAdmin, IsActive: true}
}

func TestAdd(t *testing.T) {
	s, _ := newTestService(approvedChild(1, 7))

	u, c, err := s.Add(context.Background(), 42, AddInput{ChildID: 1, Note: "ate well", ActivityType: "meal"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.StaffID)
	assert.Equal(t, "meal", u.ActivityType)
	assert.Equal(t, int64(1), c.ID)
}

func TestAdd_RejectsUnapprovedAndMissing(t *testing.T) {
	unapproved := approvedChild(2, 7)
	unapproved.IsApproved = false
	s, _ := newTestService(unapproved)

	_, _, err := s.Add(context.Background(), 42, AddInput{ChildID: 2})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, _, err = s.Add(context.Background(), 42, AddInput{ChildID: 99})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, _, err = s.Add(context.Background(), 42, AddInput{})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestChildToday_ScopedToDay(t *testing.T) {
	s, store := newTestService(approvedChild(1, 7))
	ctx := context.Background()

	_, _, err := s.Add(ctx, 42, AddInput{ChildID: 1, Note: "today"})
	require.NoError(t, err)
	store.updates = append(store.updates, Entry{DailyUpdate: model.DailyUpdate{
		ID: 99, ChildID: 1, StaffID: 42, Note: "yesterday",
		CreatedAt: time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC),
	}})

	_, entries, err := s.ChildToday(ctx, staffUser(42), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "today", entries[0].Note)
}

func TestChildToday_ParentOwnership(t *testing.T) {
	s, _ := newTestService(approvedChild(1, 7))

	owner := &model.User{ID: 7, Role: model.RoleParent, IsActive: true}
	_, _, err := s.ChildToday(context.Background(), owner, 1)
	require.NoError(t, err)

	other := &model.User{ID: 8, Role: model.RoleParent, IsActive: true}
	_, _, err = s.ChildToday(context.Background(), other, 1)
	assert.ErrorIs(t, err, model.ErrAuthorization)
}

func TestChildHistory_GroupsAndFilters(t *testing.T) {
	s, store := newTestService(approvedChild(1, 7))

	at := func(day int) time.Time { return time.Date(2026, 3, day, 10, 0, 0, 0, time.UTC) }
	seed := []model.DailyUpdate{
		{ID: 1, ChildID: 1, StaffID: 42, ActivityType: "meal", CreatedAt: at(8)},
		{ID: 2, ChildID: 1, StaffID: 42, ActivityType: "nap", CreatedAt: at(8)},
		{ID: 3, ChildID: 1, StaffID: 42, ActivityType: "meal", CreatedAt: at(10)},
	}
	for _, u := range seed {
		store.updates = append(store.updates, Entry{DailyUpdate: u})
	}

	_, history, err := s.ChildHistory(context.Background(), adminUser(), 1, 7, "")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2026-03-10", history[0].Date, "newest date first")
	assert.Equal(t, "2026-03-08", history[1].Date)
	assert.Len(t, history[1].Updates, 2)

	_, history, err = s.ChildHistory(context.Background(), adminUser(), 1, 7, "nap")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "2026-03-08", history[0].Date)
}

func TestMyChildrenToday(t *testing.T) {
	s, _ := newTestService(approvedChild(1, 7), approvedChild(2, 7), approvedChild(3, 8))
	ctx := context.Background()

	_, _, err := s.Add(ctx, 42, AddInput{ChildID: 1, Note: "a"})
	require.NoError(t, err)
	_, _, err = s.Add(ctx, 42, AddInput{ChildID: 1, Note: "b"})
	require.NoError(t, err)

	res, err := s.MyChildrenToday(ctx, 7)
	require.NoError(t, err)
	require.Len(t, res, 2, "only the caller's children")
	assert.Equal(t, 2, res[0].Count)
	assert.Equal(t, 0, res[1].Count)
}

func TestAllToday_Breakdown(t *testing.T) {
	s, _ := newTestService(approvedChild(1, 7))
	ctx := context.Background()

	for _, at := range []string{"meal", "meal", "nap", ""} {
		_, _, err := s.Add(ctx, 42, AddInput{ChildID: 1, ActivityType: at})
		require.NoError(t, err)
	}

	digest, err := s.AllToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", digest.Date)
	assert.Equal(t, 4, digest.TotalUpdates)
	assert.Equal(t, 2, digest.ActivityBreakdown["meal"])
	assert.Equal(t, 1, digest.ActivityBreakdown["nap"])
	assert.Equal(t, 1, digest.ActivityBreakdown["unspecified"])
}

func TestEditDelete_AuthorOrAdmin(t *testing.T) {
	s, store := newTestService(approvedChild(1, 7))
	ctx := context.Background()

	u, _, err := s.Add(ctx, 42, AddInput{ChildID: 1, Note: "orig"})
	require.NoError(t, err)

	note := "edited"
	got, err := s.Edit(ctx, staffUser(42), u.ID, EditInput{Note: &note})
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Note)

	_, err = s.Edit(ctx, staffUser(43), u.ID, EditInput{Note: &note})
	assert.ErrorIs(t, err, model.ErrAuthorization)

	parentCaller := &model.User{ID: 7, Role: model.RoleParent, IsActive: true}
	assert.ErrorIs(t, s.Delete(ctx, parentCaller, u.ID), model.ErrAuthorization)
	assert.ErrorIs(t, s.Delete(ctx, staffUser(43), u.ID), model.ErrAuthorization)

	require.NoError(t, s.Delete(ctx, adminUser(), u.ID))
	assert.Empty(t, store.updates)

	assert.ErrorIs(t, s.Delete(ctx, adminUser(), u.ID), model.ErrNotFound)
}

func TestActivityTypes(t *testing.T) {
	types := ActivityTypes()
	require.NotEmpty(t, types)
	seen := map[string]bool{}
	for _, at := range types {
		assert.NotEmpty(t, at.Value)
		assert.NotEmpty(t, at.Label)
		assert.False(t, seen[at.Value], "values are unique")
		seen[at.Value] = true
	}
	assert.True(t, seen["meal"])
	assert.True(t, seen["other"])
}
