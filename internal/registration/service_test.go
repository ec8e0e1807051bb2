package registration

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hadhin/internal/model"
)

type fakeStore struct {
	regs   []model.Registration
	nextID int64
	now    func() time.Time
}

func (f *fakeStore) Insert(_ context.Context, reg *model.Registration) error {
	f.nextID++
	reg.ID = f.nextID
	if reg.SubmittedAt.IsZero() {
		reg.SubmittedAt = f.now()
	}
	f.regs = append(f.regs, *reg)
	return nil
}

func (f *fakeStore) GetByNumber(_ context.Context, number string) (*model.Registration, error) {
	for i := range f.regs {
		if f.regs[i].RegistrationNumber == number {
			return &f.regs[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) List(_ context.Context) ([]model.Registration, error) {
	res := make([]model.Registration, len(f.regs))
	copy(res, f.regs)
	return res, nil
}

func (f *fakeStore) SetStatus(_ context.Context, number, status string, notes []model.ReviewNote) error {
	for i := range f.regs {
		if f.regs[i].RegistrationNumber == number {
			f.regs[i].Status = status
			f.regs[i].ReviewNotes = notes
		}
	}
	return nil
}

func newTestService() (*Service, *fakeStore) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{now: func() time.Time { return now }}
	s := NewService(store)
	s.now = func() time.Time { return now }
	return s, store
}

func validSubmit() SubmitInput {
	return SubmitInput{ChildName: "Mia", ParentName: "Pat", Phone: "0400000000"}
}

func TestNewNumberFormat(t *testing.T) {
	re := regexp.MustCompile(`^BK-[0-9A-F-]{6}$`)
	n := NewNumber()
	assert.Regexp(t, re, n)
	assert.NotEqual(t, n, NewNumber())
}

func TestSubmit(t *testing.T) {
	s, _ := newTestService()

	reg, err := s.Submit(context.Background(), validSubmit())
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationPending, reg.Status)
	assert.True(t, strings.HasPrefix(reg.RegistrationNumber, "BK-"))

	in := validSubmit()
	in.Number = "BK-FIXED1"
	reg, err = s.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "BK-FIXED1", reg.RegistrationNumber, "pre-assigned numbers are kept")
}

func TestSubmit_Validation(t *testing.T) {
	s, _ := newTestService()

	_, err := s.Submit(context.Background(), SubmitInput{ChildName: "Mia"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = s.Submit(context.Background(), SubmitInput{ParentName: "Pat"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestGet(t *testing.T) {
	s, _ := newTestService()
	reg, err := s.Submit(context.Background(), validSubmit())
	require.NoError(t, err)

	got, err := s.Get(context.Background(), reg.RegistrationNumber)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.ID)

	_, err = s.Get(context.Background(), "BK-NOPE99")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	s, store := newTestService()
	reg, err := s.Submit(context.Background(), validSubmit())
	require.NoError(t, err)

	err = s.UpdateStatus(context.Background(), reg.RegistrationNumber, model.RegistrationApproved, "looks good")
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationApproved, store.regs[0].Status)
	require.Len(t, store.regs[0].ReviewNotes, 1)
	assert.Equal(t, "looks good", store.regs[0].ReviewNotes[0].Note)

	// A second note appends rather than replaces.
	err = s.UpdateStatus(context.Background(), reg.RegistrationNumber, model.RegistrationRejected, "changed my mind")
	require.NoError(t, err)
	assert.Len(t, store.regs[0].ReviewNotes, 2)

	// An empty note leaves the trail unchanged.
	err = s.UpdateStatus(context.Background(), reg.RegistrationNumber, model.RegistrationPending, "")
	require.NoError(t, err)
	assert.Len(t, store.regs[0].ReviewNotes, 2)

	err = s.UpdateStatus(context.Background(), reg.RegistrationNumber, "archived", "")
	assert.ErrorIs(t, err, model.ErrValidation)

	err = s.UpdateStatus(context.Background(), "BK-NOPE99", model.RegistrationApproved, "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStatistics(t *testing.T) {
	s, store := newTestService()
	ctx := context.Background()

	at := func(daysAgo int) time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
	}
	seed := []struct {
		status  string
		daysAgo int
	}{
		{model.RegistrationPending, 0},
		{model.RegistrationApproved, 3},
		{model.RegistrationRejected, 10},
		{model.RegistrationPending, 45},
	}
	for i, row := range seed {
		_, err := s.Submit(ctx, validSubmit())
		require.NoError(t, err)
		store.regs[i].Status = row.status
		store.regs[i].SubmittedAt = at(row.daysAgo)
	}

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 1, stats.Today)
	assert.Equal(t, 2, stats.ThisWeek)
	assert.Equal(t, 3, stats.ThisMonth)
}

func TestAllowedFile(t *testing.T) {
	for _, name := range []string{"photo.png", "photo.JPG", "form.pdf", "doc.docx"} {
		assert.True(t, AllowedFile(name), name)
	}
	for _, name := range []string{"script.sh", "binary.exe", "noext", "archive.zip"} {
		assert.False(t, AllowedFile(name), name)
	}
}

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()

	rec, err := SaveUpload(dir, "BK-ABC123", "birth_certificate", "cert.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, "cert.pdf", rec.OriginalName)
	assert.Equal(t, "birth_certificate", rec.FileType)
	assert.True(t, strings.HasPrefix(rec.SavedName, "BK-ABC123_"))
	assert.True(t, strings.HasSuffix(rec.SavedName, "_cert.pdf"))

	data, err := os.ReadFile(filepath.Join(dir, rec.SavedName))
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))

	_, err = SaveUpload(dir, "BK-ABC123", "other", "evil.exe", strings.NewReader("nope"))
	assert.ErrorIs(t, err, model.ErrValidation)
}
