package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hadhin/internal/auth"
	"hadhin/internal/model"
)

type fakeStore struct {
	users  []model.User
	nextID int64
}

func (f *fakeStore) Insert(_ context.Context, u *model.User) error {
	f.nextID++
	u.ID = f.nextID
	f.users = append(f.users, *u)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetByResetToken(_ context.Context, token string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ResetToken == token && token != "" {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, id int64, name, phone string) error {
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].Name = name
			f.users[i].Phone = phone
		}
	}
	return nil
}

func (f *fakeStore) SetResetToken(_ context.Context, id int64, token string, expires time.Time) error {
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].ResetToken = token
			exp := expires
			f.users[i].ResetTokenExpires = &exp
		}
	}
	return nil
}

func (f *fakeStore) SetPassword(_ context.Context, id int64, hash string) error {
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].PasswordHash = hash
			f.users[i].ResetToken = ""
			f.users[i].ResetTokenExpires = nil
		}
	}
	return nil
}

func validInput() RegisterInput {
	return RegisterInput{Name: "Pat", Email: "pat@example.com", Phone: "0400000000", Password: "hunter22"}
}

func TestRegisterParent(t *testing.T) {
	store := &fakeStore{}
	s := NewService(store, time.Hour)

	u, err := s.RegisterParent(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, model.RoleParent, u.Role)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsVerified, "parents start unverified")
	assert.NotEmpty(t, u.VerificationToken)
	assert.NotEqual(t, "hunter22", u.PasswordHash, "password must be hashed")
	assert.True(t, auth.CheckPassword(u.PasswordHash, "hunter22"))
}

func TestRegisterStaff(t *testing.T) {
	store := &fakeStore{}
	s := NewService(store, time.Hour)

	u, err := s.RegisterStaff(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, u.Role)
	assert.True(t, u.IsVerified)
	assert.Empty(t, u.VerificationToken)
}

func TestRegister_Validation(t *testing.T) {
	s := NewService(&fakeStore{}, time.Hour)

	for _, in := range []RegisterInput{
		{},
		{Name: "Pat", Email: "pat@example.com", Phone: "0400000000"},
		{Name: "Pat", Phone: "0400000000", Password: "x"},
	} {
		_, err := s.RegisterParent(context.Background(), in)
		assert.ErrorIs(t, err, model.ErrValidation)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := NewService(&fakeStore{}, time.Hour)

	_, err := s.RegisterParent(context.Background(), validInput())
	require.NoError(t, err)

	_, err = s.RegisterStaff(context.Background(), validInput())
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestLogin(t *testing.T) {
	store := &fakeStore{}
	s := NewService(store, time.Hour)
	_, err := s.RegisterParent(context.Background(), validInput())
	require.NoError(t, err)

	u, err := s.Login(context.Background(), "pat@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", u.Email)

	_, err = s.Login(context.Background(), "pat@example.com", "wrong")
	assert.ErrorIs(t, err, model.ErrAuthentication)

	_, err = s.Login(context.Background(), "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, model.ErrAuthentication, "unknown email reads the same as a bad password")

	store.users[0].IsActive = false
	_, err = s.Login(context.Background(), "pat@example.com", "hunter22")
	assert.ErrorIs(t, err, model.ErrAuthentication)
}

func TestUpdateProfile_KeepsUnsetFields(t *testing.T) {
	store := &fakeStore{}
	s := NewService(store, time.Hour)
	u, err := s.RegisterParent(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := s.UpdateProfile(context.Background(), u, "Patricia", "")
	require.NoError(t, err)
	assert.Equal(t, "Patricia", updated.Name)
	assert.Equal(t, "0400000000", updated.Phone, "empty phone keeps the old value")
}

func TestPasswordResetFlow(t *testing.T) {
	store := &fakeStore{}
	s := NewService(store, time.Hour)
	_, err := s.RegisterParent(context.Background(), validInput())
	require.NoError(t, err)

	token, err := s.ForgotPassword(context.Background(), "pat@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = s.ForgotPassword(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = s.ResetPassword(context.Background(), token, "newpass99")
	require.NoError(t, err)

	_, err = s.Login(context.Background(), "pat@example.com", "newpass99")
	require.NoError(t, err)
	_, err = s.Login(context.Background(), "pat@example.com", "hunter22")
	assert.ErrorIs(t, err, model.ErrAuthentication)

	// The token is single-use.
	err = s.ResetPassword(context.Background(), token, "again")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	store := &fakeStore{}
	s := NewService(store, time.Hour)
	_, err := s.RegisterParent(context.Background(), validInput())
	require.NoError(t, err)

	token, err := s.ForgotPassword(context.Background(), "pat@example.com")
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	store.users[0].ResetTokenExpires = &past

	err = s.ResetPassword(context.Background(), token, "newpass99")
	assert.ErrorIs(t, err, model.ErrValidation)
}
