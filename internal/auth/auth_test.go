package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hadhin/internal/model"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "hadhin-test"
)

func TestIssueParseRoundTrip(t *testing.T) {
	token, exp, err := Issue(42, model.RoleStaff, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := Parse(token, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, claims.Role)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestParse_Rejections(t *testing.T) {
	token, _, err := Issue(42, model.RoleStaff, testIssuer, testKey, time.Hour)
	require.NoError(t, err)

	_, err = Parse(token, "other-key", testIssuer)
	assert.Error(t, err, "wrong signing key")

	_, err = Parse(token, testKey, "other-issuer")
	assert.Error(t, err, "wrong issuer")

	expired, _, err := Issue(42, model.RoleStaff, testIssuer, testKey, -time.Minute)
	require.NoError(t, err)
	_, err = Parse(expired, testKey, testIssuer)
	assert.Error(t, err, "expired token")

	_, err = Parse("not.a.token", testKey, testIssuer)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("not a hash", "hunter22"))
}

type fakeLoader struct {
	users map[int64]*model.User
}

func (f *fakeLoader) GetByID(_ context.Context, id int64) (*model.User, error) {
	return f.users[id], nil
}

func newAuthRouter(loader UserLoader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Authenticated(testKey, testIssuer, loader), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c).ID})
	})
	r.GET("/admin", Authenticated(testKey, testIssuer, loader), RequireRoles(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticated(t *testing.T) {
	loader := &fakeLoader{users: map[int64]*model.User{
		1: {ID: 1, Role: model.RoleParent, IsActive: true},
		2: {ID: 2, Role: model.RoleParent, IsActive: false},
	}}
	r := newAuthRouter(loader)

	token, _, err := Issue(1, model.RoleParent, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(r, "/me", token).Code)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code, "missing header")
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "garbage").Code)

	// Valid token but deactivated account.
	token, _, err = Issue(2, model.RoleParent, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", token).Code)

	// Valid token for an account that no longer exists.
	token, _, err = Issue(99, model.RoleParent, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", token).Code)
}

func TestRequireRoles(t *testing.T) {
	loader := &fakeLoader{users: map[int64]*model.User{
		1: {ID: 1, Role: model.RoleParent, IsActive: true},
		2: {ID: 2, Role: model.RoleAdmin, IsActive: true},
	}}
	r := newAuthRouter(loader)

	parentToken, _, err := Issue(1, model.RoleParent, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", parentToken).Code)

	adminToken, _, err := Issue(2, model.RoleAdmin, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(r, "/admin", adminToken).Code)
}
