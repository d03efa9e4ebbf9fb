package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth-service/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-auth-service/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingLookup struct{}

func (failingLookup) GetByID(context.Context, string) (*entity.User, error) {
	return nil, errors.New("store down")
}

func gatedRouter(tokens AccessVerifier, users repository.UserLookup) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthGate(tokens, users, helpers.NewDiscardLogger()), func(c *gin.Context) {
		u, ok := IdentityFrom(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, u.ID+"|"+c.GetString(CtxUserID))
	})
	return r
}

func get(r http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthGate(t *testing.T) {
	tokens := helpers.NewJWTManager("gate-secret", 15*time.Minute, time.Hour)
	repo := memory.NewUserRepository()
	u, err := repo.Create(context.Background(), entity.NewUser{Name: "Ann", Email: "ann@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	access, _, err := tokens.Issue(u.ID, helpers.AccessToken)
	require.NoError(t, err)
	refresh, _, err := tokens.Issue(u.ID, helpers.RefreshToken)
	require.NoError(t, err)
	expired, _, err := tokens.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).Issue(u.ID, helpers.AccessToken)
	require.NoError(t, err)
	anonymous, _, err := tokens.Issue("", helpers.AccessToken)
	require.NoError(t, err)
	ghost, _, err := tokens.Issue("00000000-0000-0000-0000-000000000000", helpers.AccessToken)
	require.NoError(t, err)

	r := gatedRouter(tokens, repo)

	testCases := []struct {
		description string
		header      string
		wantStatus  int
		wantBody    string
		wantAuthHdr string
	}{
		{"valid access token", "Bearer " + access, http.StatusOK, u.ID + "|" + u.ID, ""},
		{"scheme is case insensitive", "bearer " + access, http.StatusOK, u.ID + "|" + u.ID, ""},
		{"missing header", "", http.StatusUnauthorized, MsgNotAuthenticated, "Bearer"},
		{"wrong scheme", "Basic " + access, http.StatusUnauthorized, MsgNotAuthenticated, "Bearer"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, MsgNotAuthenticated, "Bearer"},
		{"refresh token rejected", "Bearer " + refresh, http.StatusUnauthorized, MsgTokenWrongKind, `Bearer error="invalid_token"`},
		{"token without subject", "Bearer " + anonymous, http.StatusUnauthorized, MsgTokenNoSubject, `Bearer error="invalid_token"`},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, MsgTokenExpired, `Bearer error="invalid_token"`},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, MsgTokenInvalid, `Bearer error="invalid_token"`},
		{"user no longer exists", "Bearer " + ghost, http.StatusUnauthorized, MsgUserNotFound, `Bearer error="invalid_token"`},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			w := get(r, tc.header)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
			assert.Equal(t, tc.wantAuthHdr, w.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestAuthGate_StoreFailure(t *testing.T) {
	tokens := helpers.NewJWTManager("gate-secret", 15*time.Minute, time.Hour)
	access, _, err := tokens.Issue("u1", helpers.AccessToken)
	require.NoError(t, err)

	w := get(gatedRouter(tokens, failingLookup{}), "Bearer "+access)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthGate_DeletedUserLosesAccess(t *testing.T) {
	tokens := helpers.NewJWTManager("gate-secret", 15*time.Minute, time.Hour)
	repo := memory.NewUserRepository()
	u, err := repo.Create(context.Background(), entity.NewUser{Name: "Ann", Email: "ann@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	access, _, err := tokens.Issue(u.ID, helpers.AccessToken)
	require.NoError(t, err)
	r := gatedRouter(tokens, repo)

	require.Equal(t, http.StatusOK, get(r, "Bearer "+access).Code)
	require.NoError(t, repo.Delete(context.Background(), u.ID))
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+access).Code)
}

func TestTokenFailureMessage(t *testing.T) {
	testCases := []struct {
		err  error
		want string
	}{
		{helpers.ErrTokenExpired, MsgTokenExpired},
		{helpers.ErrTokenWrongKind, MsgTokenWrongKind},
		{helpers.ErrTokenMissingSubject, MsgTokenNoSubject},
		{helpers.ErrTokenInvalid, MsgTokenInvalid},
		{errors.New("unexpected"), MsgTokenInvalid},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, TokenFailureMessage(tc.err), tc.err.Error())
	}
}

func TestBearerToken(t *testing.T) {
	testCases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"  BEARER   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}
	for _, tc := range testCases {
		got, ok := bearerToken(tc.header)
		assert.Equal(t, tc.ok, ok, tc.header)
		assert.Equal(t, tc.want, got, tc.header)
	}
}
