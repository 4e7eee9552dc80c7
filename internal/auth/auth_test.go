package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memAdmins map[string]Admin

func (m memAdmins) GetByEmail(_ context.Context, email string) (Admin, error) {
	a, ok := m[NormalizeEmail(email)]
	if !ok {
		return Admin{}, apperr.ErrNotFound
	}
	return a, nil
}

func newIssuer(now time.Time) *Issuer {
	i := NewIssuer("test-secret", time.Hour)
	i.Now = func() time.Time { return now }
	return i
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, VerifyPassword(h, "correct horse"))
	assert.False(t, VerifyPassword(h, "wrong"))
}

func TestIssueAndParse(t *testing.T) {
	now := time.Now()
	i := newIssuer(now)

	tok, err := i.Issue(Admin{ID: "a-1", Email: "ops@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)

	c, err := i.Parse(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a-1", c.Subject)
	assert.Equal(t, "ops@example.com", c.Email)
}

func TestParse_ExpiredAndForeign(t *testing.T) {
	now := time.Now()
	i := newIssuer(now)
	tok, err := i.Issue(Admin{ID: "a-1"})
	require.NoError(t, err)

	later := newIssuer(now.Add(2 * time.Hour))
	_, err = later.Parse(tok.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	other := NewIssuer("another-secret", time.Hour)
	_, err = other.Parse(tok.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestLogin(t *testing.T) {
	h, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	s := &Service{
		Admins: memAdmins{"ops@example.com": {ID: "a-1", Email: "ops@example.com", PasswordHash: h}},
		Tokens: newIssuer(time.Now()),
	}
	ctx := context.Background()

	tok, err := s.Login(ctx, " OPS@example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)

	_, err = s.Login(ctx, "ops@example.com", "nope")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = s.Login(ctx, "ghost@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = s.Login(ctx, "", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRequireAdmin(t *testing.T) {
	i := newIssuer(time.Now())
	tok, err := i.Issue(Admin{ID: "a-1", Email: "ops@example.com"})
	require.NoError(t, err)

	h := RequireAdmin(i)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := FromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(c.Subject))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/bookings", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a-1", rec.Body.String())
}
