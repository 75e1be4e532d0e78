package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/casino-feed/internal/common"
	"serotonyl.ru/casino-feed/internal/features/feed"
	"serotonyl.ru/casino-feed/internal/features/generator"
)

const testSecret = "test-secret-0123456789"

type memAttempts struct {
	mu     sync.Mutex
	failed map[string]int
	logged int
}

func newMemAttempts() *memAttempts {
	return &memAttempts{failed: make(map[string]int)}
}

func (m *memAttempts) LogAttempt(_ context.Context, addr string, success bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logged++
	if !success {
		m.failed[addr]++
	}
	return nil
}

func (m *memAttempts) GetRecentAttempts(_ context.Context, addr string, _ time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed[addr], nil
}

type stubGenerator struct{}

func (stubGenerator) Tick() (*generator.Transaction, error) { return nil, common.ErrNoActiveGames }
func (stubGenerator) Status() generator.Status { return generator.Status{} }

func TestHashAndVerifyArgon2id(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"))

	assert.True(t, verifyArgon2id("s3cret", hash))
	assert.False(t, verifyArgon2id("wrong", hash))
	assert.False(t, verifyArgon2id("s3cret", "not-a-hash"))
	assert.False(t, verifyArgon2id("s3cret", "$argon2id$v=19$m=x$salt$hash"))
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	token, expires, err := issuer.Issue(AdminSubject)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 2*time.Second)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, AdminSubject, claims.Subject)

	_, err = NewTokenIssuer("another-secret-0123456", time.Hour).Verify(token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = issuer.Verify("garbage")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Minute)
	past := time.Now().Add(-time.Hour)
	issuer.now = func() time.Time { return past }
	token, _, err := issuer.Issue(AdminSubject)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestService_LoginLimitsAttempts(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	attempts := newMemAttempts()
	svc := NewService(attempts, NewTokenIssuer(testSecret, time.Hour), hash)
	ctx := context.Background()

	for range maxFailedAttempts {
		_, err := svc.Login(ctx, "10.0.0.1", "wrong")
		assert.ErrorIs(t, err, common.ErrWrongPassword)
	}

	// даже верный пароль не пускает после 3 неудач
	_, err = svc.Login(ctx, "10.0.0.1", "s3cret")
	assert.ErrorIs(t, err, common.ErrTooManyAttempts)

	// другой адрес не заблокирован
	resp, err := svc.Login(ctx, "10.0.0.2", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestDetectImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	ct, ext, err := detectImage(png)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, ".png", ext)

	webp := []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")
	ct, ext, err = detectImage(webp)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", ct)
	assert.Equal(t, ".webp", ext)

	_, _, err = detectImage([]byte("<html>hi</html>"))
	assert.ErrorIs(t, err, common.ErrUnsupportedImage)
}

func newTestRouter(t *testing.T) (http.Handler, *TokenIssuer, *feed.Service) {
	t.Helper()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	tokens := NewTokenIssuer(testSecret, time.Hour)
	feedSvc := feed.NewService(nil, stubGenerator{}, feed.Options{Interval: 2 * time.Second})
	h := NewHandler(HandlerDeps{
		Auth:          NewService(newMemAttempts(), tokens, hash),
		Tokens:        tokens,
		Feed:          feedSvc,
		MaxImageBytes: 1024,
	})

	r := chi.NewRouter()
	h.Register(r)
	return r, tokens, feedSvc
}

func TestHandler_LoginAndPause(t *testing.T) {
	router, _, feedSvc := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"s3cret"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/feed/pause", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, feedSvc.Status().Paused)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":"admin"`)
}

func TestHandler_RequiresToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-jwt"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/feed/status", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestHandler_LoginErrors(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for range maxFailedAttempts {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"nope"}`)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"s3cret"}`)))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHandler_UploadImageDisabled(t *testing.T) {
	router, tokens, _ := newTestRouter(t)
	token, _, err := tokens.Issue(AdminSubject)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/games/sweet-bonanza/image", strings.NewReader("x"))
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_DeleteTransactionBadID(t *testing.T) {
	router, tokens, _ := newTestRouter(t)
	token, _, err := tokens.Issue(AdminSubject)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/transactions/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"id"`)
}
