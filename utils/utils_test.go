package utils

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/serene/config"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.Set(config.AppConfig{JWTSecret: "test-secret", TokenTTLHours: 1})
	SetRedis(nil)
	os.Exit(m.Run())
}

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetRedis(client)
	t.Cleanup(func() {
		SetRedis(nil)
		_ = client.Close()
	})
	return mr
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "ada", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, "42", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	expired, err := GenerateToken(1, "ada", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.Error(t, err)

	_, err = ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestParseTokenRequiresIssuerAndExpiry(t *testing.T) {
	sign := func(claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return s
	}

	noExpiry := sign(Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer}})
	_, err := ParseToken(noExpiry)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)

	otherIssuer := sign(Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	_, err = ParseToken(otherIssuer)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ParseToken(hs512)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
	assert.False(t, CheckPassword("", "anything"))

	_, err = HashPassword(string(make([]byte, 73)))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestSanitizeTextStripsMarkup(t *testing.T) {
	assert.Equal(t, "Felt calm after the walk", SanitizeText("  <b>Felt calm</b> after the walk<script>alert(1)</script> "))
}

func TestMemoryBlacklist(t *testing.T) {
	BlacklistToken("tok-a", time.Now().Add(time.Hour))
	BlacklistToken("tok-expired", time.Now().Add(-time.Second))
	assert.True(t, IsTokenBlacklisted("tok-a"))
	assert.False(t, IsTokenBlacklisted("tok-expired"))
	assert.False(t, IsTokenBlacklisted("tok-unknown"))

	assert.Equal(t, 1, SweepBlacklist(time.Now().Add(2*time.Hour)))
	assert.False(t, IsTokenBlacklisted("tok-a"))
}

func TestRedisBlacklist(t *testing.T) {
	mr := useMiniredis(t)
	BlacklistToken("tok-r", time.Now().Add(time.Minute))
	assert.True(t, mr.Exists(blacklistPrefix+"tok-r"))
	assert.True(t, IsTokenBlacklisted("tok-r"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, IsTokenBlacklisted("tok-r"))
}

func TestStateIsSingleUse(t *testing.T) {
	SaveState("state-1", time.Minute)
	assert.True(t, ConsumeState("state-1"))
	assert.False(t, ConsumeState("state-1"))
	assert.False(t, ConsumeState(""))

	SaveState("state-2", time.Millisecond)
	assert.Equal(t, 1, SweepStates(time.Now().Add(time.Second)))
	assert.False(t, ConsumeState("state-2"))

	useMiniredis(t)
	SaveState("state-3", time.Minute)
	assert.True(t, ConsumeState("state-3"))
	assert.False(t, ConsumeState("state-3"))
}

func TestCacheHelpers(t *testing.T) {
	type entry struct {
		Name string `json:"name"`
	}
	assert.False(t, CacheGetJSON("cache:missing", &entry{}), "no redis means always miss")

	mr := useMiniredis(t)
	CacheSetJSON("cache:catalog:all", entry{Name: "Box Breathing"}, time.Minute)
	CacheSetJSON("cache:catalog:Breathing", entry{Name: "Box Breathing"}, time.Minute)
	CacheSetJSON("cache:dashboard:1", entry{Name: "ada"}, 0)

	var got entry
	require.True(t, CacheGetJSON("cache:catalog:all", &got))
	assert.Equal(t, "Box Breathing", got.Name)
	assert.Equal(t, defaultCacheTTL, mr.TTL("cache:dashboard:1"))

	InvalidateByPrefix("cache:catalog:")
	assert.False(t, mr.Exists("cache:catalog:all"))
	assert.False(t, mr.Exists("cache:catalog:Breathing"))
	assert.True(t, mr.Exists("cache:dashboard:1"))

	CacheDelete("cache:dashboard:1")
	assert.False(t, mr.Exists("cache:dashboard:1"))

	require.NoError(t, mr.Set("cache:bad", "{"))
	assert.False(t, CacheGetJSON("cache:bad", &got))
}

func TestParsePaginationAndPage(t *testing.T) {
	page, size := ParsePagination("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = ParsePagination("3", "500")
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, size)

	page, size = ParsePagination("-1", "abc")
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	p := NewPage([]int{1, 2}, 1, 2, 5)
	assert.Equal(t, 3, p.TotalPages)
}

func TestErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	Error(ctx, http.StatusConflict, 40901, "already checked in today")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"code":40901,"message":"already checked in today"}`, w.Body.String())
}

func TestRollingFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gin.log")
	l, err := NewRollingFileLogger(path, "info", 1, 1, 1, false)
	require.NoError(t, err)
	l.Info("request served")
	require.NoError(t, l.Sync())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"request served"`)
}
