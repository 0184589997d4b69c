package redis_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/redis"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

const testSecret = "this-is-a-very-long-secret-key-32-chars-long"

func setupStore(t *testing.T, opts ...redis.SessionStoreOption) (*redis.SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redis.NewSessionStore(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func newRecord(maxAge int, kv ...any) *session.Record {
	opts := cookie.DefaultOptions()
	opts.MaxAge = maxAge
	v := session.NewValues()
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i].(string), kv[i+1])
	}
	return &session.Record{Cookie: cookie.NewAttributes(opts), Values: v}
}

func TestSessionStore_SetGet(t *testing.T) {
	t.Parallel()
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "abc", newRecord(3600, "user", "alice")))
	assert.True(t, mr.Exists("sess:abc"))

	ttl := mr.TTL("sess:abc")
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 2)

	rec, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, rec)
	user, _ := rec.Values.GetString("user")
	assert.Equal(t, "alice", user)
	require.NotNil(t, rec.Cookie.OriginalMaxAge)
	assert.Equal(t, time.Hour, *rec.Cookie.OriginalMaxAge)
}

func TestSessionStore_DefaultTTL(t *testing.T) {
	t.Parallel()
	store, mr := setupStore(t, redis.WithDefaultTTL(10*time.Minute), redis.WithPrefix("app:"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "abc", newRecord(0)))
	assert.Equal(t, 10*time.Minute, mr.TTL("app:abc"))
}

func TestSessionStore_GetMissing(t *testing.T) {
	t.Parallel()
	store, _ := setupStore(t)

	rec, err := store.Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSessionStore_GetCorrupt(t *testing.T) {
	t.Parallel()
	store, mr := setupStore(t)
	require.NoError(t, mr.Set("sess:bad", "{not json"))

	_, err := store.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, redis.ErrCorruptSession)
}

func TestSessionStore_Expiry(t *testing.T) {
	t.Parallel()
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "abc", newRecord(60)))
	mr.FastForward(2 * time.Minute)

	rec, err := store.Get(ctx, "abc")
	assert.NoError(t, err)
	assert.Nil(t, rec)

	expired := newRecord(60)
	past := time.Now().Add(-time.Second)
	expired.Cookie.Expires = &past
	require.NoError(t, store.Set(ctx, "old", expired))
	assert.False(t, mr.Exists("sess:old"))
}

func TestSessionStore_Touch(t *testing.T) {
	t.Parallel()
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "abc", newRecord(60, "k", "v")))

	require.NoError(t, store.Touch(ctx, "abc", newRecord(3600, "k", "ignored")))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL("sess:abc").Seconds(), 2)

	rec, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	v, _ := rec.Values.GetString("k")
	assert.Equal(t, "v", v)
	left, ok := rec.Cookie.MaxAge()
	require.True(t, ok)
	assert.InDelta(t, time.Hour.Seconds(), left.Seconds(), 2)

	require.NoError(t, store.Touch(ctx, "missing", newRecord(60)))
	assert.False(t, mr.Exists("sess:missing"))
}

func TestSessionStore_Destroy(t *testing.T) {
	t.Parallel()
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "abc", newRecord(60)))
	require.NoError(t, store.Destroy(ctx, "abc"))
	require.NoError(t, store.Destroy(ctx, "abc"))
	assert.False(t, mr.Exists("sess:abc"))
}

func TestSessionStore_ListCountClear(t *testing.T) {
	t.Parallel()
	store, mr := setupStore(t, redis.WithScanBatchSize(1))
	ctx := context.Background()
	require.NoError(t, mr.Set("unrelated", "keep me"))

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, id, newRecord(60, "id", id)))
	}

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	id, _ := all["b"].Values.GetString("id")
	assert.Equal(t, "b", id)

	require.NoError(t, store.Clear(ctx))
	n, err = store.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, mr.Exists("unrelated"))

	all, err = store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSessionStore_Availability(t *testing.T) {
	t.Parallel()
	store, mr := setupStore(t)
	ctx := context.Background()

	m, err := session.New(session.WithStore(store), session.WithSecrets(testSecret))
	require.NoError(t, err)
	defer m.Close()
	assert.True(t, m.Ready())

	mr.SetError("LOADING server is loading")
	assert.Error(t, store.Check(ctx))
	assert.Equal(t, session.Unavailable, store.Current())
	assert.Eventually(t, func() bool { return !m.Ready() }, time.Second, 5*time.Millisecond)

	mr.SetError("")
	assert.NoError(t, store.Check(ctx))
	assert.Equal(t, session.Available, store.Current())
	assert.Eventually(t, m.Ready, time.Second, 5*time.Millisecond)
}

func TestSessionStore_Monitor(t *testing.T) {
	t.Parallel()
	store, mr := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go store.Monitor(ctx, 5*time.Millisecond)

	mr.SetError("LOADING server is loading")
	assert.Eventually(t, func() bool { return store.Current() == session.Unavailable }, time.Second, 5*time.Millisecond)

	mr.SetError("")
	assert.Eventually(t, func() bool { return store.Current() == session.Available }, time.Second, 5*time.Millisecond)
}

func TestSessionStore_Middleware(t *testing.T) {
	t.Parallel()
	store, mr := setupStore(t)

	m, err := session.New(session.WithStore(store), session.WithSecrets(testSecret))
	require.NoError(t, err)
	defer m.Close()

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.MustFromContext(r.Context())
		n, _ := sess.GetInt("n")
		sess.Set("n", n+1)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	h.ServeHTTP(httptest.NewRecorder(), r)

	id, ok := session.Verify(cookies[0].Value, []string{testSecret})
	require.True(t, ok)
	rec, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	n, _ := rec.Values.GetInt("n")
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("sess:"+id))
}
