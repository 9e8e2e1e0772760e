package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "dr-kim")
			require.NoError(t, err)
			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestLocalLocker_KeysAreIndependent(t *testing.T) {
	l := NewLocalLocker()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	unlockKim, err := l.Lock(ctx, "dr-kim")
	require.NoError(t, err)
	defer unlockKim()

	unlockLee, err := l.Lock(ctx, "dr-lee")
	require.NoError(t, err)
	unlockLee()
}

func TestLocalLocker_HonorsContext(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "dr-kim")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "dr-kim")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// unlocking twice is harmless
	unlock()
	unlock()
	again, err := l.Lock(context.Background(), "dr-kim")
	require.NoError(t, err)
	again()
}

type recordingLocker struct {
	mu     sync.Mutex
	events []string
	failOn string
}

func (r *recordingLocker) Lock(_ context.Context, key string) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key == r.failOn {
		return nil, errors.New("lock failed")
	}
	r.events = append(r.events, "lock "+key)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, "unlock "+key)
	}, nil
}

func TestLockAll_SortedAndDeduplicated(t *testing.T) {
	r := &recordingLocker{}
	unlock, err := lockAll(context.Background(), r, "dr-lee", "dr-kim", "dr-lee", "")
	require.NoError(t, err)
	unlock()
	assert.Equal(t, []string{"lock dr-kim", "lock dr-lee", "unlock dr-lee", "unlock dr-kim"}, r.events)
}

func TestLockAll_ReleasesOnFailure(t *testing.T) {
	r := &recordingLocker{failOn: "dr-lee"}
	_, err := lockAll(context.Background(), r, "dr-kim", "dr-lee")
	assert.Error(t, err)
	assert.Equal(t, []string{"lock dr-kim", "unlock dr-kim"}, r.events)
}

func newTestRedisLocker(t *testing.T) (*RedisLocker, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	l := NewRedisLocker(db, 5*time.Second)
	l.tokenFn = func() string { return "token-1" }
	return l, mock
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	l, mock := newTestRedisLocker(t)
	mock.ExpectSetNX("lock:doctor:dr-kim", "token-1", 5*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"lock:doctor:dr-kim"}, "token-1").SetVal(int64(1))

	unlock, err := l.Lock(context.Background(), "dr-kim")
	require.NoError(t, err)
	unlock()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_RetriesUntilFree(t *testing.T) {
	l, mock := newTestRedisLocker(t)
	l.retry = time.Millisecond
	mock.ExpectSetNX("lock:doctor:dr-kim", "token-1", 5*time.Second).SetVal(false)
	mock.ExpectSetNX("lock:doctor:dr-kim", "token-1", 5*time.Second).SetVal(true)

	_, err := l.Lock(context.Background(), "dr-kim")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_TimesOut(t *testing.T) {
	l, mock := newTestRedisLocker(t)
	l.wait = -time.Second
	mock.ExpectSetNX("lock:doctor:dr-kim", "token-1", 5*time.Second).SetVal(false)

	_, err := l.Lock(context.Background(), "dr-kim")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestRedisLocker_RedisError(t *testing.T) {
	l, mock := newTestRedisLocker(t)
	mock.ExpectSetNX("lock:doctor:dr-kim", "token-1", 5*time.Second).SetErr(errors.New("connection refused"))

	_, err := l.Lock(context.Background(), "dr-kim")
	assert.ErrorContains(t, err, "connection refused")
}
