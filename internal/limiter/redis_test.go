package limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisProtect_FirstHitOpensWindow(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	l := NewRedis(rdb, testPolicy)

	mock.ExpectExists(BlockedKeyPrefix + "k").SetVal(0)
	mock.ExpectIncrBy(RateLimitKeyPrefix+"k", 1).SetVal(1)
	mock.ExpectExpire(RateLimitKeyPrefix+"k", time.Minute).SetVal(true)
	mock.ExpectTTL(RateLimitKeyPrefix + "k").SetVal(time.Minute)

	d, err := l.Protect(context.Background(), "k", 1)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, int64(4), d.Remaining)
	require.Equal(t, time.Minute, d.Reset)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisProtect_RestoresMissingExpiry(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	l := NewRedis(rdb, testPolicy)

	mock.ExpectExists(BlockedKeyPrefix + "k").SetVal(0)
	mock.ExpectIncrBy(RateLimitKeyPrefix+"k", 1).SetVal(3)
	mock.ExpectTTL(RateLimitKeyPrefix + "k").SetVal(time.Duration(-1))
	mock.ExpectExpire(RateLimitKeyPrefix+"k", time.Minute).SetVal(true)

	d, err := l.Protect(context.Background(), "k", 1)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, int64(2), d.Remaining)
	require.Equal(t, time.Minute, d.Reset)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisProtect_OverQuota(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	l := NewRedis(rdb, testPolicy)

	mock.ExpectExists(BlockedKeyPrefix + "k").SetVal(0)
	mock.ExpectIncrBy(RateLimitKeyPrefix+"k", 1).SetVal(6)
	mock.ExpectTTL(RateLimitKeyPrefix + "k").SetVal(12 * time.Second)

	d, err := l.Protect(context.Background(), "k", 1)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, ReasonRateLimit, d.Reason)
	require.Equal(t, int64(0), d.Remaining)
	require.Equal(t, 12*time.Second, d.Reset)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisProtect_AlreadyBlocked(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	l := NewRedis(rdb, testPolicy)

	mock.ExpectExists(BlockedKeyPrefix + "k").SetVal(1)
	mock.ExpectTTL(BlockedKeyPrefix + "k").SetVal(3 * time.Minute)

	d, err := l.Protect(context.Background(), "k", 1)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, ReasonOther, d.Reason)
	require.Equal(t, 3*time.Minute, d.Reset)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisProtect_AbuseBlocks(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	l := NewRedis(rdb, testPolicy)

	mock.ExpectExists(BlockedKeyPrefix + "k").SetVal(0)
	mock.ExpectIncrBy(RateLimitKeyPrefix+"k", 1).SetVal(20)
	mock.ExpectTTL(RateLimitKeyPrefix + "k").SetVal(40 * time.Second)
	mock.ExpectSet(BlockedKeyPrefix+"k", "1", 15*time.Minute).SetVal("OK")

	d, err := l.Protect(context.Background(), "k", 1)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, ReasonOther, d.Reason)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisProtect_BackendError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	l := NewRedis(rdb, testPolicy)

	mock.ExpectExists(BlockedKeyPrefix + "k").SetErr(errors.New("conn refused"))

	_, err := l.Protect(context.Background(), "k", 1)
	require.Error(t, err)
}
