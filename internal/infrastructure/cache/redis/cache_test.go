package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"rsi-radar/internal/infrastructure/cache"
	"rsi-radar/internal/infrastructure/config"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type series struct {
	Closes []float64 `json:"closes"`
}

func TestCache_SetMarshalsWithPrefix(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewCacheWithClient(client, "rsiradar:")

	mock.ExpectSet("rsiradar:candles:BTCUSDT", []byte(`{"closes":[1,2]}`), 30*time.Second).SetVal("OK")

	err := c.Set(context.Background(), "candles:BTCUSDT", series{Closes: []float64{1, 2}}, 30*time.Second)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetDecodes(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewCacheWithClient(client, "rsiradar:")

	mock.ExpectGet("rsiradar:k").SetVal(`{"closes":[3.5]}`)

	var got series
	require.NoError(t, c.Get(context.Background(), "k", &got))
	assert.Equal(t, []float64{3.5}, got.Closes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetMissMapsToErrMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewCacheWithClient(client, "rsiradar:")

	mock.ExpectGet("rsiradar:k").RedisNil()

	var got series
	err := c.Get(context.Background(), "k", &got)
	assert.ErrorIs(t, err, cache.ErrMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetCorruptEntryIsDeleted(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewCacheWithClient(client, "rsiradar:")

	mock.ExpectGet("rsiradar:k").SetVal(`{broken`)
	mock.ExpectDel("rsiradar:k").SetVal(1)

	var got series
	err := c.Get(context.Background(), "k", &got)
	require.Error(t, err)
	assert.False(t, errors.Is(err, cache.ErrMiss))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetConnectionError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewCacheWithClient(client, "rsiradar:")

	mock.ExpectGet("rsiradar:k").SetErr(errors.New("connection reset"))

	var got series
	err := c.Get(context.Background(), "k", &got)
	require.Error(t, err)
	assert.False(t, errors.Is(err, cache.ErrMiss))
}

func TestCache_AsTTLCacheBackend(t *testing.T) {
	client, mock := redismock.NewClientMock()
	backend := NewCacheWithClient(client, "rsiradar:")

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ranks := cache.New[map[string]int]("ranks", time.Hour,
		cache.WithBackend(backend),
		cache.WithClock(cache.ClockFunc(func() time.Time { return now })))

	mock.ExpectGet("rsiradar:ranks:USDT").SetVal(`{"value":{"BTC":1},"storedAt":"2024-01-01T00:00:00Z"}`)

	got, ok := ranks.Get(context.Background(), "USDT")
	require.True(t, ok)
	assert.Equal(t, map[string]int{"BTC": 1}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_DeleteAndPing(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewCacheWithClient(client, "rsiradar:")

	mock.ExpectDel("rsiradar:candles:BTCUSDT").SetVal(1)
	mock.ExpectPing().SetVal("PONG")
	mock.ExpectPing().SetErr(errors.New("dial tcp: connection refused"))

	require.NoError(t, c.Delete(context.Background(), "candles:BTCUSDT"))
	require.NoError(t, c.Ping(context.Background()))
	assert.Error(t, c.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisService_StartFailsWithoutServer(t *testing.T) {
	rs := NewRedisService(config.RedisConfig{Host: "127.0.0.1", Port: 1, Prefix: "rsiradar:"})

	err := rs.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateError, rs.State())
	assert.Nil(t, rs.Cache())
}

func TestRedisService_CacheNilWhenStopped(t *testing.T) {
	rs := NewRedisService(config.RedisConfig{Host: "localhost", Port: 6379, Prefix: "rsiradar:"})
	assert.Nil(t, rs.Cache())
	assert.Equal(t, StateStopped, rs.State())
	assert.NoError(t, rs.Stop())
}
