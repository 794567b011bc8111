package flash

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// redisSession keeps every session key as a JSON encoded field of one Redis
// hash, so values come back the way any serializing backend returns them.
type redisSession struct {
	t         *testing.T
	rdb       *redis.Client
	id        string
	useNumber bool
}

func newRedisSession(t *testing.T, useNumber bool) (*redisSession, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return &redisSession{t: t, rdb: rdb, id: "session:test", useNumber: useNumber}, mr
}

func (s *redisSession) Get(key string) (any, bool) {
	data, err := s.rdb.HGet(context.Background(), s.id, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	require.NoError(s.t, err)

	dec := json.NewDecoder(bytes.NewReader(data))
	if s.useNumber {
		dec.UseNumber()
	}
	var v any
	require.NoError(s.t, dec.Decode(&v))
	return v, true
}

func (s *redisSession) Set(key string, value any) {
	data, err := json.Marshal(value)
	require.NoError(s.t, err)
	require.NoError(s.t, s.rdb.HSet(context.Background(), s.id, key, data).Err())
}

func (s *redisSession) Unset(key string) {
	require.NoError(s.t, s.rdb.HDel(context.Background(), s.id, key).Err())
}
