package redisstore

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/askboard/internal/store"
	"github.com/suPer8Hu/askboard/internal/store/storetest"
)

func newTestStore(t *testing.T) store.KV {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := New(Options{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRedisStoreConformance(t *testing.T) {
	storetest.Run(t, newTestStore)
}

func TestNewWithAddr(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := New(Options{Addr: mr.Addr()})
	require.NoError(t, err)
	defer s.Close()
}

func TestNewUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(Options{Addr: addr})
	require.Error(t, err)
}

func TestNewBadURL(t *testing.T) {
	_, err := New(Options{URL: "http://not-redis"})
	require.Error(t, err)
}
