package chat

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/suPer8Hu/askboard/internal/store"
	"github.com/suPer8Hu/askboard/internal/store/redisstore"
)

func newTestRepo(t *testing.T) (*Repo, store.KV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	kv := redisstore.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = kv.Close() })

	repo := NewRepo(kv)
	// strictly increasing clock so createdAt ordering is deterministic
	base := time.UnixMilli(1_700_000_000_000)
	tick := 0
	repo.Posts.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return repo, kv, mr
}
