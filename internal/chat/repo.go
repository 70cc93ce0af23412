package chat

import (
	"time"

	"github.com/suPer8Hu/askboard/internal/store"
)

// Key schema. Thread lists and the post index are newest-first.
const (
	keyPostCounter = "post:id"
	keyPostIndex   = "posts"
)

func postKey(id string) string { return "post:" + id }

func threadKey(id string) string { return "post:" + id + ":msgs" }

// legacyThreadKey is the thread key used by older deployments; see legacy.go.
func legacyThreadKey(id string) string { return "post:" + id + ":messages" }

// Repo groups the three storage views over one KV store.
type Repo struct {
	Posts   *PostStore
	Threads *ThreadLog
	Index   *PostIndex
}

func NewRepo(kv store.KV) *Repo {
	return &Repo{
		Posts:   &PostStore{kv: kv, now: time.Now},
		Threads: &ThreadLog{kv: kv},
		Index:   &PostIndex{kv: kv, cap: postIndexCap},
	}
}
