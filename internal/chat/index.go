package chat

import (
	"context"
	"fmt"

	"github.com/suPer8Hu/askboard/internal/store"
)

const postIndexCap = 1000

// PostIndex is the capped newest-first list of post ids behind listings.
// It may hold ids whose record is gone and miss ids whose record exists.
type PostIndex struct {
	kv  store.KV
	cap int64
}

func (x *PostIndex) RecordNew(ctx context.Context, id string) error {
	if err := x.kv.LPush(ctx, keyPostIndex, id); err != nil {
		return fmt.Errorf("index post %s: %w", id, err)
	}
	if err := x.kv.LTrim(ctx, keyPostIndex, 0, x.cap-1); err != nil {
		return fmt.Errorf("trim post index: %w", err)
	}
	return nil
}

// IDs returns up to limit ids, newest first; limit <= 0 returns all of them.
func (x *PostIndex) IDs(ctx context.Context, limit int64) ([]string, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = limit - 1
	}
	ids, err := x.kv.LRange(ctx, keyPostIndex, 0, stop)
	if err != nil {
		return nil, fmt.Errorf("read post index: %w", err)
	}
	return ids, nil
}

// RemoveOne rewrites the index without id, keeping the order of the rest.
// A create that lands between the read and the rewrite is lost from the
// index (its record stays readable by id).
func (x *PostIndex) RemoveOne(ctx context.Context, id string) (bool, error) {
	ids, err := x.IDs(ctx, 0)
	if err != nil {
		return false, err
	}
	rest := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			rest = append(rest, v)
		}
	}
	if len(rest) == len(ids) {
		return false, nil
	}
	if err := x.kv.Del(ctx, keyPostIndex); err != nil {
		return false, fmt.Errorf("clear post index: %w", err)
	}
	if len(rest) > 0 {
		if err := x.kv.LPush(ctx, keyPostIndex, reversed(rest)...); err != nil {
			return false, fmt.Errorf("rewrite post index: %w", err)
		}
	}
	return true, nil
}
