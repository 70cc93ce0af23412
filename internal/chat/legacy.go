package chat

import (
	"context"
	"encoding/json"
	"fmt"
)

// Older deployments wrote threads under post:{id}:messages. Everything that
// knows about that key lives in this file.

// readWithFallback reads the current key and only falls back to the legacy
// key when the current one is empty.
func (t *ThreadLog) readWithFallback(ctx context.Context, postID string) ([]string, error) {
	raw, err := t.kv.LRange(ctx, threadKey(postID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("read thread %s: %w", postID, err)
	}
	if len(raw) > 0 {
		return raw, nil
	}
	raw, err = t.kv.LRange(ctx, legacyThreadKey(postID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("read legacy thread %s: %w", postID, err)
	}
	return raw, nil
}

// adoptLegacy moves a legacy-only thread to the current key so a new turn
// does not hide the older history behind it. The move is one RenameNX, so
// concurrent appenders adopt the history at most once and a non-empty
// current key is never overwritten.
func (t *ThreadLog) adoptLegacy(ctx context.Context, postID string) error {
	legacy, err := t.HasLegacy(ctx, postID)
	if err != nil {
		return fmt.Errorf("read legacy thread %s: %w", postID, err)
	}
	if !legacy {
		return nil
	}
	if _, err := t.kv.RenameNX(ctx, legacyThreadKey(postID), threadKey(postID)); err != nil {
		return fmt.Errorf("adopt legacy thread %s: %w", postID, err)
	}
	return nil
}

// HasLegacy reports whether the post still has entries under the legacy key.
func (t *ThreadLog) HasLegacy(ctx context.Context, postID string) (bool, error) {
	raw, err := t.kv.LRange(ctx, legacyThreadKey(postID), 0, 0)
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

// Replace rewrites a thread under the current key from chronological
// messages and drops the legacy key. Used by the offline migration only: it
// is not atomic, and a turn appended between the caller's read and this
// rewrite is lost, so writers must be stopped while it runs.
func (t *ThreadLog) Replace(ctx context.Context, postID string, msgs []Message) error {
	encoded := make([]string, len(msgs))
	for i, m := range msgs {
		b, err := json.Marshal(storedMessage{Role: m.Role, Content: m.Content})
		if err != nil {
			return err
		}
		encoded[i] = string(b)
	}
	if err := t.kv.Del(ctx, threadKey(postID)); err != nil {
		return fmt.Errorf("clear thread %s: %w", postID, err)
	}
	// oldest pushed first ends up at the tail
	if err := t.kv.LPush(ctx, threadKey(postID), encoded...); err != nil {
		return fmt.Errorf("rewrite thread %s: %w", postID, err)
	}
	return t.kv.Del(ctx, legacyThreadKey(postID))
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}
