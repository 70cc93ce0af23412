package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/suPer8Hu/askboard/internal/ai"
	"github.com/suPer8Hu/askboard/internal/store"
)

// ThreadLog stores each post's turns as JSON entries, newest first.
type ThreadLog struct {
	kv store.KV
}

// storedMessage decodes content loosely; older writers stored non-string content.
type storedMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

func (t *ThreadLog) Append(ctx context.Context, postID string, m Message) error {
	if err := t.adoptLegacy(ctx, postID); err != nil {
		return err
	}
	b, err := json.Marshal(storedMessage{Role: m.Role, Content: m.Content})
	if err != nil {
		return err
	}
	if err := t.kv.LPush(ctx, threadKey(postID), string(b)); err != nil {
		return fmt.Errorf("append to thread %s: %w", postID, err)
	}
	return nil
}

// List returns the raw entries in storage order (newest first).
func (t *ThreadLog) List(ctx context.Context, postID string) ([]string, error) {
	return t.readWithFallback(ctx, postID)
}

// ReadChronological returns the thread oldest first with content flattened to text.
// Roles are returned as stored.
func (t *ThreadLog) ReadChronological(ctx context.Context, postID string) ([]Message, error) {
	raw, err := t.List(ctx, postID)
	if err != nil {
		return nil, err
	}
	out := make([]Message, len(raw))
	for i, s := range raw {
		m, _ := decodeMessage(s)
		out[len(raw)-1-i] = m
	}
	return out, nil
}

// Delete removes the thread under both the current and the legacy key.
func (t *ThreadLog) Delete(ctx context.Context, postID string) error {
	if err := t.kv.Del(ctx, threadKey(postID), legacyThreadKey(postID)); err != nil {
		return fmt.Errorf("delete thread %s: %w", postID, err)
	}
	return nil
}

// decodeMessage never fails: an entry that is not a JSON object becomes an
// assistant turn holding the raw text, and ok is false.
func decodeMessage(raw string) (m Message, ok bool) {
	var sm storedMessage
	if err := json.Unmarshal([]byte(raw), &sm); err != nil {
		return Message{Role: RoleAssistant, Content: raw}, false
	}
	return Message{Role: sm.Role, Content: ai.ToText(sm.Content)}, true
}
