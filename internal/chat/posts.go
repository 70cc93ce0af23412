package chat

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/suPer8Hu/askboard/internal/store"
)

// PostStore keeps post records as hashes under post:{id}.
type PostStore struct {
	kv  store.KV
	now func() time.Time
}

// Create allocates the next id from the shared counter and writes the record.
func (s *PostStore) Create(ctx context.Context, category, title, body string) (Post, error) {
	n, err := s.kv.Incr(ctx, keyPostCounter)
	if err != nil {
		return Post{}, fmt.Errorf("allocate post id: %w", err)
	}
	p := Post{
		ID:        strconv.FormatInt(n, 10),
		Category:  NormalizeCategory(category),
		Title:     title,
		Body:      body,
		CreatedAt: s.now().UnixMilli(),
	}
	if err := s.kv.HSet(ctx, postKey(p.ID), encodePost(p)); err != nil {
		return Post{}, fmt.Errorf("write post %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *PostStore) Get(ctx context.Context, id string) (Post, error) {
	h, err := s.kv.HGetAll(ctx, postKey(id))
	if err != nil {
		return Post{}, fmt.Errorf("read post %s: %w", id, err)
	}
	if len(h) == 0 {
		return Post{}, ErrPostNotFound
	}
	return decodePost(id, h), nil
}

// Update merges the provided fields over the stored record and stamps UpdatedAt.
func (s *PostStore) Update(ctx context.Context, id string, u PostUpdate) (Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Body != nil {
		p.Body = *u.Body
	}
	if u.Category != nil {
		p.Category = NormalizeCategory(*u.Category)
	}
	p.UpdatedAt = s.now().UnixMilli()
	if err := s.kv.HSet(ctx, postKey(id), encodePost(p)); err != nil {
		return Post{}, fmt.Errorf("update post %s: %w", id, err)
	}
	return p, nil
}

// Delete removes only the record; callers also clear the thread and index entry.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	if err := s.kv.Del(ctx, postKey(id)); err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	return nil
}

func encodePost(p Post) map[string]string {
	m := map[string]string{
		"id":        p.ID,
		"category":  p.Category,
		"title":     p.Title,
		"content":   p.Body,
		"createdAt": strconv.FormatInt(p.CreatedAt, 10),
	}
	if p.UpdatedAt > 0 {
		m["updatedAt"] = strconv.FormatInt(p.UpdatedAt, 10)
	}
	return m
}

// decodePost rebuilds a Post from hash fields; every value comes back as text.
func decodePost(id string, h map[string]string) Post {
	p := Post{
		ID:        id,
		Category:  NormalizeCategory(h["category"]),
		Title:     h["title"],
		Body:      h["content"],
		CreatedAt: parseMillis(h["createdAt"]),
		UpdatedAt: parseMillis(h["updatedAt"]),
	}
	if stored := strings.TrimSpace(h["id"]); stored != "" {
		p.ID = stored
	}
	return p
}

func parseMillis(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int64(f)
	}
	return 0
}
