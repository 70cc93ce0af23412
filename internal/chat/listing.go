package chat

import (
	"context"
	"errors"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
	searchScanLimit = 200
	fanOutLimit     = 16
)

type ListQuery struct {
	Query    string
	Page     int
	PageSize int
}

// List pages through the index with an optional substring filter. Total is
// the filtered count before slicing.
func (s *Service) List(ctx context.Context, q ListQuery) (Page, error) {
	page, size := clampPage(q.Page, q.PageSize)

	posts, err := s.resolve(ctx, 0)
	if err != nil {
		return Page{}, serverError("list posts", err)
	}
	matched := filterPosts(posts, q.Query)
	total := len(matched)

	lo := total
	if page-1 <= total/size {
		lo = min((page-1)*size, total)
	}
	hi := min(lo+size, total)
	window := matched[lo:hi]

	items := make([]PostSummary, len(window))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, p := range window {
		g.Go(func() error {
			answered, err := s.answered(gctx, p.ID)
			if err != nil {
				return err
			}
			items[i] = PostSummary{Post: p, Answered: answered}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Page{}, serverError("derive answered status", err)
	}

	return Page{Items: items, Total: total, Page: page, PageSize: size}, nil
}

// Search filters the newest index entries without paging, newest first.
func (s *Service) Search(ctx context.Context, query string) ([]Post, error) {
	posts, err := s.resolve(ctx, searchScanLimit)
	if err != nil {
		return nil, serverError("search posts", err)
	}
	matched := filterPosts(posts, query)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt > matched[j].CreatedAt
	})
	return matched, nil
}

// resolve loads the records behind the index concurrently, in index order,
// skipping ids without a record.
func (s *Service) resolve(ctx context.Context, limit int64) ([]Post, error) {
	ids, err := s.repo.Index.IDs(ctx, limit)
	if err != nil {
		return nil, err
	}
	ids = dedupe(ids)

	found := make([]*Post, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.repo.Posts.Get(gctx, id)
			if errors.Is(err, ErrPostNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = &p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Post, 0, len(found))
	for _, p := range found {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

// answered reports whether the thread has an assistant turn. Entries that do
// not parse carry no role, so a thread with any of them counts as answered
// once it has a second entry.
func (s *Service) answered(ctx context.Context, postID string) (bool, error) {
	raw, err := s.repo.Threads.List(ctx, postID)
	if err != nil {
		return false, err
	}
	unparsed := false
	for _, r := range raw {
		m, ok := decodeMessage(r)
		if !ok {
			unparsed = true
			continue
		}
		if strings.EqualFold(strings.TrimSpace(m.Role), RoleAssistant) {
			return true, nil
		}
	}
	return unparsed && len(raw) >= 2, nil
}

func clampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case size == 0:
		size = defaultPageSize
	case size < 1:
		size = 1
	case size > maxPageSize:
		size = maxPageSize
	}
	return page, size
}

func filterPosts(posts []Post, query string) []Post {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return posts
	}
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Body), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
