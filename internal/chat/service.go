package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/suPer8Hu/askboard/internal/ai"
	"github.com/suPer8Hu/askboard/internal/metrics"
)

const (
	defaultCompletionTimeout = 8 * time.Second
	defaultContextWindowSize = 30
	persistTimeout           = 5 * time.Second
)

// Outcome of one AI turn.
const (
	OutcomeAnswered = metrics.OutcomeAnswered
	OutcomeEmpty    = metrics.OutcomeEmpty
	OutcomeFailed   = metrics.OutcomeFailed
	OutcomeSkipped  = metrics.OutcomeSkipped
)

type Service struct {
	repo              *Repo
	provider          ai.Provider
	completionTimeout time.Duration
	contextWindowSize int
}

// NewService wires the engine. A nil provider disables AI turns: user turns
// are still recorded and replies come back empty.
func NewService(repo *Repo, provider ai.Provider, completionTimeout time.Duration, contextWindowSize int) *Service {
	if completionTimeout <= 0 {
		completionTimeout = defaultCompletionTimeout
	}
	if contextWindowSize <= 0 || contextWindowSize > 100 {
		contextWindowSize = defaultContextWindowSize
	}
	return &Service{
		repo:              repo,
		provider:          provider,
		completionTimeout: completionTimeout,
		contextWindowSize: contextWindowSize,
	}
}

// AIReady reports whether a completion provider is configured.
func (s *Service) AIReady() bool { return s.provider != nil }

type AskInput struct {
	Category string
	Title    string
	Content  string
}

type AskResult struct {
	ID        string `json:"id"`
	Assistant string `json:"assistant"`
	Outcome   string `json:"outcome"`
}

type ReplyResult struct {
	Assistant string `json:"assistant"`
	Outcome   string `json:"outcome"`
}

// Ask creates a post, indexes it and runs the first AI turn on its body.
func (s *Service) Ask(ctx context.Context, in AskInput) (AskResult, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return AskResult{}, badRequest("title and content are required")
	}

	post, err := s.repo.Posts.Create(ctx, in.Category, in.Title, in.Content)
	if err != nil {
		return AskResult{}, serverError("create post", err)
	}
	if err := s.repo.Index.RecordNew(ctx, post.ID); err != nil {
		return AskResult{ID: post.ID}, serverError("index post", err)
	}

	res, err := s.runTurn(ctx, post, in.Content)
	if err != nil {
		return AskResult{ID: post.ID}, err
	}
	return AskResult{ID: post.ID, Assistant: res.Assistant, Outcome: res.Outcome}, nil
}

// Reply appends a user turn to an existing thread and runs one AI turn.
// Repeated content is not deduplicated.
func (s *Service) Reply(ctx context.Context, postID, content string) (ReplyResult, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return ReplyResult{}, err
	}
	if strings.TrimSpace(content) == "" {
		return ReplyResult{}, badRequest("content is required")
	}
	return s.runTurn(ctx, post, content)
}

// runTurn records the user turn, then always leaves the thread with an
// assistant turn unless AI is disabled. Provider failures never surface as
// errors; only storage failures do.
func (s *Service) runTurn(ctx context.Context, post Post, content string) (ReplyResult, error) {
	if err := s.repo.Threads.Append(ctx, post.ID, Message{Role: RoleUser, Content: content}); err != nil {
		return ReplyResult{}, serverError("append user turn", err)
	}

	if s.provider == nil {
		metrics.Completions.WithLabelValues(OutcomeSkipped).Inc()
		log.Printf("[Reply] ai provider not configured, skipping post=%s", post.ID)
		return ReplyResult{Outcome: OutcomeSkipped}, nil
	}

	history, err := s.repo.Threads.ReadChronological(ctx, post.ID)
	if err != nil {
		return ReplyResult{}, serverError("read thread", err)
	}

	text, outcome := s.complete(ctx, post.ID, s.buildContext(post, history))
	metrics.Completions.WithLabelValues(outcome).Inc()

	// the answer is kept even if the caller went away meanwhile
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := s.repo.Threads.Append(pctx, post.ID, Message{Role: RoleAssistant, Content: text}); err != nil {
		return ReplyResult{}, serverError("append assistant turn", err)
	}
	return ReplyResult{Assistant: text, Outcome: outcome}, nil
}

func (s *Service) buildContext(post Post, history []Message) []ai.Message {
	turns := NormalizeRoles(post, history)
	if len(turns) > s.contextWindowSize {
		turns = turns[len(turns)-s.contextWindowSize:]
	}
	out := make([]ai.Message, 0, len(turns)+1)
	out = append(out, ai.Message{Role: ai.RoleSystem, Content: systemInstruction(post.Category)})
	for _, t := range turns {
		out = append(out, ai.Message{Role: t.Role, Content: t.Content})
	}
	return out
}

type completion struct {
	text string
	err  error
}

// complete calls the provider under the completion timeout. The wait is
// bounded even when a provider ignores cancellation.
func (s *Service) complete(ctx context.Context, postID string, msgs []ai.Message) (string, string) {
	cctx, cancel := context.WithTimeout(ctx, s.completionTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan completion, 1)
	go func() {
		text, err := s.provider.Chat(cctx, msgs)
		done <- completion{text: text, err: err}
	}()

	var res completion
	select {
	case res = <-done:
	case <-cctx.Done():
		res = completion{err: cctx.Err()}
	}
	cost := time.Since(start)
	metrics.CompletionLatency.Observe(cost.Seconds())

	switch {
	case res.err != nil:
		log.Printf("[Reply] completion failed post=%s cost=%s timeout=%t err=%v",
			postID, cost, errors.Is(res.err, context.DeadlineExceeded), res.err)
		return FallbackFailed, OutcomeFailed
	case strings.TrimSpace(res.text) == "":
		log.Printf("[Reply] empty completion post=%s cost=%s", postID, cost)
		return FallbackEmpty, OutcomeEmpty
	}
	return res.text, OutcomeAnswered
}

// Detail returns the post with its thread oldest first and roles repaired.
func (s *Service) Detail(ctx context.Context, postID string) (PostDetail, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return PostDetail{}, err
	}
	msgs, err := s.repo.Threads.ReadChronological(ctx, post.ID)
	if err != nil {
		return PostDetail{}, serverError("read thread", err)
	}
	return PostDetail{Post: post, Messages: NormalizeRoles(post, msgs)}, nil
}

func (s *Service) Update(ctx context.Context, postID string, u PostUpdate) (Post, error) {
	if strings.TrimSpace(postID) == "" {
		return Post{}, badRequest("id is required")
	}
	p, err := s.repo.Posts.Update(ctx, postID, u)
	if errors.Is(err, ErrPostNotFound) {
		return Post{}, notFound(err)
	}
	if err != nil {
		return Post{}, serverError("update post", err)
	}
	return p, nil
}

// Delete removes the index entry, the thread and the record. Deleting an
// unknown id succeeds.
func (s *Service) Delete(ctx context.Context, postID string) error {
	if strings.TrimSpace(postID) == "" {
		return badRequest("id is required")
	}
	if _, err := s.repo.Index.RemoveOne(ctx, postID); err != nil {
		return serverError("remove from index", err)
	}
	if err := s.repo.Threads.Delete(ctx, postID); err != nil {
		return serverError("delete thread", err)
	}
	if err := s.repo.Posts.Delete(ctx, postID); err != nil {
		return serverError("delete post", err)
	}
	return nil
}

func (s *Service) getPost(ctx context.Context, postID string) (Post, error) {
	if strings.TrimSpace(postID) == "" {
		return Post{}, badRequest("id is required")
	}
	p, err := s.repo.Posts.Get(ctx, postID)
	if errors.Is(err, ErrPostNotFound) {
		return Post{}, notFound(err)
	}
	if err != nil {
		return Post{}, serverError("read post", err)
	}
	return p, nil
}
