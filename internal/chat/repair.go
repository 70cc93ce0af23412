package chat

import (
	"context"
	"errors"
)

// RepairResult reports what RepairThread found for one post.
type RepairResult struct {
	PostID    string
	Dangling  bool // index id without a record
	Legacy    bool // thread only readable from the legacy key
	Unparsed  int  // entries that were not JSON objects
	Relabeled int  // turns whose stored role differs from the repaired one
}

func (r RepairResult) Changed() bool {
	return r.Legacy || r.Unparsed > 0 || r.Relabeled > 0
}

// RepairThread rewrites a thread under the current key with repaired roles
// and re-encoded entries. With dryRun nothing is written. Legacy entries
// shadowed by a non-empty current list are unreachable and get dropped.
func (r *Repo) RepairThread(ctx context.Context, postID string, dryRun bool) (RepairResult, error) {
	res := RepairResult{PostID: postID}

	post, err := r.Posts.Get(ctx, postID)
	if errors.Is(err, ErrPostNotFound) {
		res.Dangling = true
		return res, nil
	}
	if err != nil {
		return res, err
	}

	current, err := r.Threads.kv.LRange(ctx, threadKey(postID), 0, 0)
	if err != nil {
		return res, err
	}
	if len(current) == 0 {
		if res.Legacy, err = r.Threads.HasLegacy(ctx, postID); err != nil {
			return res, err
		}
	}

	raw, err := r.Threads.List(ctx, postID)
	if err != nil {
		return res, err
	}
	stored := make([]Message, len(raw))
	for i, s := range raw {
		m, ok := decodeMessage(s)
		if !ok {
			res.Unparsed++
		}
		stored[len(raw)-1-i] = m
	}

	repaired := NormalizeRoles(post, stored)
	for i := range repaired {
		if repaired[i].Role != stored[i].Role {
			res.Relabeled++
		}
	}

	if dryRun || !res.Changed() {
		return res, nil
	}
	return res, r.Threads.Replace(ctx, postID, repaired)
}
