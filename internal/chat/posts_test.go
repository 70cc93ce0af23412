package chat

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostStoreLifecycle(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	a, err := repo.Posts.Create(ctx, "규격인증", "CE 인증", "절차가 궁금합니다")
	require.NoError(t, err)
	b, err := repo.Posts.Create(ctx, "", "두번째", "본문")
	require.NoError(t, err)

	assert.Equal(t, "1", a.ID)
	assert.Equal(t, "2", b.ID)
	assert.Equal(t, CategoryOther, b.Category)
	assert.Less(t, a.CreatedAt, b.CreatedAt)

	got, err := repo.Posts.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	body := ""
	cat := "없는분류"
	updated, err := repo.Posts.Update(ctx, a.ID, PostUpdate{Body: &body, Category: &cat})
	require.NoError(t, err)
	assert.Equal(t, "CE 인증", updated.Title)
	assert.Equal(t, "", updated.Body, "explicit empty value overrides")
	assert.Equal(t, CategoryOther, updated.Category)
	assert.NotZero(t, updated.UpdatedAt)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)

	require.NoError(t, repo.Posts.Delete(ctx, a.ID))
	_, err = repo.Posts.Get(ctx, a.ID)
	assert.True(t, errors.Is(err, ErrPostNotFound))

	_, err = repo.Posts.Update(ctx, a.ID, PostUpdate{})
	assert.True(t, errors.Is(err, ErrPostNotFound))
}

func TestPostStoreDecodesLooseFields(t *testing.T) {
	repo, kv, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, kv.HSet(ctx, postKey("12"), map[string]string{
		"title":     "imported",
		"content":   "body",
		"category":  "마케팅",
		"createdAt": "1.7e12",
		"updatedAt": "not-a-number",
	}))

	p, err := repo.Posts.Get(ctx, "12")
	require.NoError(t, err)
	assert.Equal(t, "12", p.ID)
	assert.Equal(t, CategoryOther, p.Category)
	assert.Equal(t, int64(1_700_000_000_000), p.CreatedAt)
	assert.Zero(t, p.UpdatedAt)
}

func TestPostIndexCapAndRemove(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()
	repo.Index.cap = 5

	for i := 1; i <= 8; i++ {
		require.NoError(t, repo.Index.RecordNew(ctx, strconv.Itoa(i)))
	}
	ids, err := repo.Index.IDs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"8", "7", "6", "5", "4"}, ids)

	head, err := repo.Index.IDs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"8", "7"}, head)

	removed, err := repo.Index.RemoveOne(ctx, "6")
	require.NoError(t, err)
	assert.True(t, removed)
	ids, err = repo.Index.IDs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"8", "7", "5", "4"}, ids, "order of the rest is kept")

	removed, err = repo.Index.RemoveOne(ctx, "100")
	require.NoError(t, err)
	assert.False(t, removed)
}
