package memory

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	l := NewFileLog(filepath.Join(t.TempDir(), "memory.jsonl"), 0, 0)

	require.NoError(t, l.Append(ctx, Entry{Type: TypeTweet, Content: "first", TweetID: "1"}))
	require.NoError(t, l.Append(ctx, Entry{Type: TypeLike, TweetID: "2"}))
	require.NoError(t, l.Append(ctx, Entry{Type: TypeTweet, Content: "second", TweetID: "3"}))

	got, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, TypeLike, got[0].Type)
	assert.Equal(t, "second", got[1].Content)
	assert.False(t, got[1].Timestamp.IsZero())
}

func TestFileLogRecentOnMissingFile(t *testing.T) {
	l := NewFileLog(filepath.Join(t.TempDir(), "none.jsonl"), 0, 0)
	got, err := l.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileLogSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"type\":\"tweet\",\"content\":\"ok\"}\nnot json\n"), 0o644))

	got, err := NewFileLog(path, 0, 0).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].Content)
}

func TestFileLogRotation(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memory.jsonl")
	l := NewFileLog(path, 10, 4)

	for i := 0; i < 11; i++ {
		require.NoError(t, l.Append(ctx, Entry{Type: TypeTweet, Content: strconv.Itoa(i)}))
	}

	got, err := l.Recent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "7", got[0].Content)
	assert.Equal(t, "10", got[3].Content)

	require.NoError(t, l.Append(ctx, Entry{Type: TypeTweet, Content: "11"}))
	got, err = l.Recent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestFileLogCountsExistingLinesBeforeRotating(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memory.jsonl")

	first := NewFileLog(path, 5, 2)
	for i := 0; i < 5; i++ {
		require.NoError(t, first.Append(ctx, Entry{Type: TypeTweet, Content: strconv.Itoa(i)}))
	}

	reopened := NewFileLog(path, 5, 2)
	require.NoError(t, reopened.Append(ctx, Entry{Type: TypeTweet, Content: "5"}))

	got, err := reopened.Recent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "4", got[0].Content)
}

func TestRecentOfType(t *testing.T) {
	ctx := context.Background()
	l := NewFileLog(filepath.Join(t.TempDir(), "memory.jsonl"), 0, 0)
	require.NoError(t, l.Append(ctx, Entry{Type: TypeTweet, Content: "a"}))
	require.NoError(t, l.Append(ctx, Entry{Type: TypeReply, Content: "b"}))
	require.NoError(t, l.Append(ctx, Entry{Type: TypeTweet, Content: "c"}))

	got, err := RecentOfType(ctx, l, TypeTweet, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[1].Content)
}
