package picker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/histmcp/internal/history"
)

func storeSource(t *testing.T, lines ...string) *history.Source {
	t.Helper()
	store, err := history.Parse(strings.NewReader(strings.Join(lines, "\n")+"\n"),
		history.WithClock(func() time.Time { return time.Unix(1700000000, 0).UTC() }))
	require.NoError(t, err)
	return history.StaticSource(store)
}

func commandsOf(recs []history.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Command
	}
	return out
}

func TestStoreProvider_EmptyQueryNewestFirst(t *testing.T) {
	p := NewStoreProvider(storeSource(t, "ls", "pwd", "make"))

	resp, err := p.Fetch(context.Background(), Request{RequestID: 7, TabID: TabAll, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), resp.RequestID)
	assert.Equal(t, []string{"make", "pwd", "ls"}, commandsOf(resp.Items))
	assert.Equal(t, []int{2, 1, 0}, []int{resp.Items[0].ID, resp.Items[1].ID, resp.Items[2].ID})
	assert.True(t, resp.AtEnd)
}

func TestStoreProvider_EmptyQueryIsNotCappedAtFifty(t *testing.T) {
	lines := make([]string, 120)
	for i := range lines {
		lines[i] = "echo"
	}
	p := NewStoreProvider(storeSource(t, lines...))

	resp, err := p.Fetch(context.Background(), Request{TabID: TabAll, Limit: 500})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 120)
}

func TestStoreProvider_Query(t *testing.T) {
	p := NewStoreProvider(storeSource(t, "git status", "ls", "GIT push", "git status"))

	resp, err := p.Fetch(context.Background(), Request{Query: "git", TabID: TabAll, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"git status", "GIT push", "git status"}, commandsOf(resp.Items))
}

func TestStoreProvider_UniqueKeepsNewest(t *testing.T) {
	p := NewStoreProvider(storeSource(t, "git status", "ls", "git status", "pwd"))

	resp, err := p.Fetch(context.Background(), Request{TabID: TabUnique, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"pwd", "git status", "ls"}, commandsOf(resp.Items))
	assert.Equal(t, 2, resp.Items[1].ID)
	assert.True(t, resp.AtEnd)
}

func TestStoreProvider_Limit(t *testing.T) {
	p := NewStoreProvider(storeSource(t, "a", "b", "c", "d"))

	resp, err := p.Fetch(context.Background(), Request{TabID: TabAll, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c"}, commandsOf(resp.Items))
	assert.False(t, resp.AtEnd)

	resp, err = p.Fetch(context.Background(), Request{TabID: TabAll, Limit: 4})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 4)
	assert.True(t, resp.AtEnd)

	resp, err = p.Fetch(context.Background(), Request{TabID: TabAll, Limit: 0})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.False(t, resp.AtEnd)
}

func TestStoreProvider_CancelledContext(t *testing.T) {
	p := NewStoreProvider(storeSource(t, "ls"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Fetch(ctx, Request{TabID: TabAll, Limit: 10})
	assert.ErrorIs(t, err, context.Canceled)
}
