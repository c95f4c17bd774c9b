package services

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signaldesk/internal/core"
)

func TestActivityFeedNewestFirst(t *testing.T) {
	feed := NewActivityFeed(3)
	for i := 1; i <= 5; i++ {
		feed.Record(core.ChangeEvent{Kind: "users", Op: core.OpUpdated, ID: strconv.Itoa(i)})
	}

	assert.Equal(t, 3, feed.Len())
	assert.Equal(t, 3, feed.Cap())

	ids := []string{}
	for _, ev := range feed.Recent(0) {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"5", "4", "3"}, ids)

	top := feed.Recent(1)
	require.Len(t, top, 1)
	assert.Equal(t, "5", top[0].ID)
}

func TestActivityFeedPartiallyFilled(t *testing.T) {
	feed := NewActivityFeed(0)
	assert.Equal(t, DefaultActivityLimit, feed.Cap())
	assert.Empty(t, feed.Recent(10))

	feed.Record(core.ChangeEvent{ID: "a"})
	feed.Record(core.ChangeEvent{ID: "b"})

	got := feed.Recent(10)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}
