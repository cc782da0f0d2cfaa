package out

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgraph/internal/modules/search/domain"
)

func TestPanelFeedCoalescesToLatestState(t *testing.T) {
	t.Parallel()
	feed := NewPanelFeed()

	feed.ShowResults("al", []domain.Candidate{{ID: "Alan", Age: 61}})
	feed.ShowEmpty("zz", "No patients found")
	feed.Close("")

	select {
	case <-feed.Changed():
	default:
		t.Fatal("expected a change signal")
	}
	select {
	case <-feed.Changed():
		t.Fatal("signals should coalesce")
	default:
	}
	assert.False(t, feed.Snapshot().Open)
}

func TestPanelFeedMapsCandidates(t *testing.T) {
	t.Parallel()
	feed := NewPanelFeed()
	feed.ShowResults("al", []domain.Candidate{{ID: "Alan", Age: 61}})

	snap := feed.Snapshot()
	require.True(t, snap.Open)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "Alan", snap.Results[0].Name)
	assert.Equal(t, 61, snap.Results[0].Age)
}
