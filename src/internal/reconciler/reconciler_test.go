package reconciler

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casapps/casforum/src/internal/services"
)

type fakeNavigator struct {
	mu   sync.Mutex
	urls []string
}

func (n *fakeNavigator) Replace(rawURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, rawURL)
	return nil
}

func (n *fakeNavigator) replacements() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.urls...)
}

// scriptedCall is one pre-arranged response from the fake listing client
type scriptedCall struct {
	started chan struct{}
	release chan struct{}
	page    *TopicPage
	err     error
}

type scriptedClient struct {
	mu    sync.Mutex
	calls []*scriptedCall
	next  int
}

func (c *scriptedClient) ListTopics(ctx context.Context, tagIDs []int64, match services.MatchMode) (*TopicPage, error) {
	c.mu.Lock()
	call := c.calls[c.next]
	c.next++
	c.mu.Unlock()

	if call.started != nil {
		close(call.started)
	}
	if call.release != nil {
		<-call.release
	}
	if call.err != nil {
		return nil, call.err
	}
	// Echo the request into the filter unless the script pinned one
	page := *call.page
	if page.Filter.TagIDs == nil {
		page.Filter = services.TopicFilter{TagIDs: tagIDs, Match: match}
	}
	return &page, nil
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestNormalizeTopic(t *testing.T) {
	t.Run("excludes originating post from replies", func(t *testing.T) {
		topic := NormalizeTopic(WireTopic{ID: 1, MessagesCount: intPtr(5)})
		assert.Equal(t, 4, topic.RepliesCount)
	})

	t.Run("never goes negative", func(t *testing.T) {
		topic := NormalizeTopic(WireTopic{ID: 1, MessagesCount: intPtr(0)})
		assert.Equal(t, 0, topic.RepliesCount)
	})

	t.Run("missing counter defaults to zero", func(t *testing.T) {
		topic := NormalizeTopic(WireTopic{ID: 1})
		assert.Equal(t, 0, topic.RepliesCount)
		assert.False(t, topic.Unread)
	})

	t.Run("unread derives from has_new", func(t *testing.T) {
		assert.True(t, NormalizeTopic(WireTopic{HasNew: boolPtr(true)}).Unread)
		assert.False(t, NormalizeTopic(WireTopic{HasNew: boolPtr(false)}).Unread)
	})
}

func TestReconcilerRewritesURLOnce(t *testing.T) {
	nav := &fakeNavigator{}
	client := &scriptedClient{calls: []*scriptedCall{
		// Requested [1], server resolves [3]
		{page: &TopicPage{Filter: services.TopicFilter{TagIDs: []int64{3}, Match: services.MatchAny}}},
		// Follow-up with the corrected URL resolves cleanly
		{page: &TopicPage{Filter: services.TopicFilter{TagIDs: []int64{3}, Match: services.MatchAny}}},
	}}
	r := New(client, nav)

	err := r.HandleURLChange(context.Background(), "/topics?tags=1")
	require.NoError(t, err)

	urls := nav.replacements()
	require.Len(t, urls, 1)

	rewritten, err := url.Parse(urls[0])
	require.NoError(t, err)
	assert.Equal(t, "3", rewritten.Query().Get("tags"))
	assert.Equal(t, "any", rewritten.Query().Get("match"))

	// The corrected URL round-trips without another navigation
	err = r.HandleURLChange(context.Background(), urls[0])
	require.NoError(t, err)
	assert.Len(t, nav.replacements(), 1)
	assert.Equal(t, StateIdle, r.State())
}

func TestReconcilerNoNavigationWhenFilterMatches(t *testing.T) {
	nav := &fakeNavigator{}
	client := &scriptedClient{calls: []*scriptedCall{
		{page: &TopicPage{}},
	}}
	r := New(client, nav)

	err := r.HandleURLChange(context.Background(), "/topics?tags=2,1&match=all")
	require.NoError(t, err)

	// Set comparison is order-insensitive, so echoing [2,1] back is a match
	assert.Empty(t, nav.replacements())
	assert.Equal(t, services.MatchAll, r.Filter().Match)
}

func TestReconcilerClearsTagsParamWhenNothingResolves(t *testing.T) {
	nav := &fakeNavigator{}
	client := &scriptedClient{calls: []*scriptedCall{
		{page: &TopicPage{Filter: services.TopicFilter{TagIDs: []int64{}, Match: services.MatchAny}}},
	}}
	r := New(client, nav)

	err := r.HandleURLChange(context.Background(), "/topics?tags=99")
	require.NoError(t, err)

	urls := nav.replacements()
	require.Len(t, urls, 1)
	rewritten, err := url.Parse(urls[0])
	require.NoError(t, err)
	assert.False(t, rewritten.Query().Has("tags"))
}

func TestReconcilerFailureRetainsPreviousState(t *testing.T) {
	nav := &fakeNavigator{}
	client := &scriptedClient{calls: []*scriptedCall{
		{page: &TopicPage{Topics: []WireTopic{{ID: 7, MessagesCount: intPtr(3)}}}},
		{err: errors.New("listing unavailable")},
	}}
	r := New(client, nav)

	require.NoError(t, r.HandleURLChange(context.Background(), "/topics?tags=1"))
	require.Len(t, r.Topics(), 1)

	err := r.HandleURLChange(context.Background(), "/topics?tags=2")
	require.Error(t, err)

	// No partial or empty flash: the previous page and filter survive
	assert.Len(t, r.Topics(), 1)
	assert.Equal(t, []int64{1}, r.Filter().TagIDs)
	assert.Error(t, r.Err())
	assert.Equal(t, StateIdle, r.State())

	// Navigation is skipped entirely on failure
	assert.Empty(t, nav.replacements())
}

func TestReconcilerDropsSupersededResponse(t *testing.T) {
	first := &scriptedCall{
		started: make(chan struct{}),
		release: make(chan struct{}),
		page:    &TopicPage{Topics: []WireTopic{{ID: 1}}},
	}
	second := &scriptedCall{
		page: &TopicPage{Topics: []WireTopic{{ID: 2}}},
	}
	nav := &fakeNavigator{}
	client := &scriptedClient{calls: []*scriptedCall{first, second}}
	r := New(client, nav)

	done := make(chan error, 1)
	go func() {
		done <- r.HandleURLChange(context.Background(), "/topics?tags=1")
	}()
	<-first.started

	// A newer URL change arrives while the first request is in flight
	require.NoError(t, r.HandleURLChange(context.Background(), "/topics?tags=2"))
	require.Len(t, r.Topics(), 1)
	assert.Equal(t, int64(2), r.Topics()[0].ID)

	close(first.release)
	require.NoError(t, <-done)

	// The stale first response was dropped, not applied
	require.Len(t, r.Topics(), 1)
	assert.Equal(t, int64(2), r.Topics()[0].ID)
	assert.Equal(t, []int64{2}, r.Filter().TagIDs)
}
