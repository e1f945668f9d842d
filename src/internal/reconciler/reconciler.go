// Package reconciler keeps a shareable URL's tag-filter parameters consistent
// with the filter the backend actually honored. It drives the topic-listing
// endpoint from URL state and corrects the URL when the server drops invalid
// tag ids, without fighting the user's navigation.
package reconciler

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/casapps/casforum/src/internal/params"
	"github.com/casapps/casforum/src/internal/services"
)

// State is the reconciler's lifecycle state
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateReconciling State = "reconciling"
)

// Topic is a normalized topic row. Reply and unread figures are derived
// defensively rather than trusted verbatim from the wire.
type Topic struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	RepliesCount int    `json:"replies_count"`
	Unread       bool   `json:"unread"`
}

// WireTopic is a topic row as received from the listing endpoint. Counters
// and flags are pointers so missing fields are distinguishable from zero.
type WireTopic struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	MessagesCount *int   `json:"messages_count"`
	HasNew        *bool  `json:"has_new"`
}

// NormalizeTopic derives the display figures from a wire row. The reply count
// excludes the originating post and never goes negative; a missing counter or
// flag defaults to zero/false.
func NormalizeTopic(w WireTopic) Topic {
	replies := 0
	if w.MessagesCount != nil && *w.MessagesCount > 1 {
		replies = *w.MessagesCount - 1
	}
	return Topic{
		ID:           w.ID,
		Title:        w.Title,
		Slug:         w.Slug,
		RepliesCount: replies,
		Unread:       w.HasNew != nil && *w.HasNew,
	}
}

// TopicPage is the listing endpoint's response: a topic page plus the
// resolved filter the server actually honored.
type TopicPage struct {
	Topics     []WireTopic          `json:"topics"`
	TotalCount int64                `json:"total_count"`
	Filter     services.TopicFilter `json:"filter"`
}

// TopicsClient issues the topic-listing request
type TopicsClient interface {
	ListTopics(ctx context.Context, tagIDs []int64, match services.MatchMode) (*TopicPage, error)
}

// Navigator rewrites the current URL without reloading the page or pushing a
// new history entry.
type Navigator interface {
	Replace(rawURL string) error
}

// Reconciler is a small state machine over {idle, fetching, reconciling}.
// Each URL change bumps a generation counter; a response whose generation is
// no longer current is dropped, so the last request always wins.
type Reconciler struct {
	client TopicsClient
	nav    Navigator

	mu         sync.Mutex
	state      State
	generation uint64
	topics     []Topic
	filter     services.TopicFilter
	lastErr    error
}

// New creates a reconciler in the idle state
func New(client TopicsClient, nav Navigator) *Reconciler {
	return &Reconciler{
		client: client,
		nav:    nav,
		state:  StateIdle,
		topics: []Topic{},
		filter: services.TopicFilter{TagIDs: []int64{}, Match: services.MatchAny},
	}
}

// HandleURLChange runs one pull-then-reconcile cycle for the given URL.
// A failed request leaves the previous topics and resolved filter untouched
// and records a retryable error; reconciliation is skipped since there is no
// resolved filter to compare against.
func (r *Reconciler) HandleURLChange(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	query := u.Query()
	requested := params.ParseIDList(query.Get("tags"))
	match := services.ParseMatchMode(query.Get("match"))

	r.mu.Lock()
	r.state = StateFetching
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	page, err := r.client.ListTopics(ctx, requested, match)

	r.mu.Lock()
	defer r.mu.Unlock()

	// A newer request superseded this one while it was in flight
	if gen != r.generation {
		return nil
	}

	if err != nil {
		r.state = StateIdle
		r.lastErr = err
		return err
	}

	r.state = StateReconciling
	r.lastErr = nil
	r.filter = page.Filter

	topics := make([]Topic, len(page.Topics))
	for i, w := range page.Topics {
		topics[i] = NormalizeTopic(w)
	}
	r.topics = topics

	if !sameIDSet(requested, page.Filter.TagIDs) {
		if err := r.nav.Replace(rewriteURL(u, page.Filter)); err != nil {
			r.state = StateIdle
			return err
		}
	}

	r.state = StateIdle
	return nil
}

// State returns the current lifecycle state
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Topics returns the most recent normalized topic page
func (r *Reconciler) Topics() []Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.topics
}

// Filter returns the most recent server-resolved filter
func (r *Reconciler) Filter() services.TopicFilter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter
}

// Err returns the error from the last failed cycle, if any
func (r *Reconciler) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// sameIDSet reports order-insensitive set equality
func sameIDSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int64]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	if len(seen) != len(b) {
		return false
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}

// rewriteURL encodes the resolved filter back into the URL's query string
func rewriteURL(u *url.URL, filter services.TopicFilter) string {
	rewritten := *u
	query := rewritten.Query()

	if len(filter.TagIDs) == 0 {
		query.Del("tags")
	} else {
		parts := make([]string, len(filter.TagIDs))
		for i, id := range filter.TagIDs {
			parts[i] = strconv.FormatInt(id, 10)
		}
		query.Set("tags", strings.Join(parts, ","))
	}
	query.Set("match", string(filter.Match))

	rewritten.RawQuery = query.Encode()
	return rewritten.String()
}
