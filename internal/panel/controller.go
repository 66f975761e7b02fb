// Package panel implements the suggestion panel state machine: it watches a
// conversation's message list, debounces refetching, and tracks the
// loading/result state exposed to the presentation layer.
package panel

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tooni-app/salesdesk/internal/model"
	"github.com/tooni-app/salesdesk/pkg/logger"
	"github.com/tooni-app/salesdesk/pkg/metrics"
)

// State is the externally visible controller state.
type State string

const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateError      State = "error"
)

// DefaultDebounce is the quiet period required after a message-list change
// before a fetch is issued.
const DefaultDebounce = 500 * time.Millisecond

// PlaceholderSummary is shown for a conversation with no messages; no fetch
// is attempted in that case.
const PlaceholderSummary = "Inicie uma conversa para receber sugestões."

const placeholderRate = 50

// SuggestionFetcher produces a suggestion result for a message list. The
// gateway implementation never returns an error; the seam admits fetchers
// that can.
type SuggestionFetcher interface {
	FetchSuggestions(ctx context.Context, messages []model.Message) (model.SuggestionResult, error)
}

// Snapshot is a copy of the controller state for the presentation layer.
type Snapshot struct {
	State          State    `json:"state"`
	Suggestions    []string `json:"suggestions"`
	Summary        string   `json:"summary"`
	ConversionRate int      `json:"conversionRate"`
	Warning        string   `json:"warning,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Controller drives the suggestion panel for a single conversation view.
//
// All transitions run under one mutex, so triggers (message change, timer
// fire, fetch completion, manual refresh) never interleave. Overlapping
// fetches are resolved last-writer-wins by issue order: every fetch carries a
// sequence number and a completion whose sequence is no longer the latest is
// discarded, so a slow stale response cannot overwrite a newer result.
type Controller struct {
	fetcher  SuggestionFetcher
	debounce time.Duration
	timeout  time.Duration
	logger   *logger.Logger

	mu          sync.Mutex
	state       State
	result      model.SuggestionResult
	errMsg      string
	fingerprint string
	seen        bool
	latest      []model.Message
	timer       *time.Timer
	seq         uint64
	closed      bool
}

// NewController creates a controller. A non-positive debounce falls back to
// DefaultDebounce.
func NewController(fetcher SuggestionFetcher, debounce, timeout time.Duration, log *logger.Logger) *Controller {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Controller{
		fetcher:  fetcher,
		debounce: debounce,
		timeout:  timeout,
		logger:   log,
		state:    StateIdle,
	}
}

// OnMessagesChanged notifies the controller that the active conversation's
// message list may have changed. Identical content (compared by message
// id+content fingerprint, not by slice identity) is ignored. A change during
// the debounce quiet period restarts the timer, so only the last change of a
// burst triggers a fetch.
func (c *Controller) OnMessagesChanged(messages []model.Message) {
	fp := fingerprint(messages)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || (c.seen && fp == c.fingerprint) {
		return
	}
	c.seen = true
	c.fingerprint = fp
	c.latest = cloneMessages(messages)

	// A new change cycle invalidates whatever fetch may still be in flight;
	// its result would otherwise land mid-debounce and clobber the state.
	c.seq++

	if c.timer != nil {
		c.timer.Stop()
	}
	c.state = StateDebouncing
	c.timer = time.AfterFunc(c.debounce, c.debounceFired)
}

func (c *Controller) debounceFired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A canceled timer may still race its Stop; only a live debounce counts.
	if c.closed || c.state != StateDebouncing {
		return
	}
	c.beginFetchLocked()
}

// Refresh forces an immediate fetch, bypassing the debounce.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.beginFetchLocked()
}

// beginFetchLocked starts a fetch for the latest captured message list. The
// caller must hold c.mu.
func (c *Controller) beginFetchLocked() {
	if len(c.latest) == 0 {
		c.state = StateReady
		c.result = model.SuggestionResult{
			Summary:        PlaceholderSummary,
			ConversionRate: placeholderRate,
		}
		c.errMsg = ""
		return
	}

	c.seq++
	c.state = StateLoading
	go c.fetch(c.seq, c.latest)
}

func (c *Controller) fetch(seq uint64, messages []model.Message) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.fetcher.FetchSuggestions(ctx, messages)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq != c.seq {
		metrics.RecordPanelFetch("stale")
		return
	}
	metrics.RecordPanelFetch("applied")

	if err != nil {
		c.state = StateError
		c.errMsg = err.Error()
		return
	}
	c.state = StateReady
	c.result = result
	c.errMsg = ""
}

// Snapshot returns a copy of the current panel state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		State:          c.state,
		Suggestions:    append([]string(nil), c.result.Suggestions...),
		Summary:        c.result.Summary,
		ConversionRate: c.result.ConversionRate,
		Warning:        c.result.Warning,
		Error:          c.errMsg,
	}
}

// Close stops the debounce timer and invalidates any in-flight fetch.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
}

// fingerprint derives a content identity for a message list from (id, content)
// pairs, so unrelated re-renders or slice copies do not look like changes.
func fingerprint(messages []model.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(msg.ID)
		b.WriteByte(0x1f)
		b.WriteString(msg.Content)
		b.WriteByte(0x1e)
	}
	return b.String()
}

func cloneMessages(messages []model.Message) []model.Message {
	return append([]model.Message(nil), messages...)
}
