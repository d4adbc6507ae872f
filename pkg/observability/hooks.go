// Package observability provides instrumentation hooks for scheduling,
// caching and the HTTP API.
//
// Hooks are registered once at startup; libraries call the registered
// implementation and default to no-ops, so no metrics or tracing backend is
// imported here.
//
//	observability.SetSchedulerHooks(myHooks)
//
//	observability.Scheduler().OnScheduleStart(ctx, g.Len())
//	// ... run the pipeliner ...
//	observability.Scheduler().OnScheduleComplete(ctx, stats, err)
//
// [LogHooks] implements every interface on top of a charmbracelet logger.
package observability

import (
	"context"
	"sync"
	"time"
)

// ScheduleStats is the summary passed to OnScheduleComplete.
type ScheduleStats struct {
	Nodes    int // Input nodes
	Units    int // Bins in the final schedule
	Levels   int // Levels in the final schedule
	Merges   int // Successful cluster merges
	Duration time.Duration
}

// SchedulerHooks receives scheduling events.
type SchedulerHooks interface {
	OnScheduleStart(ctx context.Context, nodes int)
	OnScheduleComplete(ctx context.Context, stats ScheduleStats, err error)
}

// CacheHooks receives cache events. keyType names the cached artifact
// ("schedule").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events for requests served by the HTTP API.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, status int, duration time.Duration)
}

// NoopSchedulerHooks ignores every event.
type NoopSchedulerHooks struct{}

func (NoopSchedulerHooks) OnScheduleStart(context.Context, int)                   {}
func (NoopSchedulerHooks) OnScheduleComplete(context.Context, ScheduleStats, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

var (
	hooksMu        sync.RWMutex
	schedulerHooks SchedulerHooks = NoopSchedulerHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
)

// SetSchedulerHooks registers h. A nil h is ignored.
func SetSchedulerHooks(h SchedulerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		schedulerHooks = h
	}
}

// SetCacheHooks registers h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Scheduler returns the registered scheduler hooks.
func Scheduler() SchedulerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return schedulerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	schedulerHooks = NoopSchedulerHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
