package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopSchedulerHooks{}
	s.OnScheduleStart(ctx, 10)
	s.OnScheduleComplete(ctx, ScheduleStats{Nodes: 10}, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "schedule")
	c.OnCacheMiss(ctx, "schedule")
	c.OnCacheSet(ctx, "schedule", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/schedule")
	h.OnResponse(ctx, "POST", "/v1/schedule", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Scheduler().(NoopSchedulerHooks); !ok {
		t.Error("Scheduler() should return NoopSchedulerHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	custom := &testSchedulerHooks{}
	SetSchedulerHooks(custom)
	if Scheduler() != custom {
		t.Error("SetSchedulerHooks should set custom hooks")
	}
	SetSchedulerHooks(nil)
	if Scheduler() != custom {
		t.Error("SetSchedulerHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Scheduler().(NoopSchedulerHooks); !ok {
		t.Error("Reset() should restore NoopSchedulerHooks")
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	h := NewLogHooks(logger)
	h.Register()

	ctx := context.Background()
	Scheduler().OnScheduleStart(ctx, 7)
	Scheduler().OnScheduleComplete(ctx, ScheduleStats{Nodes: 7, Units: 3}, nil)
	Scheduler().OnScheduleComplete(ctx, ScheduleStats{Nodes: 7}, errors.New("boom"))
	Cache().OnCacheMiss(ctx, "schedule")
	Cache().OnCacheSet(ctx, "schedule", 42)
	HTTP().OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"schedule start", "units=3", "boom", "cache miss", "bytes=42", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testSchedulerHooks struct{ NoopSchedulerHooks }
