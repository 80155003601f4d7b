package watch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"scexport/internal/dom"
)

type fakeSource struct {
	mu  sync.Mutex
	url string
}

func (f *fakeSource) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}

func (f *fakeSource) set(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
}

func TestCheck(t *testing.T) {
	src := &fakeSource{url: "https://soundcloud.com/a"}
	var calls []string
	w := New(src, NewState(src.URL()), func(_ context.Context, url string) {
		calls = append(calls, url)
	}, zap.NewNop())

	ctx := context.Background()
	if w.Check(ctx) {
		t.Error("unchanged URL should not fire")
	}

	src.set("https://soundcloud.com/a/sets/b")
	if !w.Check(ctx) {
		t.Error("changed URL should fire")
	}
	if w.Check(ctx) {
		t.Error("second check of the same URL should not fire")
	}

	src.set("https://soundcloud.com/a")
	w.Check(ctx)

	want := []string{"https://soundcloud.com/a/sets/b", "https://soundcloud.com/a"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %s, want %s", i, calls[i], want[i])
		}
	}
}

func TestStatesAreIndependent(t *testing.T) {
	src := &fakeSource{url: "https://soundcloud.com/b"}
	fired := 0
	onChange := func(context.Context, string) { fired++ }

	first := New(src, NewState("https://soundcloud.com/a"), onChange, zap.NewNop())
	second := New(src, NewState("https://soundcloud.com/b"), onChange, zap.NewNop())

	first.Check(context.Background())
	second.Check(context.Background())
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestRunFollowsPageNavigation(t *testing.T) {
	page, err := dom.NewPageFromHTML("https://soundcloud.com/a", "<div></div>")
	if err != nil {
		t.Fatalf("NewPageFromHTML failed: %v", err)
	}
	batches, cancel := page.Observe()
	defer cancel()

	changes := make(chan string, 4)
	w := New(page, NewState(page.URL()), func(_ context.Context, url string) {
		changes <- url
	}, zap.NewNop())

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, batches) }()

	// A history push alone is silent; the following render is what the watcher sees.
	page.PushState("https://soundcloud.com/a/track")
	if err := page.Render(strings.NewReader("<div>track</div>")); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	select {
	case url := <-changes:
		if url != "https://soundcloud.com/a/track" {
			t.Errorf("changed to %s", url)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("navigation was not detected")
	}

	stop()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestRunReturnsWhenBatchesClose(t *testing.T) {
	w := New(&fakeSource{}, NewState(""), func(context.Context, string) {}, zap.NewNop())
	batches := make(chan dom.Batch)
	close(batches)

	if err := w.Run(context.Background(), batches); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}
