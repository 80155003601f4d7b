package flood

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	setURL  = "https://soundcloud.com/artist/sets/mix"
	songURL = "https://soundcloud.com/artist/track"
)

func TestFloodgate_CheckPress_AllowsNormalUsage(t *testing.T) {
	fg := New(3, clock.NewMock())

	for i := 0; i < 3; i++ {
		if !fg.CheckPress(setURL, "soundcloud-get-info-sets-button") {
			t.Errorf("Press %d should be allowed", i+1)
		}
	}

	if fg.CheckPress(setURL, "soundcloud-get-info-sets-button") {
		t.Error("4th press should be blocked")
	}
}

func TestFloodgate_CheckPress_SlidingWindow(t *testing.T) {
	clk := clock.NewMock()
	fg := New(2, clk)
	button := "soundcloud-get-info-row-0"

	if !fg.CheckPress(setURL, button) {
		t.Error("First press should be allowed")
	}
	clk.Add(30 * time.Second)
	if !fg.CheckPress(setURL, button) {
		t.Error("Second press should be allowed")
	}
	if fg.CheckPress(setURL, button) {
		t.Error("Third press should be blocked")
	}

	// The first press leaves the window, the second is still in it.
	clk.Add(31 * time.Second)
	if !fg.CheckPress(setURL, button) {
		t.Error("Press after the first one expired should be allowed")
	}
	if fg.CheckPress(setURL, button) {
		t.Error("Press with two inside the window should be blocked")
	}
}

func TestFloodgate_CheckPress_PerButtonPerPage(t *testing.T) {
	fg := New(1, clock.NewMock())

	if !fg.CheckPress(setURL, "soundcloud-get-info-row-0") {
		t.Error("row 0 should be allowed")
	}
	if !fg.CheckPress(setURL, "soundcloud-get-info-row-1") {
		t.Error("row 1 has its own limit")
	}
	if !fg.CheckPress(songURL, "soundcloud-get-info-row-0") {
		t.Error("same id on another page has its own limit")
	}
	if fg.CheckPress(setURL, "soundcloud-get-info-row-0") {
		t.Error("row 0 should be blocked")
	}
}

func TestFloodgate_Disabled(t *testing.T) {
	fg := New(0, clock.NewMock())
	for i := 0; i < 100; i++ {
		if !fg.CheckPress(songURL, "soundcloud-get-info-song-button") {
			t.Fatalf("press %d blocked with limiting disabled", i+1)
		}
	}
	if stats := fg.GetStats(); stats.ActiveButtons != 0 {
		t.Errorf("disabled floodgate should not track buttons, got %d", stats.ActiveButtons)
	}
}

func TestFloodgate_GetStats(t *testing.T) {
	fg := New(5, clock.NewMock())

	fg.CheckPress(setURL, "a")
	fg.CheckPress(setURL, "b")

	stats := fg.GetStats()
	if stats.ActiveButtons != 2 {
		t.Errorf("ActiveButtons = %d, want 2", stats.ActiveButtons)
	}
	if stats.LimitPerMinute != 5 {
		t.Errorf("LimitPerMinute = %d, want 5", stats.LimitPerMinute)
	}
	if stats.WindowSeconds != 60 {
		t.Errorf("WindowSeconds = %d, want 60", stats.WindowSeconds)
	}
}

func TestFloodgate_Cleanup(t *testing.T) {
	clk := clock.NewMock()
	fg := New(1, clk)

	fg.CheckPress(setURL, "a")
	fg.CheckPress(setURL, "b")

	clk.Add(idleTimeout + time.Second)
	fg.CheckPress(songURL, "c")

	if stats := fg.GetStats(); stats.ActiveButtons != 1 {
		t.Errorf("idle entries should be dropped, got %d active", stats.ActiveButtons)
	}
}

func TestFloodgate_ConcurrentAccess(t *testing.T) {
	fg := New(10, clock.New())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if fg.CheckPress(setURL, "a") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
				fg.GetStats()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Errorf("allowed %d presses, want 10", allowed)
	}
}
