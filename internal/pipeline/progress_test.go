package pipeline

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNextPercentApproachesCeiling(t *testing.T) {
	want := []int{9, 17, 24, 30, 36}
	p := 0
	for i, w := range want {
		p = nextPercent(p)
		if p != w {
			t.Fatalf("step %d: got %d, want %d", i, p, w)
		}
	}
	for range 200 {
		next := nextPercent(p)
		if next < p {
			t.Fatalf("progress went backwards: %d -> %d", p, next)
		}
		p = next
	}
	if p != progressCeiling {
		t.Fatalf("expected progress to settle at %d, got %d", progressCeiling, p)
	}
	if nextPercent(progressCeiling) != progressCeiling {
		t.Fatal("ceiling must be sticky")
	}
}

func TestPhaseFor(t *testing.T) {
	cases := map[int]string{
		0:  PhaseAnalyzing,
		29: PhaseAnalyzing,
		30: PhaseComputing,
		59: PhaseComputing,
		60: PhaseFinalizing,
		90: PhaseFinalizing,
	}
	for p, want := range cases {
		if got := phaseFor(p); got != want {
			t.Fatalf("phaseFor(%d) = %q, want %q", p, got, want)
		}
	}
}

func TestTickerStopsAndIsIdempotent(t *testing.T) {
	var wg sync.WaitGroup
	var ticks atomic.Int32
	tk := startTicker(&wg, time.Millisecond, func() { ticks.Add(1) })

	deadline := time.Now().Add(time.Second)
	for ticks.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("ticker never fired")
		}
		time.Sleep(time.Millisecond)
	}
	tk.Stop()
	tk.Stop()
	wg.Wait()

	after := ticks.Load()
	time.Sleep(5 * time.Millisecond)
	if ticks.Load() != after {
		t.Fatal("ticker fired after Stop")
	}

	var nilTicker *ticker
	nilTicker.Stop()
}
