package pipeline

import (
	"sync"
	"time"

	"nutrilog/internal/logbook"
)

// Progress phases.
const (
	PhaseAnalyzing  = "analyzing"
	PhaseComputing  = "computing nutrients"
	PhaseFinalizing = "finalizing"
	PhaseDone       = "done"
)

const (
	// progressCeiling is the highest simulated percentage; 100 is reserved for
	// reconciliation.
	progressCeiling = 90
	// DefaultProgressInterval is the simulated progress tick period.
	DefaultProgressInterval = 150 * time.Millisecond
)

// Progress is a snapshot of a submission's simulated progress.
type Progress struct {
	ID      string
	Domain  logbook.Domain
	Percent int
	Phase   string
	State   State
}

// nextPercent advances p by a tenth of the remaining distance to the ceiling,
// at least one point, never past the ceiling.
func nextPercent(p int) int {
	step := max(1, (progressCeiling-p)/10)
	return min(progressCeiling, p+step)
}

func phaseFor(p int) string {
	switch {
	case p < 30:
		return PhaseAnalyzing
	case p < 60:
		return PhaseComputing
	default:
		return PhaseFinalizing
	}
}

// ticker calls fn every interval until Stop. Stop only signals; a tick that is
// already running completes and must check task state itself.
type ticker struct {
	stop chan struct{}
	once sync.Once
}

func startTicker(wg *sync.WaitGroup, interval time.Duration, fn func()) *ticker {
	t := &ticker{stop: make(chan struct{})}
	wg.Add(1)
	go func() {
		defer wg.Done()
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-tk.C:
				fn()
			}
		}
	}()
	return t
}

// Stop is idempotent and never blocks.
func (t *ticker) Stop() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.stop) })
}
