package testsupport

import (
	"context"
	"sync"

	"nutrilog/internal/analysis"
)

// FakeAnalyzer is a scripted analysis.Analyzer. With Block set it waits for
// the request context or Release before answering.
type FakeAnalyzer struct {
	Result analysis.Result
	Err    error
	Block  bool

	mu       sync.Mutex
	requests []analysis.Request
	release  chan struct{}
	started  chan struct{}
	once     sync.Once
}

func (f *FakeAnalyzer) init() {
	f.once.Do(func() {
		f.release = make(chan struct{})
		f.started = make(chan struct{}, 16)
	})
}

// AnalyzeMeal implements analysis.Analyzer.
func (f *FakeAnalyzer) AnalyzeMeal(ctx context.Context, req analysis.Request) (analysis.Result, error) {
	f.init()
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block, result, err := f.Block, f.Result, f.Err
	f.mu.Unlock()

	select {
	case f.started <- struct{}{}:
	default:
	}
	if block {
		select {
		case <-ctx.Done():
			return analysis.Result{}, ctx.Err()
		case <-f.release:
		}
	}
	if err != nil {
		return analysis.Result{}, err
	}
	return result, nil
}

// Started is signalled each time AnalyzeMeal is entered.
func (f *FakeAnalyzer) Started() <-chan struct{} {
	f.init()
	return f.started
}

// Release unblocks every waiting and future call.
func (f *FakeAnalyzer) Release() {
	f.init()
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.release:
	default:
		close(f.release)
	}
}

// Requests returns the requests seen so far.
func (f *FakeAnalyzer) Requests() []analysis.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]analysis.Request(nil), f.requests...)
}

// Close implements analysis.Analyzer.
func (f *FakeAnalyzer) Close() error { return nil }
