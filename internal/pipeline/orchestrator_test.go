package pipeline_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"nutrilog/internal/analysis"
	"nutrilog/internal/events"
	"nutrilog/internal/logbook"
	"nutrilog/internal/logging"
	"nutrilog/internal/media"
	"nutrilog/internal/pipeline"
	"nutrilog/internal/services"
	"nutrilog/internal/testsupport"
)

const waitTimeout = 5 * time.Second

var testDay = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type harness struct {
	orch     *pipeline.Orchestrator
	book     *logbook.Book
	bus      *events.Bus
	rec      *testsupport.EventRecorder
	media    *media.Store
	analyzer *testsupport.FakeAnalyzer
}

func newHarness(t *testing.T, analyzer *testsupport.FakeAnalyzer, opts ...pipeline.Option) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	book := testsupport.NewBook(t)
	bus := events.NewBus(logging.NewNop())
	rec := testsupport.RecordEvents(t, bus)
	photos, err := media.New(cfg.Paths.MediaDir, media.Options{})
	if err != nil {
		t.Fatalf("media.New: %v", err)
	}

	base := []pipeline.Option{
		pipeline.WithProgressInterval(2 * time.Millisecond),
		pipeline.WithLocale(pipeline.ParseLocale("en")),
		pipeline.WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	orch := pipeline.New(book, bus, analyzer, photos, append(base, opts...)...)
	t.Cleanup(func() {
		analyzer.Release()
		ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
		defer cancel()
		if err := orch.Shutdown(ctx); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})
	return &harness{orch: orch, book: book, bus: bus, rec: rec, media: photos, analyzer: analyzer}
}

func (h *harness) waitToast(t *testing.T) events.ToastRequested {
	t.Helper()
	ev := h.rec.WaitFor(t, waitTimeout, func(ev events.Event) bool {
		_, ok := ev.(events.ToastRequested)
		return ok
	})
	return ev.(events.ToastRequested)
}

func (h *harness) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-h.analyzer.Started():
	case <-time.After(waitTimeout):
		t.Fatal("analyzer was never called")
	}
}

func successResult() analysis.Result {
	return analysis.Result{
		FoodItems: []analysis.FoodItem{
			{Name: "Rice", Amount: "1 bowl", Nutrients: logbook.Nutrients{Calories: 250}},
			{Name: "Miso soup", Amount: "1 cup", Nutrients: logbook.Nutrients{Calories: 60}},
			{Name: "Pickles", Amount: "small", Nutrients: logbook.Nutrients{Calories: 10}},
		},
		Totals:           logbook.Nutrients{Calories: 320, Protein: 9.5, Fat: 3, Carbs: 62, Sugar: 2, Fiber: 1.5, Sodium: 1200},
		CharacterComment: "A balanced breakfast!",
	}
}

func TestSubmitTextAnalysisResolvesWithResult(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{Result: successResult(), Block: true})
	ctx := context.Background()

	id, err := h.orch.SubmitTextAnalysis(ctx, "rice and miso soup", testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.waitStarted(t)

	pending, ok := h.book.Meals.Get(id)
	if !ok {
		t.Fatal("pending entry missing")
	}
	if !pending.IsAnalyzing || pending.AnalyzingStartedAt == nil {
		t.Fatalf("expected analyzing entry, got %+v", pending.Lifecycle)
	}
	if pending.Name != "Analyzing..." || pending.Emoji != pipeline.EmojiPending {
		t.Fatalf("unexpected placeholder %q %q", pending.Name, pending.Emoji)
	}
	if !pending.Date.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected date at start of day, got %v", pending.Date)
	}
	if active, ok := h.orch.Active(logbook.DomainMeal); !ok || active != id {
		t.Fatalf("expected %s active, got %q %v", id, active, ok)
	}

	h.analyzer.Release()
	toast := h.waitToast(t)
	if toast.Severity != events.SeveritySuccess || toast.Message != "Logged Rice and Miso soup" {
		t.Fatalf("unexpected toast %+v", toast)
	}

	meal, _ := h.book.Meals.Get(id)
	if meal.IsAnalyzing || meal.IsAnalyzingError || meal.AnalyzingStartedAt != nil {
		t.Fatalf("expected resolved flags, got %+v", meal.Lifecycle)
	}
	if meal.Name != "Rice and Miso soup" {
		t.Fatalf("unexpected name %q", meal.Name)
	}
	if meal.Nutrients != successResult().Totals {
		t.Fatalf("nutrients %+v, want %+v", meal.Nutrients, successResult().Totals)
	}
	if meal.Emoji != "🍚" || meal.Comment != "A balanced breakfast!" {
		t.Fatalf("unexpected emoji/comment %q %q", meal.Emoji, meal.Comment)
	}

	reqs := h.analyzer.Requests()
	if len(reqs) != 1 || reqs[0].Description != "rice and miso soup" || reqs[0].ImageBase64 != "" {
		t.Fatalf("unexpected requests %+v", reqs)
	}
	if _, ok := h.orch.Active(logbook.DomainMeal); ok {
		t.Fatal("domain still active after reconciliation")
	}
	progress, ok := h.orch.Progress(id)
	if !ok || progress.Percent != 100 || progress.Phase != pipeline.PhaseDone || progress.State != pipeline.StateResolved {
		t.Fatalf("unexpected final progress %+v", progress)
	}
}

func TestEventOrderAndProgressMonotonic(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{Result: successResult(), Block: true})

	id, err := h.orch.SubmitTextAnalysis(context.Background(), "rice", testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.rec.WaitFor(t, waitTimeout, func(ev events.Event) bool {
		p, ok := ev.(events.AnalysisProgress)
		return ok && p.Percent >= 30
	})
	h.analyzer.Release()
	h.waitToast(t)

	evs := h.rec.Events()
	if added, ok := evs[0].(events.EntryAdded); !ok || added.ID != id || added.Domain != logbook.DomainMeal {
		t.Fatalf("first event should be EntryAdded, got %#v", evs[0])
	}

	updatedAt := -1
	last := 0
	for i, ev := range evs {
		switch e := ev.(type) {
		case events.EntryUpdated:
			if updatedAt >= 0 {
				t.Fatal("EntryUpdated published twice")
			}
			updatedAt = i
		case events.AnalysisProgress:
			if e.Percent < last {
				t.Fatalf("progress went backwards: %d -> %d", last, e.Percent)
			}
			last = e.Percent
			if e.Percent == 100 && updatedAt < 0 {
				t.Fatal("progress reached 100 before EntryUpdated")
			}
			if e.Percent > 90 && e.Percent != 100 {
				t.Fatalf("simulated progress exceeded ceiling: %d", e.Percent)
			}
		case events.EntryRemoved:
			t.Fatal("unexpected EntryRemoved")
		}
	}
	if updatedAt < 0 {
		t.Fatal("EntryUpdated never published")
	}
	final, ok := evs[updatedAt+1].(events.AnalysisProgress)
	if !ok || final.Percent != 100 || final.Phase != pipeline.PhaseDone {
		t.Fatalf("expected progress 100 right after EntryUpdated, got %#v", evs[updatedAt+1])
	}
}

func TestReconcileWaitsForBusyDrain(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{Block: true})
	ctx := context.Background()

	id, err := h.orch.SubmitTextAnalysis(ctx, "udon", testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	sub := h.bus.SubscribeFunc(func(ev events.Event) {
		once.Do(func() {
			close(entered)
			<-release
		})
	}, events.KindAnalysisProgress)
	defer sub.Cancel()

	select {
	case <-entered:
	case <-time.After(waitTimeout):
		t.Fatal("no progress event delivered")
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.orch.ReconcileSuccess(ctx, id, successResult())
		done <- err
	}()

	select {
	case err := <-done:
		close(release)
		t.Fatalf("reconcile returned before its events were delivered: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	if p, ok := h.orch.Progress(id); ok && p.Percent == 100 {
		close(release)
		t.Fatalf("progress reported done before EntryUpdated was delivered: %+v", p)
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
	case <-time.After(waitTimeout):
		t.Fatal("reconcile did not return")
	}

	var updated bool
	for _, ev := range h.rec.Events() {
		if e, ok := ev.(events.EntryUpdated); ok && e.ID == id {
			updated = true
		}
	}
	if !updated {
		t.Fatal("EntryUpdated not delivered when reconcile returned")
	}
	if p, ok := h.orch.Progress(id); !ok || p.Percent != 100 || p.Phase != pipeline.PhaseDone {
		t.Fatalf("unexpected final progress %+v", p)
	}
}

func TestTimeoutFallsBackToEstimate(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{Block: true},
		pipeline.WithAnalysisTimeout(20*time.Millisecond))

	id, err := h.orch.SubmitTextAnalysis(context.Background(), "2 eggs and toast", testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if meal, _ := h.book.Meals.Get(id); meal.Name != "Analyzing..." {
		t.Fatalf("expected placeholder, got %q", meal.Name)
	}

	toast := h.waitToast(t)
	if toast.Severity != events.SeverityWarning {
		t.Fatalf("expected warning toast, got %+v", toast)
	}
	if toast.Severity.Color() != "orange" {
		t.Fatalf("unexpected toast colour %q", toast.Severity.Color())
	}

	meal, _ := h.book.Meals.Get(id)
	if meal.Name != "2 eggs and toast" {
		t.Fatalf("unexpected fallback name %q", meal.Name)
	}
	if meal.Calories < 300 || meal.Calories > 600 {
		t.Fatalf("calories out of range: %d", meal.Calories)
	}
	if meal.IsAnalyzing || !meal.IsAnalyzingError {
		t.Fatalf("expected estimated flags, got %+v", meal.Lifecycle)
	}
	if meal.Emoji != pipeline.EmojiDefault {
		t.Fatalf("unexpected emoji %q", meal.Emoji)
	}
	if p, _ := h.orch.Progress(id); p.State != pipeline.StateFailed || p.Percent != 100 {
		t.Fatalf("unexpected progress %+v", p)
	}
}

func TestAnalyzerErrorFallsBack(t *testing.T) {
	failure := services.Wrap(services.ErrTransient, "analysis", "analyze meal", "status 503", nil)
	h := newHarness(t, &testsupport.FakeAnalyzer{Err: failure})

	id, err := h.orch.SubmitTextAnalysis(context.Background(), "curry", testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.waitToast(t)
	meal, _ := h.book.Meals.Get(id)
	if !meal.IsAnalyzingError || meal.Name != "curry" {
		t.Fatalf("expected fallback entry, got %+v", meal)
	}
}

func TestImageSubmissionStoresPhotoAndSendsJPEG(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{Result: successResult()})

	id, err := h.orch.SubmitImageAnalysis(context.Background(), testsupport.PNG(t, 1600, 1200), testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.waitToast(t)

	if !h.media.Exists(id) {
		t.Fatal("photo was not stored")
	}
	reqs := h.analyzer.Requests()
	if len(reqs) != 1 || !reqs[0].IsImage() {
		t.Fatalf("expected one image request, got %+v", reqs)
	}
	decoded, err := base64.StdEncoding.DecodeString(reqs[0].ImageBase64)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	if !bytes.HasPrefix(decoded, []byte{0xff, 0xd8}) {
		t.Fatal("analysis request did not carry a JPEG")
	}
}

func TestSubmitImageRejectsEmptyPayload(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{})
	if _, err := h.orch.SubmitImageAnalysis(context.Background(), nil, testDay); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if h.book.Meals.Len() != 0 {
		t.Fatal("rejected submission created an entry")
	}
}

func TestCancelRemovesEntryAndPhoto(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{Result: successResult(), Block: true})
	ctx := context.Background()

	id, err := h.orch.SubmitImageAnalysis(ctx, testsupport.PNG(t, 64, 64), testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.waitStarted(t)
	if !h.media.Exists(id) {
		t.Fatal("photo missing before cancel")
	}

	cancelled, err := h.orch.Cancel(ctx, id)
	if err != nil || !cancelled {
		t.Fatalf("cancel: %v %v", cancelled, err)
	}
	if _, ok := h.book.Meals.Get(id); ok {
		t.Fatal("entry survived cancel")
	}
	if h.media.Exists(id) {
		t.Fatal("photo survived cancel")
	}
	if again, err := h.orch.Cancel(ctx, id); err != nil || again {
		t.Fatalf("second cancel should be a no-op, got %v %v", again, err)
	}

	// The late result must be dropped.
	h.analyzer.Release()
	if err := h.orch.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if h.book.Meals.Len() != 0 {
		t.Fatal("late result recreated the entry")
	}
	var removed int
	for _, ev := range h.rec.Events() {
		switch ev.(type) {
		case events.EntryUpdated, events.ToastRequested:
			t.Fatalf("unexpected %T after cancel", ev)
		case events.EntryRemoved:
			removed++
		}
	}
	if removed != 1 {
		t.Fatalf("expected one EntryRemoved, got %d", removed)
	}
	if p, ok := h.orch.Progress(id); !ok || p.State != pipeline.StateCancelled || p.Percent == 100 {
		t.Fatalf("unexpected progress after cancel %+v", p)
	}
}

func TestSecondSubmissionInDomainIsRejected(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{Block: true})
	ctx := context.Background()

	if _, err := h.orch.SubmitTextAnalysis(ctx, "toast", testDay); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := h.orch.SubmitImageAnalysis(ctx, testsupport.PNG(t, 8, 8), testDay)
	if !errors.Is(err, pipeline.ErrAnalysisInFlight) {
		t.Fatalf("expected ErrAnalysisInFlight, got %v", err)
	}
	if h.book.Meals.Len() != 1 {
		t.Fatalf("rejected submission created an entry: %d meals", h.book.Meals.Len())
	}

	// The exercise domain is independent.
	if _, err := h.orch.SubmitExerciseAnalysis(ctx, "walk", 20, testDay); err != nil {
		t.Fatalf("exercise submit: %v", err)
	}
}

func TestReconcileUntrackedPendingEntry(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{})
	ctx := context.Background()

	stale := logbook.Meal{ID: "left-over", Name: "Analyzing...", Emoji: pipeline.EmojiPending, Date: testDay, Time: testDay}
	stale.BeginAnalysis(testDay)
	if err := h.book.Meals.Insert(ctx, stale); err != nil {
		t.Fatalf("insert: %v", err)
	}

	desc := "onigiri"
	ok, err := h.orch.ReconcileFallback(ctx, "left-over", &desc)
	if err != nil || !ok {
		t.Fatalf("reconcile fallback: %v %v", ok, err)
	}
	meal, _ := h.book.Meals.Get("left-over")
	if meal.IsAnalyzing || !meal.IsAnalyzingError || meal.Name != "onigiri" {
		t.Fatalf("unexpected entry %+v", meal)
	}

	if ok, err := h.orch.ReconcileSuccess(ctx, "left-over", successResult()); err != nil || ok {
		t.Fatalf("reconciling a resolved entry should be a no-op, got %v %v", ok, err)
	}
	if ok, err := h.orch.ReconcileSuccess(ctx, "unknown", successResult()); err != nil || ok {
		t.Fatalf("reconciling an unknown id should be a no-op, got %v %v", ok, err)
	}
}

func TestCancelUntrackedPendingEntry(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{})
	ctx := context.Background()

	stale := logbook.Exercise{ID: "stale-run", Name: "Analyzing...", DurationMinutes: 30, Date: testDay, Time: testDay}
	stale.BeginAnalysis(testDay)
	if err := h.book.Exercises.Insert(ctx, stale); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ok, err := h.orch.Cancel(ctx, "stale-run")
	if err != nil || !ok {
		t.Fatalf("cancel: %v %v", ok, err)
	}
	if h.book.Exercises.Len() != 0 {
		t.Fatal("untracked pending exercise survived cancel")
	}
}

func TestExerciseAnalysisEstimatesCalories(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{})

	id, err := h.orch.SubmitExerciseAnalysis(context.Background(), "morning run", 30, testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	toast := h.waitToast(t)
	if toast.Message != "morning run 270 kcal burned" {
		t.Fatalf("unexpected toast %q", toast.Message)
	}
	ex, _ := h.book.Exercises.Get(id)
	if ex.IsAnalyzing || ex.IsAnalyzingError {
		t.Fatalf("unexpected flags %+v", ex.Lifecycle)
	}
	if ex.CaloriesBurned != 270 || ex.Intensity != pipeline.IntensityHigh || ex.Type != logbook.ExerciseDescription {
		t.Fatalf("unexpected exercise %+v", ex)
	}
}

type failingEstimator struct{}

func (failingEstimator) EstimateExercise(context.Context, pipeline.ExerciseRequest) (pipeline.ExerciseEstimate, error) {
	return pipeline.ExerciseEstimate{}, services.Wrap(services.ErrTransient, "test", "estimate", "unavailable", nil)
}

func TestExerciseFallbackUsesDefaultRate(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{}, pipeline.WithExerciseEstimator(failingEstimator{}))

	id, err := h.orch.SubmitExerciseAnalysis(context.Background(), "swim", 30, testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if toast := h.waitToast(t); toast.Severity != events.SeverityWarning {
		t.Fatalf("expected warning toast, got %+v", toast)
	}
	ex, _ := h.book.Exercises.Get(id)
	if ex.CaloriesBurned != 150 || !ex.IsAnalyzingError || ex.Name != "swim" {
		t.Fatalf("unexpected fallback exercise %+v", ex)
	}
}

func TestExerciseFallbackTruncatesLongDescription(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{},
		pipeline.WithExerciseEstimator(failingEstimator{}),
		pipeline.WithFallbackNameMaxRunes(9))

	id, err := h.orch.SubmitExerciseAnalysis(context.Background(), "swimming  in the lake after work", 30, testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	toast := h.waitToast(t)
	ex, _ := h.book.Exercises.Get(id)
	if ex.Name != "swimming" {
		t.Fatalf("expected truncated name %q, got %q", "swimming", ex.Name)
	}
	if toast.Message != "Analysis was difficult, so swimming was logged with estimated values" {
		t.Fatalf("unexpected toast %q", toast.Message)
	}
}

func TestShutdownLeavesPendingEntriesAndRejectsSubmissions(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{Block: true})
	ctx := context.Background()

	id, err := h.orch.SubmitTextAnalysis(ctx, "soba", testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.waitStarted(t)
	if err := h.orch.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	meal, _ := h.book.Meals.Get(id)
	if !meal.IsAnalyzing {
		t.Fatal("shutdown should leave the entry pending")
	}
	if _, err := h.orch.SubmitTextAnalysis(ctx, "udon", testDay); !errors.Is(err, pipeline.ErrShutdown) {
		t.Fatalf("expected ErrShutdown, got %v", err)
	}
	// A later process can still settle the entry.
	if ok, err := h.orch.ReconcileSuccess(ctx, id, successResult()); err != nil || !ok {
		t.Fatalf("reconcile after shutdown: %v %v", ok, err)
	}
}
