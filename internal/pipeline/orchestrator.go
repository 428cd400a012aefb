package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nutrilog/internal/analysis"
	"nutrilog/internal/config"
	"nutrilog/internal/events"
	"nutrilog/internal/logbook"
	"nutrilog/internal/logging"
	"nutrilog/internal/services"
	"nutrilog/internal/textutil"
)

// MediaStore persists meal photos keyed by entry id.
type MediaStore interface {
	Save(ctx context.Context, id string, raw []byte) error
	Prepare(raw []byte) ([]byte, error)
	Delete(id string) error
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logging.NewComponentLogger(logger, "pipeline")
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRand sets the source used for fallback estimates.
func WithRand(rng *rand.Rand) Option {
	return func(o *Orchestrator) {
		if rng != nil {
			o.rng = &lockedRand{rng: rng}
		}
	}
}

// WithIDGenerator overrides uuid.NewString for entry ids.
func WithIDGenerator(next func() string) Option {
	return func(o *Orchestrator) {
		if next != nil {
			o.newID = next
		}
	}
}

// WithProgressInterval sets the simulated progress tick period.
func WithProgressInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithAnalysisTimeout bounds each analysis call.
func WithAnalysisTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLocale sets the language of names and toasts.
func WithLocale(locale Locale) Option {
	return func(o *Orchestrator) {
		o.locale = locale
	}
}

// WithFallbackNameMaxRunes bounds fallback names built from descriptions.
func WithFallbackNameMaxRunes(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxNameRunes = n
		}
	}
}

// WithExerciseEstimator replaces the keyword rate estimator.
func WithExerciseEstimator(est ExerciseEstimator) Option {
	return func(o *Orchestrator) {
		if est != nil {
			o.estimator = est
		}
	}
}

type task struct {
	id          string
	domain      logbook.Domain
	state       State
	percent     int
	phase       string
	description *string
	duration    int
	image       []byte
	started     time.Time
	ctx         context.Context
	cancel      context.CancelFunc
	ticker      *ticker
	sampler     *logging.ProgressSampler
}

func (t *task) snapshot() Progress {
	return Progress{ID: t.id, Domain: t.domain, Percent: t.percent, Phase: t.phase, State: t.state}
}

// Orchestrator owns every in-flight analysis. Methods that change entries
// return after their events are delivered, so bus handlers hand work to
// another goroutine instead of calling them.
type Orchestrator struct {
	book      *logbook.Book
	bus       *events.Bus
	analyzer  analysis.Analyzer
	media     MediaStore
	estimator ExerciseEstimator

	logger       *slog.Logger
	now          func() time.Time
	rng          *lockedRand
	newID        func() string
	interval     time.Duration
	timeout      time.Duration
	locale       Locale
	maxNameRunes int

	mu     sync.Mutex
	tasks  map[string]*task
	active map[logbook.Domain]string
	recent map[logbook.Domain]Progress
	closed bool

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup
}

// New builds an orchestrator. media may be nil when photos are not stored.
func New(book *logbook.Book, bus *events.Bus, analyzer analysis.Analyzer, media MediaStore, opts ...Option) *Orchestrator {
	baseCtx, baseCancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		book:         book,
		bus:          bus,
		analyzer:     analyzer,
		media:        media,
		estimator:    RateEstimator{DefaultRate: DefaultKcalPerMinute},
		logger:       logging.NewComponentLogger(logging.NewNop(), "pipeline"),
		now:          time.Now,
		rng:          &lockedRand{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))},
		newID:        uuid.NewString,
		interval:     DefaultProgressInterval,
		timeout:      logbook.AnalysisTimeout,
		locale:       ParseLocale(""),
		maxNameRunes: DefaultFallbackNameMaxRunes,
		tasks:        make(map[string]*task),
		active:       make(map[logbook.Domain]string),
		recent:       make(map[logbook.Domain]Progress),
		baseCtx:      baseCtx,
		baseCancel:   baseCancel,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewFromConfig builds an orchestrator from the pipeline and analysis
// sections of cfg. opts are applied after the configured values.
func NewFromConfig(cfg *config.Config, book *logbook.Book, bus *events.Bus, analyzer analysis.Analyzer, media MediaStore, logger *slog.Logger, opts ...Option) *Orchestrator {
	configured := []Option{
		WithLogger(logger),
		WithProgressInterval(cfg.ProgressInterval()),
		WithAnalysisTimeout(cfg.AnalysisTimeout()),
		WithLocale(ParseLocale(cfg.Pipeline.Locale)),
		WithFallbackNameMaxRunes(cfg.Pipeline.FallbackNameMaxRunes),
	}
	return New(book, bus, analyzer, media, append(configured, opts...)...)
}

// Locale returns the configured locale.
func (o *Orchestrator) Locale() Locale { return o.locale }

// SubmitImageAnalysis logs a pending meal for a photo and analyzes it in the
// background. The error covers only the pending insert.
func (o *Orchestrator) SubmitImageAnalysis(ctx context.Context, image []byte, date time.Time) (string, error) {
	if len(image) == 0 {
		return "", services.Wrap(services.ErrValidation, "pipeline", "submit image", "image is empty", nil)
	}
	t, err := o.begin(ctx, logbook.DomainMeal, func(id string, now time.Time) error {
		return o.book.Meals.Insert(ctx, o.pendingMeal(id, date, now))
	}, func(t *task) {
		t.image = image
		o.saveMedia(ctx, t.id, image)
	})
	if err != nil {
		return "", err
	}
	go o.runMeal(t)
	return t.id, nil
}

// SubmitTextAnalysis logs a pending meal for a description and analyzes it in
// the background.
func (o *Orchestrator) SubmitTextAnalysis(ctx context.Context, description string, date time.Time) (string, error) {
	description = textutil.CollapseSpace(description)
	if description == "" {
		return "", services.Wrap(services.ErrValidation, "pipeline", "submit text", "description is empty", nil)
	}
	t, err := o.begin(ctx, logbook.DomainMeal, func(id string, now time.Time) error {
		return o.book.Meals.Insert(ctx, o.pendingMeal(id, date, now))
	}, func(t *task) {
		t.description = &description
	})
	if err != nil {
		return "", err
	}
	go o.runMeal(t)
	return t.id, nil
}

// SubmitExerciseAnalysis logs a pending exercise and estimates calories
// burned in the background.
func (o *Orchestrator) SubmitExerciseAnalysis(ctx context.Context, description string, durationMinutes int, date time.Time) (string, error) {
	description = textutil.CollapseSpace(description)
	if description == "" {
		return "", services.Wrap(services.ErrValidation, "pipeline", "submit exercise", "description is empty", nil)
	}
	if durationMinutes <= 0 {
		return "", services.Wrap(services.ErrValidation, "pipeline", "submit exercise",
			fmt.Sprintf("duration must be positive, got %d", durationMinutes), nil)
	}
	t, err := o.begin(ctx, logbook.DomainExercise, func(id string, now time.Time) error {
		entry := logbook.Exercise{
			ID:              id,
			Name:            o.locale.Placeholder(),
			Type:            logbook.ExerciseDescription,
			DurationMinutes: durationMinutes,
			Emoji:           EmojiPending,
			Date:            dayStart(date, now),
			Time:            now,
		}
		entry.BeginAnalysis(now)
		return o.book.Exercises.Insert(ctx, entry)
	}, func(t *task) {
		t.description = &description
		t.duration = durationMinutes
	})
	if err != nil {
		return "", err
	}
	go o.runExercise(t)
	return t.id, nil
}

func (o *Orchestrator) pendingMeal(id string, date, now time.Time) logbook.Meal {
	meal := logbook.Meal{
		ID:    id,
		Name:  o.locale.Placeholder(),
		Emoji: EmojiPending,
		Date:  dayStart(date, now),
		Time:  now,
	}
	meal.BeginAnalysis(now)
	return meal
}

// begin inserts the pending entry and registers its task. The caller must
// start exactly one worker goroutine for the returned task.
func (o *Orchestrator) begin(ctx context.Context, domain logbook.Domain, insert func(id string, now time.Time) error, setup func(*task)) (*task, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, ErrShutdown
	}
	if id, ok := o.active[domain]; ok {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: %s %s", ErrAnalysisInFlight, domain, id)
	}
	id := o.newID()
	now := o.now()
	if err := insert(id, now); err != nil {
		o.mu.Unlock()
		return nil, services.Wrap(services.ErrStorage, "pipeline", "insert pending entry", string(domain), err)
	}

	t := &task{
		id:      id,
		domain:  domain,
		state:   StatePending,
		phase:   PhaseAnalyzing,
		started: now,
		sampler: logging.NewProgressSampler(25),
	}
	taskCtx := services.WithEntryID(o.baseCtx, id)
	taskCtx = services.WithDomain(taskCtx, string(domain))
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		taskCtx = services.WithRequestID(taskCtx, rid)
	} else {
		taskCtx = services.WithRequestID(taskCtx, uuid.NewString())
	}
	t.ctx, t.cancel = context.WithTimeout(taskCtx, o.timeout)
	setup(t)

	o.tasks[id] = t
	o.active[domain] = id
	analysisInFlight.WithLabelValues(string(domain)).Inc()
	o.bus.Enqueue(events.EntryAdded{Domain: domain, ID: id})
	t.ticker = startTicker(&o.wg, o.interval, func() { o.tick(t) })
	o.wg.Add(1)
	o.mu.Unlock()
	o.bus.Drain()

	logging.WithContext(t.ctx, o.logger).Info("analysis submitted",
		logging.Bool("image", len(t.image) > 0),
		logging.Duration("timeout", o.timeout),
	)
	return t, nil
}

func (o *Orchestrator) runMeal(t *task) {
	defer o.wg.Done()
	req := analysis.Request{}
	if len(t.image) > 0 {
		prepared, err := o.prepare(t.image)
		if err != nil {
			o.fail(t, err)
			return
		}
		req.ImageBase64 = base64.StdEncoding.EncodeToString(prepared)
	} else if t.description != nil {
		req.Description = *t.description
	}

	result, err := o.analyzer.AnalyzeMeal(t.ctx, req)
	if err != nil {
		o.fail(t, err)
		return
	}
	o.complete(t, o.mealSuccess(result))
}

func (o *Orchestrator) runExercise(t *task) {
	defer o.wg.Done()
	req := ExerciseRequest{DurationMinutes: t.duration}
	if t.description != nil {
		req.Description = *t.description
	}
	est, err := o.estimator.EstimateExercise(t.ctx, req)
	if err != nil {
		o.fail(t, err)
		return
	}
	o.complete(t, o.exerciseSuccess(req.Description, est))
}

func (o *Orchestrator) prepare(raw []byte) ([]byte, error) {
	if o.media == nil {
		return raw, nil
	}
	return o.media.Prepare(raw)
}

// fail routes an analysis error to the fallback. Cancelled tasks are no
// longer tracked, so the settlement drops itself.
func (o *Orchestrator) fail(t *task, err error) {
	logger := logging.WithContext(t.ctx, o.logger)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Debug("analysis call cancelled", logging.Error(err))
	case services.IsSoftFailure(err):
		logging.WarnWithContext(logger, "analysis failed; using estimate", "analysis_fallback",
			logging.Error(err),
			logging.String(logging.FieldImpact, "entry logged with estimated values"),
			logging.String(logging.FieldErrorHint, "check the analysis service and network"),
		)
	default:
		logging.ErrorWithContext(logger, "analysis rejected; using estimate", "analysis_fallback",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the analysis configuration"),
		)
	}
	o.complete(t, o.fallback(t.description))
}

// complete settles t on behalf of its worker. A store failure leaves the
// entry pending and stops tracking it.
func (o *Orchestrator) complete(t *task, s settlement) {
	_, err := o.settle(context.WithoutCancel(t.ctx), t.id, t, s)
	if err == nil {
		return
	}
	o.mu.Lock()
	if o.tasks[t.id] == t {
		o.finishLocked(t, t.state, outcomeAbandoned)
	}
	o.mu.Unlock()
	logging.ErrorWithContext(logging.WithContext(t.ctx, o.logger), "reconcile failed; entry left pending", "reconcile_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the data directory is writable"),
	)
}

// settlement is one terminal transition: the event checked against the
// task state and the store mutation it guards.
type settlement struct {
	event   transitionEvent
	outcome string
	domains []logbook.Domain
	apply   func(ctx context.Context, id string, domain logbook.Domain) ([]events.Event, error)
}

func (s settlement) allows(domain logbook.Domain) bool {
	for _, d := range s.domains {
		if d == domain {
			return true
		}
	}
	return false
}

// settle applies s to id under the orchestrator lock and flushes the
// resulting events after releasing it. only restricts the settlement to one
// tracked task. Untracked ids are settled when still pending in the store.
func (o *Orchestrator) settle(ctx context.Context, id string, only *task, s settlement) (bool, error) {
	o.mu.Lock()
	t, tracked := o.tasks[id]
	if only != nil && t != only {
		o.mu.Unlock()
		return false, nil
	}

	from := StatePending
	var domain logbook.Domain
	if tracked {
		domain, from = t.domain, t.state
		if !s.allows(domain) {
			o.mu.Unlock()
			return false, nil
		}
	} else {
		d, ok := o.pendingDomain(id, s.domains)
		if !ok {
			o.mu.Unlock()
			return false, nil
		}
		domain = d
	}

	to, err := transition(from, s.event)
	if err != nil {
		o.mu.Unlock()
		return false, nil
	}
	evs, err := s.apply(ctx, id, domain)
	if err != nil {
		o.mu.Unlock()
		return false, err
	}
	var final Progress
	if tracked {
		final = o.finishLocked(t, to, s.outcome)
	}
	o.bus.Enqueue(evs...)
	o.mu.Unlock()
	o.bus.Drain()
	if tracked {
		o.settleProgress(final)
	}

	logger := o.logger.With(logging.String(logging.FieldEntryID, id), logging.String(logging.FieldDomain, string(domain)))
	if tracked {
		logger = logging.WithContext(t.ctx, o.logger)
	}
	logger.Info("analysis settled",
		logging.String("state", to.String()),
		logging.Bool("tracked", tracked),
	)
	return true, nil
}

// pendingDomain finds an untracked entry that is still analyzing.
func (o *Orchestrator) pendingDomain(id string, domains []logbook.Domain) (logbook.Domain, bool) {
	for _, d := range domains {
		switch d {
		case logbook.DomainMeal:
			if m, ok := o.book.Meals.Get(id); ok && m.IsAnalyzing {
				return d, true
			}
		case logbook.DomainExercise:
			if e, ok := o.book.Exercises.Get(id); ok && e.IsAnalyzing {
				return d, true
			}
		}
	}
	return "", false
}

// finishLocked stops tracking t, moves it to state and returns its final
// progress. Progress keeps reporting the last tick until settleProgress
// publishes the final snapshot. Callers hold o.mu.
func (o *Orchestrator) finishLocked(t *task, state State, outcome string) Progress {
	t.ticker.Stop()
	t.cancel()
	delete(o.tasks, t.id)
	if o.active[t.domain] == t.id {
		delete(o.active, t.domain)
	}
	o.recent[t.domain] = t.snapshot()
	t.state = state
	if t.state == StateResolved || t.state == StateFailed {
		t.percent, t.phase = 100, PhaseDone
	}

	domain := string(t.domain)
	analysisInFlight.WithLabelValues(domain).Dec()
	analysisTotal.WithLabelValues(domain, outcome).Inc()
	analysisDuration.WithLabelValues(domain).Observe(o.now().Sub(t.started).Seconds())
	return t.snapshot()
}

// settleProgress records p as the domain's final snapshot once the
// settlement events are delivered, unless a newer entry replaced it.
func (o *Orchestrator) settleProgress(p Progress) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if cur, ok := o.recent[p.Domain]; ok && cur.ID == p.ID {
		o.recent[p.Domain] = p
	}
}

// publish delivers evs and returns once every subscriber has seen them, so
// orchestrator methods must not be called from a bus handler.
func (o *Orchestrator) publish(evs ...events.Event) {
	o.bus.Enqueue(evs...)
	o.bus.Drain()
}

func (o *Orchestrator) tick(t *task) {
	o.mu.Lock()
	if o.tasks[t.id] != t || t.state != StatePending {
		o.mu.Unlock()
		return
	}
	t.percent = nextPercent(t.percent)
	t.phase = phaseFor(t.percent)
	o.bus.Enqueue(events.AnalysisProgress{Domain: t.domain, ID: t.id, Percent: t.percent, Phase: t.phase})
	percent, phase := t.percent, t.phase
	emit := t.sampler.ShouldLog(float64(percent), phase)
	o.mu.Unlock()
	o.bus.Flush()

	if emit {
		logging.WithContext(t.ctx, o.logger).Debug("analysis progress",
			logging.Int("percent", percent),
			logging.String("phase", phase),
		)
	}
}

// ReconcileSuccess resolves a pending meal with an analysis result. It
// reports false when id is not a pending meal.
func (o *Orchestrator) ReconcileSuccess(ctx context.Context, id string, result analysis.Result) (bool, error) {
	return o.settle(ctx, id, nil, o.mealSuccess(result))
}

// ReconcileFallback resolves a pending meal or exercise with estimated
// values. It reports false when id is not pending.
func (o *Orchestrator) ReconcileFallback(ctx context.Context, id string, description *string) (bool, error) {
	return o.settle(ctx, id, nil, o.fallback(description))
}

// Cancel removes a pending entry and its photo. Calling it for a settled or
// unknown id is a no-op that reports false.
func (o *Orchestrator) Cancel(ctx context.Context, id string) (bool, error) {
	return o.settle(ctx, id, nil, o.cancellation(logbook.DomainMeal, logbook.DomainExercise))
}

func (o *Orchestrator) mealSuccess(result analysis.Result) settlement {
	return settlement{
		event:   eventSucceed,
		outcome: outcomeSuccess,
		domains: []logbook.Domain{logbook.DomainMeal},
		apply: func(ctx context.Context, id string, domain logbook.Domain) ([]events.Event, error) {
			name := o.locale.JoinNames(result.Names())
			_, err := o.book.Meals.Mutate(ctx, id, func(m *logbook.Meal) error {
				m.Name = name
				m.Nutrients = result.Totals
				m.Emoji = MealEmoji(name)
				m.Comment = strings.TrimSpace(result.CharacterComment)
				m.Resolve(false)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return resolvedEvents(domain, id, o.locale.Logged(name), events.SeveritySuccess), nil
		},
	}
}

func (o *Orchestrator) exerciseSuccess(description string, est ExerciseEstimate) settlement {
	return settlement{
		event:   eventSucceed,
		outcome: outcomeSuccess,
		domains: []logbook.Domain{logbook.DomainExercise},
		apply: func(ctx context.Context, id string, domain logbook.Domain) ([]events.Event, error) {
			updated, err := o.book.Exercises.Mutate(ctx, id, func(e *logbook.Exercise) error {
				if description != "" {
					e.Name = description
				}
				e.CaloriesBurned = est.CaloriesBurned
				e.Intensity = est.Intensity
				e.Emoji = est.Emoji
				e.Resolve(false)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return resolvedEvents(domain, id, o.locale.Burned(updated.Name, updated.CaloriesBurned), events.SeveritySuccess), nil
		},
	}
}

func (o *Orchestrator) fallback(description *string) settlement {
	return settlement{
		event:   eventFallback,
		outcome: outcomeFallback,
		domains: []logbook.Domain{logbook.DomainMeal, logbook.DomainExercise},
		apply: func(ctx context.Context, id string, domain logbook.Domain) ([]events.Event, error) {
			var name string
			var err error
			switch domain {
			case logbook.DomainExercise:
				var updated logbook.Exercise
				updated, err = o.book.Exercises.Mutate(ctx, id, func(e *logbook.Exercise) error {
					if description != nil {
						if text := textutil.CollapseSpace(*description); text != "" {
							e.Name = strings.TrimSpace(textutil.TruncateRunes(text, o.maxNameRunes))
						}
					}
					e.CaloriesBurned = burned(e.DurationMinutes, DefaultKcalPerMinute)
					e.Intensity = IntensityModerate
					e.Emoji = EmojiExercise
					e.Resolve(true)
					return nil
				})
				name = updated.Name
			default:
				name = fallbackName(description, o.maxNameRunes, o.locale, o.rng)
				estimate := o.rng.estimateNutrients()
				_, err = o.book.Meals.Mutate(ctx, id, func(m *logbook.Meal) error {
					m.Name = name
					m.Nutrients = estimate
					m.Emoji = EmojiDefault
					m.Comment = ""
					m.Resolve(true)
					return nil
				})
			}
			if err != nil {
				return nil, err
			}
			return resolvedEvents(domain, id, o.locale.Approximate(name), events.SeverityWarning), nil
		},
	}
}

func (o *Orchestrator) cancellation(domains ...logbook.Domain) settlement {
	return settlement{
		event:   eventCancel,
		outcome: outcomeCancelled,
		domains: domains,
		apply: func(ctx context.Context, id string, domain logbook.Domain) ([]events.Event, error) {
			if err := o.removeEntry(ctx, id, domain); err != nil {
				return nil, err
			}
			return []events.Event{events.EntryRemoved{Domain: domain, ID: id}}, nil
		},
	}
}

func resolvedEvents(domain logbook.Domain, id, toast string, severity events.Severity) []events.Event {
	return []events.Event{
		events.EntryUpdated{Domain: domain, ID: id},
		events.AnalysisProgress{Domain: domain, ID: id, Percent: 100, Phase: PhaseDone},
		events.ToastRequested{Message: toast, Severity: severity},
	}
}

// removeEntry deletes the stored entry and, for meals, its photo.
func (o *Orchestrator) removeEntry(ctx context.Context, id string, domain logbook.Domain) error {
	var err error
	switch domain {
	case logbook.DomainExercise:
		_, _, err = o.book.Exercises.Remove(ctx, id)
	default:
		_, _, err = o.book.Meals.Remove(ctx, id)
		if err == nil {
			o.deleteMedia(id)
		}
	}
	return err
}

func (o *Orchestrator) saveMedia(ctx context.Context, id string, raw []byte) {
	if o.media == nil {
		return
	}
	if err := o.media.Save(ctx, id, raw); err != nil {
		logging.WarnWithContext(o.logger, "photo not stored", "media_save_failed",
			logging.String(logging.FieldEntryID, id),
			logging.Error(err),
			logging.String(logging.FieldImpact, "entry has no photo"),
		)
	}
}

func (o *Orchestrator) deleteMedia(id string) {
	if o.media == nil {
		return
	}
	if err := o.media.Delete(id); err != nil {
		logging.WarnWithContext(o.logger, "photo not removed", "media_delete_failed",
			logging.String(logging.FieldEntryID, id),
			logging.Error(err),
			logging.String(logging.FieldImpact, "orphaned photo left in media directory"),
		)
	}
}

// Active returns the id of the pending analysis in domain.
func (o *Orchestrator) Active(domain logbook.Domain) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id, ok := o.active[domain]
	return id, ok
}

// Progress reports the simulated progress of a tracked entry, or the final
// snapshot of the most recently settled entry in its domain.
func (o *Orchestrator) Progress(id string) (Progress, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if t, ok := o.tasks[id]; ok {
		return t.snapshot(), true
	}
	for _, p := range o.recent {
		if p.ID == id {
			return p, true
		}
	}
	return Progress{}, false
}

// Shutdown stops accepting submissions, cancels every in-flight analysis and
// waits for task goroutines to exit. Pending entries stay pending.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		for _, t := range o.tasks {
			o.finishLocked(t, t.state, outcomeAbandoned)
		}
		o.baseCancel()
	}
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dayStart truncates date to midnight in its own location. A zero date uses
// the day of now.
func dayStart(date, now time.Time) time.Time {
	if date.IsZero() {
		date = now
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location())
}
