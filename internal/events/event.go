package events

import "nutrilog/internal/logbook"

// Kind is the stable channel name of an event.
type Kind string

const (
	KindEntryAdded       Kind = "entry-added"
	KindEntryUpdated     Kind = "entry-updated"
	KindEntryRemoved     Kind = "entry-removed"
	KindAnalysisProgress Kind = "analysis-progress"
	KindToastRequested   Kind = "toast-requested"
	// KindDismissScreens matches every dismiss-screens:<target> channel.
	KindDismissScreens Kind = "dismiss-screens"
)

// Matches reports whether an event of kind k is selected by filter. A bare
// family name such as KindDismissScreens matches all of its targets.
func (k Kind) Matches(filter Kind) bool {
	if k == filter {
		return true
	}
	n := len(filter)
	return len(k) > n && k[:n] == filter && k[n] == ':'
}

// Event is implemented only by the variants in this package.
type Event interface {
	Kind() Kind
	dispatch(Handler)
}

// EntryAdded is published once a new entry is persisted.
type EntryAdded struct {
	Domain logbook.Domain
	ID     string
}

// EntryUpdated is published after an entry changes in the store.
type EntryUpdated struct {
	Domain logbook.Domain
	ID     string
}

// EntryRemoved is published after an entry is deleted or cancelled.
type EntryRemoved struct {
	Domain logbook.Domain
	ID     string
}

// AnalysisProgress reports simulated progress for a pending entry.
type AnalysisProgress struct {
	Domain  logbook.Domain
	ID      string
	Percent int
	Phase   string
}

// Severity of a toast.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Color returns the display colour associated with s.
func (s Severity) Color() string {
	switch s {
	case SeveritySuccess:
		return "green"
	case SeverityWarning:
		return "orange"
	case SeverityError:
		return "red"
	default:
		return "blue"
	}
}

// ToastRequested asks the presentation layer to show a transient message.
type ToastRequested struct {
	Message  string
	Severity Severity
}

// Target names a group of screens.
type Target string

const (
	TargetMeal     Target = "meal"
	TargetExercise Target = "exercise"
	TargetWeight   Target = "weight"
)

// DismissScreens asks the presentation layer to close the entry screens for
// Target.
type DismissScreens struct {
	Target Target
}

func (EntryAdded) Kind() Kind       { return KindEntryAdded }
func (EntryUpdated) Kind() Kind     { return KindEntryUpdated }
func (EntryRemoved) Kind() Kind     { return KindEntryRemoved }
func (AnalysisProgress) Kind() Kind { return KindAnalysisProgress }
func (ToastRequested) Kind() Kind   { return KindToastRequested }
func (e DismissScreens) Kind() Kind { return KindDismissScreens + ":" + Kind(e.Target) }

func (e EntryAdded) dispatch(h Handler)       { h.OnEntryAdded(e) }
func (e EntryUpdated) dispatch(h Handler)     { h.OnEntryUpdated(e) }
func (e EntryRemoved) dispatch(h Handler)     { h.OnEntryRemoved(e) }
func (e AnalysisProgress) dispatch(h Handler) { h.OnAnalysisProgress(e) }
func (e ToastRequested) dispatch(h Handler)   { h.OnToastRequested(e) }
func (e DismissScreens) dispatch(h Handler)   { h.OnDismissScreens(e) }
