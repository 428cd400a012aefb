package events

// Handler receives every event variant.
type Handler interface {
	OnEntryAdded(EntryAdded)
	OnEntryUpdated(EntryUpdated)
	OnEntryRemoved(EntryRemoved)
	OnAnalysisProgress(AnalysisProgress)
	OnToastRequested(ToastRequested)
	OnDismissScreens(DismissScreens)
}

// Funcs is a Handler built from optional callbacks. Nil fields ignore their
// variant.
type Funcs struct {
	EntryAdded       func(EntryAdded)
	EntryUpdated     func(EntryUpdated)
	EntryRemoved     func(EntryRemoved)
	AnalysisProgress func(AnalysisProgress)
	ToastRequested   func(ToastRequested)
	DismissScreens   func(DismissScreens)
}

func (f Funcs) OnEntryAdded(e EntryAdded) {
	if f.EntryAdded != nil {
		f.EntryAdded(e)
	}
}

func (f Funcs) OnEntryUpdated(e EntryUpdated) {
	if f.EntryUpdated != nil {
		f.EntryUpdated(e)
	}
}

func (f Funcs) OnEntryRemoved(e EntryRemoved) {
	if f.EntryRemoved != nil {
		f.EntryRemoved(e)
	}
}

func (f Funcs) OnAnalysisProgress(e AnalysisProgress) {
	if f.AnalysisProgress != nil {
		f.AnalysisProgress(e)
	}
}

func (f Funcs) OnToastRequested(e ToastRequested) {
	if f.ToastRequested != nil {
		f.ToastRequested(e)
	}
}

func (f Funcs) OnDismissScreens(e DismissScreens) {
	if f.DismissScreens != nil {
		f.DismissScreens(e)
	}
}

// HandlerFunc receives events as the sealed interface.
type HandlerFunc func(Event)
