package pull

import (
	"quill/internal/editor"
)

// RegisterHooks binds the engine to the editor's lifecycle events. Call
// once at startup, after the dispatcher is constructed.
func (e *Engine) RegisterHooks(events *editor.Dispatcher) {
	events.Register(editor.EventDiagnosticsDidChange, func(ed *editor.Editor, ev editor.Event) {
		if ed.Mode() == editor.ModeInsert {
			// Suppressed while typing; views refresh on mode exit.
			return
		}
		for _, view := range ed.Views() {
			view.NotifyDiagnostics(editor.DiagnosticEventRefresh)
		}
	})

	events.Register(editor.EventModeSwitch, func(ed *editor.Editor, ev editor.Event) {
		leavingInsert := ev.OldMode == editor.ModeInsert && ev.NewMode != editor.ModeInsert
		for _, view := range ed.Views() {
			view.DiagnosticsActive = ev.NewMode != editor.ModeInsert
			if leavingInsert {
				// Deliver the refreshes suppressed while typing.
				view.NotifyDiagnostics(editor.DiagnosticEventRefresh)
			}
		}
	})

	events.Register(editor.EventDocumentDidChange, func(ed *editor.Editor, ev editor.Event) {
		if ev.Ghost {
			return
		}
		doc, ok := ed.Document(ev.Document)
		if !ok || !ed.HasPullCapableServer(doc) {
			return
		}

		// Cancel the ongoing request group, if present; the debounced
		// re-request supersedes it.
		doc.PullController.Cancel()
		e.docScheduler.enqueue(ev.Document)
		e.sweepScheduler.arm()
	})

	events.Register(editor.EventDocumentDidOpen, func(ed *editor.Editor, ev editor.Event) {
		e.seedFromCache(ed, ev.Document)
		e.RequestDocumentDiagnostics(ed, ev.Document, false)
	})

	events.Register(editor.EventLanguageServerInitialized, func(ed *editor.Editor, ev editor.Event) {
		for _, doc := range ed.Documents() {
			e.RequestDocumentDiagnostics(ed, doc.ID(), false)
		}
	})
}
