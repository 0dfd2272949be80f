package editor

// Mode is the editor's input mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeSelect
)

// DiagnosticEvent is a signal to a view's diagnostics renderer.
type DiagnosticEvent int

const (
	// DiagnosticEventRefresh asks the view to re-render its diagnostics.
	DiagnosticEventRefresh DiagnosticEvent = iota
)

// View is one visible window onto a document. The engine only toggles its
// diagnostics flag and feeds its event channel; rendering lives elsewhere.
type View struct {
	id int

	// DiagnosticsActive gates inline diagnostic rendering; cleared while
	// the editor is in insert mode.
	DiagnosticsActive bool

	// Events receives refresh signals. Signals coalesce: when the consumer
	// is behind, additional refreshes are dropped rather than queued, since
	// a refresh is idempotent.
	Events chan DiagnosticEvent
}

// ID returns the view identity.
func (v *View) ID() int {
	return v.id
}

// NotifyDiagnostics sends a diagnostics signal without blocking the core.
func (v *View) NotifyDiagnostics(ev DiagnosticEvent) {
	select {
	case v.Events <- ev:
	default:
	}
}
