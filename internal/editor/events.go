package editor

import (
	"sync"

	"quill/internal/diagnostic"
)

// EventKind names one editor lifecycle event.
type EventKind int

const (
	// EventDocumentDidOpen fires after a document is opened.
	EventDocumentDidOpen EventKind = iota
	// EventDocumentDidChange fires after a document edit is applied.
	EventDocumentDidChange
	// EventLanguageServerInitialized fires after a server finishes its
	// initialize handshake and is registered.
	EventLanguageServerInitialized
	// EventDiagnosticsDidChange fires after an accepted store mutation,
	// scoped to one uri.
	EventDiagnosticsDidChange
	// EventModeSwitch fires after the editor mode changes.
	EventModeSwitch
)

// Event carries the payload of one lifecycle event. Only the fields
// relevant to the kind are set.
type Event struct {
	Kind     EventKind
	Document DocumentID
	URI      string
	Server   diagnostic.ServerID

	// Ghost marks a transient edit (an intermediate state that will be
	// rolled back, e.g. during a preview); ghost edits never trigger pulls.
	Ghost bool

	OldMode Mode
	NewMode Mode
}

// EventHandler reacts to one event with exclusive access to the editor.
type EventHandler func(*Editor, Event)

// Dispatcher routes lifecycle events to registered handlers. It is an
// explicit object injected where needed; there is no ambient global
// registry. Handlers run synchronously on the editor core in registration
// order.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[EventKind][]EventHandler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[EventKind][]EventHandler),
	}
}

// Register binds a handler to an event kind.
func (d *Dispatcher) Register(kind EventKind, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], handler)
}

// dispatch runs every handler bound to the event's kind.
func (d *Dispatcher) dispatch(ed *Editor, ev Event) {
	d.mu.RLock()
	handlers := d.handlers[ev.Kind]
	d.mu.RUnlock()

	for _, handler := range handlers {
		handler(ed, ev)
	}
}
