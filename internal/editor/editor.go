// Package editor holds the single-threaded editor core: open documents,
// views, the input mode, the diagnostics store, and the lifecycle event
// dispatcher. Every mutation happens via closures posted to the job
// queue, one at a time; background tasks only propose changes.
package editor

import (
	"sort"

	"quill/internal/cancel"
	"quill/internal/diagnostic"
	"quill/internal/lsp"
)

// Editor is the shared editor state. Not safe for concurrent use; the job
// queue serializes all access by construction.
type Editor struct {
	nextDocID  DocumentID
	documents  map[DocumentID]*Document
	byURI      map[string]DocumentID
	nextViewID int
	views      []*View
	mode       Mode

	store   *Store
	servers *lsp.Registry
	events  *Dispatcher
}

// New creates an editor backed by the given server registry.
func New(servers *lsp.Registry) *Editor {
	return &Editor{
		documents: make(map[DocumentID]*Document),
		byURI:     make(map[string]DocumentID),
		store:     newStore(),
		servers:   servers,
		events:    NewDispatcher(),
	}
}

// Events returns the lifecycle event dispatcher.
func (e *Editor) Events() *Dispatcher {
	return e.events
}

// Servers returns the language server registry.
func (e *Editor) Servers() *lsp.Registry {
	return e.servers
}

// Diagnostics returns the diagnostics store.
func (e *Editor) Diagnostics() *Store {
	return e.store
}

// Mode returns the current input mode.
func (e *Editor) Mode() Mode {
	return e.mode
}

// SetMode switches the input mode and fires ModeSwitch.
func (e *Editor) SetMode(mode Mode) {
	if mode == e.mode {
		return
	}
	old := e.mode
	e.mode = mode
	e.emit(Event{Kind: EventModeSwitch, OldMode: old, NewMode: mode})
}

// OpenDocument opens a buffer and fires DocumentDidOpen. Opening an
// already-open uri returns the existing document.
func (e *Editor) OpenDocument(uri, languageID, text string) *Document {
	if id, ok := e.byURI[uri]; ok {
		return e.documents[id]
	}

	e.nextDocID++
	doc := &Document{
		id:                e.nextDocID,
		uri:               uri,
		languageID:        languageID,
		version:           1,
		text:              []byte(text),
		previousResultIDs: make(map[diagnostic.Provider]string),
		PullController:    cancel.NewController(),
	}
	e.documents[doc.id] = doc
	e.byURI[uri] = doc.id

	// Every registered server sees every open buffer; request builders
	// filter by capability.
	for _, client := range e.servers.All() {
		doc.AttachServer(client.ID())
	}

	e.emit(Event{Kind: EventDocumentDidOpen, Document: doc.id, URI: uri})
	return doc
}

// CloseDocument removes a buffer and cancels its in-flight request group.
func (e *Editor) CloseDocument(id DocumentID) {
	doc, ok := e.documents[id]
	if !ok {
		return
	}
	doc.PullController.Cancel()
	delete(e.byURI, doc.uri)
	delete(e.documents, id)
}

// ApplyEdit replaces a document's content, bumps its version, and fires
// DocumentDidChange. Ghost edits are transient states that never trigger
// diagnostics.
func (e *Editor) ApplyEdit(id DocumentID, text string, ghost bool) {
	doc, ok := e.documents[id]
	if !ok {
		return
	}
	doc.text = []byte(text)
	doc.version++

	e.emit(Event{Kind: EventDocumentDidChange, Document: id, URI: doc.uri, Ghost: ghost})
}

// Document looks up an open document; ok is false when it has closed.
func (e *Editor) Document(id DocumentID) (*Document, bool) {
	doc, ok := e.documents[id]
	return doc, ok
}

// DocumentByURI looks up an open document by uri.
func (e *Editor) DocumentByURI(uri string) (*Document, bool) {
	id, ok := e.byURI[uri]
	if !ok {
		return nil, false
	}
	return e.documents[id], true
}

// Documents enumerates the open documents ordered by ID.
func (e *Editor) Documents() []*Document {
	docs := make([]*Document, 0, len(e.documents))
	for _, doc := range e.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].id < docs[j].id })
	return docs
}

// NewView opens a view.
func (e *Editor) NewView() *View {
	e.nextViewID++
	view := &View{
		id:                e.nextViewID,
		DiagnosticsActive: true,
		Events:            make(chan DiagnosticEvent, 16),
	}
	e.views = append(e.views, view)
	return view
}

// Views returns the open views.
func (e *Editor) Views() []*View {
	return e.views
}

// HasPullCapableServer reports whether any server attached to the document
// advertises pull diagnostics.
func (e *Editor) HasPullCapableServer(doc *Document) bool {
	for _, id := range doc.Servers() {
		if client, ok := e.servers.Get(id); ok && client.SupportsPullDiagnostics() {
			return true
		}
	}
	return false
}

// SetDiagnostics wholesale-replaces one provider's diagnostics for a uri
// and fires DiagnosticsDidChange when the store actually changed.
func (e *Editor) SetDiagnostics(uri string, provider diagnostic.Provider, items []diagnostic.Diagnostic) {
	if !e.store.replace(uri, provider, items) {
		return
	}
	e.emit(Event{Kind: EventDiagnosticsDidChange, URI: uri})
}

// ServerInitialized registers a ready server connection and fires
// LanguageServerInitialized.
func (e *Editor) ServerInitialized(client lsp.DiagnosticClient) {
	e.servers.Add(client)
	for _, doc := range e.Documents() {
		doc.AttachServer(client.ID())
	}
	e.emit(Event{Kind: EventLanguageServerInitialized, Server: client.ID()})
}

// ServerExited drops a departed server and purges its diagnostics,
// notifying per affected uri.
func (e *Editor) ServerExited(id diagnostic.ServerID) {
	e.servers.Remove(id)
	for _, uri := range e.store.removeServer(id) {
		e.emit(Event{Kind: EventDiagnosticsDidChange, URI: uri})
	}
}

func (e *Editor) emit(ev Event) {
	e.events.dispatch(e, ev)
}
