package editor

import (
	"quill/internal/cancel"
	"quill/internal/diagnostic"
	"quill/internal/lsp/protocol"
)

// DocumentID identifies an open document for the duration of a session.
type DocumentID uint64

// Document is one editable buffer. All fields are owned by the
// single-threaded editor core; background tasks never touch a Document
// directly.
type Document struct {
	id         DocumentID
	uri        string
	languageID string
	version    int
	text       []byte

	// servers lists the language server attachments for this document, one
	// entry per registration. A server attached under more than one
	// registration appears more than once; request builders de-duplicate.
	servers []diagnostic.ServerID

	// previousResultIDs holds the per-provider result cursor: the opaque
	// token from the last accepted (full or unchanged) diagnostic report.
	previousResultIDs map[diagnostic.Provider]string

	// PullController scopes cancellation of this document's in-flight
	// diagnostic request group.
	PullController *cancel.Controller
}

// ID returns the document's session identity.
func (d *Document) ID() DocumentID {
	return d.id
}

// URI returns the document's uri.
func (d *Document) URI() string {
	return d.uri
}

// LanguageID returns the language identifier the document was opened with.
func (d *Document) LanguageID() string {
	return d.languageID
}

// Version returns the current edit version.
func (d *Document) Version() int {
	return d.version
}

// Text returns the document content. Callers must not mutate it.
func (d *Document) Text() []byte {
	return d.text
}

// Identifier returns the protocol identifier requests carry.
func (d *Document) Identifier() protocol.TextDocumentIdentifier {
	return protocol.TextDocumentIdentifier{URI: d.uri}
}

// Servers returns the attached server registrations, duplicates included.
func (d *Document) Servers() []diagnostic.ServerID {
	return d.servers
}

// AttachServer records a server registration for this document.
func (d *Document) AttachServer(id diagnostic.ServerID) {
	d.servers = append(d.servers, id)
}

// PreviousResultID returns the result cursor for a provider, or "" when the
// provider has not yet delivered an accepted report for this document.
func (d *Document) PreviousResultID(provider diagnostic.Provider) string {
	return d.previousResultIDs[provider]
}

// SetPreviousResultID advances a provider's result cursor. Only called
// after that provider's report was accepted.
func (d *Document) SetPreviousResultID(provider diagnostic.Provider, resultID string) {
	d.previousResultIDs[provider] = resultID
}
