package pull

import (
	"log"
	"time"

	"quill/internal/cancel"
	"quill/internal/diagnostic"
	"quill/internal/editor"
	"quill/internal/lsp"
	"quill/internal/lsp/protocol"
)

// pendingRequest pairs one in-flight request with the provider identity
// and uri its report will resolve against.
type pendingRequest struct {
	result     <-chan lsp.DiagnosticResult
	provider   diagnostic.Provider
	serverName string
	uri        string
}

// RequestDocumentDiagnostics builds and runs one ordered group of
// concurrent pull requests for a document, one per eligible server. When
// interFileOnly is set (the global sweep), servers without the
// inter-file-dependencies capability are skipped, since per-document
// debouncing already covers them.
//
// Must run on the job queue; the drain continues on its own goroutine.
func (e *Engine) RequestDocumentDiagnostics(ed *editor.Editor, docID editor.DocumentID, interFileOnly bool) {
	doc, ok := ed.Document(docID)
	if !ok {
		// The document closed before a debounced trigger fired.
		return
	}

	seen := make(map[diagnostic.ServerID]struct{})
	var requests []pendingRequest
	for _, serverID := range doc.Servers() {
		if _, dup := seen[serverID]; dup {
			continue
		}
		seen[serverID] = struct{}{}

		client, ok := ed.Servers().Get(serverID)
		if !ok || !client.SupportsPullDiagnostics() {
			continue
		}

		opts := client.DiagnosticOptions()
		if interFileOnly && (opts == nil || !opts.InterFileDependencies) {
			continue
		}

		identifier := ""
		if opts != nil {
			identifier = opts.Identifier
		}
		provider := diagnostic.NewProvider(serverID, identifier)

		result := client.TextDocumentDiagnostic(doc.Identifier(), doc.PreviousResultID(provider))
		if result == nil {
			continue
		}

		requests = append(requests, pendingRequest{
			result:     result,
			provider:   provider,
			serverName: client.Name(),
			uri:        doc.URI(),
		})
	}

	if len(requests) == 0 {
		// Restarting the controller for a no-op group would needlessly
		// cancel a still-useful previous group.
		return
	}

	handle := doc.PullController.Restart()
	go e.drain(docID, interFileOnly, handle, requests)
}

// drain consumes the group's results strictly in submission order, not
// completion order: when two providers report for the same uri, the one
// submitted later deterministically overwrites the earlier one, keeping
// outcomes independent of network timing.
func (e *Engine) drain(docID editor.DocumentID, interFileOnly bool, handle cancel.Handle, requests []pendingRequest) {
	for _, req := range requests {
		var res lsp.DiagnosticResult
		select {
		case res = <-req.result:
		case <-handle.Done():
			return
		}
		if !handle.Valid() {
			return
		}

		if res.Err != nil {
			data, ok := protocol.CancellationData(res.Err)
			if !ok {
				log.Printf("pull diagnostics request to %s failed: %v", req.serverName, res.Err)
				continue
			}
			if data.RetriggerRequest {
				select {
				case <-time.After(e.cfg.RetryDelay):
				case <-handle.Done():
					return
				}
				// The re-issue restarts the controller, which invalidates
				// this handle and ends the loop on the next check.
				e.jobs.DispatchWait(func(ed *editor.Editor) {
					e.RequestDocumentDiagnostics(ed, docID, interFileOnly)
				})
			}
			continue
		}

		req := req
		e.jobs.DispatchWait(func(ed *editor.Editor) {
			e.applyReport(ed, docID, req.provider, req.serverName, req.uri, res.Report)
		})
	}
}
