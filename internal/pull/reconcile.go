package pull

import (
	"log"
	"unicode"
	"unicode/utf8"

	"quill/internal/diagnostic"
	"quill/internal/editor"
	"quill/internal/lsp/protocol"
)

// applyReport reconciles one provider's report for one document, then any
// related-document sub-reports the server pushed along with it. Runs on
// the job queue.
func (e *Engine) applyReport(ed *editor.Editor, docID editor.DocumentID, provider diagnostic.Provider, serverName, uri string, report protocol.DocumentDiagnosticReport) {
	e.applySingle(ed, docID, provider, serverName, uri, report)

	for relatedURI, related := range report.RelatedDocuments {
		// Dependent-file reports follow the same full/unchanged rule under
		// the same provider, without a request of their own. The cursor
		// only advances when the related uri is actually open.
		var relatedID editor.DocumentID
		if relatedDoc, ok := ed.DocumentByURI(relatedURI); ok {
			relatedID = relatedDoc.ID()
		}
		e.applySingle(ed, relatedID, provider, serverName, relatedURI, related)
	}
}

func (e *Engine) applySingle(ed *editor.Editor, docID editor.DocumentID, provider diagnostic.Provider, serverName, uri string, report protocol.DocumentDiagnosticReport) {
	switch {
	case report.IsFull():
		var text []byte
		if doc, ok := ed.DocumentByURI(uri); ok {
			text = doc.Text()
		}
		items := convertDiagnostics(report.Items, provider, text)
		ed.SetDiagnostics(uri, provider, items)
		e.saveCache(uri, provider, serverName, items)
		setCursor(ed, docID, provider, report.ResultID)

	case report.IsUnchanged():
		// The server confirms the previous result id is still valid;
		// nothing else advances.
		setCursor(ed, docID, provider, report.ResultID)

	default:
		// Partial/streamed reports are outside the supported protocol
		// subset and are not reconciled.
	}
}

// setCursor advances the per-(document, provider) result cursor. Only
// accepted reports reach this point; cancelled or errored responses never
// touch the cursor.
func setCursor(ed *editor.Editor, docID editor.DocumentID, provider diagnostic.Provider, resultID string) {
	if doc, ok := ed.Document(docID); ok {
		doc.SetPreviousResultID(provider, resultID)
	}
}

func (e *Engine) saveCache(uri string, provider diagnostic.Provider, serverName string, items []diagnostic.Diagnostic) {
	if e.cache == nil {
		return
	}
	key := cacheKey(serverName, provider)
	go func() {
		if err := e.cache.Save(uri, key, items); err != nil {
			log.Printf("failed to cache diagnostics for %s: %v", uri, err)
		}
	}()
}

// seedFromCache loads the last persisted findings for a freshly opened
// document so something renders before the first pull completes. The next
// accepted full report overwrites the seeded set.
func (e *Engine) seedFromCache(ed *editor.Editor, docID editor.DocumentID) {
	if e.cache == nil {
		return
	}
	doc, ok := ed.Document(docID)
	if !ok {
		return
	}

	seen := make(map[diagnostic.ServerID]struct{})
	for _, serverID := range doc.Servers() {
		if _, dup := seen[serverID]; dup {
			continue
		}
		seen[serverID] = struct{}{}

		client, ok := ed.Servers().Get(serverID)
		if !ok || !client.SupportsPullDiagnostics() {
			continue
		}
		identifier := ""
		if opts := client.DiagnosticOptions(); opts != nil {
			identifier = opts.Identifier
		}
		provider := diagnostic.NewProvider(serverID, identifier)
		if len(ed.Diagnostics().ForProvider(doc.URI(), provider)) > 0 {
			continue
		}

		items, err := e.cache.Load(doc.URI(), cacheKey(client.Name(), provider))
		if err != nil {
			log.Printf("failed to load cached diagnostics for %s: %v", doc.URI(), err)
			continue
		}
		if len(items) == 0 {
			continue
		}
		// Cached items carry a previous session's server identity; re-tag
		// them with the live provider before they enter the store.
		for i := range items {
			items[i].Provider = provider
		}
		ed.SetDiagnostics(doc.URI(), provider, items)
	}
}

// convertDiagnostics maps protocol diagnostics into the editor model,
// populating the layout flags from the document text. For uris without an
// open document only the zero-width flag is derivable.
func convertDiagnostics(items []protocol.Diagnostic, provider diagnostic.Provider, text []byte) []diagnostic.Diagnostic {
	converted := make([]diagnostic.Diagnostic, 0, len(items))
	for _, item := range items {
		diag := diagnostic.Diagnostic{
			Range: diagnostic.Range{
				Start: diagnostic.Position{Line: item.Range.Start.Line, Character: item.Range.Start.Character},
				End:   diagnostic.Position{Line: item.Range.End.Line, Character: item.Range.End.Character},
			},
			Line:     int(item.Range.Start.Line),
			Message:  item.Message,
			Severity: convertSeverity(item.Severity),
			Code:     convertCode(item.Code),
			Provider: provider,
			Tags:     convertTags(item.Tags),
			Source:   item.Source,
			Data:     item.Data,
		}

		diag.ZeroWidth = item.Range.Start == item.Range.End
		if text != nil {
			start := offsetForPosition(text, item.Range.Start)
			end := offsetForPosition(text, item.Range.End)
			diag.StartsAtWord = start >= 0 && isWordRuneAt(text, start)
			diag.EndsAtWord = end > 0 && isWordRuneBefore(text, end)
		}

		converted = append(converted, diag)
	}
	return converted
}

func convertSeverity(severity protocol.DiagnosticSeverity) *diagnostic.Severity {
	var mapped diagnostic.Severity
	switch severity {
	case protocol.DiagnosticSeverityError:
		mapped = diagnostic.SeverityError
	case protocol.DiagnosticSeverityWarning:
		mapped = diagnostic.SeverityWarning
	case protocol.DiagnosticSeverityInformation:
		mapped = diagnostic.SeverityInfo
	case protocol.DiagnosticSeverityHint:
		mapped = diagnostic.SeverityHint
	default:
		// Absent or out-of-range severity stays unset; the model applies
		// its own display fallback.
		return nil
	}
	return &mapped
}

// convertCode normalizes the code field: JSON numbers arrive as float64.
func convertCode(code interface{}) interface{} {
	switch v := code.(type) {
	case float64:
		return int32(v)
	case string:
		return v
	default:
		return nil
	}
}

func convertTags(tags []protocol.DiagnosticTag) []diagnostic.Tag {
	var converted []diagnostic.Tag
	for _, tag := range tags {
		switch tag {
		case protocol.DiagnosticTagUnnecessary:
			converted = append(converted, diagnostic.TagUnnecessary)
		case protocol.DiagnosticTagDeprecated:
			converted = append(converted, diagnostic.TagDeprecated)
		}
	}
	return converted
}

// offsetForPosition resolves a line/character position to a byte offset,
// or -1 when the position lies outside the text.
func offsetForPosition(text []byte, pos protocol.Position) int {
	offset := 0
	for line := uint32(0); line < pos.Line; line++ {
		next := indexByteFrom(text, offset, '\n')
		if next < 0 {
			return -1
		}
		offset = next + 1
	}

	for col := uint32(0); col < pos.Character; col++ {
		if offset >= len(text) || text[offset] == '\n' {
			return -1
		}
		_, size := utf8.DecodeRune(text[offset:])
		offset += size
	}
	return offset
}

func indexByteFrom(text []byte, from int, b byte) int {
	for i := from; i < len(text); i++ {
		if text[i] == b {
			return i
		}
	}
	return -1
}

func isWordRuneAt(text []byte, offset int) bool {
	if offset >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRune(text[offset:])
	return isWordRune(r)
}

func isWordRuneBefore(text []byte, offset int) bool {
	if offset <= 0 || offset > len(text) {
		return false
	}
	r, _ := utf8.DecodeLastRune(text[:offset])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
