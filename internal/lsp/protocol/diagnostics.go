package protocol

import "encoding/json"

// DiagnosticSeverity represents the severity of a diagnostic
type DiagnosticSeverity int

const (
	// DiagnosticSeverityError represents an error diagnostic
	DiagnosticSeverityError DiagnosticSeverity = 1
	// DiagnosticSeverityWarning represents a warning diagnostic
	DiagnosticSeverityWarning DiagnosticSeverity = 2
	// DiagnosticSeverityInformation represents an information diagnostic
	DiagnosticSeverityInformation DiagnosticSeverity = 3
	// DiagnosticSeverityHint represents a hint diagnostic
	DiagnosticSeverityHint DiagnosticSeverity = 4
)

// DiagnosticTag represents a tag for a diagnostic
type DiagnosticTag int

const (
	// DiagnosticTagUnnecessary indicates that the code is unnecessary
	DiagnosticTagUnnecessary DiagnosticTag = 1
	// DiagnosticTagDeprecated indicates that the code is deprecated
	DiagnosticTagDeprecated DiagnosticTag = 2
)

// Diagnostic represents a diagnostic, such as a compiler error or warning
type Diagnostic struct {
	Range              Range                          `json:"range"`
	Severity           DiagnosticSeverity             `json:"severity,omitempty"`
	Code               interface{}                    `json:"code,omitempty"`
	Source             string                         `json:"source,omitempty"`
	Message            string                         `json:"message"`
	Tags               []DiagnosticTag                `json:"tags,omitempty"`
	RelatedInformation []DiagnosticRelatedInformation `json:"relatedInformation,omitempty"`
	Data               json.RawMessage                `json:"data,omitempty"`
}

// DiagnosticRelatedInformation represents additional information related to a diagnostic
type DiagnosticRelatedInformation struct {
	Location Location `json:"location"`
	Message  string   `json:"message"`
}

// DocumentDiagnosticParams represents the parameters for a
// textDocument/diagnostic pull request
type DocumentDiagnosticParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	// Identifier is the sub-provider label the server advertised, echoed back
	Identifier string `json:"identifier,omitempty"`
	// PreviousResultID is the result cursor from the last accepted report,
	// letting the server answer "unchanged"
	PreviousResultID string `json:"previousResultId,omitempty"`
}

// Document diagnostic report kinds. A report with any other kind (the
// protocol's partial/streamed results) is not reconciled.
const (
	DiagnosticReportFull      = "full"
	DiagnosticReportUnchanged = "unchanged"
)

// DocumentDiagnosticReport represents the result of a textDocument/diagnostic
// request. Kind "full" carries Items and an optional ResultID; kind
// "unchanged" carries only ResultID. RelatedDocuments may hold sub-reports
// the server pushed for other documents it analyzed along the way.
type DocumentDiagnosticReport struct {
	Kind             string                              `json:"kind"`
	ResultID         string                              `json:"resultId,omitempty"`
	Items            []Diagnostic                        `json:"items,omitempty"`
	RelatedDocuments map[string]DocumentDiagnosticReport `json:"relatedDocuments,omitempty"`
}

// IsFull reports whether this is a full report
func (r *DocumentDiagnosticReport) IsFull() bool {
	return r.Kind == DiagnosticReportFull
}

// IsUnchanged reports whether this is an unchanged report
func (r *DocumentDiagnosticReport) IsUnchanged() bool {
	return r.Kind == DiagnosticReportUnchanged
}

// DiagnosticOptions represents the server's advertised diagnostic capability
type DiagnosticOptions struct {
	// Identifier distinguishes multiple diagnostic categories from one server
	Identifier string `json:"identifier,omitempty"`
	// InterFileDependencies is set when diagnostics of one file may depend
	// on the content of other files
	InterFileDependencies bool `json:"interFileDependencies"`
	// WorkspaceDiagnostics is set when the server supports workspace-wide pulls
	WorkspaceDiagnostics bool `json:"workspaceDiagnostics"`
}

// PublishDiagnosticsParams represents the parameters for a
// textDocument/publishDiagnostics notification pushed by a server
type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     int          `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}
