package protocol

// InitializeParams represents the parameters for the 'initialize' request
type InitializeParams struct {
	ProcessID    int                `json:"processId,omitempty"`
	RootURI      string             `json:"rootUri,omitempty"`
	Capabilities ClientCapabilities `json:"capabilities"`
	ClientInfo   *ClientInfo        `json:"clientInfo,omitempty"`
}

// ClientInfo identifies the connecting editor
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ClientCapabilities represents the capabilities advertised by the editor
type ClientCapabilities struct {
	TextDocument TextDocumentClientCapabilities `json:"textDocument"`
}

// TextDocumentClientCapabilities represents the text-document capabilities
// advertised by the editor
type TextDocumentClientCapabilities struct {
	// Diagnostic signals pull-diagnostics support to the server
	Diagnostic         *DiagnosticClientCapabilities         `json:"diagnostic,omitempty"`
	PublishDiagnostics *PublishDiagnosticsClientCapabilities `json:"publishDiagnostics,omitempty"`
}

// DiagnosticClientCapabilities represents the pull-diagnostics capability
type DiagnosticClientCapabilities struct {
	RelatedDocumentSupport bool `json:"relatedDocumentSupport,omitempty"`
}

// PublishDiagnosticsClientCapabilities represents the push-diagnostics capability
type PublishDiagnosticsClientCapabilities struct {
	VersionSupport bool `json:"versionSupport,omitempty"`
}

// InitializeResult represents the result of the 'initialize' request
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// ServerInfo identifies the language server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ServerCapabilities represents the capabilities advertised by a language
// server. Only the subset this client inspects is modelled; the rest of the
// payload is ignored on unmarshal.
type ServerCapabilities struct {
	TextDocumentSync   interface{}        `json:"textDocumentSync,omitempty"`
	DiagnosticProvider *DiagnosticOptions `json:"diagnosticProvider,omitempty"`
}
