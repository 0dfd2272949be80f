package protocol

import (
	"encoding/json"
	"errors"

	"github.com/sourcegraph/jsonrpc2"
)

// DiagnosticServerCancellationData is the typed payload a server may attach
// to a cancelled textDocument/diagnostic request. RetriggerRequest asks the
// client to re-issue the request after a short delay.
type DiagnosticServerCancellationData struct {
	RetriggerRequest bool `json:"retriggerRequest"`
}

// CancellationData extracts the server-cancellation payload from a request
// error. It returns false for transport errors, for RPC errors without a
// data payload, and for payloads that do not parse; all of those are
// non-retriable failures.
func CancellationData(err error) (DiagnosticServerCancellationData, bool) {
	var rpcErr *jsonrpc2.Error
	if !errors.As(err, &rpcErr) {
		return DiagnosticServerCancellationData{}, false
	}
	if rpcErr.Data == nil {
		return DiagnosticServerCancellationData{}, false
	}

	var data DiagnosticServerCancellationData
	if err := json.Unmarshal(*rpcErr.Data, &data); err != nil {
		return DiagnosticServerCancellationData{}, false
	}
	return data, true
}
