package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentDiagnosticReportUnmarshalFull(t *testing.T) {
	payload := `{
		"kind": "full",
		"resultId": "r-1",
		"items": [
			{
				"range": {"start": {"line": 2, "character": 4}, "end": {"line": 2, "character": 9}},
				"severity": 1,
				"code": "E0001",
				"source": "vetls",
				"message": "undefined symbol",
				"tags": [1, 2]
			}
		],
		"relatedDocuments": {
			"file:///tmp/other.go": {"kind": "unchanged", "resultId": "r-other"}
		}
	}`

	var report DocumentDiagnosticReport
	require.NoError(t, json.Unmarshal([]byte(payload), &report))

	assert.True(t, report.IsFull())
	assert.Equal(t, "r-1", report.ResultID)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "undefined symbol", report.Items[0].Message)
	assert.Equal(t, DiagnosticSeverityError, report.Items[0].Severity)
	assert.Equal(t, []DiagnosticTag{DiagnosticTagUnnecessary, DiagnosticTagDeprecated}, report.Items[0].Tags)

	related, ok := report.RelatedDocuments["file:///tmp/other.go"]
	require.True(t, ok)
	assert.True(t, related.IsUnchanged())
	assert.Equal(t, "r-other", related.ResultID)
}

func TestDocumentDiagnosticParamsOmitsEmptyCursor(t *testing.T) {
	params := DocumentDiagnosticParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///tmp/main.go"},
	}

	raw, err := json.Marshal(params)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "previousResultId")

	params.PreviousResultID = "r-1"
	raw, err = json.Marshal(params)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"previousResultId":"r-1"`)
}

func TestCancellationDataRetrigger(t *testing.T) {
	raw := json.RawMessage(`{"retriggerRequest": true}`)
	err := &jsonrpc2.Error{Code: -32802, Message: "server cancelled", Data: &raw}

	data, ok := CancellationData(err)
	require.True(t, ok)
	assert.True(t, data.RetriggerRequest)
}

func TestCancellationDataNoRetrigger(t *testing.T) {
	raw := json.RawMessage(`{"retriggerRequest": false}`)
	err := &jsonrpc2.Error{Code: -32802, Message: "server cancelled", Data: &raw}

	data, ok := CancellationData(err)
	require.True(t, ok)
	assert.False(t, data.RetriggerRequest)
}

func TestCancellationDataRejectsTransportError(t *testing.T) {
	_, ok := CancellationData(errors.New("connection reset"))
	assert.False(t, ok)
}

func TestCancellationDataRejectsMissingPayload(t *testing.T) {
	_, ok := CancellationData(&jsonrpc2.Error{Code: -32802, Message: "server cancelled"})
	assert.False(t, ok)
}

func TestCancellationDataRejectsMalformedPayload(t *testing.T) {
	raw := json.RawMessage(`"not an object"`)
	_, ok := CancellationData(&jsonrpc2.Error{Code: -32802, Data: &raw})
	assert.False(t, ok)
}
