package pull

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/diagnostic"
	"quill/internal/editor"
	"quill/internal/job"
	"quill/internal/lsp"
	"quill/internal/lsp/protocol"
)

type fakeCall struct {
	doc              protocol.TextDocumentIdentifier
	previousResultID string
	result           chan lsp.DiagnosticResult
}

// fakeServer is a scripted DiagnosticClient: it records every request and
// lets the test resolve them in any order.
type fakeServer struct {
	id   diagnostic.ServerID
	name string
	opts *protocol.DiagnosticOptions

	mu    sync.Mutex
	calls []*fakeCall
}

func (f *fakeServer) ID() diagnostic.ServerID                        { return f.id }
func (f *fakeServer) Name() string                                   { return f.name }
func (f *fakeServer) SupportsPullDiagnostics() bool                  { return f.opts != nil }
func (f *fakeServer) DiagnosticOptions() *protocol.DiagnosticOptions { return f.opts }

func (f *fakeServer) TextDocumentDiagnostic(doc protocol.TextDocumentIdentifier, previousResultID string) <-chan lsp.DiagnosticResult {
	if f.opts == nil || doc.URI == "" {
		return nil
	}
	call := &fakeCall{
		doc:              doc,
		previousResultID: previousResultID,
		result:           make(chan lsp.DiagnosticResult, 1),
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	return call.result
}

func (f *fakeServer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeServer) call(i int) *fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func (f *fakeServer) respondFull(i int, resultID string, messages ...string) {
	items := make([]protocol.Diagnostic, 0, len(messages))
	for _, msg := range messages {
		items = append(items, protocol.Diagnostic{Message: msg})
	}
	f.call(i).result <- lsp.DiagnosticResult{Report: protocol.DocumentDiagnosticReport{
		Kind:     protocol.DiagnosticReportFull,
		ResultID: resultID,
		Items:    items,
	}}
}

func (f *fakeServer) respondErr(i int, err error) {
	f.call(i).result <- lsp.DiagnosticResult{Err: err}
}

type harness struct {
	t        *testing.T
	registry *lsp.Registry
	queue    *job.Queue
	engine   *Engine
}

func newHarness(t *testing.T, cfg Config, hooks bool) *harness {
	t.Helper()
	registry := lsp.NewRegistry()
	ed := editor.New(registry)
	queue := job.NewQueue(ed)
	engine := NewEngine(queue, cfg)
	if hooks {
		engine.RegisterHooks(ed.Events())
	}

	go queue.Run()
	t.Cleanup(func() {
		queue.Close()
		<-queue.Done()
	})
	return &harness{t: t, registry: registry, queue: queue, engine: engine}
}

func (h *harness) addServer(name string, opts *protocol.DiagnosticOptions) *fakeServer {
	f := &fakeServer{id: h.registry.AllocID(), name: name, opts: opts}
	h.registry.Add(f)
	return f
}

// run executes fn on the job queue and waits for it.
func (h *harness) run(fn func(ed *editor.Editor)) {
	h.queue.DispatchWait(fn)
}

func (h *harness) openDocument(uri, text string) editor.DocumentID {
	var id editor.DocumentID
	h.run(func(ed *editor.Editor) {
		id = ed.OpenDocument(uri, "go", text).ID()
	})
	return id
}

func (h *harness) request(docID editor.DocumentID, interFileOnly bool) {
	h.run(func(ed *editor.Editor) {
		h.engine.RequestDocumentDiagnostics(ed, docID, interFileOnly)
	})
}

func (h *harness) messagesFor(uri string, provider diagnostic.Provider) []string {
	var messages []string
	h.run(func(ed *editor.Editor) {
		for _, item := range ed.Diagnostics().ForProvider(uri, provider) {
			messages = append(messages, item.Message)
		}
	})
	return messages
}

func (h *harness) waitCalls(f *fakeServer, n int) {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return f.callCount() >= n },
		time.Second, 5*time.Millisecond)
}

func (h *harness) eventuallyMessages(uri string, provider diagnostic.Provider, want ...string) {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		return assert.ObjectsAreEqual(want, h.messagesFor(uri, provider))
	}, time.Second, 5*time.Millisecond)
}

func retriggerError(retrigger bool) error {
	data := json.RawMessage(`{"retriggerRequest":` + map[bool]string{true: "true", false: "false"}[retrigger] + `}`)
	return &jsonrpc2.Error{Code: -32802, Message: "server cancelled the request", Data: &data}
}

func TestDrainConsumesInSubmissionOrder(t *testing.T) {
	h := newHarness(t, Config{}, false)
	first := h.addServer("first", &protocol.DiagnosticOptions{})
	second := h.addServer("second", &protocol.DiagnosticOptions{})
	uri := "file:///tmp/main.go"
	docID := h.openDocument(uri, "package main\n")

	h.request(docID, false)
	h.waitCalls(first, 1)
	h.waitCalls(second, 1)

	// The later request finishing first must not be reconciled until the
	// earlier one resolves.
	second.respondFull(0, "s-1", "from second")
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, h.messagesFor(uri, diagnostic.NewProvider(second.ID(), "")))

	first.respondFull(0, "f-1", "from first")
	h.eventuallyMessages(uri, diagnostic.NewProvider(first.ID(), ""), "from first")
	h.eventuallyMessages(uri, diagnostic.NewProvider(second.ID(), ""), "from second")
}

func TestNewGroupDiscardsOverlappingPredecessor(t *testing.T) {
	h := newHarness(t, Config{}, false)
	server := h.addServer("gopls", &protocol.DiagnosticOptions{})
	uri := "file:///tmp/main.go"
	docID := h.openDocument(uri, "package main\n")
	provider := diagnostic.NewProvider(server.ID(), "")

	h.request(docID, false)
	h.waitCalls(server, 1)
	h.request(docID, false)
	h.waitCalls(server, 2)

	// The first group's late result belongs to a cancelled generation.
	server.respondFull(0, "stale", "stale finding")
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, h.messagesFor(uri, provider))

	server.respondFull(1, "fresh", "fresh finding")
	h.eventuallyMessages(uri, provider, "fresh finding")
}

func TestRetriggerReissuesAfterDelay(t *testing.T) {
	h := newHarness(t, Config{RetryDelay: 10 * time.Millisecond}, false)
	server := h.addServer("gopls", &protocol.DiagnosticOptions{})
	uri := "file:///tmp/main.go"
	docID := h.openDocument(uri, "package main\n")
	provider := diagnostic.NewProvider(server.ID(), "")

	h.request(docID, false)
	h.waitCalls(server, 1)

	server.respondErr(0, retriggerError(true))
	h.waitCalls(server, 2)

	// The failed round never advanced the result cursor.
	assert.Equal(t, "", server.call(1).previousResultID)

	server.respondFull(1, "r-1", "after retry")
	h.eventuallyMessages(uri, provider, "after retry")
}

func TestCancellationWithoutRetriggerStops(t *testing.T) {
	h := newHarness(t, Config{RetryDelay: 10 * time.Millisecond}, false)
	server := h.addServer("gopls", &protocol.DiagnosticOptions{})
	docID := h.openDocument("file:///tmp/main.go", "package main\n")

	h.request(docID, false)
	h.waitCalls(server, 1)

	server.respondErr(0, retriggerError(false))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, server.callCount())
}

func TestFailureOfOneServerKeepsGroupAlive(t *testing.T) {
	h := newHarness(t, Config{}, false)
	failing := h.addServer("failing", &protocol.DiagnosticOptions{})
	healthy := h.addServer("healthy", &protocol.DiagnosticOptions{})
	uri := "file:///tmp/main.go"
	docID := h.openDocument(uri, "package main\n")

	h.request(docID, false)
	h.waitCalls(failing, 1)
	h.waitCalls(healthy, 1)

	failing.respondErr(0, errors.New("connection reset"))
	healthy.respondFull(0, "h-1", "still delivered")

	h.eventuallyMessages(uri, diagnostic.NewProvider(healthy.ID(), ""), "still delivered")
}

func TestSweepSkipsProvidersWithoutInterFileDependencies(t *testing.T) {
	h := newHarness(t, Config{}, false)
	interFile := h.addServer("interfile", &protocol.DiagnosticOptions{InterFileDependencies: true})
	local := h.addServer("local", &protocol.DiagnosticOptions{})
	plain := h.addServer("plain", nil)
	docID := h.openDocument("file:///tmp/main.go", "package main\n")

	h.request(docID, true)
	h.waitCalls(interFile, 1)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, local.callCount())
	assert.Equal(t, 0, plain.callCount())
}

func TestEmptyGroupKeepsPreviousGroupRunning(t *testing.T) {
	h := newHarness(t, Config{}, false)
	h.addServer("plain", nil)
	docID := h.openDocument("file:///tmp/main.go", "package main\n")

	var handle func() bool
	h.run(func(ed *editor.Editor) {
		doc, ok := ed.Document(docID)
		require.True(t, ok)
		handle = doc.PullController.Restart().Valid
	})

	h.request(docID, false)
	time.Sleep(30 * time.Millisecond)
	assert.True(t, handle(), "a no-op request group must not cancel its predecessor")
}

func TestAcceptedReportAdvancesResultCursor(t *testing.T) {
	h := newHarness(t, Config{}, false)
	server := h.addServer("gopls", &protocol.DiagnosticOptions{})
	docID := h.openDocument("file:///tmp/main.go", "package main\n")
	provider := diagnostic.NewProvider(server.ID(), "")

	h.request(docID, false)
	h.waitCalls(server, 1)
	assert.Equal(t, "", server.call(0).previousResultID)

	server.respondFull(0, "r-1", "finding")
	h.eventuallyMessages("file:///tmp/main.go", provider, "finding")

	h.request(docID, false)
	h.waitCalls(server, 2)
	assert.Equal(t, "r-1", server.call(1).previousResultID)
}

func TestDuplicateAttachmentsRequestOnce(t *testing.T) {
	h := newHarness(t, Config{}, false)
	server := h.addServer("gopls", &protocol.DiagnosticOptions{})
	docID := h.openDocument("file:///tmp/main.go", "package main\n")

	h.run(func(ed *editor.Editor) {
		doc, _ := ed.Document(docID)
		doc.AttachServer(server.ID())
	})

	h.request(docID, false)
	h.waitCalls(server, 1)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, server.callCount())
}
