package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/diagnostic"
	"quill/internal/lsp/protocol"
)

type stubClient struct {
	id   diagnostic.ServerID
	name string
	opts *protocol.DiagnosticOptions
}

func (s *stubClient) ID() diagnostic.ServerID { return s.id }
func (s *stubClient) Name() string            { return s.name }
func (s *stubClient) SupportsPullDiagnostics() bool {
	return s.opts != nil
}
func (s *stubClient) DiagnosticOptions() *protocol.DiagnosticOptions { return s.opts }
func (s *stubClient) TextDocumentDiagnostic(doc protocol.TextDocumentIdentifier, previousResultID string) <-chan DiagnosticResult {
	return nil
}

func TestRegistryAllocatesUniqueIDs(t *testing.T) {
	registry := NewRegistry()

	first := registry.AllocID()
	second := registry.AllocID()

	assert.NotEqual(t, first, second)
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry()
	client := &stubClient{id: registry.AllocID(), name: "vetls"}
	registry.Add(client)

	got, ok := registry.Get(client.ID())
	require.True(t, ok)
	assert.Equal(t, "vetls", got.Name())
}

func TestRegistryMissingServerIsNotFound(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.Get(diagnostic.ServerID(42))
	assert.False(t, ok)
}

func TestRegistryRemoveDropsClient(t *testing.T) {
	registry := NewRegistry()
	client := &stubClient{id: registry.AllocID()}
	registry.Add(client)

	registry.Remove(client.ID())

	_, ok := registry.Get(client.ID())
	assert.False(t, ok)
}

func TestRegistryAllOrderedByID(t *testing.T) {
	registry := NewRegistry()
	b := &stubClient{id: diagnostic.ServerID(2), name: "b"}
	a := &stubClient{id: diagnostic.ServerID(1), name: "a"}
	registry.Add(b)
	registry.Add(a)

	all := registry.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name())
	assert.Equal(t, "b", all[1].Name())
}
