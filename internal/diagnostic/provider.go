package diagnostic

// Provider identifies the origin of a diagnostic set: a language server
// connection plus an optional sub-identifier for servers that emit more
// than one diagnostic category. Two providers are equal only when both
// fields match.
//
// A provider is only meaningful while its server connection is alive;
// code holding a provider must tolerate the server disappearing and the
// registry lookup failing.
type Provider struct {
	Server     ServerID
	Identifier string
}

// NewProvider builds a provider for a server and optional sub-identifier.
// An empty identifier means the server's sole diagnostic category.
func NewProvider(server ServerID, identifier string) Provider {
	return Provider{Server: server, Identifier: identifier}
}

// ServerID returns the server identity backing this provider.
func (p Provider) ServerID() ServerID {
	return p.Server
}

// HasServerID reports whether this provider originates from the given server.
func (p Provider) HasServerID(id ServerID) bool {
	return p.Server == id
}

// Equals reports full identity: server and sub-identifier must both match.
func (p Provider) Equals(other Provider) bool {
	return p.Server == other.Server && p.Identifier == other.Identifier
}

func (p Provider) String() string {
	if p.Identifier == "" {
		return p.Server.String()
	}
	return p.Server.String() + "/" + p.Identifier
}
