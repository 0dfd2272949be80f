package editor

import (
	"sort"

	"quill/internal/diagnostic"
)

// Store holds the reconciled diagnostics, keyed by (document uri,
// provider). A provider's set for a uri is always replaced wholesale,
// never merged. The store is owned by the editor core; mutation goes
// through Editor.SetDiagnostics so change notifications fire.
type Store struct {
	byURI map[string]map[diagnostic.Provider][]diagnostic.Diagnostic
}

func newStore() *Store {
	return &Store{
		byURI: make(map[string]map[diagnostic.Provider][]diagnostic.Diagnostic),
	}
}

// replace swaps the diagnostic set for (uri, provider) and reports whether
// the store changed. Replacing an absent set with an empty one is a no-op.
func (s *Store) replace(uri string, provider diagnostic.Provider, items []diagnostic.Diagnostic) bool {
	providers, ok := s.byURI[uri]
	if !ok {
		if len(items) == 0 {
			return false
		}
		providers = make(map[diagnostic.Provider][]diagnostic.Diagnostic)
		s.byURI[uri] = providers
	}

	if len(items) == 0 {
		if _, had := providers[provider]; !had {
			return false
		}
		delete(providers, provider)
		if len(providers) == 0 {
			delete(s.byURI, uri)
		}
		return true
	}

	providers[provider] = items
	return true
}

// ForProvider returns one provider's diagnostics for a uri.
func (s *Store) ForProvider(uri string, provider diagnostic.Provider) []diagnostic.Diagnostic {
	for key, items := range s.byURI[uri] {
		if key.Equals(provider) {
			return items
		}
	}
	return nil
}

// Get returns all diagnostics for a uri merged across providers, ordered
// by range start and, within the same position, by descending effective
// severity so the most important finding renders first.
func (s *Store) Get(uri string) []diagnostic.Diagnostic {
	providers := s.byURI[uri]
	if len(providers) == 0 {
		return nil
	}

	var merged []diagnostic.Diagnostic
	for _, items := range providers {
		merged = append(merged, items...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i].Range.Start, merged[j].Range.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Character != b.Character {
			return a.Character < b.Character
		}
		return merged[i].EffectiveSeverity() > merged[j].EffectiveSeverity()
	})
	return merged
}

// URIs returns every uri with stored diagnostics, sorted.
func (s *Store) URIs() []string {
	uris := make([]string, 0, len(s.byURI))
	for uri := range s.byURI {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// removeServer purges every diagnostic set originating from a server and
// returns the uris that changed.
func (s *Store) removeServer(id diagnostic.ServerID) []string {
	var changed []string
	for uri, providers := range s.byURI {
		touched := false
		for provider := range providers {
			if provider.HasServerID(id) {
				delete(providers, provider)
				touched = true
			}
		}
		if touched {
			changed = append(changed, uri)
		}
		if len(providers) == 0 {
			delete(s.byURI, uri)
		}
	}
	sort.Strings(changed)
	return changed
}
