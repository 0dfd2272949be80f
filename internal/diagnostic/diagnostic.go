// Package diagnostic holds the editor-side diagnostic value types.
package diagnostic

import (
	"encoding/json"
	"fmt"
)

// Severity describes how serious a diagnostic is. Severities are ordered:
// Hint < Info < Warning < Error. The zero value is Hint, which is the
// stored default when a provider supplies nothing at all; display code
// goes through Diagnostic.EffectiveSeverity instead, which falls back to
// Warning. The two defaults are intentionally different.
type Severity uint8

const (
	SeverityHint Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityHint:
		return "hint"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
}

// Tag is extra metadata attached to a diagnostic. Tags form a set; a
// diagnostic may carry both.
type Tag uint8

const (
	TagUnnecessary Tag = iota + 1
	TagDeprecated
)

// ServerID identifies a language server connection for the duration of a
// session. IDs are handed out by the server registry and never reused
// within a session; an ID whose server has exited simply stops resolving.
type ServerID uint64

func (id ServerID) String() string {
	return fmt.Sprintf("server-%d", uint64(id))
}

// Position is a point in a document's coordinate space.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position
	End   Position
}

// Diagnostic is one finding reported by a provider. Values are immutable
// once constructed and owned by the diagnostics store, keyed by
// (document uri, provider).
type Diagnostic struct {
	Range   Range
	Line    int
	Message string

	// Severity is nil when the provider did not specify one. Use
	// EffectiveSeverity for display decisions.
	Severity *Severity

	// Code is either an int32 or a string, matching what the provider sent.
	Code interface{}

	Provider Provider
	Tags     []Tag
	Source   string

	// Data is an opaque provider-defined payload, carried through untouched.
	Data json.RawMessage

	// Layout flags consumed by rendering collaborators. Populated from the
	// document text when the diagnostic is reconciled; never interpreted here.
	StartsAtWord bool
	EndsAtWord   bool
	ZeroWidth    bool
}

// EffectiveSeverity returns the severity used for display. Diagnostics
// without an explicit severity are shown as warnings.
func (d *Diagnostic) EffectiveSeverity() Severity {
	if d.Severity == nil {
		return SeverityWarning
	}
	return *d.Severity
}
