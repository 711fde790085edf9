// Package redact decides which source locations in a capture are secret.
package redact

import "strings"

// DefaultToken is the literal substituted for every string field of a
// matched record.
const DefaultToken = "<redacted>"

// Default marker lists. Build systems that mark secret translation units
// place them under a code_secret directory and prefix their entry points
// with secret, so these cover the common layout out of the box.
var (
	DefaultFileMarkers = []string{"code_secret"}
	DefaultFnMarkers   = []string{"secret"}
)

// Policy holds the marker lists matched against srcloc fields. File markers
// are compared against the source file path and function markers against
// the function name, both as case-insensitive substrings, OR'd together.
// The srcloc name field never participates in the decision even though a
// match blanks it along with the other strings.
type Policy struct {
	fileMarkers []string
	fnMarkers   []string
	token       string
}

// NewPolicy builds a Policy from raw marker lists. Markers are lowercased
// once up front. An empty token selects DefaultToken.
func NewPolicy(fileMarkers, fnMarkers []string, token string) Policy {
	if token == "" {
		token = DefaultToken
	}
	return Policy{
		fileMarkers: lowered(fileMarkers),
		fnMarkers:   lowered(fnMarkers),
		token:       token,
	}
}

// Default returns the policy used when no markers are configured anywhere.
func Default() Policy {
	return NewPolicy(DefaultFileMarkers, DefaultFnMarkers, "")
}

func lowered(markers []string) []string {
	out := make([]string, len(markers))
	for i, m := range markers {
		out[i] = strings.ToLower(m)
	}
	return out
}

// Match reports whether a srcloc with the given function and file fields
// is secret under the policy. Empty marker lists match nothing.
func (p Policy) Match(function, file string) bool {
	file = strings.ToLower(file)
	for _, m := range p.fileMarkers {
		if strings.Contains(file, m) {
			return true
		}
	}
	function = strings.ToLower(function)
	for _, m := range p.fnMarkers {
		if strings.Contains(function, m) {
			return true
		}
	}
	return false
}

// Token returns the replacement literal for matched records.
func (p Policy) Token() string {
	return p.token
}
