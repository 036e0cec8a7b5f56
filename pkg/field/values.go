package field

import (
	"sort"
	"strings"
)

// Values maps parameters to their current text. A missing key means the
// input was never realized, which is distinct from an empty string.
type Values map[ID]string

// Get returns the value and whether it is present.
func (v Values) Get(id ID) (string, bool) {
	s, ok := v[id]
	return s, ok
}

// Lookup returns the trimmed value, treating blank input as absent.
func (v Values) Lookup(id ID) (string, bool) {
	s, ok := v[id]
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// Set stores the value for id.
func (v Values) Set(id ID, value string) {
	v[id] = value
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}

// Merge copies every entry of other into v, overwriting existing values.
func (v Values) Merge(other Values) {
	for k, s := range other {
		v[k] = s
	}
}

// IDs returns the present IDs in declaration order.
func (v Values) IDs() []ID {
	out := make([]ID, 0, len(v))
	for id := range v {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FromStrings converts a key-addressed map (flags, JSON, MCP arguments) into
// Values. Unknown keys are reported back to the caller.
func FromStrings(in map[string]string) (Values, []string) {
	out := make(Values, len(in))
	var unknown []string
	for k, s := range in {
		id, err := ParseID(k)
		if err != nil {
			unknown = append(unknown, k)
			continue
		}
		out[id] = s
	}
	sort.Strings(unknown)
	return out, unknown
}

// Strings converts Values into a key-addressed map.
func (v Values) Strings() map[string]string {
	out := make(map[string]string, len(v))
	for id, s := range v {
		out[id.Key()] = s
	}
	return out
}
