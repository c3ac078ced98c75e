package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CommaList is an ordered list of trimmed, non-empty tokens. It replaces the
// comma-delimited text columns (skills, branches_allowed) so callers never split
// strings themselves.
type CommaList []string

// ParseCommaList splits s on commas, trims whitespace around each token and drops
// empty tokens. Order is preserved.
func ParseCommaList(s string) CommaList {
	parts := strings.Split(s, ",")
	out := make(CommaList, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewCommaList normalizes an already split list the same way ParseCommaList does.
func NewCommaList(items []string) CommaList {
	out := make(CommaList, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Contains reports whether v matches one of the trimmed tokens exactly (case-sensitive).
func (l CommaList) Contains(v string) bool {
	for _, item := range l {
		if strings.TrimSpace(item) == v {
			return true
		}
	}
	return false
}

// String renders the list in its legacy comma-delimited form.
func (l CommaList) String() string {
	return strings.Join(l, ", ")
}

// MarshalJSON always emits an array, never null.
func (l CommaList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// UnmarshalJSON accepts either a JSON array of strings or a comma-delimited string.
func (l *CommaList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = CommaList{}
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = NewCommaList(items)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("comma list must be an array of strings or a comma-delimited string")
	}
	*l = ParseCommaList(s)
	return nil
}
