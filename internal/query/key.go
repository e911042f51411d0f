package query

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Key identifies a cache entry. Keys are hierarchical: {"subscription"} is a
// prefix of {"subscription", "arbscanner"}.
type Key []string

// NewKey builds a key from strings, numbers, url.Values and filter types
// exposing Values(). Filter sets are encoded with url.Values.Encode, which
// sorts parameter names, so equal filters give equal keys.
func NewKey(parts ...any) Key {
	k := make(Key, 0, len(parts))
	for _, p := range parts {
		k = append(k, keyPart(p))
	}
	return k
}

func keyPart(p any) string {
	switch v := p.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case url.Values:
		return v.Encode()
	case interface{ Values() url.Values }:
		return v.Values().Encode()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// String returns the canonical form used as the map key.
func (k Key) String() string {
	if k == nil {
		return "[]"
	}
	b, _ := json.Marshal([]string(k))
	return string(b)
}

// HasPrefix reports whether p is a prefix of k. The empty key prefixes everything.
func (k Key) HasPrefix(p Key) bool {
	if len(p) > len(k) {
		return false
	}
	for i := range p {
		if k[i] != p[i] {
			return false
		}
	}
	return true
}

// Append returns a new key with parts added.
func (k Key) Append(parts ...any) Key {
	out := make(Key, len(k), len(k)+len(parts))
	copy(out, k)
	return append(out, NewKey(parts...)...)
}
