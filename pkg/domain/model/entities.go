package model

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

// Entities maps an entity kind to the values mentioned for it
type Entities map[types.EntityKind][]string

var placeholderValues = []string{"none", "null", "n/a"}

func isPlaceholder(v string) bool {
	return slices.Contains(placeholderValues, strings.ToLower(v))
}

// Add records values for kind. Blank and placeholder values are dropped and a
// value already recorded for the kind is not added again.
func (e Entities) Add(kind types.EntityKind, values ...string) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || isPlaceholder(v) {
			continue
		}
		if slices.Contains(e[kind], v) {
			continue
		}
		e[kind] = append(e[kind], v)
	}
}

// Values returns the values recorded for kind
func (e Entities) Values(kind types.EntityKind) []string {
	return e[kind]
}

// Has reports whether kind has at least one value
func (e Entities) Has(kind types.EntityKind) bool {
	return len(e[kind]) > 0
}

// IsEmpty reports whether no value is recorded
func (e Entities) IsEmpty() bool {
	for _, v := range e {
		if len(v) > 0 {
			return false
		}
	}
	return true
}

// Kinds returns the kinds that have values, sorted by name
func (e Entities) Kinds() []types.EntityKind {
	kinds := make([]types.EntityKind, 0, len(e))
	for k, v := range e {
		if len(v) > 0 {
			kinds = append(kinds, k)
		}
	}
	slices.Sort(kinds)
	return kinds
}

// Merge adds every value of other into e
func (e Entities) Merge(other Entities) {
	for _, k := range other.Kinds() {
		e.Add(k, other[k]...)
	}
}

// Clone returns a deep copy
func (e Entities) Clone() Entities {
	c := make(Entities, len(e))
	for k, v := range e {
		c[k] = slices.Clone(v)
	}
	return c
}

// MarshalJSON writes a single value as a scalar and several values as a list
func (e Entities) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e))
	for k, v := range e {
		switch len(v) {
		case 0:
			continue
		case 1:
			out[string(k)] = v[0]
		default:
			out[string(k)] = v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a string, a list of strings or null for each kind.
// Values pass through Add, so placeholders are dropped.
func (e *Entities) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return goerr.Wrap(err, "failed to decode entities")
	}

	result := make(Entities, len(raw))
	for key, msg := range raw {
		kind := types.EntityKind(key)
		values, err := decodeEntityValues(msg)
		if err != nil {
			return goerr.Wrap(err, "invalid entity value", goerr.V("kind", key))
		}
		result.Add(kind, values...)
	}
	*e = result
	return nil
}

func decodeEntityValues(msg json.RawMessage) ([]string, error) {
	var decoded any
	if err := json.Unmarshal(msg, &decoded); err != nil {
		return nil, err
	}

	switch v := decoded.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, goerr.New("entity list must contain strings only", goerr.V("item", item))
			}
			values = append(values, s)
		}
		return values, nil
	default:
		return nil, goerr.New("entity value must be a string or a list of strings", goerr.V("value", v))
	}
}
