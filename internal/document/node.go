// Package document models a decoded save document as a tagged union of
// mapping, sequence, scalar, and absent nodes, and provides total extraction
// of typed values from it.
//
// Documents come from an external decoder whose output shape drifts between
// game versions. Lookups never fail: any path that does not resolve, or that
// crosses a node of the wrong kind, yields an Absent node.
package document

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/mesh-intelligence/almanac/pkg/types"
)

// Kind tags the variant held by a Node.
type Kind int

const (
	Absent Kind = iota
	Mapping
	Sequence
	Scalar
)

func (k Kind) String() string {
	switch k {
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	case Scalar:
		return "scalar"
	default:
		return "absent"
	}
}

// Node is one value of a parsed document. The zero Node is Absent.
type Node struct {
	res gjson.Result
}

// Parse validates data as JSON and returns its root node. The root must be a
// mapping.
func Parse(data []byte) (Node, error) {
	if !gjson.ValidBytes(data) {
		return Node{}, fmt.Errorf("%w: malformed JSON", types.ErrInvalidDocument)
	}
	root := Node{res: gjson.ParseBytes(data)}
	if root.Kind() != Mapping {
		return Node{}, fmt.Errorf("%w: root is a %s, want a mapping", types.ErrInvalidDocument, root.Kind())
	}
	return root, nil
}

// MustParse is like Parse but panics on error. Intended for fixtures.
func MustParse(data string) Node {
	n, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return n
}

// Kind reports which variant n holds. JSON null is Absent.
func (n Node) Kind() Kind {
	switch {
	case !n.res.Exists() || n.res.Type == gjson.Null:
		return Absent
	case n.res.IsObject():
		return Mapping
	case n.res.IsArray():
		return Sequence
	default:
		return Scalar
	}
}

// Get returns the value stored under key. When the decoder preserved
// duplicate keys, the last occurrence wins. Get on anything other than a
// mapping returns an Absent node.
func (n Node) Get(key string) Node {
	if n.Kind() != Mapping {
		return Node{}
	}
	var found gjson.Result
	n.res.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
		}
		return true
	})
	return Node{res: found}
}

// Lookup follows path from n, one key per step.
func (n Node) Lookup(path Path) Node {
	cur := n
	for _, key := range path {
		cur = cur.Get(key)
		if cur.Kind() == Absent {
			return Node{}
		}
	}
	return cur
}

// Each calls fn for every key of a mapping in insertion order. A key that
// appears more than once is visited once, at its first position, with its
// last value. Iteration stops when fn returns false. Each is a no-op on
// anything other than a mapping.
func (n Node) Each(fn func(key string, value Node) bool) {
	if n.Kind() != Mapping {
		return
	}
	var keys []string
	values := make(map[string]gjson.Result)
	n.res.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = v
		return true
	})
	for _, key := range keys {
		if !fn(key, Node{res: values[key]}) {
			return
		}
	}
}

// Elements returns the items of a sequence, or nil for any other kind.
func (n Node) Elements() []Node {
	if n.Kind() != Sequence {
		return nil
	}
	arr := n.res.Array()
	out := make([]Node, len(arr))
	for i, r := range arr {
		out[i] = Node{res: r}
	}
	return out
}

// Raw returns the node's JSON text exactly as it appeared in the document.
func (n Node) Raw() string {
	return n.res.Raw
}

// Compact returns the node's JSON text with insignificant whitespace removed.
// Absent nodes compact to "null".
func (n Node) Compact() string {
	if n.Kind() == Absent {
		return "null"
	}
	return string(pretty.Ugly([]byte(n.res.Raw)))
}

// Path is a sequence of nested mapping keys.
type Path []string

// ParsePath splits a dotted path such as "budget.weekly_income".
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "."))
}

func (p Path) String() string {
	return strings.Join(p, ".")
}
