package document

import (
	"math"
	"strings"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// ValueKind names the type a field is extracted as.
type ValueKind int

const (
	Numeric ValueKind = iota
	Text
)

// Extract resolves path from doc and converts the leaf to kind. It is total:
// a missing leaf or one of incompatible shape yields def. For Numeric the
// result is a float64, for Text a string; def should have the matching type.
func Extract(doc Node, path Path, kind ValueKind, def any) any {
	leaf := doc.Lookup(path)
	switch kind {
	case Numeric:
		d, _ := def.(float64)
		return Number(leaf, d)
	case Text:
		d, _ := def.(string)
		return String(leaf, d)
	default:
		return def
	}
}

// ExtractNumber is Extract for Numeric fields.
func ExtractNumber(doc Node, path Path, def float64) float64 {
	return Number(doc.Lookup(path), def)
}

// ExtractString is Extract for Text fields.
func ExtractString(doc Node, path Path, def string) string {
	return String(doc.Lookup(path), def)
}

// Number converts n to a float64. A non-empty sequence stands for its first
// element. Numbers, booleans, and numeric strings convert; NaN and the
// infinities are rejected because SQLite stores them as NULL. Anything else
// yields def.
func Number(n Node, def float64) float64 {
	leaf, ok := unwrap(n)
	if !ok {
		return def
	}
	var f float64
	switch leaf.Type {
	case gjson.Number:
		f = leaf.Num
	case gjson.True:
		f = 1
	case gjson.False:
		f = 0
	case gjson.String:
		v, err := cast.ToFloat64E(strings.TrimSpace(leaf.Str))
		if err != nil {
			return def
		}
		f = v
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// String converts a scalar n (or the first element of a sequence) to text.
// Mappings and absent nodes yield def.
func String(n Node, def string) string {
	leaf, ok := unwrap(n)
	if !ok {
		return def
	}
	switch leaf.Type {
	case gjson.String:
		return leaf.Str
	case gjson.Number:
		return leaf.Raw
	case gjson.True, gjson.False:
		return leaf.String()
	default:
		return def
	}
}

// unwrap returns the scalar behind n: n itself, or the first element of a
// sequence when that element is a scalar.
func unwrap(n Node) (gjson.Result, bool) {
	switch n.Kind() {
	case Scalar:
		return n.res, true
	case Sequence:
		elems := n.Elements()
		if len(elems) == 0 || elems[0].Kind() != Scalar {
			return gjson.Result{}, false
		}
		return elems[0].res, true
	default:
		return gjson.Result{}, false
	}
}
