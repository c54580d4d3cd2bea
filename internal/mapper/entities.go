// Package mapper turns a parsed save document into the normalized records of
// one snapshot. Field declarations are data: each attribute lists the paths it
// may live under, and extraction never fails.
package mapper

import (
	"github.com/mesh-intelligence/almanac/internal/document"
)

// Field declares one numeric attribute of an entity. Paths are tried in order
// and the first one present in the entity document is extracted.
type Field struct {
	Name    string
	Paths   []document.Path
	Default float64
}

// Entity is one registry entry with its extracted attribute values.
type Entity struct {
	ID     string
	Doc    document.Node
	Values map[string]float64
}

// MapEntities resolves registryPath in doc and extracts fields from every
// entry, in registry insertion order. A missing registry yields no entities.
// Entries that are not mappings (the decoder writes tombstones such as
// "none" for removed entities) are skipped.
func MapEntities(doc document.Node, registryPath document.Path, fields []Field) []Entity {
	registry := doc.Lookup(registryPath)
	var out []Entity
	registry.Each(func(id string, sub document.Node) bool {
		if sub.Kind() != document.Mapping {
			return true
		}
		out = append(out, Entity{
			ID:     id,
			Doc:    sub,
			Values: extractFields(sub, fields),
		})
		return true
	})
	return out
}

func extractFields(sub document.Node, fields []Field) map[string]float64 {
	values := make(map[string]float64, len(fields))
	for _, f := range fields {
		values[f.Name] = extractField(sub, f)
	}
	return values
}

func extractField(sub document.Node, f Field) float64 {
	for _, p := range f.Paths {
		if node := sub.Lookup(p); node.Kind() != document.Absent {
			return document.Number(node, f.Default)
		}
	}
	return f.Default
}

// firstString returns the first non-empty text found among paths.
func firstString(doc document.Node, paths ...document.Path) string {
	for _, p := range paths {
		if s := document.ExtractString(doc, p, ""); s != "" {
			return s
		}
	}
	return ""
}

// paths builds a candidate list from dotted strings.
func paths(dotted ...string) []document.Path {
	out := make([]document.Path, len(dotted))
	for i, d := range dotted {
		out[i] = document.ParsePath(d)
	}
	return out
}
