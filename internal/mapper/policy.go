package mapper

import (
	"fmt"
	"strings"

	"github.com/agentic-research/caomdb/internal/caom"
	"github.com/agentic-research/caomdb/internal/flatten"
)

// compositeFields are top-level fields flattened under their own name.
var compositeFields = map[string]struct{}{
	"target":         {},
	"targetPosition": {},
	"proposal":       {},
	"telescope":      {},
	"environment":    {},
	"instrument":     {},
	"provenance":     {},
	"position":       {},
	"time":           {},
	"energy":         {},
	"metrics":        {},
	"polarization":   {},
	"custom":         {},
	"quality":        {},
}

// normalizeName drops the reader's attribute marker.
func normalizeName(name string) string {
	return strings.TrimPrefix(name, "_")
}

func renameField(name string) string {
	if name == "target_position" {
		return "targetPosition"
	}
	return name
}

// applyPolicy writes one top-level field into acc according to its name.
func applyPolicy(acc *flatten.Fields, name string, v any) error {
	_, isComposite := compositeFields[name]
	lower := strings.ToLower(name)

	switch {
	case isComposite && present(v):
		return flatten.Flatten(acc, name, v)
	case name == "intent" && present(v):
		e, ok := v.(caom.Enum)
		if !ok {
			return &flatten.MalformedNodeError{Path: name, Reason: fmt.Sprintf("expected enumeration, got %T", v)}
		}
		acc.Set(name, e.Code)
	case name == "planes" || name == "artifacts" || name == "parts":
		// mapped as child rows
	case name == "members":
		// membership is not modelled
	case strings.HasSuffix(name, "read_groups"):
		// access groups are not modelled
	case strings.Contains(lower, "checksum") || strings.Contains(lower, "uri"):
		s, err := flatten.URIString(name, v)
		if err != nil {
			return err
		}
		acc.Set(name, s)
	default:
		acc.Set(name, v)
	}
	return nil
}

func present(v any) bool {
	if n, ok := v.(*caom.Node); ok {
		return n != nil
	}
	return v != nil
}
