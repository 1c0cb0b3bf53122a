package reader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentic-research/caomdb/internal/caom"
	"github.com/google/uuid"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// decodeObservation checks the root element and decodes the whole graph.
func decodeObservation(root *element) (*caom.Node, error) {
	if root == nil {
		return nil, &DecodeError{Path: "/", Err: fmt.Errorf("empty document")}
	}
	path := "/" + root.name
	if root.name != caom.KindObservation.String() {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("root element is not an Observation")}
	}

	variant := caom.VariantObservation
	if root.typ != "" {
		v, err := caom.ParseVariant(root.typ)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		variant = v
	}

	obs := caom.NewObservation(variant)
	if err := fill(obs, root, path); err != nil {
		return nil, err
	}

	collection, observationID := obs.Text("collection"), obs.Text("observation_id")
	if collection == "" || observationID == "" {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("collection and observationID are required")}
	}
	if err := obs.Set("uri", caom.URI("caom:"+collection+"/"+observationID)); err != nil {
		return nil, err
	}
	return obs, nil
}

// fill decodes the children and attributes of el into n.
func fill(n *caom.Node, el *element, path string) error {
	decls := caom.FieldsOf(n.Kind())

	byElement := make(map[string]caom.FieldDecl, len(decls))
	for _, d := range decls {
		if d.Element != "" && !d.IsAttr() {
			byElement[d.Element] = d
		}
	}
	seen := make(map[string]bool, len(el.children))
	for _, c := range el.children {
		if _, ok := byElement[c.name]; !ok {
			return &DecodeError{Path: path + "/" + c.name, Err: ErrUnknownElement}
		}
		if seen[c.name] {
			return &DecodeError{Path: path + "/" + c.name, Err: ErrDuplicateElement}
		}
		seen[c.name] = true
	}

	for _, d := range decls {
		if d.Element == "" {
			continue
		}
		if d.IsAttr() {
			raw, ok := el.attrs[d.Element]
			if !ok {
				continue
			}
			v, err := decodeText(d, raw)
			if err != nil {
				return &DecodeError{Path: path + "/@" + d.Element, Err: err}
			}
			if err := n.Set(d.Name, v); err != nil {
				return err
			}
			continue
		}
		c := el.first(d.Element)
		if c == nil {
			continue
		}
		v, err := decodeField(d, c, path+"/"+d.Element)
		if err != nil {
			return err
		}
		if err := n.Set(d.Name, v); err != nil {
			return err
		}
	}

	if _, ok := caom.Lookup(n.Kind(), "_id"); ok {
		return ensureID(n, path)
	}
	return nil
}

// ensureID normalizes a document id or assigns a fresh one.
func ensureID(n *caom.Node, path string) error {
	raw := n.Text("_id")
	if raw == "" {
		return n.Set("_id", uuid.New().String())
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return &DecodeError{Path: path + "/@id", Err: err}
	}
	return n.Set("_id", id.String())
}

func decodeField(d caom.FieldDecl, c *element, path string) (any, error) {
	switch d.Kind {
	case caom.FieldScalar, caom.FieldEnum, caom.FieldURI:
		if len(c.children) > 0 {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("expected text content")}
		}
		v, err := decodeText(d, c.text)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		return v, nil

	case caom.FieldCollection:
		items := make([]string, 0, len(c.children))
		for _, it := range c.children {
			if !it.isItem(d.Item) {
				return nil, &DecodeError{Path: path + "/" + it.name, Err: ErrUnknownElement}
			}
			items = append(items, it.text)
		}
		if d.Set {
			return caom.NewSet(items...), nil
		}
		return caom.NewList(items...), nil

	case caom.FieldComposite:
		kind, err := compositeKind(d, c)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		child := caom.New(kind)
		if err := fill(child, c, path); err != nil {
			return nil, err
		}
		return child, nil

	case caom.FieldChildren:
		out := caom.NewChildren()
		for i, it := range c.children {
			itemPath := fmt.Sprintf("%s/%s[%d]", path, d.Item, i)
			if !it.isItem(d.Item) {
				return nil, &DecodeError{Path: itemPath, Err: ErrUnknownElement}
			}
			child := caom.New(d.Nodes[0])
			if err := fill(child, it, itemPath); err != nil {
				return nil, err
			}
			key := child.Text(d.Key)
			if key == "" {
				return nil, &DecodeError{Path: itemPath, Err: ErrMissingKey}
			}
			out.Add(key, child)
		}
		return out, nil

	case caom.FieldSamples:
		if d.Item == "" || len(d.Nodes) == 0 {
			return nil, nil
		}
		var out []*caom.Node
		for i, it := range c.children {
			itemPath := fmt.Sprintf("%s/%s[%d]", path, d.Item, i)
			if !it.isItem(d.Item) {
				return nil, &DecodeError{Path: itemPath, Err: ErrUnknownElement}
			}
			child := caom.New(d.Nodes[0])
			if err := fill(child, it, itemPath); err != nil {
				return nil, err
			}
			out = append(out, child)
		}
		return out, nil
	}
	return nil, &DecodeError{Path: path, Err: fmt.Errorf("unsupported field kind %d", d.Kind)}
}

// compositeKind resolves a composite's kind, using the document type when
// the field accepts several shapes.
func compositeKind(d caom.FieldDecl, c *element) (caom.Kind, error) {
	if c.typ == "" {
		if len(d.Nodes) > 1 {
			return 0, fmt.Errorf("type attribute required, one of %v", d.Nodes)
		}
		return d.Nodes[0], nil
	}
	k, ok := caom.ParseKind(c.typ)
	if !ok {
		return 0, fmt.Errorf("unknown type %q", c.typ)
	}
	for _, allowed := range d.Nodes {
		if k == allowed {
			return k, nil
		}
	}
	return 0, fmt.Errorf("type %s not allowed here", k)
}

func decodeText(d caom.FieldDecl, raw string) (any, error) {
	text := strings.TrimSpace(raw)
	switch d.Kind {
	case caom.FieldURI:
		return caom.URI(text), nil
	case caom.FieldEnum:
		code, err := parseScalar(d.Scalar, text)
		if err != nil {
			return nil, err
		}
		name, ok := d.Names[text]
		if !ok {
			name = strings.ToUpper(text)
		}
		return caom.Enum{Name: name, Code: code}, nil
	}
	return parseScalar(d.Scalar, text)
}

func parseScalar(t caom.ScalarType, text string) (any, error) {
	switch t {
	case caom.TypeInt:
		return strconv.ParseInt(text, 10, 64)
	case caom.TypeFloat:
		return strconv.ParseFloat(text, 64)
	case caom.TypeBool:
		return strconv.ParseBool(text)
	case caom.TypeTime:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, text); err == nil {
				return ts.UTC(), nil
			}
		}
		return nil, fmt.Errorf("invalid timestamp %q", text)
	}
	return text, nil
}

func (e *element) first(name string) *element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// isItem accepts the declared item name, or the anonymous items of a JSON
// array.
func (e *element) isItem(item string) bool {
	return e.name == "" || e.name == item
}
