package reader

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/agentic-research/caomdb/internal/caom"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// JSONReader reads the JSON rendering of a CAOM observation: element names
// as keys, attributes as "@name" keys, "@type" for the concrete type and
// arrays for repeated items.
type JSONReader struct {
	// Selector is a JSONPath locating the observation object. Defaults to "$".
	Selector string
}

// Read implements Reader.
func (r JSONReader) Read(in io.Reader) (*caom.Node, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	selector := r.Selector
	if selector == "" {
		selector = "$"
	}
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	matches := x.Get(doc)
	if len(matches) != 1 {
		return nil, fmt.Errorf("jsonpath '%s' matched %d values, want 1", selector, len(matches))
	}

	obj, ok := matches[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("jsonpath '%s' did not select an object", selector)
	}
	root, err := jsonElement(caom.KindObservation.String(), obj)
	if err != nil {
		return nil, err
	}
	return decodeObservation(root)
}

func jsonElement(name string, v any) (*element, error) {
	el := newElement(name)
	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			val := x[k]
			if val == nil {
				continue
			}
			if attr, ok := strings.CutPrefix(k, "@"); ok {
				text, err := jsonText(val)
				if err != nil {
					return nil, fmt.Errorf("%s/%s: %w", name, k, err)
				}
				if attr == "type" {
					el.typ = text
				} else {
					el.attrs[attr] = text
				}
				continue
			}
			child, err := jsonElement(k, val)
			if err != nil {
				return nil, err
			}
			el.children = append(el.children, child)
		}
	case []any:
		for _, it := range x {
			child, err := jsonElement("", it)
			if err != nil {
				return nil, err
			}
			el.children = append(el.children, child)
		}
	default:
		text, err := jsonText(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		el.text = text
	}
	return el, nil
}

func jsonText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	}
	return "", fmt.Errorf("unexpected %T", v)
}
