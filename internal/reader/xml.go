package reader

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/agentic-research/caomdb/internal/caom"
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// XMLReader reads CAOM-2 XML. Namespaces are ignored except for xsi:type.
type XMLReader struct{}

// Read implements Reader.
func (XMLReader) Read(r io.Reader) (*caom.Node, error) {
	root, err := parseXML(r)
	if err != nil {
		return nil, err
	}
	return decodeObservation(root)
}

func parseXML(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	var (
		root  *element
		stack []*element
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := newElement(t.Name.Local)
			for _, a := range t.Attr {
				switch {
				case a.Name.Space == xsiNamespace && a.Name.Local == "type":
					el.typ = a.Value
				case a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns"):
				default:
					el.attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("parse xml: more than one root element")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			top := stack[len(stack)-1]
			top.text = strings.TrimSpace(top.text)
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}
	return root, nil
}
