// Package caom holds the in-memory CAOM metadata graph consumed by the mapper.
//
// A Node is one level of the graph (an observation, a plane, or a composite
// value such as a target or an energy axis). The fields a node may carry are
// declared per Kind in a static table; see FieldsOf.
package caom

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var ErrUnknownField = errors.New("field not declared")

// Kind identifies the shape of a Node.
type Kind int

const (
	KindObservation Kind = iota
	KindPlane
	KindArtifact
	KindPart
	KindAlgorithm
	KindProposal
	KindTarget
	KindTargetPosition
	KindRequirements
	KindTelescope
	KindInstrument
	KindEnvironment
	KindProvenance
	KindMetrics
	KindQuality
	KindPosition
	KindEnergy
	KindTime
	KindPolarization
	KindCustomAxis
	KindPoint
	KindCircle
	KindPolygon
	KindInterval
	KindDimension
	KindEnergyTransition

	kindCount = int(iota)
)

var kindNames = [kindCount]string{
	"Observation", "Plane", "Artifact", "Part", "Algorithm", "Proposal",
	"Target", "TargetPosition", "Requirements", "Telescope", "Instrument",
	"Environment", "Provenance", "Metrics", "DataQuality", "Position",
	"Energy", "Time", "Polarization", "CustomAxis", "Point", "Circle",
	"Polygon", "Interval", "Dimension2D", "EnergyTransition",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind resolves a CAOM type name ("Circle", "caom2:Polygon") to a Kind.
func ParseKind(name string) (Kind, bool) {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Flattenable reports whether values of this kind are expanded into prefixed
// columns when they appear inside another composite.
func (k Kind) Flattenable() bool {
	switch k {
	case KindPoint, KindCircle, KindPolygon, KindInterval,
		KindPosition, KindTime, KindEnergy, KindMetrics, KindPolarization, KindCustomAxis,
		KindDimension, KindEnergyTransition:
		return true
	}
	return false
}

// Variant tags the concrete observation type.
type Variant int

const (
	VariantObservation Variant = iota
	VariantSimple
	VariantDerived
	VariantComposite
)

var variantNames = map[Variant]string{
	VariantObservation: "Observation",
	VariantSimple:      "SimpleObservation",
	VariantDerived:     "DerivedObservation",
	VariantComposite:   "CompositeObservation",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// IsDerived is true for observations built from other observations.
func (v Variant) IsDerived() bool {
	return v == VariantDerived || v == VariantComposite
}

// ParseVariant accepts the bare or namespace-qualified type name.
func ParseVariant(name string) (Variant, error) {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	for v, s := range variantNames {
		if s == name {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown observation type %q", name)
}

// Enum is a member of a CAOM enumeration. Code is the value stored in
// documents and columns; it is a string or an int64.
type Enum struct {
	Name string
	Code any
}

func (e Enum) String() string { return fmt.Sprint(e.Code) }

// URI is a URI-bearing reference such as a checksum or a plane URI.
type URI string

func (u URI) String() string { return string(u) }

// Collection is an ordered list or a set of strings.
type Collection struct {
	items []string
	set   bool
}

// NewList keeps items in the given order.
func NewList(items ...string) Collection {
	return Collection{items: append([]string(nil), items...)}
}

// NewSet drops duplicates and sorts, so two sets with the same members render
// identically.
func NewSet(items ...string) Collection {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	sort.Strings(out)
	return Collection{items: out, set: true}
}

func (c Collection) Items() []string { return append([]string(nil), c.items...) }
func (c Collection) Len() int        { return len(c.items) }
func (c Collection) IsSet() bool     { return c.set }

// Children is an insertion-ordered mapping from identifier to child node.
type Children struct {
	keys  []string
	nodes map[string]*Node
}

func NewChildren() *Children {
	return &Children{nodes: make(map[string]*Node)}
}

// Add inserts or replaces a child. A replaced child keeps its position.
func (c *Children) Add(id string, n *Node) {
	if _, ok := c.nodes[id]; !ok {
		c.keys = append(c.keys, id)
	}
	c.nodes[id] = n
}

func (c *Children) Get(id string) *Node { return c.nodes[id] }
func (c *Children) Keys() []string      { return append([]string(nil), c.keys...) }

func (c *Children) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Nodes returns the children in insertion order.
func (c *Children) Nodes() []*Node {
	if c == nil {
		return nil
	}
	out := make([]*Node, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.nodes[k])
	}
	return out
}

// Node is one level of the metadata graph.
type Node struct {
	kind    Kind
	variant Variant
	values  map[string]any
}

// Field is a declared field paired with its current value (nil when unset).
type Field struct {
	Decl  FieldDecl
	Value any
}

func New(kind Kind) *Node {
	return &Node{kind: kind, values: make(map[string]any)}
}

// NewObservation creates an observation node of the given variant.
func NewObservation(v Variant) *Node {
	n := New(KindObservation)
	n.variant = v
	return n
}

func (n *Node) Kind() Kind       { return n.kind }
func (n *Node) Variant() Variant { return n.variant }

// Set stores v under a declared field name. The value is not checked against
// the declared kind; mismatches surface when the node is flattened.
func (n *Node) Set(name string, v any) error {
	if _, ok := Lookup(n.kind, name); !ok {
		return fmt.Errorf("%s.%s: %w", n.kind, name, ErrUnknownField)
	}
	n.values[name] = v
	return nil
}

// With is Set for literals; it panics on an undeclared field.
func (n *Node) With(name string, v any) *Node {
	if err := n.Set(name, v); err != nil {
		panic(err)
	}
	return n
}

// Value returns the value of a field, or nil if the field is unset.
func (n *Node) Value(name string) any {
	return n.values[name]
}

// Text returns a string-valued field, or "" when unset or of another type.
func (n *Node) Text(name string) string {
	switch v := n.values[name].(type) {
	case string:
		return v
	case URI:
		return string(v)
	}
	return ""
}

// Fields lists every declared field in table order, set or not.
func (n *Node) Fields() []Field {
	decls := FieldsOf(n.kind)
	out := make([]Field, len(decls))
	for i, d := range decls {
		out[i] = Field{Decl: d, Value: n.values[d.Name]}
	}
	return out
}

// IsScalar reports whether v is one of the plain column types.
func IsScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, int, int32, int64, float32, float64, time.Time:
		return true
	}
	return false
}
