package caom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_Set(t *testing.T) {
	n := New(KindTarget)
	require.NoError(t, n.Set("name", "M31"))
	assert.Equal(t, "M31", n.Value("name"))
	assert.Equal(t, "M31", n.Text("name"))
	assert.Nil(t, n.Value("redshift"))

	err := n.Set("colour", "red")
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestNode_WithPanicsOnUnknownField(t *testing.T) {
	assert.Panics(t, func() { New(KindPoint).With("cval3", 1.0) })
}

func TestNode_FieldsInDeclaredOrder(t *testing.T) {
	n := New(KindPoint).With("cval2", 2.0)
	fields := n.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "cval1", fields[0].Decl.Name)
	assert.Nil(t, fields[0].Value)
	assert.Equal(t, "cval2", fields[1].Decl.Name)
	assert.Equal(t, 2.0, fields[1].Value)
}

func TestKind_ParseKind(t *testing.T) {
	k, ok := ParseKind("caom2:Polygon")
	require.True(t, ok)
	assert.Equal(t, KindPolygon, k)

	k, ok = ParseKind("Dimension2D")
	require.True(t, ok)
	assert.Equal(t, KindDimension, k)

	_, ok = ParseKind("Spaceship")
	assert.False(t, ok)
}

func TestKind_Flattenable(t *testing.T) {
	for _, k := range []Kind{KindPoint, KindCircle, KindPolygon, KindInterval, KindPosition, KindTime, KindEnergy, KindMetrics, KindPolarization, KindCustomAxis} {
		assert.True(t, k.Flattenable(), k.String())
	}
	for _, k := range []Kind{KindObservation, KindPlane, KindTarget, KindAlgorithm, KindRequirements} {
		assert.False(t, k.Flattenable(), k.String())
	}
}

func TestVariant(t *testing.T) {
	v, err := ParseVariant("caom2:CompositeObservation")
	require.NoError(t, err)
	assert.Equal(t, VariantComposite, v)
	assert.True(t, v.IsDerived())
	assert.True(t, VariantDerived.IsDerived())
	assert.False(t, VariantSimple.IsDerived())
	assert.False(t, VariantObservation.IsDerived())

	_, err = ParseVariant("Telescope")
	assert.Error(t, err)
}

func TestCollection(t *testing.T) {
	s := NewSet("b", "a", "b")
	assert.True(t, s.IsSet())
	assert.Equal(t, []string{"a", "b"}, s.Items())

	l := NewList("b", "a", "b")
	assert.False(t, l.IsSet())
	assert.Equal(t, []string{"b", "a", "b"}, l.Items())
}

func TestChildren_Order(t *testing.T) {
	c := NewChildren()
	c.Add("z", New(KindPlane))
	c.Add("a", New(KindPlane))
	replacement := New(KindPlane)
	c.Add("z", replacement)

	assert.Equal(t, []string{"z", "a"}, c.Keys())
	assert.Equal(t, 2, c.Len())
	assert.Same(t, replacement, c.Get("z"))

	var empty *Children
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Nodes())
}

func TestLookup(t *testing.T) {
	d, ok := Lookup(KindObservation, "target_position")
	require.True(t, ok)
	assert.Equal(t, FieldComposite, d.Kind)
	assert.Equal(t, "targetPosition", d.Element)

	d, ok = Lookup(KindPlane, "_id")
	require.True(t, ok)
	assert.True(t, d.IsAttr())

	_, ok = Lookup(KindPoint, "cval3")
	assert.False(t, ok)
}
