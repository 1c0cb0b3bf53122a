package flatten

import (
	"errors"
	"strings"
	"testing"

	"github.com/agentic-research/caomdb/internal/caom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten_NilComposite(t *testing.T) {
	acc := NewFields()
	require.NoError(t, Flatten(acc, "target", nil))

	assert.Equal(t, []string{"target"}, acc.Keys())
	v, ok := acc.Get("target")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestFlatten_NilNestedComposite(t *testing.T) {
	tp := caom.New(caom.KindTargetPosition).With("coordsys", "ICRS")

	acc := NewFields()
	require.NoError(t, Flatten(acc, "targetPosition", tp))

	v, ok := acc.Get("targetPositioncoordinates")
	require.True(t, ok)
	assert.Nil(t, v)
	for _, k := range acc.Keys() {
		assert.False(t, strings.HasPrefix(k, "targetPositioncoordinates") && k != "targetPositioncoordinates", k)
	}
	got, _ := acc.Get("targetPositioncoordsys")
	assert.Equal(t, "ICRS", got)
}

func TestFlatten_ConcatenatesWithoutSeparator(t *testing.T) {
	target := caom.New(caom.KindTarget).
		With("name", "M31").
		With("redshift", nil)

	acc := NewFields()
	require.NoError(t, Flatten(acc, "target", target))

	m := acc.Map()
	assert.Equal(t, "M31", m["targetname"])
	v, ok := m["targetredshift"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.NotContains(t, m, "target_name")
}

func TestFlatten_Collections(t *testing.T) {
	t.Run("joined", func(t *testing.T) {
		target := caom.New(caom.KindTarget).With("keywords", caom.NewSet("galaxy", "M31", "andromeda"))
		acc := NewFields()
		require.NoError(t, Flatten(acc, "target", target))

		v, ok := acc.Get("targetkeywords")
		require.True(t, ok)
		parts := strings.Split(v.(string), Separator)
		assert.ElementsMatch(t, []string{"galaxy", "M31", "andromeda"}, parts)
	})

	t.Run("empty produces no entry", func(t *testing.T) {
		target := caom.New(caom.KindTarget).With("keywords", caom.NewSet())
		acc := NewFields()
		require.NoError(t, Flatten(acc, "target", target))

		_, ok := acc.Get("targetkeywords")
		assert.False(t, ok)
	})
}

func TestFlatten_NestedShapes(t *testing.T) {
	circle := caom.New(caom.KindCircle).
		With("center", caom.New(caom.KindPoint).With("cval1", 10.0).With("cval2", 41.0)).
		With("radius", 0.5)
	position := caom.New(caom.KindPosition).
		With("bounds", circle).
		With("dimension", caom.New(caom.KindDimension).With("naxis1", int64(512)).With("naxis2", int64(256)))

	acc := NewFields()
	require.NoError(t, Flatten(acc, "position", position))

	m := acc.Map()
	assert.Equal(t, 10.0, m["positionboundscentercval1"])
	assert.Equal(t, 41.0, m["positionboundscentercval2"])
	assert.Equal(t, 0.5, m["positionboundsradius"])
	assert.Equal(t, int64(512), m["positiondimensionnaxis1"])
	assert.Contains(t, m, "positionresolution_bounds")
	assert.Nil(t, m["positionresolution_bounds"])
}

func TestFlatten_SkipsPointsAndSamples(t *testing.T) {
	polygon := caom.New(caom.KindPolygon).
		With("points", []*caom.Node{caom.New(caom.KindPoint).With("cval1", 1.0)})
	interval := caom.New(caom.KindInterval).With("lower", 1.0).With("upper", 2.0)
	energy := caom.New(caom.KindEnergy).With("bounds", interval)
	position := caom.New(caom.KindPosition).With("bounds", polygon)

	acc := NewFields()
	require.NoError(t, Flatten(acc, "position", position))
	require.NoError(t, Flatten(acc, "energy", energy))

	for _, k := range acc.Keys() {
		assert.NotContains(t, k, "points")
		assert.NotContains(t, k, "samples")
	}
	lower, _ := acc.Get("energyboundslower")
	assert.Equal(t, 1.0, lower)
}

func TestFlatten_EnumAndURI(t *testing.T) {
	target := caom.New(caom.KindTarget).
		With("type", caom.Enum{Name: "OBJECT", Code: "object"}).
		With("target_id", caom.URI("ivo://cds/M31"))

	acc := NewFields()
	require.NoError(t, Flatten(acc, "target", target))

	m := acc.Map()
	assert.Equal(t, "object", m["targettype"])
	assert.Equal(t, "ivo://cds/M31", m["targettarget_id"])
}

func TestFlatten_Idempotent(t *testing.T) {
	target := caom.New(caom.KindTarget).
		With("name", "M31").
		With("keywords", caom.NewSet("a", "b")).
		With("moving", false)

	a, b := NewFields(), NewFields()
	require.NoError(t, Flatten(a, "target", target))
	require.NoError(t, Flatten(b, "target", target))

	assert.Equal(t, a.Map(), b.Map())
	assert.Equal(t, a.Keys(), b.Keys())
}

func TestFlatten_Malformed(t *testing.T) {
	tests := []struct {
		name string
		v    any
		path string
	}{
		{"not a composite", "M31", "target"},
		{"composite where scalar declared", caom.New(caom.KindTarget).With("name", caom.New(caom.KindPoint)), "targetname"},
		{"string where collection declared", caom.New(caom.KindTarget).With("keywords", "a,b"), "targetkeywords"},
		{"string where enum declared", caom.New(caom.KindTarget).With("type", "object"), "targettype"},
		{"number where URI declared", caom.New(caom.KindTarget).With("target_id", 7), "targettarget_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Flatten(NewFields(), "target", tt.v)
			require.Error(t, err)
			var me *MalformedNodeError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.path, me.Path)
		})
	}
}

func TestFields_OverwriteKeepsPosition(t *testing.T) {
	f := NewFields()
	f.Set("a", 1)
	f.Set("b", 2)
	f.Set("a", 3)
	assert.Equal(t, []string{"a", "b"}, f.Keys())
	v, _ := f.Get("a")
	assert.Equal(t, 3, v)
}
