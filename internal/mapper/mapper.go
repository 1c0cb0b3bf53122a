// Package mapper turns an observation graph into Observation and Plane rows.
package mapper

import (
	"fmt"

	"github.com/agentic-research/caomdb/api"
	"github.com/agentic-research/caomdb/internal/caom"
	"github.com/agentic-research/caomdb/internal/flatten"
	"github.com/agentic-research/caomdb/internal/record"
)

// TypeCode is the Observation.typeCode discriminant: "D" for derived and
// composite observations, "S" otherwise.
func TypeCode(v caom.Variant) string {
	if v.IsDerived() {
		return "D"
	}
	return "S"
}

// PlaneURI is the synthesized plane identifier.
func PlaneURI(collection, observationID, productID string) string {
	return fmt.Sprintf("caom:%s/%s/%s", collection, observationID, productID)
}

// MapObservation returns the Observation row followed by one row per plane,
// in plane order.
func MapObservation(obs *caom.Node) ([]*record.Row, error) {
	if obs == nil || obs.Kind() != caom.KindObservation {
		return nil, fmt.Errorf("map observation: not an observation node")
	}

	row := record.New(api.ObservationTable)
	acc := flatten.NewFields()
	var planes []*record.Row

	collection := obs.Text("collection")
	observationID := obs.Text("observation_id")
	id := obs.Text("_id")

	for _, f := range obs.Fields() {
		if f.Decl.Kind == caom.FieldChildren && f.Decl.Name == "planes" {
			rows, err := mapPlanes(f.Value, collection, observationID, id)
			if err != nil {
				return nil, fmt.Errorf("observation %s/%s: %w", collection, observationID, err)
			}
			planes = append(planes, rows...)
		}

		name := renameField(normalizeName(f.Decl.Name))
		if err := applyPolicy(acc, name, f.Value); err != nil {
			return nil, fmt.Errorf("observation %s/%s: %w", collection, observationID, err)
		}
	}

	if err := row.SetDerived("typeCode", TypeCode(obs.Variant())); err != nil {
		return nil, err
	}
	if err := assign(row, acc); err != nil {
		return nil, fmt.Errorf("observation %s/%s: %w", collection, observationID, err)
	}

	return append([]*record.Row{row}, planes...), nil
}

func mapPlanes(v any, collection, observationID, obsID string) ([]*record.Row, error) {
	if v == nil {
		return nil, nil
	}
	planes, ok := v.(*caom.Children)
	if !ok {
		return nil, &flatten.MalformedNodeError{Path: "planes", Reason: fmt.Sprintf("expected child collection, got %T", v)}
	}
	rows := make([]*record.Row, 0, planes.Len())
	for _, key := range planes.Keys() {
		r, err := MapPlane(planes.Get(key), collection, observationID, obsID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// MapPlane maps one plane. obsID is the owning observation's internal id.
func MapPlane(plane *caom.Node, collection, observationID, obsID string) (*record.Row, error) {
	if plane == nil || plane.Kind() != caom.KindPlane {
		return nil, fmt.Errorf("map plane: not a plane node")
	}
	productID := plane.Text("product_id")

	row := record.New(api.PlaneTable)
	acc := flatten.NewFields()

	for _, f := range plane.Fields() {
		if f.Decl.Kind == caom.FieldChildren && f.Decl.Name == "artifacts" {
			if err := mapArtifacts(f.Value); err != nil {
				return nil, fmt.Errorf("plane %s: %w", productID, err)
			}
		}

		name := normalizeName(f.Decl.Name)
		if err := applyPolicy(acc, name, f.Value); err != nil {
			return nil, fmt.Errorf("plane %s: %w", productID, err)
		}
	}

	acc.Set("planeURI", PlaneURI(collection, observationID, productID))
	acc.Set("obsID", obsID)

	if err := assign(row, acc); err != nil {
		return nil, fmt.Errorf("plane %s: %w", productID, err)
	}
	return row, nil
}

func mapArtifacts(v any) error {
	artifacts, ok := v.(*caom.Children)
	if v == nil || !ok {
		return nil
	}
	for _, a := range artifacts.Nodes() {
		if err := mapArtifact(a); err != nil {
			return err
		}
	}
	return nil
}

// mapArtifact is the artifact level of the hierarchy. Artifacts have no
// table yet, so nothing is emitted.
func mapArtifact(*caom.Node) error {
	return nil
}

func assign(row *record.Row, acc *flatten.Fields) error {
	for _, k := range acc.Keys() {
		v, _ := acc.Get(k)
		if err := row.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}
