package caom

// FieldKind is the declared shape of a field's value.
type FieldKind int

const (
	FieldScalar FieldKind = iota
	FieldEnum
	FieldURI
	FieldComposite
	FieldCollection
	FieldChildren
	FieldSamples
)

// ScalarType is the document type of a scalar, an enum code or a collection
// item.
type ScalarType int

const (
	TypeString ScalarType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeTime
)

// FieldDecl describes one field of a node kind.
//
// Name is what the mapper sees. Names starting with '_' are document
// attributes rather than elements. Element is the XML local name or JSON key;
// an empty Element marks a field computed by the reader.
type FieldDecl struct {
	Name    string
	Element string
	Kind    FieldKind
	Scalar  ScalarType
	Nodes   []Kind // composites and children: accepted node kinds
	Item    string // collections and children: repeated item element
	Set     bool   // collections: unordered
	Key     string // children: child field used as the identifier
	Names   map[string]string
}

// IsAttr reports whether the field is read from a document attribute.
func (d FieldDecl) IsAttr() bool {
	return len(d.Name) > 0 && d.Name[0] == '_'
}

func scalar(name, elem string, t ScalarType) FieldDecl {
	return FieldDecl{Name: name, Element: elem, Kind: FieldScalar, Scalar: t}
}

func enum(name, elem string, t ScalarType, names map[string]string) FieldDecl {
	return FieldDecl{Name: name, Element: elem, Kind: FieldEnum, Scalar: t, Names: names}
}

func uri(name, elem string) FieldDecl {
	return FieldDecl{Name: name, Element: elem, Kind: FieldURI}
}

func composite(name, elem string, kinds ...Kind) FieldDecl {
	return FieldDecl{Name: name, Element: elem, Kind: FieldComposite, Nodes: kinds}
}

func list(name, elem, item string) FieldDecl {
	return FieldDecl{Name: name, Element: elem, Kind: FieldCollection, Item: item}
}

func set(name, elem, item string) FieldDecl {
	return FieldDecl{Name: name, Element: elem, Kind: FieldCollection, Item: item, Set: true}
}

func children(name, elem, item, key string, kind Kind) FieldDecl {
	return FieldDecl{Name: name, Element: elem, Kind: FieldChildren, Item: item, Key: key, Nodes: []Kind{kind}}
}

func samples(name, elem, item string, kinds ...Kind) FieldDecl {
	return FieldDecl{Name: name, Element: elem, Kind: FieldSamples, Item: item, Nodes: kinds}
}

// entity lists the bookkeeping attributes every CAOM entity carries.
func entity(fields ...FieldDecl) []FieldDecl {
	out := []FieldDecl{
		scalar("_id", "id", TypeString),
		scalar("_last_modified", "lastModified", TypeTime),
		scalar("_max_last_modified", "maxLastModified", TypeTime),
		uri("_meta_checksum", "metaChecksum"),
		uri("_acc_meta_checksum", "accMetaChecksum"),
		uri("_meta_producer", "metaProducer"),
	}
	return append(out, fields...)
}

// CalibrationLevels names the integer calibration level codes.
var CalibrationLevels = map[string]string{
	"-1": "PLANNED",
	"0":  "RAW_INSTRUMENTAL",
	"1":  "RAW_STANDARD",
	"2":  "CALIBRATED",
	"3":  "PRODUCT",
	"4":  "ANALYSIS_PRODUCT",
}

var tables = map[Kind][]FieldDecl{
	KindObservation: entity(
		scalar("collection", "collection", TypeString),
		scalar("observation_id", "observationID", TypeString),
		uri("uri", ""),
		composite("algorithm", "algorithm", KindAlgorithm),
		scalar("type", "type", TypeString),
		enum("intent", "intent", TypeString, nil),
		scalar("sequence_number", "sequenceNumber", TypeInt),
		scalar("meta_release", "metaRelease", TypeTime),
		set("meta_read_groups", "metaReadGroups", "groupURI"),
		composite("proposal", "proposal", KindProposal),
		composite("target", "target", KindTarget),
		composite("target_position", "targetPosition", KindTargetPosition),
		composite("requirements", "requirements", KindRequirements),
		composite("telescope", "telescope", KindTelescope),
		composite("instrument", "instrument", KindInstrument),
		composite("environment", "environment", KindEnvironment),
		set("members", "members", "observationURI"),
		children("planes", "planes", "plane", "product_id", KindPlane),
	),
	KindPlane: entity(
		scalar("product_id", "productID", TypeString),
		uri("creator_id", "creatorID"),
		scalar("meta_release", "metaRelease", TypeTime),
		set("meta_read_groups", "metaReadGroups", "groupURI"),
		scalar("data_release", "dataRelease", TypeTime),
		set("data_read_groups", "dataReadGroups", "groupURI"),
		enum("data_product_type", "dataProductType", TypeString, nil),
		enum("calibration_level", "calibrationLevel", TypeInt, CalibrationLevels),
		composite("provenance", "provenance", KindProvenance),
		composite("metrics", "metrics", KindMetrics),
		composite("quality", "quality", KindQuality),
		composite("position", "position", KindPosition),
		composite("energy", "energy", KindEnergy),
		composite("time", "time", KindTime),
		composite("polarization", "polarization", KindPolarization),
		composite("custom", "custom", KindCustomAxis),
		children("artifacts", "artifacts", "artifact", "uri", KindArtifact),
	),
	KindArtifact: entity(
		uri("uri", "uri"),
		enum("product_type", "productType", TypeString, nil),
		enum("release_type", "releaseType", TypeString, nil),
		scalar("content_type", "contentType", TypeString),
		scalar("content_length", "contentLength", TypeInt),
		uri("content_checksum", "contentChecksum"),
		scalar("content_release", "contentRelease", TypeTime),
		set("content_read_groups", "contentReadGroups", "groupURI"),
		children("parts", "parts", "part", "name", KindPart),
	),
	KindPart: entity(
		scalar("name", "name", TypeString),
		enum("product_type", "productType", TypeString, nil),
		samples("chunks", "chunks", ""),
	),
	KindAlgorithm: {
		scalar("name", "name", TypeString),
	},
	KindProposal: {
		scalar("id", "id", TypeString),
		scalar("pi", "pi", TypeString),
		scalar("project", "project", TypeString),
		scalar("title", "title", TypeString),
		set("keywords", "keywords", "keyword"),
		uri("reference", "reference"),
	},
	KindTarget: {
		scalar("name", "name", TypeString),
		uri("target_id", "targetID"),
		enum("type", "type", TypeString, nil),
		scalar("standard", "standard", TypeBool),
		scalar("redshift", "redshift", TypeFloat),
		set("keywords", "keywords", "keyword"),
		scalar("moving", "moving", TypeBool),
	},
	KindTargetPosition: {
		scalar("coordsys", "coordsys", TypeString),
		scalar("equinox", "equinox", TypeFloat),
		composite("coordinates", "coordinates", KindPoint),
	},
	KindRequirements: {
		enum("flag", "flag", TypeString, nil),
	},
	KindTelescope: {
		scalar("name", "name", TypeString),
		scalar("geo_location_x", "geoLocationX", TypeFloat),
		scalar("geo_location_y", "geoLocationY", TypeFloat),
		scalar("geo_location_z", "geoLocationZ", TypeFloat),
		set("keywords", "keywords", "keyword"),
	},
	KindInstrument: {
		scalar("name", "name", TypeString),
		set("keywords", "keywords", "keyword"),
	},
	KindEnvironment: {
		scalar("seeing", "seeing", TypeFloat),
		scalar("humidity", "humidity", TypeFloat),
		scalar("elevation", "elevation", TypeFloat),
		scalar("tau", "tau", TypeFloat),
		scalar("wavelength_tau", "wavelengthTau", TypeFloat),
		scalar("ambient_temp", "ambientTemp", TypeFloat),
		scalar("photometric", "photometric", TypeBool),
	},
	KindProvenance: {
		scalar("name", "name", TypeString),
		scalar("version", "version", TypeString),
		scalar("project", "project", TypeString),
		scalar("producer", "producer", TypeString),
		scalar("run_id", "runID", TypeString),
		uri("reference", "reference"),
		scalar("last_executed", "lastExecuted", TypeTime),
		set("keywords", "keywords", "keyword"),
		set("inputs", "inputs", "planeURI"),
	},
	KindMetrics: {
		scalar("source_number_density", "sourceNumberDensity", TypeFloat),
		scalar("background", "background", TypeFloat),
		scalar("background_std_dev", "backgroundStddev", TypeFloat),
		scalar("flux_density_limit", "fluxDensityLimit", TypeFloat),
		scalar("mag_limit", "magLimit", TypeFloat),
		scalar("sample_snr", "sampleSNR", TypeFloat),
	},
	KindQuality: {
		enum("flag", "flag", TypeString, nil),
	},
	KindPosition: {
		composite("bounds", "bounds", KindCircle, KindPolygon),
		composite("dimension", "dimension", KindDimension),
		scalar("resolution", "resolution", TypeFloat),
		composite("resolution_bounds", "resolutionBounds", KindInterval),
		scalar("sample_size", "sampleSize", TypeFloat),
		scalar("time_dependent", "timeDependent", TypeBool),
	},
	KindEnergy: {
		composite("bounds", "bounds", KindInterval),
		scalar("dimension", "dimension", TypeInt),
		scalar("resolving_power", "resolvingPower", TypeFloat),
		composite("resolving_power_bounds", "resolvingPowerBounds", KindInterval),
		scalar("sample_size", "sampleSize", TypeFloat),
		scalar("bandpass_name", "bandpassName", TypeString),
		set("energy_bands", "energyBands", "emBand"),
		composite("transition", "transition", KindEnergyTransition),
		scalar("restwav", "restwav", TypeFloat),
	},
	KindTime: {
		composite("bounds", "bounds", KindInterval),
		scalar("dimension", "dimension", TypeInt),
		scalar("resolution", "resolution", TypeFloat),
		composite("resolution_bounds", "resolutionBounds", KindInterval),
		scalar("sample_size", "sampleSize", TypeFloat),
		scalar("exposure", "exposure", TypeFloat),
	},
	KindPolarization: {
		list("states", "states", "state"),
		scalar("dimension", "dimension", TypeInt),
	},
	KindCustomAxis: {
		scalar("ctype", "ctype", TypeString),
		composite("bounds", "bounds", KindInterval),
		scalar("dimension", "dimension", TypeInt),
	},
	KindPoint: {
		scalar("cval1", "cval1", TypeFloat),
		scalar("cval2", "cval2", TypeFloat),
	},
	KindCircle: {
		composite("center", "center", KindPoint),
		scalar("radius", "radius", TypeFloat),
	},
	KindPolygon: {
		samples("points", "points", "point", KindPoint),
		samples("samples", "samples", ""),
	},
	KindInterval: {
		scalar("lower", "lower", TypeFloat),
		scalar("upper", "upper", TypeFloat),
		samples("samples", "samples", ""),
	},
	KindDimension: {
		scalar("naxis1", "naxis1", TypeInt),
		scalar("naxis2", "naxis2", TypeInt),
	},
	KindEnergyTransition: {
		scalar("species", "species", TypeString),
		scalar("transition", "transition", TypeString),
	},
}

var index = func() map[Kind]map[string]int {
	idx := make(map[Kind]map[string]int, len(tables))
	for k, decls := range tables {
		m := make(map[string]int, len(decls))
		for i, d := range decls {
			m[d.Name] = i
		}
		idx[k] = m
	}
	return idx
}()

// FieldsOf returns the declared fields of a kind in iteration order. The
// returned slice must not be modified.
func FieldsOf(k Kind) []FieldDecl {
	return tables[k]
}

// Lookup finds a declared field by name.
func Lookup(k Kind, name string) (FieldDecl, bool) {
	i, ok := index[k][name]
	if !ok {
		return FieldDecl{}, false
	}
	return tables[k][i], true
}
