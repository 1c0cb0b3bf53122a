package api

func col(key, name string, t ColumnType) Column {
	return Column{Key: key, Name: name, Type: t}
}

// entityColumns are shared by every CAOM entity table.
func entityColumns() []Column {
	return []Column{
		col("last_modified", "lastModified", Timestamp),
		col("max_last_modified", "maxLastModified", Timestamp),
		col("meta_checksum", "metaChecksum", Text),
		col("acc_meta_checksum", "accMetaChecksum", Text),
		col("meta_producer", "metaProducer", Text),
	}
}

// ObservationTable is the caom2 Observation table.
var ObservationTable = NewTable("Observation",
	append([]Column{
		{Key: "id", Name: "obsID", Type: Text, PrimaryKey: true, NotNull: true},
		{Key: "collection", Type: Text, NotNull: true},
		{Key: "observation_id", Name: "observationID", Type: Text, NotNull: true},
		col("uri", "observationURI", Text),
		{Key: "algorithm", Name: "algorithm_name", Type: Text, Member: "name"},
		col("type", "type", Text),
		col("intent", "intent", Text),
		col("sequence_number", "sequenceNumber", Integer),
		col("meta_release", "metaRelease", Timestamp),

		col("proposalid", "proposal_id", Text),
		col("proposalpi", "proposal_pi", Text),
		col("proposalproject", "proposal_project", Text),
		col("proposaltitle", "proposal_title", Text),
		col("proposalkeywords", "proposal_keywords", Text),
		col("proposalreference", "proposal_reference", Text),

		col("targetname", "target_name", Text),
		col("targettarget_id", "target_targetID", Text),
		col("targettype", "target_type", Text),
		col("targetstandard", "target_standard", Boolean),
		col("targetredshift", "target_redshift", Real),
		col("targetkeywords", "target_keywords", Text),
		col("targetmoving", "target_moving", Boolean),

		col("targetPositioncoordsys", "targetPosition_coordsys", Text),
		col("targetPositionequinox", "targetPosition_equinox", Real),
		col("targetPositioncoordinatescval1", "targetPosition_coordinates_cval1", Real),
		col("targetPositioncoordinatescval2", "targetPosition_coordinates_cval2", Real),

		{Key: "requirements", Name: "requirements_flag", Type: Text, Member: "flag"},

		col("telescopename", "telescope_name", Text),
		col("telescopegeo_location_x", "telescope_geoLocationX", Real),
		col("telescopegeo_location_y", "telescope_geoLocationY", Real),
		col("telescopegeo_location_z", "telescope_geoLocationZ", Real),
		col("telescopekeywords", "telescope_keywords", Text),

		col("instrumentname", "instrument_name", Text),
		col("instrumentkeywords", "instrument_keywords", Text),

		col("environmentseeing", "environment_seeing", Real),
		col("environmenthumidity", "environment_humidity", Real),
		col("environmentelevation", "environment_elevation", Real),
		col("environmenttau", "environment_tau", Real),
		col("environmentwavelength_tau", "environment_wavelengthTau", Real),
		col("environmentambient_temp", "environment_ambientTemp", Real),
		col("environmentphotometric", "environment_photometric", Boolean),

		{Key: "typeCode", Type: Text, NotNull: true},
	}, entityColumns()...),
	[]string{
		"proposal", "target", "targetPosition", "targetPositioncoordinates",
		"telescope", "instrument", "environment",
	},
	[]string{"collection", "observationID"},
)

// PlaneTable is the caom2 Plane table.
var PlaneTable = NewTable("Plane",
	append([]Column{
		{Key: "id", Name: "planeID", Type: Text, PrimaryKey: true, NotNull: true},
		{Key: "obsID", Type: Text, NotNull: true, References: "Observation.obsID"},
		{Key: "planeURI", Type: Text, NotNull: true},
		{Key: "product_id", Name: "productID", Type: Text, NotNull: true},
		col("creator_id", "creatorID", Text),
		col("meta_release", "metaRelease", Timestamp),
		col("data_release", "dataRelease", Timestamp),
		col("data_product_type", "dataProductType", Text),
		col("calibration_level", "calibrationLevel", Integer),

		col("provenancename", "provenance_name", Text),
		col("provenanceversion", "provenance_version", Text),
		col("provenanceproject", "provenance_project", Text),
		col("provenanceproducer", "provenance_producer", Text),
		col("provenancerun_id", "provenance_runID", Text),
		col("provenancereference", "provenance_reference", Text),
		col("provenancelast_executed", "provenance_lastExecuted", Timestamp),
		col("provenancekeywords", "provenance_keywords", Text),
		col("provenanceinputs", "provenance_inputs", Text),

		col("metricssource_number_density", "metrics_sourceNumberDensity", Real),
		col("metricsbackground", "metrics_background", Real),
		col("metricsbackground_std_dev", "metrics_backgroundStddev", Real),
		col("metricsflux_density_limit", "metrics_fluxDensityLimit", Real),
		col("metricsmag_limit", "metrics_magLimit", Real),
		col("metricssample_snr", "metrics_sampleSNR", Real),

		col("qualityflag", "quality_flag", Text),

		col("positionboundscentercval1", "position_bounds_center_cval1", Real),
		col("positionboundscentercval2", "position_bounds_center_cval2", Real),
		col("positionboundsradius", "position_bounds_radius", Real),
		col("positiondimensionnaxis1", "position_dimension_naxis1", Integer),
		col("positiondimensionnaxis2", "position_dimension_naxis2", Integer),
		col("positionresolution", "position_resolution", Real),
		col("positionresolution_boundslower", "position_resolutionBounds_lower", Real),
		col("positionresolution_boundsupper", "position_resolutionBounds_upper", Real),
		col("positionsample_size", "position_sampleSize", Real),
		col("positiontime_dependent", "position_timeDependent", Boolean),

		col("energyboundslower", "energy_bounds_lower", Real),
		col("energyboundsupper", "energy_bounds_upper", Real),
		col("energydimension", "energy_dimension", Integer),
		col("energyresolving_power", "energy_resolvingPower", Real),
		col("energyresolving_power_boundslower", "energy_resolvingPowerBounds_lower", Real),
		col("energyresolving_power_boundsupper", "energy_resolvingPowerBounds_upper", Real),
		col("energysample_size", "energy_sampleSize", Real),
		col("energybandpass_name", "energy_bandpassName", Text),
		col("energyenergy_bands", "energy_energyBands", Text),
		col("energytransitionspecies", "energy_transition_species", Text),
		col("energytransitiontransition", "energy_transition_transition", Text),
		col("energyrestwav", "energy_restwav", Real),

		col("timeboundslower", "time_bounds_lower", Real),
		col("timeboundsupper", "time_bounds_upper", Real),
		col("timedimension", "time_dimension", Integer),
		col("timeresolution", "time_resolution", Real),
		col("timeresolution_boundslower", "time_resolutionBounds_lower", Real),
		col("timeresolution_boundsupper", "time_resolutionBounds_upper", Real),
		col("timesample_size", "time_sampleSize", Real),
		col("timeexposure", "time_exposure", Real),

		col("polarizationstates", "polarization_states", Text),
		col("polarizationdimension", "polarization_dimension", Integer),

		col("customctype", "custom_ctype", Text),
		col("customboundslower", "custom_bounds_lower", Real),
		col("customboundsupper", "custom_bounds_upper", Real),
		col("customdimension", "custom_dimension", Integer),
	}, entityColumns()...),
	[]string{
		"provenance", "metrics", "quality",
		"position", "positionbounds", "positionboundscenter", "positiondimension", "positionresolution_bounds",
		"energy", "energybounds", "energyresolving_power_bounds", "energytransition",
		"time", "timebounds", "timeresolution_bounds",
		"polarization", "custom", "custombounds",
	},
	[]string{"obsID", "productID"},
)

// Tables lists every table in creation order (parents first).
var Tables = []*Table{ObservationTable, PlaneTable}
