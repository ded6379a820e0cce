package tns

import (
	"testing"

	"github.com/skyportal/skyportal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport(t *testing.T) {
	mapping, err := LoadMapping("")
	require.NoError(t, err)
	ztf := &model.Instrument{ID: 1, Name: "ZTF"}
	point := func(mjd float64, flux *float64, filter string) model.Photometry {
		return model.Photometry{MJD: mjd, Flux: flux, FluxErr: 1, Filter: filter, Instrument: ztf, InstrumentID: ztf.ID}
	}
	redshift := 0.05
	obj := &model.Obj{ID: "ZTF21aaaaaaa", RA: 10.5, Dec: -20.25, Redshift: &redshift}
	service := &model.SharingService{SourceGroupID: 48, Acknowledgments: "on behalf of the ZTF collaboration"}
	submitter := &model.User{ID: 1, FirstName: "Vera", LastName: "Rubin", Affiliations: []string{"Carnegie"}}
	photometry := []model.Photometry{
		point(59000, nil, "ztfg"),
		point(59001, ptr(0.5), "ztfr"),
		point(59002, ptr(100), "ztfg"),
		point(59003, ptr(50), "ztfr"),
	}

	t.Run("Discovery", func(t *testing.T) {
		report, err := BuildReport(mapping, ReportParams{
			Service:            service,
			Submitter:          submitter,
			Obj:                obj,
			Photometry:         photometry,
			DetectionThreshold: 3,
		})
		require.NoError(t, err)

		at := report.ATReport["0"]
		assert.Equal(t, "10.500000", at.RA.Value)
		assert.Equal(t, "-20.250000", at.Dec.Value)
		assert.Equal(t, "48", at.ReportingGroupID)
		assert.Equal(t, "48", at.DiscoveryDataSourceID)
		assert.Equal(t, "ZTF21aaaaaaa", at.InternalName)
		assert.Equal(t, "0.050000", at.TransientRedshift)
		assert.Equal(t, "Vera Rubin (Carnegie) on behalf of the ZTF collaboration", at.Reporter)
		assert.Equal(t, "2020-06-02 00:00:00.000", at.DiscoveryDatetime)
		require.Len(t, at.Photometry.Group, 2)
		assert.Equal(t, "18.900000", at.Photometry.Group["0"].Flux)
		assert.Equal(t, "110", at.Photometry.Group["0"].FilterValue)
		assert.Equal(t, "196", at.Photometry.Group["0"].InstrumentValue)
		assert.Equal(t, "111", at.Photometry.Group["1"].FilterValue)
		assert.Equal(t, "2020-06-01 00:00:00.000", at.NonDetection.ObsDate)
		assert.Equal(t, "111", at.NonDetection.FilterValue)
		assert.Empty(t, at.NonDetection.ArchiveID)
	})

	t.Run("Archival", func(t *testing.T) {
		report, err := BuildReport(mapping, ReportParams{
			Service:            service,
			Submitter:          submitter,
			Obj:                obj,
			Photometry:         photometry[2:],
			Archival:           true,
			ArchivalComment:    "Found in archival data",
			DetectionThreshold: 3,
		})
		require.NoError(t, err)

		at := report.ATReport["0"]
		assert.Equal(t, "0", at.NonDetection.ArchiveID)
		assert.Equal(t, "Found in archival data", at.NonDetection.ArchivalRemarks)
		assert.Empty(t, at.NonDetection.ObsDate)
	})

	t.Run("NoNonDetection", func(t *testing.T) {
		_, err := BuildReport(mapping, ReportParams{
			Service:            service,
			Submitter:          submitter,
			Obj:                obj,
			Photometry:         photometry[2:],
			DetectionThreshold: 3,
		})

		require.EqualError(t, err, "no non-detection of ZTF21aaaaaaa prior to its first detection, the report has to be archival")
	})

	t.Run("FallbackToArchival", func(t *testing.T) {
		report, err := BuildReport(mapping, ReportParams{
			Service:            service,
			Submitter:          submitter,
			Obj:                obj,
			Photometry:         photometry[2:],
			FallbackToArchival: true,
			DetectionThreshold: 3,
		})
		require.NoError(t, err)

		at := report.ATReport["0"]
		assert.Equal(t, "0", at.NonDetection.ArchiveID)
		assert.Equal(t, "No non-detection prior to the first detection", at.NonDetection.ArchivalRemarks)
	})

	t.Run("NoDetection", func(t *testing.T) {
		_, err := BuildReport(mapping, ReportParams{
			Service:            service,
			Submitter:          submitter,
			Obj:                obj,
			Photometry:         photometry[:2],
			DetectionThreshold: 3,
		})

		require.EqualError(t, err, "no detection of ZTF21aaaaaaa to report")
	})

	t.Run("UnmappedFilter", func(t *testing.T) {
		_, err := BuildReport(mapping, ReportParams{
			Service:            service,
			Submitter:          submitter,
			Obj:                obj,
			Photometry:         []model.Photometry{point(59000, nil, "ztfg"), point(59002, ptr(100), "sdssu")},
			DetectionThreshold: 3,
		})

		require.EqualError(t, err, "filter sdssu of instrument ZTF is not supported by TNS")
	})
}

func TestReporter(t *testing.T) {
	submitter := &model.User{ID: 1, FirstName: "Vera", LastName: "Rubin", Affiliations: []string{"Carnegie"}}
	service := &model.SharingService{
		Acknowledgments: "on behalf of SkyPortal",
		Coauthors: []model.User{
			{ID: 3, FirstName: "Edwin", LastName: "Zwicky", Affiliations: []string{"Caltech", "Mount Wilson"}},
			{ID: 1, FirstName: "Vera", LastName: "Rubin", Affiliations: []string{"Carnegie"}},
			{ID: 2, FirstName: "Henrietta", LastName: "Leavitt", Affiliations: []string{"Harvard"}},
		},
	}

	t.Run("Authors", func(t *testing.T) {
		reporter := Reporter(service, submitter, "")

		assert.Equal(t, "Vera Rubin (Carnegie), Henrietta Leavitt (Harvard), Edwin Zwicky (Caltech, Mount Wilson) on behalf of SkyPortal", reporter)
	})

	t.Run("Custom", func(t *testing.T) {
		reporter := Reporter(service, submitter, " A. Custom on behalf of someone ")

		assert.Equal(t, "A. Custom on behalf of someone", reporter)
	})
}

func ptr(f float64) *float64 {
	return &f
}
