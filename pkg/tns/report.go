package tns

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skyportal/skyportal/pkg/model"
	"golang.org/x/exp/slices"
)

const (
	datetimeFormat = "2006-01-02 15:04:05.000"
	// TNS unit id of AB magnitudes
	magUnitsAB = "1"
	// TNS id of "Other" archives
	archiveOther = "0"
	// Exposure time reported when unknown
	defaultExposure = "60"
	observer        = "Robot"
	internalComment = "Data provided by SkyPortal"
	// Archival remarks of reports falling back to archival
	noNonDetectionComment = "No non-detection prior to the first detection"
)

// ReportParams gathers what an AT report is built from.
type ReportParams struct {
	Service *model.SharingService
	// The user submitting the report
	Submitter *model.User
	Obj       *model.Obj
	// Publishable photometry sorted by mjd
	Photometry             []model.Photometry
	CustomPublishingString string
	Archival               bool
	ArchivalComment        string
	// Report as archival when no non-detection precedes the first detection
	FallbackToArchival bool
	DetectionThreshold float64
}

// Report is the bulk report body sent to TNS.
type Report struct {
	ATReport map[string]ATReport `json:"at_report"`
}

type ATReport struct {
	RA                      Coordinate         `json:"ra"`
	Dec                     Coordinate         `json:"dec"`
	ReportingGroupID        string             `json:"reporting_group_id"`
	DiscoveryDataSourceID   string             `json:"discovery_data_source_id"`
	InternalName            string             `json:"internal_name"`
	InternalNameFormat      InternalNameFormat `json:"internal_name_format"`
	Reporter                string             `json:"reporter"`
	DiscoveryDatetime       string             `json:"discovery_datetime"`
	ATType                  string             `json:"at_type"`
	TransientRedshift       string             `json:"transient_redshift,omitempty"`
	ProprietaryPeriodGroups []string           `json:"proprietary_period_groups"`
	ProprietaryPeriod       ProprietaryPeriod  `json:"proprietary_period"`
	NonDetection            NonDetection       `json:"non_detection"`
	Photometry              PhotometryGroup    `json:"photometry"`
	Remarks                 string             `json:"remarks,omitempty"`
}

type Coordinate struct {
	Value string `json:"value"`
	Error string `json:"error"`
	Units string `json:"units"`
}

type InternalNameFormat struct {
	Prefix     string `json:"prefix"`
	YearFormat string `json:"year_format"`
	Postfix    string `json:"postfix"`
}

type ProprietaryPeriod struct {
	Value string `json:"proprietary_period_value"`
	Units string `json:"proprietary_period_units"`
}

// NonDetection holds either the last non-detection before discovery or, for archival reports, the
// archive the transient was found in.
type NonDetection struct {
	ObsDate         string `json:"obsdate,omitempty"`
	LimitingFlux    string `json:"limiting_flux,omitempty"`
	FluxUnits       string `json:"flux_units,omitempty"`
	FilterValue     string `json:"filter_value,omitempty"`
	InstrumentValue string `json:"instrument_value,omitempty"`
	ExpTime         string `json:"exptime,omitempty"`
	Observer        string `json:"observer,omitempty"`
	Comments        string `json:"comments,omitempty"`
	ArchiveID       string `json:"archiveid,omitempty"`
	ArchivalRemarks string `json:"archival_remarks,omitempty"`
}

type PhotometryGroup struct {
	Group map[string]PhotometryPoint `json:"photometry_group"`
}

type PhotometryPoint struct {
	ObsDate         string `json:"obsdate"`
	Flux            string `json:"flux"`
	FluxError       string `json:"flux_error"`
	LimitingFlux    string `json:"limiting_flux"`
	FluxUnits       string `json:"flux_units"`
	FilterValue     string `json:"filter_value"`
	InstrumentValue string `json:"instrument_value"`
	ExpTime         string `json:"exptime"`
	Observer        string `json:"observer"`
	Comments        string `json:"comments"`
}

// BuildReport builds the AT report of an object. The first detection is reported as the discovery
// and the last non-detection preceding it as the non-detection, unless the report is archival.
func BuildReport(mapping *Mapping, params ReportParams) (*Report, error) {
	detections := make([]model.Photometry, 0, len(params.Photometry))
	for _, p := range params.Photometry {
		if p.IsDetection(params.DetectionThreshold) {
			detections = append(detections, p)
		}
	}
	if len(detections) == 0 {
		return nil, fmt.Errorf("no detection of %s to report", params.Obj.ID)
	}

	group := make(map[string]PhotometryPoint, len(detections))
	for i, p := range detections {
		point, err := newPhotometryPoint(mapping, p, params.DetectionThreshold)
		if err != nil {
			return nil, err
		}
		group[fmt.Sprint(i)] = point
	}

	first := detections[0]
	last, hasNonDetection := lastNonDetection(params.Photometry, first, params.DetectionThreshold)
	if !params.Archival && !hasNonDetection && params.FallbackToArchival {
		params.Archival = true
		params.ArchivalComment = noNonDetectionComment
	}

	var nonDetection NonDetection
	if params.Archival {
		if params.ArchivalComment == "" {
			return nil, errors.New("an archival comment is required for archival reports")
		}
		nonDetection = NonDetection{
			ArchiveID:       archiveOther,
			ArchivalRemarks: params.ArchivalComment,
		}
	} else {
		if !hasNonDetection {
			return nil, fmt.Errorf("no non-detection of %s prior to its first detection, the report has to be archival", params.Obj.ID)
		}
		instrumentID, filterID, err := mapping.Lookup(instrumentName(last), last.Filter)
		if err != nil {
			return nil, err
		}
		nonDetection = NonDetection{
			ObsDate:         model.MJDToTime(last.MJD).Format(datetimeFormat),
			LimitingFlux:    formatFloat(last.LimitingMag(params.DetectionThreshold)),
			FluxUnits:       magUnitsAB,
			FilterValue:     fmt.Sprint(filterID),
			InstrumentValue: fmt.Sprint(instrumentID),
			ExpTime:         defaultExposure,
			Observer:        observer,
			Comments:        internalComment,
		}
	}

	sourceGroupID := fmt.Sprint(params.Service.SourceGroupID)
	report := ATReport{
		RA:                      Coordinate{Value: formatFloat(params.Obj.RA), Error: "0.1", Units: "arcsec"},
		Dec:                     Coordinate{Value: formatFloat(params.Obj.Dec), Error: "0.1", Units: "arcsec"},
		ReportingGroupID:        sourceGroupID,
		DiscoveryDataSourceID:   sourceGroupID,
		InternalName:            params.Obj.ID,
		InternalNameFormat:      InternalNameFormat{YearFormat: "YY"},
		Reporter:                Reporter(params.Service, params.Submitter, params.CustomPublishingString),
		DiscoveryDatetime:       model.MJDToTime(first.MJD).Format(datetimeFormat),
		ATType:                  "1",
		ProprietaryPeriodGroups: []string{sourceGroupID},
		ProprietaryPeriod:       ProprietaryPeriod{Value: "0", Units: "years"},
		NonDetection:            nonDetection,
		Photometry:              PhotometryGroup{Group: group},
	}
	if params.Obj.Redshift != nil {
		report.TransientRedshift = formatFloat(*params.Obj.Redshift)
	}

	return &Report{ATReport: map[string]ATReport{"0": report}}, nil
}

func newPhotometryPoint(mapping *Mapping, p model.Photometry, threshold float64) (PhotometryPoint, error) {
	instrumentID, filterID, err := mapping.Lookup(instrumentName(p), p.Filter)
	if err != nil {
		return PhotometryPoint{}, err
	}

	mag, _ := p.Mag()
	magErr, _ := p.MagErr()
	return PhotometryPoint{
		ObsDate:         model.MJDToTime(p.MJD).Format(datetimeFormat),
		Flux:            formatFloat(mag),
		FluxError:       formatFloat(magErr),
		LimitingFlux:    formatFloat(p.LimitingMag(threshold)),
		FluxUnits:       magUnitsAB,
		FilterValue:     fmt.Sprint(filterID),
		InstrumentValue: fmt.Sprint(instrumentID),
		ExpTime:         defaultExposure,
		Observer:        observer,
		Comments:        internalComment,
	}, nil
}

func lastNonDetection(photometry []model.Photometry, first model.Photometry, threshold float64) (model.Photometry, bool) {
	var last model.Photometry
	found := false
	for _, p := range photometry {
		if p.MJD >= first.MJD {
			break
		}
		if !p.IsDetection(threshold) && p.FluxErr > 0 {
			last = p
			found = true
		}
	}
	return last, found
}

func instrumentName(p model.Photometry) string {
	if p.Instrument == nil {
		return fmt.Sprint(p.InstrumentID)
	}
	return p.Instrument.Name
}

// Reporter returns the reporter string of a report. A custom publishing string takes precedence over
// the submitter and coauthors of the sharing service followed by its acknowledgments.
func Reporter(service *model.SharingService, submitter *model.User, custom string) string {
	if custom = strings.TrimSpace(custom); custom != "" {
		return custom
	}

	authors := []string{author(submitter)}
	coauthors := slices.Clone(service.Coauthors)
	slices.SortStableFunc(coauthors, func(a, b model.User) int {
		return strings.Compare(a.LastName, b.LastName)
	})
	for i := range coauthors {
		if coauthors[i].ID == submitter.ID {
			continue
		}
		authors = append(authors, author(&coauthors[i]))
	}

	reporter := strings.Join(authors, ", ")
	if acknowledgments := strings.TrimSpace(service.Acknowledgments); acknowledgments != "" {
		reporter += " " + acknowledgments
	}
	return reporter
}

func author(user *model.User) string {
	affiliations := make([]string, 0, len(user.Affiliations))
	for _, a := range user.Affiliations {
		if a = strings.TrimSpace(a); a != "" {
			affiliations = append(affiliations, a)
		}
	}
	if len(affiliations) == 0 {
		return user.FullName()
	}
	return fmt.Sprintf("%s (%s)", user.FullName(), strings.Join(affiliations, ", "))
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.6f", f)
}
