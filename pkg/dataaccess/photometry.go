package dataaccess

import (
	"context"
	"strings"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/internal/parse"
	"github.com/skyportal/skyportal/pkg/model"
	"golang.org/x/exp/slices"
)

// PhotometryByInstrumentsStreamsAndOptions returns the publishable photometry of the obj sorted by
// mjd. Only accessible, non forced photometry of the given instruments is considered. A nil
// streamIDs doesn't restrict streams, otherwise every point has to be tagged with one of them.
//
// The result has to contain a detection. With FirstAndLastDetections it has to contain the first
// and the last detection of the obj on the given instruments.
func (s *Service) PhotometryByInstrumentsStreamsAndOptions(
	ctx context.Context,
	user *model.User,
	objID string,
	instrumentIDs []uint,
	streamIDs []uint,
	options model.PhotometryOptions,
) ([]model.Photometry, error) {
	all, err := s.photometryService.FindAccessible(ctx, user, objID)
	if err != nil {
		return nil, err
	}

	var candidates []model.Photometry
	for _, p := range all {
		if slices.Contains(instrumentIDs, p.InstrumentID) && !p.IsForced() {
			candidates = append(candidates, p)
		}
	}
	sortByMJD(candidates)

	var photometry []model.Photometry
	for _, p := range candidates {
		if streamIDs == nil || taggedWithAny(p, streamIDs) {
			photometry = append(photometry, p)
		}
	}
	if len(photometry) == 0 {
		return nil, errdef.NewBadRequest("no photometry of %s available with the requested instruments and streams", objID)
	}

	first, last := s.firstAndLastDetection(photometry)
	if first == nil {
		return nil, errdef.NewBadRequest("no detection of %s available with the requested instruments and streams", objID)
	}

	if options.FirstAndLastDetections {
		firstCandidate, lastCandidate := s.firstAndLastDetection(candidates)
		if firstCandidate.ID != first.ID {
			return nil, errdef.NewBadRequest("the first detection of %s is not available with the requested streams", objID)
		}
		if lastCandidate.ID != last.ID {
			return nil, errdef.NewBadRequest("the last detection of %s is not available with the requested streams", objID)
		}
	}

	return photometry, nil
}

// firstAndLastDetection expects photometry sorted by mjd.
func (s *Service) firstAndLastDetection(photometry []model.Photometry) (*model.Photometry, *model.Photometry) {
	var first, last *model.Photometry
	for i := range photometry {
		if !photometry[i].IsDetection(s.detectionThreshold) {
			continue
		}
		if first == nil {
			first = &photometry[i]
		}
		last = &photometry[i]
	}
	return first, last
}

func taggedWithAny(p model.Photometry, streamIDs []uint) bool {
	for _, stream := range p.Streams {
		if slices.Contains(streamIDs, stream.ID) {
			return true
		}
	}
	return false
}

func sortByMJD(photometry []model.Photometry) {
	slices.SortStableFunc(photometry, func(a, b model.Photometry) int {
		switch {
		case a.MJD < b.MJD:
			return -1
		case a.MJD > b.MJD:
			return 1
		}
		return 0
	})
}

// PublishRequest describes what a submitter asks to publish. Instrument and stream ids accept any
// of the list formats parse.IDList accepts.
type PublishRequest struct {
	ObjID             string
	InstrumentIDs     any
	StreamIDs         any
	PhotometryOptions map[string]any
	Archival          bool
	ArchivalComment   string
	AutoSubmission    bool
}

// Publishable is the vetted content of a submission.
type Publishable struct {
	Obj           *model.Obj
	Photometry    []model.Photometry
	Instruments   []model.Instrument
	InstrumentIDs []uint
	// StreamIDs is nil when the photometry isn't restricted to streams
	StreamIDs []uint
	Options   model.PhotometryOptions
}

// PublishableObjPhotometry validates a request to publish an obj through a sharing service and
// returns the obj with the photometry to publish.
func (s *Service) PublishableObjPhotometry(ctx context.Context, user *model.User, service *model.SharingService, request PublishRequest) (*Publishable, error) {
	obj, err := s.sourceService.FindAccessibleObj(ctx, user, request.ObjID)
	if err != nil {
		return nil, err
	}

	requestedInstrumentIDs, err := parse.IDList(request.InstrumentIDs)
	if err != nil {
		return nil, err
	}
	instrumentIDs, err := FilterAccessibleInstrumentIDs(requestedInstrumentIDs, service, request.AutoSubmission)
	if err != nil {
		return nil, err
	}
	instruments, err := s.ProcessInstrumentIDs(ctx, instrumentIDs, service.InstrumentIDs())
	if err != nil {
		return nil, err
	}

	requestedStreamIDs, err := parse.IDList(request.StreamIDs)
	if err != nil {
		return nil, err
	}
	streamIDs, err := FilterAccessibleStreamIDs(requestedStreamIDs, service, request.AutoSubmission)
	if err != nil {
		return nil, err
	}
	if streamIDs != nil {
		if _, err := s.ProcessStreamIDs(ctx, user, streamIDs, service.StreamIDs()); err != nil {
			return nil, err
		}
	}

	serviceOptions := service.PhotometryOptions.Data()
	options, err := ValidatePhotometryOptions(request.PhotometryOptions, &serviceOptions)
	if err != nil {
		return nil, err
	}

	if request.Archival {
		if request.AutoSubmission && !options.AutoSharingAllowArchival {
			return nil, errdef.NewBadRequest("archival submissions are not allowed for automatic submissions of sharing service %s", service.Name)
		}
		if strings.TrimSpace(request.ArchivalComment) == "" {
			return nil, errdef.NewBadRequest("an archival comment is required for archival submissions")
		}
	}

	photometry, err := s.PhotometryByInstrumentsStreamsAndOptions(ctx, user, obj.ID, instrumentIDs, streamIDs, options)
	if err != nil {
		return nil, err
	}

	return &Publishable{
		Obj:           obj,
		Photometry:    photometry,
		Instruments:   instruments,
		InstrumentIDs: instrumentIDs,
		StreamIDs:     streamIDs,
		Options:       options,
	}, nil
}
