package dataaccess

import (
	"context"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/internal/parse"
	"github.com/skyportal/skyportal/pkg/model"
	"golang.org/x/exp/slices"
)

// ProcessInstrumentIDs parses ids and loads the instruments. Every instrument has to exist and,
// unless accessible is nil, be part of accessible.
func (s *Service) ProcessInstrumentIDs(ctx context.Context, ids any, accessible []uint) ([]model.Instrument, error) {
	parsed, err := parse.IDList(ids)
	if err != nil {
		return nil, err
	}
	parsed = unique(parsed)
	if len(parsed) == 0 {
		return []model.Instrument{}, nil
	}

	instruments, err := s.instrumentService.FindByIds(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if len(instruments) != len(parsed) {
		return nil, errdef.NewBadRequest("one or more instruments not found")
	}

	if accessible != nil {
		for _, instrument := range instruments {
			if !slices.Contains(accessible, instrument.ID) {
				return nil, errdef.NewBadRequest("instrument %s not supported for publishing", instrument.Name)
			}
		}
	}

	return instruments, nil
}

// ProcessStreamIDs parses ids and loads the streams. Streams the user has no access to are treated
// as missing. Unless accessible is nil every stream has to be part of it.
func (s *Service) ProcessStreamIDs(ctx context.Context, user *model.User, ids any, accessible []uint) ([]model.Stream, error) {
	parsed, err := parse.IDList(ids)
	if err != nil {
		return nil, err
	}
	parsed = unique(parsed)
	if len(parsed) == 0 {
		return []model.Stream{}, nil
	}

	found, err := s.streamService.FindByIds(ctx, parsed)
	if err != nil {
		return nil, err
	}

	streams := make([]model.Stream, 0, len(found))
	for _, stream := range found {
		if user.IsAdministrator() || user.HasStreamAccess(stream.ID) {
			streams = append(streams, stream)
		}
	}
	if len(streams) != len(parsed) {
		return nil, errdef.NewBadRequest("one or more streams not found")
	}

	if accessible != nil {
		for _, stream := range streams {
			if !slices.Contains(accessible, stream.ID) {
				return nil, errdef.NewBadRequest("stream %s not supported for publishing", stream.Name)
			}
		}
	}

	return streams, nil
}

// FilterAccessibleInstrumentIDs narrows ids to the instruments of the sharing service. No ids
// means all instruments of the service. Automatic submissions silently drop instruments the
// service doesn't publish while manual submissions are rejected.
func FilterAccessibleInstrumentIDs(ids []uint, service *model.SharingService, autoSubmission bool) ([]uint, error) {
	accessible := service.InstrumentIDs()
	if len(accessible) == 0 {
		return nil, errdef.NewBadRequest("sharing service %s has no instruments", service.Name)
	}

	filtered, err := filterAccessible(ids, accessible, autoSubmission, "instrument")
	if err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		return nil, errdef.NewBadRequest("no instrument ids available for publishing")
	}

	return filtered, nil
}

// FilterAccessibleStreamIDs narrows ids to the streams of the sharing service. A nil result means
// the photometry is not restricted to any stream, which is the case for services without streams.
func FilterAccessibleStreamIDs(ids []uint, service *model.SharingService, autoSubmission bool) ([]uint, error) {
	accessible := service.StreamIDs()
	if len(accessible) == 0 {
		if len(ids) > 0 && !autoSubmission {
			return nil, errdef.NewBadRequest("sharing service %s has no streams, stream ids can't be set", service.Name)
		}
		return nil, nil
	}

	filtered, err := filterAccessible(ids, accessible, autoSubmission, "stream")
	if err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		return nil, errdef.NewBadRequest("no stream ids available for publishing")
	}

	return filtered, nil
}

func filterAccessible(ids, accessible []uint, autoSubmission bool, kind string) ([]uint, error) {
	if len(ids) == 0 {
		return unique(accessible), nil
	}

	filtered := make([]uint, 0, len(ids))
	for _, id := range ids {
		if slices.Contains(accessible, id) {
			filtered = append(filtered, id)
		} else if !autoSubmission {
			return nil, errdef.NewBadRequest("%s %d not supported for publishing", kind, id)
		}
	}

	return unique(filtered), nil
}

// unique returns the sorted distinct ids.
func unique(ids []uint) []uint {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
