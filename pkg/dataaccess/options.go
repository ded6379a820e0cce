package dataaccess

import (
	"sort"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
)

type photometryOption struct {
	set func(options *model.PhotometryOptions, value bool)
}

// photometryOptionKeys are the recognised keys of photometry options. Both the snake case and the
// JSON field names are accepted.
var photometryOptionKeys = map[string]photometryOption{
	"first_and_last_detections": {
		set: func(o *model.PhotometryOptions, v bool) { o.FirstAndLastDetections = v },
	},
	"firstAndLastDetections": {
		set: func(o *model.PhotometryOptions, v bool) { o.FirstAndLastDetections = v },
	},
	"auto_sharing_allow_archival": {
		set: func(o *model.PhotometryOptions, v bool) { o.AutoSharingAllowArchival = v },
	},
	"autoSharingAllowArchival": {
		set: func(o *model.PhotometryOptions, v bool) { o.AutoSharingAllowArchival = v },
	},
}

// ValidatePhotometryOptions merges options over existing, which itself is applied over the
// defaults. Unknown keys and non boolean values are rejected.
func ValidatePhotometryOptions(options map[string]any, existing *model.PhotometryOptions) (model.PhotometryOptions, error) {
	validated := model.DefaultPhotometryOptions
	if existing != nil {
		validated = *existing
	}

	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	// deterministic error messages
	sort.Strings(keys)

	for _, key := range keys {
		option, ok := photometryOptionKeys[key]
		if !ok {
			return model.PhotometryOptions{}, errdef.NewBadRequest("invalid photometry option %q", key)
		}

		value, ok := options[key].(bool)
		if !ok {
			return model.PhotometryOptions{}, errdef.NewBadRequest("photometry option %q must be a boolean", key)
		}
		option.set(&validated, value)
	}

	return validated, nil
}
