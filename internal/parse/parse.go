// Package parse converts loosely typed request values, as sent by query strings and form posts,
// into typed values.
package parse

import (
	"math"
	"strconv"
	"strings"

	"github.com/skyportal/skyportal/internal/errdef"
)

// StringToBool parses value as a boolean. The empty string yields fallback.
func StringToBool(value string, fallback bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return fallback, nil
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n":
		return false, nil
	}
	return false, errdef.NewBadRequest("invalid boolean value %q", value)
}

// StringList splits a comma separated value dropping blank items.
func StringList(value string) []string {
	var list []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			list = append(list, item)
		}
	}
	return list
}

// IDList accepts a comma separated string, a list of strings, a list of numbers as decoded from
// JSON or a list of ids and returns the ids. Every id has to be a positive integer.
func IDList(value any) ([]uint, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return stringsToIDs(StringList(v))
	case []string:
		return stringsToIDs(v)
	case []uint:
		for _, id := range v {
			if id == 0 {
				return nil, errdef.NewBadRequest("invalid id %d", id)
			}
		}
		return v, nil
	case []int:
		ids := make([]uint, len(v))
		for i, id := range v {
			if id <= 0 {
				return nil, errdef.NewBadRequest("invalid id %d", id)
			}
			ids[i] = uint(id)
		}
		return ids, nil
	case []any:
		ids := make([]uint, len(v))
		for i, item := range v {
			id, err := anyToID(item)
			if err != nil {
				return nil, err
			}
			ids[i] = id
		}
		return ids, nil
	}
	return nil, errdef.NewBadRequest("invalid id list format: %v", value)
}

func stringsToIDs(items []string) ([]uint, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		id, err := strconv.ParseUint(strings.TrimSpace(item), 10, 32)
		if err != nil || id == 0 {
			return nil, errdef.NewBadRequest("invalid id %q", item)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func anyToID(item any) (uint, error) {
	switch v := item.(type) {
	case float64:
		if v <= 0 || v != math.Trunc(v) || v > math.MaxUint32 {
			return 0, errdef.NewBadRequest("invalid id %v", v)
		}
		return uint(v), nil
	case string:
		ids, err := stringsToIDs([]string{v})
		if err != nil {
			return 0, err
		}
		return ids[0], nil
	}
	return 0, errdef.NewBadRequest("invalid id %v", item)
}

const (
	DefaultPerPage = 100
	MaxPerPage     = 500
)

// Pagination parses page and per page query values. Page starts at 1, per page is clamped to
// [1, maxPerPage].
func Pagination(page, perPage string, maxPerPage int) (int, int, error) {
	p := 1
	if strings.TrimSpace(page) != "" {
		var err error
		p, err = strconv.Atoi(strings.TrimSpace(page))
		if err != nil {
			return 0, 0, errdef.NewBadRequest("invalid page number %q", page)
		}
		if p < 1 {
			return 0, 0, errdef.NewBadRequest("page number must be greater than 0")
		}
	}

	n := DefaultPerPage
	if strings.TrimSpace(perPage) != "" {
		var err error
		n, err = strconv.Atoi(strings.TrimSpace(perPage))
		if err != nil {
			return 0, 0, errdef.NewBadRequest("invalid number per page %q", perPage)
		}
	}
	n = max(1, min(n, maxPerPage))

	return p, n, nil
}

// Offset returns the number of rows to skip for page.
func Offset(page, perPage int) int {
	return (page - 1) * perPage
}
