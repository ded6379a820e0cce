package tns

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed mapping.yaml
var defaultMapping []byte

// Mapping resolves instruments and filters to their TNS ids.
type Mapping struct {
	Instruments map[string]InstrumentMapping `yaml:"instruments"`
}

type InstrumentMapping struct {
	ID      int            `yaml:"id"`
	Filters map[string]int `yaml:"filters"`
}

// LoadMapping reads the mapping from path. An empty path loads the bundled mapping.
func LoadMapping(path string) (*Mapping, error) {
	data := defaultMapping
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read tns mapping: %v", err)
		}
	}

	return ParseMapping(data)
}

func ParseMapping(data []byte) (*Mapping, error) {
	var mapping Mapping
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse tns mapping: %v", err)
	}

	instruments := make(map[string]InstrumentMapping, len(mapping.Instruments))
	for name, instrument := range mapping.Instruments {
		if instrument.ID <= 0 {
			return nil, fmt.Errorf("tns mapping of instrument %q has no id", name)
		}
		instruments[strings.ToLower(name)] = instrument
	}
	mapping.Instruments = instruments

	return &mapping, nil
}

// Lookup returns the TNS ids of the instrument and the filter.
func (m *Mapping) Lookup(instrument, filter string) (int, int, error) {
	i, ok := m.Instruments[strings.ToLower(instrument)]
	if !ok {
		return 0, 0, fmt.Errorf("instrument %s is not supported by TNS", instrument)
	}

	f, ok := i.Filters[filter]
	if !ok {
		return 0, 0, fmt.Errorf("filter %s of instrument %s is not supported by TNS", filter, instrument)
	}

	return i.ID, f, nil
}
