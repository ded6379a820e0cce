package tns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMapping_Bundled(t *testing.T) {
	mapping, err := LoadMapping("")
	require.NoError(t, err)

	instrumentID, filterID, err := mapping.Lookup("ztf", "ztfr")
	require.NoError(t, err)

	assert.Equal(t, 196, instrumentID)
	assert.Equal(t, 111, filterID)
}

func TestLoadMapping_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	err := os.WriteFile(path, []byte("instruments:\n  LSST:\n    id: 1\n    filters:\n      lsstu: 2\n"), 0o600)
	require.NoError(t, err)

	mapping, err := LoadMapping(path)
	require.NoError(t, err)

	instrumentID, filterID, err := mapping.Lookup("LSST", "lsstu")
	require.NoError(t, err)
	assert.Equal(t, 1, instrumentID)
	assert.Equal(t, 2, filterID)
}

func TestMapping_Lookup_Unsupported(t *testing.T) {
	mapping, err := LoadMapping("")
	require.NoError(t, err)

	_, _, err = mapping.Lookup("LASCO", "c2")
	require.EqualError(t, err, "instrument LASCO is not supported by TNS")

	_, _, err = mapping.Lookup("ZTF", "sdssu")
	require.EqualError(t, err, "filter sdssu of instrument ZTF is not supported by TNS")
}

func TestParseMapping_MissingID(t *testing.T) {
	_, err := ParseMapping([]byte("instruments:\n  LSST:\n    filters:\n      lsstu: 2\n"))

	require.EqualError(t, err, `tns mapping of instrument "LSST" has no id`)
}
