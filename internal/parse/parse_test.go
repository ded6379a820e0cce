package parse

import (
	"testing"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringToBool(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"", true, true},
		{"", false, false},
		{"True", false, true},
		{"t", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"FALSE", true, false},
		{"0", true, false},
		{" no ", true, false},
	}

	for _, tt := range tests {
		got, err := StringToBool(tt.value, tt.fallback)
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}

	_, err := StringToBool("maybe", false)
	require.Error(t, err)
	assert.True(t, errdef.IsBadRequest(err))
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, StringList(" a, b,,c ,"))
	assert.Nil(t, StringList(""))
}

func TestIDList(t *testing.T) {
	t.Run("CommaSeparatedString", func(t *testing.T) {
		ids, err := IDList("1, 2,3")
		require.NoError(t, err)
		assert.Equal(t, []uint{1, 2, 3}, ids)
	})

	t.Run("JSONNumbers", func(t *testing.T) {
		ids, err := IDList([]any{float64(4), "5"})
		require.NoError(t, err)
		assert.Equal(t, []uint{4, 5}, ids)
	})

	t.Run("Ints", func(t *testing.T) {
		ids, err := IDList([]int{6})
		require.NoError(t, err)
		assert.Equal(t, []uint{6}, ids)
	})

	t.Run("Nil", func(t *testing.T) {
		ids, err := IDList(nil)
		require.NoError(t, err)
		assert.Nil(t, ids)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, value := range []any{"1,a", []any{1.5}, []any{float64(-1)}, []int{0}, []uint{0}, map[string]any{}, "0"} {
			_, err := IDList(value)
			require.Error(t, err, value)
			assert.True(t, errdef.IsBadRequest(err), value)
		}
	})
}

func TestPagination(t *testing.T) {
	page, perPage, err := Pagination("", "", MaxPerPage)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPerPage, perPage)

	page, perPage, err = Pagination("3", "10000", MaxPerPage)
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPerPage, perPage)

	_, perPage, err = Pagination("1", "-5", MaxPerPage)
	require.NoError(t, err)
	assert.Equal(t, 1, perPage)

	_, _, err = Pagination("0", "", MaxPerPage)
	assert.True(t, errdef.IsBadRequest(err))

	_, _, err = Pagination("one", "", MaxPerPage)
	assert.True(t, errdef.IsBadRequest(err))

	_, _, err = Pagination("1", "ten", MaxPerPage)
	assert.True(t, errdef.IsBadRequest(err))

	assert.Equal(t, 20, Offset(3, 10))
}
