package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidDialects(t *testing.T) {
	for _, raw := range []string{"egyptian", "emirates", "ksa", "kuwaiti"} {
		d, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, d.String())
		assert.True(t, d.Valid())
	}
}

func TestParse_RejectsUnknownValues(t *testing.T) {
	for _, raw := range []string{"", "lebanese", "EGYPTIAN", "egyptian ", "msa"} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrInvalid, "value %q", raw)
	}
}

func TestAll_ClosedSet(t *testing.T) {
	all := All()
	require.Len(t, all, 4)
	for _, d := range all {
		assert.True(t, d.Valid())
	}
}

func TestDisplayName(t *testing.T) {
	assert.Contains(t, Egyptian.DisplayName(), "Egyptian")
	assert.Contains(t, Kuwaiti.DisplayName(), "كويتي")
}
