package stations

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stationID = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}$`)

func TestDefault(t *testing.T) {
	list := Default()
	require.Len(t, list, 5)

	names := map[string]bool{}
	ids := map[string]bool{}
	for _, s := range list {
		assert.Regexp(t, stationID, s.ID)
		assert.NotEmpty(t, s.Name)
		assert.False(t, names[s.Name], "duplicate name %q", s.Name)
		assert.False(t, ids[s.ID], "duplicate id %q", s.ID)
		names[s.Name] = true
		ids[s.ID] = true
	}
}

func TestDefault_ReturnsFreshSlice(t *testing.T) {
	a := Default()
	a[0].Name = "changed"
	assert.Equal(t, "Chicago, IL", Default()[0].Name)
}
