package countries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	table, err := Load()
	require.NoError(t, err)

	name, ok := table.Name("FR")
	require.True(t, ok)
	assert.Equal(t, "France", name)
	assert.Equal(t, "EU", table.ContinentOf("FR"))

	c, ok := table.Lookup("CU")
	require.True(t, ok)
	assert.Equal(t, "Cuba", c.Name)
	assert.Equal(t, "NA", c.Continent)

	assert.Equal(t, "OC", table.ContinentOf("AU"))
	assert.Equal(t, "SA", table.ContinentOf("BR"))
}

func TestLoad_UnknownCode(t *testing.T) {
	table, err := Load()
	require.NoError(t, err)

	_, ok := table.Name("XX")
	assert.False(t, ok)
	assert.Equal(t, "", table.ContinentOf("XX"))
}
