package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_schema.sql", names[0])

	for _, name := range names {
		sql, err := files.ReadFile(name)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(sql), "IF NOT EXISTS"), name)
	}
}

func TestVersion(t *testing.T) {
	v, err := version("002_seed_views.sql")
	require.NoError(t, err)
	assert.Equal(t, "002", v)

	_, err = version("schema.sql")
	assert.Error(t, err)
}

func TestChecksumStable(t *testing.T) {
	a := checksum([]byte("CREATE TABLE t ();"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, checksum([]byte("CREATE TABLE t ();")))
	assert.NotEqual(t, a, checksum([]byte("CREATE TABLE u ();")))
}
