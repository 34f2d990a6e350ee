package clustering

import (
	"path/filepath"
	"testing"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriterLayout(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "clusters.h5")

	writer, err := NewWriter(filename, "job", false)
	require.NoError(t, err)
	assert.NotNil(t, writer.EventTable)
	assert.NotNil(t, writer.ChargeTable)
	assert.Nil(t, writer.DebugGroup)
	assert.Nil(t, writer.MatchedTable)
	require.NoError(t, writer.Close())
	assert.True(t, hdf5.IsHDF5(filename))

	writer, err = NewWriter(filename, "job", true)
	require.NoError(t, err)
	assert.NotNil(t, writer.CandidatesTable)
	assert.NotNil(t, writer.MatchedTable)
	require.NoError(t, writer.Close())
}

func TestNewWriterMissingDirectory(t *testing.T) {
	writer, err := NewWriter(filepath.Join(t.TempDir(), "missing", "clusters.h5"), "job", false)
	assert.Nil(t, writer)
	var openErr *ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
}

func TestPartialWriterReleasesFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "clusters.h5")

	file, err := openFile(filename)
	require.NoError(t, err)
	group, err := createGroup(file, "Run")
	require.NoError(t, err)

	// A writer abandoned half way only holds some of its objects.
	partial := &Writer{Filename: filename, File: file, RunGroup: group}
	require.NoError(t, partial.Close())

	writer, err := NewWriter(filename, "job", false)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
}
