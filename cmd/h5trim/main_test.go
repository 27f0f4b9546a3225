package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/h5trim/hdf5"
	"github.com/robert-malhotra/h5trim/trim"
)

func writeInput(t *testing.T, path string) {
	t.Helper()

	f, err := hdf5.Create(path)
	require.NoError(t, err)

	data := make([][]float64, 20)
	for i := range data {
		data[i] = make([]float64, 3)
		for j := range data[i] {
			data[i][j] = float64(i*3 + j)
		}
	}
	_, err = f.Root().CreateDataset("samples", data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func runCmd(args ...string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRunRows(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "input.h5")
	outPath := filepath.Join(tmpDir, "output.h5")
	writeInput(t, inPath)

	require.NoError(t, runCmd(inPath, outPath, "--rows", "5", "--quiet"))

	out, err := hdf5.Open(outPath)
	require.NoError(t, err)
	defer out.Close()

	ds, err := out.OpenDataset("/samples")
	require.NoError(t, err)
	assert.Equal(t, []uint64{5, 3}, ds.Shape())
}

func TestRunRange(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "input.h5")
	outPath := filepath.Join(tmpDir, "output.h5")
	writeInput(t, inPath)

	require.NoError(t, runCmd(inPath, outPath, "--range", "5,15", "--quiet"))

	out, err := hdf5.Open(outPath)
	require.NoError(t, err)
	defer out.Close()

	ds, err := out.OpenDataset("/samples")
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 3}, ds.Shape())

	got, err := ds.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, float64(15), got[0]) // first element of input row 5
}

func TestRunRejectsBothSelectors(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "input.h5")
	outPath := filepath.Join(tmpDir, "output.h5")
	writeInput(t, inPath)

	err := runCmd(inPath, outPath, "--rows", "5", "--range", "1,3")
	assert.Error(t, err)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "no output should be created on a bad invocation")
}

func TestRunRequiresSelector(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "input.h5")
	writeInput(t, inPath)

	err := runCmd(inPath, filepath.Join(tmpDir, "output.h5"))
	assert.ErrorIs(t, err, trim.ErrInvalidArgument)
}

func TestRunRejectsBackwardsRange(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "input.h5")
	outPath := filepath.Join(tmpDir, "output.h5")
	writeInput(t, inPath)

	err := runCmd(inPath, outPath, "--range", "150,50")
	assert.ErrorIs(t, err, trim.ErrInvalidArgument)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunMissingInput(t *testing.T) {
	tmpDir := t.TempDir()

	err := runCmd(filepath.Join(tmpDir, "nope.h5"), filepath.Join(tmpDir, "out.h5"), "--rows", "5", "--quiet")
	assert.ErrorIs(t, err, trim.ErrInputNotFound)
}

func TestRunWrongArgCount(t *testing.T) {
	assert.Error(t, runCmd("only-one-arg"))
}
