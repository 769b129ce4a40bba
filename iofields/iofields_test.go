package iofields

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadParams(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "params.txt", "0.1 0.2\n")
	dx, dy, err := ReadParams(path)
	assert.NoError(t, err)
	assert.Equal(t, 0.1, dx)
	assert.Equal(t, 0.2, dy)
}

func TestReadMatrixRowMajor(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "m.txt", "1 2 3\n4 5 6\n")
	vals, err := ReadMatrix(path, 2, 3)
	assert.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, vals)
}

func TestReadMatrixWrongCountErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "m.txt", "1 2 3\n")
	_, err := ReadMatrix(path, 2, 3)
	assert.Error(t, err)
}

func TestWriteMatrixThenReadMatrixRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.dat")
	field := []float64{1.5, -2.25, 3, 4, 5, 6}
	assert.NoError(t, WriteMatrix(path, field, 2, 3))

	got, err := ReadMatrix(path, 2, 3)
	assert.NoError(t, err)
	for i := range field {
		assert.InDelta(t, field[i], got[i], 1e-12)
	}
}

func TestLoadFieldMissingFileReportsNotOk(t *testing.T) {
	dir := t.TempDir()
	field, ok, err := LoadField(filepath.Join(dir, "missing.dat"), 2, 2)
	assert.False(t, ok)
	assert.Error(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, field)
}

func TestLoadFieldExisting(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "u_0.dat", "1 2\n3 4\n")
	field, ok, err := LoadField(path, 2, 2)
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, field)
}
