package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCorrosion writes an executable shell script standing in for the real
// `corrosion` CLI binary, so Query/Scalar can be exercised without the
// actual store running.
func fakeCorrosion(t *testing.T, script string) *CLIReader {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(""), 0o644))

	binPath := filepath.Join(dir, "corrosion")
	contents := "#!/bin/sh\n" + script + "\n"
	require.NoError(t, os.WriteFile(binPath, []byte(contents), 0o755))

	return NewCLIReader(dir)
}

func TestCLIReaderQuery(t *testing.T) {
	r := fakeCorrosion(t, `printf 'abc|10.0.0.1|1700000000000\ndef|10.0.0.2|1700000000500\n'`)
	rows, err := r.Query(context.Background(), "SELECT id, management_ip, last_seen FROM servers")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"abc", "10.0.0.1", "1700000000000"},
		{"def", "10.0.0.2", "1700000000500"},
	}, rows)
}

func TestCLIReaderQueryEmpty(t *testing.T) {
	r := fakeCorrosion(t, `printf ''`)
	rows, err := r.Query(context.Background(), "SELECT id FROM servers WHERE 1=0")
	require.NoError(t, err)
	assert.Equal(t, [][]string{}, rows)
}

func TestCLIReaderQueryNonZeroExit(t *testing.T) {
	r := fakeCorrosion(t, `echo 'boom' 1>&2; exit 1`)
	_, err := r.Query(context.Background(), "SELECT 1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCLIReaderScalar(t *testing.T) {
	r := fakeCorrosion(t, `printf '42\n'`)
	v, ok := r.Scalar(context.Background(), "SELECT count(*) FROM servers")
	assert.True(t, ok)
	assert.Equal(t, "42", v)
}

func TestCLIReaderScalarEmpty(t *testing.T) {
	r := fakeCorrosion(t, `printf ''`)
	_, ok := r.Scalar(context.Background(), "SELECT count(*) FROM servers WHERE 1=0")
	assert.False(t, ok)
}

func TestCLIReaderScalarError(t *testing.T) {
	r := fakeCorrosion(t, `exit 1`)
	_, ok := r.Scalar(context.Background(), "SELECT 1")
	assert.False(t, ok)
}
