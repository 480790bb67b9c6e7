package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSinkWriteFile(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir, nil)

	require.NoError(t, s.WriteFile("tests_torch/test_summary.json", []byte(`{}`)))

	data, err := os.ReadFile(
		filepath.Join(dir, "tests_torch", "test_summary.json"),
	)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestLocalSinkOverwrite(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir, nil)

	require.NoError(t, s.WriteFile("report.md", []byte("first")))
	require.NoError(t, s.WriteFile("report.md", []byte("second")))

	data, err := os.ReadFile(filepath.Join(dir, "report.md"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}
